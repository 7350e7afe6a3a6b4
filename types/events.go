package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// PlotEventType is the discriminator of a plot-update notification.
type PlotEventType string

// Plot event types understood by the control service.
const (
	PlotEventArtStart       PlotEventType = "art-start"
	PlotEventArtStop        PlotEventType = "art-stop"
	PlotEventCountdownPause PlotEventType = "art-countdown-pause"
	PlotEventChatMessage    PlotEventType = "chat-message"
	PlotEventIncrPrepare    PlotEventType = "incr-prepare"
	PlotEventIncrStart      PlotEventType = "incr-start"
	PlotEventIncrEnd        PlotEventType = "incr-end"
	PlotEventPredictive     PlotEventType = "predictive"
)

// PlotEvent is a lifecycle notification sent to POST /plot-update.
// Only the fields relevant to Type are serialized.
type PlotEvent struct {
	Type     PlotEventType
	Text     string
	Duration time.Duration
	Index    int
	Total    int
}

// ArtStart marks the beginning of a run.
func ArtStart() PlotEvent { return PlotEvent{Type: PlotEventArtStart} }

// ArtStop marks the end of a run.
func ArtStop() PlotEvent { return PlotEvent{Type: PlotEventArtStop} }

// CountdownPause announces a Pause action.
func CountdownPause(text string, d time.Duration) PlotEvent {
	return PlotEvent{Type: PlotEventCountdownPause, Text: text, Duration: d}
}

// ChatMessageEvent forwards a ChatMessage action.
func ChatMessageEvent(text string) PlotEvent {
	return PlotEvent{Type: PlotEventChatMessage, Text: text}
}

// IncrPrepare announces that index is about to be generated.
func IncrPrepare(index, total int) PlotEvent {
	return PlotEvent{Type: PlotEventIncrPrepare, Index: index, Total: total}
}

// IncrStart announces that index was published to the plotter.
func IncrStart(index int) PlotEvent { return PlotEvent{Type: PlotEventIncrStart, Index: index} }

// IncrEnd announces that the plotter consumed index.
func IncrEnd(index int) PlotEvent { return PlotEvent{Type: PlotEventIncrEnd, Index: index} }

// PredictiveWritten announces a new predictive.svg.
func PredictiveWritten() PlotEvent { return PlotEvent{Type: PlotEventPredictive} }

// MarshalJSON encodes the event in the control service wire shape.
func (e PlotEvent) MarshalJSON() ([]byte, error) {
	body := map[string]any{"type": e.Type}
	switch e.Type {
	case PlotEventArtStart, PlotEventArtStop, PlotEventPredictive:
	case PlotEventCountdownPause:
		body["text"] = e.Text
		body["duration"] = e.Duration.Seconds()
	case PlotEventChatMessage:
		body["text"] = e.Text
	case PlotEventIncrPrepare:
		body["index"] = e.Index
		body["total"] = e.Total
	case PlotEventIncrStart, PlotEventIncrEnd:
		body["index"] = e.Index
	default:
		return nil, fmt.Errorf("unknown plot event type %q", e.Type)
	}
	return json.Marshal(body)
}

// UnmarshalJSON decodes the control service wire shape.
func (e *PlotEvent) UnmarshalJSON(data []byte) error {
	var wire struct {
		Type     PlotEventType `json:"type"`
		Text     string        `json:"text"`
		Duration float64       `json:"duration"`
		Index    int           `json:"index"`
		Total    int           `json:"total"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*e = PlotEvent{
		Type:     wire.Type,
		Text:     wire.Text,
		Duration: time.Duration(wire.Duration * float64(time.Second)),
		Index:    wire.Index,
		Total:    wire.Total,
	}
	return nil
}
