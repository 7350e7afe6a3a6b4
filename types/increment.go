package types

import "time"

// Point is a 2-D coordinate in millimetres.
type Point struct {
	X float64 `msgpack:"x" json:"x"`
	Y float64 `msgpack:"y" json:"y"`
}

// Path is an ordered polyline: the first point is a move-to, every
// following point a line-to.
type Path []Point

// Layer is one color layer of an increment. The plotter treats each layer
// as a separate pen pass, so layers with the same Label are merged by it.
type Layer struct {
	// Label names the layer (conventionally the color).
	Label string `msgpack:"label" json:"label"`
	// Color is the stroke color.
	Color string `msgpack:"color" json:"color"`
	// StrokeWidth is the pen width in millimetres.
	StrokeWidth float64 `msgpack:"stroke_width" json:"stroke_width"`
	// Paths are drawn in order.
	Paths []Path `msgpack:"paths" json:"paths"`
}

// NewLayer returns a layer labelled by its color.
func NewLayer(color string, strokeWidth float64, paths ...Path) Layer {
	return Layer{Label: color, Color: color, StrokeWidth: strokeWidth, Paths: paths}
}

// Increment is the result of generating one index. It is one of
// Drawing, Skip or Terminal.
type Increment interface {
	increment()
}

// Drawing is an increment with content to plot.
type Drawing struct {
	Layers []Layer
}

// Skip advances the index without publishing anything or waiting.
type Skip struct{}

// Terminal ends the run.
type Terminal struct{}

func (Drawing) increment()  {}
func (Skip) increment()     {}
func (Terminal) increment() {}

// IncrementKind returns a stable name for an increment variant.
func IncrementKind(inc Increment) string {
	switch inc.(type) {
	case Drawing:
		return "drawing"
	case Skip:
		return "skip"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// ArtAction is an action run before an increment is generated. It is one
// of Pause or ChatMessage.
type ArtAction interface {
	artAction()
}

// Pause blocks the scheduler for Duration while a countdown is displayed.
type Pause struct {
	Message  string
	Duration time.Duration
}

// ChatMessage is forwarded to the stream chat without blocking.
type ChatMessage struct {
	Text string
}

func (Pause) artAction()       {}
func (ChatMessage) artAction() {}
