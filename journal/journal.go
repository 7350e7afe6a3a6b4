package journal

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/livedraw/types"
)

// Record type discriminants.
const (
	TypeHeader   = "header"
	TypeDrawing  = "drawing"
	TypeSkip     = "skip"
	TypeTerminal = "terminal"
)

// Header describes the recorded artwork.
type Header struct {
	Type            string  `msgpack:"type"`
	ProtocolVersion string  `msgpack:"protocol_version"`
	Art             string  `msgpack:"art"`
	RunID           string  `msgpack:"run_id"`
	Width           float64 `msgpack:"width"`
	Height          float64 `msgpack:"height"`
	DelayMillis     int64   `msgpack:"delay_ms"`
	Total           int     `msgpack:"total"`
}

// Delay returns the recorded delay between increments.
func (h *Header) Delay() time.Duration {
	return time.Duration(h.DelayMillis) * time.Millisecond
}

// Record is one recorded draw call.
type Record struct {
	Type   string        `msgpack:"type"`
	Index  int           `msgpack:"index"`
	Layers []types.Layer `msgpack:"layers,omitempty"`
}

// Increment converts the record back to an increment.
func (r *Record) Increment() (types.Increment, error) {
	switch r.Type {
	case TypeDrawing:
		return types.Drawing{Layers: r.Layers}, nil
	case TypeSkip:
		return types.Skip{}, nil
	case TypeTerminal:
		return types.Terminal{}, nil
	default:
		return nil, fmt.Errorf("unknown record type %q", r.Type)
	}
}

// NewRecord captures an increment at index.
func NewRecord(index int, inc types.Increment) (*Record, error) {
	switch v := inc.(type) {
	case types.Drawing:
		return &Record{Type: TypeDrawing, Index: index, Layers: v.Layers}, nil
	case types.Skip:
		return &Record{Type: TypeSkip, Index: index}, nil
	case types.Terminal:
		return &Record{Type: TypeTerminal, Index: index}, nil
	default:
		return nil, fmt.Errorf("unsupported increment %T", inc)
	}
}

// Writer appends frames to a journal.
type Writer struct {
	w           io.Writer
	wroteHeader bool
}

// NewWriter returns a writer. WriteHeader must be called first.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader writes the header frame.
func (jw *Writer) WriteHeader(h Header) error {
	if jw.wroteHeader {
		return errors.New("journal header already written")
	}
	h.Type = TypeHeader
	if h.ProtocolVersion == "" {
		h.ProtocolVersion = types.ProtocolVersion
	}
	if err := jw.encode(&h); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	jw.wroteHeader = true
	return nil
}

// Write records one draw call result.
func (jw *Writer) Write(index int, inc types.Increment) error {
	if !jw.wroteHeader {
		return errors.New("journal header not written")
	}
	rec, err := NewRecord(index, inc)
	if err != nil {
		return err
	}
	if err := jw.encode(rec); err != nil {
		return fmt.Errorf("write record %d: %w", index, err)
	}
	return nil
}

func (jw *Writer) encode(v any) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	return writeFrame(jw.w, payload)
}

// frameKind peeks at the discriminant without a full decode.
type frameKind struct {
	Type string `msgpack:"type"`
}

// Reader reads a journal.
type Reader struct {
	r      io.Reader
	header *Header
}

// NewReader reads the header frame and returns a reader positioned at the
// first record.
func NewReader(r io.Reader) (*Reader, error) {
	payload, err := readFrame(r)
	if errors.Is(err, io.EOF) {
		return nil, &FrameError{Kind: FrameErrorPartial, Msg: "empty journal"}
	}
	if err != nil {
		return nil, err
	}
	var h Header
	if err := decode(payload, TypeHeader, &h); err != nil {
		return nil, err
	}
	return &Reader{r: r, header: &h}, nil
}

// Header returns the journal header.
func (jr *Reader) Header() *Header {
	return jr.header
}

// Next returns the next record, or io.EOF at a clean end of stream.
func (jr *Reader) Next() (*Record, error) {
	payload, err := readFrame(jr.r)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := decode(payload, "", &rec); err != nil {
		return nil, err
	}
	if _, err := rec.Increment(); err != nil {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "invalid record", Err: err}
	}
	return &rec, nil
}

// ReadAll returns every remaining record.
func (jr *Reader) ReadAll() ([]*Record, error) {
	var out []*Record
	for {
		rec, err := jr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// decode unmarshals payload into v. A non-empty wantType must match the
// frame discriminant.
func decode(payload []byte, wantType string, v any) error {
	var kind frameKind
	if err := msgpack.Unmarshal(payload, &kind); err != nil {
		return &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode frame type", Err: err}
	}
	if wantType != "" && kind.Type != wantType {
		return &FrameError{Kind: FrameErrorDecode, Msg: fmt.Sprintf("expected %s frame, got %q", wantType, kind.Type)}
	}
	if err := msgpack.Unmarshal(payload, v); err != nil {
		return &FrameError{Kind: FrameErrorDecode, Msg: fmt.Sprintf("failed to decode %s frame", kind.Type), Err: err}
	}
	return nil
}
