// Package svg renders plotter documents and reads the plotdata element the
// plotter leaves behind.
//
// Documents use millimetre units: the viewBox spans 0 0 W H and the
// width/height attributes carry an "mm" suffix. Each layer becomes an
// inkscape layer group holding a single unfilled stroked path.
package svg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pithecene-io/livedraw/types"
)

// Namespaces written on the root element.
const (
	NamespaceSVG      = "http://www.w3.org/2000/svg"
	NamespaceInkscape = "http://www.inkscape.org/namespaces/inkscape"
)

// PauseLayerID and PauseLayerLabel identify the empty layer that makes the
// plotter pause after an increment.
const (
	PauseLayerID    = "force_pause"
	PauseLayerLabel = "!"
)

// Document is a plotter document.
type Document struct {
	Width  float64
	Height float64
	Layers []types.Layer
	// PauseLayer appends the force_pause layer after all layers.
	PauseLayer bool
	// PlotData, when non-nil, is written as a trailing plotdata element.
	PlotData *types.PenTravel
}

// New returns an empty document of the given size in millimetres.
func New(width, height float64) *Document {
	return &Document{Width: width, Height: height}
}

// Append adds layers after the existing ones. Prior layers are never
// removed or merged.
func (d *Document) Append(layers ...types.Layer) {
	d.Layers = append(d.Layers, layers...)
}

// Encode writes the document as XML.
func (d *Document) Encode(w io.Writer) error {
	enc := xml.NewEncoder(w)

	root := xml.StartElement{
		Name: xml.Name{Local: "svg"},
		Attr: []xml.Attr{
			attr("xmlns", NamespaceSVG),
			attr("xmlns:inkscape", NamespaceInkscape),
			attr("viewBox", "0 0 "+formatFloat(d.Width)+" "+formatFloat(d.Height)),
			attr("width", formatFloat(d.Width)+"mm"),
			attr("height", formatFloat(d.Height)+"mm"),
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return fmt.Errorf("encode svg: %w", err)
	}

	for _, layer := range d.Layers {
		if err := encodeLayer(enc, layer); err != nil {
			return err
		}
	}

	if d.PauseLayer {
		g := xml.StartElement{
			Name: xml.Name{Local: "g"},
			Attr: []xml.Attr{
				attr("inkscape:groupmode", "layer"),
				attr("id", PauseLayerID),
				attr("inkscape:label", PauseLayerLabel),
			},
		}
		if err := encodeEmpty(enc, g); err != nil {
			return err
		}
	}

	if d.PlotData != nil {
		pd := xml.StartElement{Name: xml.Name{Local: "plotdata"}}
		for _, a := range d.PlotData.Attributes {
			pd.Attr = append(pd.Attr, attr(a.Name, a.Value))
		}
		if err := encodeEmpty(enc, pd); err != nil {
			return err
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return fmt.Errorf("encode svg: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("encode svg: %w", err)
	}
	return nil
}

// Bytes returns the encoded document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeLayer(enc *xml.Encoder, layer types.Layer) error {
	g := xml.StartElement{
		Name: xml.Name{Local: "g"},
		Attr: []xml.Attr{
			attr("inkscape:groupmode", "layer"),
			attr("inkscape:label", layer.Label),
		},
	}
	if err := enc.EncodeToken(g); err != nil {
		return fmt.Errorf("encode layer %q: %w", layer.Label, err)
	}
	if data := PathData(layer.Paths...); data != "" {
		p := xml.StartElement{
			Name: xml.Name{Local: "path"},
			Attr: []xml.Attr{
				attr("fill", "none"),
				attr("stroke", layer.Color),
				attr("stroke-width", formatFloat(layer.StrokeWidth)),
				attr("d", data),
				attr("style", "mix-blend-mode: multiply;"),
			},
		}
		if err := encodeEmpty(enc, p); err != nil {
			return fmt.Errorf("encode layer %q: %w", layer.Label, err)
		}
	}
	if err := enc.EncodeToken(g.End()); err != nil {
		return fmt.Errorf("encode layer %q: %w", layer.Label, err)
	}
	return nil
}

func encodeEmpty(enc *xml.Encoder, start xml.StartElement) error {
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

// PathData builds the d attribute for the given paths. Each path starts
// with a move-to followed by line-to segments, so a single point becomes
// a lone move-to. Empty paths are skipped.
func PathData(paths ...types.Path) string {
	var b strings.Builder
	for _, p := range paths {
		for i, pt := range p {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			if i == 0 {
				b.WriteString("M")
			} else {
				b.WriteString("L")
			}
			b.WriteString(formatFloat(pt.X))
			b.WriteByte(',')
			b.WriteString(formatFloat(pt.Y))
		}
	}
	return b.String()
}

// ReadPlotData returns the attributes of the first plotdata element in r,
// or nil when the document has none.
func ReadPlotData(r io.Reader) (*types.PenTravel, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read plotdata: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "plotdata" {
			continue
		}
		pt := &types.PenTravel{Attributes: make([]types.Attribute, 0, len(start.Attr))}
		for _, a := range start.Attr {
			pt.Attributes = append(pt.Attributes, types.Attribute{Name: qualifiedName(a.Name), Value: a.Value})
		}
		return pt, nil
	}
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
