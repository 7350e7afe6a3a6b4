package types

// Plotdata attribute names the scheduler rewrites.
const (
	PlotDataLayer     = "layer"
	PlotDataPauseDist = "pause_dist"
	PlotDataPauseRef  = "pause_ref"
)

// Attribute is a single name/value pair of a plotdata element.
type Attribute struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// PenTravel is the plotdata metadata the plotter leaves in
// increment.finished.svg. Attribute order is preserved.
type PenTravel struct {
	Attributes []Attribute `json:"attributes" yaml:"attributes"`
}

// Get returns the value of the named attribute.
func (p *PenTravel) Get(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, a := range p.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Set replaces the named attribute or appends it.
func (p *PenTravel) Set(name, value string) {
	for i := range p.Attributes {
		if p.Attributes[i].Name == name {
			p.Attributes[i].Value = value
			return
		}
	}
	p.Attributes = append(p.Attributes, Attribute{Name: name, Value: value})
}

// ResetForNewArtifact returns a copy that tells the plotter to plot all
// layers from the start of the document. The receiver is not modified.
func (p *PenTravel) ResetForNewArtifact() *PenTravel {
	out := &PenTravel{}
	if p != nil {
		out.Attributes = make([]Attribute, len(p.Attributes))
		copy(out.Attributes, p.Attributes)
	}
	out.Set(PlotDataLayer, "-1")
	out.Set(PlotDataPauseDist, "0")
	out.Set(PlotDataPauseRef, "0")
	return out
}
