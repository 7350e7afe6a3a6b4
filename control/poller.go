// Package control talks to the control service: it polls live inputs and
// pushes plot-update notifications.
package control

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pithecene-io/livedraw/client"
	"github.com/pithecene-io/livedraw/log"
	"github.com/pithecene-io/livedraw/metrics"
	"github.com/pithecene-io/livedraw/types"
)

// Control service endpoints.
const (
	InputsPath     = "/state/inputs"
	PlotUpdatePath = "/plot-update"
)

// ErrInputSchema is returned when the input document cannot be parsed or
// fails the artwork validator. It is fatal to the run.
var ErrInputSchema = errors.New("input schema")

// Requester performs a control service request. *client.Client
// implements it.
type Requester interface {
	Do(ctx context.Context, req *client.Request) (*client.Response, error)
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithValidator checks every fetched input with validate.
func WithValidator(validate func(types.Input) error) PollerOption {
	return func(p *Poller) { p.validate = validate }
}

// WithPollerCollector counts polls in c.
func WithPollerCollector(c *metrics.Collector) PollerOption {
	return func(p *Poller) { p.collector = c }
}

// WithPollerLogger sets the poller logger.
func WithPollerLogger(l *log.Logger) PollerOption {
	return func(p *Poller) { p.logger = l }
}

// Poller fetches the current input document.
type Poller struct {
	client    Requester
	validate  func(types.Input) error
	collector *metrics.Collector
	logger    *log.Logger
}

// NewPoller creates a poller using c.
func NewPoller(c Requester, opts ...PollerOption) *Poller {
	p := &Poller{client: c, logger: log.NewNopLogger()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fetch returns the current input. Network failures are retried by the
// client; the only errors are cancellation and ErrInputSchema.
func (p *Poller) Fetch(ctx context.Context) (types.Input, error) {
	resp, err := p.client.Do(ctx, &client.Request{Method: http.MethodGet, Path: InputsPath})
	if err != nil {
		return types.Input{}, fmt.Errorf("fetch inputs: %w", err)
	}
	p.collector.IncInputPoll()

	in, err := types.ParseInput(resp.Body)
	if err != nil {
		return types.Input{}, fmt.Errorf("%w: %w", ErrInputSchema, err)
	}
	if p.validate != nil {
		if err := p.validate(in); err != nil {
			p.logger.Error("input rejected by artwork", map[string]any{
				"error": err.Error(),
				"input": string(in.Raw()),
			})
			return types.Input{}, fmt.Errorf("%w: %w", ErrInputSchema, err)
		}
	}
	return in, nil
}

// Changed reports whether current differs from previous.
func (p *Poller) Changed(previous, current types.Input) bool {
	return !previous.Equal(current)
}
