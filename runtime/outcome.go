package runtime

import (
	"context"
	"errors"

	"github.com/pithecene-io/livedraw/control"
	"github.com/pithecene-io/livedraw/handshake"
)

// OutcomeStatus classifies how a run ended.
type OutcomeStatus string

const (
	// OutcomeCompleted means the artwork returned Terminal.
	OutcomeCompleted OutcomeStatus = "completed"
	// OutcomeInterrupted means the run was canceled, usually by a signal.
	OutcomeInterrupted OutcomeStatus = "interrupted"
	// OutcomeInputError means the control service sent an unusable input.
	OutcomeInputError OutcomeStatus = "input_error"
	// OutcomeHandshakeError means the handshake directory failed.
	OutcomeHandshakeError OutcomeStatus = "handshake_error"
	// OutcomeFailed covers every other fatal error, including artwork errors.
	OutcomeFailed OutcomeStatus = "failed"
)

// Process exit codes.
const (
	ExitCodeSuccess     = 0
	ExitCodeFailure     = 1
	ExitCodeConfig      = 2
	ExitCodeInterrupted = 130
)

// Outcome is the final state of a run.
type Outcome struct {
	Status  OutcomeStatus `json:"status"`
	Message string        `json:"message"`
}

// DetermineOutcome classifies the error returned by a run.
func DetermineOutcome(err error) *Outcome {
	switch {
	case err == nil:
		return &Outcome{Status: OutcomeCompleted, Message: "run completed successfully"}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Outcome{Status: OutcomeInterrupted, Message: err.Error()}
	case errors.Is(err, control.ErrInputSchema):
		return &Outcome{Status: OutcomeInputError, Message: err.Error()}
	case errors.Is(err, handshake.ErrHandshake):
		return &Outcome{Status: OutcomeHandshakeError, Message: err.Error()}
	default:
		return &Outcome{Status: OutcomeFailed, Message: err.Error()}
	}
}

// ExitCode maps an outcome to the process exit code.
func (o *Outcome) ExitCode() int {
	switch o.Status {
	case OutcomeCompleted:
		return ExitCodeSuccess
	case OutcomeInterrupted:
		return ExitCodeInterrupted
	default:
		return ExitCodeFailure
	}
}
