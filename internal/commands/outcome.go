package commands

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

// Text codes attached to errors raised by the handler itself. Errors that
// already carry a go-errors category (post validation, not found) pass
// through untouched.
const (
	TextCodeInvalid  = "notes.command.invalid"
	TextCodeCanceled = "notes.command.canceled"
	TextCodeTimeout  = "notes.command.timeout"
	TextCodeFailed   = "notes.command.failed"
)

// Outcome classifies a finished command.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
	OutcomeTimeout  Outcome = "timeout"
)

func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	default:
		return OutcomeFailed
	}
}

// Report describes one execution, handed to the configured Reporter.
type Report struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Outcome   Outcome
	Err       error
	Logger    interfaces.Logger
}

// Reporter observes finished executions.
type Reporter[T command.Message] func(ctx context.Context, msg T, report Report)

// LogReporter writes one entry per execution: info on success, error otherwise.
func LogReporter[T command.Message]() Reporter[T] {
	return func(_ context.Context, _ T, report Report) {
		args := []any{"duration_ms", report.Duration.Milliseconds(), "outcome", string(report.Outcome)}
		if report.Outcome == OutcomeOK {
			report.Logger.Info("command.completed", args...)
			return
		}
		report.Logger.Error("command.failed", append(args, "error", report.Err)...)
	}
}

func rejectMessage(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid command").
		WithTextCode(TextCodeInvalid)
}

// tag attaches the command category to err according to outcome.
func tag(err error, outcome Outcome) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch outcome {
	case OutcomeTimeout:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command timed out").
			WithTextCode(TextCodeTimeout)
	case OutcomeCanceled:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command canceled").
			WithTextCode(TextCodeCanceled)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command failed").
			WithTextCode(TextCodeFailed)
	}
}
