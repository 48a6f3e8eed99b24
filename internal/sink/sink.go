// Package sink defines the persistence destinations for a validated dataset
// and the orchestration that fans one dataset out to all of them.
package sink

import (
	"context"
	"errors"
	"fmt"

	"fashionetl/internal/models"
)

// FailureKind classifies a destination failure. Every adapter-specific error
// is translated to one of these before crossing the sink boundary.
type FailureKind string

// Destination failure kinds.
const (
	FailureIO          FailureKind = "io"
	FailurePersistence FailureKind = "persistence"
	FailureAuth        FailureKind = "auth"
	FailureTimeout     FailureKind = "timeout"
)

// Error is a classified destination failure.
type Error struct {
	Kind FailureKind
	Sink string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("sink %s: %s failure: %v", e.Sink, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status is the terminal state of one sink for one run.
type Status string

// Sink statuses.
const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Outcome is the per-sink result of a load. It is never mutated after
// creation.
type Outcome struct {
	Sink        string
	Status      Status
	RowsWritten int
	Err         *Error
}

// Sink persists a validated dataset to one destination. Implementations must
// not mutate the dataset, must be independently retryable, and must not
// assume any other sink ran first or succeeded.
type Sink interface {
	Name() string
	Load(ctx context.Context, dataset models.Dataset) Outcome
}

// success builds a successful outcome.
func success(name string, rows int) Outcome {
	return Outcome{Sink: name, Status: StatusSuccess, RowsWritten: rows}
}

// failure builds a failed outcome with a classified error.
func failure(name string, kind FailureKind, err error) Outcome {
	return Outcome{
		Sink:   name,
		Status: StatusFailed,
		Err:    &Error{Kind: kind, Sink: name, Err: err},
	}
}

// classifyContextErr maps context cancellation/deadline errors, returning
// true when err was context-related.
func classifyContextErr(err error) (FailureKind, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout, true
	}

	if errors.Is(err, context.Canceled) {
		return FailureTimeout, true
	}

	return "", false
}
