package sink

import (
	"context"
	"fmt"
	"sync"

	"fashionetl/internal/logger"
	"fashionetl/internal/models"
)

// Orchestrator fans one dataset out to every configured sink. The dataset is
// shared read-only; each sink gets its own goroutine and a failure in one
// never prevents the others from attempting their load.
type Orchestrator struct {
	logger *logger.Logger
}

// NewOrchestrator creates a load orchestrator.
func NewOrchestrator(log *logger.Logger) *Orchestrator {
	return &Orchestrator{logger: log}
}

// LoadAll drives the dataset through all sinks concurrently and returns one
// outcome per sink in declaration order, regardless of completion order.
// A panicking sink becomes a failed outcome rather than aborting the run.
// The orchestrator performs no retries; retry policy is internal to each
// sink.
func (o *Orchestrator) LoadAll(ctx context.Context, dataset models.Dataset, sinks []Sink) []Outcome {
	outcomes := make([]Outcome, len(sinks))

	var wg sync.WaitGroup

	for i, s := range sinks {
		wg.Add(1)

		go func(index int, s Sink) {
			defer wg.Done()

			outcomes[index] = o.loadOne(ctx, dataset, s)
		}(i, s)
	}

	wg.Wait()

	for _, out := range outcomes {
		if out.Status == StatusSuccess {
			if o.logger != nil {
				o.logger.Info("sink load succeeded", "sink", out.Sink, "rows", out.RowsWritten)
			}
		} else if o.logger != nil {
			o.logger.Error("sink load failed", "sink", out.Sink, "error", out.Err)
		}
	}

	return outcomes
}

// loadOne wraps a single sink call, converting a panic into a failed
// outcome.
func (o *Orchestrator) loadOne(ctx context.Context, dataset models.Dataset, s Sink) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = failure(s.Name(), FailurePersistence, fmt.Errorf("sink panicked: %v", r))
		}
	}()

	return s.Load(ctx, dataset)
}
