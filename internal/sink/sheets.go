package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fashionetl/internal/config"
	"fashionetl/internal/models"
	"fashionetl/internal/sheets"
)

// SheetsSink rewrites the target sheet in one batch call per run: clear the
// range, then upload header plus all rows at once. Never row-by-row, so rate
// limiting cannot leave a partially written sheet. Transient API errors are
// retried with bounded exponential backoff before being reported.
type SheetsSink struct {
	api           sheets.API
	spreadsheetID string
	sheet         string
	retry         config.RetryPolicy
	sleep         func(time.Duration)
}

// NewSheetsSink creates a spreadsheet sink over the given API client.
func NewSheetsSink(api sheets.API, spreadsheetID, sheet string, retry config.RetryPolicy) *SheetsSink {
	return &SheetsSink{
		api:           api,
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
		retry:         retry,
		sleep:         time.Sleep,
	}
}

// Name implements Sink.
func (s *SheetsSink) Name() string {
	return "spreadsheet"
}

// Load implements Sink.
func (s *SheetsSink) Load(ctx context.Context, dataset models.Dataset) Outcome {
	values := make([][]string, 0, len(dataset)+1)
	values = append(values, models.Header())
	values = append(values, dataset.Rows()...)

	var lastErr error

	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			s.sleep(s.retry.GetRetryDelay(attempt))
		}

		lastErr = s.replaceAll(ctx, values)
		if lastErr == nil {
			return success(s.Name(), len(dataset))
		}

		if !isTransient(lastErr) {
			break
		}
	}

	return failure(s.Name(), classifySheetsErr(lastErr), lastErr)
}

// replaceAll performs one clear-and-rewrite cycle.
func (s *SheetsSink) replaceAll(ctx context.Context, values [][]string) error {
	if err := s.api.Clear(ctx, s.spreadsheetID, s.sheet); err != nil {
		return fmt.Errorf("clear range: %w", err)
	}

	if _, err := s.api.Update(ctx, s.spreadsheetID, s.sheet, values); err != nil {
		return fmt.Errorf("update range: %w", err)
	}

	return nil
}

// isTransient reports whether the error is worth another attempt.
func isTransient(err error) bool {
	var statusErr *sheets.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}

	return false
}

// classifySheetsErr maps an API error into the sink taxonomy.
func classifySheetsErr(err error) FailureKind {
	if kind, ok := classifyContextErr(err); ok {
		return kind
	}

	var statusErr *sheets.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case 401, 403:
			return FailureAuth
		case 408:
			return FailureTimeout
		}

		return FailurePersistence
	}

	// Network-level failures (DNS, connection refused) read as IO.
	return FailureIO
}
