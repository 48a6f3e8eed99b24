package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"fashionetl/internal/models"
)

// JSONSink writes the dataset as a JSON array of objects, one per record,
// with absent optional fields omitted. Same atomic-write discipline as the
// CSV sink.
type JSONSink struct {
	path   string
	pretty bool
}

// NewJSONSink creates a JSON sink targeting the given path.
func NewJSONSink(path string, pretty bool) *JSONSink {
	return &JSONSink{path: path, pretty: pretty}
}

// Name implements Sink.
func (s *JSONSink) Name() string {
	return "json"
}

// Load implements Sink.
func (s *JSONSink) Load(_ context.Context, dataset models.Dataset) Outcome {
	if err := writeFileAtomic(s.path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		if s.pretty {
			enc.SetIndent("", "  ")
		}

		// Encode an empty dataset as [], not null.
		records := dataset
		if records == nil {
			records = models.Dataset{}
		}

		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode dataset: %w", err)
		}

		return nil
	}); err != nil {
		return failure(s.Name(), FailureIO, err)
	}

	return success(s.Name(), len(dataset))
}
