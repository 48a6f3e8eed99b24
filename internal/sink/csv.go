package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"fashionetl/internal/models"
)

// CSVSink writes the dataset to a CSV file with a header row. The write is
// atomic: content goes to a temp file in the same directory, which is
// renamed over the canonical path only after a successful flush. A mid-write
// failure never leaves a truncated file behind.
type CSVSink struct {
	path string
}

// NewCSVSink creates a CSV sink targeting the given path.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Name implements Sink.
func (s *CSVSink) Name() string {
	return "csv"
}

// Load implements Sink.
func (s *CSVSink) Load(_ context.Context, dataset models.Dataset) Outcome {
	if err := writeFileAtomic(s.path, func(f *os.File) error {
		w := csv.NewWriter(f)

		if err := w.Write(models.Header()); err != nil {
			return fmt.Errorf("write header: %w", err)
		}

		for _, row := range dataset.Rows() {
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}

		w.Flush()

		return w.Error()
	}); err != nil {
		return failure(s.Name(), FailureIO, err)
	}

	return success(s.Name(), len(dataset))
}

// writeFileAtomic writes via a temp file in the target directory and renames
// it into place on success. The temp file is removed on any failure.
func writeFileAtomic(path string, write func(*os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if err := write(tmp); err != nil {
		cleanup()

		return err
	}

	if err := tmp.Sync(); err != nil {
		cleanup()

		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("rename into place: %w", err)
	}

	return nil
}
