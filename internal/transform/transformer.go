package transform

import (
	"fashionetl/internal/logger"
	"fashionetl/internal/models"
)

// Transformer turns an ordered sequence of raw records into the validated
// dataset for one run.
type Transformer struct {
	validator *Validator
	logger    *logger.Logger
}

// NewTransformer creates a transformer using the wall clock.
func NewTransformer(log *logger.Logger) *Transformer {
	return &Transformer{
		validator: NewValidator(),
		logger:    log,
	}
}

// NewTransformerWithValidator creates a transformer with a custom validator,
// used by tests to inject a fixed clock.
func NewTransformerWithValidator(v *Validator, log *logger.Logger) *Transformer {
	return &Transformer{
		validator: v,
		logger:    log,
	}
}

// Transform iterates the raw sequence once, validating each record and
// de-duplicating by id. On a duplicate id the later record overwrites the
// earlier one in place, counted as a correction. Fatal validation failures
// drop the record and are counted, never surfaced as errors.
func (t *Transformer) Transform(raws []models.RawRecord) (models.Dataset, models.TransformReport) {
	report := models.TransformReport{Total: len(raws)}

	var dataset models.Dataset

	// id -> position in dataset, so overwrites keep extraction order
	positions := make(map[string]int)

	for i, raw := range raws {
		rec, issues, err := t.validator.Validate(raw)
		if err != nil {
			report.Rejected++

			if t.logger != nil {
				t.logger.Debug("record rejected", "index", i, "reason", err)
			}

			continue
		}

		report.Corrected += len(issues)

		if t.logger != nil {
			for _, issue := range issues {
				t.logger.Debug("field corrected", "id", rec.ID, "field", issue.Field, "detail", issue.Detail)
			}
		}

		if pos, seen := positions[rec.ID]; seen {
			dataset[pos] = *rec
			report.Corrected++

			if t.logger != nil {
				t.logger.Debug("duplicate id overwritten", "id", rec.ID, "index", i)
			}

			continue
		}

		positions[rec.ID] = len(dataset)
		dataset = append(dataset, *rec)
		report.Accepted++
	}

	return dataset, report
}
