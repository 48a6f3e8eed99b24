package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"fashionetl/internal/logger"
	"fashionetl/internal/models"
)

// Extractor walks a paginated catalog and collects the raw records of every
// page, in page order.
type Extractor struct {
	scraper  *Scraper
	parser   *Parser
	logger   *logger.Logger
	now      func() time.Time
	maxPages int
}

// NewExtractor creates an extractor for a catalog with the given page cap.
func NewExtractor(scraper *Scraper, maxPages int, log *logger.Logger) *Extractor {
	return &Extractor{
		scraper:  scraper,
		parser:   NewParser(),
		logger:   log,
		now:      time.Now,
		maxPages: maxPages,
	}
}

// Extract fetches pages starting at startURL, following the next link until
// it runs out, the page cap is reached, or ctx is cancelled.
func (e *Extractor) Extract(ctx context.Context, startURL string) ([]models.RawRecord, error) {
	var records []models.RawRecord

	pageURL := startURL

	for pageNum := 1; pageNum <= e.maxPages && pageURL != ""; pageNum++ {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		html, err := e.scraper.Fetch(pageURL)
		if err != nil {
			return records, fmt.Errorf("fetch page %d: %w", pageNum, err)
		}

		page, err := e.parser.Parse(html, e.now())
		if err != nil {
			return records, fmt.Errorf("parse page %d: %w", pageNum, err)
		}

		records = append(records, page.Records...)

		if e.logger != nil {
			e.logger.Debug("page extracted", "page", pageNum, "records", len(page.Records))
		}

		pageURL, err = resolveNext(pageURL, page.NextURL)
		if err != nil {
			return records, fmt.Errorf("resolve next link on page %d: %w", pageNum, err)
		}
	}

	return records, nil
}

// resolveNext resolves a possibly relative next-page link against the
// current page URL. An empty next link ends pagination.
func resolveNext(current, next string) (string, error) {
	if next == "" {
		return "", nil
	}

	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}

	ref, err := url.Parse(next)
	if err != nil {
		return "", err
	}

	return base.ResolveReference(ref).String(), nil
}

// SaveRawRecords writes raw records to a JSON file, so a scrape can be
// replayed through the pipeline without refetching.
func SaveRawRecords(path string, records []models.RawRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write records file: %w", err)
	}

	return nil
}

// LoadRawRecords reads raw records from a JSON file produced by
// SaveRawRecords.
func LoadRawRecords(path string) ([]models.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}

	var records []models.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records file: %w", err)
	}

	return records, nil
}
