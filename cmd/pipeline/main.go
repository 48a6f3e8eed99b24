// Package main provides the unified pipeline command: extract the catalog,
// transform it into the canonical dataset, and fan it out to every
// configured destination.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fashionetl/internal/config"
	"fashionetl/internal/extractor"
	"fashionetl/internal/logger"
	"fashionetl/internal/models"
	"fashionetl/internal/report"
	"fashionetl/internal/sheets"
	"fashionetl/internal/sink"
	"fashionetl/internal/transform"
)

func main() {
	configPath := flag.String("config", "pipeline.yaml", "Path to the pipeline configuration file")
	inputPath := flag.String("input", "", "Replay raw records from a JSON file instead of scraping")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Logging.Level)
	runID := uuid.New().String()
	log = log.With("run_id", runID)

	log.Info("🚀 Starting pipeline run", "source", cfg.Source.URL)

	startTime := time.Now()
	ctx := context.Background()

	// Phase 1: Extraction
	raws, err := extractRecords(ctx, cfg, *inputPath, log)
	if err != nil {
		log.Error("❌ Extraction failed", "error", err)
		os.Exit(1)
	}

	if len(raws) == 0 {
		log.Error("❌ No data was extracted")
		os.Exit(1)
	}

	log.Info("✅ Extraction complete", "records", len(raws), "elapsed", time.Since(startTime))

	// Phase 2: Transformation
	transformer := transform.NewTransformer(log)
	dataset, transformReport := transformer.Transform(raws)

	if len(dataset) == 0 {
		// Loading an empty dataset would silently erase previously stored
		// data in every destination.
		log.Error("❌ Transformation produced an empty dataset, refusing to load",
			"rejected", transformReport.Rejected)
		os.Exit(1)
	}

	log.Info("✅ Transformation complete",
		"accepted", transformReport.Accepted,
		"rejected", transformReport.Rejected,
		"corrected", transformReport.Corrected)

	// Phase 3: Fan-out load
	sinks, closers, err := buildSinks(ctx, cfg, log)
	if err != nil {
		log.Error("❌ Sink setup failed", "error", err)
		os.Exit(1)
	}

	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	orchestrator := sink.NewOrchestrator(log)
	outcomes := orchestrator.LoadAll(ctx, dataset, sinks)

	summary := &report.RunSummary{
		RunID:       runID,
		Report:      transformReport,
		Fingerprint: dataset.Fingerprint(),
		Outcomes:    outcomes,
		Duration:    time.Since(startTime),
	}

	fmt.Print(summary.Render())

	if summary.Failed() {
		os.Exit(1)
	}
}

// extractRecords scrapes the configured catalog, or replays a saved raw
// records file when one is given.
func extractRecords(ctx context.Context, cfg *config.Config, inputPath string, log *logger.Logger) ([]models.RawRecord, error) {
	if inputPath != "" {
		log.Info("Replaying raw records", "path", inputPath)

		return extractor.LoadRawRecords(inputPath)
	}

	scraper := extractor.NewScraperWithRetry(cfg.Retry)
	ext := extractor.NewExtractor(scraper, cfg.Source.MaxPages, log)

	return ext.Extract(ctx, cfg.Source.URL)
}

// buildSinks assembles the enabled destinations. Returned closers release
// connection handles after the load.
func buildSinks(ctx context.Context, cfg *config.Config, log *logger.Logger) ([]sink.Sink, []func(), error) {
	var (
		sinks   []sink.Sink
		closers []func()
	)

	d := &cfg.Destinations

	if d.CSV.Enabled {
		sinks = append(sinks, sink.NewCSVSink(d.CSV.Path))
	}

	if d.JSON.Enabled {
		sinks = append(sinks, sink.NewJSONSink(d.JSON.Path, d.JSON.PrettyPrint))
	}

	if d.Database.Enabled {
		db, err := sql.Open(d.Database.Driver, d.Database.DSN)
		if err != nil {
			return nil, closers, fmt.Errorf("open database: %w", err)
		}

		closers = append(closers, func() { db.Close() })

		if err := sink.Migrate(ctx, db, d.Database.Table); err != nil {
			return nil, closers, err
		}

		sinks = append(sinks, sink.NewDatabaseSink(db, d.Database.Driver, d.Database.Table))
	}

	if d.Spreadsheet.Enabled {
		token := d.Spreadsheet.ResolveToken()
		if token == "" {
			return nil, closers, fmt.Errorf("spreadsheet destination: %w", sheets.ErrNoToken)
		}

		client := sheets.NewClient(d.Spreadsheet.Endpoint, token, log)
		sinks = append(sinks, sink.NewSheetsSink(client, d.Spreadsheet.SpreadsheetID, d.Spreadsheet.Sheet, cfg.Retry))
	}

	return sinks, closers, nil
}
