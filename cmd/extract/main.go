// Package main provides the scrape-only command: fetch the catalog and dump
// the raw records to a JSON file for later replay through the pipeline.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"fashionetl/internal/config"
	"fashionetl/internal/extractor"
	"fashionetl/internal/logger"
)

func main() {
	sourceURL := flag.String("url", "", "Catalog URL to scrape (overrides the config)")
	configPath := flag.String("config", "pipeline.yaml", "Path to the pipeline configuration file")
	outputPath := flag.String("output", "raw_records.json", "Output path for the raw records JSON")
	maxPages := flag.Int("max-pages", 0, "Page cap (overrides the config)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil && *sourceURL == "" {
		logger.NewLogger("info").Error("config error and no -url given", "error", err)
		os.Exit(1)
	}

	url := *sourceURL
	pages := *maxPages
	retry := config.DefaultRetryPolicy()
	level := "info"

	if cfg != nil {
		if url == "" {
			url = cfg.Source.URL
		}

		if pages == 0 {
			pages = cfg.Source.MaxPages
		}

		retry = cfg.Retry
		level = cfg.Logging.Level
	}

	if pages == 0 {
		pages = 50
	}

	log := logger.NewLogger(level)
	log.Info("🚀 Starting extraction", "url", url, "max_pages", pages)

	startTime := time.Now()

	scraper := extractor.NewScraperWithRetry(retry)
	ext := extractor.NewExtractor(scraper, pages, log)

	records, err := ext.Extract(context.Background(), url)
	if err != nil {
		log.Error("❌ Extraction failed", "error", err)
		os.Exit(1)
	}

	if err := extractor.SaveRawRecords(*outputPath, records); err != nil {
		log.Error("❌ Failed to save records", "error", err)
		os.Exit(1)
	}

	log.Info("✅ Extraction complete",
		"records", len(records),
		"output", *outputPath,
		"elapsed", time.Since(startTime))
}
