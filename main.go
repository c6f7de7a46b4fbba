package main

import (
	"context"
	"log"
	"os"
)

func main() {
	cfg := LoadConfig()

	store, err := OpenRecordStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer store.Close()

	if err := os.MkdirAll(cfg.ReportOutputDir, 0755); err != nil {
		log.Fatalf("Failed to create report output dir %s: %v", cfg.ReportOutputDir, err)
	}

	notifier := NewDeliveryNotifier(cfg)

	if cfg.PipelineSchedule != "" {
		log.Println("Starting Feedback Pipeline (scheduled)...")
		if err := RunScheduled(cfg, store, notifier); err != nil {
			log.Fatalf("Scheduler error: %v", err)
		}
		return
	}

	log.Println("Starting Feedback Pipeline (single run)...")
	if _, err := RunPipeline(context.Background(), cfg, store, notifier); err != nil {
		log.Fatalf("Pipeline error: %v", err)
	}
}
