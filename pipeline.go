package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// RunResult summarizes one pipeline run for logging and exit handling.
type RunResult struct {
	RunID               string
	Ingested            int
	Fetched             int
	Enriched            int
	Failed              int
	Persisted           int
	NotificationsSent   int
	NotificationsFailed int
	Failures            []RecordFailure
	Usage               LLMUsage
}

// RunPipeline executes one batch: optional ingest, fetch, enrich, persist,
// aggregate, evaluate, deliver. Store failures are fatal and returned;
// everything else (a bad record, a failed notification, a classify error)
// is counted and the run keeps going.
func RunPipeline(ctx context.Context, cfg Config, store RecordStore, notifier Notifier) (RunResult, error) {
	result := RunResult{RunID: uuid.NewString()[:8]}
	started := time.Now()

	if cfg.IngestAPIURL != "" {
		ingested, err := IngestRecords(ctx, cfg, store)
		if err != nil {
			log.Printf("run=%s ingest error (continuing on stored records): %v", result.RunID, err)
		}
		result.Ingested = ingested
	}

	records, err := store.FetchRaw(ctx)
	if err != nil {
		return result, fmt.Errorf("run %s: %w", result.RunID, err)
	}
	result.Fetched = len(records)
	log.Printf("run=%s fetched=%d", result.RunID, len(records))

	if len(records) == 0 {
		log.Printf("run=%s no records to process", result.RunID)
		return result, nil
	}

	if cfg.ClassifyCategories {
		categories, usage, err := ClassifyFeedbackCategories(cfg, records)
		result.Usage.Add(usage)
		if err != nil {
			log.Printf("run=%s classify error (keeping ingested categories): %v", result.RunID, err)
		} else {
			records = ApplyFeedbackCategories(records, categories)
			log.Printf("run=%s classified=%d tokens=%d", result.RunID, len(categories), usage.TotalTokens())
		}
	}

	enriched := EnrichRecords(ctx, cfg, records)
	result.Enriched = len(enriched.Records)
	result.Failed = len(enriched.Failures)
	result.Failures = enriched.Failures
	for _, f := range enriched.Failures {
		log.Printf("run=%s record failed order=%s: %v", result.RunID, f.OrderID, f.Err)
	}

	persisted, err := store.ReplaceEnriched(ctx, enriched.Records)
	if err != nil {
		return result, fmt.Errorf("run %s: %w", result.RunID, err)
	}
	result.Persisted = persisted

	summary := Summarize(cfg, enriched.Records)
	decisions := EvaluateAlerts(cfg, enriched.Records, summary)
	archiveDigests(cfg, decisions, started)

	for _, decision := range decisions {
		if err := notifier.Send(ctx, decision); err != nil {
			result.NotificationsFailed++
			log.Printf("run=%s notify failed kind=%s recipient=%s: %v",
				result.RunID, decision.Kind, decision.Recipient, err)
			continue
		}
		result.NotificationsSent++
	}

	log.Printf("run=%s done in %s processed=%d failed=%d persisted=%d notified=%d notify_failed=%d",
		result.RunID, time.Since(started).Round(time.Millisecond),
		result.Enriched, result.Failed, result.Persisted,
		result.NotificationsSent, result.NotificationsFailed)
	return result, nil
}

// archiveDigests writes digest bodies to the report output dir so what was
// sent to chat survives for later inspection. Best effort only.
func archiveDigests(cfg Config, decisions []AlertDecision, runDate time.Time) {
	for _, decision := range decisions {
		if decision.Kind != AlertChatDigest {
			continue
		}
		body := joinChunks(decision.Chunks)
		if _, err := WriteDigestFile(body, cfg.ReportOutputDir, runDate, decision.Subject); err != nil {
			log.Printf("digest archive error %q: %v", decision.Subject, err)
		}
	}
}

// RunScheduled blocks and runs the pipeline on the configured cron schedule
// (standard 5-field expression: minute hour day-of-month month day-of-week).
// A failed run is logged and the schedule continues; scheduled mode never
// exits on a single bad run.
func RunScheduled(cfg Config, store RecordStore, notifier Notifier) error {
	schedule := strings.TrimSpace(cfg.PipelineSchedule)
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid pipeline_schedule '%s': %w", schedule, err)
	}

	log.Printf("Pipeline scheduled (cron: %s)", schedule)
	for {
		now := time.Now()
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Printf("Next run at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))
		time.Sleep(wait)

		if _, err := RunPipeline(context.Background(), cfg, store, notifier); err != nil {
			log.Printf("Scheduled run error: %v", err)
		}
	}
}
