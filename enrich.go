package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// RecordFailure is one record that could not be scored, keyed by its order ID.
type RecordFailure struct {
	OrderID string
	Err     error
}

// EnrichResult is the batch outcome: enriched records in source order plus a
// summary of the records that failed. A per-record failure never aborts the
// batch; failed records are simply excluded from Records.
type EnrichResult struct {
	Records  []EnrichedFeedbackRecord
	Failures []RecordFailure
}

type enrichJob struct {
	pos int
	rec RawFeedbackRecord
}

type enrichOutcome struct {
	pos      int
	enriched EnrichedFeedbackRecord
	err      error
}

// Injectable for tests.
var scoreSentimentFn = ScoreSentiment

// EnrichRecords scores every record across a bounded worker pool. Records are
// independent, so completion order is arbitrary; each unit of work carries its
// input position through, and results are re-associated by that key rather
// than by completion order before the enriched set is assembled in source
// order. Position, not order ID, is the key: order IDs are not guaranteed
// unique in the raw table.
func EnrichRecords(ctx context.Context, cfg Config, records []RawFeedbackRecord) EnrichResult {
	var result EnrichResult
	if len(records) == 0 {
		return result
	}

	workers := cfg.WorkerCount
	if workers < 1 {
		workers = 1
	}
	if workers > len(records) {
		workers = len(records)
	}

	jobs := make(chan enrichJob)
	outcomes := make(chan enrichOutcome, len(records))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				enriched, err := enrichOne(cfg, job.rec)
				outcomes <- enrichOutcome{pos: job.pos, enriched: enriched, err: err}
			}
		}()
	}

	dispatched := 0
	for i, rec := range records {
		select {
		case jobs <- enrichJob{pos: i, rec: rec}:
			dispatched++
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	byKey := make(map[int]EnrichedFeedbackRecord, dispatched)
	failed := make(map[int]error)
	for out := range outcomes {
		if out.err != nil {
			failed[out.pos] = out.err
			continue
		}
		byKey[out.pos] = out.enriched
	}

	// Reassemble in source order so downstream ranking tie-breaks are stable.
	for i, rec := range records {
		if enriched, ok := byKey[i]; ok {
			result.Records = append(result.Records, enriched)
			continue
		}
		err, ok := failed[i]
		if !ok {
			if ctx.Err() != nil {
				err = fmt.Errorf("enrichment cancelled: %w", ctx.Err())
			} else {
				err = fmt.Errorf("no scoring result for record")
			}
		}
		result.Failures = append(result.Failures, RecordFailure{OrderID: rec.OrderID, Err: err})
	}

	if len(result.Failures) > 0 {
		log.Printf("enrich done ok=%d failed=%d", len(result.Records), len(result.Failures))
	}
	return result
}

func enrichOne(cfg Config, rec RawFeedbackRecord) (EnrichedFeedbackRecord, error) {
	score, err := scoreWithTimeout(rec.ReviewText, cfg.scoringTimeout)
	if err != nil {
		return EnrichedFeedbackRecord{}, err
	}

	index, err := SatisfactionIndex(score, rec.SupportRating)
	if err != nil {
		return EnrichedFeedbackRecord{}, err
	}

	return EnrichedFeedbackRecord{
		RawFeedbackRecord: rec,
		SentimentScore:    score,
		SentimentCategory: ClassifySentiment(score, cfg.NegativeThreshold, cfg.PositiveThreshold),
		SatisfactionIndex: index,
	}, nil
}

// scoreWithTimeout converts a stuck scoring call into a per-record failure
// instead of blocking the whole batch.
func scoreWithTimeout(text string, timeout time.Duration) (float64, error) {
	if timeout <= 0 {
		return scoreSentimentFn(text), nil
	}

	done := make(chan float64, 1)
	go func() { done <- scoreSentimentFn(text) }()

	select {
	case score := <-done:
		return score, nil
	case <-time.After(timeout):
		return 0, errScoringTimeout
	}
}
