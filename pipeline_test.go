package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

// fakeNotifier records every decision and can be told to fail specific kinds.
type fakeNotifier struct {
	sent     []AlertDecision
	failKind AlertKind
}

func (f *fakeNotifier) Send(ctx context.Context, decision AlertDecision) error {
	if f.failKind != "" && decision.Kind == f.failKind {
		return fmt.Errorf("forced failure for %s", decision.Kind)
	}
	f.sent = append(f.sent, decision)
	return nil
}

// failingStore fails FetchRaw; the other methods are never reached.
type failingStore struct{}

func (failingStore) FetchRaw(ctx context.Context) ([]RawFeedbackRecord, error) {
	return nil, storeErr("fetch", errors.New("connection refused"))
}
func (failingStore) InsertRaw(ctx context.Context, records []RawFeedbackRecord) (int, error) {
	return 0, nil
}
func (failingStore) ReplaceEnriched(ctx context.Context, records []EnrichedFeedbackRecord) (int, error) {
	return 0, nil
}
func (failingStore) Close() error { return nil }

func TestRunPipelineEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	cfg.OwnerEmail = "owner@example.com"
	cfg.WebhookURL = "https://hooks.example.com/T000/B000/XXX"
	store := newTestStore(t)
	ctx := context.Background()

	records := []RawFeedbackRecord{
		feedbackRecord("ord-1", 1, "Terrible service, broken product"),
		feedbackRecord("ord-2", 5, "Great product, very happy"),
		feedbackRecord("ord-3", 3, ""),
	}
	records[1].ResolutionStatus = ResolutionResolved
	if _, err := store.InsertRaw(ctx, records); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	notifier := &fakeNotifier{}
	result, err := RunPipeline(ctx, cfg, store, notifier)
	if err != nil {
		t.Fatalf("RunPipeline: %v", err)
	}

	if result.Fetched != 3 || result.Enriched != 3 || result.Failed != 0 {
		t.Fatalf("run counts: fetched=%d enriched=%d failed=%d", result.Fetched, result.Enriched, result.Failed)
	}
	if result.Persisted != 3 {
		t.Fatalf("persisted = %d, want 3", result.Persisted)
	}
	if result.RunID == "" {
		t.Fatalf("run must carry an id")
	}

	enriched, err := store.FetchEnriched(ctx)
	if err != nil {
		t.Fatalf("FetchEnriched: %v", err)
	}
	if len(enriched) != 3 {
		t.Fatalf("analysis table holds %d records, want 3", len(enriched))
	}

	kinds := make(map[AlertKind]int)
	for _, d := range notifier.sent {
		kinds[d.Kind]++
	}
	// ord-1 (rating 1) is low: one staff alert plus one owner alert. ord-2
	// is resolved: one customer alert. Plus the chat digests.
	if kinds[AlertStaffLowFeedback] != 1 || kinds[AlertOwnerStaff] != 1 {
		t.Fatalf("low feedback alerts: %v", kinds)
	}
	if kinds[AlertCustomerResolution] != 1 {
		t.Fatalf("customer alerts: %v", kinds)
	}
	if kinds[AlertChatDigest] == 0 {
		t.Fatalf("no chat digests sent: %v", kinds)
	}
	if result.NotificationsSent != len(notifier.sent) {
		t.Fatalf("sent count %d does not match notifier (%d)", result.NotificationsSent, len(notifier.sent))
	}
	if result.NotificationsFailed != 0 {
		t.Fatalf("unexpected notification failures: %d", result.NotificationsFailed)
	}
}

func TestRunPipelineArchivesDigests(t *testing.T) {
	cfg := testConfig(t)
	cfg.WebhookURL = "https://hooks.example.com/T000/B000/XXX"
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.InsertRaw(ctx, []RawFeedbackRecord{feedbackRecord("ord-1", 4, "good")}); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
	if _, err := RunPipeline(ctx, cfg, store, &fakeNotifier{}); err != nil {
		t.Fatalf("RunPipeline: %v", err)
	}

	entries, err := os.ReadDir(cfg.ReportOutputDir)
	if err != nil {
		t.Fatalf("reading report dir: %v", err)
	}
	var archives int
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".txt") {
			archives++
		}
	}
	if archives == 0 {
		t.Fatalf("no digest archives written to %s", cfg.ReportOutputDir)
	}
}

func TestRunPipelineNoWebhookNoFailures(t *testing.T) {
	cfg := testConfig(t)
	// No webhook URL and no SMTP credentials: a minimal local deployment.
	// Email alerts fall back to drafts; digests must not be attempted at all.
	cfg.OwnerEmail = "owner@example.com"
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.InsertRaw(ctx, []RawFeedbackRecord{
		feedbackRecord("ord-1", 1, "terrible service"),
		feedbackRecord("ord-2", 5, "very happy"),
	}); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	result, err := RunPipeline(ctx, cfg, store, NewDeliveryNotifier(cfg))
	if err != nil {
		t.Fatalf("RunPipeline: %v", err)
	}
	if result.NotificationsFailed != 0 {
		t.Fatalf("webhook-less run reported %d failed notifications", result.NotificationsFailed)
	}
}

func TestRunPipelineEmptyStore(t *testing.T) {
	cfg := testConfig(t)
	store := newTestStore(t)
	notifier := &fakeNotifier{}

	result, err := RunPipeline(context.Background(), cfg, store, notifier)
	if err != nil {
		t.Fatalf("RunPipeline on empty store: %v", err)
	}
	if result.Fetched != 0 || result.Enriched != 0 {
		t.Fatalf("empty store produced work: %+v", result)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("empty store sent notifications: %d", len(notifier.sent))
	}
}

func TestRunPipelineStoreFailureIsFatal(t *testing.T) {
	cfg := testConfig(t)
	_, err := RunPipeline(context.Background(), cfg, failingStore{}, &fakeNotifier{})
	if err == nil {
		t.Fatalf("fetch failure must abort the run")
	}
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("error %v does not wrap StoreError", err)
	}
}

func TestRunPipelineNotifyFailureDoesNotAbort(t *testing.T) {
	cfg := testConfig(t)
	cfg.OwnerEmail = "owner@example.com"
	cfg.WebhookURL = "https://hooks.example.com/T000/B000/XXX"
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.InsertRaw(ctx, []RawFeedbackRecord{feedbackRecord("ord-1", 1, "awful")}); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	notifier := &fakeNotifier{failKind: AlertStaffLowFeedback}
	result, err := RunPipeline(ctx, cfg, store, notifier)
	if err != nil {
		t.Fatalf("notification failure must not fail the run: %v", err)
	}
	if result.NotificationsFailed != 1 {
		t.Fatalf("failed notifications = %d, want 1", result.NotificationsFailed)
	}
	if result.NotificationsSent == 0 {
		t.Fatalf("remaining notifications must still be sent")
	}
	if result.Persisted != 1 {
		t.Fatalf("persistence must complete before notification: persisted=%d", result.Persisted)
	}
}

func TestRunPipelineBadRecordCounted(t *testing.T) {
	cfg := testConfig(t)
	store := newTestStore(t)
	ctx := context.Background()

	good := feedbackRecord("ord-1", 4, "fine")
	bad := feedbackRecord("ord-2", 4, "fine")
	bad.SupportRating = 9
	if _, err := store.InsertRaw(ctx, []RawFeedbackRecord{good, bad}); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	result, err := RunPipeline(ctx, cfg, store, &fakeNotifier{})
	if err != nil {
		t.Fatalf("RunPipeline: %v", err)
	}
	if result.Enriched != 1 || result.Failed != 1 {
		t.Fatalf("counts: enriched=%d failed=%d", result.Enriched, result.Failed)
	}
	if len(result.Failures) != 1 || result.Failures[0].OrderID != "ord-2" {
		t.Fatalf("failures: %+v", result.Failures)
	}
	if result.Persisted != 1 {
		t.Fatalf("only the good record must persist, got %d", result.Persisted)
	}
}
