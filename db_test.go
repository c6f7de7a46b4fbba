package main

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "feedback.db"))
	if err != nil {
		t.Fatalf("opening sqlite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteInsertAndFetchRaw(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []RawFeedbackRecord{
		feedbackRecord("ord-1", 4, "great product"),
		feedbackRecord("ord-2", 2, "slow delivery"),
	}
	n, err := store.InsertRaw(ctx, records)
	if err != nil {
		t.Fatalf("InsertRaw: %v", err)
	}
	if n != 2 {
		t.Fatalf("InsertRaw inserted %d, want 2", n)
	}

	got, err := store.FetchRaw(ctx)
	if err != nil {
		t.Fatalf("FetchRaw: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FetchRaw returned %d records, want 2", len(got))
	}
	if got[0].OrderID != "ord-1" || got[1].OrderID != "ord-2" {
		t.Fatalf("insert order not preserved: %s, %s", got[0].OrderID, got[1].OrderID)
	}
	if got[0].ReviewText != "great product" {
		t.Fatalf("review text round trip: %q", got[0].ReviewText)
	}
	if got[1].SupportRating != 2 {
		t.Fatalf("support rating round trip: %d", got[1].SupportRating)
	}
	if got[0].CreatedAt.IsZero() {
		t.Fatalf("created_at not populated")
	}
}

func TestSQLiteInsertRawEmpty(t *testing.T) {
	store := newTestStore(t)
	n, err := store.InsertRaw(context.Background(), nil)
	if err != nil {
		t.Fatalf("InsertRaw(nil): %v", err)
	}
	if n != 0 {
		t.Fatalf("InsertRaw(nil) inserted %d", n)
	}
}

func TestSQLiteReplaceEnrichedIsReplace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := []EnrichedFeedbackRecord{
		enrichedRecord("ord-1", "a@example.com", 4, 80),
		enrichedRecord("ord-2", "b@example.com", 2, 40),
		enrichedRecord("ord-3", "c@example.com", 3, 60),
	}
	if _, err := store.ReplaceEnriched(ctx, first); err != nil {
		t.Fatalf("first ReplaceEnriched: %v", err)
	}

	second := []EnrichedFeedbackRecord{
		enrichedRecord("ord-1", "a@example.com", 4, 80),
		enrichedRecord("ord-4", "d@example.com", 5, 95),
	}
	n, err := store.ReplaceEnriched(ctx, second)
	if err != nil {
		t.Fatalf("second ReplaceEnriched: %v", err)
	}
	if n != 2 {
		t.Fatalf("second ReplaceEnriched persisted %d, want 2", n)
	}

	got, err := store.FetchEnriched(ctx)
	if err != nil {
		t.Fatalf("FetchEnriched: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("analysis table holds %d records after rerun, want 2", len(got))
	}
	if got[0].OrderID != "ord-1" || got[1].OrderID != "ord-4" {
		t.Fatalf("unexpected records after replace: %s, %s", got[0].OrderID, got[1].OrderID)
	}
}

func TestSQLiteEnrichedRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := enrichedRecord("ord-1", "a@example.com", 1, 17.7)
	rec.SentimentScore = -0.69
	rec.SentimentCategory = SentimentNegative

	if _, err := store.ReplaceEnriched(ctx, []EnrichedFeedbackRecord{rec}); err != nil {
		t.Fatalf("ReplaceEnriched: %v", err)
	}
	got, err := store.FetchEnriched(ctx)
	if err != nil {
		t.Fatalf("FetchEnriched: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].SentimentScore != -0.69 {
		t.Fatalf("sentiment score round trip: %f", got[0].SentimentScore)
	}
	if got[0].SentimentCategory != SentimentNegative {
		t.Fatalf("sentiment category round trip: %s", got[0].SentimentCategory)
	}
	if got[0].SatisfactionIndex != 17.7 {
		t.Fatalf("satisfaction index round trip: %f", got[0].SatisfactionIndex)
	}
	if got[0].StaffEmail != "a@example.com" {
		t.Fatalf("staff email round trip: %s", got[0].StaffEmail)
	}
}

func TestOpenRecordStoreSQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBPath = filepath.Join(t.TempDir(), "feedback.db")

	store, err := OpenRecordStore(cfg)
	if err != nil {
		t.Fatalf("OpenRecordStore: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("sqlite driver must yield a SQLiteStore, got %T", store)
	}
}

func TestOpenRecordStoreUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreDriver = "oracle"
	if _, err := OpenRecordStore(cfg); err == nil {
		t.Fatalf("unknown driver must error")
	}
}
