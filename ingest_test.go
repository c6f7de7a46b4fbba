package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchRawFeedbackFromAPI(t *testing.T) {
	records := []RawFeedbackRecord{
		feedbackRecord("ord-1", 4, "great product"),
		feedbackRecord("ord-2", 2, "slow delivery"),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	}))
	defer srv.Close()

	got, err := FetchRawFeedbackFromAPI(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchRawFeedbackFromAPI: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("fetched %d records, want 2", len(got))
	}
	if got[0].OrderID != "ord-1" || got[0].SupportRating != 4 {
		t.Fatalf("first record: %+v", got[0])
	}
	if got[1].ReviewText != "slow delivery" {
		t.Fatalf("second record review: %q", got[1].ReviewText)
	}
}

func TestFetchRawFeedbackFromAPINon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := FetchRawFeedbackFromAPI(context.Background(), srv.URL); err == nil {
		t.Fatalf("non-200 response must return an error")
	}
}

func TestFetchRawFeedbackFromAPIBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	if _, err := FetchRawFeedbackFromAPI(context.Background(), srv.URL); err == nil {
		t.Fatalf("malformed body must return an error")
	}
}

func TestIngestRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]RawFeedbackRecord{feedbackRecord("ord-1", 3, "okay")})
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.IngestAPIURL = srv.URL
	store := newTestStore(t)

	n, err := IngestRecords(context.Background(), cfg, store)
	if err != nil {
		t.Fatalf("IngestRecords: %v", err)
	}
	if n != 1 {
		t.Fatalf("ingested %d, want 1", n)
	}

	stored, err := store.FetchRaw(context.Background())
	if err != nil {
		t.Fatalf("FetchRaw: %v", err)
	}
	if len(stored) != 1 || stored[0].OrderID != "ord-1" {
		t.Fatalf("stored records: %+v", stored)
	}
}
