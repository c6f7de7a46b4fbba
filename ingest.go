package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// FetchRawFeedbackFromAPI pulls a JSON array of raw feedback records from the
// configured ingest endpoint. Ingest failures are non-fatal for a pipeline
// run: scoring proceeds on whatever is already in the store.
func FetchRawFeedbackFromAPI(ctx context.Context, apiURL string) ([]RawFeedbackRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building ingest request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := externalHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feedback records: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ingest API returned %d: %s", resp.StatusCode, string(body))
	}

	var records []RawFeedbackRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding feedback records: %w", err)
	}
	return records, nil
}

// IngestRecords fetches from the API and appends to the record store.
// Returns how many records were stored.
func IngestRecords(ctx context.Context, cfg Config, store RecordStore) (int, error) {
	records, err := FetchRawFeedbackFromAPI(ctx, cfg.IngestAPIURL)
	if err != nil {
		return 0, err
	}
	log.Printf("ingest fetched=%d from %s", len(records), cfg.IngestAPIURL)

	inserted, err := store.InsertRaw(ctx, records)
	if err != nil {
		return inserted, err
	}
	return inserted, nil
}
