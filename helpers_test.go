package main

import (
	"fmt"
	"testing"
	"time"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		StoreDriver:          "sqlite",
		PositiveThreshold:    0.5,
		NegativeThreshold:    -0.5,
		LowFeedbackThreshold: 2.5,
		RankingSize:          5,
		TrainingFullBelow:    2.0,
		TrainingPartialBelow: 2.5,
		TrainingBasicBelow:   3.0,
		WorkerCount:          4,
		DigestChunkSize:      3000,
		ReportOutputDir:      t.TempDir(),
		scoringTimeout:       5 * time.Second,
	}
}

func feedbackRecord(orderID string, rating int, review string) RawFeedbackRecord {
	return RawFeedbackRecord{
		CustomerName:     "Customer " + orderID,
		CustomerEmail:    fmt.Sprintf("customer-%s@example.com", orderID),
		ProductCategory:  "Groceries",
		ProductName:      "Sample Product",
		ProductRating:    rating,
		ReviewText:       review,
		ProductIssueType: "Other",
		OrderID:          orderID,
		OrderStatus:      "Confirmed",
		FeedbackDate:     "2026-03-02",
		SupportRating:    rating,
		ResolutionStatus: ResolutionUnresolved,
		StaffName:        "Staff " + orderID,
		StaffEmail:       fmt.Sprintf("staff-%s@example.com", orderID),
	}
}

func enrichedRecord(orderID, staffEmail string, rating int, index float64) EnrichedFeedbackRecord {
	raw := feedbackRecord(orderID, rating, "")
	raw.StaffEmail = staffEmail
	raw.StaffName = "Staff " + staffEmail
	return EnrichedFeedbackRecord{
		RawFeedbackRecord: raw,
		SentimentScore:    0,
		SentimentCategory: SentimentNeutral,
		SatisfactionIndex: index,
	}
}
