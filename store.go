package main

import (
	"context"
	"fmt"
)

// RecordStore is the analytical store the pipeline reads raw feedback from
// and persists enriched records to. Two implementations exist: SQLite for
// local deployments (the default) and Postgres for warehouse deployments.
type RecordStore interface {
	// FetchRaw returns every raw feedback record, in insertion order.
	FetchRaw(ctx context.Context) ([]RawFeedbackRecord, error)
	// InsertRaw appends ingested records and returns how many were written.
	InsertRaw(ctx context.Context, records []RawFeedbackRecord) (int, error)
	// ReplaceEnriched replaces the full analysis table with the given set in
	// one transaction. Replace semantics keep reruns of the same batch
	// window idempotent.
	ReplaceEnriched(ctx context.Context, records []EnrichedFeedbackRecord) (int, error)
	Close() error
}

// OpenRecordStore opens the store selected by configuration.
func OpenRecordStore(cfg Config) (RecordStore, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		return OpenSQLiteStore(cfg.DBPath)
	case "postgres":
		return OpenWarehouseStore(cfg.WarehouseDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func rawInsertArgs(r RawFeedbackRecord) []any {
	return []any{
		r.CustomerName, r.CustomerEmail, r.LoyaltyProgram,
		r.ProductCategory, r.ProductSubCategory, r.ProductName, r.ProductRating,
		r.ReviewText, r.ProductIssueType,
		r.OrderID, r.OrderStatus, r.PurchaseMode, r.PaymentMode, r.DiscountApplied,
		r.StoreLocation, r.DeliveryStatus, r.FollowUpRequired,
		r.FeedbackDate, r.FeedbackCategory, r.FeedbackSubCategory,
		r.SupportRating, r.ResolutionStatus, r.StaffName, r.StaffEmail,
	}
}

func rawScanTargets(r *RawFeedbackRecord) []any {
	return []any{
		&r.CustomerName, &r.CustomerEmail, &r.LoyaltyProgram,
		&r.ProductCategory, &r.ProductSubCategory, &r.ProductName, &r.ProductRating,
		&r.ReviewText, &r.ProductIssueType,
		&r.OrderID, &r.OrderStatus, &r.PurchaseMode, &r.PaymentMode, &r.DiscountApplied,
		&r.StoreLocation, &r.DeliveryStatus, &r.FollowUpRequired,
		&r.FeedbackDate, &r.FeedbackCategory, &r.FeedbackSubCategory,
		&r.SupportRating, &r.ResolutionStatus, &r.StaffName, &r.StaffEmail,
		&r.CreatedAt,
	}
}

func enrichedInsertArgs(r EnrichedFeedbackRecord) []any {
	return append(rawInsertArgs(r.RawFeedbackRecord),
		r.SentimentScore, r.SentimentCategory, r.SatisfactionIndex)
}

// rawColumns is the column list shared by both tables, matching the order of
// rawInsertArgs.
const rawColumns = `customer_name, customer_email, loyalty_program,
	product_category, product_sub_category, product_name, product_rating,
	review_text, product_issue_type,
	order_id, order_status, purchase_mode, payment_mode, discount_applied,
	store_location, delivery_status, follow_up_required,
	feedback_date, feedback_category, feedback_sub_category,
	support_rating, resolution_status, staff_name, staff_email`

const enrichedColumns = rawColumns + `,
	sentiment_score, sentiment_category, satisfaction_index`
