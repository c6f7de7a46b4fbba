package main

import "time"

// Sentiment categories assigned during enrichment.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// Resolution statuses recognized by aggregation. Anything else is counted
// under its own status string, never merged into these.
const (
	ResolutionResolved   = "Resolved"
	ResolutionUnresolved = "Unresolved"
)

// RawFeedbackRecord is one customer feedback row as ingested. It is never
// mutated after insert; enrichment produces a separate record.
type RawFeedbackRecord struct {
	CustomerName        string `json:"customer_name"`
	CustomerEmail       string `json:"customer_email"`
	LoyaltyProgram      string `json:"customer_loyalty_program"`
	ProductCategory     string `json:"product_category"`
	ProductSubCategory  string `json:"product_sub_category"`
	ProductName         string `json:"product_name"`
	ProductRating       int    `json:"product_rating"`
	ReviewText          string `json:"product_review_text"`
	ProductIssueType    string `json:"product_issue_type"`
	OrderID             string `json:"order_id"`
	OrderStatus         string `json:"order_status"`
	PurchaseMode        string `json:"purchase_mode"`
	PaymentMode         string `json:"payment_mode"`
	DiscountApplied     string `json:"discount_applied"`
	StoreLocation       string `json:"store_location"`
	DeliveryStatus      string `json:"delivery_status"`
	FollowUpRequired    string `json:"follow_up_required"`
	FeedbackDate        string `json:"feedback_date"` // YYYY-MM-DD
	FeedbackCategory    string `json:"feedback_category"`
	FeedbackSubCategory string `json:"feedback_sub_category"`
	SupportRating       int    `json:"customer_support_rating"`
	ResolutionStatus    string `json:"resolution_status"`
	StaffName           string `json:"staff_name"`
	StaffEmail          string `json:"staff_email"`

	CreatedAt time.Time `json:"-"`
}

// FeedbackScore is the score low-feedback alerting and rankings key on:
// the customer support rating on the 1-5 scale.
func (r RawFeedbackRecord) FeedbackScore() float64 {
	return float64(r.SupportRating)
}

// EnrichedFeedbackRecord is a raw record plus the three derived fields.
// Created exactly once per raw record; immutable thereafter.
type EnrichedFeedbackRecord struct {
	RawFeedbackRecord

	SentimentScore    float64
	SentimentCategory string
	SatisfactionIndex float64
}
