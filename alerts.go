package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

type AlertChannel string

const (
	ChannelEmail   AlertChannel = "email"
	ChannelWebhook AlertChannel = "webhook"
)

type AlertKind string

const (
	AlertStaffLowFeedback   AlertKind = "staff-low-feedback"
	AlertOwnerStaff         AlertKind = "owner-staff-alert"
	AlertCustomerResolution AlertKind = "customer-resolution"
	AlertChatDigest         AlertKind = "chat-digest"
)

// AlertDecision is one notification to be delivered: who, over what channel,
// and the rendered payload. Payloads that exceeded the digest chunk size are
// pre-split into ordered chunks; the notifier sends them in sequence.
// Decisions are built here and consumed once by the notifier, then discarded.
type AlertDecision struct {
	Kind      AlertKind
	Channel   AlertChannel
	Recipient string // email address, or webhook URL for chat digests
	Subject   string
	Chunks    []string
}

// EvaluateAlerts decides which alerts fire for this run. It only builds
// decisions; nothing is sent from here.
func EvaluateAlerts(cfg Config, records []EnrichedFeedbackRecord, summary AggregationSummary) []AlertDecision {
	var decisions []AlertDecision

	for _, rec := range records {
		if rec.FeedbackScore() < cfg.LowFeedbackThreshold {
			decisions = append(decisions, AlertDecision{
				Kind:      AlertStaffLowFeedback,
				Channel:   ChannelEmail,
				Recipient: rec.StaffEmail,
				Subject:   "Low Feedback Alert",
				Chunks: []string{fmt.Sprintf(
					"You have received low feedback from a customer (order %s, score %.1f).\n"+
						"Please review and take necessary actions.\n\nThanks!",
					rec.OrderID, rec.FeedbackScore())},
			})
			decisions = append(decisions, AlertDecision{
				Kind:      AlertOwnerStaff,
				Channel:   ChannelEmail,
				Recipient: cfg.OwnerEmail,
				Subject:   "Staff Performance Alert",
				Chunks: []string{fmt.Sprintf(
					"Staff member %s has received low feedback (order %s, score %.1f).\n"+
						"Please look into this issue.\n\nThanks!",
					rec.StaffEmail, rec.OrderID, rec.FeedbackScore())},
			})
		}

		if rec.ResolutionStatus == ResolutionResolved {
			decisions = append(decisions, AlertDecision{
				Kind:      AlertCustomerResolution,
				Channel:   ChannelEmail,
				Recipient: rec.CustomerEmail,
				Subject:   "Update on Your Complaint",
				Chunks: []string{
					"Your complaint has been resolved.\n" +
						"Thank you for your patience.\n\nThanks!"},
			})
		}
	}

	decisions = append(decisions, buildDigests(cfg, summary)...)
	return decisions
}

func buildDigests(cfg Config, summary AggregationSummary) []AlertDecision {
	// No webhook, no digest decisions: a deployment without chat delivery
	// should not rack up failed notifications on every healthy run.
	if !cfg.WebhookConfigured() {
		return nil
	}

	bodies := []struct {
		subject string
		body    string
	}{
		{"Feedback Analysis Digest", renderFeedbackAnalysis(summary)},
		{"Customer Insights Digest", renderCustomerInsights(summary)},
		{"Staff Performance Digest", renderStaffPerformance(summary)},
		{"Training Recommendations Digest", renderTrainingRecommendations(summary)},
	}

	var digests []AlertDecision
	for _, d := range bodies {
		if d.body == "" {
			continue
		}
		digests = append(digests, AlertDecision{
			Kind:      AlertChatDigest,
			Channel:   ChannelWebhook,
			Recipient: cfg.WebhookURL,
			Subject:   d.subject,
			Chunks:    ChunkMessage(d.body, cfg.DigestChunkSize),
		})
	}
	return digests
}

func renderFeedbackAnalysis(s AggregationSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FEEDBACK ANALYSIS\n")
	fmt.Fprintf(&b, "Records processed: %d\n", s.TotalRecords)
	fmt.Fprintf(&b, "Mean satisfaction index: %.1f\n", s.MeanSatisfactionIndex)
	fmt.Fprintf(&b, "Sentiment: %d positive / %d negative / %d neutral\n\n",
		s.SentimentCounts[SentimentPositive], s.SentimentCounts[SentimentNegative], s.SentimentCounts[SentimentNeutral])

	if len(s.LowFeedback) > 0 {
		b.WriteString("Lowest feedback this run:\n")
		tw := newDigestTable(&b)
		fmt.Fprintln(tw, "STAFF\tORDER\tSCORE\tSATISFACTION")
		for _, e := range s.LowFeedback {
			fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\n", e.StaffName, e.OrderID, e.Score, e.SatisfactionIndex)
		}
		tw.Flush()
	}
	return b.String()
}

func renderCustomerInsights(s AggregationSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CUSTOMER INSIGHTS\n")
	fmt.Fprintf(&b, "Resolved: %d  Unresolved: %d\n", s.Resolutions.Resolved, s.Resolutions.Unresolved)
	for status, count := range s.Resolutions.Other {
		fmt.Fprintf(&b, "Unrecognized status %q: %d\n", status, count)
	}

	if len(s.IssueBreakdown) > 0 {
		b.WriteString("\nIssue breakdown:\n")
		tw := newDigestTable(&b)
		fmt.Fprintln(tw, "ISSUE\tCOUNT\tSHARE")
		for _, share := range s.IssueBreakdown {
			fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", share.IssueType, share.Count, share.Percent)
		}
		tw.Flush()
	}
	return b.String()
}

func renderStaffPerformance(s AggregationSummary) string {
	if len(s.BestPerformers) == 0 && len(s.LowFeedback) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "STAFF PERFORMANCE\n")
	if len(s.BestPerformers) > 0 {
		b.WriteString("Best performers (mean score >= 4):\n")
		tw := newDigestTable(&b)
		fmt.Fprintln(tw, "STAFF\tMEAN\tRECORDS")
		for _, p := range s.BestPerformers {
			fmt.Fprintf(tw, "%s\t%.2f\t%d\n", p.StaffName, p.MeanScore, p.Records)
		}
		tw.Flush()
	}
	if len(s.LowFeedback) > 0 {
		fmt.Fprintf(&b, "\n%d record(s) under the low-feedback threshold; staff and owner alerts sent separately.\n",
			len(s.LowFeedback))
	}
	return b.String()
}

func renderTrainingRecommendations(s AggregationSummary) string {
	if len(s.Training) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "TRAINING RECOMMENDATIONS\n")
	tw := newDigestTable(&b)
	fmt.Fprintln(tw, "STAFF\tMEAN\tMODULES")
	for _, t := range s.Training {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\n", t.StaffName, t.MeanScore, strings.Join(t.Modules, ", "))
	}
	tw.Flush()
	return b.String()
}

func newDigestTable(b *strings.Builder) *tabwriter.Writer {
	return tabwriter.NewWriter(b, 0, 4, 2, ' ', 0)
}

// ChunkMessage splits a payload into ordered chunks no longer than limit.
// Splits land on line boundaries so table rows stay intact; only a single
// line longer than the limit is cut mid-line.
func ChunkMessage(body string, limit int) []string {
	if limit <= 0 || len(body) <= limit {
		return []string{body}
	}

	var chunks []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(body, "\n") {
		for len(line) > limit {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		if current.Len()+len(line) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
