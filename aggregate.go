package main

import "sort"

// LowFeedbackEntry is one alert-worthy record in the low-feedback ranking.
type LowFeedbackEntry struct {
	StaffName         string
	StaffEmail        string
	CustomerEmail     string
	OrderID           string
	Score             float64
	SatisfactionIndex float64
}

// StaffPerformance is one staff member's aggregate over the batch.
type StaffPerformance struct {
	StaffName  string
	StaffEmail string
	MeanScore  float64
	Records    int
}

// IssueShare is one issue type's share of the batch.
type IssueShare struct {
	IssueType string
	Count     int
	Percent   float64
}

// ResolutionCounts tallies records by exact resolution status. Statuses other
// than "Resolved"/"Unresolved" land in Other under their own string so typos
// and legacy values stay visible instead of being silently merged.
type ResolutionCounts struct {
	Resolved   int
	Unresolved int
	Other      map[string]int
}

// TrainingRecommendation is the module set suggested for one staff member.
type TrainingRecommendation struct {
	StaffName  string
	StaffEmail string
	MeanScore  float64
	Modules    []string
}

// AggregationSummary is recomputed from the full enriched set on every run.
// It has no lifecycle of its own: always a pure function of the input.
type AggregationSummary struct {
	TotalRecords          int
	MeanSatisfactionIndex float64
	SentimentCounts       map[string]int

	LowFeedback    []LowFeedbackEntry
	BestPerformers []StaffPerformance
	IssueBreakdown []IssueShare
	Resolutions    ResolutionCounts
	Training       []TrainingRecommendation
}

// Summarize derives every aggregate view from the enriched set. It needs the
// whole set at once (rankings and percentages are global), so it runs
// single-threaded after enrichment.
func Summarize(cfg Config, records []EnrichedFeedbackRecord) AggregationSummary {
	summary := AggregationSummary{
		TotalRecords:    len(records),
		SentimentCounts: make(map[string]int),
		Resolutions:     ResolutionCounts{Other: make(map[string]int)},
	}
	if len(records) == 0 {
		return summary
	}

	var indexSum float64
	for _, rec := range records {
		indexSum += rec.SatisfactionIndex
		summary.SentimentCounts[rec.SentimentCategory]++

		switch rec.ResolutionStatus {
		case ResolutionResolved:
			summary.Resolutions.Resolved++
		case ResolutionUnresolved:
			summary.Resolutions.Unresolved++
		default:
			summary.Resolutions.Other[rec.ResolutionStatus]++
		}
	}
	summary.MeanSatisfactionIndex = indexSum / float64(len(records))

	summary.LowFeedback = rankLowFeedback(records, cfg.LowFeedbackThreshold, cfg.RankingSize)
	summary.BestPerformers = rankBestPerformers(records, cfg.RankingSize)
	summary.IssueBreakdown = issueDistribution(records)
	summary.Training = trainingRecommendations(cfg, records)
	return summary
}

// rankLowFeedback filters records under the threshold and sorts ascending by
// score, worst first. Ties keep source order.
func rankLowFeedback(records []EnrichedFeedbackRecord, threshold float64, limit int) []LowFeedbackEntry {
	var entries []LowFeedbackEntry
	for _, rec := range records {
		if rec.FeedbackScore() >= threshold {
			continue
		}
		entries = append(entries, LowFeedbackEntry{
			StaffName:         rec.StaffName,
			StaffEmail:        rec.StaffEmail,
			CustomerEmail:     rec.CustomerEmail,
			OrderID:           rec.OrderID,
			Score:             rec.FeedbackScore(),
			SatisfactionIndex: rec.SatisfactionIndex,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score < entries[j].Score
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// rankBestPerformers groups by staff, keeps means >= 4 and sorts descending.
func rankBestPerformers(records []EnrichedFeedbackRecord, limit int) []StaffPerformance {
	perStaff := staffAverages(records)

	var best []StaffPerformance
	for _, p := range perStaff {
		if p.MeanScore >= 4 {
			best = append(best, p)
		}
	}
	sort.SliceStable(best, func(i, j int) bool {
		return best[i].MeanScore > best[j].MeanScore
	})
	if limit > 0 && len(best) > limit {
		best = best[:limit]
	}
	return best
}

// issueDistribution computes each issue type's percentage share. Shares sum
// to 100 for any non-empty input; an empty input yields an empty slice.
func issueDistribution(records []EnrichedFeedbackRecord) []IssueShare {
	if len(records) == 0 {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, rec := range records {
		if _, seen := counts[rec.ProductIssueType]; !seen {
			order = append(order, rec.ProductIssueType)
		}
		counts[rec.ProductIssueType]++
	}

	total := float64(len(records))
	shares := make([]IssueShare, 0, len(order))
	for _, issue := range order {
		shares = append(shares, IssueShare{
			IssueType: issue,
			Count:     counts[issue],
			Percent:   float64(counts[issue]) / total * 100,
		})
	}
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Count > shares[j].Count
	})
	return shares
}

// trainingRecommendations maps each staff member's mean feedback score to a
// module set. Thresholds come from configuration.
func trainingRecommendations(cfg Config, records []EnrichedFeedbackRecord) []TrainingRecommendation {
	var recs []TrainingRecommendation
	for _, p := range staffAverages(records) {
		modules := TrainingModules(cfg, p.MeanScore)
		if len(modules) == 0 {
			continue
		}
		recs = append(recs, TrainingRecommendation{
			StaffName:  p.StaffName,
			StaffEmail: p.StaffEmail,
			MeanScore:  p.MeanScore,
			Modules:    modules,
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MeanScore < recs[j].MeanScore
	})
	return recs
}

// TrainingModules is a pure function of the feedback score: the lower the
// score, the fuller the remediation set.
func TrainingModules(cfg Config, score float64) []string {
	switch {
	case score < cfg.TrainingFullBelow:
		return []string{"Customer Communication", "Conflict Resolution", "Product Knowledge", "Service Recovery"}
	case score < cfg.TrainingPartialBelow:
		return []string{"Customer Communication", "Service Recovery"}
	case score < cfg.TrainingBasicBelow:
		return []string{"Customer Communication"}
	default:
		return nil
	}
}

// staffAverages groups by staff email, preserving first-seen order so later
// sorts tie-break deterministically.
func staffAverages(records []EnrichedFeedbackRecord) []StaffPerformance {
	type bucket struct {
		name  string
		email string
		sum   float64
		count int
	}
	buckets := make(map[string]*bucket)
	var order []string

	for _, rec := range records {
		key := rec.StaffEmail
		b, ok := buckets[key]
		if !ok {
			b = &bucket{name: rec.StaffName, email: rec.StaffEmail}
			buckets[key] = b
			order = append(order, key)
		}
		b.sum += rec.FeedbackScore()
		b.count++
	}

	out := make([]StaffPerformance, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		out = append(out, StaffPerformance{
			StaffName:  b.name,
			StaffEmail: b.email,
			MeanScore:  b.sum / float64(b.count),
			Records:    b.count,
		})
	}
	return out
}
