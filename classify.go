package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Optional LLM pass that assigns each review a feedback category from the
// fixed retail taxonomy. Disabled unless classify_categories is set; any
// failure leaves the ingested category untouched and never fails the run.

const defaultClassifyModel = "claude-sonnet-4-5-20250929"

var feedbackCategories = []string{
	"Quality", "Service", "Price", "Delivery", "Customer Support", "Usability",
}

type LLMUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

func (u LLMUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *LLMUsage) Add(other LLMUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

type categorizedReview struct {
	ID       int    `json:"id"`
	Category string `json:"category"`
}

// Injectable for tests.
var classifyCallFn = callAnthropic

// ClassifyFeedbackCategories assigns a feedback category to each record,
// keyed by order ID. Records whose reviews the model skipped, or whole
// batches that failed, are simply absent from the result.
func ClassifyFeedbackCategories(cfg Config, records []RawFeedbackRecord) (map[string]string, LLMUsage, error) {
	if len(records) == 0 {
		return nil, LLMUsage{}, nil
	}

	batchSize := cfg.ClassifyBatchSize
	if batchSize < 1 {
		batchSize = 50
	}

	var batches [][]RawFeedbackRecord
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}

	type batchResult struct {
		categories map[string]string
		usage      LLMUsage
		err        error
	}
	results := make([]batchResult, len(batches))

	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(idx int, batch []RawFeedbackRecord) {
			defer wg.Done()
			systemPrompt, userPrompt := buildClassifyPrompts(batch)
			response, usage, err := classifyCallFn(cfg.AnthropicAPIKey, cfg.ClassifyModel, systemPrompt, userPrompt)
			if err != nil {
				results[idx] = batchResult{err: err}
				return
			}
			categories, err := parseClassifyResponse(response, batch)
			results[idx] = batchResult{categories: categories, usage: usage, err: err}
		}(i, batch)
	}
	wg.Wait()

	merged := make(map[string]string)
	var usage LLMUsage
	var failed int
	for i, res := range results {
		usage.Add(res.usage)
		if res.err != nil {
			failed++
			log.Printf("classify batch=%d error: %v", i, res.err)
			continue
		}
		for orderID, category := range res.categories {
			merged[orderID] = category
		}
	}

	if failed == len(batches) {
		return nil, usage, fmt.Errorf("all %d classify batches failed", failed)
	}
	return merged, usage, nil
}

// ApplyFeedbackCategories fills in classified categories on a copy of the
// record slice; records without a classification keep what ingestion gave
// them.
func ApplyFeedbackCategories(records []RawFeedbackRecord, categories map[string]string) []RawFeedbackRecord {
	if len(categories) == 0 {
		return records
	}
	out := make([]RawFeedbackRecord, len(records))
	copy(out, records)
	for i := range out {
		if cat, ok := categories[out[i].OrderID]; ok && cat != "" {
			out[i].FeedbackCategory = cat
		}
	}
	return out
}

func buildClassifyPrompts(batch []RawFeedbackRecord) (string, string) {
	systemPrompt := fmt.Sprintf(`You classify retail customer feedback into one category.
Choose exactly one category for each review from: %s.
If the review text is empty or none fit, use "Service".

Respond with JSON only (no markdown):
[{"id": 1, "category": "Delivery"}, ...]`, strings.Join(feedbackCategories, ", "))

	var lines strings.Builder
	for i, rec := range batch {
		text := strings.TrimSpace(rec.ReviewText)
		if len(text) > 300 {
			text = text[:300] + "..."
		}
		fmt.Fprintf(&lines, "%d. [rating %d/5] %s\n", i+1, rec.SupportRating, text)
	}

	return systemPrompt, "Classify these reviews:\n\n" + lines.String()
}

func parseClassifyResponse(responseText string, batch []RawFeedbackRecord) (map[string]string, error) {
	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var classified []categorizedReview
	if err := json.Unmarshal([]byte(responseText), &classified); err != nil {
		return nil, fmt.Errorf("parsing classify response: %w (response: %s)", err, responseText)
	}

	valid := make(map[string]bool, len(feedbackCategories))
	for _, c := range feedbackCategories {
		valid[c] = true
	}

	categories := make(map[string]string)
	for _, c := range classified {
		if c.ID < 1 || c.ID > len(batch) {
			continue
		}
		category := strings.TrimSpace(c.Category)
		if !valid[category] {
			continue
		}
		categories[batch[c.ID-1].OrderID] = category
	}
	return categories, nil
}

func callAnthropic(apiKey, model, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", LLMUsage{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := LLMUsage{
		InputTokens:              message.Usage.InputTokens,
		OutputTokens:             message.Usage.OutputTokens,
		CacheCreationInputTokens: message.Usage.CacheCreationInputTokens,
		CacheReadInputTokens:     message.Usage.CacheReadInputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, usage, nil
		}
	}
	return "", usage, fmt.Errorf("no text content in Anthropic response")
}
