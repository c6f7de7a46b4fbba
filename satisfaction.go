package main

// SatisfactionIndex blends a compound sentiment score and the customer
// support rating into a single 0-100 index, each contributing 50 points at
// full scale. The blend is fixed; only the inputs vary.
//
//	index = ((sentiment + 1) / 2) * 50 + (rating / 5) * 50
func SatisfactionIndex(sentimentScore float64, supportRating int) (float64, error) {
	if sentimentScore < -1 || sentimentScore > 1 {
		return 0, invalidInput("sentiment_score", "%.4f outside [-1, 1]", sentimentScore)
	}
	if supportRating < 1 || supportRating > 5 {
		return 0, invalidInput("support_rating", "%d outside [1, 5]", supportRating)
	}

	sentimentIndex := ((sentimentScore + 1) / 2) * 50
	supportIndex := (float64(supportRating) / 5) * 50
	return sentimentIndex + supportIndex, nil
}
