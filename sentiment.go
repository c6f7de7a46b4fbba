package main

import (
	"math"
	"strings"
)

// Lexicon/rule-based polarity scoring. Word valences live on a roughly
// [-4, 4] scale and the summed valence is squashed into [-1, 1], so the
// compound score is comparable across reviews of different lengths.
// Deterministic: the same text always yields the same score.

// normalizationAlpha dampens the compound score for short texts.
const normalizationAlpha = 15.0

// negationFlip is the factor applied to a valence in the scope of a negator.
const negationFlip = -0.74

// boosterStep is the valence adjustment contributed by one intensifier.
const boosterStep = 0.293

var sentimentLexicon = map[string]float64{
	// positive
	"good": 1.9, "great": 3.1, "excellent": 2.7, "amazing": 2.8,
	"awesome": 3.1, "fantastic": 2.6, "wonderful": 2.7, "perfect": 2.7,
	"love": 3.2, "loved": 2.9, "loving": 2.9, "like": 1.5, "liked": 1.8,
	"best": 3.2, "better": 1.9, "nice": 1.8, "happy": 2.7, "pleased": 1.9,
	"satisfied": 2.0, "satisfying": 2.2, "helpful": 1.8, "friendly": 2.2,
	"fast": 1.3, "quick": 1.2, "prompt": 1.4, "easy": 1.9, "smooth": 1.4,
	"fresh": 1.3, "clean": 1.6, "reliable": 1.9, "sturdy": 1.4,
	"durable": 1.6, "comfortable": 1.6, "recommend": 1.7, "recommended": 1.8,
	"impressed": 2.2, "impressive": 2.3, "quality": 1.3, "value": 1.2,
	"works": 1.2, "worked": 1.2, "working": 1.1, "thanks": 1.9,
	"thank": 1.7, "delighted": 2.9, "superb": 3.0, "outstanding": 3.1,
	"flawless": 2.7, "bargain": 1.8, "polite": 1.9, "courteous": 2.0,
	"responsive": 1.6, "affordable": 1.5, "enjoyed": 2.1,

	// negative
	"bad": -2.5, "terrible": -2.1, "horrible": -2.5, "awful": -2.0,
	"worst": -3.1, "worse": -2.1, "poor": -2.1, "disappointing": -2.2,
	"disappointed": -2.1, "disappointment": -2.3, "hate": -2.7,
	"hated": -3.2, "useless": -1.8, "broken": -1.6, "broke": -1.6,
	"damaged": -1.9, "defective": -2.1, "faulty": -1.9, "cheap": -1.1,
	"flimsy": -1.5, "slow": -1.2, "late": -1.3, "delayed": -1.4,
	"delay": -1.3, "rude": -2.4, "unhelpful": -1.9, "ignored": -1.9,
	"missing": -1.5, "wrong": -2.1, "incorrect": -1.6, "refund": -0.8,
	"return": -0.6, "returned": -0.8, "complaint": -1.4, "complain": -1.6,
	"problem": -1.7, "problems": -1.7, "issue": -1.3, "issues": -1.4,
	"fail": -2.3, "failed": -2.2, "failure": -2.3, "waste": -1.8,
	"wasted": -2.0, "scam": -2.6, "fraud": -2.9, "dirty": -1.7,
	"stale": -1.5, "expired": -1.8, "overpriced": -1.7, "expensive": -0.9,
	"leaked": -1.4, "leaking": -1.4, "cracked": -1.5, "scratched": -1.2,
	"stopped": -1.1, "noisy": -1.2, "unusable": -2.2, "unacceptable": -2.4,
	"angry": -2.3, "upset": -1.9, "frustrated": -2.1, "frustrating": -2.2,
	"annoying": -1.8, "annoyed": -1.8, "regret": -2.0, "misleading": -1.9,
	"lost": -1.3, "never": -1.3, "disgusting": -2.8, "pathetic": -2.6,
}

var sentimentNegators = map[string]bool{
	"not": true, "no": true, "never": true, "neither": true, "nor": true,
	"nothing": true, "nowhere": true, "hardly": true, "barely": true,
	"scarcely": true, "without": true, "cannot": true, "cant": true,
	"dont": true, "didnt": true, "doesnt": true, "wont": true,
	"wasnt": true, "werent": true, "isnt": true, "arent": true,
	"couldnt": true, "wouldnt": true, "shouldnt": true,
}

var sentimentBoosters = map[string]float64{
	"very": boosterStep, "extremely": boosterStep, "really": boosterStep,
	"so": boosterStep, "totally": boosterStep, "absolutely": boosterStep,
	"completely": boosterStep, "incredibly": boosterStep,
	"super": boosterStep, "highly": boosterStep, "truly": boosterStep,
	"utterly": boosterStep,
	"slightly": -boosterStep, "somewhat": -boosterStep,
	"barely": -boosterStep, "kinda": -boosterStep, "marginally": -boosterStep,
}

// ScoreSentiment maps free text to a compound polarity score in [-1, 1].
// Empty or whitespace-only text scores 0 (neutral) rather than failing.
func ScoreSentiment(text string) float64 {
	tokens := tokenizeReview(text)
	if len(tokens) == 0 {
		return 0
	}

	var sum float64
	for i, tok := range tokens {
		valence, ok := sentimentLexicon[tok]
		if !ok {
			continue
		}

		// Intensifiers and dampeners in the three preceding tokens, with
		// the effect fading the further back they sit.
		scalar := 0.0
		for dist := 1; dist <= 3 && i-dist >= 0; dist++ {
			boost, isBooster := sentimentBoosters[tokens[i-dist]]
			if !isBooster {
				continue
			}
			switch dist {
			case 2:
				boost *= 0.95
			case 3:
				boost *= 0.9
			}
			scalar += boost
		}
		if valence > 0 {
			valence += scalar
		} else {
			valence -= scalar
		}

		// Negation in the three preceding tokens flips and dampens.
		for dist := 1; dist <= 3 && i-dist >= 0; dist++ {
			prev := tokens[i-dist]
			if prev == tok {
				continue
			}
			if sentimentNegators[prev] {
				valence *= negationFlip
				break
			}
		}

		sum += valence
	}

	compound := sum / math.Sqrt(sum*sum+normalizationAlpha)
	if compound > 1 {
		compound = 1
	} else if compound < -1 {
		compound = -1
	}
	return compound
}

// ClassifySentiment buckets a compound score under a configured threshold
// pair. negThreshold must be negative and posThreshold positive; the pair is
// deployment configuration, not a constant (0.5/-0.5 and 0.1/-0.1 are both
// in production use).
func ClassifySentiment(compound, negThreshold, posThreshold float64) string {
	switch {
	case compound >= posThreshold:
		return SentimentPositive
	case compound <= negThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func tokenizeReview(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, "'", "")
		f = strings.Trim(f, ".,!?;:\"()[]{}<>*-_/")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
