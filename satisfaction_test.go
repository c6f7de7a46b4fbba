package main

import (
	"errors"
	"math"
	"testing"
)

func TestSatisfactionIndexAnchors(t *testing.T) {
	tests := []struct {
		sentiment float64
		rating    int
		want      float64
	}{
		{1, 5, 100},
		{-1, 1, 10},
		{0, 5, 75},
		{0, 1, 35},
		{-1, 5, 50},
		{1, 1, 60},
	}
	for _, tt := range tests {
		got, err := SatisfactionIndex(tt.sentiment, tt.rating)
		if err != nil {
			t.Fatalf("SatisfactionIndex(%f, %d) error: %v", tt.sentiment, tt.rating, err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("SatisfactionIndex(%f, %d) = %f, want %f", tt.sentiment, tt.rating, got, tt.want)
		}
	}
}

func TestSatisfactionIndexBounded(t *testing.T) {
	for _, sentiment := range []float64{-1, -0.75, -0.3, 0, 0.3, 0.75, 1} {
		for rating := 1; rating <= 5; rating++ {
			got, err := SatisfactionIndex(sentiment, rating)
			if err != nil {
				t.Fatalf("SatisfactionIndex(%f, %d) error: %v", sentiment, rating, err)
			}
			if got < 0 || got > 100 {
				t.Fatalf("SatisfactionIndex(%f, %d) = %f outside [0, 100]", sentiment, rating, got)
			}
		}
	}
}

func TestSatisfactionIndexRejectsBadInput(t *testing.T) {
	cases := []struct {
		sentiment float64
		rating    int
	}{
		{0, 0},
		{0, 6},
		{0, 7},
		{0, -1},
		{1.5, 3},
		{-1.01, 3},
	}
	for _, tt := range cases {
		_, err := SatisfactionIndex(tt.sentiment, tt.rating)
		if err == nil {
			t.Fatalf("SatisfactionIndex(%f, %d) expected error", tt.sentiment, tt.rating)
		}
		var invalid *InvalidInputError
		if !errors.As(err, &invalid) {
			t.Fatalf("SatisfactionIndex(%f, %d) error %v is not InvalidInputError", tt.sentiment, tt.rating, err)
		}
	}
}
