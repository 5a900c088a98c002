package seo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptimizeContentDensity(t *testing.T) {
	filler := strings.Repeat("word ", 98)

	cases := []struct {
		name    string
		content string
		keyword string
		score   int
		density float64
	}{
		{name: "no keyword", content: filler, keyword: "", score: 85, density: 0},
		{name: "in range", content: filler + "coffee beans", keyword: "coffee", score: 92, density: 1},
		{name: "too sparse", content: filler + filler + "coffee", keyword: "coffee", score: 70, density: 0.51},
		{name: "stuffed", content: "coffee coffee coffee coffee " + filler, keyword: "coffee", score: 60, density: 3.92},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opt := OptimizeContent(tc.content, tc.keyword)
			assert.Equal(t, tc.score, opt.Score)
			assert.InDelta(t, tc.density, opt.KeywordDensity, 0.01)
			assert.Equal(t, len(strings.Fields(tc.content)), opt.WordCount)
			assert.NotEmpty(t, opt.Suggestions)
		})
	}
}

func TestOptimizeContentEmpty(t *testing.T) {
	opt := OptimizeContent("", "coffee")
	assert.Equal(t, 0, opt.WordCount)
	assert.Equal(t, "Good", opt.Readability)
	assert.NotEmpty(t, opt.Suggestions)
}

func TestReadability(t *testing.T) {
	short := strings.Repeat("Short sentence here. ", 5)
	long := strings.Repeat("word ", 40) + "."
	assert.Equal(t, "Good", OptimizeContent(short, "").Readability)
	assert.Equal(t, "Difficult", OptimizeContent(long, "").Readability)
}

func TestCalculateMetricsStaysInRange(t *testing.T) {
	assert.Equal(t, Metrics{78, 65, 82, 90}, CalculateMetrics(nil))

	sc := &Context{
		Domain:             "x.com",
		Keywords:           []string{"a", "b", "c", "d", "e", "f", "g"},
		Competitors:        []string{"1", "2", "3", "4", "5", "6"},
		KeywordAnalysis:    &KeywordAnalysis{Difficulty: 5000},
		CompetitorInsights: &CompetitorInsights{Gaps: make([]string, 40)},
	}
	m := CalculateMetrics(sc)
	assert.Equal(t, 0, m.SearchabilityScore)
	assert.Equal(t, 50, m.CompetitivenessScore)
	assert.Equal(t, 92, m.OpportunityScore)
	assert.Equal(t, 80, m.TechnicalScore)
}
