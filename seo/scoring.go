package seo

import (
	"math"
	"strings"
)

// Optimization is attached to content results under FieldOptimization.
type Optimization struct {
	Score          int      `json:"score"`
	Suggestions    []string `json:"suggestions"`
	Readability    string   `json:"readability"`
	WordCount      int      `json:"wordCount"`
	KeywordDensity float64  `json:"keywordDensity"`
	PrimaryKeyword string   `json:"primaryKeyword,omitempty"`
}

// Insights is attached to research results under FieldInsights.
type Insights struct {
	SearchVolume   *float64 `json:"searchVolume"`
	CompetitorGaps []string `json:"competitorGaps"`
	Opportunities  []string `json:"opportunities"`
}

// Metrics is attached to analysis results under FieldMetrics. Every score is in [0, 100].
type Metrics struct {
	SearchabilityScore   int `json:"searchabilityScore"`
	CompetitivenessScore int `json:"competitivenessScore"`
	OpportunityScore     int `json:"opportunityScore"`
	TechnicalScore       int `json:"technicalScore"`
}

const (
	minDensity     = 1.0
	maxDensity     = 3.0
	minContentSize = 300
)

// OptimizeContent scores content against its primary keyword. Density is
// the share of words taken by the keyword, in percent; 1-3% scores best.
func OptimizeContent(content, primaryKeyword string) Optimization {
	words := strings.Fields(content)
	opt := Optimization{
		Score:          85,
		WordCount:      len(words),
		Readability:    readability(content, len(words)),
		PrimaryKeyword: primaryKeyword,
	}

	kwWords := len(strings.Fields(primaryKeyword))
	if kwWords > 0 && len(words) > 0 {
		hits := strings.Count(strings.ToLower(content), strings.ToLower(primaryKeyword))
		opt.KeywordDensity = round2(float64(hits*kwWords) / float64(len(words)) * 100)
		switch {
		case opt.KeywordDensity < minDensity:
			opt.Score = 70
			opt.Suggestions = append(opt.Suggestions, "Increase keyword density")
		case opt.KeywordDensity > maxDensity:
			opt.Score = 60
			opt.Suggestions = append(opt.Suggestions, "Reduce keyword density to avoid keyword stuffing")
		default:
			opt.Score = 92
		}
	} else if kwWords == 0 {
		opt.Suggestions = append(opt.Suggestions, "Increase keyword density")
	}

	if opt.WordCount < minContentSize {
		opt.Suggestions = append(opt.Suggestions, "Expand content to at least 300 words")
	}
	opt.Suggestions = append(opt.Suggestions, "Add semantic keywords", "Improve heading structure")
	return opt
}

// readability grades average sentence length.
func readability(content string, words int) string {
	if words == 0 {
		return "Good"
	}
	sentences := len(strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}))
	if sentences == 0 {
		sentences = 1
	}
	avg := float64(words) / float64(sentences)
	switch {
	case avg <= 20:
		return "Good"
	case avg <= 30:
		return "Fair"
	default:
		return "Difficult"
	}
}

// IdentifyOpportunities lists the opportunity notes attached to research results.
func IdentifyOpportunities() []string {
	return []string{
		"Low competition keywords identified",
		"Content gap opportunities found",
		"Competitor weakness detected",
	}
}

// CalculateMetrics derives heuristic scores from what the context learned.
func CalculateMetrics(sc *Context) Metrics {
	m := Metrics{
		SearchabilityScore:   78,
		CompetitivenessScore: 65,
		OpportunityScore:     82,
		TechnicalScore:       90,
	}
	if sc == nil {
		return m
	}
	m.SearchabilityScore += 2 * min(len(sc.Keywords), 5)
	if sc.KeywordAnalysis != nil {
		m.SearchabilityScore -= int(sc.KeywordAnalysis.Difficulty / 10)
	}
	m.CompetitivenessScore -= 3 * min(len(sc.Competitors), 5)
	if sc.CompetitorInsights != nil {
		m.OpportunityScore += min(len(sc.CompetitorInsights.Gaps)+len(sc.CompetitorInsights.Opportunities), 10)
	}
	if sc.DomainMetrics == nil && sc.Domain != "" {
		m.TechnicalScore -= 10
	}

	m.SearchabilityScore = clamp(m.SearchabilityScore)
	m.CompetitivenessScore = clamp(m.CompetitivenessScore)
	m.OpportunityScore = clamp(m.OpportunityScore)
	m.TechnicalScore = clamp(m.TechnicalScore)
	return m
}

func clamp(v int) int {
	return max(0, min(100, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
