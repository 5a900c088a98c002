package tools

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mohammad-safakhou/seoagent/provider"
)

// SourceFallback tags synthetic results.
const SourceFallback = "fallback"

// Fallbacks generates synthetic results with the same field shape as the
// real operations. Values are random but never negative.
type Fallbacks struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewFallbacks(rng *rand.Rand, now func() time.Time) *Fallbacks {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if now == nil {
		now = time.Now
	}
	return &Fallbacks{rng: rng, now: now}
}

func (f *Fallbacks) intN(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.IntN(n)
}

func (f *Fallbacks) float(max float64) float64 {
	f.mu.Lock()
	v := f.rng.Float64() * max
	f.mu.Unlock()
	return math.Round(v*100) / 100
}

func (f *Fallbacks) stamp(r provider.Result) provider.Result {
	r["timestamp"] = f.now().UnixMilli()
	r["source"] = SourceFallback
	return r
}

// Keywords matches keyword-research.
func (f *Fallbacks) Keywords(keywords []string) provider.Result {
	rows := make([]any, 0, len(keywords))
	related := make([]any, 0, len(keywords))
	var volume, difficulty, cpc float64
	for _, k := range keywords {
		row := map[string]any{
			"keyword":    k,
			"volume":     f.intN(10000) + 1000,
			"difficulty": f.intN(100),
			"cpc":        f.float(5),
			"trend":      "stable",
		}
		if f.intN(2) == 1 {
			row["trend"] = "increasing"
		}
		volume += float64(row["volume"].(int))
		difficulty += float64(row["difficulty"].(int))
		cpc += row["cpc"].(float64)
		rows = append(rows, row)
		related = append(related, k+" alternative")
	}
	if n := float64(len(keywords)); n > 0 {
		difficulty = math.Round(difficulty / n)
		cpc = math.Round(cpc/n*100) / 100
	}
	return f.stamp(provider.Result{
		"keywords":   rows,
		"volume":     volume,
		"difficulty": difficulty,
		"cpc":        cpc,
		"related":    related,
	})
}

// Backlinks matches backlink-analysis and backlinks-list.
func (f *Fallbacks) Backlinks(domain string) provider.Result {
	return f.stamp(provider.Result{
		"domain":            domain,
		"total_backlinks":   f.intN(1000) + 100,
		"referring_domains": f.intN(200) + 50,
		"domain_rating":     f.intN(100),
		"organic_traffic":   f.intN(50000) + 1000,
	})
}

// Competitors matches competitor-analysis.
func (f *Fallbacks) Competitors(domain string, competitors []string) provider.Result {
	metrics := make([]any, 0, len(competitors))
	for _, c := range competitors {
		metrics = append(metrics, map[string]any{
			"domain":          c,
			"domain_rating":   f.intN(100),
			"organic_traffic": f.intN(100000),
		})
	}
	return f.stamp(provider.Result{
		"domain":             domain,
		"keyword_gaps":       []any{"missed keyword 1", "missed keyword 2"},
		"content_gaps":       []any{"content topic 1", "content topic 2"},
		"backlink_gaps":      []any{"backlink opportunity 1", "backlink opportunity 2"},
		"competitor_metrics": metrics,
	})
}

// KeywordOverview matches keyword-overview.
func (f *Fallbacks) KeywordOverview(keyword string) provider.Result {
	return f.stamp(provider.Result{
		"keyword":     keyword,
		"volume":      f.intN(10000) + 1000,
		"cpc":         f.float(5),
		"competition": f.float(1),
		"results":     f.intN(1000000),
		"trends":      "",
	})
}

// DomainOverview matches domain-overview.
func (f *Fallbacks) DomainOverview(domain string) provider.Result {
	return f.stamp(provider.Result{
		"domain":           domain,
		"organic_keywords": f.intN(5000) + 100,
		"organic_traffic":  f.intN(50000) + 1000,
		"organic_cost":     f.float(10000),
		"adwords_keywords": f.intN(500),
	})
}
