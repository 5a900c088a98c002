package seo

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/mohammad-safakhou/seoagent/provider"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TopKeywordsLimit caps the organic keywords fetched for a domain.
const TopKeywordsLimit = 50

// Invoker runs a named SEO tool. *tools.Dispatcher satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, tool string, params provider.Params) (provider.Result, error)
}

// Builder assembles a Context from call arguments and looks up the SEO data
// the wrappers need. Tool failures never surface; the dispatcher already
// substitutes fallback data, so the only errors left are unknown tools,
// which are logged and leave the field empty.
type Builder struct {
	tools  Invoker
	logger *zap.Logger
	newID  func() string
}

func NewBuilder(tools Invoker, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{tools: tools, logger: logger, newID: uuid.NewString}
}

// Build scans args for options and, when a domain is known, fetches its
// domain metrics and top organic keywords.
func (b *Builder) Build(ctx context.Context, args []any) *Context {
	opts := ExtractOptions(args)
	sc := &Context{
		CallID:      b.newID(),
		Domain:      opts.Domain,
		Keywords:    opts.Keywords,
		Competitors: opts.Competitors,
		Market:      opts.Market,
		Language:    opts.Language,
	}
	if sc.Keywords == nil {
		sc.Keywords = []string{}
	}
	if sc.Market == "" {
		sc.Market = DefaultMarket
	}
	if sc.Language == "" {
		sc.Language = DefaultLanguage
	}

	if sc.Domain != "" {
		var g errgroup.Group
		g.Go(func() error {
			sc.DomainMetrics = b.DomainMetrics(ctx, sc.Domain)
			return nil
		})
		g.Go(func() error {
			sc.TopKeywords = b.TopKeywords(ctx, sc.Domain, sc.Language)
			return nil
		})
		_ = g.Wait()
	}

	b.logger.Debug("seo context built",
		zap.String("call_id", sc.CallID),
		zap.String("domain", sc.Domain),
		zap.Int("keywords", len(sc.Keywords)),
		zap.String("market", sc.Market),
		zap.String("language", sc.Language))
	return sc
}

// DomainMetrics returns the domain overview for domain.
func (b *Builder) DomainMetrics(ctx context.Context, domain string) provider.Result {
	return b.invoke(ctx, string(provider.DomainOverview), provider.Params{"domain": domain})
}

// TopKeywords returns the domain's top organic keywords.
func (b *Builder) TopKeywords(ctx context.Context, domain, language string) provider.Result {
	if language == "" {
		language = DefaultLanguage
	}
	return b.invoke(ctx, string(provider.KeywordResearch), provider.Params{
		"domain":   domain,
		"language": language,
		"limit":    TopKeywordsLimit,
		"type":     "organic",
	})
}

// AnalyzeKeywords researches keywords; the first one is the primary keyword.
func (b *Builder) AnalyzeKeywords(ctx context.Context, keywords []string, language string) *KeywordAnalysis {
	if language == "" {
		language = DefaultLanguage
	}
	ka := &KeywordAnalysis{Related: []string{}, LongTail: []string{}}
	if len(keywords) > 0 {
		ka.Primary = keywords[0]
	}
	res := b.invoke(ctx, string(provider.KeywordResearch), provider.Params{
		"keywords": append([]string{}, keywords...),
		"language": language,
	})
	if res == nil {
		return ka
	}
	p := provider.Params(res)
	ka.Volume = number(res["volume"])
	ka.Difficulty = number(res["difficulty"])
	if related := p.Strings("related"); related != nil {
		ka.Related = related
	}
	if longTail := p.Strings("longTail"); longTail != nil {
		ka.LongTail = longTail
	} else if longTail := p.Strings("long_tail"); longTail != nil {
		ka.LongTail = longTail
	}
	return ka
}

// CompetitorInsights compares domain against competitors (at most five are used).
func (b *Builder) CompetitorInsights(ctx context.Context, domain string, competitors []string) *CompetitorInsights {
	ci := &CompetitorInsights{Competitors: []string{}, Gaps: []string{}, Opportunities: []string{}}
	if competitors == nil {
		competitors = []string{}
	}
	res := b.invoke(ctx, string(provider.CompetitorAnalysis), provider.Params{
		"domain":      domain,
		"competitors": append([]string{}, competitors...),
	})
	if res == nil {
		return ci
	}
	p := provider.Params(res)
	if metrics, ok := res["competitor_metrics"].([]any); ok {
		for _, m := range metrics {
			if row, ok := m.(map[string]any); ok {
				if d, ok := row["domain"].(string); ok && d != "" {
					ci.Competitors = append(ci.Competitors, d)
				}
			}
		}
	} else if domains := p.Strings("domains"); domains != nil {
		ci.Competitors = domains
	}
	if gaps := p.Strings("keyword_gaps"); gaps != nil {
		ci.Gaps = gaps
	}
	if opps := p.Strings("content_gaps"); opps != nil {
		ci.Opportunities = opps
	}
	return ci
}

func (b *Builder) invoke(ctx context.Context, tool string, params provider.Params) provider.Result {
	if b.tools == nil {
		return nil
	}
	res, err := b.tools.Invoke(ctx, tool, params)
	if err != nil {
		b.logger.Warn("seo tool call failed", zap.String("tool", tool), zap.Error(err))
		return nil
	}
	return res
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}
