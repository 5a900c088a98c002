package seo

import (
	"github.com/mohammad-safakhou/seoagent/provider"
)

const (
	DefaultMarket   = "global"
	DefaultLanguage = "en"
)

// Options are the SEO hints a caller can pass among a method's arguments.
// Empty strings and nil slices mean "not set"; a non-nil empty Keywords
// slice is set and clears earlier keywords.
type Options struct {
	Domain      string   `json:"domain,omitempty" mapstructure:"domain"`
	Keywords    []string `json:"keywords,omitempty" mapstructure:"keywords"`
	Market      string   `json:"market,omitempty" mapstructure:"market"`
	Language    string   `json:"language,omitempty" mapstructure:"language"`
	Competitors []string `json:"competitors,omitempty" mapstructure:"competitors"`
}

// OptionsProvider is implemented by argument types that carry SEO hints.
type OptionsProvider interface {
	SEOOptions() Options
}

// KeywordAnalysis summarizes a keyword-research call for the context's keywords.
type KeywordAnalysis struct {
	Primary    string   `json:"primary"`
	Volume     float64  `json:"volume"`
	Difficulty float64  `json:"difficulty"`
	Related    []string `json:"related"`
	LongTail   []string `json:"longTail"`
}

// CompetitorInsights summarizes a competitor-analysis call.
type CompetitorInsights struct {
	Competitors   []string `json:"competitors"`
	Gaps          []string `json:"gaps"`
	Opportunities []string `json:"opportunities"`
}

// Context is the SEO context assembled for a single enhanced call. It is
// appended as the last argument of the wrapped method and is never shared
// between calls.
type Context struct {
	CallID      string   `json:"callId"`
	Domain      string   `json:"domain,omitempty"`
	Keywords    []string `json:"keywords"`
	Competitors []string `json:"competitors,omitempty"`
	Market      string   `json:"market"`
	Language    string   `json:"language"`

	DomainMetrics      provider.Result     `json:"domainMetrics,omitempty"`
	TopKeywords        provider.Result     `json:"topKeywords,omitempty"`
	KeywordAnalysis    *KeywordAnalysis    `json:"keywordAnalysis,omitempty"`
	CompetitorInsights *CompetitorInsights `json:"competitorInsights,omitempty"`
}

// SEOOptions lets a context received by one agent be passed on to another
// enhanced call.
func (c *Context) SEOOptions() Options {
	if c == nil {
		return Options{}
	}
	return Options{
		Domain:      c.Domain,
		Keywords:    c.Keywords,
		Market:      c.Market,
		Language:    c.Language,
		Competitors: c.Competitors,
	}
}

// ContextFromArgs returns the last *Context among args, or nil.
func ContextFromArgs(args []any) *Context {
	for i := len(args) - 1; i >= 0; i-- {
		if c, ok := args[i].(*Context); ok && c != nil {
			return c
		}
	}
	return nil
}

// ExtractOptions merges the option-shaped arguments in positional order,
// later arguments overriding earlier ones field by field. Arguments of any
// other type are ignored.
func ExtractOptions(args []any) Options {
	var out Options
	for _, arg := range args {
		switch v := arg.(type) {
		case Options:
			out.merge(v)
		case *Options:
			if v != nil {
				out.merge(*v)
			}
		case map[string]any:
			out.merge(optionsFromMap(v))
		case provider.Params:
			out.merge(optionsFromMap(v))
		case OptionsProvider:
			if v != nil {
				out.merge(v.SEOOptions())
			}
		}
	}
	return out
}

func (o *Options) merge(src Options) {
	if src.Domain != "" {
		o.Domain = src.Domain
	}
	if src.Keywords != nil {
		o.Keywords = append([]string{}, src.Keywords...)
	}
	if src.Market != "" {
		o.Market = src.Market
	}
	if src.Language != "" {
		o.Language = src.Language
	}
	if src.Competitors != nil {
		o.Competitors = append([]string{}, src.Competitors...)
	}
}

func optionsFromMap(m map[string]any) Options {
	return Options{
		Domain:      stringField(m, "domain"),
		Keywords:    listField(m, "keywords"),
		Market:      stringField(m, "market"),
		Language:    stringField(m, "language"),
		Competitors: listField(m, "competitors"),
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// listField returns nil when the key is absent or not list-shaped.
func listField(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return append([]string{}, v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, it := range v {
			if s, ok := it.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return nil
}
