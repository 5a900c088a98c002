package tools

import (
	"sort"

	"github.com/mohammad-safakhou/seoagent/provider"
)

// Tool binds a logical tool name to the provider operation that serves it.
type Tool struct {
	Name        string
	Aliases     []string
	Description string
	Provider    provider.Client
	Operation   provider.Operation
	InputSchema map[string]any

	prepare  func(provider.Params) provider.Params
	fallback func(*Fallbacks, provider.Params) provider.Result
}

// ToolCard is the public description of a tool.
type ToolCard struct {
	Name        string         `json:"name"`
	Aliases     []string       `json:"aliases,omitempty"`
	Description string         `json:"description"`
	Provider    string         `json:"provider"`
	Operation   string         `json:"operation"`
	InputSchema map[string]any `json:"input_schema"`
}

func (t Tool) Card() ToolCard {
	return ToolCard{
		Name:        t.Name,
		Aliases:     t.Aliases,
		Description: t.Description,
		Provider:    string(t.Provider),
		Operation:   string(t.Operation),
		InputSchema: t.InputSchema,
	}
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	s := map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var (
	strProp  = map[string]any{"type": "string"}
	listProp = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
)

// DefaultTools returns the built-in tool table.
func DefaultTools() []Tool {
	return []Tool{
		{
			Name: string(provider.KeywordResearch), Aliases: []string{"ahrefs-keywords"},
			Description: "Search volume, difficulty and CPC for keywords, or a domain's ranking keywords",
			Provider:    provider.Ahrefs, Operation: provider.KeywordResearch,
			InputSchema: objectSchema(map[string]any{"keywords": listProp, "country": strProp, "domain": strProp, "language": strProp, "limit": map[string]any{"type": "integer"}, "type": strProp}),
			prepare: func(p provider.Params) provider.Params {
				p.SetDefault("country", "US")
				if _, ok := p["keywords"]; !ok {
					p["keywords"] = []string{}
				}
				return p
			},
			fallback: func(f *Fallbacks, p provider.Params) provider.Result { return f.Keywords(p.Strings("keywords")) },
		},
		{
			Name: string(provider.BacklinkAnalysis), Aliases: []string{"ahrefs-backlinks"},
			Description: "Backlink totals, referring domains and domain rating",
			Provider:    provider.Ahrefs, Operation: provider.BacklinkAnalysis,
			InputSchema: objectSchema(map[string]any{"domain": strProp}, "domain"),
			fallback:    func(f *Fallbacks, p provider.Params) provider.Result { return f.Backlinks(p.String("domain", "")) },
		},
		{
			Name: string(provider.CompetitorAnalysis), Aliases: []string{"ahrefs-competitors"},
			Description: "Keyword, content and backlink gaps against up to five competitors",
			Provider:    provider.Ahrefs, Operation: provider.CompetitorAnalysis,
			InputSchema: objectSchema(map[string]any{"domain": strProp, "competitors": listProp}, "domain"),
			prepare: func(p provider.Params) provider.Params {
				competitors := p.Strings("competitors")
				if len(competitors) > provider.MaxCompetitors {
					competitors = competitors[:provider.MaxCompetitors]
				}
				if competitors == nil {
					competitors = []string{}
				}
				p["competitors"] = competitors
				return p
			},
			fallback: func(f *Fallbacks, p provider.Params) provider.Result {
				return f.Competitors(p.String("domain", ""), p.Strings("competitors"))
			},
		},
		{
			Name: string(provider.KeywordOverview), Aliases: []string{"semrush-keywords"},
			Description: "Volume, CPC, competition and trend for a single keyword",
			Provider:    provider.Semrush, Operation: provider.KeywordOverview,
			InputSchema: objectSchema(map[string]any{"keyword": strProp, "database": strProp}, "keyword"),
			prepare: func(p provider.Params) provider.Params {
				p.SetDefault("database", "us")
				return p
			},
			fallback: func(f *Fallbacks, p provider.Params) provider.Result { return f.KeywordOverview(p.String("keyword", "")) },
		},
		{
			Name: string(provider.DomainOverview), Aliases: []string{"semrush-domain"},
			Description: "Organic keywords, traffic and cost for a domain",
			Provider:    provider.Semrush, Operation: provider.DomainOverview,
			InputSchema: objectSchema(map[string]any{"domain": strProp, "database": strProp}, "domain"),
			prepare: func(p provider.Params) provider.Params {
				p.SetDefault("database", "us")
				return p
			},
			fallback: func(f *Fallbacks, p provider.Params) provider.Result { return f.DomainOverview(p.String("domain", "")) },
		},
		{
			Name: string(provider.BacklinksList), Aliases: []string{"mcp-backlinks"},
			Description: "Backlink list from the SEO MCP server",
			Provider:    provider.SEOMCP, Operation: provider.BacklinksList,
			InputSchema: objectSchema(map[string]any{"domain": strProp}, "domain"),
			fallback:    func(f *Fallbacks, p provider.Params) provider.Result { return f.Backlinks(p.String("domain", "")) },
		},
		{
			Name: string(provider.KeywordGenerator), Aliases: []string{"mcp-keyword-generator"},
			Description: "Keyword ideas from the SEO MCP server",
			Provider:    provider.SEOMCP, Operation: provider.KeywordGenerator,
			InputSchema: objectSchema(map[string]any{"keyword": strProp, "country": strProp, "searchEngine": strProp}, "keyword"),
			prepare: func(p provider.Params) provider.Params {
				p.SetDefault("country", "us")
				p.SetDefault("searchEngine", "Google")
				return p
			},
			fallback: func(f *Fallbacks, p provider.Params) provider.Result {
				return f.Keywords([]string{p.String("keyword", "")})
			},
		},
	}
}

// Cards lists tool cards sorted by name.
func Cards(ts []Tool) []ToolCard {
	out := make([]ToolCard, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Card())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
