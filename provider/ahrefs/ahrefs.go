package ahrefs

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/seoagent/internal/httpclient"
	"github.com/mohammad-safakhou/seoagent/provider"
)

const DefaultBaseURL = "https://apiv2.ahrefs.com"

type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Gateway serves keyword research, backlink and competitor analysis from Ahrefs.
type Gateway struct {
	cfg  Config
	http *httpclient.Client
	now  func() time.Time
}

func New(cfg Config) *Gateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Gateway{
		cfg:  cfg,
		http: httpclient.New(cfg.Timeout, cfg.MaxRetries, 0),
		now:  time.Now,
	}
}

func (g *Gateway) Name() string { return string(provider.Ahrefs) }

func (g *Gateway) Call(ctx context.Context, op provider.Operation, params provider.Params) (provider.Result, error) {
	if g.cfg.APIKey == "" {
		return nil, provider.Unavailable(g.Name(), op, errors.New("api key not configured"))
	}
	switch op {
	case provider.KeywordResearch:
		return g.keywordResearch(ctx, params)
	case provider.BacklinkAnalysis:
		return g.backlinkAnalysis(ctx, params)
	case provider.CompetitorAnalysis:
		return g.competitorAnalysis(ctx, params)
	default:
		return nil, &provider.Error{Provider: g.Name(), Operation: op, Err: provider.ErrUnsupportedOperation}
	}
}

func (g *Gateway) Ping(ctx context.Context) error {
	if g.cfg.APIKey == "" {
		return provider.Unavailable(g.Name(), "ping", errors.New("api key not configured"))
	}
	_, err := g.http.Do(ctx, http.MethodGet, g.cfg.BaseURL+"/ping", g.headers(), nil)
	return err
}

func (g *Gateway) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + g.cfg.APIKey}
}

func (g *Gateway) post(ctx context.Context, op provider.Operation, path string, body map[string]any, out any) error {
	err := g.http.DoJSON(ctx, http.MethodPost, g.cfg.BaseURL+path, g.headers(), body, out)
	if err == nil {
		return nil
	}
	var decodeErr *httpclient.DecodeError
	if errors.As(err, &decodeErr) {
		return provider.Malformed(g.Name(), op, err)
	}
	return provider.Unavailable(g.Name(), op, err)
}

func (g *Gateway) keywordResearch(ctx context.Context, params provider.Params) (provider.Result, error) {
	keywords := params.Strings("keywords")
	body := map[string]any{
		"target":  strings.Join(keywords, ","),
		"country": params.String("country", "US"),
		"mode":    "exact",
		"output":  "json",
	}
	if domain := params.String("domain", ""); domain != "" && len(keywords) == 0 {
		body["target"] = domain
		body["mode"] = "domain"
	}
	if limit := params.Int("limit", 0); limit > 0 {
		body["limit"] = limit
	}
	if t := params.String("type", ""); t != "" {
		body["type"] = t
	}

	var resp struct {
		Keywords        []any   `json:"keywords"`
		Volume          float64 `json:"volume"`
		Difficulty      float64 `json:"difficulty"`
		CPC             float64 `json:"cpc"`
		RelatedKeywords []any   `json:"related_keywords"`
	}
	if err := g.post(ctx, provider.KeywordResearch, "/keywords-explorer", body, &resp); err != nil {
		return nil, err
	}
	return provider.Result{
		"keywords":   orEmpty(resp.Keywords),
		"volume":     resp.Volume,
		"difficulty": resp.Difficulty,
		"cpc":        resp.CPC,
		"related":    orEmpty(resp.RelatedKeywords),
		"timestamp":  g.now().UnixMilli(),
	}, nil
}

func (g *Gateway) backlinkAnalysis(ctx context.Context, params provider.Params) (provider.Result, error) {
	body := map[string]any{
		"target": params.String("domain", ""),
		"mode":   "domain",
		"output": "json",
	}
	var resp struct {
		Backlinks        float64 `json:"backlinks"`
		ReferringDomains float64 `json:"referring_domains"`
		DomainRating     float64 `json:"domain_rating"`
		OrganicTraffic   float64 `json:"organic_traffic"`
	}
	if err := g.post(ctx, provider.BacklinkAnalysis, "/site-explorer", body, &resp); err != nil {
		return nil, err
	}
	return provider.Result{
		"total_backlinks":   resp.Backlinks,
		"referring_domains": resp.ReferringDomains,
		"domain_rating":     resp.DomainRating,
		"organic_traffic":   resp.OrganicTraffic,
		"timestamp":         g.now().UnixMilli(),
	}, nil
}

func (g *Gateway) competitorAnalysis(ctx context.Context, params provider.Params) (provider.Result, error) {
	competitors := params.Strings("competitors")
	if len(competitors) > provider.MaxCompetitors {
		competitors = competitors[:provider.MaxCompetitors]
	}
	body := map[string]any{
		"target":      params.String("domain", ""),
		"competitors": competitors,
		"output":      "json",
	}
	var resp struct {
		KeywordGaps  []any `json:"keyword_gaps"`
		ContentGaps  []any `json:"content_gaps"`
		BacklinkGaps []any `json:"backlink_gaps"`
		Competitors  []any `json:"competitors"`
	}
	if err := g.post(ctx, provider.CompetitorAnalysis, "/competitive-analysis", body, &resp); err != nil {
		return nil, err
	}
	return provider.Result{
		"keyword_gaps":       orEmpty(resp.KeywordGaps),
		"content_gaps":       orEmpty(resp.ContentGaps),
		"backlink_gaps":      orEmpty(resp.BacklinkGaps),
		"competitor_metrics": orEmpty(resp.Competitors),
		"timestamp":          g.now().UnixMilli(),
	}, nil
}

func orEmpty(v []any) []any {
	if v == nil {
		return []any{}
	}
	return v
}
