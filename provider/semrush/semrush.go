package semrush

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mohammad-safakhou/seoagent/internal/httpclient"
	"github.com/mohammad-safakhou/seoagent/provider"
)

const DefaultBaseURL = "https://api.semrush.com"

const (
	keywordColumns = "Ph,Nq,Cp,Co,Nr,Td"
	domainColumns  = "Dn,Cr,Np,Or,Ot,Oc,Ad"
)

type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Gateway serves keyword and domain overviews from the Semrush analytics API.
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
	return &Gateway{cfg: cfg, http: httpclient.New(cfg.Timeout, cfg.MaxRetries, 0), now: time.Now}
}

func (g *Gateway) Name() string { return string(provider.Semrush) }

func (g *Gateway) Call(ctx context.Context, op provider.Operation, params provider.Params) (provider.Result, error) {
	if g.cfg.APIKey == "" {
		return nil, provider.Unavailable(g.Name(), op, errors.New("api key not configured"))
	}
	database := params.String("database", "us")
	switch op {
	case provider.KeywordOverview:
		row, err := g.query(ctx, op, url.Values{
			"type":           {"phrase_this"},
			"phrase":         {params.String("keyword", "")},
			"database":       {database},
			"export_columns": {keywordColumns},
		})
		if err != nil {
			return nil, err
		}
		return provider.Result{
			"keyword":     col(row, 0),
			"volume":      atoi(col(row, 1)),
			"cpc":         atof(col(row, 2)),
			"competition": atof(col(row, 3)),
			"results":     atoi(col(row, 4)),
			"trends":      col(row, 5),
			"timestamp":   g.now().UnixMilli(),
		}, nil
	case provider.DomainOverview:
		row, err := g.query(ctx, op, url.Values{
			"type":           {"domain_organic"},
			"domain":         {params.String("domain", "")},
			"database":       {database},
			"export_columns": {domainColumns},
		})
		if err != nil {
			return nil, err
		}
		return provider.Result{
			"domain":           col(row, 0),
			"organic_keywords": atoi(col(row, 3)),
			"organic_traffic":  atoi(col(row, 4)),
			"organic_cost":     atof(col(row, 5)),
			"adwords_keywords": atoi(col(row, 6)),
			"timestamp":        g.now().UnixMilli(),
		}, nil
	default:
		return nil, &provider.Error{Provider: g.Name(), Operation: op, Err: provider.ErrUnsupportedOperation}
	}
}

func (g *Gateway) Ping(ctx context.Context) error {
	if g.cfg.APIKey == "" {
		return provider.Unavailable(g.Name(), "ping", errors.New("api key not configured"))
	}
	_, err := g.http.Do(ctx, http.MethodGet, g.cfg.BaseURL+"/ping", nil, nil)
	return err
}

// query fetches a report and returns its first data row.
func (g *Gateway) query(ctx context.Context, op provider.Operation, q url.Values) ([]string, error) {
	q.Set("key", g.cfg.APIKey)
	body, err := g.http.Do(ctx, http.MethodGet, g.cfg.BaseURL+"/?"+q.Encode(), nil, nil)
	if err != nil {
		return nil, provider.Unavailable(g.Name(), op, err)
	}
	row, err := parseReport(body)
	if err != nil {
		return nil, provider.Malformed(g.Name(), op, err)
	}
	return row, nil
}

// parseReport reads a semicolon separated report made of a header line and at least one data line.
func parseReport(body []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("ERROR")) {
		return nil, errors.New(string(trimmed))
	}
	r := csv.NewReader(bytes.NewReader(trimmed))
	r.Comma = ';'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("expected header and data rows, got %d rows", len(records))
	}
	return records[1], nil
}

func col(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
