package ahrefs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mohammad-safakhou/seoagent/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, h http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	g := New(Config{APIKey: "secret", BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
	g.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return g
}

func TestKeywordResearch(t *testing.T) {
	var body map[string]any
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/keywords-explorer", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"keywords":[{"keyword":"seo"}],"volume":1200,"difficulty":40,"cpc":1.5,"related_keywords":["seo tools"]}`))
	})

	res, err := g.Call(context.Background(), provider.KeywordResearch, provider.Params{"keywords": []string{"seo", "sem"}, "country": "DE"})
	require.NoError(t, err)
	assert.Equal(t, "seo,sem", body["target"])
	assert.Equal(t, "DE", body["country"])
	assert.Equal(t, "exact", body["mode"])
	assert.Equal(t, 1200.0, res["volume"])
	assert.Equal(t, []any{"seo tools"}, res["related"])
	assert.Equal(t, int64(1700000000000), res["timestamp"])
}

func TestKeywordResearchForDomain(t *testing.T) {
	var body map[string]any
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{}`))
	})

	res, err := g.Call(context.Background(), provider.KeywordResearch, provider.Params{"domain": "example.com", "limit": 50, "type": "organic"})
	require.NoError(t, err)
	assert.Equal(t, "example.com", body["target"])
	assert.Equal(t, "domain", body["mode"])
	assert.Equal(t, 50.0, body["limit"])
	assert.Equal(t, "organic", body["type"])
	assert.Equal(t, []any{}, res["keywords"])
}

func TestCompetitorAnalysisTruncates(t *testing.T) {
	var body struct {
		Competitors []string `json:"competitors"`
	}
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"keyword_gaps":["k"],"competitors":[{"domain":"a.com"}]}`))
	})

	res, err := g.Call(context.Background(), provider.CompetitorAnalysis, provider.Params{
		"domain":      "example.com",
		"competitors": []string{"a", "b", "c", "d", "e", "f"},
	})
	require.NoError(t, err)
	assert.Len(t, body.Competitors, provider.MaxCompetitors)
	assert.Equal(t, []any{"k"}, res["keyword_gaps"])
	assert.Equal(t, []any{}, res["content_gaps"])
	assert.Len(t, res["competitor_metrics"], 1)
}

func TestMalformedResponse(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>rate limited</html>`))
	})

	_, err := g.Call(context.Background(), provider.BacklinkAnalysis, provider.Params{"domain": "example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrMalformed)
	assert.ErrorIs(t, err, provider.ErrUnavailable)

	var perr *provider.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "ahrefs", perr.Provider)
	assert.Equal(t, provider.BacklinkAnalysis, perr.Operation)
}

func TestUpstreamErrorStatus(t *testing.T) {
	var hits atomic.Int32
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	_, err := g.Call(context.Background(), provider.BacklinkAnalysis, provider.Params{"domain": "example.com"})
	assert.ErrorIs(t, err, provider.ErrUnavailable)
	assert.NotErrorIs(t, err, provider.ErrMalformed)
	assert.Equal(t, int32(1), hits.Load())
}

func TestMissingAPIKey(t *testing.T) {
	g := New(Config{})
	_, err := g.Call(context.Background(), provider.KeywordResearch, provider.Params{})
	assert.ErrorIs(t, err, provider.ErrUnavailable)
	assert.Error(t, g.Ping(context.Background()))
}

func TestUnsupportedOperation(t *testing.T) {
	g := New(Config{APIKey: "k"})
	_, err := g.Call(context.Background(), provider.DomainOverview, provider.Params{})
	assert.ErrorIs(t, err, provider.ErrUnsupportedOperation)
}
