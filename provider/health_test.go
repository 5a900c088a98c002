package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mohammad-safakhou/seoagent/provider"
	"github.com/stretchr/testify/assert"
)

type pingGateway struct {
	name string
	err  error
}

func (g pingGateway) Name() string { return g.name }

func (g pingGateway) Call(context.Context, provider.Operation, provider.Params) (provider.Result, error) {
	return nil, provider.ErrUnsupportedOperation
}

func (g pingGateway) Ping(context.Context) error { return g.err }

func TestHealthCheckReportsEveryComponent(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()

	report := provider.HealthCheck(context.Background(), nil,
		[]provider.Gateway{
			pingGateway{name: "ahrefs"},
			pingGateway{name: "semrush", err: errors.New("401")},
		},
		provider.HTTPProbe(provider.LocalServiceKey, up.URL, time.Second),
	)

	assert.Equal(t, map[string]bool{
		"ahrefs":                 true,
		"semrush":                false,
		provider.LocalServiceKey: true,
	}, report)
}

func TestHealthCheckNeverFails(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	report := provider.HealthCheck(context.Background(), nil, nil,
		provider.HTTPProbe(provider.LocalServiceKey, down.URL, time.Second),
		provider.Probe{Name: "panics", Check: func(context.Context) error { panic("boom") }},
		provider.Probe{Name: "nil"},
	)
	assert.Equal(t, map[string]bool{provider.LocalServiceKey: false, "panics": false, "nil": false}, report)
}

func TestErrorKinds(t *testing.T) {
	malformed := provider.Malformed("semrush", provider.KeywordOverview, errors.New("bad csv"))
	assert.ErrorIs(t, malformed, provider.ErrMalformed)
	assert.ErrorIs(t, malformed, provider.ErrUnavailable)

	unavailable := provider.Unavailable("ahrefs", provider.KeywordResearch, errors.New("timeout"))
	assert.ErrorIs(t, unavailable, provider.ErrUnavailable)
	assert.NotErrorIs(t, unavailable, provider.ErrMalformed)
	assert.Contains(t, unavailable.Error(), "ahrefs keyword-research")
}

func TestParamsHelpers(t *testing.T) {
	p := provider.Params{
		"keywords": []any{"a", 1, "b"},
		"limit":    float64(50),
		"country":  "",
	}
	assert.Equal(t, []string{"a", "b"}, p.Strings("keywords"))
	assert.Equal(t, 50, p.Int("limit", 0))
	assert.Equal(t, "US", p.String("country", "US"))

	p.SetDefault("country", "US")
	p.SetDefault("limit", 10)
	assert.Equal(t, "US", p["country"])
	assert.Equal(t, float64(50), p["limit"])

	c := p.Clone()
	c["extra"] = true
	assert.NotContains(t, p, "extra")
}
