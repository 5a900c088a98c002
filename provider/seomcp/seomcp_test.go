package seomcp

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mohammad-safakhou/seoagent/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backlinksArgs struct {
	Domain string `json:"domain"`
}

type generatorArgs struct {
	Keyword      string `json:"keyword"`
	Country      string `json:"country"`
	SearchEngine string `json:"search_engine"`
}

func textResult(t *testing.T, v any) *gomcp.CallToolResult {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return &gomcp.CallToolResult{Content: []gomcp.Content{&gomcp.TextContent{Text: string(b)}}}
}

// startSEOServer serves a stub SEO MCP server and records the Authorization
// header of the last request.
func startSEOServer(t *testing.T) (endpoint string, lastAuth *atomic.Value) {
	t.Helper()
	server := gomcp.NewServer(&gomcp.Implementation{Name: "seo-mcp-stub", Version: "1.0.0"}, nil)

	gomcp.AddTool(server, &gomcp.Tool{Name: backlinksTool, Description: "backlinks"},
		func(_ context.Context, _ *gomcp.CallToolRequest, args backlinksArgs) (*gomcp.CallToolResult, any, error) {
			switch args.Domain {
			case "broken.com":
				return &gomcp.CallToolResult{IsError: true, Content: []gomcp.Content{&gomcp.TextContent{Text: "captcha failed"}}}, nil, nil
			case "garbage.com":
				return &gomcp.CallToolResult{Content: []gomcp.Content{&gomcp.TextContent{Text: "not json"}}}, nil, nil
			}
			return textResult(t, map[string]any{"domain": args.Domain, "backlinks": []any{map[string]any{"url": "https://ref.example"}}}), nil, nil
		})
	gomcp.AddTool(server, &gomcp.Tool{Name: keywordGeneratorTool, Description: "keyword ideas"},
		func(_ context.Context, _ *gomcp.CallToolRequest, args generatorArgs) (*gomcp.CallToolResult, any, error) {
			return textResult(t, map[string]any{
				"seed":    args.Keyword,
				"country": args.Country,
				"engine":  args.SearchEngine,
				"ideas":   []any{args.Keyword + " near me"},
			}), nil, nil
		})

	handler := gomcp.NewStreamableHTTPHandler(
		func(*http.Request) *gomcp.Server { return server },
		&gomcp.StreamableHTTPOptions{Stateless: true, JSONResponse: true},
	)
	auth := new(atomic.Value)
	auth.Store("")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv.URL, auth
}

func TestBacklinksList(t *testing.T) {
	endpoint, auth := startSEOServer(t)
	g := New(Config{Endpoint: endpoint, Token: "tok", Timeout: 5 * time.Second})
	t.Cleanup(func() { _ = g.Close() })

	res, err := g.Call(context.Background(), provider.BacklinksList, provider.Params{"domain": "example.com"})
	require.NoError(t, err)
	assert.Equal(t, "example.com", res["domain"])
	assert.Len(t, res["backlinks"], 1)
	assert.Equal(t, "Bearer tok", auth.Load())
}

func TestKeywordGeneratorDefaults(t *testing.T) {
	endpoint, _ := startSEOServer(t)
	g := New(Config{Endpoint: endpoint, Timeout: 5 * time.Second})
	t.Cleanup(func() { _ = g.Close() })

	res, err := g.Call(context.Background(), provider.KeywordGenerator, provider.Params{"keyword": "coffee"})
	require.NoError(t, err)
	assert.Equal(t, "coffee", res["seed"])
	assert.Equal(t, "us", res["country"])
	assert.Equal(t, "Google", res["engine"])
}

func TestToolErrors(t *testing.T) {
	endpoint, _ := startSEOServer(t)
	g := New(Config{Endpoint: endpoint, Timeout: 5 * time.Second})
	t.Cleanup(func() { _ = g.Close() })

	_, err := g.Call(context.Background(), provider.BacklinksList, provider.Params{"domain": "broken.com"})
	assert.ErrorIs(t, err, provider.ErrUnavailable)
	assert.ErrorContains(t, err, "captcha failed")

	_, err = g.Call(context.Background(), provider.BacklinksList, provider.Params{"domain": "garbage.com"})
	assert.ErrorIs(t, err, provider.ErrMalformed)
}

func TestPing(t *testing.T) {
	endpoint, _ := startSEOServer(t)
	g := New(Config{Endpoint: endpoint, Timeout: 5 * time.Second})
	t.Cleanup(func() { _ = g.Close() })

	assert.NoError(t, g.Ping(context.Background()))
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	g := New(Config{Endpoint: endpoint, Timeout: time.Second})
	_, err := g.Call(context.Background(), provider.BacklinksList, provider.Params{"domain": "example.com"})
	assert.ErrorIs(t, err, provider.ErrUnavailable)
	assert.Error(t, g.Ping(context.Background()))
}

// silentListener accepts TCP connections and never answers on them.
func silentListener(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return "http://" + ln.Addr().String() + "/mcp"
}

func TestSilentServerTimesOut(t *testing.T) {
	g := New(Config{Endpoint: silentListener(t), Timeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = g.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, err := g.Call(ctx, provider.BacklinksList, provider.Params{"domain": "example.com"})
		done <- err
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, provider.ErrUnavailable)
	case <-time.After(3 * time.Second):
		t.Fatalf("Call did not return after the gateway timeout")
	}

	pinged := make(chan error, 1)
	go func() { pinged <- g.Ping(context.Background()) }()
	select {
	case err := <-pinged:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatalf("Ping blocked behind a stalled dial")
	}
}

func TestUnsupportedOperation(t *testing.T) {
	g := New(Config{})
	_, err := g.Call(context.Background(), provider.DomainOverview, provider.Params{})
	assert.ErrorIs(t, err, provider.ErrUnsupportedOperation)
}
