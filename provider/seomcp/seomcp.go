package seomcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mohammad-safakhou/seoagent/provider"
)

const DefaultEndpoint = "http://localhost:8000/mcp"

// Remote tool names exposed by the community SEO MCP server.
const (
	backlinksTool        = "get_backlinks_list"
	keywordGeneratorTool = "keyword_generator"
)

type Config struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// Gateway talks to an SEO MCP server over streamable HTTP. The session is
// opened on first use and dropped after a transport failure.
type Gateway struct {
	cfg    Config
	client *mcp.Client

	mu      sync.Mutex
	session *mcp.ClientSession
}

func New(cfg Config) *Gateway {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Gateway{
		cfg:    cfg,
		client: mcp.NewClient(&mcp.Implementation{Name: "seoagent", Version: "0.1.0"}, nil),
	}
}

func (g *Gateway) Name() string { return string(provider.SEOMCP) }

func (g *Gateway) Call(ctx context.Context, op provider.Operation, params provider.Params) (provider.Result, error) {
	var (
		tool string
		args map[string]any
	)
	switch op {
	case provider.BacklinksList:
		tool = backlinksTool
		args = map[string]any{"domain": params.String("domain", "")}
	case provider.KeywordGenerator:
		tool = keywordGeneratorTool
		args = map[string]any{
			"keyword":       params.String("keyword", ""),
			"country":       params.String("country", "us"),
			"search_engine": params.String("searchEngine", "Google"),
		}
	default:
		return nil, &provider.Error{Provider: g.Name(), Operation: op, Err: provider.ErrUnsupportedOperation}
	}

	session, err := g.connect(ctx)
	if err != nil {
		return nil, provider.Unavailable(g.Name(), op, err)
	}
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()
	res, err := session.CallTool(callCtx, &mcp.CallToolParams{Name: tool, Arguments: args})
	if err != nil {
		g.reset(session)
		return nil, provider.Unavailable(g.Name(), op, err)
	}
	if res.IsError {
		return nil, provider.Unavailable(g.Name(), op, errors.New(textOf(res)))
	}
	out, err := decodeResult(res)
	if err != nil {
		return nil, provider.Malformed(g.Name(), op, err)
	}
	return out, nil
}

// Ping lists the server's tools, which requires a live session.
func (g *Gateway) Ping(ctx context.Context) error {
	session, err := g.connect(ctx)
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()
	if _, err := session.ListTools(pingCtx, nil); err != nil {
		g.reset(session)
		return err
	}
	return nil
}

// Close ends the MCP session if one is open.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return nil
	}
	err := g.session.Close()
	g.session = nil
	return err
}

// connect returns the open session or dials a new one. The dial is bounded
// by ctx and the gateway timeout and runs without holding g.mu.
func (g *Gateway) connect(ctx context.Context) (*mcp.ClientSession, error) {
	g.mu.Lock()
	session := g.session
	g.mu.Unlock()
	if session != nil {
		return session, nil
	}

	transport := &mcp.StreamableClientTransport{Endpoint: g.cfg.Endpoint}
	if token := strings.TrimSpace(g.cfg.Token); token != "" {
		transport.HTTPClient = &http.Client{Transport: &bearerRoundTripper{base: http.DefaultTransport, token: token}}
	}
	dialCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()
	session, err := g.client.Connect(dialCtx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect seo mcp server: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session != nil {
		// lost a race with another dial
		_ = session.Close()
		return g.session, nil
	}
	g.session = session
	return session, nil
}

func (g *Gateway) reset(session *mcp.ClientSession) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == session {
		_ = session.Close()
		g.session = nil
	}
}

// decodeResult prefers structured content and falls back to the first JSON text block.
func decodeResult(res *mcp.CallToolResult) (provider.Result, error) {
	if res.StructuredContent != nil {
		raw, err := json.Marshal(res.StructuredContent)
		if err != nil {
			return nil, err
		}
		var out provider.Result
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	for _, c := range res.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			var out provider.Result
			if err := json.Unmarshal([]byte(text.Text), &out); err != nil {
				return nil, err
			}
			if out == nil {
				return nil, errors.New("empty result object")
			}
			return out, nil
		}
	}
	return nil, errors.New("no text content in tool result")
}

func textOf(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	if len(parts) == 0 {
		return "tool reported an error"
	}
	return strings.Join(parts, "; ")
}

type bearerRoundTripper struct {
	base  http.RoundTripper
	token string
}

func (rt *bearerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	value := rt.token
	if !strings.HasPrefix(strings.ToLower(value), "bearer ") {
		value = "Bearer " + value
	}
	clone.Header.Set("Authorization", value)
	return rt.base.RoundTrip(clone)
}
