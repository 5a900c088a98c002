// Package mcp exposes the SEO tools and context builder to MCP clients.
//
// Start: `seoagent mcp` (stdio). Agents connect and use "tools/list" and
// "tools/call"; tool names are the canonical dispatcher names.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mohammad-safakhou/seoagent/provider"
	"github.com/mohammad-safakhou/seoagent/seo"
	"github.com/mohammad-safakhou/seoagent/tools"
	"go.uber.org/zap"
)

// ContextTool builds an SEO context from an options object.
const ContextTool = "seo-context"

// Server holds shared deps (the only state).
type Server struct {
	tools    *tools.Dispatcher
	enhancer *seo.Enhancer
	logger   *zap.Logger
	mcp      *gomcp.Server
}

// NewServer registers one MCP tool per dispatcher tool plus ContextTool.
func NewServer(d *tools.Dispatcher, enh *seo.Enhancer, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		tools:    d,
		enhancer: enh,
		logger:   logger,
		mcp:      gomcp.NewServer(&gomcp.Implementation{Name: "seoagent", Version: version}, nil),
	}
	for _, c := range tools.Cards(d.Tools()) {
		s.mcp.AddTool(&gomcp.Tool{
			Name:        c.Name,
			Description: c.Description,
			InputSchema: c.InputSchema,
		}, s.callTool(c.Name))
	}
	if enh != nil {
		s.mcp.AddTool(&gomcp.Tool{
			Name:        ContextTool,
			Description: "Build an SEO context (domain metrics, top keywords, keyword analysis, competitor insights)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"domain":      map[string]any{"type": "string"},
					"keywords":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"market":      map[string]any{"type": "string"},
					"language":    map[string]any{"type": "string"},
					"competitors": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
			},
		}, s.buildContext)
	}
	return s
}

// MCP returns the underlying SDK server, e.g. to mount it over HTTP.
func (s *Server) MCP() *gomcp.Server { return s.mcp }

// Run serves over stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}

func (s *Server) callTool(name string) gomcp.ToolHandler {
	return func(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		params := provider.Params{}
		if err := decodeArgs(req, &params); err != nil {
			return errorResult(err), nil
		}
		res, err := s.tools.Invoke(ctx, name, params)
		if err != nil {
			s.logger.Warn("mcp tool call failed", zap.String("tool", name), zap.Error(err))
			return errorResult(err), nil
		}
		return jsonResult(res)
	}
}

func (s *Server) buildContext(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var opts seo.Options
	if err := decodeArgs(req, &opts); err != nil {
		return errorResult(err), nil
	}
	sc := s.enhancer.Build(ctx, []any{opts})
	if len(sc.Keywords) > 0 {
		sc.KeywordAnalysis = s.enhancer.AnalyzeKeywords(ctx, sc.Keywords, sc.Language)
	}
	if sc.Domain != "" {
		sc.CompetitorInsights = s.enhancer.CompetitorInsights(ctx, sc.Domain, sc.Competitors)
	}
	return jsonResult(sc)
}

func decodeArgs(req *gomcp.CallToolRequest, v any) error {
	if req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func jsonResult(v any) (*gomcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &gomcp.CallToolResult{Content: []gomcp.Content{&gomcp.TextContent{Text: string(b)}}}, nil
}

func errorResult(err error) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{IsError: true, Content: []gomcp.Content{&gomcp.TextContent{Text: err.Error()}}}
}
