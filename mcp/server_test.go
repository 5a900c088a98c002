package mcp

import (
	"context"
	"encoding/json"
	"testing"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mohammad-safakhou/seoagent/seo"
	"github.com/mohammad-safakhou/seoagent/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T) *gomcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	d := tools.NewDispatcher(nil, nil)
	s := NewServer(d, seo.NewEnhancer(d), "test", nil)

	st, ct := gomcp.NewInMemoryTransports()
	ss, err := s.MCP().Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func decodeText(t *testing.T, res *gomcp.CallToolResult, v any) {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*gomcp.TextContent)
	require.True(t, ok, "unexpected content %T", res.Content[0])
	require.NoError(t, json.Unmarshal([]byte(text.Text), v))
}

func TestListTools(t *testing.T) {
	cs := connect(t)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	assert.Len(t, names, 8)
	for _, n := range []string{"keyword-research", "backlink-analysis", "competitor-analysis", "domain-overview", ContextTool} {
		assert.True(t, names[n], "missing tool %s", n)
	}
}

func TestCallToolUsesFallback(t *testing.T) {
	cs := connect(t)
	res, err := cs.CallTool(context.Background(), &gomcp.CallToolParams{
		Name:      "backlink-analysis",
		Arguments: map[string]any{"domain": "example.com"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out map[string]any
	decodeText(t, res, &out)
	assert.Equal(t, "example.com", out["domain"])
	assert.Equal(t, tools.SourceFallback, out["source"])
}

func TestContextTool(t *testing.T) {
	cs := connect(t)
	res, err := cs.CallTool(context.Background(), &gomcp.CallToolParams{
		Name: ContextTool,
		Arguments: map[string]any{
			"domain":      "grabgifts.ru",
			"keywords":    []string{"gift exchange"},
			"competitors": []string{"gifts.ru"},
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var sc seo.Context
	decodeText(t, res, &sc)
	assert.Equal(t, "grabgifts.ru", sc.Domain)
	assert.Equal(t, seo.DefaultLanguage, sc.Language)
	require.NotNil(t, sc.KeywordAnalysis)
	assert.Equal(t, "gift exchange", sc.KeywordAnalysis.Primary)
	require.NotNil(t, sc.CompetitorInsights)
}
