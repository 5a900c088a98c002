package seo

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mohammad-safakhou/seoagent/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type invocation struct {
	tool   string
	params provider.Params
}

type recordingInvoker struct {
	mu      sync.Mutex
	calls   []invocation
	results map[string]provider.Result
	err     error
}

func (r *recordingInvoker) Invoke(_ context.Context, tool string, params provider.Params) (provider.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, invocation{tool: tool, params: params})
	if r.err != nil {
		return nil, r.err
	}
	if res, ok := r.results[tool]; ok {
		return res.Clone(), nil
	}
	return provider.Result{"tool": tool}, nil
}

func (r *recordingInvoker) byTool(tool string) []invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []invocation
	for _, c := range r.calls {
		if c.tool == tool {
			out = append(out, c)
		}
	}
	return out
}

func TestExtractOptionsLastWriteWins(t *testing.T) {
	got := ExtractOptions([]any{
		"topic",
		42,
		map[string]any{"domain": "a.com", "keywords": []any{"x", "y"}, "market": "us"},
		Options{Domain: "b.com", Market: "de"},
		&Options{Language: "ru"},
		map[string]any{"domain": "", "competitors": []string{"c.com"}},
		nil,
	})
	want := Options{
		Domain:      "b.com",
		Keywords:    []string{"x", "y"},
		Market:      "de",
		Language:    "ru",
		Competitors: []string{"c.com"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractOptionsEmptyKeywordListIsPresent(t *testing.T) {
	got := ExtractOptions([]any{
		map[string]any{"keywords": []string{"a"}},
		map[string]any{"keywords": []any{}},
	})
	require.NotNil(t, got.Keywords)
	assert.Empty(t, got.Keywords)

	got = ExtractOptions([]any{
		map[string]any{"keywords": []string{"a"}},
		map[string]any{"language": "fr"},
	})
	assert.Equal(t, []string{"a"}, got.Keywords)
}

func TestExtractOptionsIgnoresNonOptionArguments(t *testing.T) {
	type request struct{ Domain string }
	got := ExtractOptions([]any{"example.com", request{Domain: "x.com"}, []string{"k"}, 3.5})
	assert.Equal(t, Options{}, got)
}

func TestContextCarriesOptionsAcrossCalls(t *testing.T) {
	prev := &Context{Domain: "chain.com", Keywords: []string{"k1"}, Market: "uk", Language: "en"}
	got := ExtractOptions([]any{map[string]any{"domain": "first.com"}, prev})
	assert.Equal(t, "chain.com", got.Domain)
	assert.Equal(t, []string{"k1"}, got.Keywords)
	assert.Equal(t, "uk", got.Market)

	assert.Same(t, prev, ContextFromArgs([]any{"x", prev, 1}))
	assert.Nil(t, ContextFromArgs([]any{"x"}))
}

func TestBuildDefaults(t *testing.T) {
	inv := &recordingInvoker{}
	b := NewBuilder(inv, nil)

	sc := b.Build(context.Background(), []any{"topic only"})
	assert.Equal(t, DefaultMarket, sc.Market)
	assert.Equal(t, DefaultLanguage, sc.Language)
	require.NotNil(t, sc.Keywords)
	assert.Empty(t, sc.Keywords)
	assert.NotEmpty(t, sc.CallID)
	assert.Nil(t, sc.DomainMetrics)
	assert.Empty(t, inv.calls)
}

func TestBuildFetchesDomainData(t *testing.T) {
	inv := &recordingInvoker{results: map[string]provider.Result{
		"domain-overview":  {"organic_traffic": 1200},
		"keyword-research": {"keywords": []any{}},
	}}
	b := NewBuilder(inv, nil)

	sc := b.Build(context.Background(), []any{map[string]any{"domain": "grabgifts.ru", "language": "ru"}})
	assert.Equal(t, 1200, sc.DomainMetrics["organic_traffic"])
	assert.NotNil(t, sc.TopKeywords)

	overview := inv.byTool("domain-overview")
	require.Len(t, overview, 1)
	assert.Equal(t, "grabgifts.ru", overview[0].params["domain"])

	research := inv.byTool("keyword-research")
	require.Len(t, research, 1)
	assert.Equal(t, provider.Params{"domain": "grabgifts.ru", "language": "ru", "limit": 50, "type": "organic"}, research[0].params)
}

func TestBuildIDsAreUnique(t *testing.T) {
	b := NewBuilder(nil, nil)
	a := b.Build(context.Background(), nil)
	c := b.Build(context.Background(), nil)
	assert.NotEqual(t, a.CallID, c.CallID)
	assert.NotSame(t, a, c)
}

func TestAnalyzeKeywords(t *testing.T) {
	inv := &recordingInvoker{results: map[string]provider.Result{
		"keyword-research": {"volume": 4400.0, "difficulty": 37, "related": []any{"gift ideas"}},
	}}
	b := NewBuilder(inv, nil)

	ka := b.AnalyzeKeywords(context.Background(), []string{"gift exchange", "gifts"}, "")
	assert.Equal(t, &KeywordAnalysis{
		Primary:    "gift exchange",
		Volume:     4400,
		Difficulty: 37,
		Related:    []string{"gift ideas"},
		LongTail:   []string{},
	}, ka)
	assert.Equal(t, "en", inv.byTool("keyword-research")[0].params["language"])
}

func TestCompetitorInsights(t *testing.T) {
	inv := &recordingInvoker{results: map[string]provider.Result{
		"competitor-analysis": {
			"keyword_gaps": []any{"gap"},
			"content_gaps": []any{"topic"},
			"competitor_metrics": []any{
				map[string]any{"domain": "gifts.ru"},
				map[string]any{"domain": "podarki.com"},
			},
		},
	}}
	b := NewBuilder(inv, nil)

	ci := b.CompetitorInsights(context.Background(), "grabgifts.ru", nil)
	assert.Equal(t, []string{"gifts.ru", "podarki.com"}, ci.Competitors)
	assert.Equal(t, []string{"gap"}, ci.Gaps)
	assert.Equal(t, []string{"topic"}, ci.Opportunities)
	assert.Equal(t, []string{}, inv.byTool("competitor-analysis")[0].params["competitors"])
}

func TestBuilderSwallowsToolErrors(t *testing.T) {
	inv := &recordingInvoker{err: assert.AnError}
	b := NewBuilder(inv, nil)

	sc := b.Build(context.Background(), []any{Options{Domain: "x.com"}})
	assert.Nil(t, sc.DomainMetrics)
	assert.Nil(t, sc.TopKeywords)

	ka := b.AnalyzeKeywords(context.Background(), []string{"a"}, "en")
	assert.Equal(t, "a", ka.Primary)
	assert.Zero(t, ka.Volume)
}
