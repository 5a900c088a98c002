package seo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/seoagent/provider"
	"go.uber.org/zap"
)

// Result fields added by the wrappers.
const (
	FieldOptimization = "seoOptimization"
	FieldInsights     = "seoInsights"
	FieldMetrics      = "seoMetrics"
)

var ErrUnsupportedMethod = errors.New("agent does not support method")

// ContentCreator produces content. A result carrying a string "content"
// field is scored when enhanced.
type ContentCreator interface {
	CreateContent(ctx context.Context, args ...any) (provider.Result, error)
}

type Researcher interface {
	Research(ctx context.Context, args ...any) (provider.Result, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, args ...any) (provider.Result, error)
}

// Capability is a set of the enhancement points an agent implements.
type Capability uint8

const (
	CapContent Capability = 1 << iota
	CapResearch
	CapAnalyze

	AllCapabilities = CapContent | CapResearch | CapAnalyze
)

func (c Capability) Has(o Capability) bool { return c&o == o }

func (c Capability) String() string {
	var parts []string
	if c.Has(CapContent) {
		parts = append(parts, "content")
	}
	if c.Has(CapResearch) {
		parts = append(parts, "research")
	}
	if c.Has(CapAnalyze) {
		parts = append(parts, "analyze")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// CapabilitiesOf reports which enhancement points agent implements.
func CapabilitiesOf(agent any) Capability {
	var c Capability
	if _, ok := agent.(ContentCreator); ok {
		c |= CapContent
	}
	if _, ok := agent.(Researcher); ok {
		c |= CapResearch
	}
	if _, ok := agent.(Analyzer); ok {
		c |= CapAnalyze
	}
	return c
}

// Enhanced is implemented by every value Enhance returns for an agent with
// at least one capability.
type Enhanced interface {
	// Unwrap returns the agent that was enhanced.
	Unwrap() any
	// Capabilities returns the enhancement points of the wrapped agent.
	Capabilities() Capability
	// Invoke calls a capability method by name ("CreateContent",
	// "create_content", "research", ...).
	Invoke(ctx context.Context, method string, args ...any) (provider.Result, error)
}

type Option func(*Enhancer)

func WithLogger(l *zap.Logger) Option {
	return func(e *Enhancer) {
		if l != nil {
			e.logger = l
		}
	}
}

type enhanceConfig struct {
	caps Capability
}

type EnhanceOption func(*enhanceConfig)

// WithCapabilities limits enhancement to mask. Methods the agent implements
// outside mask are forwarded untouched.
func WithCapabilities(mask Capability) EnhanceOption {
	return func(c *enhanceConfig) { c.caps = mask }
}

// Enhancer wraps agents so their content, research and analysis methods
// receive an SEO context and return SEO-enriched results.
type Enhancer struct {
	*Builder
	logger *zap.Logger
}

func NewEnhancer(tools Invoker, opts ...Option) *Enhancer {
	e := &Enhancer{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.Builder = NewBuilder(tools, e.logger)
	return e
}

// Enhance returns a value implementing the same capability interfaces as
// agent, plus Enhanced. An agent with no capability is returned as is. The
// agent itself is never modified.
//
// Only CreateContent, Research and Analyze are exposed on the returned
// value. Any other method of agent, and assertions to its concrete type,
// go through Enhanced.Unwrap.
func (e *Enhancer) Enhance(agent any, opts ...EnhanceOption) any {
	cfg := enhanceConfig{caps: AllCapabilities}
	for _, opt := range opts {
		opt(&cfg)
	}
	caps := CapabilitiesOf(agent)
	if caps == 0 {
		return agent
	}
	w := &wrapper{e: e, inner: agent, caps: caps, selected: caps & cfg.caps}
	w.content, _ = agent.(ContentCreator)
	w.researcher, _ = agent.(Researcher)
	w.analyzer, _ = agent.(Analyzer)
	e.logger.Debug("agent enhanced",
		zap.String("agent", fmt.Sprintf("%T", agent)),
		zap.Stringer("capabilities", caps),
		zap.Stringer("enhanced", w.selected))
	return combine(w)
}

type wrapper struct {
	e        *Enhancer
	inner    any
	caps     Capability
	selected Capability

	content    ContentCreator
	researcher Researcher
	analyzer   Analyzer
}

func (w *wrapper) Unwrap() any { return w.inner }

func (w *wrapper) Capabilities() Capability { return w.caps }

func (w *wrapper) Invoke(ctx context.Context, method string, args ...any) (provider.Result, error) {
	switch normalizeMethod(method) {
	case "createcontent":
		if w.caps.Has(CapContent) {
			return w.createContent(ctx, args...)
		}
	case "research":
		if w.caps.Has(CapResearch) {
			return w.research(ctx, args...)
		}
	case "analyze":
		if w.caps.Has(CapAnalyze) {
			return w.analyze(ctx, args...)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
}

func normalizeMethod(m string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(m))
}

// withContext appends sc without touching the caller's backing array.
func withContext(args []any, sc *Context) []any {
	return append(args[:len(args):len(args)], sc)
}

func (w *wrapper) createContent(ctx context.Context, args ...any) (provider.Result, error) {
	if !w.selected.Has(CapContent) {
		return w.content.CreateContent(ctx, args...)
	}
	sc := w.e.Build(ctx, args)
	if len(sc.Keywords) > 0 {
		sc.KeywordAnalysis = w.e.AnalyzeKeywords(ctx, sc.Keywords, sc.Language)
	}
	res, err := w.content.CreateContent(ctx, withContext(args, sc)...)
	if err != nil {
		return res, err
	}
	text, ok := res["content"].(string)
	if !ok || text == "" {
		return res, nil
	}
	var primary string
	if sc.KeywordAnalysis != nil {
		primary = sc.KeywordAnalysis.Primary
	}
	out := res.Clone()
	out[FieldOptimization] = OptimizeContent(text, primary)
	return out, nil
}

func (w *wrapper) research(ctx context.Context, args ...any) (provider.Result, error) {
	if !w.selected.Has(CapResearch) {
		return w.researcher.Research(ctx, args...)
	}
	sc := w.e.Build(ctx, args)
	if sc.Domain != "" {
		sc.CompetitorInsights = w.e.CompetitorInsights(ctx, sc.Domain, sc.Competitors)
	}
	res, err := w.researcher.Research(ctx, withContext(args, sc)...)
	if err != nil {
		return res, err
	}
	insights := Insights{Opportunities: IdentifyOpportunities()}
	if sc.KeywordAnalysis != nil {
		v := sc.KeywordAnalysis.Volume
		insights.SearchVolume = &v
	}
	if sc.CompetitorInsights != nil {
		insights.CompetitorGaps = sc.CompetitorInsights.Gaps
	}
	out := enrichable(res)
	out[FieldInsights] = insights
	return out, nil
}

func (w *wrapper) analyze(ctx context.Context, args ...any) (provider.Result, error) {
	if !w.selected.Has(CapAnalyze) {
		return w.analyzer.Analyze(ctx, args...)
	}
	sc := w.e.Build(ctx, args)
	res, err := w.analyzer.Analyze(ctx, withContext(args, sc)...)
	if err != nil {
		return res, err
	}
	out := enrichable(res)
	out[FieldMetrics] = CalculateMetrics(sc)
	return out, nil
}

func enrichable(res provider.Result) provider.Result {
	if res == nil {
		return provider.Result{}
	}
	return res.Clone()
}

type contentMethod struct{ w *wrapper }

func (m contentMethod) CreateContent(ctx context.Context, args ...any) (provider.Result, error) {
	return m.w.createContent(ctx, args...)
}

type researchMethod struct{ w *wrapper }

func (m researchMethod) Research(ctx context.Context, args ...any) (provider.Result, error) {
	return m.w.research(ctx, args...)
}

type analyzeMethod struct{ w *wrapper }

func (m analyzeMethod) Analyze(ctx context.Context, args ...any) (provider.Result, error) {
	return m.w.analyze(ctx, args...)
}

// combine picks the struct whose method set matches the agent's capabilities,
// so type assertions on the result behave like they would on the agent.
func combine(w *wrapper) any {
	c, r, a := contentMethod{w}, researchMethod{w}, analyzeMethod{w}
	switch w.caps {
	case CapContent:
		return struct {
			*wrapper
			contentMethod
		}{w, c}
	case CapResearch:
		return struct {
			*wrapper
			researchMethod
		}{w, r}
	case CapAnalyze:
		return struct {
			*wrapper
			analyzeMethod
		}{w, a}
	case CapContent | CapResearch:
		return struct {
			*wrapper
			contentMethod
			researchMethod
		}{w, c, r}
	case CapContent | CapAnalyze:
		return struct {
			*wrapper
			contentMethod
			analyzeMethod
		}{w, c, a}
	case CapResearch | CapAnalyze:
		return struct {
			*wrapper
			researchMethod
			analyzeMethod
		}{w, r, a}
	default:
		return struct {
			*wrapper
			contentMethod
			researchMethod
			analyzeMethod
		}{w, c, r, a}
	}
}
