package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/seoagent/seo"
)

// ContextHandler builds SEO contexts for callers that are not Go agents.
type ContextHandler struct {
	Enhancer *seo.Enhancer
}

func (h *ContextHandler) Register(g *echo.Group) {
	g.POST("", h.build)
}

// contextRequest mirrors a method call: args are scanned like the
// arguments of an enhanced method.
type contextRequest struct {
	Args     []any `json:"args"`
	Analyze  bool  `json:"analyze_keywords"`
	Research bool  `json:"competitor_insights"`
}

func (h *ContextHandler) build(c echo.Context) error {
	var req contextRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	sc := h.Enhancer.Build(ctx, req.Args)
	if req.Analyze && len(sc.Keywords) > 0 {
		sc.KeywordAnalysis = h.Enhancer.AnalyzeKeywords(ctx, sc.Keywords, sc.Language)
	}
	if req.Research && sc.Domain != "" {
		sc.CompetitorInsights = h.Enhancer.CompetitorInsights(ctx, sc.Domain, sc.Competitors)
	}
	return c.JSON(http.StatusOK, sc)
}
