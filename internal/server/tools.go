package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/seoagent/provider"
	"github.com/mohammad-safakhou/seoagent/tools"
)

// ToolsHandler lists and runs SEO tools.
type ToolsHandler struct {
	Tools *tools.Dispatcher
}

func (h *ToolsHandler) Register(g *echo.Group) {
	g.GET("", h.list)
	g.POST("/:name", h.invoke)
}

func (h *ToolsHandler) list(c echo.Context) error {
	return c.JSON(http.StatusOK, tools.Cards(h.Tools.Tools()))
}

type invokeRequest struct {
	Params provider.Params `json:"params"`
}

type invokeResponse struct {
	Tool   string          `json:"tool"`
	Result provider.Result `json:"result"`
	TookMS int64           `json:"took_ms"`
}

func (h *ToolsHandler) invoke(c echo.Context) error {
	name := c.Param("name")
	var req invokeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	start := time.Now()
	res, err := h.Tools.Invoke(c.Request().Context(), name, req.Params)
	if errors.Is(err, tools.ErrUnknownTool) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	canonical := name
	if t, ok := h.Tools.Lookup(name); ok {
		canonical = t.Name
	}
	return c.JSON(http.StatusOK, invokeResponse{Tool: canonical, Result: res, TookMS: time.Since(start).Milliseconds()})
}
