package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mohammad-safakhou/seoagent/provider"
	"github.com/mohammad-safakhou/seoagent/seo"
	"github.com/mohammad-safakhou/seoagent/tools"
	"go.uber.org/zap"
)

// Deps are the components the HTTP API exposes.
type Deps struct {
	Tools    *tools.Dispatcher
	Enhancer *seo.Enhancer
	Probes   []provider.Probe
	Metrics  http.Handler
	Logger   *zap.Logger

	// Secret enables Bearer token auth on /v1 when set.
	Secret        []byte
	HealthTimeout time.Duration
}

type Server struct {
	e    *echo.Echo
	deps Deps

	mu         sync.RWMutex
	lastHealth *HealthReport
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.HealthTimeout <= 0 {
		deps.HealthTimeout = 10 * time.Second
	}
	if deps.Metrics == nil {
		deps.Metrics = http.NotFoundHandler()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	logger := deps.Logger
	// unified JSON errors
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		logger.Info("request failed",
			zap.Int("status", code),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.String("remote", c.RealIP()),
			zap.Error(err))
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]any{"error": msg})
		}
	}

	s := &Server{e: e, deps: deps}
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(deps.Metrics))

	v1 := e.Group("/v1")
	if len(deps.Secret) > 0 {
		v1.Use(AuthMiddleware(deps.Secret))
	}
	v1.GET("/health", s.health)
	th := &ToolsHandler{Tools: deps.Tools}
	th.Register(v1.Group("/tools"))
	ch := &ContextHandler{Enhancer: deps.Enhancer}
	ch.Register(v1.Group("/context"))
	return s
}

func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Start(addr string) error {
	s.deps.Logger.Info("listening", zap.String("addr", addr))
	err := s.e.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
