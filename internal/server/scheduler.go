package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/seoagent/provider"
	"go.uber.org/zap"
)

// HealthReport is the outcome of one health check round.
type HealthReport struct {
	Status    map[string]bool `json:"status"`
	Healthy   bool            `json:"healthy"`
	CheckedAt time.Time       `json:"checked_at"`
}

type healthResponse struct {
	HealthReport
	LastScheduled *HealthReport `json:"last_scheduled,omitempty"`
}

// CheckHealth probes every gateway and local service once.
func (s *Server) CheckHealth(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, s.deps.HealthTimeout)
	defer cancel()
	var gateways []provider.Gateway
	if s.deps.Tools != nil {
		gateways = s.deps.Tools.Gateways()
	}
	status := provider.HealthCheck(ctx, s.deps.Logger, gateways, s.deps.Probes...)
	healthy := true
	for _, ok := range status {
		healthy = healthy && ok
	}
	return HealthReport{Status: status, Healthy: healthy, CheckedAt: time.Now().UTC()}
}

func (s *Server) health(c echo.Context) error {
	resp := healthResponse{HealthReport: s.CheckHealth(c.Request().Context())}
	s.mu.RLock()
	resp.LastScheduled = s.lastHealth
	s.mu.RUnlock()
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) recordHealth(r HealthReport) {
	s.mu.Lock()
	s.lastHealth = &r
	s.mu.Unlock()
}

// HealthScheduler runs health checks on a cron schedule.
type HealthScheduler struct {
	expr   *cronexpr.Expression
	server *Server
	logger *zap.Logger
	now    func() time.Time
}

// NewHealthScheduler parses spec, a 5-field cron expression or a macro such as "@hourly".
func NewHealthScheduler(spec string, s *Server, logger *zap.Logger) (*HealthScheduler, error) {
	expr, err := cronexpr.Parse(spec)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthScheduler{expr: expr, server: s, logger: logger, now: time.Now}, nil
}

// Next returns the next run time after t, or the zero time when the schedule is exhausted.
func (h *HealthScheduler) Next(t time.Time) time.Time { return h.expr.Next(t) }

// Run blocks until ctx is done, checking health at each scheduled time.
func (h *HealthScheduler) Run(ctx context.Context) {
	for {
		now := h.now()
		next := h.Next(now)
		if next.IsZero() {
			h.logger.Warn("health schedule has no further runs")
			return
		}
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		report := h.server.CheckHealth(ctx)
		h.server.recordHealth(report)
		fields := []zap.Field{zap.Bool("healthy", report.Healthy)}
		for name, ok := range report.Status {
			fields = append(fields, zap.Bool(name, ok))
		}
		h.logger.Info("scheduled health check", fields...)
	}
}
