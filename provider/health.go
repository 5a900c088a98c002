package provider

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LocalServiceKey is the health report entry for the local SEO service probe.
const LocalServiceKey = "mcp_server"

// Probe is a named liveness check that is not a gateway.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// HTTPProbe checks that url answers GET with a 2xx status.
func HTTPProbe(name, url string, timeout time.Duration) Probe {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	return Probe{
		Name: name,
		Check: func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return &Error{Provider: name, Operation: "health", Err: ErrUnavailable}
			}
			return nil
		},
	}
}

// HealthCheck probes every gateway and probe concurrently. A failing or
// panicking probe reports false; the check itself never fails.
func HealthCheck(ctx context.Context, logger *zap.Logger, gateways []Gateway, probes ...Probe) map[string]bool {
	if logger == nil {
		logger = zap.NewNop()
	}
	all := make([]Probe, 0, len(gateways)+len(probes))
	for _, gw := range gateways {
		all = append(all, Probe{Name: gw.Name(), Check: gw.Ping})
	}
	all = append(all, probes...)

	var mu sync.Mutex
	report := make(map[string]bool, len(all))
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range all {
		g.Go(func() error {
			ok := runProbe(gctx, p)
			if !ok {
				logger.Info("health probe failed", zap.String("name", p.Name))
			}
			mu.Lock()
			report[p.Name] = ok
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return report
}

func runProbe(ctx context.Context, p Probe) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	if p.Check == nil {
		return false
	}
	return p.Check(ctx) == nil
}
