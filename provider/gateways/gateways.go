package gateways

import (
	"github.com/mohammad-safakhou/seoagent/config"
	"github.com/mohammad-safakhou/seoagent/provider"
	"github.com/mohammad-safakhou/seoagent/provider/ahrefs"
	"github.com/mohammad-safakhou/seoagent/provider/semrush"
	"github.com/mohammad-safakhou/seoagent/provider/seomcp"
)

// FromConfig builds one gateway per enabled provider.
func FromConfig(cfg config.ProvidersConfig) []provider.Gateway {
	var out []provider.Gateway
	if cfg.Ahrefs.Enabled {
		out = append(out, ahrefs.New(ahrefs.Config{
			APIKey:     cfg.Ahrefs.APIKey,
			BaseURL:    cfg.Ahrefs.BaseURL,
			Timeout:    cfg.Ahrefs.Timeout,
			MaxRetries: cfg.Ahrefs.MaxRetries,
		}))
	}
	if cfg.Semrush.Enabled {
		out = append(out, semrush.New(semrush.Config{
			APIKey:     cfg.Semrush.APIKey,
			BaseURL:    cfg.Semrush.BaseURL,
			Timeout:    cfg.Semrush.Timeout,
			MaxRetries: cfg.Semrush.MaxRetries,
		}))
	}
	if cfg.SEOMCP.Enabled {
		out = append(out, seomcp.New(seomcp.Config{
			Endpoint: cfg.SEOMCP.Endpoint,
			Token:    cfg.SEOMCP.Token,
			Timeout:  cfg.SEOMCP.Timeout,
		}))
	}
	return out
}

// Probes returns the local service probes for the health report.
func Probes(cfg config.ProvidersConfig) []provider.Probe {
	if cfg.SEOMCP.HealthURL == "" {
		return nil
	}
	return []provider.Probe{provider.HTTPProbe(provider.LocalServiceKey, cfg.SEOMCP.HealthURL, cfg.SEOMCP.Timeout)}
}

// Close releases gateways that hold sessions.
func Close(gws []provider.Gateway) {
	for _, gw := range gws {
		if c, ok := gw.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}
}
