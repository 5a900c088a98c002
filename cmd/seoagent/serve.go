package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohammad-safakhou/seoagent/internal/server"
	"github.com/mohammad-safakhou/seoagent/internal/telemetry"
	"github.com/mohammad-safakhou/seoagent/mcp"
	"github.com/mohammad-safakhou/seoagent/provider/gateways"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

func serveCMD() *cobra.Command {
	var serveAddr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			tel, err := telemetry.Setup(ctx, cfg.Telemetry, telemetry.Options{ServiceVersion: version})
			if err != nil {
				return err
			}
			defer func() {
				sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer scancel()
				if err := tel.Shutdown(sctx); err != nil {
					logger.Warn("telemetry shutdown", zap.Error(err))
				}
			}()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.New(server.Deps{
				Tools:         a.tools,
				Enhancer:      a.enhancer,
				Probes:        gateways.Probes(cfg.Providers),
				Metrics:       tel.Handler(),
				Logger:        logger.Named("http"),
				Secret:        []byte(cfg.Server.JWTSecret),
				HealthTimeout: cfg.Health.Timeout,
			})

			if cfg.Health.Schedule != "" {
				hs, err := server.NewHealthScheduler(cfg.Health.Schedule, srv, logger.Named("health"))
				if err != nil {
					return err
				}
				go hs.Run(ctx)
			}

			if serveAddr == "" {
				serveAddr = cfg.Server.Address
			}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(serveAddr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			logger.Info("shutting down")
			sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer scancel()
			return srv.Shutdown(sctx)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.address)")
	return serve
}

func mcpCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the SEO tools to MCP clients over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			return mcp.NewServer(a.tools, a.enhancer, version, logger.Named("mcp")).Run(ctx)
		},
	}
}
