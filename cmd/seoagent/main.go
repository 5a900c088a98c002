package main

import (
	"fmt"
	"os"

	"github.com/mohammad-safakhou/seoagent/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgPath string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	root := &cobra.Command{
		Use:           "seoagent",
		Short:         "SEO enhancement service for content, research and analysis agents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			logger, err = newLogger(cfg.General, verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/config.json)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(serveCMD(), toolCMD(), toolsCMD(), healthCMD(), demoCMD(), tokenCMD(), mcpCMD())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(g config.GeneralConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if g.Debug {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(g.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
