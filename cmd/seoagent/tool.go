package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mohammad-safakhou/seoagent/examples/agents"
	"github.com/mohammad-safakhou/seoagent/internal/server"
	"github.com/mohammad-safakhou/seoagent/provider"
	"github.com/mohammad-safakhou/seoagent/provider/gateways"
	"github.com/mohammad-safakhou/seoagent/tools"
	"github.com/spf13/cobra"
)

func toolCMD() *cobra.Command {
	var rawParams string
	cmd := &cobra.Command{
		Use:   "tool <name>",
		Short: "Invoke one SEO tool and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := provider.Params{}
			if rawParams != "" {
				if err := json.Unmarshal([]byte(rawParams), &params); err != nil {
					return fmt.Errorf("--params: %w", err)
				}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.General.DefaultTimeout)
			defer cancel()
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.tools.Invoke(ctx, args[0], params)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().StringVarP(&rawParams, "params", "p", "", `tool parameters as JSON, e.g. '{"domain":"example.com"}'`)
	return cmd
}

func toolsCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the SEO tools and the provider serving each",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := tools.NewDispatcher(nil, nil, tools.WithRoutes(cfg.Tools.Routes))
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPROVIDER\tALIASES\tDESCRIPTION")
			for _, c := range tools.Cards(d.Tools()) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name, c.Provider, strings.Join(c.Aliases, ","), c.Description)
			}
			return w.Flush()
		},
	}
}

func healthCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe every provider and local service once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Health.Timeout)
			defer cancel()
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			status := provider.HealthCheck(ctx, logger, a.gateways, gateways.Probes(cfg.Providers)...)
			names := make([]string, 0, len(status))
			for name := range status {
				names = append(names, name)
			}
			sort.Strings(names)
			healthy := true
			for _, name := range names {
				mark := "ok"
				if !status[name] {
					mark, healthy = "FAIL", false
				}
				fmt.Printf("%-12s %s\n", name, mark)
			}
			if !healthy {
				return fmt.Errorf("one or more providers unhealthy")
			}
			return nil
		},
	}
}

func demoCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Enhance the sample agents and print their results",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			return agents.Demo(ctx, a.enhancer, os.Stdout)
		},
	}
}

func tokenCMD() *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a Bearer token for the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := server.SignToken(subject, []byte(cfg.Server.JWTSecret), ttl)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "seoagent-cli", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
