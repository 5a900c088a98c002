package tools

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// invocation outcomes
const (
	outcomeHit      = "hit"
	outcomeFetched  = "fetched"
	outcomeFallback = "fallback"
)

var (
	toolMetricsOnce  sync.Once
	toolInvocations  otelmetric.Int64Counter
	providerFailures otelmetric.Int64Counter
	providerLatency  otelmetric.Float64Histogram
)

func initToolMetrics() {
	meter := otel.Meter("seoagent/tools")
	var err error
	toolInvocations, err = meter.Int64Counter(
		"seo_tool_invocations_total",
		otelmetric.WithDescription("Tool invocations by outcome (hit, fetched, fallback)"),
	)
	if err != nil {
		zap.L().Warn("tools metrics init", zap.String("instrument", "seo_tool_invocations_total"), zap.Error(err))
	}
	providerFailures, err = meter.Int64Counter(
		"seo_provider_failures_total",
		otelmetric.WithDescription("Provider calls replaced by fallback data"),
	)
	if err != nil {
		zap.L().Warn("tools metrics init", zap.String("instrument", "seo_provider_failures_total"), zap.Error(err))
	}
	providerLatency, err = meter.Float64Histogram(
		"seo_provider_call_seconds",
		otelmetric.WithDescription("Latency of provider gateway calls"),
		otelmetric.WithUnit("s"),
	)
	if err != nil {
		zap.L().Warn("tools metrics init", zap.String("instrument", "seo_provider_call_seconds"), zap.Error(err))
	}
}

func recordInvocation(ctx context.Context, tool, outcome string) {
	toolMetricsOnce.Do(initToolMetrics)
	if toolInvocations == nil {
		return
	}
	toolInvocations.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("outcome", outcome),
	))
}

func recordProviderCall(ctx context.Context, tool, providerName string, took time.Duration, failed bool) {
	toolMetricsOnce.Do(initToolMetrics)
	attrs := otelmetric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("provider", providerName),
	)
	if providerLatency != nil {
		providerLatency.Record(ctx, took.Seconds(), attrs)
	}
	if failed && providerFailures != nil {
		providerFailures.Add(ctx, 1, attrs)
	}
}
