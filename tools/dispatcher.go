package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mohammad-safakhou/seoagent/cache"
	"github.com/mohammad-safakhou/seoagent/cache/inmemory"
	"github.com/mohammad-safakhou/seoagent/provider"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrUnknownTool is the only dispatcher error that reaches callers; there is
// no fallback shape for a tool that does not exist.
var ErrUnknownTool = errors.New("unknown tool")

type Option func(*Dispatcher)

func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

func WithFallbacks(f *Fallbacks) Option {
	return func(d *Dispatcher) {
		if f != nil {
			d.fallbacks = f
		}
	}
}

// WithTools replaces the built-in tool table.
func WithTools(ts []Tool) Option {
	return func(d *Dispatcher) { d.table = ts }
}

// WithRoutes sends the named tools to another provider, e.g. {"domain-overview": "ahrefs"}.
func WithRoutes(routes map[string]string) Option {
	return func(d *Dispatcher) {
		for k, v := range routes {
			d.routes[k] = provider.Client(v)
		}
	}
}

// Dispatcher routes tool calls to provider gateways, cache first. Provider
// failures are replaced by fallback data, which is cached like real data.
// Two concurrent misses for the same key may both reach the provider; the
// later write wins.
type Dispatcher struct {
	table     []Tool
	byName    map[string]Tool
	routes    map[string]provider.Client
	gateways  map[provider.Client]provider.Gateway
	cache     cache.Store
	fallbacks *Fallbacks
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewDispatcher creates a dispatcher. A nil store gets a fresh in-memory cache.
func NewDispatcher(store cache.Store, gateways []provider.Gateway, opts ...Option) *Dispatcher {
	if store == nil {
		store = inmemory.New()
	}
	d := &Dispatcher{
		table:    DefaultTools(),
		routes:   map[string]provider.Client{},
		gateways: make(map[provider.Client]provider.Gateway, len(gateways)),
		cache:    store,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer("seoagent/tools"),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.fallbacks == nil {
		d.fallbacks = NewFallbacks(nil, nil)
	}
	for _, gw := range gateways {
		d.gateways[provider.Client(gw.Name())] = gw
	}
	d.byName = make(map[string]Tool, len(d.table)*2)
	for _, t := range d.table {
		if p, ok := d.routes[t.Name]; ok {
			t.Provider = p
		}
		d.byName[t.Name] = t
		for _, a := range t.Aliases {
			d.byName[a] = t
		}
	}
	return d
}

// Tools returns the tool table in effect, routes applied.
func (d *Dispatcher) Tools() []Tool {
	out := make([]Tool, 0, len(d.table))
	for _, t := range d.table {
		out = append(out, d.byName[t.Name])
	}
	return out
}

// Gateways returns the configured gateways.
func (d *Dispatcher) Gateways() []provider.Gateway {
	out := make([]provider.Gateway, 0, len(d.gateways))
	for _, gw := range d.gateways {
		out = append(out, gw)
	}
	return out
}

// Lookup resolves a tool by name or alias.
func (d *Dispatcher) Lookup(name string) (Tool, bool) {
	t, ok := d.byName[name]
	return t, ok
}

// Invoke runs a tool. The result is never nil unless err is ErrUnknownTool.
func (d *Dispatcher) Invoke(ctx context.Context, name string, params provider.Params) (provider.Result, error) {
	t, ok := d.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	ctx, span := d.tracer.Start(ctx, "tools.Invoke", trace.WithAttributes(attribute.String("tool", t.Name)))
	defer span.End()

	p := params.Clone()
	if t.prepare != nil {
		p = t.prepare(p)
	}

	key, keyErr := cache.Key(t.Name, p)
	if keyErr != nil {
		d.logger.Warn("tool params not cacheable", zap.String("tool", t.Name), zap.Error(keyErr))
	} else {
		data, hit, err := d.cache.Get(ctx, key)
		if err != nil {
			d.logger.Warn("cache read failed", zap.String("tool", t.Name), zap.Error(err))
		} else if hit {
			recordInvocation(ctx, t.Name, outcomeHit)
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return data, nil
		}
	}

	res, err := d.call(ctx, t, p)
	outcome := outcomeFetched
	if err != nil {
		d.logger.Warn("provider call failed, using fallback data",
			zap.String("tool", t.Name),
			zap.String("provider", string(t.Provider)),
			zap.String("operation", string(t.Operation)),
			zap.Error(err))
		span.RecordError(err)
		res = t.fallback(d.fallbacks, p)
		outcome = outcomeFallback
	}
	recordInvocation(ctx, t.Name, outcome)

	if keyErr == nil {
		if err := d.cache.Put(ctx, key, res); err != nil {
			d.logger.Warn("cache write failed", zap.String("tool", t.Name), zap.Error(err))
		}
	}
	return res, nil
}

func (d *Dispatcher) call(ctx context.Context, t Tool, p provider.Params) (res provider.Result, err error) {
	gw, ok := d.gateways[t.Provider]
	if !ok {
		return nil, provider.Unavailable(string(t.Provider), t.Operation, errors.New("provider not configured"))
	}
	start := time.Now()
	defer func() {
		// a gateway panic counts as an unavailable provider
		if r := recover(); r != nil {
			res, err = nil, provider.Unavailable(gw.Name(), t.Operation, fmt.Errorf("panic: %v", r))
		}
		recordProviderCall(ctx, t.Name, gw.Name(), time.Since(start), err != nil)
	}()
	res, err = gw.Call(ctx, t.Operation, p)
	if err == nil && res == nil {
		err = provider.Malformed(gw.Name(), t.Operation, errors.New("empty result"))
	}
	return res, err
}
