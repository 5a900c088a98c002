package provider

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Client names an upstream SEO data source.
type Client string

const (
	Ahrefs  Client = "ahrefs"
	Semrush Client = "semrush"
	SEOMCP  Client = "seo_mcp"
)

// Operation names a single upstream capability.
type Operation string

const (
	KeywordResearch    Operation = "keyword-research"
	BacklinkAnalysis   Operation = "backlink-analysis"
	CompetitorAnalysis Operation = "competitor-analysis"
	KeywordOverview    Operation = "keyword-overview"
	DomainOverview     Operation = "domain-overview"
	BacklinksList      Operation = "backlinks-list"
	KeywordGenerator   Operation = "keyword-generator"
)

// MaxCompetitors is the upstream limit on competitor domains per analysis.
const MaxCompetitors = 5

// Params is the parameter bag of an operation.
type Params map[string]any

// Result is the flat data bag returned by an operation.
type Result map[string]any

// Clone returns a shallow copy so callers can add fields without touching the original.
func (r Result) Clone() Result {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// DeepClone copies the bag and every nested map and slice, so the copy
// shares no mutable state with r.
func (r Result) DeepClone() Result {
	if r == nil {
		return nil
	}
	out := make(Result, len(r))
	for k, v := range r {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		if x == nil {
			return x
		}
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = deepCopy(e)
		}
		return out
	case Result:
		return x.DeepClone()
	case Params:
		return Params(Result(x).DeepClone())
	case []any:
		if x == nil {
			return x
		}
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = deepCopy(e)
		}
		return out
	case []map[string]any:
		if x == nil {
			return x
		}
		out := make([]map[string]any, len(x))
		for i, e := range x {
			out[i], _ = deepCopy(e).(map[string]any)
		}
		return out
	case []string:
		return slices.Clone(x)
	case []int:
		return slices.Clone(x)
	case []float64:
		return slices.Clone(x)
	default:
		return v
	}
}

// Gateway is the interface every SEO data source must satisfy.
type Gateway interface {
	Name() string
	Call(ctx context.Context, op Operation, params Params) (Result, error)
	Ping(ctx context.Context) error
}

var (
	// ErrUnavailable covers transport, auth and upstream failures.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrMalformed is a kind of ErrUnavailable for responses that cannot be parsed.
	ErrMalformed = fmt.Errorf("%w: malformed upstream response", ErrUnavailable)
	// ErrUnsupportedOperation is returned by a gateway asked for an operation it does not serve.
	ErrUnsupportedOperation = fmt.Errorf("%w: unsupported operation", ErrUnavailable)
)

// Error attaches the provider and operation to a gateway failure.
type Error struct {
	Provider  string
	Operation Operation
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Operation, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Unavailable wraps err so that errors.Is(err, ErrUnavailable) holds.
func Unavailable(provider string, op Operation, err error) error {
	if !errors.Is(err, ErrUnavailable) {
		err = fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Error{Provider: provider, Operation: op, Err: err}
}

// Malformed wraps err so that errors.Is(err, ErrMalformed) holds.
func Malformed(provider string, op Operation, err error) error {
	return &Error{Provider: provider, Operation: op, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
}
