package subscription

import (
	"strings"

	"github.com/google/cel-go/cel"
)

// clientFilter wraps a compiled per-client CEL predicate. When a client
// joins with a non-empty Filter expression, the Dispatcher skips that
// client as a candidate for events the predicate evaluates false for,
// falling through to the next eligible client instead.
type clientFilter struct {
	prog    cel.Program
	enabled bool
}

func newClientFilter(expr string) (clientFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return clientFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("event_type", cel.StringType),
		cel.Variable("event_number", cel.IntType),
		cel.Variable("metadata", cel.BytesType),
	)
	if err != nil {
		return clientFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return clientFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return clientFilter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return clientFilter{}, err
	}
	return clientFilter{prog: prog, enabled: true}, nil
}

// eval reports whether the event passes the filter. A disabled filter
// always passes; a runtime evaluation error is treated as a non-match so a
// malformed or type-mismatched expression degrades to "skip this client"
// rather than panicking the dispatch loop.
func (f clientFilter) eval(e StreamEvent) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"event_type":   e.EventType,
		"event_number": int64(e.EventNumber),
		"metadata":     e.Metadata,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
