package httpserver

import (
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/sampsyo/loglet/internal/logstore"
)

// msgFilter wraps a compiled CEL program evaluated per message on the text
// and JSON dump routes. When disabled, Eval always returns true.
type msgFilter struct {
	prog    cel.Program
	enabled bool
}

// newMsgFilter compiles expr against the message variables. An empty
// expression yields a disabled filter.
func newMsgFilter(expr string) (msgFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return msgFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("level", cel.IntType),
		cel.Variable("message", cel.StringType),
		cel.Variable("time", cel.IntType),
		cel.Variable("id", cel.IntType),
	)
	if err != nil {
		return msgFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return msgFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return msgFilter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return msgFilter{}, err
	}
	return msgFilter{prog: prog, enabled: true}, nil
}

// Eval evaluates the expression against one message. Evaluation errors
// exclude the message rather than failing the whole dump.
func (f msgFilter) Eval(m logstore.Message) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"level":   int64(m.Level),
		"message": m.Body,
		"time":    m.Time,
		"id":      int64(m.Seq),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
