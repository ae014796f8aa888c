package pendinginspect

import (
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/rzbill/docstream/internal/pending"
)

// Filter wraps a compiled CEL program evaluated against one queue entry
// at a time. An empty expression matches everything.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// NewFilter compiles expr against the entry fields exposed by Eval:
// queue (string), kind (string), messageType (string),
// clientSequenceNumber (int), referenceSequenceNumber (int), and
// contentSize (int).
func NewFilter(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("queue", cel.StringType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("messageType", cel.StringType),
		cel.Variable("clientSequenceNumber", cel.IntType),
		cel.Variable("referenceSequenceNumber", cel.IntType),
		cel.Variable("contentSize", cel.IntType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return Filter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true}, nil
}

// Match reports whether qe satisfies the filter. A disabled (empty)
// filter matches everything.
func (f Filter) Match(qe pending.QueueEntry) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"queue":                   qe.Queue,
		"kind":                    qe.Entry.Kind.String(),
		"messageType":             qe.Entry.MessageType,
		"clientSequenceNumber":    qe.Entry.ClientSequenceNumber,
		"referenceSequenceNumber": qe.Entry.ReferenceSequenceNumber,
		"contentSize":             int64(len(qe.Entry.Content)),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// Apply filters a full snapshot down to the entries matching expr.
func Apply(entries []pending.QueueEntry, filter Filter) []pending.QueueEntry {
	out := make([]pending.QueueEntry, 0, len(entries))
	for _, e := range entries {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
