package orderbook

import (
	"fmt"
	"strings"
)

// InvariantError marks a defect in the engine itself, as opposed to bad
// input. It is raised by panic: once an invariant breaks the book cannot
// be trusted, so the condition is abort-worthy and must never be
// swallowed or retried.
type InvariantError struct {
	Reason string
	Detail string
}

func (e *InvariantError) Error() string {
	if e.Detail == "" {
		return "orderbook: invariant violated: " + e.Reason
	}
	return "orderbook: invariant violated: " + e.Reason + " [" + e.Detail + "]"
}

func panicInvariant(reason string, kv ...any) {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
	}
	panic(&InvariantError{Reason: reason, Detail: b.String()})
}
