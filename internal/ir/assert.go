package ir

import "fmt"

// assertf panics with a formatted message when cond is false. Every call
// site guards an invariant this package is responsible for maintaining
// itself (finalize consistency, outer-block bookkeeping, the problem
// finder's own counters) — there is no recoverable error path through
// the pass, per the error handling design.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
