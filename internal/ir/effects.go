package ir

// Effects reports what a subtree does to the outside world, the minimum
// kanso's own GetEffects()-style classification needs to answer the two
// questions the rewrites ask: "does this have a side effect at all" and
// "could running b ahead of a change what either of them observes or
// leaves behind".
type Effects interface {
	HasSideEffects() bool
	Invalidates(other Effects) bool
}

// PassOptions configures how the pass behaves where the spec leaves an
// explicit choice. PreciseOperandEffects selects the pairwise-invalidates
// variant of the 3+-operand hoist rule instead of the conservative
// any-side-effect-aborts default (see SPEC_FULL.md's Open Questions).
type PassOptions struct {
	PreciseOperandEffects bool
}

// EffectAnalyzer is the oracle the hoister and problem finder consult.
// Its internals are an external collaborator concern; DefaultEffectAnalyzer
// below is the reference implementation the tests and CLI demo use.
type EffectAnalyzer interface {
	Analyze(opts *PassOptions, e Expr) Effects
}

// effectSet is the conservative effect lattice: reads/writes model known
// memory traffic, unknown models anything this analyzer cannot see
// through (a Call or CallIndirect to an unknown callee).
type effectSet struct {
	reads   bool
	writes  bool
	unknown bool
}

func (e *effectSet) HasSideEffects() bool {
	return e.writes || e.unknown
}

func (e *effectSet) Invalidates(other Effects) bool {
	o, ok := other.(*effectSet)
	if !ok {
		return true
	}
	if !e.reads && !e.writes && !e.unknown {
		// a pure dependency can't be invalidated by anything, no matter
		// what the candidate later does.
		return false
	}
	if e.unknown || o.unknown {
		return true
	}
	return e.writes && (o.reads || o.writes) || e.reads && o.writes
}

func (e *effectSet) merge(o *effectSet) {
	e.reads = e.reads || o.reads
	e.writes = e.writes || o.writes
	e.unknown = e.unknown || o.unknown
}

// DefaultEffectAnalyzer classifies Load/Store/AtomicRMW/AtomicCmpxchg as
// memory effects and Call/CallIndirect as unknown, mirroring kanso's
// CallInstruction.GetEffects() comment that a call "can have any effect"
// — the same conservative stance, applied here to an unknown callee
// rather than an unknown storage slot.
type DefaultEffectAnalyzer struct{}

func (DefaultEffectAnalyzer) Analyze(opts *PassOptions, e Expr) Effects {
	return analyzeEffects(e)
}

func analyzeEffects(e Expr) *effectSet {
	acc := &effectSet{}
	if e == nil {
		return acc
	}
	if b, ok := e.(*Block); ok {
		for _, c := range b.List {
			acc.merge(analyzeEffects(c))
		}
	} else {
		for _, slot := range operandSlots(e) {
			acc.merge(analyzeEffects(*slot))
		}
	}
	switch e.(type) {
	case *Load:
		acc.reads = true
	case *Store:
		acc.writes = true
	case *AtomicRMW, *AtomicCmpxchg:
		acc.reads = true
		acc.writes = true
	case *Call, *CallIndirect:
		acc.unknown = true
	}
	return acc
}
