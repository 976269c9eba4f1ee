package ir

// operandSlots returns the addresses of e's direct child fields, in
// evaluation order, for every kind except Block (whose children live in a
// slice walked specially by the traversal and C1) and Const (which has
// none). The same ordered list doubles as the per-kind hoist-slot table
// from the component design (§4.2) and as the generic child list the
// effect analyzer and problem finder recurse over — one table serves all
// three concerns so they can never disagree about a kind's children.
//
// Optional children (Return.Value, Break.Value, Break.Condition) are
// omitted when nil rather than returned as a slot pointing at a nil Expr.
func operandSlots(e Expr) []*Expr {
	switch v := e.(type) {
	case *Unary:
		return []*Expr{&v.Value}
	case *SetLocal:
		return []*Expr{&v.Value}
	case *Load:
		return []*Expr{&v.Ptr}
	case *Return:
		return optionalSlot(&v.Value)
	case *Drop:
		return []*Expr{&v.Value}
	case *Binary:
		return []*Expr{&v.Left, &v.Right}
	case *Store:
		return []*Expr{&v.Ptr, &v.Value}
	case *AtomicRMW:
		return []*Expr{&v.Ptr, &v.Value}
	case *AtomicCmpxchg:
		return []*Expr{&v.Ptr, &v.Expected, &v.Replacement}
	case *Select:
		return []*Expr{&v.Condition, &v.IfTrue, &v.IfFalse}
	case *Call:
		slots := make([]*Expr, len(v.Operands))
		for i := range v.Operands {
			slots[i] = &v.Operands[i]
		}
		return slots
	case *CallIndirect:
		slots := make([]*Expr, 0, len(v.Operands)+1)
		for i := range v.Operands {
			slots = append(slots, &v.Operands[i])
		}
		return append(slots, &v.Target)
	case *Break:
		var slots []*Expr
		slots = append(slots, optionalSlot(&v.Value)...)
		slots = append(slots, optionalSlot(&v.Condition)...)
		return slots
	case *Switch:
		var slots []*Expr
		slots = append(slots, optionalSlot(&v.Value)...)
		slots = append(slots, optionalSlot(&v.Condition)...)
		return slots
	default: // *Block, *Const
		return nil
	}
}

func optionalSlot(slot *Expr) []*Expr {
	if *slot == nil {
		return nil
	}
	return []*Expr{slot}
}

// isStrictEffectKind reports whether e belongs to the set of parents
// whose conservative hoist rule aborts entirely when any operand has a
// side effect, rather than chaining a dependency check operand by
// operand (spec.md §4.2's "three or more operands" rule — Select and
// AtomicCmpxchg always have exactly three, and Call and CallIndirect are
// included whatever their operand count, because the rule is keyed on
// these kinds, not a literal operand count).
func isStrictEffectKind(e Expr) bool {
	switch e.(type) {
	case *AtomicCmpxchg, *Select, *Call, *CallIndirect:
		return true
	default:
		return false
	}
}

func containsUnreachableChild(b *Block) bool {
	for _, c := range b.List {
		if c.ExprType() == TypeUnreachable {
			return true
		}
	}
	return false
}
