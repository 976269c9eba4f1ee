package ir

// Finalize recomputes e's type from its current children. Most kinds have
// an intrinsic type fixed at construction (a Load's type never depends on
// its pointer operand, for instance) and finalize is a no-op for them;
// only the kinds the rewrites actually touch need recomputation here.
func Finalize(e Expr) {
	switch v := e.(type) {
	case *Block:
		finalizeBlock(v)
	case *Drop:
		v.Typ = TypeNone
	case *Break:
		finalizeBreak(v)
	case *Switch:
		v.Typ = TypeUnreachable
	case *Store:
		v.Typ = TypeNone
	case *SetLocal:
		v.Typ = TypeNone
	case *Return:
		v.Typ = TypeUnreachable
	}
}

func finalizeBlock(b *Block) {
	if len(b.List) == 0 {
		b.Typ = TypeNone
		return
	}
	b.Typ = b.List[len(b.List)-1].ExprType()
}

func finalizeBreak(b *Break) {
	switch {
	case b.Condition == nil:
		b.Typ = TypeUnreachable
	case b.Value == nil:
		b.Typ = TypeNone
	default:
		b.Typ = b.Value.ExprType()
	}
}

// FinalizeAs recomputes e's type and asserts it came out equal to want,
// the "finalize(type)" form from the external interfaces.
func FinalizeAs(e Expr, want Type) {
	Finalize(e)
	assertf(e.ExprType() == want, "finalize: %s recomputed to %s, want %s", e.ExprKind(), e.ExprType(), want)
}
