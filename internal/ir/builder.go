package ir

// Builder constructs the handful of new nodes the rewrites need — a Drop
// or a two-statement sequence. Unlike kanso's own Builder, nothing in this
// IR carries an ID field for a rewrite to stamp, so there's no counter to
// hand out. Each Function in the concurrency model owns its own Builder so
// no lock is needed across functions.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// MakeDrop wraps value in a Drop node, typed none.
func (b *Builder) MakeDrop(value Expr) *Drop {
	return &Drop{Typ: TypeNone, Value: value}
}

// MakeSequence returns an anonymous two-statement block equivalent to
// "run a for effect, then produce c" — used by the break-value stripper
// to replace a single expression slot with two statements when that slot
// isn't a direct element of some block's list.
func (b *Builder) MakeSequence(a, c Expr) *Block {
	blk := &Block{List: []Expr{a, c}}
	Finalize(blk)
	return blk
}
