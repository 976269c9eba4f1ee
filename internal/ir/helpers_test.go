package ir

// Small constructors shared by the scenario tests in optimizations_test.go
// and breakstripper_test.go, keeping fixtures close to the tree shapes
// spec.md's own examples use.

func constI32(v int64) *Const {
	return &Const{Typ: TypeI32, Value: v}
}

// voidCall models a call to a function with no return value, the shape
// spec.md's S1-S4 examples need so that "call f" can sit as a non-tail
// block element without the concrete-middle rule wrapping it in a Drop.
func voidCall(name string) *Call {
	return &Call{Typ: TypeNone, Target: name}
}

func valueLoad(bytes int, ptr Expr) *Load {
	return &Load{Typ: TypeI32, Bytes: bytes, Ptr: ptr}
}

func anonBlock(list ...Expr) *Block {
	b := &Block{List: list}
	Finalize(b)
	return b
}

func labeledBlock(label string, list ...Expr) *Block {
	b := &Block{Label: label, List: list}
	Finalize(b)
	return b
}

func dropOf(e Expr) *Drop {
	d := &Drop{Value: e}
	Finalize(d)
	return d
}

func storeTo(ptr, value Expr) *Store {
	s := &Store{Bytes: 4, Ptr: ptr, Value: value}
	Finalize(s)
	return s
}

// run applies the default BlockMerger to a single bare expression tree
// (wrapped as a one-function program) and returns the rewritten root.
func run(root Expr) Expr {
	return runWith(DefaultEffectAnalyzer{}, &PassOptions{}, root)
}

func runWith(analyzer EffectAnalyzer, opts *PassOptions, root Expr) Expr {
	fn := &Function{Name: "f", Body: root}
	NewBlockMerger(analyzer, opts).ApplyFunction(fn)
	return fn.Body
}
