package ir

import "fmt"

// OptimizationPass is the same composition seam kanso's own
// internal/ir/optimizations.go exposes for ConstantFolding,
// DeadCodeElimination and CommonSubexpressionElimination: any pass that
// can inspect and rewrite a Program in place and report whether it
// changed anything.
type OptimizationPass interface {
	Name() string
	Apply(program *Program) bool
	Description() string
}

// OptimizationPipeline runs a sequence of passes over a Program,
// following kanso's own driver: construct with the default pass list,
// or build a custom one with AddPass.
type OptimizationPipeline struct {
	passes []OptimizationPass
}

// NewOptimizationPipeline wires the block-merge pass as the sole default
// member; callers add further (hypothetical) passes with AddPass the same
// way kanso appends its own.
func NewOptimizationPipeline() *OptimizationPipeline {
	return &OptimizationPipeline{
		passes: []OptimizationPass{NewBlockMerger(DefaultEffectAnalyzer{}, &PassOptions{})},
	}
}

func (p *OptimizationPipeline) AddPass(pass OptimizationPass) {
	p.passes = append(p.passes, pass)
}

// Run executes every pass in order, printing progress the way kanso's
// own OptimizationPipeline.Run does.
func (p *OptimizationPipeline) Run(program *Program) bool {
	fmt.Printf("Running %d optimization passes...\n", len(p.passes))
	changedAny := false
	for _, pass := range p.passes {
		changed := pass.Apply(program)
		changedAny = changedAny || changed
		status := "no change"
		if changed {
			status = "changed"
		}
		fmt.Printf("  - %s: %s\n", pass.Name(), status)
	}
	return changedAny
}

// BlockMerger implements C1 (in-block flattening), C2 (expression
// hoisting) and C3 (break-value stripping) as a single OptimizationPass.
// Each Function is walked independently (see pass.go for how the module
// driver parallelizes across Functions); a BlockMerger instance itself
// holds no per-function state beyond the analyzer/options it was built
// with, so the same instance is safe to reuse across functions run one
// after another, and ModulePass gives each concurrent worker its own
// BlockMerger (and so its own Builder).
type BlockMerger struct {
	analyzer EffectAnalyzer
	opts     *PassOptions
	builder  *Builder
}

func NewBlockMerger(analyzer EffectAnalyzer, opts *PassOptions) *BlockMerger {
	if opts == nil {
		opts = &PassOptions{}
	}
	return &BlockMerger{
		analyzer: analyzer,
		opts:     opts,
		builder:  NewBuilder(),
	}
}

func (m *BlockMerger) Name() string { return "BlockMerger" }

func (m *BlockMerger) Description() string {
	return "flattens nested anonymous blocks, hoists block-valued operands, and strips dead break values"
}

// Apply runs C1/C2/C3 over every function in program, one goroutine per
// function (see pass.go's ModulePass, which this delegates to), and
// reports whether any function's tree changed. Functions never share
// state during a run, so the result is identical to applying
// ApplyFunction to each one sequentially.
func (m *BlockMerger) Apply(program *Program) bool {
	return ModulePass(program, m.analyzer, m.opts)
}

// ApplyFunction runs the pass over a single function body with the
// BlockMerger's analyzer, options and Builder; ModulePass calls it on a
// separate BlockMerger per function (see pass.go).
func (m *BlockMerger) ApplyFunction(fn *Function) bool {
	before := Print(fn.Body)
	m.walk(&fn.Body)
	return Print(fn.Body) != before
}

func (m *BlockMerger) effects(e Expr) Effects {
	return m.analyzer.Analyze(m.opts, e)
}

// walk is the traversal framework: strictly post-order, Block nodes go
// through C1 (optimizeBlock), everything else goes through C2's per-kind
// hoist driver after its own children have already been fully processed.
func (m *BlockMerger) walk(slot *Expr) {
	if slot == nil || *slot == nil {
		return
	}
	if b, ok := (*slot).(*Block); ok {
		for i := range b.List {
			m.walk(&b.List[i])
		}
		m.optimizeBlock(b)
		return
	}
	for _, child := range operandSlots(*slot) {
		m.walk(child)
	}
	m.hoistNode(slot)
}

// optimizeBlock is C1: direct-child splicing, drop-of-block sinking, and
// concrete-value middle-element dropping, iterated to a fixed point.
func (m *BlockMerger) optimizeBlock(b *Block) {
	changed := false
	for {
		a := m.flattenPass(b)
		d := m.dropConcreteMiddles(b)
		if !a && !d {
			break
		}
		changed = true
	}
	if changed {
		FinalizeAs(b, b.Typ)
	}
}

// flattenPass makes one forward sweep over b.List, splicing direct-child
// anonymous blocks (step 1) and sinking drop-of-block (step 2) in place,
// immediately re-examining the same index whenever either rewrite fires.
func (m *BlockMerger) flattenPass(b *Block) bool {
	changed := false
	i := 0
	for i < len(b.List) {
		child := b.List[i]

		if cb, ok := child.(*Block); ok && cb.Anonymous() {
			b.List = spliceAt(b.List, i, cb.List)
			changed = true
			continue
		}

		if d, ok := child.(*Drop); ok {
			if inner, ok := d.Value.(*Block); ok {
				if m.sinkDrop(d, inner) {
					b.List[i] = inner
					changed = true
					continue
				}
			}
		}

		i++
	}
	return changed
}

// sinkDrop implements C1 step 2: reuse the Drop node, sink it to inner's
// tail, and hand inner back to the caller in the dropped child's place.
// Returns false when the sink is unsafe (inner has an unreachable child,
// or inner is labeled and the problem finder reports it unsafe to strip
// its break values).
func (m *BlockMerger) sinkDrop(d *Drop, inner *Block) bool {
	if containsUnreachableChild(inner) {
		return false
	}
	if inner.Label != "" {
		if m.findProblem(inner, inner.Label).found() {
			return false
		}
		var innerExpr Expr = inner
		m.stripBreakValues(&innerExpr, inner.Label)
		inner = innerExpr.(*Block)
	}
	tail := inner.List[len(inner.List)-1]
	d.Value = tail
	Finalize(d)
	inner.List[len(inner.List)-1] = d
	FinalizeAs(inner, TypeNone)
	return true
}

// dropConcreteMiddles implements C1 step 3: every non-tail element with a
// concrete type gets wrapped in a Drop.
func (m *BlockMerger) dropConcreteMiddles(b *Block) bool {
	changed := false
	for i := 0; i < len(b.List)-1; i++ {
		e := b.List[i]
		if e.ExprType().IsConcrete() {
			drop := m.builder.MakeDrop(e)
			Finalize(drop)
			b.List[i] = drop
			changed = true
		}
	}
	return changed
}

func spliceAt(list []Expr, i int, replacement []Expr) []Expr {
	out := make([]Expr, 0, len(list)-1+len(replacement))
	out = append(out, list[:i]...)
	out = append(out, replacement...)
	out = append(out, list[i+1:]...)
	return out
}

// hoistNode is C2's per-kind driver: build the node's ordered operand
// slots (the same table operandSlots uses for effect analysis), apply
// the conservative 3+-operand gate when it's in force, then chain-hoist
// in order.
func (m *BlockMerger) hoistNode(slot *Expr) {
	parent := *slot
	slots := operandSlots(parent)
	if len(slots) == 0 {
		return
	}
	if isStrictEffectKind(parent) && !m.opts.PreciseOperandEffects {
		for _, s := range slots {
			if m.effects(*s).HasSideEffects() {
				return
			}
		}
	}
	m.hoistChain(slot, parent, slots)
}

// hoistChain walks slots left to right, hoisting each candidate
// anonymous multi-statement block it finds into a shared outer block,
// refusing a hoist whenever the accumulated effects of everything still
// evaluated before it could invalidate the candidate's effects.
func (m *BlockMerger) hoistChain(slot *Expr, parent Expr, slots []*Expr) {
	var outer *Block
	var before []Effects
	for _, s := range slots {
		cur := *s
		curEffects := m.effects(cur)
		if b, ok := cur.(*Block); ok && m.hoistPreconditionsOK(parent, b) {
			safe := true
			for _, dep := range before {
				if dep.Invalidates(curEffects) {
					safe = false
				}
			}
			if safe {
				outer = m.hoistOperand(slot, parent, s, b, outer)
			}
		}
		before = append(before, curEffects)
	}
	if outer != nil {
		*slot = outer
	}
}

// hoistPreconditionsOK implements the operand-block preconditions from
// §4.2: the candidate must be anonymous, hold at least two statements,
// not end in an unreachable-typed tail, and — when parent is typed none
// — must not contain an unreachable child anywhere (hoisting it would
// otherwise turn parent's type from none into unreachable).
func (m *BlockMerger) hoistPreconditionsOK(parent Expr, b *Block) bool {
	if !b.Anonymous() || len(b.List) < 2 {
		return false
	}
	tail := b.List[len(b.List)-1]
	assertf(tail.ExprType() == b.Typ, "hoist: block tail type %s != block type %s", tail.ExprType(), b.Typ)
	if tail.ExprType() == TypeUnreachable {
		return false
	}
	if parent.ExprType() == TypeNone && containsUnreachableChild(b) {
		return false
	}
	return true
}

// hoistOperand performs the single-operand rewrite from §4.2: the
// candidate block's tail value replaces the operand in place, and the
// block itself is spliced in ahead of parent — reusing b directly as the
// outer block the first time, or chaining b's prefix into an
// already-established outer block on subsequent hoists for the same
// parent.
func (m *BlockMerger) hoistOperand(slot *Expr, parent Expr, opSlot *Expr, b *Block, outer *Block) *Block {
	tail := b.List[len(b.List)-1]
	*opSlot = tail

	if outer == nil {
		want := parent.ExprType()
		b.List[len(b.List)-1] = parent
		FinalizeAs(b, want)
		*slot = b
		return b
	}

	n := len(outer.List)
	assertf(n > 0 && outer.List[n-1] == parent, "hoist: outer.list.back() != parent before chaining")
	prefix := append([]Expr{}, b.List[:len(b.List)-1]...)
	outer.List = append(outer.List[:n-1], append(prefix, parent)...)
	return outer
}
