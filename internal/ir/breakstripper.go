package ir

// problemReport is the result of walking a labeled block's subtree
// looking for reasons its breaks' values cannot be safely dropped.
//
// brIfs counts every conditional break (br_if) targeting the label;
// droppedBrIfs counts how many of those already sit directly inside a
// Drop (so their flowed-through value on the not-taken path is already
// discarded, not read by anything else). problem is set by anything
// that makes stripping unsafe outright: a value-carrying break whose
// value has side effects, or any Switch that can also reach the label.
type problemReport struct {
	brIfs        int
	droppedBrIfs int
	problem      bool
}

// found reports whether it is unsafe to strip break values targeting
// this label: either an outright problem was seen, or some conditional
// break's flowed value is read by something other than an enclosing Drop.
func (r problemReport) found() bool {
	return r.problem || r.brIfs > r.droppedBrIfs
}

// findProblem walks root (typically the body of a labeled Block) for
// every Break/Switch that can target label.
func (m *BlockMerger) findProblem(root Expr, label string) problemReport {
	var r problemReport
	m.findProblemRec(root, label, false, &r)
	assertf(r.brIfs >= r.droppedBrIfs, "problem finder: brIfs (%d) < droppedBrIfs (%d)", r.brIfs, r.droppedBrIfs)
	return r
}

func (m *BlockMerger) findProblemRec(e Expr, label string, insideDrop bool, r *problemReport) {
	if e == nil {
		return
	}
	switch v := e.(type) {
	case *Break:
		if v.Target == label {
			if v.Condition != nil {
				r.brIfs++
				if insideDrop {
					r.droppedBrIfs++
				}
			}
			if v.Value != nil && m.effects(v.Value).HasSideEffects() {
				r.problem = true
			}
		}
		m.findProblemRec(v.Condition, label, false, r)
		m.findProblemRec(v.Value, label, false, r)
	case *Switch:
		if v.Default == label {
			r.problem = true
		}
		for _, t := range v.Targets {
			if t == label {
				r.problem = true
			}
		}
		m.findProblemRec(v.Condition, label, false, r)
		m.findProblemRec(v.Value, label, false, r)
	case *Drop:
		m.findProblemRec(v.Value, label, true, r)
	case *Block:
		for _, c := range v.List {
			m.findProblemRec(c, label, false, r)
		}
	default:
		for _, s := range operandSlots(e) {
			m.findProblemRec(*s, label, false, r)
		}
	}
}

// stripBreakValues rewrites every Break targeting label within the tree
// rooted at slot, turning "break L (value v)" into the sequence
// "drop v; break L" (or into v alone when v is unreachable-typed, since
// nothing after it would ever run). It re-runs C1 on every Block it
// passes through, so statements that become adjacent as a result of the
// rewrite are flattened immediately rather than waiting for a later
// traversal.
func (m *BlockMerger) stripBreakValues(slot *Expr, label string) {
	e := *slot
	if e == nil {
		return
	}
	switch v := e.(type) {
	case *Block:
		for i := range v.List {
			m.stripBreakValues(&v.List[i], label)
		}
		m.optimizeBlock(v)
	case *Break:
		m.stripBreakValues(&v.Condition, label)
		m.stripBreakValues(&v.Value, label)
		if v.Target == label && v.Value != nil {
			*slot = m.rewriteBreakValue(v)
		}
	default:
		for _, s := range operandSlots(e) {
			m.stripBreakValues(s, label)
		}
	}
}

func (m *BlockMerger) rewriteBreakValue(br *Break) Expr {
	v := br.Value
	if v.ExprType() == TypeUnreachable {
		return v
	}
	drop := m.builder.MakeDrop(v)
	Finalize(drop)
	br.Value = nil
	Finalize(br)
	return m.builder.MakeSequence(drop, br)
}
