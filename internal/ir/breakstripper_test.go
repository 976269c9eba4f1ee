package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newMerger() *BlockMerger {
	return NewBlockMerger(DefaultEffectAnalyzer{}, &PassOptions{})
}

func TestFindProblemCountsConditionalBreaksAndDroppedOnes(t *testing.T) {
	m := newMerger()

	brIf1 := &Break{Target: "L", Condition: constI32(1), Value: constI32(9)}
	Finalize(brIf1)
	brIf2 := &Break{Target: "L", Condition: constI32(2), Value: constI32(8)}
	Finalize(brIf2)

	root := anonBlock(dropOf(brIf1), brIf2)

	r := m.findProblem(root, "L")
	require.Equal(t, 2, r.brIfs)
	require.Equal(t, 1, r.droppedBrIfs)
	require.False(t, r.problem)
	require.True(t, r.found(), "one conditional break's value is read by something other than a Drop")
}

func TestFindProblemAllDroppedIsSafe(t *testing.T) {
	m := newMerger()

	brIf := &Break{Target: "L", Condition: constI32(1), Value: constI32(9)}
	Finalize(brIf)
	root := anonBlock(dropOf(brIf))

	r := m.findProblem(root, "L")
	require.Equal(t, 1, r.brIfs)
	require.Equal(t, 1, r.droppedBrIfs)
	require.False(t, r.found())
}

func TestFindProblemUnconditionalBreakNeverCounts(t *testing.T) {
	m := newMerger()

	br := &Break{Target: "L", Value: constI32(9)}
	Finalize(br)

	r := m.findProblem(br, "L")
	require.Zero(t, r.brIfs)
	require.False(t, r.found())
}

func TestFindProblemSwitchTargetingLabelIsAProblem(t *testing.T) {
	m := newMerger()

	sw := &Switch{Default: "other", Targets: []string{"L"}, Condition: constI32(0)}
	Finalize(sw)

	r := m.findProblem(sw, "L")
	require.True(t, r.problem)
	require.True(t, r.found())
}

func TestFindProblemSwitchDefaultTargetingLabelIsAProblem(t *testing.T) {
	m := newMerger()

	sw := &Switch{Default: "L", Condition: constI32(0)}
	Finalize(sw)

	r := m.findProblem(sw, "L")
	require.True(t, r.problem)
}

func TestFindProblemSideEffectingBreakValueIsAProblem(t *testing.T) {
	m := newMerger()

	sideEffecting := valueLoad(4, constI32(0))
	br := &Break{Target: "L", Condition: constI32(1), Value: sideEffecting}
	Finalize(br)

	r := m.findProblem(br, "L")
	require.False(t, r.problem, "a plain load has no side effects")

	write := storeTo(constI32(0), constI32(1))
	brWithWrite := &Break{Target: "L", Value: write}
	r2 := m.findProblem(brWithWrite, "L")
	require.True(t, r2.problem, "a break carrying a side-effecting value is never safe to strip")
}

func TestStripBreakValuesRewritesConditionalBreakToDropThenBreak(t *testing.T) {
	m := newMerger()

	br := &Break{Target: "L", Condition: constI32(1), Value: constI32(5)}
	Finalize(br)

	var slot Expr = br
	m.stripBreakValues(&slot, "L")

	seq, ok := slot.(*Block)
	require.True(t, ok, "the break's statement position must now hold a drop-then-break sequence")
	require.True(t, seq.Anonymous())
	require.Len(t, seq.List, 2)

	drop, ok := seq.List[0].(*Drop)
	require.True(t, ok)
	require.Equal(t, int64(5), drop.Value.(*Const).Value)

	rewritten, ok := seq.List[1].(*Break)
	require.True(t, ok)
	require.Same(t, br, rewritten)
	require.Nil(t, rewritten.Value, "the break itself must no longer carry a value")
	require.Equal(t, "L", rewritten.Target)
}

func TestStripBreakValuesLeavesUnreachableValueAsIs(t *testing.T) {
	m := newMerger()

	ret := &Return{Value: constI32(1)}
	Finalize(ret)
	br := &Break{Target: "L", Condition: constI32(1), Value: ret}
	Finalize(br)

	var slot Expr = br
	m.stripBreakValues(&slot, "L")

	require.Same(t, ret, slot, "an unreachable-typed value replaces the break outright, nothing runs after it")
}

func TestStripBreakValuesIgnoresOtherLabels(t *testing.T) {
	m := newMerger()

	br := &Break{Target: "other", Condition: constI32(1), Value: constI32(5)}
	Finalize(br)

	var slot Expr = br
	m.stripBreakValues(&slot, "L")

	require.Same(t, br, slot, "a break targeting a different label must be untouched")
	require.NotNil(t, br.Value)
}
