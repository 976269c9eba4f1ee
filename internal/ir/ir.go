package ir

// RunBlockMerger builds the default BlockMerger and runs it once over
// program, returning whether anything changed. This is the narrow
// equivalent of kanso's own ir.go entry point (BuildProgram/PrintProgram)
// for this package: a single well-known door callers use instead of
// constructing an OptimizationPipeline themselves when they only want
// this one pass.
func RunBlockMerger(program *Program, opts *PassOptions) bool {
	merger := NewBlockMerger(DefaultEffectAnalyzer{}, opts)
	return merger.Apply(program)
}
