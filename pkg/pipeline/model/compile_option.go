package model

import "time"

// CompileOption defines the interface for compiler options.
// A compiler may compile several descriptors in parallel, so implementations must be safe
// for concurrent use between New and Finish.
type CompileOption interface {
	// New initialises the option.
	New() error
	// PrepareStage runs for every action appended to a graph. parent is nil for the source action.
	PrepareStage(pipelineName string, parent, stage *StageSpec) error
	// AfterCompile runs once a graph is complete.
	AfterCompile(graph *PipelineGraph, elapsed time.Duration) error
	// Finish runs after the last compilation.
	Finish() error
}
