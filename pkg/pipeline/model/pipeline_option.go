package model

import "time"

// FitReport summarises the fit of a single step.
type FitReport struct {
	Duration time.Duration
	RowsIn   int
	RowsOut  int
	Cached   bool
}

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error
	// PrepareStep runs for every step, in order, before a fit starts.
	PrepareStep(parentStep, step *StepInfo) error
	// OnStepFit runs once the step is fitted and its output is available.
	OnStepFit(step *StepInfo, report FitReport) error
	// Finish runs after the pipeline is fitted.
	Finish() error
}
