package model

// StepKind is the role a step plays in a fitted pipeline.
type StepKind string

const (
	PassthroughKind StepKind = "passthrough"
	TransformerKind StepKind = "transformer"
	ResamplerKind   StepKind = "resampler"
	EstimatorKind   StepKind = "estimator"
)

// StepInfo describes a step to the pipeline options.
type StepInfo struct {
	Kind  StepKind
	Name  string
	Type  string
	Index int
	Total int
}

var (
	StartStep = &StepInfo{Name: "start", Index: -1}
	EndStep   = &StepInfo{Name: "end", Index: -1}
)
