package pipeline

import (
	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet    = errors.New("pipeline must be set")
	ErrInputMustBeSet       = errors.New("input must be set")
	ErrNoSteps              = errors.New("pipeline must have at least one step")
	ErrInvalidStepName      = errors.New("invalid step name")
	ErrInvalidStep          = errors.New("intermediate steps must implement fit and transform, or fit and resample")
	ErrTransformAndResample = errors.New("intermediate steps must not implement both transform and resample")
	ErrNestedPipeline       = errors.New("intermediate steps must not be pipelines")
	ErrInvalidFinalStep     = errors.New("final step must implement fit or resample, or be passthrough")
	ErrFitParam             = errors.New("fit parameters must be passed as stepname__parameter")
	ErrInvalidParam         = errors.New("invalid parameter")
	ErrNotSupported         = errors.New("final step does not support this method")
	ErrNotFitted            = errors.New("pipeline is not fitted")
	ErrRowMismatch          = errors.New("row count mismatch")
	ErrNoRows               = errors.New("no prediction rows recorded")
)
