package drawer

import (
	"time"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/measure"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// Reset removes every step and link.
	Reset() error
	// AddStep adds a step to the pipeline drawer. Adding a step twice is a no-op.
	AddStep(step *model.StepInfo) error
	// AddLink adds a link between parent and children steps.
	AddLink(parentStepName, childrenStepName string) error
	// Draw creates a file with the pipeline graph.
	Draw() error
	// SetTotalTime sets the total time for the step.
	SetTotalTime(stepName string, startTime time.Time) error
	// AddMeasure adds a measure to the pipeline drawer.
	AddMeasure(measure measure.Measure) error
}
