package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/go-resample-pipeline/internal/steps"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

// trainingData follows y = 1 + 2*x0 - x1, except rows 2 and 6 whose first column is an outlier.
func trainingData() (*mat.Dense, []float64) {
	X := mat.NewDense(8, 2, []float64{
		0, 0,
		1, 0,
		100, 1,
		0, 1,
		2, 3,
		3, 1,
		-100, 2,
		1, 1,
	})
	y := []float64{1, 3, -50, 0, 2, 6, 7, 2}

	return X, y
}

type fixture struct {
	scaler *steps.StandardScaler
	filter *steps.ThresholdFilter
	lr     *steps.LinearRegression
}

func newFixture() *fixture {
	scaler := steps.NewStandardScaler()
	scaler.Fits = &steps.Counter{}
	filter := steps.NewThresholdFilter(0, 10)
	filter.Fits = &steps.Counter{}

	return &fixture{
		scaler: scaler,
		filter: filter,
		lr:     &steps.LinearRegression{Fits: &steps.Counter{}},
	}
}

// steps returns filter, scaler, then the linear regression.
func (f *fixture) steps() []pipeline.Step {
	return []pipeline.Step{
		{Name: "filter", Estimator: f.filter},
		{Name: "scaler", Estimator: f.scaler},
		{Name: "lr", Estimator: f.lr},
	}
}

func newPipeline(t *testing.T, stp []pipeline.Step, opts ...pipeline.Option) *pipeline.Pipeline {
	t.Helper()
	pipe, err := pipeline.New(stp, opts...)
	require.NoError(t, err)

	return pipe
}

func meanAbsError(yTrue, yPred []float64) (float64, error) {
	var sum float64
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}

	return sum / float64(len(yTrue)), nil
}

// fitOnly cannot be an intermediate step.
type fitOnly struct{}

func (fitOnly) Fit(mat.Matrix, []float64, model.Params) error { return nil }

// transformOnly cannot be an intermediate step either, it has nothing to fit.
type transformOnly struct{}

func (transformOnly) Transform(X mat.Matrix) (mat.Matrix, error) { return X, nil }

// predictOnly cannot be a final step.
type predictOnly struct{}

func (predictOnly) Predict(X mat.Matrix) ([]float64, error) {
	r, _ := X.Dims()

	return make([]float64, r), nil
}

// transformAndResample is rejected as an intermediate step.
type transformAndResample struct{ transformOnly }

func (transformAndResample) Fit(mat.Matrix, []float64, model.Params) error { return nil }

func (transformAndResample) FitResample(X mat.Matrix, y []float64, _ model.Params) (mat.Matrix, []float64, error) {
	return X, y, nil
}

// brokenFilter claims to keep only the first row but returns every row.
type brokenFilter struct{}

func (brokenFilter) FitResample(X mat.Matrix, y []float64, _ model.Params) (mat.Matrix, []float64, error) {
	return X, y, nil
}

func (brokenFilter) FilterRows(X mat.Matrix) (mat.Matrix, *model.Rows, error) {
	return X, &model.Rows{Kept: []int{0}, Outliers: []int{}}, nil
}

// silentFilter drops the last row at predict time without reporting it.
type silentFilter struct{}

func (silentFilter) FitResample(X mat.Matrix, y []float64, _ model.Params) (mat.Matrix, []float64, error) {
	return X, y, nil
}

func (silentFilter) FilterRows(X mat.Matrix) (mat.Matrix, *model.Rows, error) {
	r, c := X.Dims()

	return mat.DenseCopyOf(X).Slice(0, r-1, 0, c), nil, nil
}

// rowAdder keeps the rows when fitted but appends a row of zeros when transforming.
type rowAdder struct{}

func (rowAdder) FitTransform(X mat.Matrix, _ []float64, _ model.Params) (mat.Matrix, error) {
	return X, nil
}

func (rowAdder) Transform(X mat.Matrix) (mat.Matrix, error) {
	r, c := X.Dims()
	out := mat.NewDense(r+1, c, nil)
	out.Slice(0, r, 0, c).(*mat.Dense).Copy(X) //nolint:forcetypeassert

	return out, nil
}

// meanRegressor predicts the mean of the labels it was fitted on.
type meanRegressor struct {
	mean float64
}

func (m *meanRegressor) Fit(_ mat.Matrix, y []float64, _ model.Params) error {
	m.mean = 0
	for _, v := range y {
		m.mean += v / float64(len(y))
	}

	return nil
}

func (m *meanRegressor) Predict(X mat.Matrix) ([]float64, error) {
	r, _ := X.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = m.mean
	}

	return out, nil
}

type failingOption struct {
	err error
}

func (o failingOption) New() error                                           { return o.err }
func (o failingOption) PrepareStep(_, _ *model.StepInfo) error               { return nil }
func (o failingOption) OnStepFit(_ *model.StepInfo, _ model.FitReport) error { return nil }
func (o failingOption) Finish() error                                        { return nil }
