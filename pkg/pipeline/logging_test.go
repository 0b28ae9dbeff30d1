package pipeline_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/go-resample-pipeline/internal/steps"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/memory"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

func TestVerboseLogsEveryStep(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.InfoLevel)
	pipe := newPipeline(t, []pipeline.Step{
		{Name: "filter", Estimator: steps.NewThresholdFilter(0, 10)},
		{Name: "skip", Estimator: pipeline.Passthrough},
		{Name: "lr", Estimator: &steps.LinearRegression{}},
	}, pipeline.WithLogger(zap.New(core)), pipeline.WithVerbose(true))

	X, y := trainingData()
	require.NoError(t, pipe.Fit(X, y, nil))

	entries := logs.FilterMessageSnippet("[Pipeline]").All()
	require.Len(t, entries, 3)
	assert.Equal(t, "[Pipeline] (step 1 of 3) Processing filter", entries[0].Message)
	assert.Equal(t, "[Pipeline] (step 2 of 3) Processing skip", entries[1].Message)
	assert.Equal(t, "[Pipeline] (step 3 of 3) Processing lr", entries[2].Message)

	fitID := entries[0].ContextMap()["fit_id"]
	assert.NotEmpty(t, fitID)
	for _, entry := range entries {
		assert.Equal(t, fitID, entry.ContextMap()["fit_id"])
		assert.Contains(t, entry.ContextMap(), "total")
	}

	require.NoError(t, pipe.Fit(X, y, nil))
	entries = logs.FilterMessageSnippet("[Pipeline]").All()
	require.Len(t, entries, 6)
	assert.NotEqual(t, fitID, entries[3].ContextMap()["fit_id"], "every fit has its own id")
}

func TestQuietByDefault(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.InfoLevel)
	pipe := newPipeline(t, newFixture().steps(), pipeline.WithLogger(zap.New(core)))

	X, y := trainingData()
	require.NoError(t, pipe.Fit(X, y, nil))
	assert.Zero(t, logs.Len())
}

var errUnavailable = errors.New("memory unavailable")

type unavailableMemory struct {
	*memory.InProcess
}

func (unavailableMemory) Get(string) (*memory.Entry, bool, error) {
	return nil, false, errUnavailable
}

func TestMemoryErrorsAreLogged(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.DebugLevel)
	f := newFixture()
	pipe := newPipeline(t, append([]pipeline.Step{{Name: "repeat", Estimator: &steps.Repeater{Times: 1}}}, f.steps()...),
		pipeline.WithLogger(zap.New(core)),
		pipeline.WithMemory(unavailableMemory{memory.NewInProcess()}),
	)

	X, y := trainingData()
	require.NoError(t, pipe.Fit(X, y, nil))
	require.NoError(t, pipe.Fit(X, y, nil))
	assert.Equal(t, 2, f.scaler.Fits.Load(), "entries that cannot be loaded are fitted again")

	warnings := logs.FilterMessage("unable to load cached step, it was fitted again").All()
	require.Len(t, warnings, 4)
	assert.Equal(t, zapcore.WarnLevel, warnings[0].Level)
	assert.Equal(t, 2, logs.FilterMessage("step is not cacheable, fitting it directly").Len())
}

func TestDirMemoryNotPersistableIsDebug(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.DebugLevel)
	mem, err := memory.NewDir(t.TempDir())
	require.NoError(t, err)

	pipe := newPipeline(t, []pipeline.Step{
		{Name: "plain", Estimator: &plainScaler{inner: steps.NewStandardScaler()}},
		{Name: "mean", Estimator: &meanRegressor{}},
	}, pipeline.WithLogger(zap.New(core)), pipeline.WithMemory(mem))

	X, y := trainingData()
	require.NoError(t, pipe.Fit(X, y, nil))
	entries := logs.FilterMessage("fitted step cannot be persisted").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

// plainScaler is cacheable but has no binary state.
type plainScaler struct {
	inner *steps.StandardScaler
}

func (p *plainScaler) Fit(X mat.Matrix, y []float64, params model.Params) error {
	return p.inner.Fit(X, y, params)
}

func (p *plainScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	return p.inner.Transform(X)
}

func (p *plainScaler) GetParams() model.Params {
	return p.inner.GetParams()
}

func (p *plainScaler) SetParams(params model.Params) error {
	return p.inner.SetParams(params)
}

func (p *plainScaler) Clone() any {
	return &plainScaler{inner: p.inner.Clone().(*steps.StandardScaler)} //nolint:forcetypeassert
}
