package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-resample-pipeline/internal/steps"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/memory"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

func TestGetParams(t *testing.T) {
	t.Parallel()
	f := newFixture()
	pipe := newPipeline(t, f.steps(), pipeline.WithVerbose(true))

	params := pipe.GetParams()
	assert.Equal(t, true, params["verbose"])
	assert.Nil(t, params["memory"])
	assert.Len(t, params["steps"], 3)
	assert.Same(t, f.scaler, params["scaler"])
	assert.Equal(t, true, params["scaler__with_mean"])
	assert.Equal(t, 10.0, params["filter__threshold"])
	assert.Equal(t, 0, params["filter__column"])
	assert.NotContains(t, params, "lr__coef", "steps without parameters only appear by name")
}

func TestSetParams(t *testing.T) {
	t.Parallel()
	f := newFixture()
	pipe := newPipeline(t, f.steps())
	X, y := trainingData()
	require.NoError(t, pipe.Fit(X, y, nil))

	mem := memory.NewInProcess()
	require.NoError(t, pipe.SetParams(model.Params{
		"scaler__with_mean": false,
		"filter__threshold": 5.0,
		"verbose":           true,
		"memory":            mem,
	}))
	assert.False(t, f.scaler.WithMean)
	assert.Equal(t, 5.0, f.filter.Threshold)
	assert.Equal(t, true, pipe.GetParams()["verbose"])
	assert.Same(t, mem, pipe.Memory())
	assert.False(t, pipe.IsFitted(), "changing a step invalidates the fit")

	lr := &steps.LinearRegression{}
	require.NoError(t, pipe.SetParams(model.Params{"lr": lr, "memory": nil}))
	assert.Same(t, lr, pipe.FinalEstimator())
	assert.Nil(t, pipe.Memory())

	require.NoError(t, pipe.SetParams(model.Params{
		"steps":             []pipeline.Step{{Name: "scaler", Estimator: steps.NewStandardScaler()}, {Name: "lr", Estimator: lr}},
		"scaler__with_mean": false,
	}))
	assert.Equal(t, 2, pipe.Len())
	scaler, ok := pipe.NamedStep("scaler")
	require.True(t, ok)
	assert.False(t, scaler.(*steps.StandardScaler).WithMean) //nolint:forcetypeassert
}

func TestSetParamsErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		params  model.Params
		wantErr error
	}{
		"verbose type":      {params: model.Params{"verbose": "yes"}, wantErr: pipeline.ErrInvalidParam},
		"memory type":       {params: model.Params{"memory": "/tmp"}, wantErr: pipeline.ErrInvalidParam},
		"steps type":        {params: model.Params{"steps": []any{}}, wantErr: pipeline.ErrInvalidParam},
		"unknown step":      {params: model.Params{"svc__c": 1}, wantErr: pipeline.ErrInvalidParam},
		"no setter":         {params: model.Params{"lr__alpha": 1}, wantErr: pipeline.ErrInvalidParam},
		"unknown by step":   {params: model.Params{"scaler__copy": true}, wantErr: steps.ErrUnknownParam},
		"unknown parameter": {params: model.Params{"random_state": 1}, wantErr: pipeline.ErrInvalidParam},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			pipe := newPipeline(t, newFixture().steps())
			assert.ErrorIs(t, pipe.SetParams(tc.params), tc.wantErr)
		})
	}

	var nilPipe *pipeline.Pipeline
	assert.ErrorIs(t, nilPipe.SetParams(nil), pipeline.ErrPipelineMustBeSet)
}
