package model

import "gonum.org/v1/gonum/mat"

// Params holds keyword parameters, either fit-time parameters or estimator hyper-parameters.
type Params map[string]any

// Fitter learns from the features X and the optional labels y.
type Fitter interface {
	Fit(X mat.Matrix, y []float64, params Params) error
}

// Transformer maps features to features without changing the number of rows.
type Transformer interface {
	Transform(X mat.Matrix) (mat.Matrix, error)
}

// FitTransformer fits and transforms in a single call.
type FitTransformer interface {
	FitTransform(X mat.Matrix, y []float64, params Params) (mat.Matrix, error)
}

// Resampler fits and returns new features and labels, possibly with a different number of rows.
type Resampler interface {
	FitResample(X mat.Matrix, y []float64, params Params) (mat.Matrix, []float64, error)
}

// RowFilter is implemented by resamplers that also remove rows at prediction time.
// The returned rows are relative to X. A nil Rows means nothing was removed.
type RowFilter interface {
	FilterRows(X mat.Matrix) (mat.Matrix, *Rows, error)
}

// Predictor predicts one target per row.
type Predictor interface {
	Predict(X mat.Matrix) ([]float64, error)
}

// ProbaPredictor predicts class probabilities, one row per sample.
type ProbaPredictor interface {
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// FitPredictor fits and predicts on the same data.
type FitPredictor interface {
	FitPredict(X mat.Matrix, y []float64, params Params) ([]float64, error)
}

// ParamGetter exposes the hyper-parameters of an estimator.
type ParamGetter interface {
	GetParams() Params
}

// ParamSetter updates the hyper-parameters of an estimator.
type ParamSetter interface {
	SetParams(params Params) error
}

// Cloner returns an unfitted copy carrying the same hyper-parameters.
type Cloner interface {
	Clone() any
}
