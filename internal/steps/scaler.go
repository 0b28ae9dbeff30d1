package steps

import (
	"math"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

var (
	ErrNotFitted    = errors.New("estimator is not fitted")
	ErrShape        = errors.New("unexpected shape")
	ErrUnknownParam = errors.New("unknown parameter")
)

// StandardScaler centres each column and scales it to unit variance.
type StandardScaler struct {
	Fits       *Counter     `json:"-"`
	LastParams model.Params `json:"-"`
	Mean       []float64    `json:"mean"`
	Scale      []float64    `json:"scale"`
	WithMean   bool         `json:"with_mean"`
}

func NewStandardScaler() *StandardScaler {
	return &StandardScaler{WithMean: true}
}

func (s *StandardScaler) Fit(X mat.Matrix, _ []float64, params model.Params) error {
	s.Fits.inc()
	s.LastParams = params

	r, c := X.Dims()
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	if r == 0 {
		return errors.Wrap(ErrShape, "no rows to fit")
	}

	for j := 0; j < c; j++ {
		var sum float64
		for i := 0; i < r; i++ {
			sum += X.At(i, j)
		}
		mean := sum / float64(r)

		var sq float64
		for i := 0; i < r; i++ {
			d := X.At(i, j) - mean
			sq += d * d
		}
		std := math.Sqrt(sq / float64(r))
		if std == 0 {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}

	return nil
}

func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if s.Scale == nil {
		return nil, ErrNotFitted
	}
	r, c := X.Dims()
	if r == 0 {
		return &mat.Dense{}, nil
	}
	if c != len(s.Scale) {
		return nil, errors.Wrapf(ErrShape, "got %d columns, fitted on %d", c, len(s.Scale))
	}

	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		if s.WithMean {
			v -= s.Mean[j]
		}

		return v / s.Scale[j]
	}, X)

	return out, nil
}

func (s *StandardScaler) GetParams() model.Params {
	return model.Params{"with_mean": s.WithMean}
}

func (s *StandardScaler) SetParams(params model.Params) error {
	for name, value := range params {
		switch name {
		case "with_mean":
			v, ok := value.(bool)
			if !ok {
				return errors.Errorf("with_mean must be a bool, got %T", value)
			}
			s.WithMean = v
		default:
			return errors.Wrap(ErrUnknownParam, name)
		}
	}

	return nil
}

func (s *StandardScaler) Clone() any {
	return &StandardScaler{WithMean: s.WithMean, Fits: s.Fits}
}

func (s *StandardScaler) MarshalBinary() ([]byte, error) {
	return sonic.Marshal(s)
}

func (s *StandardScaler) UnmarshalBinary(data []byte) error {
	return sonic.Unmarshal(data, s)
}
