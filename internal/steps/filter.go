package steps

import (
	"math"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

// ThresholdFilter removes the rows whose absolute value in Column is above Threshold,
// both at fit time and at prediction time.
type ThresholdFilter struct {
	Fits      *Counter `json:"-"`
	Column    int      `json:"column"`
	Threshold float64  `json:"threshold"`
}

func NewThresholdFilter(column int, threshold float64) *ThresholdFilter {
	return &ThresholdFilter{Column: column, Threshold: threshold}
}

func (f *ThresholdFilter) rows(X mat.Matrix) (*model.Rows, error) {
	r, c := X.Dims()
	if r == 0 {
		return model.AllRows(0), nil
	}
	if f.Column < 0 || f.Column >= c {
		return nil, errors.Wrapf(ErrShape, "column %d out of %d", f.Column, c)
	}

	rows := &model.Rows{Kept: []int{}, Outliers: []int{}}
	for i := 0; i < r; i++ {
		if math.Abs(X.At(i, f.Column)) > f.Threshold {
			rows.Outliers = append(rows.Outliers, i)
		} else {
			rows.Kept = append(rows.Kept, i)
		}
	}

	return rows, nil
}

func (f *ThresholdFilter) FitResample(X mat.Matrix, y []float64, _ model.Params) (mat.Matrix, []float64, error) {
	f.Fits.inc()

	rows, err := f.rows(X)
	if err != nil {
		return nil, nil, err
	}

	var yt []float64
	if y != nil {
		yt = make([]float64, len(rows.Kept))
		for i, idx := range rows.Kept {
			yt[i] = y[idx]
		}
	}

	return SelectRows(X, rows.Kept), yt, nil
}

func (f *ThresholdFilter) FilterRows(X mat.Matrix) (mat.Matrix, *model.Rows, error) {
	rows, err := f.rows(X)
	if err != nil {
		return nil, nil, err
	}

	return SelectRows(X, rows.Kept), rows, nil
}

func (f *ThresholdFilter) GetParams() model.Params {
	return model.Params{"column": f.Column, "threshold": f.Threshold}
}

func (f *ThresholdFilter) SetParams(params model.Params) error {
	for name, value := range params {
		switch name {
		case "column":
			v, ok := value.(int)
			if !ok {
				return errors.Errorf("column must be an int, got %T", value)
			}
			f.Column = v
		case "threshold":
			v, ok := value.(float64)
			if !ok {
				return errors.Errorf("threshold must be a float64, got %T", value)
			}
			f.Threshold = v
		default:
			return errors.Wrap(ErrUnknownParam, name)
		}
	}

	return nil
}

func (f *ThresholdFilter) Clone() any {
	return &ThresholdFilter{Column: f.Column, Threshold: f.Threshold, Fits: f.Fits}
}

func (f *ThresholdFilter) MarshalBinary() ([]byte, error) {
	return sonic.Marshal(f)
}

func (f *ThresholdFilter) UnmarshalBinary(data []byte) error {
	return sonic.Unmarshal(data, f)
}

// Repeater repeats every row Times times. It only resamples at fit time.
type Repeater struct {
	Times int
}

func (rp *Repeater) FitResample(X mat.Matrix, y []float64, _ model.Params) (mat.Matrix, []float64, error) {
	if rp.Times < 1 {
		return nil, nil, errors.Errorf("times must be positive, got %d", rp.Times)
	}

	r, _ := X.Dims()
	idx := make([]int, 0, r*rp.Times)
	for i := 0; i < r; i++ {
		for t := 0; t < rp.Times; t++ {
			idx = append(idx, i)
		}
	}

	var yt []float64
	if y != nil {
		yt = make([]float64, len(idx))
		for i, k := range idx {
			yt[i] = y[k]
		}
	}

	return SelectRows(X, idx), yt, nil
}

// SelectRows returns the rows of X listed in idx, in that order.
func SelectRows(X mat.Matrix, idx []int) mat.Matrix {
	_, c := X.Dims()
	if len(idx) == 0 || c == 0 {
		return &mat.Dense{}
	}

	out := mat.NewDense(len(idx), c, nil)
	for i, k := range idx {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(k, j))
		}
	}

	return out
}
