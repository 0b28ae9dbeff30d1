package steps

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

// LinearRegression is an ordinary least squares regressor with an intercept.
type LinearRegression struct {
	Fits       *Counter
	LastParams model.Params
	Coef       []float64
	Intercept  float64
}

func (lr *LinearRegression) Fit(X mat.Matrix, y []float64, params model.Params) error {
	lr.Fits.inc()
	lr.LastParams = params

	r, c := X.Dims()
	if r != len(y) {
		return errors.Wrapf(ErrShape, "%d rows for %d labels", r, len(y))
	}
	if r < c+1 {
		return errors.Wrapf(ErrShape, "need at least %d rows, got %d", c+1, r)
	}

	design := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		design.Set(i, 0, 1)
		for j := 0; j < c; j++ {
			design.Set(i, j+1, X.At(i, j))
		}
	}

	var beta mat.VecDense
	if err := beta.SolveVec(design, mat.NewVecDense(r, copyFloats(y))); err != nil {
		return errors.Wrap(err, "unable to solve least squares")
	}

	lr.Intercept = beta.AtVec(0)
	lr.Coef = make([]float64, c)
	for j := range lr.Coef {
		lr.Coef[j] = beta.AtVec(j + 1)
	}

	return nil
}

func (lr *LinearRegression) Predict(X mat.Matrix) ([]float64, error) {
	if lr.Coef == nil {
		return nil, ErrNotFitted
	}
	r, c := X.Dims()
	if r == 0 {
		return []float64{}, nil
	}
	if c != len(lr.Coef) {
		return nil, errors.Wrapf(ErrShape, "got %d columns, fitted on %d", c, len(lr.Coef))
	}

	out := make([]float64, r)
	for i := range out {
		v := lr.Intercept
		for j, w := range lr.Coef {
			v += w * X.At(i, j)
		}
		out[i] = v
	}

	return out, nil
}

func (lr *LinearRegression) FitPredict(X mat.Matrix, y []float64, params model.Params) ([]float64, error) {
	if err := lr.Fit(X, y, params); err != nil {
		return nil, err
	}

	return lr.Predict(X)
}

// NearestCentroid predicts the label of the closest class centroid.
type NearestCentroid struct {
	Classes   []float64
	Centroids *mat.Dense
}

func (nc *NearestCentroid) Fit(X mat.Matrix, y []float64, _ model.Params) error {
	r, c := X.Dims()
	if r != len(y) || r == 0 {
		return errors.Wrapf(ErrShape, "%d rows for %d labels", r, len(y))
	}

	index := map[float64]int{}
	for _, label := range y {
		index[label] = 0
	}
	nc.Classes = make([]float64, 0, len(index))
	for label := range index {
		nc.Classes = append(nc.Classes, label)
	}
	sort.Float64s(nc.Classes)
	for k, label := range nc.Classes {
		index[label] = k
	}

	nc.Centroids = mat.NewDense(len(nc.Classes), c, nil)
	counts := make([]float64, len(nc.Classes))
	for i := 0; i < r; i++ {
		k := index[y[i]]
		counts[k]++
		for j := 0; j < c; j++ {
			nc.Centroids.Set(k, j, nc.Centroids.At(k, j)+X.At(i, j))
		}
	}
	for k, n := range counts {
		for j := 0; j < c; j++ {
			nc.Centroids.Set(k, j, nc.Centroids.At(k, j)/n)
		}
	}

	return nil
}

func (nc *NearestCentroid) distances(X mat.Matrix) ([][]float64, error) {
	if nc.Centroids == nil {
		return nil, ErrNotFitted
	}
	r, c := X.Dims()
	if r == 0 {
		return [][]float64{}, nil
	}
	if _, cc := nc.Centroids.Dims(); cc != c {
		return nil, errors.Wrapf(ErrShape, "got %d columns, fitted on %d", c, cc)
	}

	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, len(nc.Classes))
		for k := range nc.Classes {
			var d float64
			for j := 0; j < c; j++ {
				diff := X.At(i, j) - nc.Centroids.At(k, j)
				d += diff * diff
			}
			out[i][k] = d
		}
	}

	return out, nil
}

func (nc *NearestCentroid) Predict(X mat.Matrix) ([]float64, error) {
	dist, err := nc.distances(X)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(dist))
	for i, row := range dist {
		best := 0
		for k, d := range row {
			if d < row[best] {
				best = k
			}
		}
		out[i] = nc.Classes[best]
	}

	return out, nil
}

// PredictProba returns a softmax over the negative squared distances.
func (nc *NearestCentroid) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	dist, err := nc.distances(X)
	if err != nil {
		return nil, err
	}
	if len(dist) == 0 {
		return &mat.Dense{}, nil
	}

	out := mat.NewDense(len(dist), len(nc.Classes), nil)
	for i, row := range dist {
		minD := row[0]
		for _, d := range row {
			minD = math.Min(minD, d)
		}
		var sum float64
		for k, d := range row {
			p := math.Exp(minD - d)
			out.Set(i, k, p)
			sum += p
		}
		for k := range row {
			out.Set(i, k, out.At(i, k)/sum)
		}
	}

	return out, nil
}

func copyFloats(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)

	return out
}
