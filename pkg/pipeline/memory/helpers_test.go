package memory_test

import (
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/memory"
)

func testEntry() *memory.Entry {
	return &memory.Entry{
		X:     mat.NewDense(2, 2, []float64{1, 2, 3, 4}),
		Y:     []float64{0, 1},
		State: []byte(`{"mean":[2,3]}`),
	}
}
