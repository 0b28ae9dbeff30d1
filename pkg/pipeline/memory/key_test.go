package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/memory"
)

func key(t *testing.T, name string, params any, x mat.Matrix, y []float64) string {
	t.Helper()
	kb := memory.NewKeyBuilder().String(name).Matrix(x).Floats(y)
	require.NoError(t, kb.JSON(params))

	return kb.Sum()
}

func TestKeyBuilder(t *testing.T) {
	t.Parallel()
	x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	y := []float64{0, 1}
	params := map[string]any{"b": 1, "a": true}

	base := key(t, "scaler", params, x, y)
	assert.Len(t, base, 32)
	assert.Equal(t, base, key(t, "scaler", map[string]any{"a": true, "b": 1}, mat.DenseCopyOf(x), []float64{0, 1}))

	others := map[string]string{
		"name":     key(t, "filter", params, x, y),
		"params":   key(t, "scaler", map[string]any{"a": false, "b": 1}, x, y),
		"values":   key(t, "scaler", params, mat.NewDense(2, 2, []float64{1, 2, 3, 5}), y),
		"shape":    key(t, "scaler", params, mat.NewDense(1, 4, []float64{1, 2, 3, 4}), y),
		"labels":   key(t, "scaler", params, x, []float64{1, 0}),
		"nil":      key(t, "scaler", params, x, nil),
		"no label": key(t, "scaler", params, x, []float64{}),
	}
	seen := map[string]string{base: "base"}
	for name, k := range others {
		prev, ok := seen[k]
		assert.Falsef(t, ok, "%s collides with %s", name, prev)
		seen[k] = name
	}
}

func TestKeyBuilderJSONError(t *testing.T) {
	t.Parallel()
	err := memory.NewKeyBuilder().JSON(map[string]any{"fn": func() {}})
	assert.Error(t, err)
}
