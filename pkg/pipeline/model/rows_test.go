package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

func TestAllRows(t *testing.T) {
	t.Parallel()
	rows := model.AllRows(3)
	assert.Equal(t, []int{0, 1, 2}, rows.Kept)
	assert.Empty(t, rows.Outliers)
	assert.NotNil(t, rows.Outliers)
	require.NoError(t, rows.Validate(3))
}

func TestRowsValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		rows    *model.Rows
		n       int
		wantErr bool
	}{
		"partition":      {rows: &model.Rows{Kept: []int{0, 2}, Outliers: []int{1}}, n: 3},
		"empty":          {rows: &model.Rows{}, n: 0},
		"missing row":    {rows: &model.Rows{Kept: []int{0}, Outliers: []int{1}}, n: 3, wantErr: true},
		"duplicated row": {rows: &model.Rows{Kept: []int{0, 1}, Outliers: []int{1}}, n: 3, wantErr: true},
		"out of range":   {rows: &model.Rows{Kept: []int{0, 3}, Outliers: []int{1}}, n: 3, wantErr: true},
		"negative":       {rows: &model.Rows{Kept: []int{-1}}, n: 1, wantErr: true},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := tc.rows.Validate(tc.n)
			if tc.wantErr {
				assert.ErrorIs(t, err, model.ErrRowsPartition)

				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRowsCompose(t *testing.T) {
	t.Parallel()
	// 6 input rows, the first filter removes 1 and 4.
	parent := &model.Rows{Kept: []int{0, 2, 3, 5}, Outliers: []int{1, 4}}
	// The second filter sees 4 rows and removes its rows 0 and 2, input rows 0 and 3.
	child := &model.Rows{Kept: []int{1, 3}, Outliers: []int{0, 2}}

	got := child.Compose(parent)
	assert.Equal(t, []int{2, 5}, got.Kept)
	assert.Equal(t, []int{0, 1, 3, 4}, got.Outliers)
	require.NoError(t, got.Validate(6))
}
