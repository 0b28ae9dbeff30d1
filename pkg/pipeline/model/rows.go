package model

import (
	"sort"

	"github.com/pkg/errors"
)

var ErrRowsPartition = errors.New("kept and outlier rows must partition the input rows")

// Rows records which input rows survived a row filter and which were removed.
type Rows struct {
	Kept     []int
	Outliers []int
}

// AllRows returns the rows of an input of n rows where nothing was removed.
func AllRows(n int) *Rows {
	kept := make([]int, n)
	for i := range kept {
		kept[i] = i
	}

	return &Rows{Kept: kept, Outliers: []int{}}
}

// Validate checks that Kept and Outliers partition 0..n-1.
func (r *Rows) Validate(n int) error {
	if len(r.Kept)+len(r.Outliers) != n {
		return errors.Wrapf(ErrRowsPartition, "got %d kept and %d outliers for %d rows", len(r.Kept), len(r.Outliers), n)
	}

	seen := make([]bool, n)
	for _, list := range [][]int{r.Kept, r.Outliers} {
		for _, idx := range list {
			if idx < 0 || idx >= n {
				return errors.Wrapf(ErrRowsPartition, "row %d out of range [0, %d)", idx, n)
			}
			if seen[idx] {
				return errors.Wrapf(ErrRowsPartition, "row %d listed twice", idx)
			}
			seen[idx] = true
		}
	}

	return nil
}

// Compose maps r, which is relative to the rows kept by parent, back onto the rows parent refers to.
func (r *Rows) Compose(parent *Rows) *Rows {
	kept := make([]int, len(r.Kept))
	for i, idx := range r.Kept {
		kept[i] = parent.Kept[idx]
	}

	outliers := make([]int, 0, len(parent.Outliers)+len(r.Outliers))
	outliers = append(outliers, parent.Outliers...)
	for _, idx := range r.Outliers {
		outliers = append(outliers, parent.Kept[idx])
	}
	sort.Ints(outliers)

	return &Rows{Kept: kept, Outliers: outliers}
}
