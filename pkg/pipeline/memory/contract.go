package memory

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotPersistable = errors.New("fitted step does not implement encoding.BinaryMarshaler")
	ErrInvalidKey     = errors.New("invalid cache key")
	ErrLocationEmpty  = errors.New("location must be set")
)

// Entry is the cached result of fitting one step.
type Entry struct {
	// X holds the features produced by the step.
	X *mat.Dense
	// Y holds the labels produced by the step. Transformers return the labels they received.
	Y []float64
	// Step is the fitted step. Only the in-process memory keeps it.
	Step any
	// State is the binary state of the fitted step, restored with encoding.BinaryUnmarshaler.
	State []byte
}

// Memory defines the interface of a caching location.
type Memory interface {
	// Location describes where the entries are stored.
	Location() string
	// Get returns the entry stored under key. The boolean is false when there is none.
	Get(key string) (*Entry, bool, error)
	// Set stores entry under key.
	Set(key string, entry *Entry) error
	// Clear removes every entry.
	Clear() error
}

// CopyMatrix returns a dense copy of m. Matrices without rows or columns are returned as an empty Dense.
func CopyMatrix(m mat.Matrix) *mat.Dense {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return &mat.Dense{}
	}

	return mat.DenseCopyOf(m)
}

func copyFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)

	return out
}

func copyEntry(e *Entry) *Entry {
	var state []byte
	if e.State != nil {
		state = make([]byte, len(e.State))
		copy(state, e.State)
	}

	return &Entry{
		X:     CopyMatrix(e.X),
		Y:     copyFloats(e.Y),
		Step:  e.Step,
		State: state,
	}
}

func validateKey(key string) error {
	if key == "" {
		return errors.Wrap(ErrInvalidKey, "key is empty")
	}
	for _, r := range key {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '-' || r == '_') {
			return errors.Wrapf(ErrInvalidKey, "key %q contains %q", key, r)
		}
	}

	return nil
}
