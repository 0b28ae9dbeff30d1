package memory

import (
	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const recordVersion = 1

// record is the persisted form of an Entry. Matrices go through the gonum binary format so that NaN and
// infinite values survive the JSON envelope.
type record struct {
	X        []byte `json:"x,omitempty"`
	Y        []byte `json:"y,omitempty"`
	State    []byte `json:"state"`
	Version  int    `json:"version"`
	Rows     int    `json:"rows"`
	Cols     int    `json:"cols"`
	YLen     int    `json:"y_len"`
	HasY     bool   `json:"has_y"`
	HasState bool   `json:"has_state"`
}

func encodeEntry(entry *Entry) ([]byte, error) {
	if entry.State == nil {
		return nil, ErrNotPersistable
	}

	rec := record{
		Version:  recordVersion,
		State:    entry.State,
		HasState: true,
		HasY:     entry.Y != nil,
		YLen:     len(entry.Y),
	}

	if entry.X != nil {
		rec.Rows, rec.Cols = entry.X.Dims()
		if rec.Rows > 0 && rec.Cols > 0 {
			data, err := entry.X.MarshalBinary()
			if err != nil {
				return nil, errors.Wrap(err, "unable to marshal features")
			}
			rec.X = data
		}
	}

	if len(entry.Y) > 0 {
		data, err := mat.NewVecDense(len(entry.Y), copyFloats(entry.Y)).MarshalBinary()
		if err != nil {
			return nil, errors.Wrap(err, "unable to marshal labels")
		}
		rec.Y = data
	}

	data, err := sonic.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode entry")
	}

	return data, nil
}

func decodeEntry(data []byte) (*Entry, error) {
	var rec record
	if err := sonic.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "unable to decode entry")
	}
	if rec.Version != recordVersion {
		return nil, errors.Errorf("unsupported entry version %d", rec.Version)
	}

	entry := &Entry{
		X:     &mat.Dense{},
		State: rec.State,
	}
	// an empty state decodes as nil
	if rec.HasState && entry.State == nil {
		entry.State = []byte{}
	}

	if len(rec.X) > 0 {
		if err := entry.X.UnmarshalBinary(rec.X); err != nil {
			return nil, errors.Wrap(err, "unable to unmarshal features")
		}
		r, c := entry.X.Dims()
		if r != rec.Rows || c != rec.Cols {
			return nil, errors.Errorf("features shape mismatch: got %dx%d, want %dx%d", r, c, rec.Rows, rec.Cols)
		}
	}

	if rec.HasY {
		entry.Y = make([]float64, rec.YLen)
	}
	if len(rec.Y) > 0 {
		vec := &mat.VecDense{}
		if err := vec.UnmarshalBinary(rec.Y); err != nil {
			return nil, errors.Wrap(err, "unable to unmarshal labels")
		}
		if vec.Len() != rec.YLen {
			return nil, errors.Errorf("labels length mismatch: got %d, want %d", vec.Len(), rec.YLen)
		}
		for i := range entry.Y {
			entry.Y[i] = vec.AtVec(i)
		}
	}

	return entry, nil
}
