package memory

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const keySeed = 0x9e3779b97f4a7c15

// KeyBuilder hashes the inputs of a step fit into a cache key.
// Two independent xxhash digests give a 128 bits key.
type KeyBuilder struct {
	low, high *xxhash.Digest
	buf       [8]byte
}

func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{
		low:  xxhash.New(),
		high: xxhash.NewWithSeed(keySeed),
	}
}

func (k *KeyBuilder) write(p []byte) {
	_, _ = k.low.Write(p)
	_, _ = k.high.Write(p)
}

func (k *KeyBuilder) uint64(v uint64) {
	binary.LittleEndian.PutUint64(k.buf[:], v)
	k.write(k.buf[:])
}

// String adds a length-prefixed string.
func (k *KeyBuilder) String(s string) *KeyBuilder {
	k.uint64(uint64(len(s)))
	k.write([]byte(s))

	return k
}

// Matrix adds the shape and the values of m.
func (k *KeyBuilder) Matrix(m mat.Matrix) *KeyBuilder {
	if m == nil {
		k.uint64(math.MaxUint64)

		return k
	}

	r, c := m.Dims()
	k.uint64(uint64(r))
	k.uint64(uint64(c))
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			k.uint64(math.Float64bits(m.At(i, j)))
		}
	}

	return k
}

// Floats adds v. A nil slice and an empty slice give different keys.
func (k *KeyBuilder) Floats(v []float64) *KeyBuilder {
	if v == nil {
		k.uint64(math.MaxUint64)

		return k
	}

	k.uint64(uint64(len(v)))
	for _, f := range v {
		k.uint64(math.Float64bits(f))
	}

	return k
}

// JSON adds the canonical JSON encoding of v. Map keys are sorted.
func (k *KeyBuilder) JSON(v any) error {
	data, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "unable to encode key value")
	}
	k.uint64(uint64(len(data)))
	k.write(data)

	return nil
}

// Sum returns the key.
func (k *KeyBuilder) Sum() string {
	return fmt.Sprintf("%016x%016x", k.high.Sum64(), k.low.Sum64())
}
