package memory

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Outcome reports how a Cache call was served.
type Outcome struct {
	Entry *Entry
	// LoadErr is set when the stored entry could not be read. The entry was then recomputed.
	LoadErr error
	// StoreErr is set when the computed entry could not be stored.
	StoreErr error
	// Hit is true when the entry came from the memory.
	Hit bool
}

// Cache computes entries at most once per key, even when several callers ask for the same key at the same time.
type Cache struct {
	mem   Memory
	group singleflight.Group
}

// NewCache wraps mem.
func NewCache(mem Memory) *Cache {
	return &Cache{mem: mem}
}

// Memory returns the wrapped memory.
func (c *Cache) Memory() Memory {
	return c.mem
}

// Do returns the entry stored under key, or computes and stores it.
// Errors of the memory never fail the call, they are reported in the outcome.
func (c *Cache) Do(key string, compute func() (*Entry, error)) (Outcome, error) {
	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		var out Outcome

		entry, ok, err := c.mem.Get(key)
		switch {
		case err != nil:
			out.LoadErr = err
		case ok:
			out.Entry = entry
			out.Hit = true

			return out, nil
		}

		entry, err = compute()
		if err != nil {
			return out, err
		}
		out.Entry = entry
		out.StoreErr = c.mem.Set(key, entry)

		return out, nil
	})
	if err != nil {
		return Outcome{}, errors.Wrapf(err, "unable to compute entry %s", key)
	}

	return res.(Outcome), nil //nolint:forcetypeassert
}
