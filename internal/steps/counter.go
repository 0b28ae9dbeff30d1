package steps

import "sync/atomic"

// Counter counts fit calls across clones of a step.
type Counter struct {
	n atomic.Int64
}

func (c *Counter) inc() {
	if c != nil {
		c.n.Add(1)
	}
}

// Load returns the number of recorded calls.
func (c *Counter) Load() int {
	if c == nil {
		return 0
	}

	return int(c.n.Load())
}
