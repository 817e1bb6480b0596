package state

// Clock is a logical change counter. Every mutation ticks it, and each layer
// remembers the tick of its most recent change so raster caches can tell
// whether they are stale without comparing stroke data.
type Clock struct {
	now    uint64
	layers []uint64
}

func newClock(layers int) *Clock {
	return &Clock{layers: make([]uint64, layers)}
}

// Now returns the latest tick.
func (c *Clock) Now() uint64 { return c.now }

// Layer returns the tick of the last change that touched layer i.
func (c *Clock) Layer(i int) uint64 {
	if i < 0 || i >= len(c.layers) {
		return 0
	}
	return c.layers[i]
}

// Touch advances the clock and stamps the given layers.
func (c *Clock) Touch(layers ...int) {
	if len(layers) == 0 {
		return
	}
	c.now++
	for _, i := range layers {
		if i >= 0 && i < len(c.layers) {
			c.layers[i] = c.now
		}
	}
}

// TouchAll stamps every layer.
func (c *Clock) TouchAll() {
	c.now++
	for i := range c.layers {
		c.layers[i] = c.now
	}
}
