// Package counter provides a bounded progress counter that accumulates in
// whole or per-mille units and mirrors itself onto a progress indicator.
package counter

import "math"

// PerMille is the resolution factor of a fine-grained counter.
const PerMille = 1000

// Indicator is a bounded progress display, e.g. a progress bar widget.
type Indicator interface {
	SetValue(v int)
	SetMaximum(m int)
	Value() int
	Maximum() int
}

// Counter accumulates a running value and maximum in fine units (whole
// units times the resolution factor) and exposes them coarsely.
//
// The attached indicator never shows a value above its maximum, and its
// maximum never shrinks between resets.
type Counter struct {
	ind    Indicator
	scale  uint64
	value  uint64
	max    uint64
	notify func()
}

// Option configures a Counter.
type Option func(*Counter)

// WithPerMille switches the counter to per-mille resolution.
func WithPerMille() Option {
	return func(c *Counter) {
		c.scale = PerMille
	}
}

// WithNotify registers the callback fired after every mutation.
func WithNotify(fn func()) Option {
	return func(c *Counter) {
		c.notify = fn
	}
}

// New builds a counter driving ind. The counter starts in the reset state.
func New(ind Indicator, opts ...Option) *Counter {
	c := &Counter{ind: ind, scale: 1}
	for _, o := range opts {
		o(c)
	}
	c.Reset()
	return c
}

// SetNotify replaces the change callback.
func (c *Counter) SetNotify(fn func()) {
	c.notify = fn
}

// Reset zeroes the counter. The indicator maximum becomes 1, never 0.
// No notification is fired.
func (c *Counter) Reset() {
	c.value = 0
	c.max = 0
	c.ind.SetValue(0)
	c.ind.SetMaximum(1)
}

// IncreaseMaximum adds n whole units to the maximum.
func (c *Counter) IncreaseMaximum(n uint) {
	c.max = addSat(c.max, mulSat(uint64(n), c.scale))
	c.ind.SetMaximum(max(c.ind.Maximum(), clampInt(c.max)))
	c.fire()
}

// IncreaseValue adds n whole units to the value.
func (c *Counter) IncreaseValue(n uint) {
	c.addFine(mulSat(uint64(n), c.scale))
}

// IncreaseValuePerMille adds n fine units to the value without scaling.
func (c *Counter) IncreaseValuePerMille(n uint) {
	c.addFine(uint64(n))
}

func (c *Counter) addFine(n uint64) {
	c.value = addSat(c.value, n)
	c.ind.SetValue(min(clampInt(c.value), c.ind.Maximum()))
	c.fire()
}

func (c *Counter) fire() {
	if c.notify != nil {
		c.notify()
	}
}

// Maximum is the coarse maximum: completed whole units of the running maximum.
func (c *Counter) Maximum() uint {
	return uint(c.max / c.scale)
}

// Value is the coarse value. It counts the unit in progress rather than the
// units completed, so it runs one ahead of the completed count, and is
// clamped to Maximum.
func (c *Counter) Value() uint {
	done, total := c.value/c.scale, c.max/c.scale
	if done >= total {
		return uint(total)
	}
	return uint(done + 1)
}

// Step returns Value and Maximum.
func (c *Counter) Step() (value, maximum uint) {
	return c.Value(), c.Maximum()
}

// Indicator returns the display the counter drives.
func (c *Counter) Indicator() Indicator {
	return c.ind
}

func addSat(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func mulSat(a, b uint64) uint64 {
	if a != 0 && b > math.MaxUint64/a {
		return math.MaxUint64
	}
	return a * b
}

func clampInt(v uint64) int {
	if v > math.MaxInt {
		return math.MaxInt
	}
	return int(v)
}
