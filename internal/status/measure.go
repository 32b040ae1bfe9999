package status

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Label is the text widget the status line is written to.
type Label interface {
	SetText(text string)
	Text() string
	// Width is the space available for text, in the unit Measure returns.
	Width() int
}

// Measurer reports the rendered size of a piece of text in the label's font.
type Measurer interface {
	Measure(text string) (width, height int)
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func(text string) (width, height int)

func (f MeasureFunc) Measure(text string) (int, int) { return f(text) }

type size struct{ w, h int }

// CachedMeasurer memoises the sizes of recently measured strings.
type CachedMeasurer struct {
	next  Measurer
	cache *lru.Cache[string, size]
}

// NewCachedMeasurer wraps m with an LRU cache holding n entries.
func NewCachedMeasurer(m Measurer, n int) (*CachedMeasurer, error) {
	c, err := lru.New[string, size](n)
	if err != nil {
		return nil, err
	}
	return &CachedMeasurer{next: m, cache: c}, nil
}

func (c *CachedMeasurer) Measure(text string) (int, int) {
	if s, ok := c.cache.Get(text); ok {
		return s.w, s.h
	}
	w, h := c.next.Measure(text)
	c.cache.Add(text, size{w: w, h: h})
	return w, h
}

// Purge drops all cached sizes, e.g. after the font changed.
func (c *CachedMeasurer) Purge() {
	c.cache.Purge()
}
