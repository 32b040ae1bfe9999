package counter

// Gauge is an in-memory Indicator. Views read it to draw a bar.
type Gauge struct {
	value   int
	maximum int
}

func (g *Gauge) SetValue(v int)   { g.value = v }
func (g *Gauge) SetMaximum(m int) { g.maximum = m }
func (g *Gauge) Value() int       { return g.value }
func (g *Gauge) Maximum() int     { return g.maximum }

// Percent returns value/maximum in 0..1.
func (g *Gauge) Percent() float64 {
	if g.maximum <= 0 {
		return 0
	}
	p := float64(g.value) / float64(g.maximum)
	if p > 1 {
		return 1
	}
	return p
}
