package resolve

// Collector accumulates resolved coordinates, deduplicating by
// Coordinate.Key while preserving first-discovery order for
// deterministic output. The first-seen provenance wins; an inserted
// coordinate is never mutated.
type Collector struct {
	index map[string]int
	order []Coordinate
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{index: make(map[string]int)}
}

// Add inserts c unless an equal coordinate is already present.
// It reports whether the coordinate was newly inserted.
func (c *Collector) Add(coord Coordinate) bool {
	key := coord.Key()
	if _, exists := c.index[key]; exists {
		return false
	}
	c.index[key] = len(c.order)
	c.order = append(c.order, coord)
	return true
}

// Has reports whether an equal coordinate has been collected.
func (c *Collector) Has(coord Coordinate) bool {
	_, ok := c.index[coord.Key()]
	return ok
}

// Len returns the number of distinct coordinates collected.
func (c *Collector) Len() int { return len(c.order) }

// List returns the collected coordinates in discovery order.
// The returned slice is a copy; mutating it does not affect the collector.
func (c *Collector) List() []Coordinate {
	out := make([]Coordinate, len(c.order))
	copy(out, c.order)
	return out
}
