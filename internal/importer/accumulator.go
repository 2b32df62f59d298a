package importer

import "sync"

// Accumulator collects non-existing product codes across tasks for the
// periodic report. Explicitly owned and passed by reference; an ordered set,
// drained and reset atomically by the reporting timer.
type Accumulator struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

func NewAccumulator() *Accumulator {
	return &Accumulator{seen: make(map[string]struct{})}
}

func (a *Accumulator) Add(codes ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range codes {
		if c == "" {
			continue
		}
		if _, ok := a.seen[c]; ok {
			continue
		}
		a.seen[c] = struct{}{}
		a.order = append(a.order, c)
	}
}

// Drain returns the collected codes in insertion order and resets the set.
func (a *Accumulator) Drain() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.order
	a.order = nil
	a.seen = make(map[string]struct{})
	return out
}

func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.order)
}
