package bag

import "sync"

// Distributor is a fixed pseudo-shuffled sequence of levels in which level
// i appears i+1 times, so higher levels are visited proportionally more.
type Distributor struct {
	order []int
}

var (
	distMu    sync.Mutex
	distCache = map[int]*Distributor{}
)

// NewDistributor returns the shared distributor for the given level count.
func NewDistributor(levels int) *Distributor {
	distMu.Lock()
	defer distMu.Unlock()
	if d, ok := distCache[levels]; ok {
		return d
	}
	capacity := levels * (levels + 1) / 2
	order := make([]int, capacity)
	for i := range order {
		order[i] = -1
	}
	index := 0
	for rank := levels; rank > 0; rank-- {
		for time := 0; time < rank; time++ {
			index = (capacity/rank + index) % capacity
			for order[index] >= 0 {
				index = (index + 1) % capacity
			}
			order[index] = rank - 1
		}
	}
	d := &Distributor{order: order}
	distCache[levels] = d
	return d
}

// Pick returns the level at position i.
func (d *Distributor) Pick(i int) int { return d.order[i] }

// Next returns the position after i.
func (d *Distributor) Next(i int) int { return (i + 1) % len(d.order) }

// Len is the length of the sequence.
func (d *Distributor) Len() int { return len(d.order) }
