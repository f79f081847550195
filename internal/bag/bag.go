// Package bag implements the priority-biased, capacity-bounded container
// used for concepts, links and novel tasks.
package bag

import (
	"fmt"
	"math/rand/v2"

	"github.com/danielpatrickdp/narsvm/internal/nal"
)

// Item is anything a bag can hold: a stable key and a mutable budget.
type Item interface {
	Key() string
	Budget() *nal.Budget
}

// Threshold is the lowest level at which take-out drains a whole level
// before asking the distributor again.
const Threshold = 10

// #region bag

type entry[E Item] struct {
	item  E
	level int
}

// Bag holds at most Capacity items spread over Levels FIFO levels.
type Bag[E Item] struct {
	capacity     int
	levels       int
	forgetCycles int

	names map[string]*entry[E]
	table [][]string
	dist  *Distributor

	levelIndex     int
	currentLevel   int
	currentCounter int
}

// New builds an empty bag. When rng is non-nil it picks the distributor
// starting position; otherwise the position is derived from the capacity.
func New[E Item](capacity, levels, forgetCycles int, rng *rand.Rand) *Bag[E] {
	if capacity < 1 {
		capacity = 1
	}
	if levels < 1 {
		levels = 1
	}
	b := &Bag[E]{
		capacity:     capacity,
		levels:       levels,
		forgetCycles: forgetCycles,
		names:        make(map[string]*entry[E]),
		table:        make([][]string, levels),
		dist:         NewDistributor(levels),
	}
	if rng != nil {
		b.levelIndex = rng.IntN(b.dist.Len())
	} else {
		b.levelIndex = capacity % b.dist.Len()
	}
	b.currentLevel = levels - 1
	return b
}

func (b *Bag[E]) Capacity() int     { return b.capacity }
func (b *Bag[E]) Levels() int       { return b.levels }
func (b *Bag[E]) ForgetCycles() int { return b.forgetCycles }

// Size is the number of items held.
func (b *Bag[E]) Size() int { return len(b.names) }

// Has reports whether key is held.
func (b *Bag[E]) Has(key string) bool {
	_, ok := b.names[key]
	return ok
}

// Get returns the item under key without removing it.
func (b *Bag[E]) Get(key string) (E, bool) {
	e, ok := b.names[key]
	if !ok {
		var zero E
		return zero, false
	}
	return e.item, true
}

// LevelOf maps a priority to a level: floor(p*N) clamped to [0, N-1].
func (b *Bag[E]) LevelOf(p nal.ShortFloat) int {
	level := int(p) * b.levels / nal.ShortFloatScale
	if level >= b.levels {
		level = b.levels - 1
	}
	if level < 0 {
		level = 0
	}
	return level
}

// PutIn inserts item and returns whatever overflowed, possibly item itself.
// An item already held under the same key is replaced and its budget merged
// into the new one.
func (b *Bag[E]) PutIn(item E) (E, bool) {
	key := item.Key()
	if old, ok := b.names[key]; ok {
		b.removeFromLevel(key, old.level)
		item.Budget().Merge(*old.item.Budget())
	}
	e := &entry[E]{item: item, level: b.LevelOf(item.Budget().P)}
	b.names[key] = e

	var zero E
	if len(b.names) > b.capacity {
		out := 0
		for out < b.levels && len(b.table[out]) == 0 {
			out++
		}
		if out > e.level || out == b.levels {
			delete(b.names, key)
			return item, true
		}
		displaced := b.takeOutFirst(out)
		b.table[e.level] = append(b.table[e.level], key)
		return displaced, true
	}
	b.table[e.level] = append(b.table[e.level], key)
	return zero, false
}

// TakeOut removes one item, favoring high levels.
func (b *Bag[E]) TakeOut() (E, bool) {
	var zero E
	if len(b.names) == 0 {
		return zero, false
	}
	if len(b.table[b.currentLevel]) == 0 || b.currentCounter == 0 {
		b.currentLevel = b.dist.Pick(b.levelIndex)
		b.levelIndex = b.dist.Next(b.levelIndex)
		for len(b.table[b.currentLevel]) == 0 {
			b.currentLevel = b.dist.Pick(b.levelIndex)
			b.levelIndex = b.dist.Next(b.levelIndex)
		}
		if b.currentLevel < Threshold {
			b.currentCounter = 1
		} else {
			b.currentCounter = len(b.table[b.currentLevel])
		}
	}
	item := b.takeOutFirst(b.currentLevel)
	b.currentCounter--
	return item, true
}

// PickOut removes the item under key.
func (b *Bag[E]) PickOut(key string) (E, bool) {
	e, ok := b.names[key]
	if !ok {
		var zero E
		return zero, false
	}
	b.removeFromLevel(key, e.level)
	delete(b.names, key)
	return e.item, true
}

// PutBack decays the item's priority and reinserts it.
func (b *Bag[E]) PutBack(item E) (E, bool) {
	budget := item.Budget()
	*budget = nal.Forget(*budget, b.forgetCycles, nal.RelativeThreshold)
	return b.PutIn(item)
}

// Items lists the contents from the highest level down, FIFO within a level.
func (b *Bag[E]) Items() []E {
	out := make([]E, 0, len(b.names))
	for level := b.levels - 1; level >= 0; level-- {
		for _, key := range b.table[level] {
			out = append(out, b.names[key].item)
		}
	}
	return out
}

func (b *Bag[E]) takeOutFirst(level int) E {
	key := b.table[level][0]
	b.table[level] = b.table[level][1:]
	e, ok := b.names[key]
	if !ok {
		panic(fmt.Sprintf("bag: level %d holds unknown key %q", level, key))
	}
	delete(b.names, key)
	return e.item
}

func (b *Bag[E]) removeFromLevel(key string, level int) {
	keys := b.table[level]
	for i, k := range keys {
		if k == key {
			b.table[level] = append(keys[:i:i], keys[i+1:]...)
			return
		}
	}
	panic(fmt.Sprintf("bag: key %q missing from level %d", key, level))
}

// #endregion bag

// #region state

// Slot is one item with the level it sits on.
type Slot[E Item] struct {
	Level int
	Item  E
}

// Cursor is the take-out position.
type Cursor struct {
	LevelIndex     int `json:"level_index"`
	CurrentLevel   int `json:"current_level"`
	CurrentCounter int `json:"current_counter"`
}

// Slots lists the contents level by level from 0, FIFO within a level, so
// Restore can rebuild the exact layout.
func (b *Bag[E]) Slots() []Slot[E] {
	out := make([]Slot[E], 0, len(b.names))
	for level, keys := range b.table {
		for _, key := range keys {
			out = append(out, Slot[E]{Level: level, Item: b.names[key].item})
		}
	}
	return out
}

// Cursor returns the take-out position.
func (b *Bag[E]) Cursor() Cursor {
	return Cursor{LevelIndex: b.levelIndex, CurrentLevel: b.currentLevel, CurrentCounter: b.currentCounter}
}

// Restore replaces the contents with slots and the cursor.
func (b *Bag[E]) Restore(slots []Slot[E], c Cursor) error {
	names := make(map[string]*entry[E], len(slots))
	table := make([][]string, b.levels)
	for _, s := range slots {
		if s.Level < 0 || s.Level >= b.levels {
			return fmt.Errorf("restore bag: level %d out of range", s.Level)
		}
		key := s.Item.Key()
		if _, dup := names[key]; dup {
			return fmt.Errorf("restore bag: duplicate key %q", key)
		}
		names[key] = &entry[E]{item: s.Item, level: s.Level}
		table[s.Level] = append(table[s.Level], key)
	}
	if len(names) > b.capacity {
		return fmt.Errorf("restore bag: %d items exceed capacity %d", len(names), b.capacity)
	}
	if c.LevelIndex < 0 || c.LevelIndex >= b.dist.Len() || c.CurrentLevel < 0 || c.CurrentLevel >= b.levels {
		return fmt.Errorf("restore bag: cursor %+v out of range", c)
	}
	b.names, b.table = names, table
	b.levelIndex, b.currentLevel, b.currentCounter = c.LevelIndex, c.CurrentLevel, c.CurrentCounter
	return nil
}

// Check verifies that the levels and the name table agree.
func (b *Bag[E]) Check() error {
	seen := make(map[string]int, len(b.names))
	total := 0
	for level, keys := range b.table {
		if len(keys) > len(b.names) {
			return fmt.Errorf("level %d holds %d keys, table has %d", level, len(keys), len(b.names))
		}
		for _, key := range keys {
			if prev, dup := seen[key]; dup {
				return fmt.Errorf("key %q on levels %d and %d", key, prev, level)
			}
			seen[key] = level
			e, ok := b.names[key]
			if !ok {
				return fmt.Errorf("key %q on level %d missing from name table", key, level)
			}
			if e.level != level {
				return fmt.Errorf("key %q recorded on level %d, found on %d", key, e.level, level)
			}
		}
		total += len(keys)
	}
	if total != len(b.names) {
		return fmt.Errorf("levels hold %d keys, name table %d", total, len(b.names))
	}
	return nil
}

// #endregion state
