package bag

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/narsvm/internal/nal"
)

type item struct {
	key    string
	budget nal.Budget
}

func (i *item) Key() string         { return i.key }
func (i *item) Budget() *nal.Budget { return &i.budget }

func newItem(key string, p float64) *item {
	return &item{key: key, budget: nal.NewBudget(p, 0.5, 0.5)}
}

// #region distributor-tests
func TestDistributor_Frequencies(t *testing.T) {
	d := NewDistributor(10)
	require.Equal(t, 55, d.Len())
	counts := make(map[int]int)
	for i := 0; i < d.Len(); i++ {
		counts[d.Pick(i)]++
	}
	for level := 0; level < 10; level++ {
		assert.Equal(t, level+1, counts[level], "level %d", level)
	}
	assert.Same(t, d, NewDistributor(10))
	assert.Equal(t, 0, d.Next(54))
}

// #endregion distributor-tests

// #region bag-tests
func TestBag_PutInAndTakeOut(t *testing.T) {
	b := New[*item](10, 100, 10, nil)
	for i := 0; i < 5; i++ {
		_, overflow := b.PutIn(newItem(fmt.Sprintf("k%d", i), 0.1*float64(i+1)))
		assert.False(t, overflow)
	}
	assert.Equal(t, 5, b.Size())
	require.NoError(t, b.Check())

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		it, ok := b.TakeOut()
		require.True(t, ok)
		seen[it.key] = true
		require.NoError(t, b.Check())
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, 0, b.Size())
}

func TestBag_TakeOutEmpty(t *testing.T) {
	b := New[*item](3, 10, 10, nil)
	before := b.Cursor()
	_, ok := b.TakeOut()
	assert.False(t, ok)
	assert.Equal(t, before, b.Cursor())
	assert.Equal(t, 0, b.Size())
}

func TestBag_CapacityOneKeepsHigherPriority(t *testing.T) {
	b := New[*item](1, 100, 10, nil)
	b.PutIn(newItem("high", 0.9))
	out, overflow := b.PutIn(newItem("low", 0.2))
	require.True(t, overflow)
	assert.Equal(t, "low", out.key)
	assert.True(t, b.Has("high"))

	out, overflow = b.PutIn(newItem("higher", 0.95))
	require.True(t, overflow)
	assert.Equal(t, "high", out.key)
	assert.True(t, b.Has("higher"))
	assert.Equal(t, 1, b.Size())
}

func TestBag_CapacityOneTieKeepsLater(t *testing.T) {
	b := New[*item](1, 100, 10, nil)
	b.PutIn(newItem("first", 0.5))
	out, overflow := b.PutIn(newItem("second", 0.5))
	require.True(t, overflow)
	assert.Equal(t, "first", out.key)
	assert.True(t, b.Has("second"))
	require.NoError(t, b.Check())
}

func TestBag_SameKeyMerges(t *testing.T) {
	b := New[*item](5, 100, 10, nil)
	b.PutIn(&item{key: "a", budget: nal.NewBudget(0.9, 0.1, 0.1)})
	_, overflow := b.PutIn(&item{key: "a", budget: nal.NewBudget(0.2, 0.8, 0.1)})
	assert.False(t, overflow)
	assert.Equal(t, 1, b.Size())
	got, ok := b.Get("a")
	require.True(t, ok)
	assert.Equal(t, nal.NewBudget(0.9, 0.8, 0.1), got.budget)
	require.NoError(t, b.Check())
}

func TestBag_PickOutAndPutBack(t *testing.T) {
	b := New[*item](5, 100, 10, nil)
	b.PutIn(newItem("a", 0.8))
	_, ok := b.PickOut("missing")
	assert.False(t, ok)

	it, ok := b.PickOut("a")
	require.True(t, ok)
	assert.False(t, b.Has("a"))
	before := it.budget.P
	b.PutBack(it)
	assert.True(t, b.Has("a"))
	assert.Less(t, it.budget.P, before)
	require.NoError(t, b.Check())
}

func TestBag_FavorsHighPriority(t *testing.T) {
	b := New[*item](100, 100, 10, nil)
	counts := map[string]int{}
	for round := 0; round < 2000; round++ {
		if b.Size() == 0 {
			b.PutIn(newItem("hot", 0.95))
			b.PutIn(newItem("cold", 0.05))
		}
		it, ok := b.TakeOut()
		require.True(t, ok)
		counts[it.key]++
		it.budget.P = map[string]nal.ShortFloat{"hot": nal.SF(0.95), "cold": nal.SF(0.05)}[it.key]
		b.PutIn(it)
	}
	assert.Greater(t, counts["hot"], counts["cold"])
}

func TestBag_RestoreRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	b := New[*item](10, 20, 10, rng)
	for i := 0; i < 6; i++ {
		b.PutIn(newItem(fmt.Sprintf("k%d", i), 0.15*float64(i)))
	}
	b.TakeOut()

	c := New[*item](10, 20, 10, nil)
	require.NoError(t, c.Restore(b.Slots(), b.Cursor()))
	require.NoError(t, c.Check())
	for b.Size() > 0 {
		x, _ := b.TakeOut()
		y, ok := c.TakeOut()
		require.True(t, ok)
		assert.Equal(t, x.key, y.key)
	}

	dup := []Slot[*item]{{Level: 1, Item: newItem("a", 0.1)}, {Level: 2, Item: newItem("a", 0.1)}}
	assert.Error(t, c.Restore(dup, Cursor{}))
}

// #endregion bag-tests
