package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	c := New[string, int](4)
	c.Set("a", 1)
	c.Set("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestSetUpdatesExisting(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("a", 10)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, c.Len())
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](3)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// a is the oldest; inserting a fourth key evicts it
	c.Set("d", 4)

	_, ok := c.Get("a")
	assert.False(t, ok)
	for _, k := range []string{"b", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, "expected %s to survive", k)
	}
}

func TestGetCountsAsUse(t *testing.T) {
	c := New[string, int](3)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// touch a so that b becomes the eviction candidate
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("d", 4)

	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestDeleteIdempotent(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Delete("a")
	c.Delete("a")
	c.Delete("never-existed")

	assert.Equal(t, 0, c.Len())
}

func TestAll(t *testing.T) {
	c := New[string, int](8)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Delete("b")

	all := c.All()
	assert.Equal(t, map[string]int{"a": 1, "c": 3}, all)
}

func TestOnEvictFiresForCapacityEvictionOnly(t *testing.T) {
	var evicted []string
	c := New(2, OnEvict(func(k string, v int) {
		evicted = append(evicted, k)
	}))
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	require.Empty(t, evicted, "explicit delete must not fire the hook")

	c.Set("c", 3)
	c.Set("d", 4)
	assert.Equal(t, []string{"b"}, evicted)
}

func TestNonPositiveCapacityFallsBack(t *testing.T) {
	c := New[string, int](0)
	assert.Equal(t, DefaultCapacity, c.Capacity())
}

func TestUpdateAbsentKey(t *testing.T) {
	c := New[string, int](4)
	called := false
	ok := c.Update("missing", func(v int) int {
		called = true
		return v + 1
	})
	assert.False(t, ok)
	assert.False(t, called)
}

func TestUpdateConcurrentAppendsAllLand(t *testing.T) {
	c := New[string, []int](4)
	c.Set("a", nil)

	const perWriter = 500
	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				c.Update("a", func(v []int) []int { return append(v, i) })
			}
		}()
	}
	wg.Wait()

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Len(t, v, 2*perWriter)
}

func TestUpsertInsertsThenMerges(t *testing.T) {
	c := New[string, int](4)
	c.Upsert("a", func(v int, ok bool) int {
		require.False(t, ok)
		return 1
	})
	c.Upsert("a", func(v int, ok bool) int {
		require.True(t, ok)
		return v + 10
	})

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 11, v)
}

func TestUpsertEvictsAtCapacity(t *testing.T) {
	var evicted []string
	c := New(2, OnEvict(func(k string, v int) {
		evicted = append(evicted, k)
	}))
	c.Set("a", 1)
	c.Set("b", 2)
	c.Upsert("c", func(v int, ok bool) int { return 3 })

	assert.Equal(t, []string{"a"}, evicted)
	_, ok := c.Get("a")
	assert.False(t, ok)
}
