package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type lookupResult struct {
	Value string
	Error string
}

func TestGetOrLoad_CachesValue(t *testing.T) {
	c := New[lookupResult](time.Hour, 0)

	var calls int
	load := func() (lookupResult, bool) {
		calls++
		return lookupResult{Value: "v"}, true
	}

	first, stored := c.GetOrLoad("k", load)
	assert.True(t, stored)
	assert.Equal(t, "v", first.Value)
	second, _ := c.GetOrLoad("k", load)
	assert.Equal(t, "v", second.Value)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())
}

func TestGetOrLoad_CachesErrorResult(t *testing.T) {
	c := New[lookupResult](time.Hour, 0)

	var calls int
	load := func() (lookupResult, bool) {
		calls++
		return lookupResult{Error: "HTTP error: timeout"}, true
	}

	first, _ := c.GetOrLoad("k", load)
	second, _ := c.GetOrLoad("k", func() (lookupResult, bool) { return lookupResult{Value: "fresh"}, true })

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second, "cached error is returned as-is")
	assert.Equal(t, "HTTP error: timeout", second.Error)
}

func TestGetOrLoad_NotStored(t *testing.T) {
	c := New[lookupResult](time.Hour, 0)

	first, stored := c.GetOrLoad("k", func() (lookupResult, bool) {
		return lookupResult{Error: "context canceled"}, false
	})
	assert.False(t, stored)
	assert.Equal(t, "context canceled", first.Error)
	assert.Equal(t, 0, c.Len())

	second, stored := c.GetOrLoad("k", func() (lookupResult, bool) {
		return lookupResult{Value: "v"}, true
	})
	assert.True(t, stored)
	assert.Equal(t, "v", second.Value)
}

func TestGetOrLoad_Expiry(t *testing.T) {
	c := New[int](20*time.Millisecond, 0)

	n := 0
	load := func() (int, bool) { n++; return n, true }

	v, _ := c.GetOrLoad("k", load)
	assert.Equal(t, 1, v)
	time.Sleep(40 * time.Millisecond)
	v, _ = c.GetOrLoad("k", load)
	assert.Equal(t, 2, v, "expired entry is reloaded")
}

func TestGetOrLoad_DistinctKeys(t *testing.T) {
	c := New[string](time.Hour, 0)

	c.GetOrLoad("a", func() (string, bool) { return "a", true })
	c.GetOrLoad("b", func() (string, bool) { return "b", true })
	assert.Equal(t, 2, c.Len())

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestGetOrLoad_ConcurrentMissesShareLoad(t *testing.T) {
	c := New[int](time.Hour, 0)

	var calls atomic.Int32
	release := make(chan struct{})
	load := func() (int, bool) {
		calls.Add(1)
		<-release
		return 42, true
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.GetOrLoad("k", load)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}

func TestFlush(t *testing.T) {
	c := New[int](time.Hour, 0)
	c.GetOrLoad("k", func() (int, bool) { return 1, true })
	c.Flush()
	assert.Equal(t, 0, c.Len())
}
