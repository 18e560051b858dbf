package adapter

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_GetSet(t *testing.T) {
	cache := NewCache[string]()

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	cache.Set("k", "v")
	v, ok := cache.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_GetOrCreate(t *testing.T) {
	cache := NewCache[int]()

	var creates int
	create := func() (int, error) {
		creates++
		return 42, nil
	}

	v, err := cache.GetOrCreate("k", create)
	assert.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = cache.GetOrCreate("k", create)
	assert.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, creates)
}

func TestCache_GetOrCreate_Error(t *testing.T) {
	cache := NewCache[int]()

	_, err := cache.GetOrCreate("k", func() (int, error) {
		return 0, fmt.Errorf("unavailable")
	})

	assert.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := NewCache[int]()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = cache.GetOrCreate("shared", func() (int, error) { return i, nil })
		}(i)
	}
	wg.Wait()

	_, ok := cache.Get("shared")
	assert.True(t, ok)
	assert.Equal(t, 1, cache.Len())
}
