package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type product struct {
	SKU   string `json:"sku"`
	Stock int    `json:"stock"`
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "product:1", product{SKU: "BRK-01", Stock: 4}, time.Minute))

	var got product
	found, err := c.Get(ctx, "product:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "BRK-01", got.SKU)

	require.NoError(t, c.Delete(ctx, "product:1"))
	found, err = c.Get(ctx, "product:1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_ExpiryAndSweep(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var v int
	found, _ := c.Get(ctx, "k", &v)
	assert.False(t, found)
	assert.Equal(t, 1, c.Len())

	c.sweep(time.Now())
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_DeletePrefix(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "products:p1:list:1", 1, time.Minute)
	_ = c.Set(ctx, "products:p1:list:2", 2, time.Minute)
	_ = c.Set(ctx, "products:p2:list:1", 3, time.Minute)

	require.NoError(t, c.DeletePrefix(ctx, "products:p1:"))
	assert.Equal(t, 1, c.Len())
}

func TestLoader_CacheAside(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close()
	loader := NewLoader(c, time.Minute, zap.NewNop())
	ctx := context.Background()

	var calls int32
	load := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return product{SKU: "OIL-5W30", Stock: 12}, nil
	}

	var first product
	hit, err := loader.Load(ctx, "product:oil", &first, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 12, first.Stock)

	var second product
	hit, err = loader.Load(ctx, "product:oil", &second, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	loader.Invalidate(ctx, []string{"product:oil"})
	hit, err = loader.Load(ctx, "product:oil", &second, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestLoader_SharesConcurrentMisses(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close()
	loader := NewLoader(c, time.Minute, nil)

	var calls int32
	release := make(chan struct{})
	load := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return product{SKU: "FLT-1"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var p product
			_, err := loader.Load(context.Background(), "hot", &p, load)
			assert.NoError(t, err)
			assert.Equal(t, "FLT-1", p.SKU)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestLoader_LoadErrorIsNotCached(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close()
	loader := NewLoader(c, time.Minute, nil)

	boom := errors.New("db down")
	var p product
	_, err := loader.Load(context.Background(), "k", &p, func(ctx context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}
