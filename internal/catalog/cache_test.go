package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/domain"
)

// fakeInner counts hits against the backing store; only the methods the
// cache layer forwards are implemented.
type fakeInner struct {
	Gateway

	mu      sync.Mutex
	finds   int
	product *domain.Product
	decErr  error
}

func (f *fakeInner) FindProduct(context.Context, string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	if f.product == nil {
		return nil, ErrProductNotFound
	}
	p := *f.product
	return &p, nil
}

func (f *fakeInner) DecrementStock(context.Context, string, int) error {
	return f.decErr
}

func (f *fakeInner) UpdateProduct(context.Context, string, ProductUpdate) error {
	return nil
}

func (f *fakeInner) DeleteProduct(context.Context, string) error {
	return nil
}

func (f *fakeInner) findCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finds
}

func setupCache(t *testing.T, inner *fakeInner) (*CachedGateway, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCachedGateway(inner, client, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func product(id string) *domain.Product {
	return &domain.Product{
		ID:       id,
		Name:     "Aspirin",
		Category: "analgesic",
		Price:    4.5,
		Stock:    20,
	}
}

func TestFindProduct_CacheHitSkipsStore(t *testing.T) {
	id := "65a000000000000000000001"
	inner := &fakeInner{product: product(id)}
	cache, mr := setupCache(t, inner)

	data, _ := json.Marshal(inner.product)
	require.NoError(t, mr.Set(cacheKey(id), string(data)))

	p, err := cache.FindProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", p.Name)
	assert.Zero(t, inner.findCount())
}

func TestFindProduct_MissFallsThroughAndPopulates(t *testing.T) {
	id := "65a000000000000000000001"
	inner := &fakeInner{product: product(id)}
	cache, mr := setupCache(t, inner)

	p, err := cache.FindProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 20, p.Stock)
	assert.Equal(t, 1, inner.findCount())

	// The write-back is asynchronous.
	assert.Eventually(t, func() bool {
		return mr.Exists(cacheKey(id))
	}, time.Second, 10*time.Millisecond)
}

func TestFindProduct_RedisDownDegradesToStore(t *testing.T) {
	id := "65a000000000000000000001"
	inner := &fakeInner{product: product(id)}
	cache, mr := setupCache(t, inner)
	mr.Close()

	p, err := cache.FindProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", p.Name)
	assert.Equal(t, 1, inner.findCount())
}

func TestFindProduct_NotFoundPropagates(t *testing.T) {
	cache, _ := setupCache(t, &fakeInner{})

	_, err := cache.FindProduct(context.Background(), "65a000000000000000000009")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDecrementStock_InvalidatesCachedProduct(t *testing.T) {
	id := "65a000000000000000000001"
	inner := &fakeInner{product: product(id)}
	cache, mr := setupCache(t, inner)

	data, _ := json.Marshal(inner.product)
	require.NoError(t, mr.Set(cacheKey(id), string(data)))

	require.NoError(t, cache.DecrementStock(context.Background(), id, 3))
	assert.False(t, mr.Exists(cacheKey(id)))
}

func TestUpdateAndDeleteProduct_Invalidate(t *testing.T) {
	id := "65a000000000000000000001"
	inner := &fakeInner{product: product(id)}
	cache, mr := setupCache(t, inner)

	data, _ := json.Marshal(inner.product)
	require.NoError(t, mr.Set(cacheKey(id), string(data)))

	price := 9.0
	require.NoError(t, cache.UpdateProduct(context.Background(), id, ProductUpdate{Price: &price}))
	assert.False(t, mr.Exists(cacheKey(id)))

	require.NoError(t, mr.Set(cacheKey(id), string(data)))
	require.NoError(t, cache.DeleteProduct(context.Background(), id))
	assert.False(t, mr.Exists(cacheKey(id)))
}

func TestDecrementStock_InsufficientStillInvalidates(t *testing.T) {
	id := "65a000000000000000000001"
	inner := &fakeInner{product: product(id), decErr: ErrInsufficientStock}
	cache, mr := setupCache(t, inner)

	data, _ := json.Marshal(inner.product)
	require.NoError(t, mr.Set(cacheKey(id), string(data)))

	err := cache.DecrementStock(context.Background(), id, 50)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.False(t, mr.Exists(cacheKey(id)))
}
