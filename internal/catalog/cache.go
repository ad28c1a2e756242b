package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/domain"
)

var errCacheMiss = errors.New("cache miss")

// CachedGateway layers a Redis read-through cache over single-product
// lookups. The cache is strictly best-effort: a Redis failure (or an open
// circuit breaker) degrades to the underlying gateway, never to the
// caller. Stock-mutating operations invalidate the cached product so
// add-to-cart always sees a reasonably fresh stock figure.
type CachedGateway struct {
	Gateway

	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	sfg     singleflight.Group
	baseTTL time.Duration
	log     *slog.Logger
}

func NewCachedGateway(inner Gateway, client *redis.Client, log *slog.Logger) *CachedGateway {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "product-cache",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &CachedGateway{
		Gateway: inner,
		client:  client,
		breaker: breaker,
		baseTTL: 15 * time.Minute,
		log:     log,
	}
}

func (c *CachedGateway) FindProduct(ctx context.Context, id string) (*domain.Product, error) {
	if p, err := c.cacheGet(ctx, id); err == nil {
		return p, nil
	} else if !errors.Is(err, errCacheMiss) {
		c.log.Warn("product cache get failed", "product_id", id, "error", err)
	}

	// Singleflight collapses concurrent misses for the same product.
	v, err, _ := c.sfg.Do(id, func() (interface{}, error) {
		p, err := c.Gateway.FindProduct(ctx, id)
		if err != nil {
			return nil, err
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := c.cacheSet(setCtx, p); err != nil {
				c.log.Warn("product cache set failed", "product_id", id, "error", err)
			}
		}()

		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

func (c *CachedGateway) DecrementStock(ctx context.Context, id string, qty int) error {
	err := c.Gateway.DecrementStock(ctx, id, qty)
	if err == nil || errors.Is(err, ErrInsufficientStock) {
		// An unmatched conditional update still proves the cached stock
		// figure is stale.
		c.invalidate(id)
	}
	return err
}

func (c *CachedGateway) UpdateProduct(ctx context.Context, id string, u ProductUpdate) error {
	err := c.Gateway.UpdateProduct(ctx, id, u)
	if err == nil {
		c.invalidate(id)
	}
	return err
}

func (c *CachedGateway) DeleteProduct(ctx context.Context, id string) error {
	err := c.Gateway.DeleteProduct(ctx, id)
	if err == nil {
		c.invalidate(id)
	}
	return err
}

func (c *CachedGateway) InsertProduct(ctx context.Context, p *domain.Product) (string, error) {
	id, err := c.Gateway.InsertProduct(ctx, p)
	if err == nil {
		c.invalidate(id)
	}
	return id, err
}

func (c *CachedGateway) cacheGet(ctx context.Context, id string) (*domain.Product, error) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		b, err := c.client.Get(ctx, cacheKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil // a miss must not trip the breaker
		}
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	if data == nil {
		return nil, errCacheMiss
	}

	var p domain.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product failed: %w", err)
	}
	return &p, nil
}

func (c *CachedGateway) cacheSet(ctx context.Context, p *domain.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	_, err = c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, cacheKey(p.ID), data, c.baseTTL+jitter).Err()
	})
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *CachedGateway) invalidate(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Del(ctx, cacheKey(id)).Err()
	})
	if err != nil {
		c.log.Warn("product cache invalidate failed", "product_id", id, "error", err)
	}
}

func cacheKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}
