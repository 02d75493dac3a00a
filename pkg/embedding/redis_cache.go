package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedProvider wraps a Provider with a shared Redis cache keyed by
// (model, text hash). Embedding is deterministic per model, so cached
// vectors never go stale; the TTL only bounds memory.
type CachedProvider struct {
	inner Provider
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedProvider(inner Provider, rdb *redis.Client, ttl time.Duration) Provider {
	if rdb == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedProvider{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
	}
}

func (p *CachedProvider) ModelId() string {
	return p.inner.ModelId()
}

func (p *CachedProvider) Embed(ctx context.Context, text string) (*Result, error) {
	key := p.cacheKey(text)

	if cached, err := p.rdb.Get(ctx, key).Bytes(); err == nil {
		var result Result
		if err := json.Unmarshal(cached, &result); err == nil && len(result.Vector) > 0 {
			return &result, nil
		}
	}

	result, err := p.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		// Cache write failures are ignored: the embedding is already in hand.
		p.rdb.Set(ctx, key, data, p.ttl)
	}
	return result, nil
}

func (p *CachedProvider) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embed:%s:%x", p.inner.ModelId(), sum[:16])
}
