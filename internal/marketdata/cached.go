package marketdata

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"position-sizer/internal/cache"
	"position-sizer/internal/models"
)

// CachedProvider memoises another provider's series per symbol and limit.
// Cached series are shared between callers and must not be modified.
type CachedProvider struct {
	next  Provider
	cache *cache.TTL[string, models.Series]
	log   zerolog.Logger
}

// NewCachedProvider wraps next with a cache of size entries living ttl each.
func NewCachedProvider(next Provider, size int, ttl time.Duration, log zerolog.Logger, opts ...cache.Option) *CachedProvider {
	return &CachedProvider{
		next:  next,
		cache: cache.New[string, models.Series](size, ttl, opts...),
		log:   log.With().Str("component", "candle_cache").Logger(),
	}
}

// Candles implements Provider.
func (p *CachedProvider) Candles(ctx context.Context, symbol string, limit int) (models.Series, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	key := NormalizeSymbol(symbol) + "|" + strconv.Itoa(limit)

	if series, ok := p.cache.Get(key); ok {
		p.log.Debug().Str("key", key).Msg("Cache hit")
		return series, nil
	}

	series, err := p.next.Candles(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, series)
	p.log.Debug().Str("key", key).Int("count", len(series)).Msg("Cache fill")
	return series, nil
}

// StartSweeper periodically drops expired entries until ctx is done.
func (p *CachedProvider) StartSweeper(ctx context.Context, every time.Duration) {
	p.cache.StartSweeper(ctx, every)
}

// Stats exposes the underlying cache counters.
func (p *CachedProvider) Stats() cache.Stats {
	return p.cache.Stats()
}
