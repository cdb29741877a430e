package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	drepo "TradeDeck/internal/domain/repository"
	"TradeDeck/internal/service/quorum"
	"TradeDeck/pkg/cache"
	"TradeDeck/pkg/logger"
)

// PriceUseCase serves verified prices, caching quorum results so a
// burst of dashboard requests does not burn the upstream quota.
type PriceUseCase struct {
	resolver *quorum.Resolver
	cache    cache.Service
	ttl      time.Duration
	metrics  drepo.Metrics
	log      *logger.Logger
}

func NewPriceUseCase(resolver *quorum.Resolver, c cache.Service, ttl time.Duration, metrics drepo.Metrics, log *logger.Logger) *PriceUseCase {
	return &PriceUseCase{resolver: resolver, cache: c, ttl: ttl, metrics: metrics, log: log}
}

type VerifiedPrice struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	AsOf   time.Time `json:"as_of"`
	Cached bool      `json:"cached"`
}

// VerifiedPrice resolves the quorum price for symbol. ok is false when
// no provider produced a usable sample; callers must branch on it
// rather than treat it as failure.
func (uc *PriceUseCase) VerifiedPrice(ctx context.Context, symbol string) (*VerifiedPrice, bool, error) {
	key := "price:" + symbol

	var cached VerifiedPrice
	if err := uc.cache.Get(ctx, key, &cached); err == nil {
		cached.Cached = true
		return &cached, true, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		uc.log.Warn("price cache read failed", logger.String("symbol", symbol), logger.Error(err))
	}

	start := time.Now()
	price, ok := uc.resolver.Resolve(ctx, symbol)
	uc.metrics.RecordLatency("verified_price", time.Since(start).Seconds())
	if !ok {
		return nil, false, nil
	}

	vp := &VerifiedPrice{Symbol: symbol, Price: price, AsOf: time.Now().UTC()}
	if err := uc.cache.Set(ctx, key, vp, uc.ttl); err != nil {
		uc.log.Warn("price cache write failed", logger.String("symbol", symbol), logger.Error(err))
	}
	return vp, true, nil
}

// Invalidate drops the cached price for symbol.
func (uc *PriceUseCase) Invalidate(ctx context.Context, symbol string) error {
	if err := uc.cache.Delete(ctx, "price:"+symbol); err != nil {
		return fmt.Errorf("invalidate %s: %w", symbol, err)
	}
	return nil
}
