package providers

import (
	"context"
	"fmt"

	"TradeDeck/internal/domain/models"
	"TradeDeck/internal/domain/repository"
	"TradeDeck/internal/service/ratelimit"
)

// Limited decorates a DataProvider with the shared upstream quota: each
// fetch consumes one admission slot before any network call happens, so
// a fan-out across providers can never overshoot the vendor budget.
type Limited struct {
	inner   repository.DataProvider
	limiter *ratelimit.UpstreamLimiter
}

func WithQuota(inner repository.DataProvider, limiter *ratelimit.UpstreamLimiter) *Limited {
	return &Limited{inner: inner, limiter: limiter}
}

func (l *Limited) Name() string { return l.inner.Name() }

func (l *Limited) FetchQuote(ctx context.Context, symbol string) (*models.Candle, error) {
	if err := l.limiter.Acquire(); err != nil {
		return nil, fmt.Errorf("%s admission: %w", l.inner.Name(), err)
	}
	return l.inner.FetchQuote(ctx, symbol)
}
