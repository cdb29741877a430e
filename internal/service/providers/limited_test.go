package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeDeck/internal/domain/models"
	"TradeDeck/internal/service/ratelimit"
)

type countingProvider struct {
	calls int
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) FetchQuote(_ context.Context, symbol string) (*models.Candle, error) {
	p.calls++
	return &models.Candle{Symbol: symbol, Close: 100}, nil
}

type stubClock struct{ now time.Time }

func (c *stubClock) Now() time.Time { return c.now }

func TestLimitedStopsAtQuota(t *testing.T) {
	inner := &countingProvider{}
	limiter := ratelimit.NewUpstreamLimiter(2, 25, &stubClock{now: time.Now()}, nil)
	p := WithQuota(inner, limiter)

	_, err := p.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	_, err = p.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	_, err = p.FetchQuote(context.Background(), "AAPL")
	require.Error(t, err)

	var le *ratelimit.LimitError
	assert.True(t, errors.As(err, &le))
	assert.Equal(t, ratelimit.WindowMinute, le.Window)

	// The vendor is never hit once admission fails.
	assert.Equal(t, 2, inner.calls)
}
