package repository

import (
	"context"
	"time"

	"TradeDeck/internal/domain/models"
)

// DataProvider fetches a current quote for one symbol from one vendor.
// A provider failure is isolated; the quorum resolver records it as an
// absent sample rather than failing the aggregate.
type DataProvider interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (*models.Candle, error)
}

// MarketStream is a realtime tick feed.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// HistoryStore provides access to OHLCV price history.
type HistoryStore interface {
	StoreCandles(ctx context.Context, candles []models.Candle) error
	LatestCandles(ctx context.Context, symbol string, n int) ([]models.Candle, error)
	Health(ctx context.Context) error
	Close() error
}

// SignalPublisher publishes gated recommendations and tick batches for
// downstream dashboard consumers.
type SignalPublisher interface {
	PublishRecommendation(ctx context.Context, symbol string, sig *models.BeginnerSignal) error
	PublishTicks(ctx context.Context, ticks []*models.Tick) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordVerifiedPrice(symbol string, price float64)
	RecordProviderError(provider string)
	RecordQuorumSamples(symbol string, n int)
	RecordQuotaRemaining(window string, remaining int)
	RecordLimiterRejection(scope string)
	RecordLimiterEviction(n int)
	RecordLimiterTracked(n int)
	RecordRecommendation(action string)
	RecordLatency(op string, seconds float64)
}

// Clock abstracts time for components with window arithmetic so tests
// can drive simulated time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
