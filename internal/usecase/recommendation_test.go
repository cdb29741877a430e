package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeDeck/internal/domain/models"
	"TradeDeck/internal/domain/repository"
	"TradeDeck/internal/service/quorum"
	"TradeDeck/internal/services/analytics"
	"TradeDeck/pkg/cache"
	"TradeDeck/pkg/logger"
)

type fixedProvider struct {
	name  string
	price float64
	fail  bool
}

func (p fixedProvider) Name() string { return p.name }

func (p fixedProvider) FetchQuote(_ context.Context, symbol string) (*models.Candle, error) {
	if p.fail {
		return nil, context.DeadlineExceeded
	}
	return &models.Candle{Symbol: symbol, Close: p.price}, nil
}

type stubHistory struct {
	candles []models.Candle
}

func (s *stubHistory) StoreCandles(_ context.Context, candles []models.Candle) error {
	s.candles = append(s.candles, candles...)
	return nil
}

func (s *stubHistory) LatestCandles(_ context.Context, _ string, n int) ([]models.Candle, error) {
	if len(s.candles) > n {
		return s.candles[len(s.candles)-n:], nil
	}
	return s.candles, nil
}

func (s *stubHistory) Health(context.Context) error { return nil }
func (s *stubHistory) Close() error                 { return nil }

type capturePublisher struct {
	published []*models.BeginnerSignal
}

func (p *capturePublisher) PublishRecommendation(_ context.Context, _ string, sig *models.BeginnerSignal) error {
	p.published = append(p.published, sig)
	return nil
}

func (p *capturePublisher) PublishTicks(context.Context, []*models.Tick) error { return nil }
func (p *capturePublisher) Close() error                                       { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordVerifiedPrice(string, float64) {}
func (nopMetrics) RecordProviderError(string)          {}
func (nopMetrics) RecordQuorumSamples(string, int)     {}
func (nopMetrics) RecordQuotaRemaining(string, int)    {}
func (nopMetrics) RecordLimiterRejection(string)       {}
func (nopMetrics) RecordLimiterEviction(int)           {}
func (nopMetrics) RecordLimiterTracked(int)            {}
func (nopMetrics) RecordRecommendation(string)         {}
func (nopMetrics) RecordLatency(string, float64)       {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json"})
	require.NoError(t, err)
	return l
}

func bullHistory(n int) []models.Candle {
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	price := 100.0
	for i := range out {
		out[i] = models.Candle{Bucket: day.AddDate(0, 0, i), Symbol: "AAPL", Close: price}
		price *= 1.005
	}
	return out
}

func newPipeline(t *testing.T, providers []repository.DataProvider, history []models.Candle, cfg models.BeginnerModeConfig) (*RecommendationUseCase, *capturePublisher) {
	t.Helper()
	log := testLogger(t)
	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })

	prices := NewPriceUseCase(quorum.NewResolver(providers, nopMetrics{}, log), mem, time.Minute, nopMetrics{}, log)
	regimes := NewRegimeUseCase(&stubHistory{candles: history}, analytics.NewRegimeClassifier(), mem, time.Minute, log)
	pub := &capturePublisher{}
	uc := NewRecommendationUseCase(prices, regimes, analytics.NewConfidenceScorer(), analytics.NewBeginnerGate(), pub, cfg, 120, nopMetrics{}, log)
	return uc, pub
}

func beginnerConfig() models.BeginnerModeConfig {
	return models.BeginnerModeConfig{
		Enabled:                  true,
		ConfidenceThreshold:      80,
		AutoRiskEnabled:          true,
		DefaultStopLossPercent:   2,
		DefaultTakeProfitPercent: 4,
		MinExpectedValue:         0.5,
		Capital:                  10000,
		RiskPerTradePercent:      1,
	}
}

func TestRecommendGatesAndPublishes(t *testing.T) {
	providers := []repository.DataProvider{
		fixedProvider{name: "a", price: 1000},
		fixedProvider{name: "b", price: 1002},
	}
	uc, pub := newPipeline(t, providers, bullHistory(120), beginnerConfig())

	acc := 90.0
	rec, err := uc.Recommend(context.Background(), &models.Signal{
		Symbol:     "AAPL",
		Type:       models.SignalBuy,
		Confidence: 0.9,
		Accuracy:   &acc,
		Reason:     "momentum breakout",
	})
	require.NoError(t, err)

	assert.InDelta(t, 1001.0, rec.CurrentPrice, 1e-9)
	assert.Equal(t, models.ActionBuy, rec.Signal.Action)
	require.NotNil(t, rec.Signal.AutoRisk)
	assert.Equal(t, models.ConfidenceHigh, rec.Level)
	require.Len(t, pub.published, 1)
	assert.Equal(t, rec.Signal, pub.published[0])
}

func TestRecommendLowConfidenceWaits(t *testing.T) {
	providers := []repository.DataProvider{fixedProvider{name: "a", price: 500}}
	uc, _ := newPipeline(t, providers, nil, beginnerConfig())

	rec, err := uc.Recommend(context.Background(), &models.Signal{
		Symbol:     "AAPL",
		Type:       models.SignalBuy,
		Confidence: 0.6,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActionWait, rec.Signal.Action)
	assert.Nil(t, rec.Signal.AutoRisk)
	assert.Contains(t, rec.Signal.Reason, "low confidence")
}

func TestRecommendUnavailablePrice(t *testing.T) {
	providers := []repository.DataProvider{fixedProvider{name: "a", fail: true}}
	uc, pub := newPipeline(t, providers, nil, beginnerConfig())

	_, err := uc.Recommend(context.Background(), &models.Signal{Symbol: "AAPL", Type: models.SignalBuy, Confidence: 0.9})
	assert.ErrorIs(t, err, ErrPriceUnavailable)
	assert.Empty(t, pub.published)
}

func TestRecommendRetainsRawSignal(t *testing.T) {
	providers := []repository.DataProvider{fixedProvider{name: "a", price: 1000}}
	uc, _ := newPipeline(t, providers, nil, beginnerConfig())

	sig := &models.Signal{Symbol: "AAPL", Type: models.SignalBuy, Confidence: 0.95}
	rec, err := uc.Recommend(context.Background(), sig)
	require.NoError(t, err)

	// The gate saw the fused score, but the audit copy keeps the
	// original confidence.
	assert.Equal(t, 0.95, rec.Signal.RawSignal.Confidence)
}

func TestRecommendDisabledPassthrough(t *testing.T) {
	cfg := beginnerConfig()
	cfg.Enabled = false
	providers := []repository.DataProvider{fixedProvider{name: "a", price: 1000}}
	uc, _ := newPipeline(t, providers, nil, cfg)

	rec, err := uc.Recommend(context.Background(), &models.Signal{Symbol: "AAPL", Type: models.SignalSell, Confidence: 0.2})
	require.NoError(t, err)
	assert.Equal(t, models.ActionSell, rec.Signal.Action)
	assert.Nil(t, rec.Signal.AutoRisk)
}
