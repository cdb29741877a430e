package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"TradeDeck/internal/domain/models"
)

func candles(closes ...float64) []models.Candle {
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{
			Symbol: "AAPL",
			Bucket: day.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return out
}

func flat(n int, price float64) []models.Candle {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return candles(closes...)
}

func TestClassifyShallowHistoryIsNeutral(t *testing.T) {
	c := NewRegimeClassifier()

	regime := c.Classify(flat(19, 100))
	assert.Equal(t, models.TrendSideways, regime.Trend)
	assert.Equal(t, models.VolatilityNormal, regime.Volatility)
	assert.Equal(t, models.RegimeConfidenceInitial, regime.Confidence)
	assert.Zero(t, regime.TrendStrength)

	// Depth is what matters, not the price pattern.
	steep := candles(10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120, 130, 140, 150, 160, 170, 180, 190)
	assert.Equal(t, models.NeutralRegime(), c.Classify(steep))
}

func TestClassifyBull(t *testing.T) {
	// Steady climb: +8% over the window with the short average above
	// the long one.
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.42
	}
	regime := NewRegimeClassifier().Classify(candles(closes...))

	assert.Equal(t, models.TrendBull, regime.Trend)
	assert.Equal(t, models.RegimeConfidenceLow, regime.Confidence)
	assert.Greater(t, regime.TrendStrength, 50.0)
}

func TestClassifyBear(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 - float64(i)*0.42
	}
	regime := NewRegimeClassifier().Classify(candles(closes...))
	assert.Equal(t, models.TrendBear, regime.Trend)
}

func TestClassifySidewaysWithoutDualConfirmation(t *testing.T) {
	// Total gain clears 5% but the last bars slump, pulling sma5 under
	// sma20, so the bull call lacks confirmation.
	closes := []float64{
		100, 104, 108, 112, 116, 120, 124, 128, 132, 136,
		140, 144, 148, 152, 156, 118, 116, 114, 112, 110,
	}
	regime := NewRegimeClassifier().Classify(candles(closes...))
	assert.Equal(t, models.TrendSideways, regime.Trend)
}

func TestClassifyVolatilityBands(t *testing.T) {
	c := NewRegimeClassifier()

	// A flat series has zero variance.
	assert.Equal(t, models.VolatilityLow, c.Classify(flat(20, 100)).Volatility)

	// Alternating ±5% daily swings annualize far above the high band.
	closes := make([]float64, 20)
	closes[0] = 100
	for i := 1; i < 20; i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] * 1.05
		} else {
			closes[i] = closes[i-1] * 0.95
		}
	}
	assert.Equal(t, models.VolatilityHigh, c.Classify(candles(closes...)).Volatility)
}

func TestConfidenceTracksDepth(t *testing.T) {
	c := NewRegimeClassifier()
	assert.Equal(t, models.RegimeConfidenceLow, c.Classify(flat(49, 100)).Confidence)
	assert.Equal(t, models.RegimeConfidenceMedium, c.Classify(flat(99, 100)).Confidence)
	assert.Equal(t, models.RegimeConfidenceHigh, c.Classify(flat(100, 100)).Confidence)
}

func TestTrendStrengthScale(t *testing.T) {
	assert.InDelta(t, 50.0, trendStrength(0.05), 1e-9)
	assert.InDelta(t, 100.0, trendStrength(0.2), 1e-9)
	assert.InDelta(t, 30.0, trendStrength(-0.03), 1e-9)
}
