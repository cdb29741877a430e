package analytics

import (
	"math"

	"TradeDeck/internal/domain/models"
)

const (
	lookback       = 20
	trendThreshold = 0.05
	lowVolatility  = 0.15
	highVolatility = 0.30
	// tradingDays annualizes a daily return standard deviation.
	tradingDays = 252
)

// RegimeClassifier derives a market regime from an OHLCV history.
// Pure over its input; safe for unlimited concurrent use.
type RegimeClassifier struct{}

func NewRegimeClassifier() *RegimeClassifier { return &RegimeClassifier{} }

// Classify expects history ordered oldest to newest. Fewer than 20 bars
// yields the neutral regime rather than an error, so early callers get
// a usable placeholder while history accumulates.
func (c *RegimeClassifier) Classify(history []models.Candle) models.MarketRegime {
	if len(history) < lookback {
		return models.NeutralRegime()
	}

	window := history[len(history)-lookback:]
	closes := make([]float64, lookback)
	for i, b := range window {
		closes[i] = b.Close
	}

	trend, strength := classifyTrend(closes)
	return models.MarketRegime{
		Trend:         trend,
		Volatility:    classifyVolatility(closes),
		Confidence:    depthConfidence(len(history)),
		TrendStrength: strength,
	}
}

// classifyTrend needs dual confirmation: the window's total fractional
// change must clear the threshold and the short moving average must sit
// on the same side of the long one.
func classifyTrend(closes []float64) (models.Trend, float64) {
	sma5 := mean(closes[len(closes)-5:])
	sma20 := mean(closes)
	change := (closes[len(closes)-1] - closes[0]) / closes[0]
	strength := trendStrength(change)

	switch {
	case change > trendThreshold && sma5 > sma20:
		return models.TrendBull, strength
	case change < -trendThreshold && sma5 < sma20:
		return models.TrendBear, strength
	default:
		return models.TrendSideways, strength
	}
}

// trendStrength maps the fractional window change onto [0,100] so that
// a move at the 5% trend threshold scores 50.
func trendStrength(change float64) float64 {
	s := math.Abs(change) * 1000
	if s > 100 {
		return 100
	}
	return s
}

func classifyVolatility(closes []float64) models.VolatilityBand {
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) < 2 {
		return models.VolatilityNormal
	}

	m := mean(returns)
	var variance float64
	for _, r := range returns {
		d := r - m
		variance += d * d
	}
	variance /= float64(len(returns) - 1)
	annualized := math.Sqrt(variance) * math.Sqrt(tradingDays)

	switch {
	case annualized < lowVolatility:
		return models.VolatilityLow
	case annualized > highVolatility:
		return models.VolatilityHigh
	default:
		return models.VolatilityNormal
	}
}

// depthConfidence reflects statistical reliability of the estimate,
// independent of its value.
func depthConfidence(bars int) models.RegimeConfidence {
	switch {
	case bars < 20:
		return models.RegimeConfidenceInitial
	case bars < 50:
		return models.RegimeConfidenceLow
	case bars < 100:
		return models.RegimeConfidenceMedium
	default:
		return models.RegimeConfidenceHigh
	}
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
