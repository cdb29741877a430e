package models

// Trend classifies price direction over the lookback window.
type Trend string

const (
	TrendBull     Trend = "BULL"
	TrendBear     Trend = "BEAR"
	TrendSideways Trend = "SIDEWAYS"
)

// VolatilityBand classifies annualized volatility.
type VolatilityBand string

const (
	VolatilityLow    VolatilityBand = "LOW"
	VolatilityNormal VolatilityBand = "NORMAL"
	VolatilityHigh   VolatilityBand = "HIGH"
)

// RegimeConfidence reflects the statistical reliability of a regime
// estimate, a function of sample depth only.
type RegimeConfidence string

const (
	RegimeConfidenceHigh    RegimeConfidence = "HIGH"
	RegimeConfidenceMedium  RegimeConfidence = "MEDIUM"
	RegimeConfidenceLow     RegimeConfidence = "LOW"
	RegimeConfidenceInitial RegimeConfidence = "INITIAL"
)

// MarketRegime is the classified market condition over a lookback window.
// Derived on demand, never mutated.
type MarketRegime struct {
	Trend         Trend            `json:"trend"`
	Volatility    VolatilityBand   `json:"volatility"`
	Confidence    RegimeConfidence `json:"confidence"`
	TrendStrength float64          `json:"trend_strength"` // 0-100
}

// NeutralRegime is the graceful floor returned when the history is too
// shallow to classify.
func NeutralRegime() MarketRegime {
	return MarketRegime{
		Trend:      TrendSideways,
		Volatility: VolatilityNormal,
		Confidence: RegimeConfidenceInitial,
	}
}
