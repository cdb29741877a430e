package analytics

import (
	"TradeDeck/internal/domain/models"
)

const (
	accuracyBaseline = 50
	accuracyWeight   = 0.2
	strongTrendFloor = 50
	strongTrendBonus = 5
)

// ConfidenceScorer fuses raw model confidence with historical accuracy
// and regime strength into one score on [0,100].
type ConfidenceScorer struct{}

func NewConfidenceScorer() *ConfidenceScorer { return &ConfidenceScorer{} }

// Score tolerates both confidence conventions from upstream producers:
// values at or below 1 are fractions and scale by 100, larger values
// pass through. Out-of-range results clamp instead of erroring.
func (s *ConfidenceScorer) Score(sig *models.Signal, regime models.MarketRegime) float64 {
	score := sig.Confidence
	if score <= 1 {
		score *= 100
	}

	if sig.Accuracy != nil && *sig.Accuracy > accuracyBaseline {
		score += (*sig.Accuracy - accuracyBaseline) * accuracyWeight
	}
	if regime.TrendStrength > strongTrendFloor {
		score += strongTrendBonus
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Level buckets a fused score into a discrete confidence level.
func (s *ConfidenceScorer) Level(score float64) models.ConfidenceLevel {
	switch {
	case score > 70:
		return models.ConfidenceHigh
	case score > 50:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
