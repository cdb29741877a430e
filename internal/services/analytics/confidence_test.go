package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"TradeDeck/internal/domain/models"
)

func fp(v float64) *float64 { return &v }

func TestScoreFusesAllComponents(t *testing.T) {
	s := NewConfidenceScorer()

	// 0.8 normalizes to 80; accuracy 90 adds 8; strength 60 adds 5.
	score := s.Score(
		&models.Signal{Confidence: 0.8, Accuracy: fp(90)},
		models.MarketRegime{TrendStrength: 60},
	)
	assert.InDelta(t, 93.0, score, 1e-9)
	assert.Equal(t, models.ConfidenceHigh, s.Level(score))
}

func TestScorePercentageConventionPassesThrough(t *testing.T) {
	s := NewConfidenceScorer()
	score := s.Score(&models.Signal{Confidence: 65}, models.MarketRegime{})
	assert.InDelta(t, 65.0, score, 1e-9)
}

func TestScoreIgnoresWeakComponents(t *testing.T) {
	s := NewConfidenceScorer()

	// Accuracy at or below the 50 baseline contributes nothing, and a
	// trend strength of exactly 50 misses the bonus.
	score := s.Score(
		&models.Signal{Confidence: 0.6, Accuracy: fp(45)},
		models.MarketRegime{TrendStrength: 50},
	)
	assert.InDelta(t, 60.0, score, 1e-9)
}

func TestScoreClamps(t *testing.T) {
	s := NewConfidenceScorer()

	high := s.Score(
		&models.Signal{Confidence: 99, Accuracy: fp(100)},
		models.MarketRegime{TrendStrength: 80},
	)
	assert.Equal(t, 100.0, high)

	low := s.Score(&models.Signal{Confidence: -3}, models.MarketRegime{})
	assert.Equal(t, 0.0, low)
}

func TestLevelBuckets(t *testing.T) {
	s := NewConfidenceScorer()
	assert.Equal(t, models.ConfidenceHigh, s.Level(70.1))
	assert.Equal(t, models.ConfidenceMedium, s.Level(70))
	assert.Equal(t, models.ConfidenceMedium, s.Level(50.1))
	assert.Equal(t, models.ConfidenceLow, s.Level(50))
	assert.Equal(t, models.ConfidenceLow, s.Level(0))
}
