package analytics

import (
	"math"

	"TradeDeck/internal/domain/models"
)

// BeginnerGate filters raw model signals down to recommendations safe
// to surface in beginner mode. The gates evaluate in order; the first
// match decides and short-circuits the rest. Pure and deterministic,
// never mutates its inputs.
type BeginnerGate struct{}

func NewBeginnerGate() *BeginnerGate { return &BeginnerGate{} }

// Filter gates sig against cfg at the given current price.
func (g *BeginnerGate) Filter(sig *models.Signal, currentPrice float64, cfg models.BeginnerModeConfig) *models.BeginnerSignal {
	out := &models.BeginnerSignal{
		Action:         models.ActionWait,
		Confidence:     normalizeConfidence(sig.Confidence),
		RiskLevel:      string(sig.DriftRisk),
		IndicatorCount: sig.IndicatorCount,
		RawSignal:      *sig,
	}
	if sig.Accuracy != nil {
		out.HistoricalWinRate = *sig.Accuracy
	}
	if sig.ExpectedValue != nil {
		out.ExpectedValue = *sig.ExpectedValue
	}

	switch {
	case sig.Type == models.SignalHold:
		out.Reason = "model recommends holding"
	case out.Confidence < cfg.ConfidenceThreshold:
		out.Reason = "low confidence, waiting for a clearer setup"
	case sig.DriftRisk == models.DriftHigh:
		out.Reason = "prediction drift detected, model reliability degraded"
	case sig.ExpectedValue != nil && *sig.ExpectedValue < cfg.MinExpectedValue:
		out.Reason = "low expected value, unfavorable risk/reward"
	default:
		out.Action = models.BeginnerAction(sig.Type)
		out.Reason = sig.Reason
		if cfg.AutoRiskEnabled {
			out.AutoRisk = computeAutoRisk(sig, currentPrice, cfg)
		}
	}
	return out
}

// computeAutoRisk prefers the signal's absolute stop/target prices.
// A missing price or one equal to the current price is a placeholder,
// in which case the configured default percentages apply, flipped for
// short positions.
func computeAutoRisk(sig *models.Signal, price float64, cfg models.BeginnerModeConfig) *models.AutoRisk {
	short := sig.Type == models.SignalSell

	stop := sig.StopLoss
	if stop <= 0 || stop == price {
		if short {
			stop = price * (1 + cfg.DefaultStopLossPercent/100)
		} else {
			stop = price * (1 - cfg.DefaultStopLossPercent/100)
		}
	}
	target := sig.TargetPrice
	if target <= 0 || target == price {
		if short {
			target = price * (1 - cfg.DefaultTakeProfitPercent/100)
		} else {
			target = price * (1 + cfg.DefaultTakeProfitPercent/100)
		}
	}

	stopDistance := math.Abs(price - stop)
	targetDistance := math.Abs(target - price)

	shares := 0
	if stopDistance > 0 && cfg.Capital > 0 {
		riskBudget := cfg.Capital * cfg.RiskPerTradePercent / 100
		shares = int(math.Floor(riskBudget / stopDistance))
	}

	return &models.AutoRisk{
		StopLossPrice:        stop,
		TakeProfitPrice:      target,
		StopLossPercent:      stopDistance / price * 100,
		TakeProfitPercent:    targetDistance / price * 100,
		RecommendedShares:    shares,
		ExpectedProfitAmount: float64(shares) * targetDistance,
		ExpectedLossAmount:   float64(shares) * stopDistance,
	}
}

func normalizeConfidence(c float64) float64 {
	if c <= 1 {
		return c * 100
	}
	return c
}
