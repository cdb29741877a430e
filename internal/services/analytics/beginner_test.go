package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeDeck/internal/domain/models"
)

func gateConfig() models.BeginnerModeConfig {
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

func TestGateHoldBecomesWait(t *testing.T) {
	out := NewBeginnerGate().Filter(&models.Signal{Type: models.SignalHold, Confidence: 95}, 1000, gateConfig())
	assert.Equal(t, models.ActionWait, out.Action)
	assert.Nil(t, out.AutoRisk)
}

func TestGateLowConfidence(t *testing.T) {
	out := NewBeginnerGate().Filter(&models.Signal{Type: models.SignalBuy, Confidence: 60}, 1000, gateConfig())
	assert.Equal(t, models.ActionWait, out.Action)
	assert.Contains(t, out.Reason, "low confidence")
	assert.Nil(t, out.AutoRisk)
}

func TestGateHighDriftRisk(t *testing.T) {
	sig := &models.Signal{Type: models.SignalBuy, Confidence: 90, DriftRisk: models.DriftHigh}
	out := NewBeginnerGate().Filter(sig, 1000, gateConfig())
	assert.Equal(t, models.ActionWait, out.Action)
	assert.Contains(t, out.Reason, "drift")
}

func TestGateLowExpectedValue(t *testing.T) {
	sig := &models.Signal{Type: models.SignalBuy, Confidence: 90, ExpectedValue: fp(0.2)}
	out := NewBeginnerGate().Filter(sig, 1000, gateConfig())
	assert.Equal(t, models.ActionWait, out.Action)
	assert.Contains(t, out.Reason, "expected value")
}

func TestGateAcceptableExpectedValuePasses(t *testing.T) {
	sig := &models.Signal{Type: models.SignalBuy, Confidence: 90, ExpectedValue: fp(1.0)}
	out := NewBeginnerGate().Filter(sig, 1000, gateConfig())
	assert.Equal(t, models.ActionBuy, out.Action)
}

func TestGateDerivesDefaultRiskLevels(t *testing.T) {
	// target == stop == current price marks them as placeholders, so
	// the configured 2%/4% defaults apply.
	sig := &models.Signal{
		Type:        models.SignalBuy,
		Confidence:  85,
		TargetPrice: 1000,
		StopLoss:    1000,
	}
	out := NewBeginnerGate().Filter(sig, 1000, gateConfig())

	require.Equal(t, models.ActionBuy, out.Action)
	require.NotNil(t, out.AutoRisk)
	assert.InDelta(t, 980.0, out.AutoRisk.StopLossPrice, 1e-9)
	assert.InDelta(t, 1040.0, out.AutoRisk.TakeProfitPrice, 1e-9)
	assert.InDelta(t, 2.0, out.AutoRisk.StopLossPercent, 1e-9)
	assert.InDelta(t, 4.0, out.AutoRisk.TakeProfitPercent, 1e-9)

	// 1% of 10k capital risked over a $20 stop distance buys 5 shares.
	assert.Equal(t, 5, out.AutoRisk.RecommendedShares)
	assert.InDelta(t, 200.0, out.AutoRisk.ExpectedProfitAmount, 1e-9)
	assert.InDelta(t, 100.0, out.AutoRisk.ExpectedLossAmount, 1e-9)
}

func TestGateUsesExplicitRiskLevels(t *testing.T) {
	sig := &models.Signal{
		Type:        models.SignalBuy,
		Confidence:  85,
		TargetPrice: 1100,
		StopLoss:    900,
	}
	out := NewBeginnerGate().Filter(sig, 1000, gateConfig())

	require.NotNil(t, out.AutoRisk)
	assert.Equal(t, 900.0, out.AutoRisk.StopLossPrice)
	assert.Equal(t, 1100.0, out.AutoRisk.TakeProfitPrice)
	assert.InDelta(t, 10.0, out.AutoRisk.StopLossPercent, 1e-9)
	assert.InDelta(t, 10.0, out.AutoRisk.TakeProfitPercent, 1e-9)
}

func TestGateSellFlipsDefaultLevels(t *testing.T) {
	sig := &models.Signal{Type: models.SignalSell, Confidence: 85}
	out := NewBeginnerGate().Filter(sig, 1000, gateConfig())

	require.Equal(t, models.ActionSell, out.Action)
	require.NotNil(t, out.AutoRisk)
	assert.InDelta(t, 1020.0, out.AutoRisk.StopLossPrice, 1e-9)
	assert.InDelta(t, 960.0, out.AutoRisk.TakeProfitPrice, 1e-9)
}

func TestGateRetainsRawSignal(t *testing.T) {
	sig := &models.Signal{Type: models.SignalBuy, Confidence: 0.9, Reason: "momentum breakout", Accuracy: fp(62)}
	out := NewBeginnerGate().Filter(sig, 500, gateConfig())

	assert.Equal(t, *sig, out.RawSignal)
	assert.InDelta(t, 90.0, out.Confidence, 1e-9)
	assert.Equal(t, 62.0, out.HistoricalWinRate)
	assert.Equal(t, "momentum breakout", out.Reason)
}

func TestGateWithoutAutoRisk(t *testing.T) {
	cfg := gateConfig()
	cfg.AutoRiskEnabled = false
	out := NewBeginnerGate().Filter(&models.Signal{Type: models.SignalBuy, Confidence: 90}, 1000, cfg)
	assert.Equal(t, models.ActionBuy, out.Action)
	assert.Nil(t, out.AutoRisk)
}
