package models

import "time"

// SignalType is the raw model recommendation.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
	SignalHold SignalType = "HOLD"
)

// DriftRisk indicates whether the predictive model's recent accuracy
// may be degrading.
type DriftRisk string

const (
	DriftLow    DriftRisk = "LOW"
	DriftMedium DriftRisk = "MEDIUM"
	DriftHigh   DriftRisk = "HIGH"
)

// BeginnerAction is the gated recommendation surfaced to the dashboard.
type BeginnerAction string

const (
	ActionBuy  BeginnerAction = "BUY"
	ActionSell BeginnerAction = "SELL"
	ActionWait BeginnerAction = "WAIT"
)

// ConfidenceLevel is the discrete tier derived from a fused score.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

// Signal is a raw model signal. Produced upstream; read-only input here.
// Confidence may arrive as a fraction (0-1) or a percentage (0-100).
type Signal struct {
	Symbol             string     `json:"symbol"`
	Type               SignalType `json:"type"`
	Confidence         float64    `json:"confidence"`
	Accuracy           *float64   `json:"accuracy,omitempty"`
	ExpectedValue      *float64   `json:"expected_value,omitempty"`
	TargetPrice        float64    `json:"target_price"`
	StopLoss           float64    `json:"stop_loss"`
	Reason             string     `json:"reason"`
	PredictedChange    float64    `json:"predicted_change"`
	PredictionDate     time.Time  `json:"prediction_date"`
	DriftRisk          DriftRisk  `json:"drift_risk"`
	IndicatorCount     int        `json:"indicator_count,omitempty"`
	AgreeingIndicators int        `json:"agreeing_indicators,omitempty"`
}

// AutoRisk holds automatically derived stop/target levels and position
// sizing for a gated BUY/SELL recommendation.
type AutoRisk struct {
	StopLossPrice        float64 `json:"stop_loss_price"`
	TakeProfitPrice      float64 `json:"take_profit_price"`
	StopLossPercent      float64 `json:"stop_loss_percent"`
	TakeProfitPercent    float64 `json:"take_profit_percent"`
	RecommendedShares    int     `json:"recommended_shares"`
	ExpectedProfitAmount float64 `json:"expected_profit_amount"`
	ExpectedLossAmount   float64 `json:"expected_loss_amount"`
}

// BeginnerSignal is the risk-gated recommendation.
// AutoRisk is present exactly when Action is BUY or SELL.
type BeginnerSignal struct {
	Action            BeginnerAction `json:"action"`
	Confidence        float64        `json:"confidence"`
	Reason            string         `json:"reason"`
	RiskLevel         string         `json:"risk_level"`
	HistoricalWinRate float64        `json:"historical_win_rate"`
	ExpectedValue     float64        `json:"expected_value"`
	IndicatorCount    int            `json:"indicator_count"`
	AutoRisk          *AutoRisk      `json:"auto_risk,omitempty"`
	RawSignal         Signal         `json:"raw_signal"`
}

// BeginnerModeConfig controls the risk gate. Supplied by the caller,
// immutable per call; defaults are merged once at configuration load.
type BeginnerModeConfig struct {
	Enabled                  bool    `json:"enabled"`
	ConfidenceThreshold      float64 `json:"confidence_threshold"`
	AutoRiskEnabled          bool    `json:"auto_risk_enabled"`
	DefaultStopLossPercent   float64 `json:"default_stop_loss_percent"`
	DefaultTakeProfitPercent float64 `json:"default_take_profit_percent"`
	MinIndicatorAgreement    int     `json:"min_indicator_agreement"`
	MinExpectedValue         float64 `json:"min_expected_value"`
	Capital                  float64 `json:"capital"`
	RiskPerTradePercent      float64 `json:"risk_per_trade_percent"`
}
