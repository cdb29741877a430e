package models

import "time"

// Requests for the dashboard API endpoints. Defined in domain for
// consistency and reuse.

type PriceRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type RegimeRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Bars   int    `query:"bars" json:"bars" default:"120" validate:"gte=1,lte=5000"`
}

type RecommendationRequest struct {
	Signal struct {
		Symbol             string    `json:"symbol" validate:"required"`
		Type               string    `json:"type" validate:"required,oneof=BUY SELL HOLD"`
		Confidence         float64   `json:"confidence" validate:"gte=0,lte=100"`
		Accuracy           *float64  `json:"accuracy,omitempty"`
		ExpectedValue      *float64  `json:"expected_value,omitempty"`
		TargetPrice        float64   `json:"target_price"`
		StopLoss           float64   `json:"stop_loss"`
		Reason             string    `json:"reason"`
		PredictedChange    float64   `json:"predicted_change"`
		PredictionDate     time.Time `json:"prediction_date"`
		DriftRisk          string    `json:"drift_risk" default:"LOW" validate:"oneof=LOW MEDIUM HIGH"`
		IndicatorCount     int       `json:"indicator_count"`
		AgreeingIndicators int       `json:"agreeing_indicators"`
	} `json:"signal"`
}

// ToSignal converts the request payload into the domain signal.
func (r *RecommendationRequest) ToSignal() Signal {
	s := r.Signal
	return Signal{
		Symbol:             s.Symbol,
		Type:               SignalType(s.Type),
		Confidence:         s.Confidence,
		Accuracy:           s.Accuracy,
		ExpectedValue:      s.ExpectedValue,
		TargetPrice:        s.TargetPrice,
		StopLoss:           s.StopLoss,
		Reason:             s.Reason,
		PredictedChange:    s.PredictedChange,
		PredictionDate:     s.PredictionDate,
		DriftRisk:          DriftRisk(s.DriftRisk),
		IndicatorCount:     s.IndicatorCount,
		AgreeingIndicators: s.AgreeingIndicators,
	}
}
