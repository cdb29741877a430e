package usecase

import (
	"context"
	"fmt"
	"time"

	"TradeDeck/internal/domain/models"
	drepo "TradeDeck/internal/domain/repository"
	"TradeDeck/internal/services/analytics"
	"TradeDeck/pkg/logger"
)

// RecommendationUseCase runs the full gating pipeline: verified price,
// regime context, confidence fusion, then the beginner risk gate. The
// gated result is published for downstream consumers and returned.
type RecommendationUseCase struct {
	prices    *PriceUseCase
	regimes   *RegimeUseCase
	scorer    *analytics.ConfidenceScorer
	gate      *analytics.BeginnerGate
	publisher drepo.SignalPublisher
	cfg       models.BeginnerModeConfig
	bars      int
	metrics   drepo.Metrics
	log       *logger.Logger
}

func NewRecommendationUseCase(
	prices *PriceUseCase,
	regimes *RegimeUseCase,
	scorer *analytics.ConfidenceScorer,
	gate *analytics.BeginnerGate,
	publisher drepo.SignalPublisher,
	cfg models.BeginnerModeConfig,
	bars int,
	metrics drepo.Metrics,
	log *logger.Logger,
) *RecommendationUseCase {
	return &RecommendationUseCase{
		prices:    prices,
		regimes:   regimes,
		scorer:    scorer,
		gate:      gate,
		publisher: publisher,
		cfg:       cfg,
		bars:      bars,
		metrics:   metrics,
		log:       log,
	}
}

// ErrPriceUnavailable reports that no provider produced a usable
// sample, so there is nothing to gate against.
var ErrPriceUnavailable = fmt.Errorf("verified price unavailable")

type Recommendation struct {
	Symbol       string                 `json:"symbol"`
	CurrentPrice float64                `json:"current_price"`
	FusedScore   float64                `json:"fused_score"`
	Level        models.ConfidenceLevel `json:"level"`
	Regime       models.MarketRegime    `json:"regime"`
	Signal       *models.BeginnerSignal `json:"signal"`
	GeneratedAt  time.Time              `json:"generated_at"`
}

// Recommend gates sig for beginner consumption. When beginner mode is
// disabled the raw signal passes through ungated.
func (uc *RecommendationUseCase) Recommend(ctx context.Context, sig *models.Signal) (*Recommendation, error) {
	start := time.Now()

	price, ok, err := uc.prices.VerifiedPrice(ctx, sig.Symbol)
	if err != nil {
		return nil, fmt.Errorf("verified price %s: %w", sig.Symbol, err)
	}
	if !ok {
		return nil, ErrPriceUnavailable
	}

	regime, err := uc.regimes.Detect(ctx, sig.Symbol, uc.bars)
	if err != nil {
		return nil, fmt.Errorf("regime %s: %w", sig.Symbol, err)
	}

	score := uc.scorer.Score(sig, regime.Regime)

	var gated *models.BeginnerSignal
	if uc.cfg.Enabled {
		// The gate compares the fused score, not the raw confidence.
		fused := *sig
		fused.Confidence = score
		gated = uc.gate.Filter(&fused, price.Price, uc.cfg)
		gated.RawSignal = *sig
	} else {
		gated = passthrough(sig, score)
	}

	uc.metrics.RecordRecommendation(string(gated.Action))
	uc.metrics.RecordLatency("recommendation", time.Since(start).Seconds())

	if err := uc.publisher.PublishRecommendation(ctx, sig.Symbol, gated); err != nil {
		uc.log.Warn("publish recommendation failed",
			logger.String("symbol", sig.Symbol), logger.Error(err))
	}

	return &Recommendation{
		Symbol:       sig.Symbol,
		CurrentPrice: price.Price,
		FusedScore:   score,
		Level:        uc.scorer.Level(score),
		Regime:       regime.Regime,
		Signal:       gated,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

func passthrough(sig *models.Signal, score float64) *models.BeginnerSignal {
	out := &models.BeginnerSignal{
		Action:         models.ActionWait,
		Confidence:     score,
		Reason:         sig.Reason,
		RiskLevel:      string(sig.DriftRisk),
		IndicatorCount: sig.IndicatorCount,
		RawSignal:      *sig,
	}
	switch sig.Type {
	case models.SignalBuy:
		out.Action = models.ActionBuy
	case models.SignalSell:
		out.Action = models.ActionSell
	}
	if sig.Accuracy != nil {
		out.HistoricalWinRate = *sig.Accuracy
	}
	if sig.ExpectedValue != nil {
		out.ExpectedValue = *sig.ExpectedValue
	}
	return out
}
