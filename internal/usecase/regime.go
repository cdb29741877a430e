package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TradeDeck/internal/domain/models"
	drepo "TradeDeck/internal/domain/repository"
	"TradeDeck/internal/services/analytics"
	"TradeDeck/pkg/cache"
	"TradeDeck/pkg/logger"
)

// RegimeUseCase classifies the current market regime for a symbol from
// stored candle history.
type RegimeUseCase struct {
	store      drepo.HistoryStore
	classifier *analytics.RegimeClassifier
	cache      cache.Service
	ttl        time.Duration
	log        *logger.Logger
}

func NewRegimeUseCase(store drepo.HistoryStore, classifier *analytics.RegimeClassifier, c cache.Service, ttl time.Duration, log *logger.Logger) *RegimeUseCase {
	return &RegimeUseCase{store: store, classifier: classifier, cache: c, ttl: ttl, log: log}
}

type RegimeResult struct {
	Symbol string              `json:"symbol"`
	Bars   int                 `json:"bars"`
	Regime models.MarketRegime `json:"regime"`
}

// Detect loads up to bars of history and classifies it. A shallow or
// empty history still classifies, yielding the neutral regime.
func (uc *RegimeUseCase) Detect(ctx context.Context, symbol string, bars int) (*RegimeResult, error) {
	key := fmt.Sprintf("regime:%s:%d", symbol, bars)

	var cached RegimeResult
	if err := uc.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		uc.log.Warn("regime cache read failed", logger.String("symbol", symbol), logger.Error(err))
	}

	history, err := uc.store.LatestCandles(ctx, symbol, bars)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", symbol, err)
	}

	result := &RegimeResult{
		Symbol: symbol,
		Bars:   len(history),
		Regime: uc.classifier.Classify(history),
	}
	if err := uc.cache.Set(ctx, key, result, uc.ttl); err != nil {
		uc.log.Warn("regime cache write failed", logger.String("symbol", symbol), logger.Error(err))
	}
	return result, nil
}
