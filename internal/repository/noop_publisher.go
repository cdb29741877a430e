package repository

import (
	"context"

	"TradeDeck/internal/domain/models"
	drepo "TradeDeck/internal/domain/repository"
)

// NoopPublisher satisfies SignalPublisher when Kafka is disabled.
type NoopPublisher struct{}

func NewNoopPublisher() drepo.SignalPublisher { return NoopPublisher{} }

func (NoopPublisher) PublishRecommendation(context.Context, string, *models.BeginnerSignal) error {
	return nil
}

func (NoopPublisher) PublishTicks(context.Context, []*models.Tick) error { return nil }

func (NoopPublisher) Close() error { return nil }
