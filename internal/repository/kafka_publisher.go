package repository

import (
	"context"

	"TradeDeck/internal/domain/models"
	drepo "TradeDeck/internal/domain/repository"
	pkgkafka "TradeDeck/pkg/kafka"
)

// KafkaPublisher implements SignalPublisher over a shared producer with
// one topic for gated recommendations and one for tick batches.
type KafkaPublisher struct {
	producer     *pkgkafka.Producer
	signalsTopic string
	ticksTopic   string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, signalsTopic, ticksTopic string) drepo.SignalPublisher {
	return &KafkaPublisher{producer: producer, signalsTopic: signalsTopic, ticksTopic: ticksTopic}
}

func (p *KafkaPublisher) PublishRecommendation(ctx context.Context, symbol string, sig *models.BeginnerSignal) error {
	return p.producer.Publish(ctx, p.signalsTopic, []byte(symbol), sig)
}

func (p *KafkaPublisher) PublishTicks(ctx context.Context, ticks []*models.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(ticks))
	for i, t := range ticks {
		msgs[i] = pkgkafka.Message{
			Key: []byte(t.Symbol),
			Value: map[string]interface{}{
				"symbol": t.Symbol,
				"t":      t.Timestamp,
				"c":      t.Price,
				"v":      t.Volume,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.ticksTopic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
