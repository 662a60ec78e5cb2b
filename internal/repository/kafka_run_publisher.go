package repository

import (
	"context"
	"fmt"
	"time"

	"SignalDesk/internal/domain/models"
	pkgkafka "SignalDesk/pkg/kafka"
)

// BatchProducer is the subset of the Kafka producer the publisher needs.
type BatchProducer interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

type signalEvent struct {
	RunStartedAt time.Time           `json:"run_started_at"`
	Rank         int                 `json:"rank"`
	Signal       models.SignalResult `json:"signal"`
}

type predictionEvent struct {
	RunStartedAt time.Time               `json:"run_started_at"`
	Rank         int                     `json:"rank"`
	Prediction   models.PredictionResult `json:"prediction"`
}

// KafkaRunPublisher emits one message per signal and prediction keyed by
// ISIN, followed by the run summary, all on one topic.
type KafkaRunPublisher struct {
	producer BatchProducer
	topic    string
}

func NewKafkaRunPublisher(p BatchProducer, topic string) *KafkaRunPublisher {
	return &KafkaRunPublisher{producer: p, topic: topic}
}

func (p *KafkaRunPublisher) PublishRun(ctx context.Context, res *models.RunResult) error {
	started := res.Summary.StartedAt
	var msgs []pkgkafka.Message

	for _, c := range models.Categories {
		for i, s := range res.Signals[c] {
			msgs = append(msgs, pkgkafka.Message{
				Key:     []byte(s.Instrument.ISIN),
				Value:   signalEvent{RunStartedAt: started, Rank: i + 1, Signal: s},
				Headers: map[string]string{"kind": "signal", "category": string(c)},
			})
		}
	}
	for i, pr := range res.Predictions {
		msgs = append(msgs, pkgkafka.Message{
			Key:     []byte(pr.Instrument.ISIN),
			Value:   predictionEvent{RunStartedAt: started, Rank: i + 1, Prediction: pr},
			Headers: map[string]string{"kind": "prediction"},
		})
	}
	msgs = append(msgs, pkgkafka.Message{
		Key:     []byte("summary"),
		Value:   res.Summary,
		Headers: map[string]string{"kind": "summary"},
	})

	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return fmt.Errorf("publish run: %w", err)
	}
	return nil
}

func (p *KafkaRunPublisher) Close() error { return p.producer.Close() }
