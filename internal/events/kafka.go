package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Noor-Islam16/Coupon-Backend/internal/config"
)

// Envelope is the JSON value of every published message.
type Envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Writer is the part of kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes domain events to one topic. A nil publisher, or one
// without a writer, skips silently.
type KafkaPublisher struct {
	writer Writer
	log    *zap.SugaredLogger
}

// NewKafkaPublisher returns nil when no broker is configured.
func NewKafkaPublisher(cfg config.KafkaConfig, log *zap.SugaredLogger) *KafkaPublisher {
	if cfg.Broker == "" {
		return nil
	}
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(cfg.Broker),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}, log)
}

func NewPublisherWithWriter(w Writer, log *zap.SugaredLogger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	if p == nil || p.writer == nil {
		return nil
	}

	value, err := json.Marshal(Envelope{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
		},
	})
	if err != nil {
		return err
	}
	p.log.Debugw("event published", "type", eventType, "key", key)
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
