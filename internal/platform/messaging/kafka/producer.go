// Package kafka publishes lifecycle events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/Apurer/supplychain-tracker/internal/shared/events"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Producer writes raw messages.
type Producer struct {
	w      messageWriter
	closer func() error
}

func NewProducer(brokers []string) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Producer{w: w, closer: w.Close}
}

func newProducerWithWriter(w messageWriter) *Producer {
	return &Producer{w: w}
}

// Publish writes one message; messages with the same key land on the same partition.
func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte, headers ...kafka.Header) error {
	if err := p.w.WriteMessages(ctx, kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Headers: headers,
	}); err != nil {
		return errors.Wrap(err, "kafka publish")
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}

// Envelope is the JSON document written for every domain event.
type Envelope struct {
	Name       string          `json:"name"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// EventPublisher adapts Producer to events.Publisher on a single topic.
type EventPublisher struct {
	producer *Producer
	topic    string
}

// NewEventPublisher publishes to topic through producer.
func NewEventPublisher(producer *Producer, topic string) *EventPublisher {
	return &EventPublisher{producer: producer, topic: topic}
}

// Publish encodes event in an Envelope keyed by the aggregate id.
func (p *EventPublisher) Publish(ctx context.Context, key string, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrapf(err, "encode %s", event.EventName())
	}
	value, err := json.Marshal(Envelope{
		Name:       event.EventName(),
		Key:        key,
		OccurredAt: event.OccurredAt(),
		Payload:    payload,
	})
	if err != nil {
		return errors.Wrap(err, "encode envelope")
	}
	return p.producer.Publish(ctx, p.topic, []byte(key), value, kafka.Header{Key: "event-name", Value: []byte(event.EventName())})
}

var _ events.Publisher = (*EventPublisher)(nil)
