package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
	"github.com/cloud-wave-best-zizon/order-service/internal/service"
)

const publishTimeout = 10 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer publishes order and stock events to one topic. Messages are
// keyed by order or product id and carry an event_type header.
type KafkaProducer struct {
	writer messageWriter
	logger *zap.Logger
	now    func() time.Time
}

var _ service.EventPublisher = (*KafkaProducer)(nil)

func NewKafkaProducer(brokers []string, topic string, logger *zap.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newKafkaProducer(writer, logger)
}

func newKafkaProducer(w messageWriter, logger *zap.Logger) *KafkaProducer {
	return &KafkaProducer{writer: w, logger: logger, now: time.Now}
}

func (p *KafkaProducer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	event := NewOrderCreatedEvent(order, p.now().UTC())
	return p.publish(ctx, TypeOrderCreated, event.OrderID, event.EventID, event)
}

func (p *KafkaProducer) PublishOrderCancelled(ctx context.Context, order *domain.Order) error {
	event := NewOrderCancelledEvent(order, p.now().UTC())
	return p.publish(ctx, TypeOrderCancelled, event.OrderID, event.EventID, event)
}

func (p *KafkaProducer) PublishStockLow(ctx context.Context, alert service.StockAlert) error {
	event := NewStockLowEvent(alert, p.now().UTC())
	return p.publish(ctx, TypeStockLow, event.ProductID, event.EventID, event)
}

func (p *KafkaProducer) publish(ctx context.Context, eventType, key, eventID string, event any) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.String("event_type", eventType), zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: eventBytes,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "event_id", Value: []byte(eventID)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message",
			zap.String("event_type", eventType),
			zap.String("event_id", eventID),
			zap.Error(err))
		return err
	}

	p.logger.Info("Event published successfully",
		zap.String("event_type", eventType),
		zap.String("event_id", eventID),
		zap.String("key", key))

	return nil
}

func (p *KafkaProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
