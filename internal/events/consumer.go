package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
)

// StatusUpdater applies a lifecycle transition. *service.OrderService
// satisfies it.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, scope domain.StoreScope, orderID string, next domain.OrderStatus, reason string) (*domain.Order, error)
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer applies order status updates published by the delivery
// integration. Offsets are committed manually once a message is handled.
type KafkaConsumer struct {
	reader  messageReader
	orders  StatusUpdater
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	retries int
}

func NewKafkaConsumer(brokers []string, groupID, topic string, orders StatusUpdater, logger *zap.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		StartOffset:    kafka.FirstOffset,
		SessionTimeout: 6 * time.Second,
	})
	return newKafkaConsumer(reader, orders, logger)
}

func newKafkaConsumer(r messageReader, orders StatusUpdater, logger *zap.Logger) *KafkaConsumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &KafkaConsumer{
		reader:  r,
		orders:  orders,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		retries: 3,
	}
}

func (kc *KafkaConsumer) Start() {
	kc.started = true
	kc.logger.Info("Kafka consumer started")
	go kc.consume()
}

func (kc *KafkaConsumer) consume() {
	defer close(kc.done)
	defer kc.reader.Close()

	for {
		msg, err := kc.reader.FetchMessage(kc.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				kc.logger.Info("Kafka consumer stopped")
				return
			}
			kc.logger.Error("Error reading message", zap.Error(err))
			continue
		}

		if err := kc.handleWithRetry(msg); err != nil {
			// 재시도 후에도 실패하면 건너뛰고 커밋한다
			kc.logger.Error("Dropping message after retries",
				zap.Error(err),
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset))
		}

		// 메시지 처리 후 커밋
		if err := kc.reader.CommitMessages(kc.ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
			kc.logger.Error("Error committing message", zap.Error(err))
		}
	}
}

func (kc *KafkaConsumer) handleWithRetry(msg kafka.Message) error {
	var err error
	for attempt := 1; attempt <= kc.retries; attempt++ {
		err = kc.processMessage(kc.ctx, msg)
		if err == nil || !retryable(err) || attempt == kc.retries {
			return err
		}
		kc.logger.Warn("Retrying message",
			zap.Int("attempt", attempt),
			zap.Int64("offset", msg.Offset),
			zap.Error(err))
		select {
		case <-kc.ctx.Done():
			return kc.ctx.Err()
		case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
		}
	}
	return err
}

// retryable reports whether the failure may pass on a later attempt.
// Business rejections never do.
func retryable(err error) bool {
	switch apperr.KindOf(err) {
	case apperr.KindPersistence, apperr.KindConflict:
		return true
	}
	return false
}

func (kc *KafkaConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	kc.logger.Info("Processing message",
		zap.String("topic", msg.Topic),
		zap.String("key", string(msg.Key)),
		zap.Int64("offset", msg.Offset))

	var event OrderStatusEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return kc.handleStatusEvent(ctx, event)
}

func (kc *KafkaConsumer) handleStatusEvent(ctx context.Context, event OrderStatusEvent) error {
	scope, err := domain.NewStoreScope(event.StoreID)
	if err != nil {
		return apperr.Validation("status event %s has no store", event.EventID)
	}

	order, err := kc.orders.UpdateStatus(ctx, scope, event.OrderID, domain.OrderStatus(event.Status), event.Reason)
	if err != nil {
		kc.logger.Warn("Status update rejected",
			zap.String("event_id", event.EventID),
			zap.String("store_id", event.StoreID),
			zap.String("order_id", event.OrderID),
			zap.String("status", event.Status),
			zap.Error(err))
		return err
	}

	kc.logger.Info("Order status applied",
		zap.String("event_id", event.EventID),
		zap.String("store_id", scope.StoreID),
		zap.String("order_id", order.OrderID),
		zap.String("status", string(order.Status)))
	return nil
}

// Stop cancels the fetch loop and waits for the reader to close.
func (kc *KafkaConsumer) Stop() {
	kc.logger.Info("Stopping Kafka consumer")
	kc.cancel()
	if kc.started {
		<-kc.done
	}
}
