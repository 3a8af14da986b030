package app

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

func TestOrderEventAuditHandler(t *testing.T) {
	handler := orderEventAuditHandler(log.WithField("test", "audit"))
	ctx := context.Background()

	t.Run("valid envelope", func(t *testing.T) {
		msg := &sarama.ConsumerMessage{
			Key:   []byte("order-1"),
			Value: []byte(`{"id":"msg-1","aggregate_type":"order","aggregate_id":"order-1","event_type":"order.placed","payload":{"amount_minor":2550}}`),
		}
		if err := handler(ctx, msg); err != nil {
			t.Fatalf("expected envelope to be accepted: %v", err)
		}
	})

	t.Run("malformed json fails for retry", func(t *testing.T) {
		msg := &sarama.ConsumerMessage{Value: []byte("not-json")}
		if err := handler(ctx, msg); err == nil {
			t.Fatal("expected error for malformed message")
		}
	})

	t.Run("missing event type fails for retry", func(t *testing.T) {
		msg := &sarama.ConsumerMessage{Value: []byte(`{"aggregate_id":"order-1"}`)}
		if err := handler(ctx, msg); err == nil {
			t.Fatal("expected error for envelope without event_type")
		}
	})
}

func TestInitOrderEventsConsumer(t *testing.T) {
	logger := log.WithField("test", "consumer-init")

	consumer, err := initOrderEventsConsumer("", nil, logger)
	if err != nil || consumer != nil {
		t.Fatalf("empty brokers must disable the consumer, got %v %v", consumer, err)
	}

	if _, err := initOrderEventsConsumer("invalid-broker:9092", nil, logger); err == nil {
		t.Fatal("expected error for unreachable broker")
	}
}
