package kafka

import (
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
)

func TestNewOrderEvent(t *testing.T) {
	event := NewOrderEvent(EventTypeOrderPlaced, "order-1", "user-1", "pending", 2550)

	if event.EventType != EventTypeOrderPlaced {
		t.Fatalf("unexpected event type: %s", event.EventType)
	}
	if event.AmountMinor != 2550 {
		t.Fatalf("unexpected amount: %d", event.AmountMinor)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("timestamp must be set")
	}
}

func TestParseOrderEvent(t *testing.T) {
	original := NewOrderEvent(EventTypeOrderPlaced, "order-1", "user-1", "pending", 2550)
	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	parsed, err := ParseOrderEvent(&sarama.ConsumerMessage{Value: raw})
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if parsed.OrderID != "order-1" || parsed.UserID != "user-1" {
		t.Fatalf("unexpected event: %+v", parsed)
	}
}

func TestParseOrderEvent_Garbage(t *testing.T) {
	_, err := ParseOrderEvent(&sarama.ConsumerMessage{Value: []byte("not-json")})
	if err == nil {
		t.Fatal("expected error for garbage payload")
	}
}
