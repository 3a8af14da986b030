package main

import (
	"encoding/json"
	"testing"
)

func TestParseBrokers(t *testing.T) {
	brokers := parseBrokers(" broker-1:9092, ,broker-2:9092 ")
	if len(brokers) != 2 {
		t.Fatalf("unexpected brokers count: got=%d want=2", len(brokers))
	}
	if brokers[0] != "broker-1:9092" || brokers[1] != "broker-2:9092" {
		t.Fatalf("unexpected brokers: %+v", brokers)
	}

	if got := parseBrokers("  "); len(got) != 0 {
		t.Fatalf("expected no brokers for blank input, got %+v", got)
	}
}

func TestDecodeDLQMessage_ConsumerRecord(t *testing.T) {
	raw, err := json.Marshal(map[string]any{
		"original_topic": "shop.order.events",
		"original_key":   "order-1",
		"original_value": `{"id":"evt-1"}`,
		"error_message":  "handler failed",
	})
	if err != nil {
		t.Fatalf("marshal record failed: %v", err)
	}

	got, ok, err := decodeDLQMessage(raw, "fallback-topic")
	if err != nil {
		t.Fatalf("decodeDLQMessage failed: %v", err)
	}
	if !ok {
		t.Fatal("expected replay candidate")
	}
	if got.topic != "shop.order.events" {
		t.Fatalf("unexpected topic: %s", got.topic)
	}
	if got.key != "order-1" {
		t.Fatalf("unexpected key: %s", got.key)
	}
	if string(got.value) != `{"id":"evt-1"}` {
		t.Fatalf("unexpected replay value: %s", string(got.value))
	}
}

func TestDecodeDLQMessage_ConsumerRecordWithoutTopic(t *testing.T) {
	raw, err := json.Marshal(map[string]any{
		"original_key":   "order-2",
		"original_value": `{"id":"evt-2"}`,
	})
	if err != nil {
		t.Fatalf("marshal record failed: %v", err)
	}

	got, ok, err := decodeDLQMessage(raw, "shop.order.events")
	if err != nil || !ok {
		t.Fatalf("expected candidate, got ok=%v err=%v", ok, err)
	}
	if got.topic != "shop.order.events" {
		t.Fatalf("expected fallback topic, got %s", got.topic)
	}
}

func TestDecodeDLQMessage_OutboxEnvelope(t *testing.T) {
	raw, err := json.Marshal(map[string]any{
		"id":             "outbox-1",
		"aggregate_type": "order",
		"aggregate_id":   "order-1",
		"event_type":     "order.placed",
		"payload": map[string]any{
			"outbox_id":      "outbox-1",
			"aggregate_type": "order",
			"aggregate_id":   "order-1",
			"event_type":     "order.placed",
			"payload": map[string]any{
				"order_id": "order-1",
				"status":   "pending",
			},
			"publish_error": "kafka timeout",
		},
	})
	if err != nil {
		t.Fatalf("marshal envelope failed: %v", err)
	}

	got, ok, err := decodeDLQMessage(raw, "shop.order.events")
	if err != nil {
		t.Fatalf("decodeDLQMessage failed: %v", err)
	}
	if !ok {
		t.Fatal("expected replay candidate")
	}
	if got.topic != "shop.order.events" {
		t.Fatalf("unexpected topic: %s", got.topic)
	}
	if got.key != "order-1" {
		t.Fatalf("unexpected key: %s", got.key)
	}

	var replayed publishEnvelope
	if err := json.Unmarshal(got.value, &replayed); err != nil {
		t.Fatalf("replay value must be a valid envelope: %v", err)
	}
	if replayed.EventType != "order.placed" {
		t.Fatalf("unexpected event type: %s", replayed.EventType)
	}
	if len(replayed.Payload) == 0 {
		t.Fatal("replay envelope must carry the original payload")
	}
}

func TestDecodeDLQMessage_OutboxEnvelopeWithoutPayload(t *testing.T) {
	raw, err := json.Marshal(map[string]any{
		"id":             "outbox-2",
		"aggregate_type": "order",
		"aggregate_id":   "order-2",
		"event_type":     "order.placed",
		"payload": map[string]any{
			"outbox_id": "outbox-2",
		},
	})
	if err != nil {
		t.Fatalf("marshal envelope failed: %v", err)
	}

	_, ok, err := decodeDLQMessage(raw, "shop.order.events")
	if ok {
		t.Fatal("expected no candidate for record without original payload")
	}
	if err == nil {
		t.Fatal("expected error for record without original payload")
	}
}

func TestDecodeDLQMessage_NonJSON(t *testing.T) {
	_, ok, err := decodeDLQMessage([]byte("not json at all"), "shop.order.events")
	if ok || err != nil {
		t.Fatalf("expected silent skip, got ok=%v err=%v", ok, err)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "  ", "value", "other"); got != "value" {
		t.Fatalf("unexpected result: %s", got)
	}
	if got := firstNonEmpty("", "  "); got != "" {
		t.Fatalf("expected empty result, got %s", got)
	}
}
