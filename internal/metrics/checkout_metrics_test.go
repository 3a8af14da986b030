package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCheckoutMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newCheckoutMetricsWithRegisterer(registry)

	m.RecordOrderPlaced()
	m.RecordOrderPlaced()
	m.RecordCartConflict()
	m.RecordEmptyCartDenied()
	m.RecordCheckoutFailed("conflict")
	m.RecordOutboxEvent()

	if got := testutil.ToFloat64(m.ordersPlaced); got != 2 {
		t.Fatalf("expected 2 orders placed, got %v", got)
	}
	if got := testutil.ToFloat64(m.cartConflicts); got != 1 {
		t.Fatalf("expected 1 cart conflict, got %v", got)
	}
	if got := testutil.ToFloat64(m.checkoutFailed.WithLabelValues("conflict")); got != 1 {
		t.Fatalf("expected 1 failed checkout, got %v", got)
	}
}

func TestCheckoutMetrics_ActiveGauge(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newCheckoutMetricsWithRegisterer(registry)

	m.CheckoutStarted()
	m.CheckoutStarted()
	m.CheckoutFinished()

	if got := testutil.ToFloat64(m.activeCheckouts); got != 1 {
		t.Fatalf("expected 1 active checkout, got %v", got)
	}
}

// Повторная регистрация на том же registry должна вернуть существующие коллекторы.
func TestCheckoutMetrics_DoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := newCheckoutMetricsWithRegisterer(registry)
	second := newCheckoutMetricsWithRegisterer(registry)

	first.RecordOrderPlaced()
	second.RecordOrderPlaced()

	if got := testutil.ToFloat64(first.ordersPlaced); got != 2 {
		t.Fatalf("expected shared counter value 2, got %v", got)
	}

	m := newCheckoutMetricsWithRegisterer(registry)
	m.RecordCheckoutDuration(50 * time.Millisecond)
}
