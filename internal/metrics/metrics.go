package metrics

import (
	"context"
	"sync"

	"github.com/prohmpiriya/event-marketplace/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	TicketsPurchased   *telemetry.Counter
	PurchaseRejections *telemetry.Counter
	TicketsCancelled   *telemetry.Counter
	TicketsUsed        *telemetry.Counter
	EventTransitions   *telemetry.Counter
	OutboxPublished    *telemetry.Counter
	OutboxFailed       *telemetry.Counter

	PurchaseDuration *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init registers the instruments on the global meter provider. Recording
// before Init is a no-op.
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	counters := []struct {
		target **telemetry.Counter
		opts   telemetry.MetricOpts
	}{
		{&TicketsPurchased, telemetry.MetricOpts{Name: "tickets_purchased_total", Description: "Tickets issued", Unit: "1"}},
		{&PurchaseRejections, telemetry.MetricOpts{Name: "purchase_rejections_total", Description: "Purchases rejected by reason", Unit: "1"}},
		{&TicketsCancelled, telemetry.MetricOpts{Name: "tickets_cancelled_total", Description: "Tickets cancelled", Unit: "1"}},
		{&TicketsUsed, telemetry.MetricOpts{Name: "tickets_used_total", Description: "Tickets admitted at the gate", Unit: "1"}},
		{&EventTransitions, telemetry.MetricOpts{Name: "event_transitions_total", Description: "Event lifecycle transitions by target status", Unit: "1"}},
		{&OutboxPublished, telemetry.MetricOpts{Name: "outbox_published_total", Description: "Outbox messages delivered to Kafka", Unit: "1"}},
		{&OutboxFailed, telemetry.MetricOpts{Name: "outbox_failed_total", Description: "Outbox delivery failures", Unit: "1"}},
	}
	for _, c := range counters {
		counter, err := telemetry.NewCounter(c.opts)
		if err != nil {
			return err
		}
		*c.target = counter
	}

	var err error
	PurchaseDuration, err = telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "purchase_duration_ms",
		Description: "Time spent in the purchase transaction",
		Unit:        "ms",
	})
	return err
}

// RecordPurchase records issued tickets and how long the purchase took
func RecordPurchase(ctx context.Context, eventID string, quantity int, durationMs float64) {
	TicketsPurchased.Add(ctx, int64(quantity), attribute.String("event_id", eventID))
	PurchaseDuration.Record(ctx, durationMs, attribute.String("outcome", "success"))
}

// RecordPurchaseRejection records a refused purchase
func RecordPurchaseRejection(ctx context.Context, reason string, durationMs float64) {
	PurchaseRejections.Inc(ctx, attribute.String("reason", reason))
	PurchaseDuration.Record(ctx, durationMs, attribute.String("outcome", "rejected"))
}

func RecordTicketCancelled(ctx context.Context, eventID string) {
	TicketsCancelled.Inc(ctx, attribute.String("event_id", eventID))
}

func RecordTicketUsed(ctx context.Context, eventID string) {
	TicketsUsed.Inc(ctx, attribute.String("event_id", eventID))
}

// RecordEventTransition records an event entering status to
func RecordEventTransition(ctx context.Context, to string) {
	EventTransitions.Inc(ctx, attribute.String("to", to))
}

func RecordOutboxPublished(ctx context.Context, topic string) {
	OutboxPublished.Inc(ctx, attribute.String("topic", topic))
}

func RecordOutboxFailed(ctx context.Context, topic string) {
	OutboxFailed.Inc(ctx, attribute.String("topic", topic))
}
