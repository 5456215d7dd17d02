package eventbus

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matthewbaird/intake/internal/event"
)

// MetricsConsumer counts dispatched events by type.
type MetricsConsumer struct {
	events *prometheus.CounterVec
}

// NewMetricsConsumer counts into a vector labelled by "type".
func NewMetricsConsumer(events *prometheus.CounterVec) *MetricsConsumer {
	return &MetricsConsumer{events: events}
}

func (c *MetricsConsumer) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	c.events.WithLabelValues(evt.EventType).Inc()
	return nil
}
