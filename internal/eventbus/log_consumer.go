package eventbus

import (
	"context"
	"log"

	"github.com/matthewbaird/intake/internal/event"
)

// LogConsumer logs all domain events for observability.
type LogConsumer struct{}

func NewLogConsumer() *LogConsumer { return &LogConsumer{} }

func (c *LogConsumer) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	entities := make([]string, len(evt.AffectedEntities))
	for i, ref := range evt.AffectedEntities {
		id := ref.EntityID
		if len(id) > 8 {
			id = id[:8]
		}
		entities[i] = ref.EntityType + ":" + id
	}
	actor := evt.Actor
	if actor == "" {
		actor = "system"
	}
	log.Printf("event: %s [%s] by %s: %s entities=%v",
		evt.EventType, evt.Category, actor, evt.Summary, entities)
	return nil
}
