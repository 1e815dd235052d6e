package task

import (
	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
)

// busPublisher publishes lifecycle events on the mono event bus.
type busPublisher struct {
	bus mono.EventBus
}

func (p busPublisher) TaskCreated(event events.TaskCreatedEvent) error {
	return events.TaskCreatedV1.Publish(p.bus, event, nil)
}

func (p busPublisher) TaskUpdated(event events.TaskUpdatedEvent) error {
	return events.TaskUpdatedV1.Publish(p.bus, event, nil)
}

func (p busPublisher) TaskCompleted(event events.TaskCompletedEvent) error {
	return events.TaskCompletedV1.Publish(p.bus, event, nil)
}

func (p busPublisher) TaskDeleted(event events.TaskDeletedEvent) error {
	return events.TaskDeletedV1.Publish(p.bus, event, nil)
}
