// Package activity follows task lifecycle events and keeps per-owner tallies.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Counts is the number of lifecycle events seen for one owner.
type Counts struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Completed int `json:"completed"`
	Deleted   int `json:"deleted"`
}

// ActivityModule consumes task events. It holds no task data, only tallies.
type ActivityModule struct {
	mu     sync.RWMutex
	owners map[string]*Counts
	total  int
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)
var _ mono.HealthCheckableModule = (*ActivityModule)(nil)

func NewModule() *ActivityModule {
	return &ActivityModule{
		owners: make(map[string]*Counts),
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	log.Printf("[activity] Registered event consumers: TaskCreated, TaskUpdated, TaskCompleted, TaskDeleted")
	return nil
}

func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "get-activity", json.Unmarshal, json.Marshal, m.getActivity,
	); err != nil {
		return fmt.Errorf("failed to register get-activity service: %w", err)
	}

	log.Printf("[activity] Registered services: get-activity")
	return nil
}

func (m *ActivityModule) getActivity(_ context.Context, req GetActivityRequest, _ *mono.Msg) (ActivityResponse, error) {
	return ActivityResponse{Counts: m.CountsFor(req.UserID)}, nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	log.Printf("[activity] Task created: %d by user %s", event.TaskID, event.OwnerUserID)
	m.record(event.OwnerUserID, func(c *Counts) { c.Created++ })
	return nil
}

func (m *ActivityModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	log.Printf("[activity] Task updated: %d by user %s", event.TaskID, event.OwnerUserID)
	m.record(event.OwnerUserID, func(c *Counts) { c.Updated++ })
	return nil
}

func (m *ActivityModule) handleTaskCompleted(_ context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	log.Printf("[activity] Task completed: %d by user %s", event.TaskID, event.OwnerUserID)
	m.record(event.OwnerUserID, func(c *Counts) { c.Completed++ })
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	log.Printf("[activity] Task deleted: %d by user %s", event.TaskID, event.OwnerUserID)
	m.record(event.OwnerUserID, func(c *Counts) { c.Deleted++ })
	return nil
}

func (m *ActivityModule) record(ownerID string, bump func(*Counts)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.owners[ownerID]
	if !ok {
		c = &Counts{}
		m.owners[ownerID] = c
	}
	bump(c)
	m.total++
}

// CountsFor returns a copy of the tallies for one owner.
func (m *ActivityModule) CountsFor(ownerID string) Counts {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if c, ok := m.owners[ownerID]; ok {
		return *c
	}
	return Counts{}
}

func (m *ActivityModule) Health(_ context.Context) mono.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return mono.HealthStatus{
		Healthy: true,
		Message: "listening for task events",
		Details: map[string]any{
			"events_seen": m.total,
			"owners":      len(m.owners),
		},
	}
}

func (m *ActivityModule) Start(_ context.Context) error {
	log.Println("[activity] Module started - listening for task events")
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	log.Println("[activity] Module stopped")
	return nil
}
