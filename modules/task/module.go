package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/example/task-tracker/domain/apperror"
	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// TaskModule provides ownership-scoped task services.
type TaskModule struct {
	db       *gorm.DB
	opts     []ServiceOption
	eventBus mono.EventBus

	repo    *TaskRepository
	service *TaskService
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.EventBusAwareModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule over the shared store.
func NewModule(db *gorm.DB, opts ...ServiceOption) *TaskModule {
	return &TaskModule{
		db:   db,
		opts: opts,
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "complete-task", json.Unmarshal, json.Marshal, m.completeTask,
	); err != nil {
		return fmt.Errorf("failed to register complete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	log.Printf("[task] Registered services: create-task, list-tasks, get-task, update-task, complete-task, delete-task")
	return nil
}

func (m *TaskModule) Start(_ context.Context) error {
	if m.db == nil {
		return errors.New("database not set")
	}

	opts := m.opts
	if m.eventBus != nil {
		opts = append([]ServiceOption{WithPublisher(busPublisher{bus: m.eventBus})}, opts...)
	} else {
		log.Println("[task] Warning: eventBus not set, events will not be published")
	}

	m.repo = NewTaskRepository(m.db)
	m.service = NewTaskService(m.repo, opts...)

	log.Println("[task] Module started")
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	log.Println("[task] Module stopped")
	return nil
}

func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.repo == nil {
		return mono.HealthStatus{Healthy: false, Message: "module not started"}
	}
	if err := m.repo.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"row_locks": m.repo.rowLocks,
		},
	}
}

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.Create(ctx, req.UserID, req.Title, req.Description)
	if err != nil {
		fault, err := apperror.AsFault(err)
		return TaskResponse{Fault: fault}, err
	}
	return toTaskResponse(task), nil
}

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.List(ctx, req.UserID)
	if err != nil {
		fault, err := apperror.AsFault(err)
		return ListTasksResponse{Fault: fault}, err
	}

	response := ListTasksResponse{
		Tasks: make([]TaskResponse, 0, len(tasks)),
		Total: len(tasks),
	}
	for i := range tasks {
		response.Tasks = append(response.Tasks, toTaskResponse(&tasks[i]))
	}
	return response, nil
}

func (m *TaskModule) getTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.Get(ctx, req.UserID, req.TaskID)
	if err != nil {
		fault, err := apperror.AsFault(err)
		return TaskResponse{Fault: fault}, err
	}
	return toTaskResponse(task), nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.Update(ctx, req.UserID, req.TaskID, req.Title, req.Description)
	if err != nil {
		fault, err := apperror.AsFault(err)
		return TaskResponse{Fault: fault}, err
	}
	return toTaskResponse(task), nil
}

func (m *TaskModule) completeTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.Complete(ctx, req.UserID, req.TaskID)
	if err != nil {
		fault, err := apperror.AsFault(err)
		return TaskResponse{Fault: fault}, err
	}
	return toTaskResponse(task), nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.UserID, req.TaskID); err != nil {
		fault, err := apperror.AsFault(err)
		return DeleteTaskResponse{Fault: fault}, err
	}
	return DeleteTaskResponse{Deleted: true}, nil
}
