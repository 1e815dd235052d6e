package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-tracker/domain/apperror"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort defines the task operations other modules may call.
type TaskPort interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error)
	ListTasks(ctx context.Context, userID string) (*ListTasksResponse, error)
	GetTask(ctx context.Context, userID string, taskID uint) (*TaskResponse, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error)
	CompleteTask(ctx context.Context, userID string, taskID uint) (*TaskResponse, error)
	DeleteTask(ctx context.Context, userID string, taskID uint) error
}

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// CreateTask creates a new task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"create-task",
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, remoteError("create-task", err)
	}
	if resp.Fault != nil {
		return nil, resp.Fault.Err()
	}
	return &resp, nil
}

// ListTasks lists the user's tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, userID string) (*ListTasksResponse, error) {
	req := ListTasksRequest{UserID: userID}
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-tasks",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, remoteError("list-tasks", err)
	}
	if resp.Fault != nil {
		return nil, resp.Fault.Err()
	}
	return &resp, nil
}

// GetTask retrieves one of the user's tasks via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, userID string, taskID uint) (*TaskResponse, error) {
	req := TaskRequest{UserID: userID, TaskID: taskID}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, remoteError("get-task", err)
	}
	if resp.Fault != nil {
		return nil, resp.Fault.Err()
	}
	return &resp, nil
}

// UpdateTask overwrites a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"update-task",
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, remoteError("update-task", err)
	}
	if resp.Fault != nil {
		return nil, resp.Fault.Err()
	}
	return &resp, nil
}

// CompleteTask marks a task as completed via the complete-task service.
func (a *taskAdapter) CompleteTask(ctx context.Context, userID string, taskID uint) (*TaskResponse, error) {
	req := TaskRequest{UserID: userID, TaskID: taskID}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"complete-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, remoteError("complete-task", err)
	}
	if resp.Fault != nil {
		return nil, resp.Fault.Err()
	}
	return &resp, nil
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, userID string, taskID uint) error {
	req := TaskRequest{UserID: userID, TaskID: taskID}
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"delete-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return remoteError("delete-task", err)
	}
	if resp.Fault != nil {
		return resp.Fault.Err()
	}
	if !resp.Deleted {
		return fmt.Errorf("task %d not deleted", taskID)
	}
	return nil
}

func remoteError(service string, err error) error {
	return apperror.FromRemote(fmt.Errorf("%s service call failed: %w", service, err))
}
