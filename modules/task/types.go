package task

import (
	"time"

	"github.com/example/task-tracker/domain/apperror"
	domain "github.com/example/task-tracker/domain/task"
)

// CreateTaskRequest represents a request to create a task. UserID is the
// verified caller, set by the transport.
type CreateTaskRequest struct {
	UserID      string  `json:"user_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UpdateTaskRequest represents a request to overwrite a task's title and description.
type UpdateTaskRequest struct {
	UserID      string  `json:"user_id"`
	TaskID      uint    `json:"task_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// TaskRequest addresses one task on behalf of a user.
// It is used by get-task, complete-task and delete-task.
type TaskRequest struct {
	UserID string `json:"user_id"`
	TaskID uint   `json:"task_id"`
}

// ListTasksRequest represents a request to list the caller's tasks.
type ListTasksRequest struct {
	UserID string `json:"user_id"`
}

// TaskResponse represents a task in service responses.
type TaskResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerUserID string    `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Fault *apperror.Fault `json:"fault,omitempty"`
}

// ListTasksResponse represents a list of tasks.
type ListTasksResponse struct {
	Tasks []TaskResponse  `json:"tasks"`
	Total int             `json:"total"`
	Fault *apperror.Fault `json:"fault,omitempty"`
}

// DeleteTaskResponse represents a task deletion response.
type DeleteTaskResponse struct {
	Deleted bool            `json:"deleted"`
	Fault   *apperror.Fault `json:"fault,omitempty"`
}

func toTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		OwnerUserID: task.OwnerID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}
