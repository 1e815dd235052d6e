package api

import (
	"time"

	"github.com/example/task-tracker/modules/task"
)

// CredentialsRequest is the body of signup and signin.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TaskRequest is the body of task create and update. Ownership fields in
// the body are not read; the owner always comes from the bearer token.
type TaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UserResponse represents a user response. It never carries credentials.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is returned by signup and signin.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// TaskResponse represents a task response.
type TaskResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerUserID string    `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ActivityResponse counts the caller's task events since startup.
type ActivityResponse struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Completed int `json:"completed"`
	Deleted   int `json:"deleted"`
}

// ModuleHealth is one module's entry in the health response.
type ModuleHealth struct {
	Healthy bool           `json:"healthy"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthResponse represents the health endpoint body.
type HealthResponse struct {
	Status  string                  `json:"status"`
	Message string                  `json:"message"`
	Modules map[string]ModuleHealth `json:"modules,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func toTaskResponse(t *task.TaskResponse) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		OwnerUserID: t.OwnerUserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
