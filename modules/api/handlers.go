package api

import (
	"strconv"

	domain "github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/task"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	accounts auth.AccountPort
	tasks    task.TaskPort
	activity activity.ActivityPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(accounts auth.AccountPort, tasks task.TaskPort, activity activity.ActivityPort) *Handlers {
	return &Handlers{
		accounts: accounts,
		tasks:    tasks,
		activity: activity,
	}
}

// Signup handles account registration.
func (h *Handlers) Signup(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.accounts.Signup(c.UserContext(), &auth.SignupRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		User:  toUserResponse(resp.User),
		Token: resp.Token,
	})
}

// Signin handles credential checks.
func (h *Handlers) Signin(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.accounts.Signin(c.UserContext(), &auth.SigninRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(AuthResponse{
		User:  toUserResponse(resp.User),
		Token: resp.Token,
	})
}

// Me returns the authenticated user's profile.
func (h *Handlers) Me(c *fiber.Ctx) error {
	identity, ok := identityFrom(c)
	if !ok {
		return unauthorized(c)
	}

	resp, err := h.accounts.GetProfile(c.UserContext(), identity.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUserResponse(resp.User))
}

// CreateTask handles task creation for the caller.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	identity, ok := identityFrom(c)
	if !ok {
		return unauthorized(c)
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.tasks.CreateTask(c.UserContext(), &task.CreateTaskRequest{
		UserID:      identity.UserID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTaskResponse(resp))
}

// ListTasks returns every task the caller owns.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	identity, ok := identityFrom(c)
	if !ok {
		return unauthorized(c)
	}

	resp, err := h.tasks.ListTasks(c.UserContext(), identity.UserID)
	if err != nil {
		return respondError(c, err)
	}

	tasks := make([]TaskResponse, 0, len(resp.Tasks))
	for i := range resp.Tasks {
		tasks = append(tasks, toTaskResponse(&resp.Tasks[i]))
	}
	return c.JSON(tasks)
}

// GetTask returns one of the caller's tasks.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	identity, ok := identityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return badRequest(c, "Invalid task id")
	}

	resp, err := h.tasks.GetTask(c.UserContext(), identity.UserID, taskID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toTaskResponse(resp))
}

// UpdateTask overwrites a task's title and description.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	identity, ok := identityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return badRequest(c, "Invalid task id")
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.tasks.UpdateTask(c.UserContext(), &task.UpdateTaskRequest{
		UserID:      identity.UserID,
		TaskID:      taskID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toTaskResponse(resp))
}

// CompleteTask marks a task as completed.
func (h *Handlers) CompleteTask(c *fiber.Ctx) error {
	identity, ok := identityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return badRequest(c, "Invalid task id")
	}

	resp, err := h.tasks.CompleteTask(c.UserContext(), identity.UserID, taskID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toTaskResponse(resp))
}

// DeleteTask removes a task.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	identity, ok := identityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return badRequest(c, "Invalid task id")
	}

	if err := h.tasks.DeleteTask(c.UserContext(), identity.UserID, taskID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Activity returns how many task events the caller has produced.
func (h *Handlers) Activity(c *fiber.Ctx) error {
	identity, ok := identityFrom(c)
	if !ok {
		return unauthorized(c)
	}

	resp, err := h.activity.GetActivity(c.UserContext(), identity.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ActivityResponse{
		Created:   resp.Counts.Created,
		Updated:   resp.Counts.Updated,
		Completed: resp.Counts.Completed,
		Deleted:   resp.Counts.Deleted,
	})
}

// taskIDParam parses the :id path segment. Ids are positive and fit a
// signed 64-bit column.
func taskIDParam(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func toUserResponse(p domain.Profile) UserResponse {
	return UserResponse{
		ID:        p.ID,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
	}
}
