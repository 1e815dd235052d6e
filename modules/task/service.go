package task

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/task-tracker/domain/apperror"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/events"
)

// EventPublisher announces committed task changes. Publishing is best
// effort: a failure is logged and never undoes the change.
type EventPublisher interface {
	TaskCreated(event events.TaskCreatedEvent) error
	TaskUpdated(event events.TaskUpdatedEvent) error
	TaskCompleted(event events.TaskCompletedEvent) error
	TaskDeleted(event events.TaskDeletedEvent) error
}

// TaskService implements ownership-scoped task CRUD. Every method takes the
// caller's verified user id; nothing is looked up by task id alone.
type TaskService struct {
	store     Store
	publisher EventPublisher
	now       func() time.Time
}

// ServiceOption customizes a TaskService.
type ServiceOption func(*TaskService)

// WithPublisher sets where lifecycle events go.
func WithPublisher(p EventPublisher) ServiceOption {
	return func(s *TaskService) {
		s.publisher = p
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *TaskService) {
		s.now = now
	}
}

// NewTaskService creates a new TaskService.
func NewTaskService(store Store, opts ...ServiceOption) *TaskService {
	s := &TaskService{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new incomplete task owned by userID.
func (s *TaskService) Create(ctx context.Context, userID, title string, description *string) (*domain.Task, error) {
	if userID == "" {
		return nil, apperror.ErrUnauthenticated
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	now := s.timestamp()
	task := &domain.Task{
		Title:       title,
		Description: description,
		Completed:   false,
		OwnerID:     userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, task); err != nil {
		return nil, err
	}

	s.publish("TaskCreated", task.ID, func(p EventPublisher) error {
		return p.TaskCreated(events.TaskCreatedEvent{
			TaskID:      task.ID,
			Title:       task.Title,
			OwnerUserID: task.OwnerID,
			CreatedAt:   task.CreatedAt,
		})
	})
	return task, nil
}

// List returns exactly the tasks owned by userID, oldest first.
func (s *TaskService) List(ctx context.Context, userID string) ([]domain.Task, error) {
	if userID == "" {
		return nil, apperror.ErrUnauthenticated
	}
	return s.store.ListByOwner(ctx, userID)
}

// Get returns one task. Another user's task is reported as not found.
func (s *TaskService) Get(ctx context.Context, userID string, taskID uint) (*domain.Task, error) {
	if userID == "" {
		return nil, apperror.ErrUnauthenticated
	}
	return s.store.FindByIDAndOwner(ctx, taskID, userID)
}

// Update overwrites title and description and bumps updated_at. The
// completed flag is left as it is.
func (s *TaskService) Update(ctx context.Context, userID string, taskID uint, title string, description *string) (*domain.Task, error) {
	if userID == "" {
		return nil, apperror.ErrUnauthenticated
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	var updated *domain.Task
	err := s.store.WithinTx(ctx, func(tx Store) error {
		task, err := tx.FindByIDAndOwner(ctx, taskID, userID)
		if err != nil {
			return err
		}

		task.Title = title
		task.Description = description
		task.UpdatedAt = s.timestamp()
		if err := tx.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("TaskUpdated", updated.ID, func(p EventPublisher) error {
		return p.TaskUpdated(events.TaskUpdatedEvent{
			TaskID:      updated.ID,
			Title:       updated.Title,
			OwnerUserID: updated.OwnerID,
			UpdatedAt:   updated.UpdatedAt,
		})
	})
	return updated, nil
}

// Complete marks a task done. Completing a finished task is a no-op that
// returns it unchanged.
func (s *TaskService) Complete(ctx context.Context, userID string, taskID uint) (*domain.Task, error) {
	if userID == "" {
		return nil, apperror.ErrUnauthenticated
	}

	var (
		completed  *domain.Task
		transition bool
	)
	err := s.store.WithinTx(ctx, func(tx Store) error {
		task, err := tx.FindByIDAndOwner(ctx, taskID, userID)
		if err != nil {
			return err
		}
		if task.Completed {
			completed = task
			return nil
		}

		task.Completed = true
		task.UpdatedAt = s.timestamp()
		if err := tx.Update(ctx, task); err != nil {
			return err
		}
		completed, transition = task, true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if transition {
		s.publish("TaskCompleted", completed.ID, func(p EventPublisher) error {
			return p.TaskCompleted(events.TaskCompletedEvent{
				TaskID:      completed.ID,
				OwnerUserID: completed.OwnerID,
				CompletedAt: completed.UpdatedAt,
			})
		})
	}
	return completed, nil
}

// Delete removes a task permanently.
func (s *TaskService) Delete(ctx context.Context, userID string, taskID uint) error {
	if userID == "" {
		return apperror.ErrUnauthenticated
	}

	err := s.store.WithinTx(ctx, func(tx Store) error {
		if _, err := tx.FindByIDAndOwner(ctx, taskID, userID); err != nil {
			return err
		}
		return tx.Delete(ctx, taskID, userID)
	})
	if err != nil {
		return err
	}

	s.publish("TaskDeleted", taskID, func(p EventPublisher) error {
		return p.TaskDeleted(events.TaskDeletedEvent{
			TaskID:      taskID,
			OwnerUserID: userID,
			DeletedAt:   s.timestamp(),
		})
	})
	return nil
}

func (s *TaskService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *TaskService) publish(name string, taskID uint, fn func(EventPublisher) error) {
	if s.publisher == nil {
		return
	}
	if err := fn(s.publisher); err != nil {
		log.Printf("[task] Warning: failed to publish %s event for task %d: %v", name, taskID, err)
	}
}

// validateTitle rejects blank titles and titles longer than the limit in
// characters. The title is stored exactly as given.
func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperror.Validation("title is required")
	}
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return apperror.Validation("title must be at most %d characters", domain.MaxTitleLength)
	}
	return nil
}
