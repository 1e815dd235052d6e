package task

import (
	"context"

	"github.com/example/task-tracker/domain/apperror"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence the task service depends on. Every lookup is
// scoped by owner; there is no way to read a task by id alone.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Store) error) error
	Insert(ctx context.Context, task *domain.Task) error
	FindByIDAndOwner(ctx context.Context, id uint, ownerID string) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id uint, ownerID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error)
}

// TaskRepository implements Store with GORM.
type TaskRepository struct {
	db       *gorm.DB
	rowLocks bool
	inTx     bool
}

var _ Store = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{
		db:       db,
		rowLocks: storage.SupportsRowLocks(db),
	}
}

// WithinTx runs fn against a repository bound to one transaction. Reads made
// through it lock the row on stores that support SELECT ... FOR UPDATE.
func (r *TaskRepository) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return storage.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		return fn(&TaskRepository{db: tx, rowLocks: r.rowLocks, inTx: true})
	})
}

// Insert persists a new task and fills in its id.
func (r *TaskRepository) Insert(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return apperror.Transient("insert task", err)
	}
	return nil
}

// FindByIDAndOwner returns the task only if ownerID owns it. A task owned by
// someone else is reported exactly like a missing one.
func (r *TaskRepository) FindByIDAndOwner(ctx context.Context, id uint, ownerID string) (*domain.Task, error) {
	query := r.db.WithContext(ctx)
	if r.inTx && r.rowLocks {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var task domain.Task
	err := query.Where("id = ? AND owner_user_id = ?", id, ownerID).First(&task).Error
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Transient("find task", err)
	}
	return &task, nil
}

// Update writes the mutable columns of task. Owner and creation time are
// never part of the write.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	result := r.db.WithContext(ctx).
		Model(task).
		Where("owner_user_id = ?", task.OwnerID).
		Select("Title", "Description", "Completed", "UpdatedAt").
		Updates(task)
	if result.Error != nil {
		return apperror.Transient("update task", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

// Delete removes the task permanently.
func (r *TaskRepository) Delete(ctx context.Context, id uint, ownerID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_user_id = ?", id, ownerID).
		Delete(&domain.Task{})
	if result.Error != nil {
		return apperror.Transient("delete task", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

// ListByOwner returns the owner's tasks in insertion order.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	tasks := make([]domain.Task, 0)
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerID).
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, apperror.Transient("list tasks", err)
	}
	return tasks, nil
}

// Ping checks that the task store answers.
func (r *TaskRepository) Ping(ctx context.Context) error {
	return storage.Ping(ctx, r.db)
}
