package auth

import (
	"context"

	"github.com/example/task-tracker/domain/apperror"
	domain "github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/storage"
	"gorm.io/gorm"
)

// UserRepository handles user persistence using GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// WithinTx runs fn against a repository bound to a single transaction.
func (r *UserRepository) WithinTx(ctx context.Context, fn func(repo *UserRepository) error) error {
	return storage.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		return fn(&UserRepository{db: tx})
	})
}

// Insert persists a new user. A taken email is reported as
// apperror.ErrEmailTaken whether it is caught here or by the unique index.
func (r *UserRepository) Insert(ctx context.Context, user *domain.User) error {
	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		if storage.IsDuplicate(result.Error) {
			return apperror.ErrEmailTaken
		}
		return apperror.Transient("insert user", result.Error)
	}
	return nil
}

// FindByID finds a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	result := r.db.WithContext(ctx).First(&user, "id = ?", id)
	if result.Error != nil {
		if storage.IsNotFound(result.Error) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Transient("find user by id", result.Error)
	}
	return &user, nil
}

// FindByEmail finds a user by exact email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	result := r.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if storage.IsNotFound(result.Error) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Transient("find user by email", result.Error)
	}
	return &user, nil
}

// EmailExists checks if a user with the given email exists.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count)
	if result.Error != nil {
		return false, apperror.Transient("count users by email", result.Error)
	}
	return count > 0, nil
}

// Ping checks that the user store answers.
func (r *UserRepository) Ping(ctx context.Context) error {
	return storage.Ping(ctx, r.db)
}
