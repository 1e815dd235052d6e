package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"time"

	"github.com/example/task-tracker/domain/apperror"
	domain "github.com/example/task-tracker/domain/user"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	// MaxEmailLength is the longest email accepted at signup.
	MaxEmailLength = 255
	// MinPasswordLength is the shortest password accepted at signup.
	MinPasswordLength = 8
)

// TokenIssuer mints access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

// ProfileCache stores user profiles outside the database. Implementations
// report a miss with ok == false and a nil error.
type ProfileCache interface {
	GetProfile(ctx context.Context, userID string) (profile domain.Profile, ok bool, err error)
	SetProfile(ctx context.Context, profile domain.Profile) error
}

// Session is the outcome of a successful signup or signin.
type Session struct {
	User  domain.Profile
	Token string
}

// AccountService handles registration, signin and profile lookups.
type AccountService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	tokens TokenIssuer
	cache  ProfileCache
	now    func() time.Time

	profiles singleflight.Group
}

// AccountOption customizes an AccountService.
type AccountOption func(*AccountService)

// WithProfileCache enables cache-aside profile lookups.
func WithProfileCache(cache ProfileCache) AccountOption {
	return func(s *AccountService) {
		s.cache = cache
	}
}

// WithAccountClock overrides the time source used for timestamps.
func WithAccountClock(now func() time.Time) AccountOption {
	return func(s *AccountService) {
		s.now = now
	}
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo *UserRepository, hasher *PasswordHasher, tokens TokenIssuer, opts ...AccountOption) *AccountService {
	s := &AccountService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup creates a new account and returns it with a fresh token. The user
// row and the token are produced in one transaction: if signing fails the
// row is rolled back.
func (s *AccountService) Signup(ctx context.Context, email, password string) (*Session, error) {
	if err := validateSignup(email, password); err != nil {
		return nil, err
	}

	// Hash outside the transaction so the write lock is not held during bcrypt.
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var token string
	err = s.repo.WithinTx(ctx, func(repo *UserRepository) error {
		exists, err := repo.EmailExists(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return apperror.ErrEmailTaken
		}

		if err := repo.Insert(ctx, user); err != nil {
			return err
		}

		token, err = s.tokens.Issue(user.ID, user.Email)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[auth] User signed up: %s", user.ID)
	return &Session{User: user.Profile(), Token: token}, nil
}

// Signin checks credentials and issues a new token. An unknown email and a
// wrong password produce the same error and cost the same bcrypt work.
func (s *AccountService) Signin(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, apperror.Validation("email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.hasher.burn(password)
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &Session{User: user.Profile(), Token: token}, nil
}

// GetProfile returns the stored user for id. Concurrent lookups of the same
// id share one database read, which does not stop when the caller that
// started it goes away. Cache failures fall through to the database.
func (s *AccountService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if s.cache != nil {
		profile, ok, err := s.cache.GetProfile(ctx, userID)
		if err != nil {
			log.Printf("[auth] Warning: profile cache read failed for %s: %v", userID, err)
		} else if ok {
			return &profile, nil
		}
	}

	shared := context.WithoutCancel(ctx)
	v, err, _ := s.profiles.Do(userID, func() (any, error) {
		user, err := s.repo.FindByID(shared, userID)
		if err != nil {
			return nil, err
		}
		profile := user.Profile()
		if s.cache != nil {
			if err := s.cache.SetProfile(shared, profile); err != nil {
				log.Printf("[auth] Warning: profile cache write failed for %s: %v", userID, err)
			}
		}
		return profile, nil
	})
	if err != nil {
		return nil, err
	}

	profile := v.(domain.Profile)
	return &profile, nil
}

// validateSignup checks the shape of signup input. Email must be a bare
// address; password length is counted in bytes because bcrypt is.
func validateSignup(email, password string) error {
	if email == "" {
		return apperror.Validation("email is required")
	}
	if len(email) > MaxEmailLength {
		return apperror.Validation("email must be at most %d characters", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperror.Validation("invalid email format")
	}

	if len(password) < MinPasswordLength {
		return apperror.Validation("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return apperror.Validation("password must be at most %d bytes", MaxPasswordBytes)
	}
	return nil
}
