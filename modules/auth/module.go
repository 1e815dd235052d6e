package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/example/task-tracker/domain/apperror"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

const tokenType = "Bearer"

// AuthModule provides account services over the shared store.
type AuthModule struct {
	db         *gorm.DB
	tokens     *JWTManager
	bcryptCost int
	opts       []AccountOption

	repo    *UserRepository
	service *AccountService
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule. The database and token service are
// owned by the caller; the module never closes them.
func NewModule(db *gorm.DB, tokens *JWTManager, bcryptCost int, opts ...AccountOption) *AuthModule {
	return &AuthModule{
		db:         db,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		opts:       opts,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start initializes the auth module.
func (m *AuthModule) Start(_ context.Context) error {
	if m.db == nil {
		return errors.New("database not set")
	}
	if m.tokens == nil {
		return errors.New("token service not set")
	}

	m.repo = NewUserRepository(m.db)
	m.service = NewAccountService(m.repo, NewPasswordHasher(m.bcryptCost), m.tokens, m.opts...)

	log.Printf("[auth] Module started (token ttl: %s)", m.tokens.TokenDuration())
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(ctx context.Context) mono.HealthStatus {
	if m.repo == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "module not started",
		}
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
			"database": m.db.Dialector.Name(),
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"signup",
		json.Unmarshal,
		json.Marshal,
		m.handleSignup,
	); err != nil {
		return fmt.Errorf("failed to register signup service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"signin",
		json.Unmarshal,
		json.Marshal,
		m.handleSignin,
	); err != nil {
		return fmt.Errorf("failed to register signin service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"get-profile",
		json.Unmarshal,
		json.Marshal,
		m.handleGetProfile,
	); err != nil {
		return fmt.Errorf("failed to register get-profile service: %w", err)
	}

	log.Printf("[auth] Registered services: signup, signin, get-profile")
	return nil
}

func (m *AuthModule) handleSignup(ctx context.Context, req SignupRequest, _ *mono.Msg) (SessionResponse, error) {
	session, err := m.service.Signup(ctx, req.Email, req.Password)
	if err != nil {
		fault, err := apperror.AsFault(err)
		return SessionResponse{Fault: fault}, err
	}
	return m.toSessionResponse(session), nil
}

func (m *AuthModule) handleSignin(ctx context.Context, req SigninRequest, _ *mono.Msg) (SessionResponse, error) {
	session, err := m.service.Signin(ctx, req.Email, req.Password)
	if err != nil {
		fault, err := apperror.AsFault(err)
		return SessionResponse{Fault: fault}, err
	}
	return m.toSessionResponse(session), nil
}

func (m *AuthModule) handleGetProfile(ctx context.Context, req GetProfileRequest, _ *mono.Msg) (GetProfileResponse, error) {
	profile, err := m.service.GetProfile(ctx, req.UserID)
	if err != nil {
		fault, err := apperror.AsFault(err)
		return GetProfileResponse{Fault: fault}, err
	}
	return GetProfileResponse{User: *profile}, nil
}

func (m *AuthModule) toSessionResponse(session *Session) SessionResponse {
	return SessionResponse{
		User:      session.User,
		Token:     session.Token,
		TokenType: tokenType,
		ExpiresIn: m.tokens.ExpiresIn(),
	}
}
