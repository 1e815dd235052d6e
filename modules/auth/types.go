package auth

import (
	"github.com/example/task-tracker/domain/apperror"
	domain "github.com/example/task-tracker/domain/user"
)

// SignupRequest represents a user registration request.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninRequest represents a user signin request.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse carries the user and a freshly issued access token.
type SessionResponse struct {
	User      domain.Profile `json:"user"`
	Token     string         `json:"token"`
	TokenType string         `json:"token_type"`
	ExpiresIn int64          `json:"expires_in"`

	Fault *apperror.Fault `json:"fault,omitempty"`
}

// GetProfileRequest represents a profile lookup for a verified user id.
type GetProfileRequest struct {
	UserID string `json:"user_id"`
}

// GetProfileResponse represents a profile lookup response.
type GetProfileResponse struct {
	User  domain.Profile  `json:"user"`
	Fault *apperror.Fault `json:"fault,omitempty"`
}
