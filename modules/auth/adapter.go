package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-tracker/domain/apperror"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AccountPort defines the account operations other modules may call.
type AccountPort interface {
	Signup(ctx context.Context, req *SignupRequest) (*SessionResponse, error)
	Signin(ctx context.Context, req *SigninRequest) (*SessionResponse, error)
	GetProfile(ctx context.Context, userID string) (*GetProfileResponse, error)
}

// AccountAdapter implements AccountPort using the service container.
// Errors keep their apperror kind across the bus.
type AccountAdapter struct {
	container mono.ServiceContainer
}

// NewAccountAdapter creates a new AccountAdapter.
func NewAccountAdapter(container mono.ServiceContainer) *AccountAdapter {
	return &AccountAdapter{
		container: container,
	}
}

// Signup registers a new account via the signup service.
func (a *AccountAdapter) Signup(ctx context.Context, req *SignupRequest) (*SessionResponse, error) {
	var resp SessionResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"signup",
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, remoteError("signup", err)
	}
	if resp.Fault != nil {
		return nil, resp.Fault.Err()
	}
	return &resp, nil
}

// Signin authenticates via the signin service.
func (a *AccountAdapter) Signin(ctx context.Context, req *SigninRequest) (*SessionResponse, error) {
	var resp SessionResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"signin",
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, remoteError("signin", err)
	}
	if resp.Fault != nil {
		return nil, resp.Fault.Err()
	}
	return &resp, nil
}

// GetProfile retrieves a user via the get-profile service.
func (a *AccountAdapter) GetProfile(ctx context.Context, userID string) (*GetProfileResponse, error) {
	req := GetProfileRequest{UserID: userID}
	var resp GetProfileResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-profile",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, remoteError("get-profile", err)
	}
	if resp.Fault != nil {
		return nil, resp.Fault.Err()
	}
	return &resp, nil
}

func remoteError(service string, err error) error {
	return apperror.FromRemote(fmt.Errorf("%s request failed: %w", service, err))
}
