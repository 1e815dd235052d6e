package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-tracker/domain/apperror"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ActivityPort defines the activity lookups other modules may call.
type ActivityPort interface {
	GetActivity(ctx context.Context, userID string) (*ActivityResponse, error)
}

type activityAdapter struct {
	container mono.ServiceContainer
}

// NewActivityAdapter creates a new adapter for activity services.
func NewActivityAdapter(container mono.ServiceContainer) ActivityPort {
	if container == nil {
		panic("activity adapter requires non-nil ServiceContainer")
	}
	return &activityAdapter{container: container}
}

// GetActivity returns the caller's tallies via the get-activity service.
func (a *activityAdapter) GetActivity(ctx context.Context, userID string) (*ActivityResponse, error) {
	req := GetActivityRequest{UserID: userID}
	var resp ActivityResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-activity",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, apperror.FromRemote(fmt.Errorf("get-activity service call failed: %w", err))
	}
	return &resp, nil
}
