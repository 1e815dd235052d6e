package auth

import (
	"testing"
	"time"

	"github.com/example/task-tracker/domain/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityResolver_Resolve(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	manager := newTestJWTManager(t, clock)
	resolver := NewIdentityResolver(manager)

	userID := uuid.NewString()
	token, err := manager.Issue(userID, "a@x.com")
	require.NoError(t, err)

	notUUID, err := manager.Issue("user-1", "a@x.com")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantErr bool
	}{
		{name: "valid bearer", header: "Bearer " + token},
		{name: "lowercase scheme", header: "bearer " + token},
		{name: "extra whitespace", header: "  Bearer   " + token + " "},
		{name: "missing header", header: "", wantErr: true},
		{name: "scheme only", header: "Bearer", wantErr: true},
		{name: "wrong scheme", header: "Basic " + token, wantErr: true},
		{name: "raw token", header: token, wantErr: true},
		{name: "extra field", header: "Bearer " + token + " extra", wantErr: true},
		{name: "garbage token", header: "Bearer not-a-jwt", wantErr: true},
		{name: "subject not a uuid", header: "Bearer " + notUUID, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := resolver.Resolve(tt.header)
			if tt.wantErr {
				require.ErrorIs(t, err, apperror.ErrUnauthenticated)
				assert.Empty(t, identity.UserID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, identity.UserID)
			assert.Equal(t, "a@x.com", identity.Email)
		})
	}
}

func TestIdentityResolver_ExpiredAndInvalidLookAlike(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	manager := newTestJWTManager(t, clock)
	resolver := NewIdentityResolver(manager)

	token, err := manager.Issue(uuid.NewString(), "a@x.com")
	require.NoError(t, err)

	clock.Advance(time.Hour)

	_, expiredErr := resolver.Resolve("Bearer " + token)
	_, invalidErr := resolver.Resolve("Bearer " + tamperPayload(token))
	_, missingErr := resolver.Resolve("")

	require.Error(t, expiredErr)
	assert.Equal(t, expiredErr, invalidErr)
	assert.Equal(t, expiredErr, missingErr)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(expiredErr))
}
