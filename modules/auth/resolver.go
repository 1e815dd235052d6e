package auth

import (
	"strings"

	"github.com/example/task-tracker/domain/apperror"
	"github.com/example/task-tracker/domain/user"
	"github.com/google/uuid"
)

const bearerScheme = "bearer"

// IdentityResolver turns an Authorization header value into a verified
// caller. It runs in-process and never reaches the database.
type IdentityResolver struct {
	tokens *JWTManager
}

// NewIdentityResolver creates a resolver backed by the given token service.
func NewIdentityResolver(tokens *JWTManager) *IdentityResolver {
	return &IdentityResolver{tokens: tokens}
}

// Resolve returns the identity carried by a "Bearer <token>" credential.
// Missing, malformed, expired and invalid credentials all yield
// apperror.ErrUnauthenticated and nothing else.
func (r *IdentityResolver) Resolve(authorization string) (user.Identity, error) {
	token, ok := bearerToken(authorization)
	if !ok {
		return user.Identity{}, apperror.ErrUnauthenticated
	}

	claims, err := r.tokens.Verify(token)
	if err != nil {
		return user.Identity{}, apperror.ErrUnauthenticated
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return user.Identity{}, apperror.ErrUnauthenticated
	}

	return user.Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
	}, nil
}

func bearerToken(authorization string) (string, bool) {
	fields := strings.Fields(authorization)
	if len(fields) != 2 || !strings.EqualFold(fields[0], bearerScheme) {
		return "", false
	}
	return fields[1], true
}
