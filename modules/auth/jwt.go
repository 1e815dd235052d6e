package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenInvalid is returned for any signature, algorithm or format failure.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when the current time is at or past the expiry.
	ErrTokenExpired = errors.New("token has expired")
	// ErrMissingSecret is returned when the signing key is not configured.
	ErrMissingSecret = errors.New("jwt signing secret is not configured")
)

// DefaultTokenDuration is the access token lifetime when none is configured.
const DefaultTokenDuration = 24 * time.Hour

// signingMethod is the only algorithm issued and accepted.
var signingMethod = jwt.SigningMethodHS256

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	SecretKey     string
	TokenDuration time.Duration
	Issuer        string
}

// JWTClaims represents the custom claims for JWT tokens.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies stateless access tokens. It holds only
// immutable state and is safe for concurrent use.
type JWTManager struct {
	secret   []byte
	duration time.Duration
	issuer   string
	now      func() time.Time
}

// JWTOption customizes a JWTManager.
type JWTOption func(*JWTManager)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) JWTOption {
	return func(m *JWTManager) {
		m.now = now
	}
}

// NewJWTManager creates a new JWTManager with the given configuration.
// It fails when the secret is empty so that a misconfigured process cannot start.
func NewJWTManager(config JWTConfig, opts ...JWTOption) (*JWTManager, error) {
	if config.SecretKey == "" {
		return nil, ErrMissingSecret
	}
	duration := config.TokenDuration
	if duration <= 0 {
		duration = DefaultTokenDuration
	}

	m := &JWTManager{
		secret:   []byte(config.SecretKey),
		duration: duration,
		issuer:   config.Issuer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue signs a new token for the given user. Every call yields a distinct
// token because each carries its own jti.
func (m *JWTManager) Issue(userID, email string) (string, error) {
	now := m.now()
	claims := JWTClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(signingMethod, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify validates the signature, algorithm, issuer and expiry of a token
// and returns its claims. It never touches the database.
func (m *JWTManager) Verify(tokenString string) (*JWTClaims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, parserOpts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// TokenDuration returns the configured token lifetime.
func (m *JWTManager) TokenDuration() time.Duration {
	return m.duration
}

// ExpiresIn returns the token lifetime in seconds.
func (m *JWTManager) ExpiresIn() int64 {
	return int64(m.duration.Seconds())
}
