package domain

import (
	"context"
	"errors"
	"time"
)

const (
	CodeMissingAuthHeader = "missing_auth_header"
	CodeInvalidAuthHeader = "invalid_auth_header"
	CodeInvalidHeader     = "invalid_header"
	CodeTokenExpired      = "token_expired"
	CodeInvalidClaims     = "invalid_claims"
	CodeInvalidToken      = "invalid_token"
	CodeForbidden         = "forbidden"
)

// Claims are the decoded assertions of one verified token. They live for a
// single request and are never cached.
type Claims struct {
	Issuer    string
	Subject   string
	Audience  []string
	ExpiresAt time.Time
	// Permissions is nil when the token carries no permissions claim at all,
	// and empty when the claim is present but grants nothing.
	Permissions []string
	Raw         map[string]any
}

// AuthError is the failure type of the bearer-token gate. It carries its own
// HTTP status and is rendered as {code, description}.
type AuthError struct {
	Code        string
	Description string
	Status      int
}

func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Description
}

func NewAuthError(code, description string, status int) *AuthError {
	return &AuthError{Code: code, Description: description, Status: status}
}

func IsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

type PermissionChecker interface {
	Require(claims Claims, permission string) error
}

type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error)
}
