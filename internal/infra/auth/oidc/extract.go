package oidc

import (
	"net/http"
	"strings"

	"roboterms/internal/domain"
)

// ExtractBearerToken pulls the token out of an Authorization header value.
// An empty value means the header was absent.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", domain.NewAuthError(domain.CodeMissingAuthHeader, "Missing Authorization header", http.StatusUnauthorized)
	}
	parts := strings.Fields(header)
	if len(parts) == 0 {
		return "", domain.NewAuthError(domain.CodeMissingAuthHeader, "Missing Authorization header", http.StatusUnauthorized)
	}
	if !strings.EqualFold(parts[0], "bearer") {
		return "", domain.NewAuthError(domain.CodeInvalidAuthHeader, `Authorization header must start with "Bearer".`, http.StatusUnauthorized)
	}
	if len(parts) != 2 {
		return "", domain.NewAuthError(domain.CodeInvalidAuthHeader, "Auth header invalid.  Must contain bearer token.", http.StatusUnauthorized)
	}
	return parts[1], nil
}
