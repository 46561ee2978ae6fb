package oidc

import (
	"net/http"
	"testing"

	"roboterms/internal/domain"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		token  string
		code   string
	}{
		{name: "absent", header: "", code: domain.CodeMissingAuthHeader},
		{name: "blank", header: "   ", code: domain.CodeMissingAuthHeader},
		{name: "wrong scheme", header: "Basic abc", code: domain.CodeInvalidAuthHeader},
		{name: "scheme only", header: "Bearer", code: domain.CodeInvalidAuthHeader},
		{name: "extra parts", header: "Bearer abc def", code: domain.CodeInvalidAuthHeader},
		{name: "ok", header: "Bearer abc.def.ghi", token: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer abc", token: "abc"},
		{name: "mixed case scheme", header: "BeArEr abc", token: "abc"},
		{name: "extra whitespace", header: "  Bearer \t abc  ", token: "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := ExtractBearerToken(tc.header)
			if tc.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if token != tc.token {
					t.Fatalf("expected token %q, got %q", tc.token, token)
				}
				return
			}
			authErr, ok := domain.IsAuthError(err)
			if !ok {
				t.Fatalf("expected auth error, got %v", err)
			}
			if authErr.Code != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, authErr.Code)
			}
			if authErr.Status != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", authErr.Status)
			}
		})
	}
}

func TestExtractBearerTokenDescriptions(t *testing.T) {
	_, err := ExtractBearerToken("Token abc")
	authErr, _ := domain.IsAuthError(err)
	if authErr == nil || authErr.Description != `Authorization header must start with "Bearer".` {
		t.Fatalf("unexpected error %v", err)
	}
	_, err = ExtractBearerToken("Bearer")
	authErr, _ = domain.IsAuthError(err)
	if authErr == nil || authErr.Description != "Auth header invalid.  Must contain bearer token." {
		t.Fatalf("unexpected error %v", err)
	}
}
