package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"roboterms/internal/config"
	"roboterms/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

func newTestVerifier(t *testing.T, jwks string) *Verifier {
	t.Helper()
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.String() == testJWKSURL {
				return jsonResponse(http.StatusOK, jwks), nil
			}
			return jsonResponse(http.StatusNotFound, `{}`), nil
		}),
	}
	verifier, err := NewVerifier(testConfig(), WithHTTPClient(client))
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	return verifier
}

func TestVerify_ValidToken(t *testing.T) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	verifier := newTestVerifier(t, buildJWKS(t, &privKey.PublicKey, "kid-1"))
	token := signToken(t, privKey, "kid-1", validClaims("post:company", "delete:company"))

	claims, err := verifier.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "auth0|user-1" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.Issuer != "https://roboterms.test/" {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != testAudience {
		t.Fatalf("unexpected audience %v", claims.Audience)
	}
	if len(claims.Permissions) != 2 || claims.Permissions[0] != "post:company" {
		t.Fatalf("unexpected permissions %v", claims.Permissions)
	}
	if claims.ExpiresAt.IsZero() {
		t.Fatal("expected expiry to be populated")
	}
}

func TestVerify_PermissionsClaimAbsentIsNil(t *testing.T) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	verifier := newTestVerifier(t, buildJWKS(t, &privKey.PublicKey, "kid-1"))
	claims := validClaims()
	delete(claims, "permissions")

	got, err := verifier.Verify(context.Background(), signToken(t, privKey, "kid-1", claims))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Permissions != nil {
		t.Fatalf("expected nil permissions, got %v", got.Permissions)
	}

	got, err = verifier.Verify(context.Background(), signToken(t, privKey, "kid-1", validClaims()))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Permissions == nil || len(got.Permissions) != 0 {
		t.Fatalf("expected empty non-nil permissions, got %#v", got.Permissions)
	}
}

func TestVerify_Rejections(t *testing.T) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	verifier := newTestVerifier(t, buildJWKS(t, &privKey.PublicKey, "kid-1"))

	withClaim := func(key string, value any) jwt.MapClaims {
		claims := validClaims("post:company")
		if value == nil {
			delete(claims, key)
		} else {
			claims[key] = value
		}
		return claims
	}
	hmacToken := func() string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
		token.Header["kid"] = "kid-1"
		signed, err := token.SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("sign hmac: %v", err)
		}
		return signed
	}

	cases := []struct {
		name        string
		token       string
		code        string
		status      int
		description string
	}{
		{
			name:        "garbage",
			token:       "not-a-jwt",
			code:        domain.CodeInvalidHeader,
			status:      http.StatusUnauthorized,
			description: "Authorization malformed.",
		},
		{
			name:        "missing kid",
			token:       signToken(t, privKey, "", validClaims()),
			code:        domain.CodeInvalidHeader,
			status:      http.StatusUnauthorized,
			description: "Authorization malformed.",
		},
		{
			name:        "unknown kid",
			token:       signToken(t, privKey, "kid-unknown", validClaims()),
			code:        domain.CodeInvalidHeader,
			status:      http.StatusBadRequest,
			description: "Unable to find the appropriate key.",
		},
		{
			name:        "expired",
			token:       signToken(t, privKey, "kid-1", withClaim("exp", time.Now().Add(-time.Hour).Unix())),
			code:        domain.CodeTokenExpired,
			status:      http.StatusUnauthorized,
			description: "Token expired.",
		},
		{
			name:        "wrong audience",
			token:       signToken(t, privKey, "kid-1", withClaim("aud", "someone-else")),
			code:        domain.CodeInvalidClaims,
			status:      http.StatusUnauthorized,
			description: "Incorrect claims. Please, check the audience and issuer.",
		},
		{
			name:   "missing audience",
			token:  signToken(t, privKey, "kid-1", withClaim("aud", nil)),
			code:   domain.CodeInvalidClaims,
			status: http.StatusUnauthorized,
		},
		{
			name:   "wrong issuer",
			token:  signToken(t, privKey, "kid-1", withClaim("iss", "https://evil.test/")),
			code:   domain.CodeInvalidClaims,
			status: http.StatusUnauthorized,
		},
		{
			name:   "missing expiry",
			token:  signToken(t, privKey, "kid-1", withClaim("exp", nil)),
			code:   domain.CodeInvalidClaims,
			status: http.StatusUnauthorized,
		},
		{
			name:        "bad signature",
			token:       signToken(t, otherKey, "kid-1", validClaims()),
			code:        domain.CodeInvalidHeader,
			status:      http.StatusBadRequest,
			description: "Unable to parse authentication token.",
		},
		{
			name:   "disallowed algorithm",
			token:  hmacToken(),
			code:   domain.CodeInvalidHeader,
			status: http.StatusBadRequest,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), tc.token)
			authErr, ok := domain.IsAuthError(err)
			if !ok {
				t.Fatalf("expected auth error, got %v", err)
			}
			if authErr.Code != tc.code || authErr.Status != tc.status {
				t.Fatalf("expected %s/%d, got %s/%d (%s)", tc.code, tc.status, authErr.Code, authErr.Status, authErr.Description)
			}
			if tc.description != "" && authErr.Description != tc.description {
				t.Fatalf("expected description %q, got %q", tc.description, authErr.Description)
			}
		})
	}
}

func TestVerify_KeySetUnavailable(t *testing.T) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}),
	}
	fetcher := NewKeySetFetcher(testJWKSURL, WithFetcherHTTPClient(client), WithRetry(1, 0, 0))
	verifier, err := NewVerifier(testConfig(), WithKeySetFetcher(fetcher))
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	_, err = verifier.Verify(context.Background(), signToken(t, privKey, "kid-1", validClaims()))
	if !errors.Is(err, domain.ErrKeySetUnavailable) {
		t.Fatalf("expected ErrKeySetUnavailable, got %v", err)
	}
	if _, ok := domain.IsAuthError(err); ok {
		t.Fatal("fetch failures must not be reported as auth errors")
	}
}

func TestVerify_MalformedTokenSkipsKeyFetch(t *testing.T) {
	var calls int32
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			atomic.AddInt32(&calls, 1)
			return jsonResponse(http.StatusOK, `{"keys":[]}`), nil
		}),
	}
	verifier, err := NewVerifier(testConfig(), WithHTTPClient(client))
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	if _, err := verifier.Verify(context.Background(), "a.b"); err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("expected no key fetch, got %d", got)
	}
}

func TestNewVerifier_RequiresAuthConfig(t *testing.T) {
	_, err := NewVerifier(config.Config{JWKSFetchTimeout: time.Second})
	if err == nil || !strings.Contains(err.Error(), "AUTH0_DOMAIN") {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestVerify_UsesConfiguredJWKSURL(t *testing.T) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	jwks := buildJWKS(t, &privKey.PublicKey, "kid-1")
	var seen string
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			seen = req.URL.String()
			return jsonResponse(http.StatusOK, jwks), nil
		}),
	}
	verifier, err := NewVerifier(testConfig(), WithHTTPClient(client), WithJWKSURL("https://keys.test/jwks"))
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	if _, err := verifier.Verify(context.Background(), signToken(t, privKey, "kid-1", validClaims())); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if seen != "https://keys.test/jwks" {
		t.Fatalf("unexpected jwks url %q", seen)
	}
}
