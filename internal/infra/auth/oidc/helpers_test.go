package oidc

import (
	"bytes"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"roboterms/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testDomain   = "roboterms.test"
	testAudience = "roboterms"
	testJWKSURL  = "https://roboterms.test/.well-known/jwks.json"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func testConfig() config.Config {
	return config.Config{
		Auth0Domain:      testDomain,
		Algorithms:       []string{"RS256"},
		APIAudience:      testAudience,
		JWKSCacheTTL:     5 * time.Minute,
		JWKSFetchTimeout: time.Second,
	}
}

func jwkFor(key *rsa.PublicKey, kid string) map[string]any {
	return map[string]any{
		"kty": "RSA",
		"kid": kid,
		"alg": "RS256",
		"use": "sig",
		"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		"e":   base64.RawURLEncoding.EncodeToString(bigIntToBytes(key.E)),
	}
}

func buildJWKS(t *testing.T, key *rsa.PublicKey, kid string) string {
	t.Helper()
	out, err := json.Marshal(map[string]any{"keys": []map[string]any{jwkFor(key, kid)}})
	if err != nil {
		t.Fatalf("marshal jwks: %v", err)
	}
	return string(out)
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims(permissions ...string) jwt.MapClaims {
	perms := make([]any, 0, len(permissions))
	for _, p := range permissions {
		perms = append(perms, p)
	}
	return jwt.MapClaims{
		"iss":         "https://" + testDomain + "/",
		"aud":         testAudience,
		"sub":         "auth0|user-1",
		"exp":         time.Now().Add(time.Hour).Unix(),
		"iat":         time.Now().Unix(),
		"permissions": perms,
	}
}

func bigIntToBytes(value int) []byte {
	out := []byte{}
	for v := value; v > 0; v >>= 8 {
		out = append([]byte{byte(v & 0xff)}, out...)
	}
	if len(out) == 0 {
		return []byte{0}
	}
	return out
}
