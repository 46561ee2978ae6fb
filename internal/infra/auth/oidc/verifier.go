package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"roboterms/internal/config"
	"roboterms/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks bearer tokens issued by the configured Auth0 tenant against
// the tenant's published key set.
type Verifier struct {
	issuer     string
	audience   string
	algorithms []string
	keys       *KeySetFetcher
	timeFunc   func() time.Time

	fetcherOpts []FetcherOption
	jwksURL     string
}

type Option func(*Verifier)

func WithHTTPClient(client *http.Client) Option {
	return func(v *Verifier) {
		v.fetcherOpts = append(v.fetcherOpts, WithFetcherHTTPClient(client))
	}
}

func WithJWKSURL(url string) Option {
	return func(v *Verifier) {
		v.jwksURL = url
	}
}

func WithKeySetFetcher(fetcher *KeySetFetcher) Option {
	return func(v *Verifier) {
		v.keys = fetcher
	}
}

func WithTimeFunc(now func() time.Time) Option {
	return func(v *Verifier) {
		v.timeFunc = now
	}
}

func NewVerifier(cfg config.Config, opts ...Option) (*Verifier, error) {
	if err := cfg.ValidateAuth(); err != nil {
		return nil, err
	}
	v := &Verifier{
		issuer:     cfg.Issuer(),
		audience:   cfg.APIAudience,
		algorithms: append([]string(nil), cfg.Algorithms...),
		jwksURL:    cfg.JWKSURL(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.keys == nil {
		fetcherOpts := append([]FetcherOption{
			WithCacheTTL(cfg.JWKSCacheTTL),
			WithFetchTimeout(cfg.JWKSFetchTimeout),
		}, v.fetcherOpts...)
		v.keys = NewKeySetFetcher(v.jwksURL, fetcherOpts...)
	}
	return v, nil
}

// Verify returns the token's claims, an *domain.AuthError describing why the
// token was rejected, or a wrapped domain.ErrKeySetUnavailable when the key
// set could not be downloaded.
func (v *Verifier) Verify(ctx context.Context, token string) (domain.Claims, error) {
	unverified, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return domain.Claims{}, errMalformed()
	}
	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return domain.Claims{}, errMalformed()
	}

	key, found, err := v.keys.Lookup(ctx, kid)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("verify token: %w", err)
	}
	if !found {
		return domain.Claims{}, domain.NewAuthError(domain.CodeInvalidHeader, "Unable to find the appropriate key.", http.StatusBadRequest)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.algorithms),
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	}
	if v.timeFunc != nil {
		opts = append(opts, jwt.WithTimeFunc(v.timeFunc))
	}
	parsed, err := jwt.NewParser(opts...).Parse(token, func(*jwt.Token) (any, error) {
		return key.RSAPublicKey()
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.Claims{}, domain.NewAuthError(domain.CodeTokenExpired, "Token expired.", http.StatusUnauthorized)
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return domain.Claims{}, domain.NewAuthError(domain.CodeInvalidClaims, "Incorrect claims. Please, check the audience and issuer.", http.StatusUnauthorized)
	case err != nil || !parsed.Valid:
		return domain.Claims{}, domain.NewAuthError(domain.CodeInvalidHeader, "Unable to parse authentication token.", http.StatusBadRequest)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Claims{}, domain.NewAuthError(domain.CodeInvalidHeader, "Unable to parse authentication token.", http.StatusBadRequest)
	}
	return claimsFromMap(mapClaims), nil
}

func errMalformed() *domain.AuthError {
	return domain.NewAuthError(domain.CodeInvalidHeader, "Authorization malformed.", http.StatusUnauthorized)
}

func claimsFromMap(m jwt.MapClaims) domain.Claims {
	claims := domain.Claims{Raw: map[string]any(m)}
	claims.Issuer, _ = m.GetIssuer()
	claims.Subject, _ = m.GetSubject()
	if aud, err := m.GetAudience(); err == nil {
		claims.Audience = []string(aud)
	}
	if exp, err := m.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if raw, ok := m["permissions"].([]any); ok {
		claims.Permissions = make([]string, 0, len(raw))
		for _, p := range raw {
			if s, ok := p.(string); ok {
				claims.Permissions = append(claims.Permissions, s)
			}
		}
	}
	return claims
}
