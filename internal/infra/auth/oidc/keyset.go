package oidc

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"roboterms/internal/domain"

	"golang.org/x/sync/singleflight"
)

const (
	defaultKeySetTTL          = 5 * time.Minute
	defaultKeySetFetchTimeout = 5 * time.Second
	defaultKeySetAttempts     = 3
	defaultKeySetRetryBase    = 200 * time.Millisecond
	defaultKeySetRetryMax     = 2 * time.Second
	defaultMinForcedRefresh   = 30 * time.Second
)

type JSONWebKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use,omitempty"`
	N   string `json:"n,omitempty"`
	E   string `json:"e,omitempty"`
}

// KeySet keeps the provider's order; the first key with a matching kid wins.
type KeySet struct {
	Keys []JSONWebKey `json:"keys"`
}

func (s KeySet) Find(kid string) (JSONWebKey, bool) {
	for _, key := range s.Keys {
		if key.Kid == kid {
			return key, true
		}
	}
	return JSONWebKey{}, false
}

// KeySetFetcher downloads the provider's published key set. With a positive
// TTL the last good set is reused until it expires; it is never served past
// that point.
type KeySetFetcher struct {
	url          string
	httpClient   *http.Client
	ttl          time.Duration
	fetchTimeout time.Duration
	attempts     int
	retryBase    time.Duration
	retryMax     time.Duration
	minForced    time.Duration
	now          func() time.Time

	group singleflight.Group

	mu         sync.RWMutex
	keys       KeySet
	fetchedAt  time.Time
	generation uint64
}

type FetcherOption func(*KeySetFetcher)

func WithFetcherHTTPClient(client *http.Client) FetcherOption {
	return func(f *KeySetFetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithCacheTTL sets how long a fetched set is reused. Zero disables reuse.
func WithCacheTTL(ttl time.Duration) FetcherOption {
	return func(f *KeySetFetcher) {
		if ttl >= 0 {
			f.ttl = ttl
		}
	}
}

func WithFetchTimeout(timeout time.Duration) FetcherOption {
	return func(f *KeySetFetcher) {
		if timeout > 0 {
			f.fetchTimeout = timeout
		}
	}
}

func WithRetry(attempts int, base, maxDelay time.Duration) FetcherOption {
	return func(f *KeySetFetcher) {
		if attempts > 0 {
			f.attempts = attempts
		}
		if base >= 0 {
			f.retryBase = base
		}
		if maxDelay >= base {
			f.retryMax = maxDelay
		}
	}
}

// WithMinForcedRefresh bounds how often an unknown kid may force a download
// of a set that is still within its TTL.
func WithMinForcedRefresh(interval time.Duration) FetcherOption {
	return func(f *KeySetFetcher) {
		if interval >= 0 {
			f.minForced = interval
		}
	}
}

func withClock(now func() time.Time) FetcherOption {
	return func(f *KeySetFetcher) {
		f.now = now
	}
}

func NewKeySetFetcher(url string, opts ...FetcherOption) *KeySetFetcher {
	f := &KeySetFetcher{
		url:          url,
		httpClient:   http.DefaultClient,
		ttl:          defaultKeySetTTL,
		fetchTimeout: defaultKeySetFetchTimeout,
		attempts:     defaultKeySetAttempts,
		retryBase:    defaultKeySetRetryBase,
		retryMax:     defaultKeySetRetryMax,
		minForced:    defaultMinForcedRefresh,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *KeySetFetcher) URL() string {
	return f.url
}

// Fetch returns the current key set, downloading it when nothing fresh is held.
func (f *KeySetFetcher) Fetch(ctx context.Context) (KeySet, error) {
	keys, _, _, err := f.current(ctx)
	return keys, err
}

// Lookup finds kid in the key set. A miss against a reused set triggers one
// forced refresh so rotated keys are picked up, at most once per minForced.
func (f *KeySetFetcher) Lookup(ctx context.Context, kid string) (JSONWebKey, bool, error) {
	keys, gen, reused, err := f.current(ctx)
	if err != nil {
		return JSONWebKey{}, false, err
	}
	if key, ok := keys.Find(kid); ok {
		return key, true, nil
	}
	if !reused || !f.forcedRefreshAllowed() {
		return JSONWebKey{}, false, nil
	}
	keys, err = f.refresh(ctx, gen)
	if err != nil {
		return JSONWebKey{}, false, err
	}
	key, ok := keys.Find(kid)
	return key, ok, nil
}

func (f *KeySetFetcher) current(ctx context.Context) (KeySet, uint64, bool, error) {
	f.mu.RLock()
	keys, gen, fresh := f.keys, f.generation, f.freshLocked()
	f.mu.RUnlock()
	if fresh {
		return keys, gen, true, nil
	}
	keys, err := f.refresh(ctx, gen)
	return keys, gen, false, err
}

func (f *KeySetFetcher) forcedRefreshAllowed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return !f.now().Before(f.fetchedAt.Add(f.minForced))
}

func (f *KeySetFetcher) freshLocked() bool {
	if f.ttl <= 0 || f.generation == 0 {
		return false
	}
	return f.now().Before(f.fetchedAt.Add(f.ttl))
}

// refresh collapses concurrent downloads into one. seen is the generation the
// caller observed; if another caller already replaced it with a fresh set,
// that set is returned without another round trip.
func (f *KeySetFetcher) refresh(ctx context.Context, seen uint64) (KeySet, error) {
	ch := f.group.DoChan("jwks", func() (any, error) {
		f.mu.RLock()
		if f.generation != seen && f.freshLocked() {
			keys := f.keys
			f.mu.RUnlock()
			return keys, nil
		}
		f.mu.RUnlock()

		keys, err := f.fetchWithRetry(context.WithoutCancel(ctx))
		if err != nil {
			return KeySet{}, err
		}
		f.mu.Lock()
		f.keys = keys
		f.fetchedAt = f.now()
		f.generation++
		f.mu.Unlock()
		return keys, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return KeySet{}, fmt.Errorf("%w: %w", domain.ErrKeySetUnavailable, res.Err)
		}
		return res.Val.(KeySet), nil
	case <-ctx.Done():
		return KeySet{}, fmt.Errorf("%w: %w", domain.ErrKeySetUnavailable, ctx.Err())
	}
}

func (f *KeySetFetcher) fetchWithRetry(ctx context.Context) (KeySet, error) {
	delay := f.retryBase
	var lastErr error
	for attempt := 0; attempt < f.attempts; attempt++ {
		if attempt > 0 {
			if err := sleepWithContext(ctx, delay); err != nil {
				return KeySet{}, err
			}
			delay *= 2
			if delay > f.retryMax {
				delay = f.retryMax
			}
		}
		keys, err := f.fetchOnce(ctx)
		if err == nil {
			return keys, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return KeySet{}, ctx.Err()
		}
	}
	return KeySet{}, lastErr
}

func (f *KeySetFetcher) fetchOnce(ctx context.Context) (KeySet, error) {
	ctx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return KeySet{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return KeySet{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return KeySet{}, fmt.Errorf("jwks fetch failed: status %d", resp.StatusCode)
	}
	var payload struct {
		Keys *[]JSONWebKey `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return KeySet{}, fmt.Errorf("decode jwks: %w", err)
	}
	if payload.Keys == nil {
		return KeySet{}, errors.New("jwks document has no keys member")
	}
	return KeySet{Keys: *payload.Keys}, nil
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (k JSONWebKey) RSAPublicKey() (*rsa.PublicKey, error) {
	if k.Kty != "RSA" {
		return nil, fmt.Errorf("unsupported key type %q", k.Kty)
	}
	if k.N == "" || k.E == "" {
		return nil, errors.New("missing rsa params")
	}
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	n := new(big.Int).SetBytes(nBytes)
	e := new(big.Int).SetBytes(eBytes).Int64()
	if e <= 0 || e > int64(^uint32(0)) {
		return nil, errors.New("invalid rsa exponent")
	}
	return &rsa.PublicKey{
		N: n,
		E: int(e),
	}, nil
}
