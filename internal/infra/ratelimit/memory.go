package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"roboterms/internal/domain"
)

var ErrCapacityExceeded = errors.New("rate limiter capacity exceeded")

// Memory is a fixed-window limiter for single-instance deployments.
type Memory struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]window
	maxKeys int
}

type window struct {
	hits int
	ends time.Time
}

type MemoryOption func(*Memory)

func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// WithMaxKeys bounds the number of tracked clients. Zero keeps the default.
func WithMaxKeys(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.maxKeys = n
		}
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		now:     time.Now,
		windows: make(map[string]window),
		maxKeys: 10000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Allow(_ context.Context, key string, limit int, period time.Duration) (domain.RateLimitDecision, error) {
	if limit <= 0 {
		return domain.RateLimitDecision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || !now.Before(w.ends) {
		if !ok && len(m.windows) >= m.maxKeys {
			m.sweep(now)
			if len(m.windows) >= m.maxKeys {
				return domain.RateLimitDecision{}, ErrCapacityExceeded
			}
		}
		w = window{ends: now.Add(period)}
	}
	if w.hits >= limit {
		m.windows[key] = w
		return domain.RateLimitDecision{Limit: limit, ResetAt: w.ends}, nil
	}
	w.hits++
	m.windows[key] = w
	return domain.RateLimitDecision{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - w.hits,
		ResetAt:   w.ends,
	}, nil
}

func (m *Memory) sweep(now time.Time) {
	for key, w := range m.windows {
		if !now.Before(w.ends) {
			delete(m.windows, key)
		}
	}
}

func (m *Memory) Close() error { return nil }
