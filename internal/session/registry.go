// Package session keeps one page session per visitor. Work on a session is
// serialized; different sessions proceed in parallel.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// Factory builds the state of a new session.
type Factory[T any] func(ctx context.Context, id string) (T, error)

// Recorder observes the session count.
type Recorder interface {
	RecordSessionStarted()
	RecordSessionEnded(expired bool)
}

type entry[T any] struct {
	mu        sync.Mutex
	value     T
	expiresAt time.Time
}

// Registry maps visitor IDs to session state and drops sessions that stay
// idle longer than the TTL.
type Registry[T any] struct {
	mu       sync.RWMutex
	sessions map[string]*entry[T]
	ttl      time.Duration
	factory  Factory[T]
	recorder Recorder
	now      func() time.Time
	limit    int
	pending  int
}

type Option func(*options)

type options struct {
	recorder Recorder
	now      func() time.Time
	limit    int
}

func WithRecorder(r Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithLimit caps the number of live sessions. Zero means no cap.
func WithLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func New[T any](ttl time.Duration, factory Factory[T], opts ...Option) *Registry[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry[T]{
		sessions: make(map[string]*entry[T]),
		ttl:      ttl,
		factory:  factory,
		recorder: o.recorder,
		now:      o.now,
		limit:    o.limit,
	}
}

// Issue creates a session and returns its ID. With a limit set, expired
// sessions are swept first and ErrTooManySessions is returned when the
// registry is still full.
func (r *Registry[T]) Issue(ctx context.Context) (string, error) {
	if err := r.reserve(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	value, err := r.factory(ctx, id)

	r.mu.Lock()
	r.pending--
	if err == nil {
		r.sessions[id] = &entry[T]{value: value, expiresAt: r.now().Add(r.ttl)}
	}
	r.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	if r.recorder != nil {
		r.recorder.RecordSessionStarted()
	}
	return id, nil
}

// With runs fn on the session state while holding the session lock, and
// extends the session's lifetime.
func (r *Registry[T]) With(id string, fn func(T) error) error {
	e, err := r.touch(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.value)
}

// Exists reports whether id names a live session.
func (r *Registry[T]) Exists(id string) bool {
	r.mu.RLock()
	e, ok := r.sessions[id]
	live := ok && r.now().Before(e.expiresAt)
	r.mu.RUnlock()
	return live
}

func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops expired sessions and returns how many were dropped.
func (r *Registry[T]) Sweep() int {
	now := r.now()
	r.mu.Lock()
	dropped := 0
	for id, e := range r.sessions {
		if !now.Before(e.expiresAt) {
			delete(r.sessions, id)
			dropped++
		}
	}
	r.mu.Unlock()

	if r.recorder != nil {
		for range dropped {
			r.recorder.RecordSessionEnded(true)
		}
	}
	return dropped
}

// Run sweeps every interval until ctx is done.
func (r *Registry[T]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// reserve claims a slot for a session being built.
func (r *Registry[T]) reserve() error {
	if r.limit > 0 && r.full() {
		r.Sweep()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limit > 0 && len(r.sessions)+r.pending >= r.limit {
		return ErrTooManySessions
	}
	r.pending++
	return nil
}

func (r *Registry[T]) full() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)+r.pending >= r.limit
}

func (r *Registry[T]) touch(id string) (*entry[T], error) {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !now.Before(e.expiresAt) {
		delete(r.sessions, id)
		if r.recorder != nil {
			r.recorder.RecordSessionEnded(true)
		}
		return nil, ErrSessionNotFound
	}
	e.expiresAt = now.Add(r.ttl)
	return e, nil
}
