package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type counter struct {
	value int
}

type stubRecorder struct {
	started, expired int
}

func (s *stubRecorder) RecordSessionStarted() { s.started++ }
func (s *stubRecorder) RecordSessionEnded(expired bool) {
	if expired {
		s.expired++
	}
}

func newCounterRegistry(c *clock, rec Recorder) *Registry[*counter] {
	return New(time.Minute, func(context.Context, string) (*counter, error) {
		return &counter{}, nil
	}, WithClock(c.Now), WithRecorder(rec))
}

func TestIssueAndWith(t *testing.T) {
	c := &clock{now: time.Unix(0, 0)}
	rec := &stubRecorder{}
	reg := newCounterRegistry(c, rec)

	id, err := reg.Issue(context.Background())
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.True(t, reg.Exists(id))
	assert.Equal(t, 1, rec.started)

	for range 3 {
		require.NoError(t, reg.With(id, func(v *counter) error {
			v.value++
			return nil
		}))
	}
	require.NoError(t, reg.With(id, func(v *counter) error {
		assert.Equal(t, 3, v.value)
		return nil
	}))

	boom := errors.New("boom")
	assert.ErrorIs(t, reg.With(id, func(*counter) error { return boom }), boom)
	assert.ErrorIs(t, reg.With("nope", func(*counter) error { return nil }), ErrSessionNotFound)
}

func TestIdleSessionsExpire(t *testing.T) {
	c := &clock{now: time.Unix(0, 0)}
	rec := &stubRecorder{}
	reg := newCounterRegistry(c, rec)

	active, err := reg.Issue(context.Background())
	require.NoError(t, err)
	idle, err := reg.Issue(context.Background())
	require.NoError(t, err)

	c.Advance(40 * time.Second)
	require.NoError(t, reg.With(active, func(*counter) error { return nil }))
	c.Advance(40 * time.Second)

	assert.True(t, reg.Exists(active))
	assert.False(t, reg.Exists(idle))
	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, rec.expired)

	c.Advance(time.Minute)
	assert.ErrorIs(t, reg.With(active, func(*counter) error { return nil }), ErrSessionNotFound)
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 2, rec.expired)
}

func TestFactoryError(t *testing.T) {
	reg := New(time.Minute, func(context.Context, string) (*counter, error) {
		return nil, errors.New("no page")
	})
	_, err := reg.Issue(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, reg.Len())
}

func TestWithSerializesSession(t *testing.T) {
	reg := New(time.Minute, func(context.Context, string) (*counter, error) {
		return &counter{}, nil
	})
	id, err := reg.Issue(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reg.With(id, func(v *counter) error {
				v.value++
				return nil
			})
		}()
	}
	wg.Wait()

	require.NoError(t, reg.With(id, func(v *counter) error {
		assert.Equal(t, 50, v.value)
		return nil
	}))
}

func TestRunStopsWithContext(t *testing.T) {
	reg := New(time.Minute, func(context.Context, string) (*counter, error) {
		return &counter{}, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLimitRejectsUntilSessionsExpire(t *testing.T) {
	c := &clock{now: time.Unix(0, 0)}
	rec := &stubRecorder{}
	reg := New(time.Minute, func(context.Context, string) (*counter, error) {
		return &counter{}, nil
	}, WithClock(c.Now), WithRecorder(rec), WithLimit(2))
	ctx := context.Background()

	for range 2 {
		_, err := reg.Issue(ctx)
		require.NoError(t, err)
	}
	for range 100 {
		_, err := reg.Issue(ctx)
		require.ErrorIs(t, err, ErrTooManySessions)
	}
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, 2, rec.started)

	// a full registry sweeps expired sessions before refusing
	c.Advance(time.Minute)
	_, err := reg.Issue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 2, rec.expired)
}

func TestLimitFreesSlotOnFactoryError(t *testing.T) {
	fail := true
	reg := New(time.Minute, func(context.Context, string) (*counter, error) {
		if fail {
			return nil, errors.New("backend down")
		}
		return &counter{}, nil
	}, WithLimit(1))

	_, err := reg.Issue(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTooManySessions)

	fail = false
	_, err = reg.Issue(context.Background())
	require.NoError(t, err)
}
