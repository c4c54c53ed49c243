package events

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// DefaultMaxDepth bounds nested Emit calls made from inside handlers.
const DefaultMaxDepth = 32

// Handler receives the payload of an emitted event. Payload may be nil.
type Handler func(payload any)

// Envelope is delivered to OnAll handlers.
type Envelope struct {
	Name    string
	Payload any
}

// Subscription identifies one registration. The zero value matches nothing.
type Subscription struct {
	id uint64
}

type subscription struct {
	id      uint64
	name    string
	pattern *regexp.Regexp
	all     bool
	handler Handler
	removed bool
}

func (s *subscription) matches(name string) bool {
	switch {
	case s.all:
		return true
	case s.pattern != nil:
		return s.pattern.MatchString(name)
	default:
		return s.name == name
	}
}

// Bus is a synchronous publish/subscribe registry.
//
// Delivery happens on the caller's goroutine, in registration order, depth-first
// for emits made from inside handlers. A Bus is meant to serve one thread of
// control; registration is safe for concurrent use, delivery ordering is only
// defined for a single caller.
type Bus struct {
	mu       sync.Mutex
	subs     []*subscription
	nextID   uint64
	depth    atomic.Int32
	maxDepth int
	logger   *log.Entry
}

// Option configures a Bus.
type Option func(*Bus)

// WithMaxDepth sets how many emits may be nested inside handlers.
func WithMaxDepth(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.maxDepth = n
		}
	}
}

// WithLogger sets the logger used for dropped deliveries and panics.
func WithLogger(logger *log.Entry) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates an empty Bus.
func New(opts ...Option) *Bus {
	discard := log.New()
	discard.SetOutput(io.Discard)
	b := &Bus{
		maxDepth: DefaultMaxDepth,
		logger:   log.NewEntry(discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// On registers handler for the exact event name.
func (b *Bus) On(name string, handler Handler) (Subscription, error) {
	if name == "" {
		return Subscription{}, ErrInvalidName
	}
	return b.add(&subscription{name: name, handler: handler})
}

// OnPattern registers handler for every event name matching pattern.
func (b *Bus) OnPattern(pattern *regexp.Regexp, handler Handler) (Subscription, error) {
	if pattern == nil {
		return Subscription{}, ErrInvalidName
	}
	return b.add(&subscription{name: pattern.String(), pattern: pattern, handler: handler})
}

// OnAll registers handler for every event. It receives an Envelope.
func (b *Bus) OnAll(handler Handler) (Subscription, error) {
	return b.add(&subscription{name: "*", all: true, handler: handler})
}

func (b *Bus) add(sub *subscription) (Subscription, error) {
	if sub.handler == nil {
		return Subscription{}, ErrNilHandler
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub.id = b.nextID
	b.subs = append(b.subs, sub)
	return Subscription{id: sub.id}, nil
}

// Off removes one registration. Unknown or already removed subscriptions are ignored.
func (b *Bus) Off(s Subscription) {
	if s.id == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == s.id {
			sub.removed = true
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// OffAll removes every registration.
func (b *Bus) OffAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		sub.removed = true
	}
	b.subs = nil
}

// Emit delivers payload to every matching handler before returning.
//
// Handlers removed while the event is being delivered are skipped; handlers
// added meanwhile only see later events. A panicking handler does not stop
// delivery to the others; the panic is reported as a *PanicError.
func (b *Bus) Emit(name string, payload any) error {
	if name == "" {
		return ErrInvalidName
	}

	depth := b.depth.Add(1)
	defer b.depth.Add(-1)
	if int(depth) > b.maxDepth {
		b.logger.WithFields(log.Fields{"event": name, "depth": depth}).Error("event recursion limit exceeded, delivery dropped")
		return fmt.Errorf("emit %q at depth %d: %w", name, depth, ErrRecursionLimit)
	}

	var errs []error
	for _, sub := range b.matching(name) {
		if b.removed(sub) {
			continue
		}
		if err := b.deliver(sub, name, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Trigger returns a callback emitting name. When both the callback payload and
// context are maps, context keys are merged over the payload.
func (b *Bus) Trigger(name string, context map[string]any) func(payload any) error {
	return func(payload any) error {
		if context == nil {
			return b.Emit(name, payload)
		}
		merged := make(map[string]any, len(context))
		if m, ok := payload.(map[string]any); ok {
			for k, v := range m {
				merged[k] = v
			}
		} else if payload != nil {
			return b.Emit(name, payload)
		}
		for k, v := range context {
			merged[k] = v
		}
		return b.Emit(name, merged)
	}
}

func (b *Bus) matching(name string) []*subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.matches(name) {
			out = append(out, sub)
		}
	}
	return out
}

func (b *Bus) removed(sub *subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return sub.removed
}

func (b *Bus) deliver(sub *subscription, name string, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithFields(log.Fields{"event": name, "subscription": sub.name, "panic": r}).Error("event handler panicked")
			err = &PanicError{Name: name, Value: r}
		}
	}()
	if sub.all {
		sub.handler(Envelope{Name: name, Payload: payload})
		return nil
	}
	sub.handler(payload)
	return nil
}
