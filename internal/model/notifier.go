package model

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// Emitter is the part of the event bus models depend on.
type Emitter interface {
	Emit(name string, payload any) error
}

// Notifier announces model changes on the bus. Models embed it.
type Notifier struct {
	events Emitter
	logger *log.Entry
}

// NewNotifier binds a notifier to a bus. A nil logger discards output.
func NewNotifier(events Emitter, logger *log.Entry) Notifier {
	if logger == nil {
		l := log.New()
		l.SetOutput(io.Discard)
		logger = log.NewEntry(l)
	}
	return Notifier{events: events, logger: logger}
}

// EmitChanges emits name with payload. Delivery errors are logged.
func (n Notifier) EmitChanges(name string, payload any) {
	if n.events == nil {
		return
	}
	if err := n.events.Emit(name, payload); err != nil {
		n.logger.WithError(err).WithField("event", name).Warn("change notification failed")
	}
}
