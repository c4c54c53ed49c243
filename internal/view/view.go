// Package view holds render-only components. Each one owns an element subtree,
// exposes setters that mutate it, and reports user actions through the event
// bus or through callbacks supplied by its owner. Views never read models.
package view

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"storefront/internal/dom"
)

// Emitter is the part of the event bus views depend on.
type Emitter interface {
	Emit(name string, payload any) error
}

type emitter struct {
	events Emitter
	logger *log.Entry
}

func newEmitter(events Emitter, logger *log.Entry) emitter {
	if logger == nil {
		l := log.New()
		l.SetOutput(io.Discard)
		logger = log.NewEntry(l)
	}
	return emitter{events: events, logger: logger}
}

func (e emitter) emit(name string, payload any) {
	if e.events == nil {
		return
	}
	if err := e.events.Emit(name, payload); err != nil {
		e.logger.WithError(err).WithField("event", name).Warn("view event delivery failed")
	}
}

// ensure looks up a required element; views fail construction without it.
func ensure(root *dom.Element, view, sel string) (*dom.Element, error) {
	el, err := root.Query(sel)
	if err != nil {
		return nil, fmt.Errorf("%s view: %w", view, err)
	}
	return el, nil
}

const currency = "synapses"

func formatAmount(d decimal.Decimal) string {
	return d.String() + " " + currency
}

func formatPrice(p decimal.NullDecimal) string {
	if !p.Valid {
		return "Priceless"
	}
	return formatAmount(p.Decimal)
}
