package view

import (
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"storefront/internal/dom"
	"storefront/internal/events"
)

const (
	emptyBasketText = "Add products to the basket"
	pricelessTotal  = "Priceless items cannot be bought"
)

// Basket lists basket lines with the total and the checkout button.
type Basket struct {
	emitter
	root   *dom.Element
	list   *dom.Element
	button *dom.Element
	total  *dom.Element
}

func NewBasket(root *dom.Element, bus Emitter, logger *log.Entry) (*Basket, error) {
	b := &Basket{emitter: newEmitter(bus, logger), root: root}
	var err error
	if b.list, err = ensure(root, "basket", ".basket__list"); err != nil {
		return nil, err
	}
	if b.button, err = ensure(root, "basket", ".basket__button"); err != nil {
		return nil, err
	}
	if b.total, err = ensure(root, "basket", ".basket__price"); err != nil {
		return nil, err
	}

	b.button.On(dom.EventClick, func(*dom.Event) {
		b.emit(events.OrderOpened, nil)
	})
	b.SetItems(nil)
	return b, nil
}

// SetItems shows the lines. An empty list shows a placeholder and disables
// checkout.
func (b *Basket) SetItems(items []*dom.Element) {
	if len(items) == 0 {
		b.list.ReplaceChildren(b.root.Document().Create("p", emptyBasketText))
		b.total.SetHidden(true)
		b.button.SetDisabled(true)
		return
	}
	b.list.ReplaceChildren(items...)
	b.total.SetHidden(false)
	b.button.SetDisabled(false)
}

// SetTotal shows the sum. A zero total cannot be ordered.
func (b *Basket) SetTotal(total decimal.Decimal) {
	if total.IsZero() {
		b.total.SetText(pricelessTotal)
		b.button.SetDisabled(true)
		return
	}
	b.total.SetText(formatAmount(total))
}

// Render applies items then total and returns the root element.
func (b *Basket) Render(items []*dom.Element, total decimal.Decimal) *dom.Element {
	b.SetItems(items)
	b.SetTotal(total)
	return b.root
}

func (b *Basket) Element() *dom.Element {
	return b.root
}

func (b *Basket) Button() *dom.Element {
	return b.button
}

func (b *Basket) TotalText() string {
	return b.total.Text()
}
