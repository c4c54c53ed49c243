package view

import (
	"github.com/shopspring/decimal"

	"storefront/internal/dom"
)

// Success confirms a placed order.
type Success struct {
	root        *dom.Element
	description *dom.Element
	closeButton *dom.Element
}

func NewSuccess(root *dom.Element, onClose func()) (*Success, error) {
	s := &Success{root: root}
	var err error
	if s.description, err = ensure(root, "success", ".order-success__description"); err != nil {
		return nil, err
	}
	if s.closeButton, err = ensure(root, "success", ".order-success__close"); err != nil {
		return nil, err
	}
	if onClose != nil {
		s.closeButton.On(dom.EventClick, func(ev *dom.Event) {
			ev.StopPropagation()
			onClose()
		})
	}
	return s, nil
}

// Render shows the charged total and tags the view with the order id.
func (s *Success) Render(orderID string, total decimal.Decimal) *dom.Element {
	s.description.SetText("Charged " + formatAmount(total))
	s.root.SetAttr("data-id", orderID)
	return s.root
}

func (s *Success) Description() string {
	return s.description.Text()
}

func (s *Success) CloseButton() *dom.Element {
	return s.closeButton
}
