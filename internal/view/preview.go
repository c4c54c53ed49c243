package view

import (
	"storefront/internal/dom"
	"storefront/internal/domain"
)

const (
	labelAddToBasket      = "Add to basket"
	labelRemoveFromBasket = "Remove from basket"
)

// Preview is a full product card with a basket toggle.
type Preview struct {
	*Card
	description *dom.Element
	button      *dom.Element
	inBasket    bool
}

// NewPreview builds a preview; onToggle receives the flag after each toggle.
func NewPreview(root *dom.Element, onToggle func(inBasket bool)) (*Preview, error) {
	card, err := NewCard(root, nil)
	if err != nil {
		return nil, err
	}
	p := &Preview{Card: card}
	if p.description, err = ensure(root, "preview", ".card__text"); err != nil {
		return nil, err
	}
	if p.button, err = ensure(root, "preview", ".card__button"); err != nil {
		return nil, err
	}

	p.button.On(dom.EventClick, func(*dom.Event) {
		p.SetInBasket(!p.inBasket)
		if onToggle != nil {
			onToggle(p.inBasket)
		}
	})
	return p, nil
}

func (p *Preview) Render(product *domain.Product) *dom.Element {
	p.Card.Render(product)
	p.description.SetText(product.Description)
	p.SetInBasket(product.InBasket)
	return p.root
}

// SetInBasket sets the flag and the matching button label.
func (p *Preview) SetInBasket(inBasket bool) {
	p.inBasket = inBasket
	if inBasket {
		p.button.SetText(labelRemoveFromBasket)
		return
	}
	p.button.SetText(labelAddToBasket)
}

func (p *Preview) InBasket() bool {
	return p.inBasket
}

func (p *Preview) Button() *dom.Element {
	return p.button
}
