package view

import (
	"strconv"

	"github.com/shopspring/decimal"

	"storefront/internal/dom"
	"storefront/internal/domain"
)

// CardActions are the callbacks a card reports to.
type CardActions struct {
	OnClick func()
}

// Card renders a product in the gallery or in the basket list.
// Category, image, index and button are optional template parts.
type Card struct {
	root     *dom.Element
	title    *dom.Element
	price    *dom.Element
	category *dom.Element
	image    *dom.Element
	index    *dom.Element
	button   *dom.Element
}

func NewCard(root *dom.Element, actions *CardActions) (*Card, error) {
	c := &Card{root: root}
	var err error
	if c.title, err = ensure(root, "card", ".card__title"); err != nil {
		return nil, err
	}
	if c.price, err = ensure(root, "card", ".card__price"); err != nil {
		return nil, err
	}
	c.category = root.Find(".card__category")
	c.image = root.Find(".card__image")
	c.index = root.Find(".basket__item-index")
	c.button = root.Find(".card__button")

	if actions != nil && actions.OnClick != nil {
		target := root
		if c.button != nil {
			target = c.button
		}
		target.On(dom.EventClick, func(*dom.Event) { actions.OnClick() })
	}
	return c, nil
}

// Render fills the card from p and returns its root element.
func (c *Card) Render(p *domain.Product) *dom.Element {
	c.SetTitle(p.Title)
	c.SetPrice(p.Price)
	c.SetCategory(p.Category)
	c.SetImage(p.Image, p.Title)
	c.root.SetAttr("data-id", p.ID)
	return c.root
}

func (c *Card) Element() *dom.Element {
	return c.root
}

func (c *Card) SetTitle(title string) {
	c.title.SetText(title)
}

func (c *Card) SetPrice(price decimal.NullDecimal) {
	c.price.SetText(formatPrice(price))
}

func (c *Card) SetCategory(category domain.Category) {
	if c.category == nil {
		return
	}
	c.category.SetText(string(category))
	c.category.SetClass("card__category card__category_" + category.Modifier())
}

func (c *Card) SetImage(src, alt string) {
	if c.image == nil {
		return
	}
	c.image.SetImage(src, alt)
}

// SetIndex numbers a basket line, starting at 1.
func (c *Card) SetIndex(n int) {
	if c.index == nil {
		return
	}
	c.index.SetText(strconv.Itoa(n))
}

// Button returns the action button, nil when the template has none.
func (c *Card) Button() *dom.Element {
	return c.button
}
