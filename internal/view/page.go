package view

import (
	"strconv"

	log "github.com/sirupsen/logrus"

	"storefront/internal/dom"
	"storefront/internal/events"
)

// Page is the storefront shell: gallery, basket button and counter.
type Page struct {
	emitter
	wrapper      *dom.Element
	basketButton *dom.Element
	counter      *dom.Element
	gallery      *dom.Element
}

func NewPage(root *dom.Element, bus Emitter, logger *log.Entry) (*Page, error) {
	p := &Page{emitter: newEmitter(bus, logger)}
	var err error
	if p.wrapper, err = ensure(root, "page", ".page__wrapper"); err != nil {
		return nil, err
	}
	if p.basketButton, err = ensure(root, "page", ".header__basket"); err != nil {
		return nil, err
	}
	if p.counter, err = ensure(root, "page", ".header__basket-counter"); err != nil {
		return nil, err
	}
	if p.gallery, err = ensure(root, "page", ".gallery"); err != nil {
		return nil, err
	}

	p.basketButton.On(dom.EventClick, func(*dom.Event) {
		p.emit(events.BasketOpened, nil)
	})
	return p, nil
}

// SetCatalog replaces the gallery cards.
func (p *Page) SetCatalog(cards []*dom.Element) {
	p.gallery.ReplaceChildren(cards...)
}

// SetCounter shows how many items are in the basket.
func (p *Page) SetCounter(n int) {
	p.counter.SetText(strconv.Itoa(n))
}

func (p *Page) Counter() string {
	return p.counter.Text()
}

// SetLocked freezes page scrolling while a modal is open.
func (p *Page) SetLocked(locked bool) {
	p.wrapper.ToggleClass("page__wrapper_locked", locked)
}

func (p *Page) Locked() bool {
	return p.wrapper.HasClass("page__wrapper_locked")
}

func (p *Page) Gallery() *dom.Element {
	return p.gallery
}
