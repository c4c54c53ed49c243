package model

import (
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"storefront/internal/domain"
	"storefront/internal/events"
)

// BasketEvent is the payload of events.BasketChanged.
type BasketEvent struct {
	Items []*domain.Product
}

// OrderLineFilter decides whether a basket item is sent as an order line.
type OrderLineFilter func(p *domain.Product) bool

// PricedOnly drops priceless items from order lines.
func PricedOnly(p *domain.Product) bool {
	return p.Priced()
}

// AllItems keeps every item.
func AllItems(*domain.Product) bool {
	return true
}

// Basket is the set of products the visitor intends to buy, in insertion order.
type Basket struct {
	Notifier
	items []*domain.Product
}

func NewBasket(bus Emitter, logger *log.Entry) *Basket {
	return &Basket{Notifier: NewNotifier(bus, logger)}
}

// AddItem appends p unless an item with the same ID is present.
func (b *Basket) AddItem(p *domain.Product) {
	if !b.Contains(p.ID) {
		b.items = append(b.items, p)
	}
	b.changed()
}

// RemoveItem drops the item with p's ID.
func (b *Basket) RemoveItem(p *domain.Product) {
	kept := b.items[:0:0]
	for _, item := range b.items {
		if item.ID != p.ID {
			kept = append(kept, item)
		}
	}
	b.items = kept
	b.changed()
}

// Clear empties the basket without notifying.
func (b *Basket) Clear() {
	b.items = nil
}

func (b *Basket) Items() []*domain.Product {
	return b.items
}

func (b *Basket) Len() int {
	return len(b.items)
}

func (b *Basket) Contains(id string) bool {
	for _, item := range b.items {
		if item.ID == id {
			return true
		}
	}
	return false
}

// Total sums item prices; priceless items count as zero.
func (b *Basket) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.items {
		total = total.Add(item.PriceOrZero())
	}
	return total
}

// ItemIDs returns item identifiers in basket order.
func (b *Basket) ItemIDs() []string {
	return b.OrderLineIDs(AllItems)
}

// OrderLineIDs returns identifiers of the items keep accepts.
func (b *Basket) OrderLineIDs(keep OrderLineFilter) []string {
	if keep == nil {
		keep = AllItems
	}
	ids := make([]string, 0, len(b.items))
	for _, item := range b.items {
		if keep(item) {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// PlaceOrder announces checkout. An empty basket does nothing.
func (b *Basket) PlaceOrder() {
	if len(b.items) == 0 {
		return
	}
	b.EmitChanges(events.BasketMakeOrder, nil)
}

func (b *Basket) changed() {
	b.EmitChanges(events.BasketChanged, BasketEvent{Items: b.items})
}
