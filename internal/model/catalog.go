package model

import (
	log "github.com/sirupsen/logrus"

	"storefront/internal/domain"
	"storefront/internal/events"
)

// CatalogEvent is the payload of events.CatalogUpdated.
type CatalogEvent struct {
	Catalog []*domain.Product
}

// Catalog holds the product list shown on the page.
type Catalog struct {
	Notifier
	items []*domain.Product
}

func NewCatalog(bus Emitter, logger *log.Entry) *Catalog {
	return &Catalog{Notifier: NewNotifier(bus, logger)}
}

// SetCatalog replaces the list. Every item starts outside the basket.
func (c *Catalog) SetCatalog(products []domain.Product) {
	items := make([]*domain.Product, 0, len(products))
	for i := range products {
		p := products[i]
		p.InBasket = false
		items = append(items, &p)
	}
	c.items = items
	c.EmitChanges(events.CatalogUpdated, CatalogEvent{Catalog: c.items})
}

// Catalog returns the current list.
func (c *Catalog) Catalog() []*domain.Product {
	return c.items
}

// Find returns the catalog entry with id, or nil.
func (c *Catalog) Find(id string) *domain.Product {
	for _, p := range c.items {
		if p.ID == id {
			return p
		}
	}
	return nil
}
