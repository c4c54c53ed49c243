package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"storefront/internal/dom"
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/view"
)

func (s *Storefront) onCatalogUpdated(payload any) {
	ev, ok := payload.(model.CatalogEvent)
	if !ok {
		return
	}
	cards := make([]*dom.Element, 0, len(ev.Catalog))
	for _, p := range ev.Catalog {
		root, ok := s.clone("card-catalog")
		if !ok {
			return
		}
		card, err := view.NewCard(root, &view.CardActions{
			OnClick: func() { s.emit(events.ProductOpen, p) },
		})
		if err != nil {
			s.logger.WithError(err).Error("build catalog card")
			return
		}
		cards = append(cards, card.Render(p))
	}
	s.page.SetCatalog(cards)
}

func (s *Storefront) onProductOpen(payload any) {
	p, ok := payload.(*domain.Product)
	if !ok {
		return
	}
	root, ok := s.clone("card-preview")
	if !ok {
		return
	}
	preview, err := view.NewPreview(root, func(inBasket bool) {
		if inBasket {
			s.emit(events.ProductAddToBasket, p)
			return
		}
		s.emit(events.ProductRemoveFromBasket, p)
	})
	if err != nil {
		s.logger.WithError(err).Error("build preview")
		return
	}
	s.modal.Render(preview.Render(p))
}

func (s *Storefront) onAddToBasket(payload any) {
	p, ok := payload.(*domain.Product)
	if !ok {
		return
	}
	p.InBasket = true
	s.basket.AddItem(p)
	s.modal.Close()
}

func (s *Storefront) onRemoveFromBasket(payload any) {
	p, ok := payload.(*domain.Product)
	if !ok {
		return
	}
	p.InBasket = false
	s.basket.RemoveItem(p)
}

func (s *Storefront) onBasketChanged(payload any) {
	if ev, ok := payload.(model.BasketEvent); ok {
		s.page.SetCounter(len(ev.Items))
	}
}

func (s *Storefront) onBasketOpened(payload any) {
	if fields, ok := payload.(map[string]any); ok {
		s.logger.WithFields(log.Fields(fields)).Debug("basket reopened")
	}
	reopen := s.bus.Trigger(events.BasketOpened, map[string]any{"source": "basket-line"})
	items := s.basket.Items()
	lines := make([]*dom.Element, 0, len(items))
	for i, item := range items {
		root, ok := s.clone("card-basket")
		if !ok {
			return
		}
		card, err := view.NewCard(root, &view.CardActions{OnClick: func() {
			s.emit(events.ProductRemoveFromBasket, item)
			if err := reopen(map[string]any{"removed": item.ID}); err != nil {
				s.logger.WithError(err).Warn("reopen basket")
			}
		}})
		if err != nil {
			s.logger.WithError(err).Error("build basket line")
			return
		}
		card.SetIndex(i + 1)
		lines = append(lines, card.Render(item))
	}
	s.modal.Render(s.basketView.Render(lines, s.basket.Total()))
}

func (s *Storefront) onMakeOrder(any) {
	s.order.Reset()
	s.order.AttachBasket(s.basket.Total(), s.basket.OrderLineIDs(s.lineFilter))
	s.delivery.Reset()
	s.modal.Render(s.delivery.Element())
}

func (s *Storefront) onDeliveryChange(payload any) {
	if c, ok := payload.(model.DeliveryChange); ok {
		s.order.ApplyDelivery(c)
	}
}

func (s *Storefront) onDeliveryErrors(payload any) {
	if errs, ok := payload.(model.FormErrors); ok {
		s.delivery.SetValid(len(errs) == 0)
		s.delivery.SetErrors(errs.Messages())
	}
}

func (s *Storefront) onDeliveryNext(any) {
	if !s.order.DeliveryValid() {
		return
	}
	s.contacts.Reset()
	s.modal.Render(s.contacts.Element())
}

func (s *Storefront) onContactsChange(payload any) {
	if c, ok := payload.(model.ContactsChange); ok {
		s.order.ApplyContacts(c)
	}
}

func (s *Storefront) onContactsErrors(payload any) {
	if errs, ok := payload.(model.FormErrors); ok {
		s.contacts.SetValid(len(errs) == 0)
		s.contacts.SetErrors(errs.Messages())
	}
}

// submit sends the order. On success the basket empties, the confirmation
// is shown and the catalog is reloaded; failures are only logged.
func (s *Storefront) submit(ctx context.Context) {
	if !s.order.DeliveryValid() || !s.order.ContactsValid() {
		s.logger.Warn("order submitted before both steps were valid")
		return
	}
	req := s.order.Request()
	res, err := s.backend.SubmitOrder(ctx, req)
	if err != nil {
		if s.orders != nil {
			s.orders.RecordOrderFailed()
		}
		s.logger.WithError(err).Error("submit order")
		return
	}
	if s.orders != nil {
		s.orders.RecordOrderPlaced()
	}
	s.logger.WithField("order_id", res.ID).WithField("total", res.Total.String()).Info("order placed")

	s.basket.Clear()
	s.modal.Render(s.success.Render(res.ID, res.Total))
	s.page.SetCounter(0)
	s.order.Reset()
	if err := s.Load(ctx); err != nil {
		s.logger.WithError(err).Warn("reload catalog after order")
	}
}
