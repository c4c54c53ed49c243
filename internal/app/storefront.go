// Package app composes the storefront: one bus, the models, the views and
// the backend client, tied together by bus subscriptions.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"storefront/internal/dom"
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/view"
)

// ErrUnknownRef is returned when an interaction targets an element that is
// no longer on the page.
var ErrUnknownRef = errors.New("unknown element ref")

// Backend is the part of the API client the storefront uses.
type Backend interface {
	ListProducts(ctx context.Context) (domain.ProductList, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	SubmitOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error)
}

// OrderRecorder counts checkout outcomes.
type OrderRecorder interface {
	RecordOrderPlaced()
	RecordOrderFailed()
}

type Option func(*Storefront)

// WithLineFilter picks the basket items sent as order lines. The default is
// model.PricedOnly.
func WithLineFilter(f model.OrderLineFilter) Option {
	return func(s *Storefront) {
		if f != nil {
			s.lineFilter = f
		}
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(s *Storefront) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithOrderRecorder(r OrderRecorder) Option {
	return func(s *Storefront) { s.orders = r }
}

// Storefront is one page session. It is not safe for concurrent use.
type Storefront struct {
	doc        *dom.Document
	bus        *events.Bus
	backend    Backend
	logger     *log.Entry
	orders     OrderRecorder
	lineFilter model.OrderLineFilter

	// ctx is the context of the interaction being handled.
	ctx context.Context

	catalog *model.Catalog
	basket  *model.Basket
	order   *model.Order

	page       *view.Page
	modal      *view.Modal
	basketView *view.Basket
	delivery   *view.DeliveryForm
	contacts   *view.ContactsForm
	success    *view.Success
}

// New builds the views over doc and subscribes every handler. It fails when
// the page lacks a required element or template.
func New(doc *dom.Document, backend Backend, opts ...Option) (*Storefront, error) {
	discard := log.New()
	discard.SetOutput(io.Discard)
	s := &Storefront{
		doc:        doc,
		backend:    backend,
		logger:     log.NewEntry(discard),
		lineFilter: model.PricedOnly,
		ctx:        context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.bus = events.New(events.WithLogger(s.logger.WithField("component", "events")))

	if err := s.buildViews(); err != nil {
		return nil, err
	}
	s.catalog = model.NewCatalog(s.bus, s.logger)
	s.basket = model.NewBasket(s.bus, s.logger)
	s.order = model.NewOrder(s.bus, s.logger)

	if err := s.subscribe(); err != nil {
		return nil, fmt.Errorf("subscribe storefront handlers: %w", err)
	}
	return s, nil
}

func (s *Storefront) buildViews() error {
	var err error
	if s.page, err = view.NewPage(s.doc.Root(), s.bus, s.logger); err != nil {
		return err
	}
	container, err := s.doc.Query("#modal-container")
	if err != nil {
		return fmt.Errorf("modal view: %w", err)
	}
	if s.modal, err = view.NewModal(container, s.bus, s.logger); err != nil {
		return err
	}

	root, err := s.reusable("basket")
	if err != nil {
		return err
	}
	if s.basketView, err = view.NewBasket(root, s.bus, s.logger); err != nil {
		return err
	}
	if root, err = s.reusable("order"); err != nil {
		return err
	}
	if s.delivery, err = view.NewDeliveryForm(root, s.bus, s.logger); err != nil {
		return err
	}
	if root, err = s.reusable("contacts"); err != nil {
		return err
	}
	if s.contacts, err = view.NewContactsForm(root, s.bus, s.logger); err != nil {
		return err
	}
	if root, err = s.reusable("success"); err != nil {
		return err
	}
	if s.success, err = view.NewSuccess(root, s.modal.Close); err != nil {
		return err
	}

	// per-item templates are cloned on demand; check them once here
	for _, id := range []string{"card-catalog", "card-preview", "card-basket"} {
		if _, err := s.doc.CloneTemplate(id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storefront) subscribe() error {
	var errs []error
	on := func(name string, h events.Handler) {
		if _, err := s.bus.On(name, h); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := s.bus.OnAll(s.trace); err != nil {
		errs = append(errs, err)
	}

	on(events.CatalogUpdated, s.onCatalogUpdated)
	on(events.ProductOpen, s.onProductOpen)
	on(events.ProductAddToBasket, s.onAddToBasket)
	on(events.ProductRemoveFromBasket, s.onRemoveFromBasket)
	on(events.BasketChanged, s.onBasketChanged)
	on(events.BasketOpened, s.onBasketOpened)
	on(events.OrderOpened, func(any) { s.basket.PlaceOrder() })
	on(events.BasketMakeOrder, s.onMakeOrder)
	on(events.DeliveryChange, s.onDeliveryChange)
	on(events.DeliveryErrorsChanged, s.onDeliveryErrors)
	on(events.DeliveryNext, s.onDeliveryNext)
	on(events.ContactsChange, s.onContactsChange)
	on(events.ContactsErrorsChanged, s.onContactsErrors)
	on(events.ContactsSubmit, func(any) { s.submit(s.ctx) })
	on(events.ModalOpen, func(any) { s.page.SetLocked(true) })
	on(events.ModalClose, func(any) { s.page.SetLocked(false) })

	return errors.Join(errs...)
}

// Load fetches the catalog and shows it.
func (s *Storefront) Load(ctx context.Context) error {
	list, err := s.backend.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	s.catalog.SetCatalog(list.Items)
	return nil
}

// OpenProduct fetches one product and shows its preview. A product already
// in the catalog keeps its basket flag.
func (s *Storefront) OpenProduct(ctx context.Context, id string) error {
	fetched, err := s.backend.GetProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("open product %s: %w", id, err)
	}
	p := s.catalog.Find(id)
	if p == nil {
		fetched.InBasket = s.basket.Contains(id)
		p = &fetched
	} else {
		fetched.InBasket = p.InBasket
		*p = fetched
	}
	s.emit(events.ProductOpen, p)
	return nil
}

// Click dispatches a click on the element with ref.
func (s *Storefront) Click(ctx context.Context, ref string) error {
	el, ok := s.doc.ByRef(ref)
	if !ok {
		return fmt.Errorf("click %q: %w", ref, ErrUnknownRef)
	}
	s.within(ctx, func() { el.Dispatch(dom.EventClick) })
	return nil
}

// Input sets the value of the element with ref and dispatches an input event.
func (s *Storefront) Input(ctx context.Context, ref, value string) error {
	el, ok := s.doc.ByRef(ref)
	if !ok {
		return fmt.Errorf("input %q: %w", ref, ErrUnknownRef)
	}
	s.within(ctx, func() {
		el.SetValue(value)
		el.Dispatch(dom.EventInput)
	})
	return nil
}

// Render writes the current page.
func (s *Storefront) Render(w io.Writer) error {
	return s.doc.Render(w)
}

func (s *Storefront) Document() *dom.Document { return s.doc }
func (s *Storefront) Catalog() *model.Catalog { return s.catalog }
func (s *Storefront) Basket() *model.Basket { return s.basket }
func (s *Storefront) Order() *model.Order { return s.order }
func (s *Storefront) Page() *view.Page { return s.page }
func (s *Storefront) Modal() *view.Modal { return s.modal }

func (s *Storefront) within(ctx context.Context, fn func()) {
	prev := s.ctx
	s.ctx = ctx
	defer func() { s.ctx = prev }()
	fn()
}

func (s *Storefront) emit(name string, payload any) {
	if err := s.bus.Emit(name, payload); err != nil {
		s.logger.WithError(err).WithField("event", name).Warn("event delivery failed")
	}
}

func (s *Storefront) trace(payload any) {
	if env, ok := payload.(events.Envelope); ok {
		s.logger.WithField("event", env.Name).Debug("event")
	}
}

// reusable clones a template whose view lives for the whole session and is
// moved in and out of the modal.
func (s *Storefront) reusable(id string) (*dom.Element, error) {
	root, err := s.doc.CloneTemplate(id)
	if err != nil {
		return nil, err
	}
	s.doc.Keep(root)
	return root, nil
}

func (s *Storefront) clone(id string) (*dom.Element, bool) {
	el, err := s.doc.CloneTemplate(id)
	if err != nil {
		s.logger.WithError(err).WithField("template", id).Error("clone template")
		return nil, false
	}
	return el, true
}
