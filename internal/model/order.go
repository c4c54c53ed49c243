package model

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"storefront/internal/domain"
	"storefront/internal/events"
)

// DeliveryField names a field of the delivery step.
type DeliveryField int

const (
	FieldPayment DeliveryField = iota + 1
	FieldAddress
)

func (f DeliveryField) String() string {
	switch f {
	case FieldPayment:
		return "payment"
	case FieldAddress:
		return "address"
	default:
		return "unknown"
	}
}

// ContactsField names a field of the contacts step.
type ContactsField int

const (
	FieldEmail ContactsField = iota + 1
	FieldPhone
)

func (f ContactsField) String() string {
	switch f {
	case FieldEmail:
		return "email"
	case FieldPhone:
		return "phone"
	default:
		return "unknown"
	}
}

// DeliveryChange is the payload of events.DeliveryChange.
type DeliveryChange struct {
	Field DeliveryField
	Value string
}

// ContactsChange is the payload of events.ContactsChange.
type ContactsChange struct {
	Field ContactsField
	Value string
}

// FormErrors maps a field name to a message. It is rebuilt on every change.
type FormErrors map[string]string

var fieldOrder = []string{"address", "payment", "email", "phone"}

// Messages returns the messages in form order.
func (e FormErrors) Messages() []string {
	out := make([]string, 0, len(e))
	for _, field := range fieldOrder {
		if msg, ok := e[field]; ok && msg != "" {
			out = append(out, msg)
		}
	}
	return out
}

// Snapshot is the order data announced with the *:ok events.
type Snapshot struct {
	Payment domain.PaymentMethod
	Address string
	Email   string
	Phone   string
}

type deliveryForm struct {
	Payment domain.PaymentMethod `form:"payment" validate:"required"`
	Address string               `form:"address" validate:"required"`
}

type contactsForm struct {
	Email string `form:"email" validate:"required"`
	Phone string `form:"phone" validate:"required"`
}

var requiredMessages = map[string]string{
	"payment": "Choose a payment method",
	"address": "Enter a delivery address",
	"email":   "Enter your email",
	"phone":   "Enter your phone number",
}

// Order is the checkout in progress: a delivery step and a contacts step,
// each validated on every change.
type Order struct {
	Notifier
	validate *validator.Validate
	delivery deliveryForm
	contacts contactsForm
	total    decimal.Decimal
	items    []string
}

func NewOrder(bus Emitter, logger *log.Entry) *Order {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	})
	return &Order{Notifier: NewNotifier(bus, logger), validate: v}
}

func (o *Order) SetPayment(method domain.PaymentMethod) {
	o.delivery.Payment = method
	o.checkDelivery()
}

func (o *Order) SetAddress(address string) {
	o.delivery.Address = address
	o.checkDelivery()
}

func (o *Order) SetEmail(email string) {
	o.contacts.Email = email
	o.checkContacts()
}

func (o *Order) SetPhone(phone string) {
	o.contacts.Phone = phone
	o.checkContacts()
}

// ApplyDelivery routes a delivery-step change to its setter.
func (o *Order) ApplyDelivery(c DeliveryChange) {
	switch c.Field {
	case FieldPayment:
		o.SetPayment(domain.PaymentMethod(c.Value))
	case FieldAddress:
		o.SetAddress(c.Value)
	}
}

// ApplyContacts routes a contacts-step change to its setter.
func (o *Order) ApplyContacts(c ContactsChange) {
	switch c.Field {
	case FieldEmail:
		o.SetEmail(c.Value)
	case FieldPhone:
		o.SetPhone(c.Value)
	}
}

// DeliveryErrors validates the delivery step.
func (o *Order) DeliveryErrors() FormErrors {
	return o.errorsOf(o.delivery)
}

// ContactsErrors validates the contacts step.
func (o *Order) ContactsErrors() FormErrors {
	return o.errorsOf(o.contacts)
}

func (o *Order) DeliveryValid() bool {
	return len(o.DeliveryErrors()) == 0
}

func (o *Order) ContactsValid() bool {
	return len(o.ContactsErrors()) == 0
}

// AttachBasket records what is being bought.
func (o *Order) AttachBasket(total decimal.Decimal, items []string) {
	o.total = total
	o.items = append([]string(nil), items...)
}

func (o *Order) Total() decimal.Decimal {
	return o.total
}

func (o *Order) Items() []string {
	return o.items
}

// Request builds the POST /order body.
func (o *Order) Request() domain.OrderRequest {
	items := o.items
	if items == nil {
		items = []string{}
	}
	return domain.OrderRequest{
		Payment: o.delivery.Payment,
		Address: o.delivery.Address,
		Email:   o.contacts.Email,
		Phone:   o.contacts.Phone,
		Total:   o.total,
		Items:   items,
	}
}

// Reset forgets every field and the attached basket.
func (o *Order) Reset() {
	o.delivery = deliveryForm{}
	o.contacts = contactsForm{}
	o.total = decimal.Zero
	o.items = nil
}

func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		Payment: o.delivery.Payment,
		Address: o.delivery.Address,
		Email:   o.contacts.Email,
		Phone:   o.contacts.Phone,
	}
}

func (o *Order) checkDelivery() {
	errs := o.DeliveryErrors()
	o.EmitChanges(events.DeliveryErrorsChanged, errs)
	if len(errs) == 0 {
		o.EmitChanges(events.DeliveryOK, o.Snapshot())
	}
}

func (o *Order) checkContacts() {
	errs := o.ContactsErrors()
	o.EmitChanges(events.ContactsErrorsChanged, errs)
	if len(errs) == 0 {
		o.EmitChanges(events.ContactsOK, o.Snapshot())
	}
}

func (o *Order) errorsOf(form any) FormErrors {
	errs := FormErrors{}
	err := o.validate.Struct(form)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		o.logger.WithError(err).Error("order validation failed")
		return errs
	}
	for _, fe := range verrs {
		errs[fe.Field()] = requiredMessages[fe.Field()]
	}
	return errs
}
