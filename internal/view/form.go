package view

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"storefront/internal/dom"
	"storefront/internal/events"
	"storefront/internal/model"
)

// form is the shared part of the checkout steps: a submit button, an error
// line and an input listener that reports field name and value.
type form struct {
	emitter
	root   *dom.Element
	submit *dom.Element
	errors *dom.Element
}

func newForm(root *dom.Element, bus Emitter, logger *log.Entry, onInput func(name, value string), submitEvent string) (form, error) {
	f := form{emitter: newEmitter(bus, logger), root: root}
	var err error
	if f.submit, err = ensure(root, "form", ".modal__actions button"); err != nil {
		return form{}, err
	}
	if f.errors, err = ensure(root, "form", ".form__errors"); err != nil {
		return form{}, err
	}

	root.On(dom.EventInput, func(ev *dom.Event) {
		onInput(ev.Target.Name(), ev.Target.Value())
	})
	f.submit.On(dom.EventClick, func(ev *dom.Event) {
		ev.StopPropagation()
		f.emit(submitEvent, nil)
	})
	return f, nil
}

func (f *form) Element() *dom.Element {
	return f.root
}

// SetValid enables or disables the submit button.
func (f *form) SetValid(valid bool) {
	f.submit.SetDisabled(!valid)
}

func (f *form) Valid() bool {
	return !f.submit.Disabled()
}

// SetErrors shows the messages joined on one line.
func (f *form) SetErrors(messages []string) {
	f.errors.SetText(strings.Join(messages, "; "))
}

func (f *form) ErrorText() string {
	return f.errors.Text()
}

func (f *form) Submit() *dom.Element {
	return f.submit
}

// resetInputs clears every text input in the form.
func (f *form) resetInputs() {
	inputs, _ := f.root.QueryAll("input")
	for _, in := range inputs {
		in.SetValue("")
	}
	f.SetValid(false)
	f.SetErrors(nil)
}

// DeliveryForm is the first checkout step: payment method and address.
type DeliveryForm struct {
	form
	payments []*dom.Element
}

func NewDeliveryForm(root *dom.Element, bus Emitter, logger *log.Entry) (*DeliveryForm, error) {
	d := &DeliveryForm{}
	f, err := newForm(root, bus, logger, func(name, value string) {
		if name != model.FieldAddress.String() {
			return
		}
		d.emit(events.DeliveryChange, model.DeliveryChange{Field: model.FieldAddress, Value: value})
	}, events.DeliveryNext)
	if err != nil {
		return nil, err
	}
	d.form = f

	if d.payments, err = root.QueryAll(".button_alt"); err != nil {
		return nil, err
	}
	for _, btn := range d.payments {
		btn.On(dom.EventClick, func(ev *dom.Event) {
			ev.StopPropagation()
			d.SetPayment(btn.Name())
			d.emit(events.DeliveryChange, model.DeliveryChange{Field: model.FieldPayment, Value: btn.Name()})
		})
	}
	return d, nil
}

// SetPayment highlights the button named method.
func (d *DeliveryForm) SetPayment(method string) {
	for _, btn := range d.payments {
		btn.ToggleClass("button_alt-active", btn.Name() == method)
	}
}

// Payment returns the highlighted method, empty when none is.
func (d *DeliveryForm) Payment() string {
	for _, btn := range d.payments {
		if btn.HasClass("button_alt-active") {
			return btn.Name()
		}
	}
	return ""
}

func (d *DeliveryForm) PaymentButton(method string) *dom.Element {
	for _, btn := range d.payments {
		if btn.Name() == method {
			return btn
		}
	}
	return nil
}

func (d *DeliveryForm) Reset() {
	d.SetPayment("")
	d.resetInputs()
}

// ContactsForm is the second checkout step: email and phone.
type ContactsForm struct {
	form
}

func NewContactsForm(root *dom.Element, bus Emitter, logger *log.Entry) (*ContactsForm, error) {
	c := &ContactsForm{}
	f, err := newForm(root, bus, logger, func(name, value string) {
		var field model.ContactsField
		switch name {
		case model.FieldEmail.String():
			field = model.FieldEmail
		case model.FieldPhone.String():
			field = model.FieldPhone
		default:
			return
		}
		c.emit(events.ContactsChange, model.ContactsChange{Field: field, Value: value})
	}, events.ContactsSubmit)
	if err != nil {
		return nil, err
	}
	c.form = f
	return c, nil
}

func (c *ContactsForm) Reset() {
	c.resetInputs()
}
