package view

import (
	log "github.com/sirupsen/logrus"

	"storefront/internal/dom"
	"storefront/internal/events"
)

const modalActive = "modal_active"

// Modal hosts one piece of content at a time.
type Modal struct {
	emitter
	container   *dom.Element
	closeButton *dom.Element
	content     *dom.Element
}

func NewModal(container *dom.Element, bus Emitter, logger *log.Entry) (*Modal, error) {
	m := &Modal{emitter: newEmitter(bus, logger), container: container}
	var err error
	if m.closeButton, err = ensure(container, "modal", ".modal__close"); err != nil {
		return nil, err
	}
	if m.content, err = ensure(container, "modal", ".modal__content"); err != nil {
		return nil, err
	}

	m.closeButton.On(dom.EventClick, func(ev *dom.Event) {
		ev.StopPropagation()
		m.Close()
	})
	m.container.On(dom.EventClick, func(*dom.Event) {
		m.Close()
	})
	// clicks inside the content never count as clicks on the backdrop
	m.content.On(dom.EventClick, func(ev *dom.Event) {
		ev.StopPropagation()
	})
	return m, nil
}

// Render swaps in content and opens the modal.
func (m *Modal) Render(content *dom.Element) {
	m.content.ReplaceChildren(content)
	m.Open()
}

func (m *Modal) Open() {
	m.container.AddClass(modalActive)
	m.emit(events.ModalOpen, nil)
}

func (m *Modal) Close() {
	m.container.RemoveClass(modalActive)
	m.content.ReplaceChildren()
	m.emit(events.ModalClose, nil)
}

func (m *Modal) IsOpen() bool {
	return m.container.HasClass(modalActive)
}

// Content returns the element currently shown, or nil.
func (m *Modal) Content() *dom.Element {
	children := m.content.Children()
	if len(children) == 0 {
		return nil
	}
	return children[0]
}
