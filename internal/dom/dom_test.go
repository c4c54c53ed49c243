package dom

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html><html><body>
<div class="page__wrapper">
  <span class="header__basket-counter">0</span>
  <main class="gallery"></main>
</div>
<div class="modal" id="modal-container">
  <div class="modal__container">
    <button class="modal__close">x</button>
    <div class="modal__content"><p class="inner">hi</p></div>
  </div>
</div>
<template id="card">
  <button class="gallery__item card">
    <span class="card__title">t</span>
    <span class="card__price">p</span>
  </button>
</template>
<template id="empty"></template>
</body></html>`

func parse(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestQuery(t *testing.T) {
	doc := parse(t)

	el, err := doc.Query(".header__basket-counter")
	require.NoError(t, err)
	assert.Equal(t, "0", el.Text())

	el, err = doc.Query("#modal-container .modal__content p.inner")
	require.NoError(t, err)
	assert.Equal(t, "hi", el.Text())

	_, err = doc.Query(".missing")
	assert.ErrorIs(t, err, ErrElementNotFound)

	// template content is not part of the live document
	_, err = doc.Query(".card__title")
	assert.ErrorIs(t, err, ErrElementNotFound)

	_, err = doc.Query("  ")
	assert.Error(t, err)
}

func TestCloneTemplate(t *testing.T) {
	doc := parse(t)

	first, err := doc.CloneTemplate("card")
	require.NoError(t, err)
	second, err := doc.CloneTemplate("card")
	require.NoError(t, err)

	title, err := first.Query(".card__title")
	require.NoError(t, err)
	title.SetText("First")

	other, err := second.Query(".card__title")
	require.NoError(t, err)
	assert.Equal(t, "t", other.Text())
	assert.True(t, first.HasClass("card"))

	_, err = doc.CloneTemplate("empty")
	assert.ErrorIs(t, err, ErrElementNotFound)
	_, err = doc.CloneTemplate("nope")
	assert.ErrorIs(t, err, ErrElementNotFound)
}

func TestClassesAndAttributes(t *testing.T) {
	doc := parse(t)
	el := doc.Create("button", "go")

	el.AddClass("a")
	el.AddClass("b")
	el.AddClass("a")
	v, _ := el.Attr("class")
	assert.Equal(t, "a b", v)

	el.RemoveClass("a")
	assert.False(t, el.HasClass("a"))
	assert.True(t, el.HasClass("b"))

	el.SetDisabled(true)
	assert.True(t, el.Disabled())
	el.SetDisabled(false)
	assert.False(t, el.Disabled())

	el.SetHidden(true)
	assert.True(t, el.Hidden())
	el.SetHidden(false)
	assert.False(t, el.Hidden())

	el.SetValue("v")
	assert.Equal(t, "v", el.Value())
	assert.Equal(t, "go", el.Text())
}

func TestReplaceChildrenMovesNodes(t *testing.T) {
	doc := parse(t)
	gallery, err := doc.Query(".gallery")
	require.NoError(t, err)

	a := doc.Create("p", "a")
	b := doc.Create("p", "b")
	gallery.ReplaceChildren(a, b)
	assert.Equal(t, "ab", gallery.Text())

	content, err := doc.Query(".modal__content")
	require.NoError(t, err)
	content.ReplaceChildren(b)
	assert.Equal(t, "a", gallery.Text())
	assert.Equal(t, "b", content.Text())
	assert.Equal(t, content.Tag(), b.Parent().Tag())
}

func TestDispatchBubblesAndStops(t *testing.T) {
	doc := parse(t)
	modal, _ := doc.Query("#modal-container")
	content, _ := doc.Query(".modal__content")
	inner, _ := doc.Query(".inner")
	closeBtn, _ := doc.Query(".modal__close")

	var seen []string
	modal.On(EventClick, func(ev *Event) { seen = append(seen, "modal") })
	content.On(EventClick, func(ev *Event) {
		seen = append(seen, "content")
		ev.StopPropagation()
	})
	content.On(EventClick, func(ev *Event) { seen = append(seen, "content-2") })

	require.True(t, inner.Dispatch(EventClick))
	assert.Equal(t, []string{"content", "content-2"}, seen)

	seen = nil
	closeBtn.Dispatch(EventClick)
	assert.Equal(t, []string{"modal"}, seen)

	seen = nil
	closeBtn.SetDisabled(true)
	assert.False(t, closeBtn.Dispatch(EventClick))
	assert.Empty(t, seen)
}

func TestDispatchTarget(t *testing.T) {
	doc := parse(t)
	body, err := doc.Body()
	require.NoError(t, err)
	inner, _ := doc.Query(".inner")

	var target, current string
	body.On(EventInput, func(ev *Event) {
		target = ev.Target.Tag()
		current = ev.Current.Tag()
	})
	inner.Dispatch(EventInput)
	assert.Equal(t, "p", target)
	assert.Equal(t, "body", current)
}

func TestRenderAssignsRefs(t *testing.T) {
	doc := parse(t)
	closeBtn, _ := doc.Query(".modal__close")
	gallery, _ := doc.Query(".gallery")
	gallery.On(EventClick, func(*Event) {})

	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))

	ref, ok := closeBtn.Attr("data-ref")
	require.True(t, ok)
	assert.Contains(t, buf.String(), `data-ref="`+ref+`"`)

	found, ok := doc.ByRef(ref)
	require.True(t, ok)
	assert.Equal(t, "button", found.Tag())

	galleryRef, ok := gallery.Attr("data-ref")
	require.True(t, ok)
	assert.NotEqual(t, ref, galleryRef)

	// refs are stable across renders
	buf.Reset()
	require.NoError(t, doc.Render(&buf))
	again, _ := closeBtn.Attr("data-ref")
	assert.Equal(t, ref, again)

	_, ok = doc.ByRef("r999")
	assert.False(t, ok)
}

func TestByRefIgnoresDetached(t *testing.T) {
	doc := parse(t)
	el := doc.Create("button", "detached")
	ref := el.Ref()

	_, ok := doc.ByRef(ref)
	assert.False(t, ok)

	body, _ := doc.Body()
	body.Append(el)
	_, ok = doc.ByRef(ref)
	assert.True(t, ok)
}

func TestNamed(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<form><input name="address" value=""></form>`))
	require.NoError(t, err)

	in, err := doc.Root().Named("address")
	require.NoError(t, err)
	assert.Equal(t, "input", in.Tag())

	_, err = doc.Root().Named("email")
	assert.ErrorIs(t, err, ErrElementNotFound)
}

func TestAttributeSelectors(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<div class="actions">
<button name="card" class="button_alt">Online</button>
<button name="cash" class="button_alt" disabled>Cash</button>
</div>`))
	require.NoError(t, err)

	el, err := doc.Query("button[name=card]")
	require.NoError(t, err)
	assert.Equal(t, "Online", el.Text())

	el, err = doc.Query(".actions > .button_alt[disabled]")
	require.NoError(t, err)
	assert.Equal(t, "cash", el.Name())

	all, err := doc.Root().QueryAll("button:not([disabled])")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = doc.Query("button[name=")
	assert.Error(t, err)
}

func TestReplaceChildrenReleasesDetached(t *testing.T) {
	doc := parse(t)
	gallery, err := doc.Query(".gallery")
	require.NoError(t, err)

	render := func() {
		cards := make([]*Element, 0, 5)
		for i := 0; i < 5; i++ {
			card, err := doc.CloneTemplate("card")
			require.NoError(t, err)
			card.On(EventClick, func(*Event) {})
			title, err := card.Query(".card__title")
			require.NoError(t, err)
			title.On(EventClick, func(*Event) {})
			cards = append(cards, card)
		}
		gallery.ReplaceChildren(cards...)
		require.NoError(t, doc.Render(&bytes.Buffer{}))
	}

	render()
	listeners, refs := len(doc.listeners), len(doc.refs)
	for i := 0; i < 100; i++ {
		render()
	}
	assert.Equal(t, listeners, len(doc.listeners))
	assert.Equal(t, refs, len(doc.refs))

	gallery.SetText("empty")
	assert.Empty(t, doc.listeners)
}

func TestReplaceChildrenKeepsReattached(t *testing.T) {
	doc := parse(t)
	content, err := doc.Query(".modal__content")
	require.NoError(t, err)

	kept := doc.Create("div", "")
	button := doc.Create("button", "go")
	kept.Append(button)
	clicks := 0
	button.On(EventClick, func(*Event) { clicks++ })
	doc.Keep(kept)

	moved := doc.Create("p", "moved")
	moved.On(EventClick, func(*Event) { clicks++ })

	content.ReplaceChildren(kept, moved)
	content.ReplaceChildren(moved)
	content.ReplaceChildren()
	content.ReplaceChildren(kept)

	button.Dispatch(EventClick)
	assert.Equal(t, 1, clicks)
	require.NoError(t, doc.Render(&bytes.Buffer{}))
	_, ok := doc.ByRef(button.Ref())
	assert.True(t, ok)

	// moved was dropped on the third replace
	content.Append(moved)
	moved.Dispatch(EventClick)
	assert.Equal(t, 1, clicks)
}
