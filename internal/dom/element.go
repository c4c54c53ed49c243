package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrElementNotFound is returned when a required element is missing.
var ErrElementNotFound = errors.New("element not found")

// Element is a handle on one element node of a Document.
type Element struct {
	node *html.Node
	doc  *Document
}

func (e *Element) wrap(n *html.Node) *Element {
	return &Element{node: n, doc: e.doc}
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Parent returns the parent element, or nil for detached or root elements.
func (e *Element) Parent() *Element {
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.wrap(p)
}

// Query returns the first descendant matching selector.
func (e *Element) Query(sel string) (*Element, error) {
	s, err := compile(sel)
	if err != nil {
		return nil, err
	}
	if n := findFirst(e.node, s); n != nil {
		return e.wrap(n), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrElementNotFound, sel)
}

// Find is Query for optional elements: it returns nil when nothing matches.
func (e *Element) Find(sel string) *Element {
	el, err := e.Query(sel)
	if err != nil {
		return nil
	}
	return el
}

// QueryAll returns every descendant matching selector in document order.
func (e *Element) QueryAll(sel string) ([]*Element, error) {
	s, err := compile(sel)
	if err != nil {
		return nil, err
	}
	var out []*Element
	walk(e.node, func(n *html.Node) {
		if s.Match(n) {
			out = append(out, e.wrap(n))
		}
	})
	return out, nil
}

// Named returns the first descendant whose name attribute equals name.
func (e *Element) Named(name string) (*Element, error) {
	var found *html.Node
	walk(e.node, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && attr(n, "name") == name {
			found = n
		}
	})
	if found == nil {
		return nil, fmt.Errorf("%w: [name=%s]", ErrElementNotFound, name)
	}
	return e.wrap(found), nil
}

// Children returns the element children.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.wrap(c))
		}
	}
	return out
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(e.node)
	return b.String()
}

// SetText replaces the content with a single text node.
func (e *Element) SetText(text string) {
	e.releaseAll(removeChildren(e.node))
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func (e *Element) SetAttr(key, val string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
}

func (e *Element) RemoveAttr(key string) {
	kept := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	e.node.Attr = kept
}

// Value returns the value attribute of a form control.
func (e *Element) Value() string {
	return attr(e.node, "value")
}

func (e *Element) SetValue(v string) {
	e.SetAttr("value", v)
}

// Name returns the name attribute.
func (e *Element) Name() string {
	return attr(e.node, "name")
}

func (e *Element) HasClass(name string) bool {
	return hasClass(e.node, name)
}

// ToggleClass adds name when on is true and removes it otherwise.
func (e *Element) ToggleClass(name string, on bool) {
	classes := strings.Fields(attr(e.node, "class"))
	out := classes[:0]
	present := false
	for _, c := range classes {
		if c == name {
			if !on || present {
				continue
			}
			present = true
		}
		out = append(out, c)
	}
	if on && !present {
		out = append(out, name)
	}
	e.SetAttr("class", strings.Join(out, " "))
}

func (e *Element) AddClass(name string) {
	e.ToggleClass(name, true)
}

func (e *Element) RemoveClass(name string) {
	e.ToggleClass(name, false)
}

// SetClass replaces the whole class attribute.
func (e *Element) SetClass(class string) {
	e.SetAttr("class", class)
}

func (e *Element) Disabled() bool {
	_, ok := e.Attr("disabled")
	return ok
}

func (e *Element) SetDisabled(disabled bool) {
	if disabled {
		e.SetAttr("disabled", "disabled")
		return
	}
	e.RemoveAttr("disabled")
}

// Hidden reports whether SetHidden(true) is in effect.
func (e *Element) Hidden() bool {
	style, _ := e.Attr("style")
	return strings.Contains(style, "display: none")
}

func (e *Element) SetHidden(hidden bool) {
	if hidden {
		e.SetAttr("style", "display: none")
		return
	}
	e.RemoveAttr("style")
}

// SetImage points an <img> at src with alt text.
func (e *Element) SetImage(src, alt string) {
	e.SetAttr("src", src)
	if alt != "" {
		e.SetAttr("alt", alt)
	}
}

// ReplaceChildren detaches the current children and appends children.
// Removed children that are not re-added lose their listeners and refs
// unless they were marked with Document.Keep.
func (e *Element) ReplaceChildren(children ...*Element) {
	removed := removeChildren(e.node)
	for _, c := range children {
		if c == nil {
			continue
		}
		e.Append(c)
	}
	e.releaseAll(removed)
}

// releaseAll releases the nodes that are still detached.
func (e *Element) releaseAll(nodes []*html.Node) {
	for _, n := range nodes {
		if n.Parent == nil {
			e.doc.release(n)
		}
	}
}

// Append moves child under e.
func (e *Element) Append(child *Element) {
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
}

// On registers fn for events of type typ dispatched on e or its descendants.
func (e *Element) On(typ string, fn Listener) {
	e.doc.listen(e.node, typ, fn)
}

// Dispatch fires an event of type typ at e and bubbles it to the root.
// Clicks on disabled elements are dropped, as in a browser; Dispatch then
// returns false.
func (e *Element) Dispatch(typ string) bool {
	if typ == EventClick && e.Disabled() {
		return false
	}
	ev := &Event{Type: typ, Target: e}
	for n := e.node; n != nil; n = n.Parent {
		for _, l := range e.doc.listenersOf(n, typ) {
			ev.Current = e.wrap(n)
			l(ev)
		}
		if ev.stopped {
			break
		}
	}
	return true
}

// Ref returns the element's data-ref, assigning one if needed.
func (e *Element) Ref() string {
	return e.doc.ref(e.node)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

func removeChildren(n *html.Node) []*html.Node {
	var removed []*html.Node
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		removed = append(removed, c)
		c = next
	}
	return removed
}

// walk visits descendants of n in document order, not entering templates.
func walk(n *html.Node, visit func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visit(c)
		if c.Type == html.ElementNode && c.DataAtom == atom.Template {
			continue
		}
		walk(c, visit)
	}
}

func findFirst(n *html.Node, s cascadia.Matcher) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if s.Match(c) {
			return c
		}
		if c.Type == html.ElementNode && c.DataAtom == atom.Template {
			continue
		}
		if found := findFirst(c, s); found != nil {
			return found
		}
	}
	return nil
}

func clone(n *html.Node) *html.Node {
	out := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == refAttr {
			continue
		}
		out.Attr = append(out.Attr, a)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out.AppendChild(clone(c))
	}
	return out
}
