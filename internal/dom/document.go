package dom

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const refAttr = "data-ref"

// Event types dispatched by the UI host.
const (
	EventClick = "click"
	EventInput = "input"
)

// Listener handles a dispatched event.
type Listener func(ev *Event)

// Event is a dispatched DOM event.
type Event struct {
	Type    string
	Target  *Element
	Current *Element
	stopped bool
}

// StopPropagation keeps the event from reaching ancestors of Current.
// Other listeners on Current still run.
func (ev *Event) StopPropagation() {
	ev.stopped = true
}

type listener struct {
	typ string
	fn  Listener
}

// Document is a parsed page plus its listeners and element refs.
// It is not safe for concurrent use.
type Document struct {
	root      *html.Node
	listeners map[*html.Node][]listener
	refs      map[string]*html.Node
	kept      map[*html.Node]struct{}
	nextRef   int
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{
		root:      root,
		listeners: make(map[*html.Node][]listener),
		refs:      make(map[string]*html.Node),
		kept:      make(map[*html.Node]struct{}),
	}, nil
}

// Root returns the document node as an Element for selector queries.
func (d *Document) Root() *Element {
	return &Element{node: d.root, doc: d}
}

// Query looks up an element anywhere outside templates.
func (d *Document) Query(sel string) (*Element, error) {
	return d.Root().Query(sel)
}

// Body returns <body>.
func (d *Document) Body() (*Element, error) {
	return d.Query("body")
}

// CloneTemplate deep-copies the first element inside <template id="id">.
// The copy is detached until appended somewhere.
func (d *Document) CloneTemplate(id string) (*Element, error) {
	tpl, err := d.Query("template#" + id)
	if err != nil {
		return nil, err
	}
	for c := tpl.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return &Element{node: clone(c), doc: d}, nil
		}
	}
	return nil, fmt.Errorf("%w: template #%s is empty", ErrElementNotFound, id)
}

// Create builds a detached element with text content.
func (d *Document) Create(tag, text string) *Element {
	n := &html.Node{Type: html.ElementNode, DataAtom: atom.Lookup([]byte(tag)), Data: tag}
	el := &Element{node: n, doc: d}
	if text != "" {
		el.SetText(text)
	}
	return el
}

// ByRef finds an element attached to the document by its data-ref.
func (d *Document) ByRef(ref string) (*Element, bool) {
	n, ok := d.refs[ref]
	if !ok || !d.attached(n) {
		return nil, false
	}
	return &Element{node: n, doc: d}, true
}

// Render assigns refs to interactive elements and writes the page.
func (d *Document) Render(w io.Writer) error {
	walk(d.root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if d.interactive(n) {
			d.ref(n)
		}
	})
	return html.Render(w, d.root)
}

func (d *Document) interactive(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Button, atom.Input, atom.Textarea, atom.Select, atom.A:
		return true
	}
	_, ok := d.listeners[n]
	return ok
}

func (d *Document) attached(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// Keep marks el as a reusable subtree. Detaching it keeps its listeners and
// refs; any other detached subtree loses them.
func (d *Document) Keep(el *Element) {
	d.kept[el.node] = struct{}{}
}

// release drops the listeners and refs of n's subtree, skipping kept subtrees.
func (d *Document) release(n *html.Node) {
	if _, ok := d.kept[n]; ok {
		return
	}
	delete(d.listeners, n)
	if v := attr(n, refAttr); v != "" && d.refs[v] == n {
		delete(d.refs, v)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.release(c)
	}
}

func (d *Document) listen(n *html.Node, typ string, fn Listener) {
	if fn == nil {
		return
	}
	d.listeners[n] = append(d.listeners[n], listener{typ: typ, fn: fn})
}

func (d *Document) listenersOf(n *html.Node, typ string) []Listener {
	var out []Listener
	for _, l := range d.listeners[n] {
		if l.typ == typ {
			out = append(out, l.fn)
		}
	}
	return out
}

func (d *Document) ref(n *html.Node) string {
	if v := attr(n, refAttr); v != "" {
		if d.refs[v] == n {
			return v
		}
	}
	d.nextRef++
	v := "r" + strconv.Itoa(d.nextRef)
	el := &Element{node: n, doc: d}
	el.SetAttr(refAttr, v)
	d.refs[v] = n
	return v
}
