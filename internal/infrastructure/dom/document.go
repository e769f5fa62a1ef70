// Package dom implements the host document the engine runs against: an HTML
// tree with selector queries, form-control values, event dispatch and batched
// mutation records.
package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/infrastructure/mainloop"
)

var (
	// ErrSurfaceDetached is returned when writing to a node no longer in the document.
	ErrSurfaceDetached = errors.New("surface node is detached from the document")
	// ErrSurfaceKindMismatch is returned when the write mechanism does not fit the element.
	ErrSurfaceKindMismatch = errors.New("surface kind does not match element")
	// ErrForeignElement is returned for element handles from another document.
	ErrForeignElement = errors.New("element does not belong to this document")
)

// Document is an in-process host page. It must only be used from the loop
// whose Post function it was created with.
type Document struct {
	url  string
	root *html.Node

	elements  map[*html.Node]*Element
	values    map[*html.Node]string
	cursors   map[*html.Node]int
	selectors map[string]cascadia.Selector
	focused   *html.Node

	listeners []*listener

	observers  map[uint64]func(port.MutationBatch)
	observerID uint64
	batchSeq   atomic.Uint64
	batcher    *mainloop.Batcher[port.MutationRecord]
}

var _ port.Document = (*Document)(nil)

// Parse builds a document from HTML. post schedules mutation delivery on the
// page loop.
func Parse(url string, r io.Reader, post func(func())) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse host document: %w", err)
	}

	d := &Document{
		url:       url,
		root:      root,
		elements:  make(map[*html.Node]*Element),
		values:    make(map[*html.Node]string),
		cursors:   make(map[*html.Node]int),
		selectors: make(map[string]cascadia.Selector),
		observers: make(map[uint64]func(port.MutationBatch)),
	}
	d.batcher = mainloop.NewBatcher(post, d.deliver)
	return d, nil
}

// ParseString is Parse for an HTML string.
func ParseString(url, src string, post func(func())) (*Document, error) {
	return Parse(url, strings.NewReader(src), post)
}

// Close stops mutation delivery and drops every observer and listener.
// Queries still work on the closed tree but nothing is delivered.
func (d *Document) Close() {
	d.batcher.Destroy()
	clear(d.observers)
	d.listeners = nil
	clear(d.elements)
	clear(d.values)
	clear(d.cursors)
	d.focused = nil
}

// URL returns the page address.
func (d *Document) URL() string {
	return d.url
}

// QuerySelector returns the first match in document order.
func (d *Document) QuerySelector(selector string) (port.Element, error) {
	sel, err := d.compile(selector)
	if err != nil {
		return nil, err
	}
	n := sel.MatchFirst(d.root)
	if n == nil {
		return nil, nil
	}
	return d.element(n), nil
}

// QuerySelectorAll returns every match in document order.
func (d *Document) QuerySelectorAll(selector string) ([]*Element, error) {
	sel, err := d.compile(selector)
	if err != nil {
		return nil, err
	}
	nodes := sel.MatchAll(d.root)
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.element(n))
	}
	return out, nil
}

// Find is QuerySelector returning the concrete element type.
func (d *Document) Find(selector string) (*Element, error) {
	el, err := d.QuerySelector(selector)
	if err != nil || el == nil {
		return nil, err
	}
	return el.(*Element), nil
}

// Walk visits elements in document order.
func (d *Document) Walk(visit func(port.Element) bool) {
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if !visit(d.element(n)) {
				return false
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(d.root)
}

// Body returns the body element.
func (d *Document) Body() *Element {
	el, _ := d.Find("body")
	return el
}

// Surface wraps el in an adapter for kind.
func (d *Document) Surface(el port.Element, kind entity.SurfaceKind) (port.SurfaceAdapter, error) {
	e, err := d.own(el)
	if err != nil {
		return nil, err
	}
	return &Surface{doc: d, el: e, kind: kind}, nil
}

// HTML renders the whole document.
func (d *Document) HTML() string {
	var b strings.Builder
	_ = html.Render(&b, d.root)
	return b.String()
}

// Focused returns the element that last received focus, or nil.
func (d *Document) Focused() *Element {
	if d.focused == nil || !d.connected(d.focused) {
		return nil
	}
	return d.element(d.focused)
}

func (d *Document) compile(selector string) (cascadia.Selector, error) {
	if sel, ok := d.selectors[selector]; ok {
		return sel, nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	d.selectors[selector] = sel
	return sel, nil
}

func (d *Document) element(n *html.Node) *Element {
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elements[n] = el
	return el
}

func (d *Document) own(el port.Element) (*Element, error) {
	e, ok := el.(*Element)
	if !ok || e == nil || e.doc != d {
		return nil, ErrForeignElement
	}
	return e, nil
}

func (d *Document) connected(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}
