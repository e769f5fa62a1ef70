package dom

import (
	"golang.org/x/net/html"

	"github.com/bnema/gregify/internal/application/port"
)

type listener struct {
	node    *html.Node // nil for document level
	typ     string
	fn      port.EventListener
	removed bool
}

// AddEventListener registers fn at target, or at document level when target is nil.
func (d *Document) AddEventListener(target port.Element, eventType string, fn port.EventListener) func() {
	l := &listener{typ: eventType, fn: fn}
	if target != nil {
		e, err := d.own(target)
		if err != nil {
			return func() {}
		}
		l.node = e.node
	}
	d.listeners = append(d.listeners, l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		for i, other := range d.listeners {
			if other == l {
				d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
				return
			}
		}
	}
}

// dispatch runs target listeners, then ancestors when bubbling, then the
// document-level listeners. It reports whether a listener prevented the default.
func (d *Document) dispatch(target *html.Node, ev *port.Event, bubbles bool) bool {
	ev.Target = d.element(target)
	snapshot := make([]*listener, len(d.listeners))
	copy(snapshot, d.listeners)

	path := []*html.Node{target}
	if bubbles {
		for p := target.Parent; p != nil; p = p.Parent {
			if p.Type == html.ElementNode {
				path = append(path, p)
			}
		}
	}
	for _, n := range path {
		for _, l := range snapshot {
			if !l.removed && l.node == n && l.typ == ev.Type {
				l.fn(ev)
			}
		}
	}
	for _, l := range snapshot {
		if !l.removed && l.node == nil && l.typ == ev.Type {
			l.fn(ev)
		}
	}
	return ev.DefaultPrevented()
}

// Type replaces the text of a plain or rich surface the way a user edit
// would, moves the caret to the end and dispatches a user input event.
func (d *Document) Type(el port.Element, text string) error {
	e, err := d.own(el)
	if err != nil {
		return err
	}
	if !e.IsConnected() {
		return ErrSurfaceDetached
	}
	if isFormControl(e.node) {
		d.values[e.node] = text
	} else {
		d.replaceText(e.node, text)
	}
	d.cursors[e.node] = runeLen(text)
	d.focused = e.node
	d.dispatch(e.node, &port.Event{Type: "input"}, true)
	return nil
}

// KeyDown dispatches a user keydown and reports whether it was prevented.
func (d *Document) KeyDown(el port.Element, key string) (bool, error) {
	e, err := d.own(el)
	if err != nil {
		return false, err
	}
	return d.dispatch(e.node, &port.Event{Type: "keydown", Key: key}, true), nil
}

// Click dispatches a user click.
func (d *Document) Click(el port.Element) error {
	e, err := d.own(el)
	if err != nil {
		return err
	}
	d.dispatch(e.node, &port.Event{Type: "click"}, true)
	return nil
}

// Focus moves focus to el.
func (d *Document) Focus(el port.Element) error {
	e, err := d.own(el)
	if err != nil {
		return err
	}
	d.focused = e.node
	d.dispatch(e.node, &port.Event{Type: "focus"}, false)
	return nil
}

// Blur removes focus from el.
func (d *Document) Blur(el port.Element) error {
	e, err := d.own(el)
	if err != nil {
		return err
	}
	if d.focused == e.node {
		d.focused = nil
	}
	d.dispatch(e.node, &port.Event{Type: "blur"}, false)
	return nil
}

// SetCursor moves the caret of el to the given rune offset.
func (d *Document) SetCursor(el port.Element, offset int) error {
	e, err := d.own(el)
	if err != nil {
		return err
	}
	d.cursors[e.node] = offset
	return nil
}
