package dom

import (
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/domain/entity"
)

// Surface is the SurfaceAdapter for elements of this document. Plain surfaces
// use the form-control value; rich surfaces replace their text content.
type Surface struct {
	doc  *Document
	el   *Element
	kind entity.SurfaceKind
}

var _ port.SurfaceAdapter = (*Surface)(nil)

// Element returns the bound element.
func (s *Surface) Element() port.Element {
	return s.el
}

// Kind reports whether the surface is plain or rich.
func (s *Surface) Kind() entity.SurfaceKind {
	return s.kind
}

// Read returns the live text of the surface.
func (s *Surface) Read() string {
	if s.kind == entity.SurfaceKindPlain {
		return s.doc.value(s.el.node)
	}
	return textContent(s.el.node)
}

// Write replaces the surface text and moves the cursor to its end. It fails
// once the element is detached or its tag no longer matches the kind.
func (s *Surface) Write(text string) error {
	if !s.el.IsConnected() {
		return ErrSurfaceDetached
	}
	if entity.ClassifySurface(s.el.TagName()) != s.kind {
		return ErrSurfaceKindMismatch
	}
	if s.kind == entity.SurfaceKindPlain {
		s.doc.values[s.el.node] = text
	} else {
		s.doc.replaceText(s.el.node, text)
	}
	s.doc.cursors[s.el.node] = runeLen(text)
	return nil
}

// EmitChangeSignals dispatches synthetic input and change events, then
// focuses the element.
func (s *Surface) EmitChangeSignals() error {
	if !s.el.IsConnected() {
		return ErrSurfaceDetached
	}
	n := s.el.node
	s.doc.dispatch(n, &port.Event{Type: "input", Synthetic: true}, true)
	s.doc.dispatch(n, &port.Event{Type: "change", Synthetic: true}, true)
	s.doc.focused = n
	s.doc.dispatch(n, &port.Event{Type: "focus", Synthetic: true}, false)
	return nil
}

// LocateCursorOffset returns the cursor position, defaulting to the end of
// the text.
func (s *Surface) LocateCursorOffset() entity.CursorOffset {
	text := s.Read()
	offset, ok := s.doc.cursors[s.el.node]
	if !ok {
		offset = runeLen(text)
	}
	return entity.CursorOffsetAt(text, offset)
}

// Value returns the live value of a form control.
func (d *Document) Value(el port.Element) string {
	e, err := d.own(el)
	if err != nil {
		return ""
	}
	if isFormControl(e.node) {
		return d.value(e.node)
	}
	return textContent(e.node)
}

// SetValue replaces the text of el without dispatching events, the way a
// page script resets a controlled input. Form controls record a value
// mutation; rich elements record their child list change.
func (d *Document) SetValue(el port.Element, text string) error {
	e, err := d.own(el)
	if err != nil {
		return err
	}
	if isFormControl(e.node) {
		d.values[e.node] = text
		d.record(port.MutationRecord{Kind: port.MutationValue, Target: e})
	} else {
		d.replaceText(e.node, text)
	}
	d.cursors[e.node] = runeLen(text)
	return nil
}

func (d *Document) value(n *html.Node) string {
	if v, ok := d.values[n]; ok {
		return v
	}
	if n.Data == "input" {
		for _, a := range n.Attr {
			if a.Key == "value" {
				return a.Val
			}
		}
		return ""
	}
	return textContent(n)
}

func isFormControl(n *html.Node) bool {
	return n.Data == "textarea" || n.Data == "input"
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
