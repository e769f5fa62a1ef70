package dom

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/domain/entity"
)

// GhostAttr marks the overlay element.
const GhostAttr = "data-gregify-ghost"

const (
	ghostLineHeight = 22
	ghostTopPadding = 5
	ghostLeft       = 10
)

// GhostOverlay renders ghost text as a non-interactive element appended to
// the document body.
type GhostOverlay struct {
	doc  *Document
	node *html.Node
}

var _ port.OverlayRenderer = (*GhostOverlay)(nil)

// NewGhostOverlay creates a renderer for doc.
func NewGhostOverlay(doc *Document) *GhostOverlay {
	return &GhostOverlay{doc: doc}
}

// Show creates or updates the overlay element.
func (o *GhostOverlay) Show(_ context.Context, text string, anchor entity.CursorOffset) error {
	top := (anchor.Line+1)*ghostLineHeight + ghostTopPadding
	style := fmt.Sprintf(
		"position:absolute;top:%dpx;left:%dpx;pointer-events:none;opacity:0.5;white-space:pre-wrap",
		top, ghostLeft,
	)

	if o.node == nil || !o.doc.connected(o.node) {
		body := o.doc.Body()
		if body == nil {
			return fmt.Errorf("ghost overlay: document has no body")
		}
		o.node = &html.Node{
			Type:     html.ElementNode,
			Data:     "div",
			DataAtom: atom.Div,
			Attr: []html.Attribute{
				{Key: GhostAttr, Val: "true"},
				{Key: "aria-hidden", Val: "true"},
			},
		}
		o.doc.appendChild(body.node, o.node)
	}

	setAttr(o.node, "style", style)
	setAttr(o.node, "data-line", strconv.Itoa(anchor.Line))
	setAttr(o.node, "data-column", strconv.Itoa(anchor.Column))
	o.doc.replaceText(o.node, text)
	return nil
}

// Hide removes the overlay element if present.
func (o *GhostOverlay) Hide(_ context.Context) {
	if o.node == nil {
		return
	}
	if parent := o.node.Parent; parent != nil {
		parent.RemoveChild(o.node)
		o.doc.record(port.MutationRecord{Kind: port.MutationChildList, Target: o.doc.element(parent)})
	}
	o.node = nil
}

// Visible reports whether the overlay is attached.
func (o *GhostOverlay) Visible() bool {
	return o.node != nil && o.doc.connected(o.node)
}

// Text returns the previewed text, empty when hidden.
func (o *GhostOverlay) Text() string {
	if !o.Visible() {
		return ""
	}
	return textContent(o.node)
}
