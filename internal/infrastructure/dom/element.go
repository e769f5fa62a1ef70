package dom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/bnema/gregify/internal/application/port"
)

// Element is a handle to an element node. The document hands out one handle
// per node, so handles compare equal when the nodes do.
type Element struct {
	doc  *Document
	node *html.Node
}

var _ port.Element = (*Element)(nil)

func (e *Element) TagName() string {
	return e.node.Data
}

func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e *Element) IsConnected() bool {
	return e.doc.connected(e.node)
}

// ID returns the id attribute.
func (e *Element) ID() string {
	id, _ := e.Attr("id")
	return id
}

// Text returns the text content of the subtree.
func (e *Element) Text() string {
	return textContent(e.node)
}

// OuterHTML renders the element.
func (e *Element) OuterHTML() string {
	var b strings.Builder
	_ = html.Render(&b, e.node)
	return b.String()
}

// Describe returns a short label like textarea#prompt-textarea for logs.
func (e *Element) Describe() string {
	label := e.node.Data
	if id := e.ID(); id != "" {
		label += "#" + id
	}
	return label
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
