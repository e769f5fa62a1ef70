package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/bnema/gregify/internal/application/port"
)

// Observe subscribes fn to mutation batches.
func (d *Document) Observe(fn func(port.MutationBatch)) func() {
	d.observerID++
	id := d.observerID
	d.observers[id] = fn
	return func() {
		delete(d.observers, id)
	}
}

// AppendHTML parses fragment in the context of parent and appends the result.
func (d *Document) AppendHTML(parent port.Element, fragment string) ([]*Element, error) {
	p, err := d.own(parent)
	if err != nil {
		return nil, err
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), p.node)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}

	var added []*Element
	for _, n := range nodes {
		p.node.AppendChild(n)
		if n.Type == html.ElementNode {
			added = append(added, d.element(n))
		}
	}
	d.record(port.MutationRecord{Kind: port.MutationChildList, Target: p})
	return added, nil
}

// Remove detaches el from its parent.
func (d *Document) Remove(el port.Element) error {
	e, err := d.own(el)
	if err != nil {
		return err
	}
	parent := e.node.Parent
	if parent == nil {
		return nil
	}
	parent.RemoveChild(e.node)
	d.forget(e.node)
	if d.focused != nil && !d.connected(d.focused) {
		d.focused = nil
	}
	d.record(port.MutationRecord{Kind: port.MutationChildList, Target: d.element(parent)})
	return nil
}

// SetAttr sets an attribute.
func (d *Document) SetAttr(el port.Element, name, value string) error {
	e, err := d.own(el)
	if err != nil {
		return err
	}
	setAttr(e.node, name, value)
	d.record(port.MutationRecord{Kind: port.MutationAttributes, Target: e, Attribute: name})
	return nil
}

// RemoveAttr removes an attribute.
func (d *Document) RemoveAttr(el port.Element, name string) error {
	e, err := d.own(el)
	if err != nil {
		return err
	}
	attrs := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		attrs = append(attrs, a)
	}
	e.node.Attr = attrs
	d.record(port.MutationRecord{Kind: port.MutationAttributes, Target: e, Attribute: name})
	return nil
}

func (d *Document) appendChild(parent, child *html.Node) {
	parent.AppendChild(child)
	d.record(port.MutationRecord{Kind: port.MutationChildList, Target: d.element(parent)})
}

func (d *Document) replaceText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	d.record(port.MutationRecord{Kind: port.MutationChildList, Target: d.element(n)})
}

// forget drops per-node state of a removed subtree. Handles already given
// out keep working against their detached node.
func (d *Document) forget(n *html.Node) {
	delete(d.elements, n)
	delete(d.values, n)
	delete(d.cursors, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forget(c)
	}
}

func (d *Document) record(rec port.MutationRecord) {
	if len(d.observers) == 0 {
		return
	}
	d.batcher.Add(rec)
}

func (d *Document) deliver(records []port.MutationRecord) {
	batch := port.MutationBatch{Seq: d.batchSeq.Add(1), Records: records}
	observers := make([]func(port.MutationBatch), 0, len(d.observers))
	for _, fn := range d.observers {
		observers = append(observers, fn)
	}
	for _, fn := range observers {
		fn(batch)
	}
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}
