package port

import "github.com/bnema/gregify/internal/domain/entity"

// Element is a node of the host document. Handles are comparable: the same
// node always yields the same Element value.
type Element interface {
	TagName() string
	Attr(name string) (string, bool)
	// IsConnected reports whether the node is still attached to its document.
	IsConnected() bool
}

// Event is a DOM event delivered to listeners.
type Event struct {
	Type      string
	Key       string
	Target    Element
	Synthetic bool // dispatched by the engine, not by the user

	defaultPrevented bool
}

// PreventDefault stops the host page from acting on the event.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether a listener called PreventDefault.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// EventListener receives dispatched events. It runs on the document's loop.
type EventListener func(ev *Event)

// MutationKind classifies a mutation record.
type MutationKind string

const (
	MutationChildList  MutationKind = "childList"
	MutationAttributes MutationKind = "attributes"
	// MutationValue is a form-control value set by a page script. Typing
	// and engine writes do not produce it.
	MutationValue MutationKind = "value"
)

// MutationRecord describes one structural change.
type MutationRecord struct {
	Kind      MutationKind
	Target    Element
	Attribute string
}

// MutationBatch groups the records observed during one loop turn.
type MutationBatch struct {
	Seq     uint64
	Records []MutationRecord
}

// Document is the host page as seen by the engine. Implementations are not
// safe for concurrent use; every call happens on the page's loop.
type Document interface {
	URL() string

	// QuerySelector returns the first element in document order matching
	// selector, nil when none matches, or an error for an invalid selector.
	QuerySelector(selector string) (Element, error)

	// Walk visits elements in document order until visit returns false.
	Walk(visit func(Element) bool)

	// Observe subscribes to subtree-wide child-list, attribute and scripted
	// value mutations.
	// Batches are delivered asynchronously on the loop.
	Observe(fn func(MutationBatch)) (disconnect func())

	// AddEventListener registers fn for events dispatched at or bubbling
	// through target. A nil target listens at document level and sees every
	// event.
	AddEventListener(target Element, eventType string, fn EventListener) (remove func())

	// Click dispatches a click at el.
	Click(el Element) error

	// Surface wraps el in an adapter using the mechanism for kind.
	Surface(el Element, kind entity.SurfaceKind) (SurfaceAdapter, error)
}
