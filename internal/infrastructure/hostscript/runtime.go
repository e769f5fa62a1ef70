// Package hostscript runs the host application's own page scripts. Scripts
// only ever see the page through dispatched DOM events and a small page API,
// so they interact with the engine exactly as the host page would.
package hostscript

import (
	"context"
	"errors"
	"fmt"

	"github.com/grafana/sobek"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/infrastructure/dom"
	"github.com/bnema/gregify/internal/logging"
)

// ErrClosed is returned when running a script after Close.
var ErrClosed = errors.New("host script runtime closed")

// Runtime is one page's script realm. Like the document it drives, it must
// only be used from the page loop.
type Runtime struct {
	ctx     context.Context
	doc     *dom.Document
	vm      *sobek.Runtime
	page    *sobek.Object
	removes []func()
	closed  bool
}

// New creates a realm bound to doc. The global page object exposes on,
// query, value, setValue, append, remove, setAttr and log; a global state
// object is shared by every script of the realm.
func New(ctx context.Context, doc *dom.Document) (*Runtime, error) {
	r := &Runtime{
		ctx: logging.WithComponent(ctx, "hostscript"),
		doc: doc,
		vm:  sobek.New(),
	}
	r.vm.SetFieldNameMapper(sobek.TagFieldNameMapper("json", true))

	if err := r.vm.Set("state", r.vm.NewObject()); err != nil {
		return nil, err
	}
	if err := r.installPage(); err != nil {
		return nil, err
	}
	return r, nil
}

// Run evaluates src as script name.
func (r *Runtime) Run(name, src string) error {
	if r.closed {
		return ErrClosed
	}
	if _, err := r.vm.RunScript(name, src); err != nil {
		return fmt.Errorf("host script %s: %w", name, err)
	}
	return nil
}

// State exports the shared state object.
func (r *Runtime) State() map[string]any {
	v := r.vm.Get("state")
	if v == nil || sobek.IsUndefined(v) || sobek.IsNull(v) {
		return nil
	}
	m, _ := v.Export().(map[string]any)
	return m
}

// Close removes every listener registered by the realm's scripts.
func (r *Runtime) Close() {
	if r.closed {
		return
	}
	r.closed = true
	for _, remove := range r.removes {
		remove()
	}
	r.removes = nil
}

func (r *Runtime) installPage() error {
	r.page = r.vm.NewObject()
	funcs := map[string]func(sobek.FunctionCall) sobek.Value{
		"on":       r.jsOn,
		"query":    r.jsQuery,
		"value":    r.jsValue,
		"setValue": r.jsSetValue,
		"append":   r.jsAppend,
		"remove":   r.jsRemove,
		"setAttr":  r.jsSetAttr,
		"log":      r.jsLog,
	}
	for name, fn := range funcs {
		if err := r.page.Set(name, fn); err != nil {
			return err
		}
	}
	if err := r.page.Set("url", r.doc.URL()); err != nil {
		return err
	}
	return r.vm.Set("page", r.page)
}

// page.on(type, fn) listens at document level.
func (r *Runtime) jsOn(call sobek.FunctionCall) sobek.Value {
	typ := call.Argument(0).String()
	fn, ok := sobek.AssertFunction(call.Argument(1))
	if !ok {
		panic(r.vm.NewTypeError("page.on: listener must be a function"))
	}

	remove := r.doc.AddEventListener(nil, typ, func(ev *port.Event) {
		if r.closed {
			return
		}
		if _, err := fn(sobek.Undefined(), r.eventObject(ev)); err != nil {
			logging.FromContext(r.ctx).Warn().Err(err).Str("event", typ).Msg("host listener threw")
		}
	})
	r.removes = append(r.removes, remove)
	return sobek.Undefined()
}

func (r *Runtime) eventObject(ev *port.Event) sobek.Value {
	obj := r.vm.NewObject()
	_ = obj.Set("type", ev.Type)
	_ = obj.Set("key", ev.Key)
	_ = obj.Set("synthetic", ev.Synthetic)
	_ = obj.Set("preventDefault", func(sobek.FunctionCall) sobek.Value {
		ev.PreventDefault()
		return sobek.Undefined()
	})
	if el, ok := ev.Target.(*dom.Element); ok && el != nil {
		_ = obj.Set("targetId", el.ID())
		_ = obj.Set("targetTag", el.TagName())
		_ = obj.Set("value", r.doc.Value(el))
	}
	return obj
}

// page.query(sel) returns {id, tag, text, connected} or null.
func (r *Runtime) jsQuery(call sobek.FunctionCall) sobek.Value {
	el := r.find(call.Argument(0).String())
	if el == nil {
		return sobek.Null()
	}
	obj := r.vm.NewObject()
	_ = obj.Set("id", el.ID())
	_ = obj.Set("tag", el.TagName())
	_ = obj.Set("text", el.Text())
	_ = obj.Set("connected", el.IsConnected())
	return obj
}

// page.value(sel) returns the live value, or null when nothing matches.
func (r *Runtime) jsValue(call sobek.FunctionCall) sobek.Value {
	el := r.find(call.Argument(0).String())
	if el == nil {
		return sobek.Null()
	}
	return r.vm.ToValue(r.doc.Value(el))
}

// page.setValue(sel, text) resets a control without events.
func (r *Runtime) jsSetValue(call sobek.FunctionCall) sobek.Value {
	el := r.mustFind(call.Argument(0).String())
	r.check(r.doc.SetValue(el, call.Argument(1).String()))
	return sobek.Undefined()
}

// page.append(sel, html) parses html and appends it to the first match.
func (r *Runtime) jsAppend(call sobek.FunctionCall) sobek.Value {
	el := r.mustFind(call.Argument(0).String())
	added, err := r.doc.AppendHTML(el, call.Argument(1).String())
	r.check(err)
	return r.vm.ToValue(len(added))
}

// page.remove(sel) detaches the first match; it reports whether one existed.
func (r *Runtime) jsRemove(call sobek.FunctionCall) sobek.Value {
	el := r.find(call.Argument(0).String())
	if el == nil {
		return r.vm.ToValue(false)
	}
	r.check(r.doc.Remove(el))
	return r.vm.ToValue(true)
}

// page.setAttr(sel, name, value)
func (r *Runtime) jsSetAttr(call sobek.FunctionCall) sobek.Value {
	el := r.mustFind(call.Argument(0).String())
	r.check(r.doc.SetAttr(el, call.Argument(1).String(), call.Argument(2).String()))
	return sobek.Undefined()
}

func (r *Runtime) jsLog(call sobek.FunctionCall) sobek.Value {
	parts := make([]any, 0, len(call.Arguments))
	for _, a := range call.Arguments {
		parts = append(parts, a.Export())
	}
	logging.FromContext(r.ctx).Debug().Interface("args", parts).Msg("host script log")
	return sobek.Undefined()
}

func (r *Runtime) find(selector string) *dom.Element {
	el, err := r.doc.Find(selector)
	r.check(err)
	return el
}

func (r *Runtime) mustFind(selector string) *dom.Element {
	el := r.find(selector)
	if el == nil {
		panic(r.vm.NewTypeError(fmt.Sprintf("no element matches %q", selector)))
	}
	return el
}

// check turns a Go error into a JS exception.
func (r *Runtime) check(err error) {
	if err != nil {
		panic(r.vm.NewGoError(err))
	}
}
