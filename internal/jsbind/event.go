package jsbind

import (
	"github.com/dop251/goja"
	"golang.org/x/net/html"

	"github.com/wanmail/htmlunit/internal/dom"
)

// Events that do not propagate to ancestors.
var nonBubbling = map[string]bool{
	"load":  true,
	"focus": true,
	"blur":  true,
}

type event struct {
	obj       *goja.Object
	prevented bool
	stopped   bool
}

func (b *Bridge) newEvent(typ string, target *html.Node, props map[string]interface{}) *event {
	ev := &event{obj: b.vm.NewObject()}
	ev.obj.Set("type", typ)
	ev.obj.Set("target", b.ToValue(target))
	ev.obj.Set("bubbles", !nonBubbling[typ])
	for k, v := range props {
		ev.obj.Set(k, b.ToValue(v))
	}
	ev.obj.Set("preventDefault", func(goja.FunctionCall) goja.Value {
		ev.prevented = true
		return goja.Undefined()
	})
	ev.obj.Set("stopPropagation", func(goja.FunctionCall) goja.Value {
		ev.stopped = true
		return goja.Undefined()
	})
	b.accessor(ev.obj, "defaultPrevented", func() interface{} { return ev.prevented }, nil)
	return ev
}

// Dispatch fires an event of the given type at n and reports whether the
// default action should run.
func (b *Bridge) Dispatch(n *html.Node, typ string) bool {
	return b.DispatchEvent(n, typ, nil)
}

// DispatchEvent is Dispatch with extra properties set on the event object.
// Inline handlers run before listeners on each node, and a handler that
// returns false cancels the default action. Script errors are reported to
// the host console and do not stop propagation.
func (b *Bridge) DispatchEvent(n *html.Node, typ string, props map[string]interface{}) bool {
	ev := b.newEvent(typ, n, props)
	for cur := n; cur != nil; cur = cur.Parent {
		ev.obj.Set("currentTarget", b.ToValue(cur))
		if cur.Type == html.ElementNode {
			if code, ok := dom.Attr(cur, "on"+typ); ok {
				b.runInline(cur, code, ev)
			}
		}
		for _, fn := range append([]goja.Value(nil), b.listeners[cur][typ]...) {
			b.callHandler(fn, b.ToValue(cur), ev)
		}
		if ev.stopped || nonBubbling[typ] {
			break
		}
	}
	return !ev.prevented
}

// FireLoad marks the document complete and runs the window load handlers:
// window.onload, or the body onload attribute, then load listeners.
func (b *Bridge) FireLoad() {
	b.readyState = "complete"
	ev := b.newEvent("load", b.doc, nil)
	global := b.vm.GlobalObject()
	if fn := global.Get("onload"); fn != nil && isCallable(fn) {
		b.callHandler(fn, global, ev)
	} else if body := dom.First(b.doc, "body"); body != nil {
		if code, ok := dom.Attr(body, "onload"); ok {
			b.runInline(body, code, ev)
		}
	}
	for _, fn := range append([]goja.Value(nil), b.windowListeners["load"]...) {
		b.callHandler(fn, global, ev)
	}
}

func (b *Bridge) runInline(n *html.Node, code string, ev *event) {
	fn, err := b.vm.RunString("(function(event) {\n" + code + "\n})")
	if err != nil {
		b.host.Console(LevelSevere, b.fail(err).Error())
		return
	}
	b.callHandler(fn, b.ToValue(n), ev)
}

func (b *Bridge) callHandler(fn goja.Value, this goja.Value, ev *event) {
	call, ok := goja.AssertFunction(fn)
	if !ok {
		return
	}
	ret, err := call(this, ev.obj)
	if err != nil {
		b.host.Console(LevelSevere, b.fail(err).Error())
		return
	}
	if ret != nil && ret.StrictEquals(b.vm.ToValue(false)) {
		ev.prevented = true
	}
}

func (b *Bridge) setEventMethods(obj *goja.Object, n *html.Node) {
	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		typ, fn := argString(call, 0), call.Argument(1)
		if !isCallable(fn) {
			return goja.Undefined()
		}
		if b.listeners[n] == nil {
			b.listeners[n] = make(map[string][]goja.Value)
		}
		b.listeners[n][typ] = append(b.listeners[n][typ], fn)
		return goja.Undefined()
	})
	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		typ := argString(call, 0)
		if m := b.listeners[n]; m != nil {
			m[typ] = without(m[typ], call.Argument(1))
		}
		return goja.Undefined()
	})
	obj.Set("dispatchEvent", func(call goja.FunctionCall) goja.Value {
		typ := ""
		if v := call.Argument(0).ToObject(b.vm).Get("type"); v != nil {
			typ = v.String()
		}
		return b.vm.ToValue(b.Dispatch(n, typ))
	})
}
