// Package jsbind exposes a parsed HTML document to a goja runtime as the
// window, document and element objects page scripts expect.
//
// A Bridge is not safe for concurrent use. Callers run it on the goroutine
// that owns the runtime, which is the event loop when one is attached.
package jsbind

import (
	"net/url"
	"strings"

	"github.com/dop251/goja"
	"golang.org/x/net/html"
)

// Host receives the effects of page scripts that reach outside the
// document: dialogs, navigation, windows, cookies and console output.
type Host interface {
	URL() *url.URL
	UserAgent() string
	Navigate(href string)
	Reload()
	// Activate runs the default action of a click on n.
	Activate(n *html.Node)
	// Submit submits form without firing its submit event.
	Submit(form, submitter *html.Node)
	Focus(n *html.Node)
	ActiveElement() *html.Node
	Open(href, name string)
	Close()
	Alert(msg string)
	Confirm(msg string) bool
	Prompt(msg, def string) (string, bool)
	Cookie() string
	SetCookie(s string)
	Console(level, msg string)
	Viewport() (width, height int)
}

// Console levels reported to the host.
const (
	LevelInfo    = "INFO"
	LevelWarning = "WARNING"
	LevelSevere  = "SEVERE"
)

// Bridge binds one document to one runtime.
type Bridge struct {
	vm   *goja.Runtime
	host Host
	doc  *html.Node

	document *goja.Object
	wrappers map[*html.Node]*goja.Object
	nodes    map[*goja.Object]*html.Node

	listeners       map[*html.Node]map[string][]goja.Value
	windowListeners map[string][]goja.Value
	readyState      string
}

// New installs the window and document globals for doc into vm.
func New(vm *goja.Runtime, doc *html.Node, host Host) *Bridge {
	b := &Bridge{
		vm:              vm,
		host:            host,
		doc:             doc,
		wrappers:        make(map[*html.Node]*goja.Object),
		nodes:           make(map[*goja.Object]*html.Node),
		listeners:       make(map[*html.Node]map[string][]goja.Value),
		windowListeners: make(map[string][]goja.Value),
		readyState:      "loading",
	}
	b.document = b.newDocument()
	b.wrappers[doc] = b.document
	b.nodes[b.document] = doc
	b.installWindow()
	return b
}

// Runtime returns the runtime the bridge is installed in.
func (b *Bridge) Runtime() *goja.Runtime {
	return b.vm
}

// SetReadyState updates document.readyState.
func (b *Bridge) SetReadyState(s string) {
	b.readyState = s
}

func (b *Bridge) accessor(obj *goja.Object, name string, get func() interface{}, set func(goja.Value)) {
	getter := b.vm.ToValue(func(goja.FunctionCall) goja.Value {
		return b.ToValue(get())
	})
	setter := goja.Undefined()
	if set != nil {
		setter = b.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0))
			return goja.Undefined()
		})
	}
	// Errors only come from redefining non-configurable properties.
	_ = obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
}

func (b *Bridge) installWindow() {
	global := b.vm.GlobalObject()
	global.Set("window", global)
	global.Set("self", global)
	global.Set("top", global)
	global.Set("document", b.document)

	global.Set("alert", func(call goja.FunctionCall) goja.Value {
		b.host.Alert(argString(call, 0))
		return goja.Undefined()
	})
	global.Set("confirm", func(call goja.FunctionCall) goja.Value {
		return b.vm.ToValue(b.host.Confirm(argString(call, 0)))
	})
	global.Set("prompt", func(call goja.FunctionCall) goja.Value {
		v, ok := b.host.Prompt(argString(call, 0), argString(call, 1))
		if !ok {
			return goja.Null()
		}
		return b.vm.ToValue(v)
	})
	global.Set("open", func(call goja.FunctionCall) goja.Value {
		b.host.Open(argString(call, 0), argString(call, 1))
		return goja.Null()
	})
	global.Set("close", func(goja.FunctionCall) goja.Value {
		b.host.Close()
		return goja.Undefined()
	})
	global.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		typ := argString(call, 0)
		if fn := call.Argument(1); isCallable(fn) {
			b.windowListeners[typ] = append(b.windowListeners[typ], fn)
		}
		return goja.Undefined()
	})
	global.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		typ := argString(call, 0)
		b.windowListeners[typ] = without(b.windowListeners[typ], call.Argument(1))
		return goja.Undefined()
	})
	b.accessor(global, "innerWidth", func() interface{} {
		w, _ := b.host.Viewport()
		return w
	}, nil)
	b.accessor(global, "innerHeight", func() interface{} {
		_, h := b.host.Viewport()
		return h
	}, nil)

	navigator := b.vm.NewObject()
	navigator.Set("userAgent", b.host.UserAgent())
	navigator.Set("cookieEnabled", true)
	global.Set("navigator", navigator)

	location := b.newLocation()
	b.accessor(global, "location", func() interface{} { return location }, func(v goja.Value) {
		b.host.Navigate(v.String())
	})
	b.accessor(b.document, "location", func() interface{} { return location }, func(v goja.Value) {
		b.host.Navigate(v.String())
	})

	console := b.vm.NewObject()
	for name, level := range map[string]string{
		"log":   LevelInfo,
		"info":  LevelInfo,
		"debug": LevelInfo,
		"warn":  LevelWarning,
		"error": LevelSevere,
	} {
		level := level
		console.Set(name, func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, a := range call.Arguments {
				parts[i] = a.String()
			}
			b.host.Console(level, strings.Join(parts, " "))
			return goja.Undefined()
		})
	}
	global.Set("console", console)
}

func (b *Bridge) newLocation() *goja.Object {
	loc := b.vm.NewObject()
	part := func(fn func(u *url.URL) string) func() interface{} {
		return func() interface{} {
			u := b.host.URL()
			if u == nil {
				return ""
			}
			return fn(u)
		}
	}
	b.accessor(loc, "href", part(func(u *url.URL) string { return u.String() }), func(v goja.Value) {
		b.host.Navigate(v.String())
	})
	b.accessor(loc, "protocol", part(func(u *url.URL) string { return u.Scheme + ":" }), nil)
	b.accessor(loc, "host", part(func(u *url.URL) string { return u.Host }), nil)
	b.accessor(loc, "hostname", part(func(u *url.URL) string { return u.Hostname() }), nil)
	b.accessor(loc, "port", part(func(u *url.URL) string { return u.Port() }), nil)
	b.accessor(loc, "pathname", part(func(u *url.URL) string { return u.EscapedPath() }), nil)
	b.accessor(loc, "search", part(func(u *url.URL) string {
		if u.RawQuery == "" {
			return ""
		}
		return "?" + u.RawQuery
	}), nil)
	b.accessor(loc, "hash", part(func(u *url.URL) string {
		if u.Fragment == "" {
			return ""
		}
		return "#" + u.Fragment
	}), nil)
	navigate := func(call goja.FunctionCall) goja.Value {
		b.host.Navigate(argString(call, 0))
		return goja.Undefined()
	}
	loc.Set("assign", navigate)
	loc.Set("replace", navigate)
	loc.Set("reload", func(goja.FunctionCall) goja.Value {
		b.host.Reload()
		return goja.Undefined()
	})
	loc.Set("toString", func(goja.FunctionCall) goja.Value {
		if u := b.host.URL(); u != nil {
			return b.vm.ToValue(u.String())
		}
		return b.vm.ToValue("")
	})
	return loc
}

func argString(call goja.FunctionCall, i int) string {
	v := call.Argument(i)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}

func isCallable(v goja.Value) bool {
	_, ok := goja.AssertFunction(v)
	return ok
}

func without(fns []goja.Value, fn goja.Value) []goja.Value {
	out := fns[:0]
	for _, f := range fns {
		if !f.SameAs(fn) {
			out = append(out, f)
		}
	}
	return out
}
