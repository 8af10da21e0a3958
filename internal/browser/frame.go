package browser

import (
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/golang/glog"
	"golang.org/x/net/html"

	"github.com/wanmail/htmlunit/internal/dom"
	"github.com/wanmail/htmlunit/internal/jsbind"
)

// Frame is a browsing context: the top of a window or a nested (i)frame.
type Frame struct {
	window   *Window
	parent   *Frame
	owner    *html.Node
	doc      *Document
	detached bool
}

func (f *Frame) close() {
	f.detached = true
	if f.doc != nil {
		f.doc.close()
	}
}

// Document is one loaded page. Its nodes are only touched through Do.
type Document struct {
	b     *Browser
	frame *Frame
	Root  *html.Node

	mu       sync.Mutex
	location *url.URL

	frames []*Frame
	loop   *eventloop.EventLoop
	bridge *jsbind.Bridge
	focus  *html.Node
	ids    map[*html.Node]string
	closed atomic.Bool
}

var blankURL = &url.URL{Scheme: "about", Opaque: "blank"}

func (b *Browser) newDocument(f *Frame, u *url.URL, root *html.Node) *Document {
	return &Document{
		b:        b,
		frame:    f,
		location: u,
		Root:     root,
		ids:      make(map[*html.Node]string),
	}
}

// Location returns the document's address. Fragment navigation changes it
// from the event loop, so it is read under the document's lock.
func (d *Document) Location() *url.URL {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.location
}

func (d *Document) setLocation(u *url.URL) {
	d.mu.Lock()
	d.location = u
	d.mu.Unlock()
}

func (b *Browser) blankDocument(f *Frame) *Document {
	d := b.newDocument(f, blankURL, dom.Blank())
	if b.opts.JavaScript {
		d.startLoop()
	}
	return d
}

// startLoop attaches an event loop with the script bridge installed.
func (d *Document) startLoop() {
	d.loop = eventloop.NewEventLoop()
	d.loop.Start()
	ready := make(chan struct{})
	d.loop.RunOnLoop(func(vm *goja.Runtime) {
		d.bridge = jsbind.New(vm, d.Root, &host{d: d})
		close(ready)
	})
	<-ready
}

func (d *Document) close() {
	if d.closed.Swap(true) {
		return
	}
	for _, c := range d.frames {
		c.close()
	}
	if d.loop != nil {
		d.bridge.Interrupt("document closed")
		d.loop.Stop()
	}
	for _, id := range d.ids {
		delete(d.b.elements, id)
	}
}

// Do runs fn with exclusive access to the document's nodes: on the event
// loop when scripts are enabled, inline otherwise.
func (d *Document) Do(fn func() error) error {
	return d.within(d.b.opts.ScriptTimeout, ErrTimeout, fn)
}

// within is Do with an explicit bound. When the loop does not run fn in
// time, the running script is interrupted and errTimeout is returned.
func (d *Document) within(limit time.Duration, errTimeout error, fn func() error) error {
	if d.closed.Load() {
		return ErrStaleElement
	}
	if d.loop == nil {
		return fn()
	}
	done := make(chan error, 1)
	d.loop.RunOnLoop(func(*goja.Runtime) {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%w: %v", jsbind.ErrScript, r)
			}
		}()
		done <- fn()
	})
	timer := time.NewTimer(limit)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		glog.Warningf("htmlunit: %s: script did not finish within %v", d.Location(), limit)
		d.bridge.Interrupt(errTimeout)
		return errTimeout
	}
}

// frame finds a child frame of f's document.
func (f *Frame) frame(id interface{}) (*Frame, error) {
	children := f.doc.frames
	switch v := id.(type) {
	case int:
		if v < 0 || v >= len(children) {
			return nil, fmt.Errorf("%w: index %d", ErrNoSuchFrame, v)
		}
		return children[v], nil
	case string:
		for _, c := range children {
			if dom.AttrOr(c.owner, "id", "") == v {
				return c, nil
			}
		}
		for _, c := range children {
			if dom.AttrOr(c.owner, "name", "") == v {
				return c, nil
			}
		}
		if i, err := strconv.Atoi(v); err == nil {
			return f.frame(i)
		}
		return nil, fmt.Errorf("%w: %q", ErrNoSuchFrame, v)
	case *html.Node:
		for _, c := range children {
			if c.owner == v {
				return c, nil
			}
		}
		return nil, fmt.Errorf("%w: element is not a frame of the current document", ErrNoSuchFrame)
	}
	return nil, fmt.Errorf("%w: unsupported frame id %T", ErrInvalidArgument, id)
}

// SwitchFrame changes the current browsing context. A nil id selects the
// top frame of the current window; an int selects a child frame by index; a
// string by id or name; an *Element by its frame element.
func (b *Browser) SwitchFrame(id interface{}) error {
	f, err := b.context()
	if err != nil {
		return err
	}
	if id == nil {
		b.frame = b.current.top
		return nil
	}
	if e, ok := id.(*Element); ok {
		if err := e.check(); err != nil {
			return err
		}
		if e.doc != f.doc {
			return fmt.Errorf("%w: element belongs to another frame", ErrNoSuchFrame)
		}
		id = e.Node
	}
	child, err := f.frame(id)
	if err != nil {
		return err
	}
	b.frame = child
	return nil
}

// SwitchParentFrame moves to the parent of the current browsing context. At
// the top it does nothing.
func (b *Browser) SwitchParentFrame() error {
	f, err := b.context()
	if err != nil {
		return err
	}
	if f.parent != nil {
		b.frame = f.parent
	}
	return nil
}
