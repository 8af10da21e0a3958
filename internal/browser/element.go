package browser

import (
	"fmt"
	"time"

	"golang.org/x/net/html"

	"github.com/wanmail/htmlunit/internal/dom"
)

// implicitPoll is how often Find retries while an implicit wait is set.
const implicitPoll = 100 * time.Millisecond

// Element is a reference handed out to the client. It stays valid while its
// document is loaded and its node is attached to it.
type Element struct {
	ID   string
	Node *html.Node
	doc  *Document
}

// ref returns the reference for n in d, creating it on first use. The same
// node always gets the same reference.
func (b *Browser) ref(d *Document, n *html.Node) *Element {
	if id, ok := d.ids[n]; ok {
		if e, ok := b.elements[id]; ok {
			return e
		}
	}
	e := &Element{ID: newID(), Node: n, doc: d}
	d.ids[n] = e.ID
	b.elements[e.ID] = e
	return e
}

// Element looks up a reference by id.
func (b *Browser) Element(id string) (*Element, error) {
	if b.closed {
		return nil, ErrClosed
	}
	e, ok := b.elements[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown element reference %q", ErrNoSuchElement, id)
	}
	if err := e.check(); err != nil {
		return nil, err
	}
	return e, nil
}

// check reports ErrStaleElement once the element's page is gone. Node
// detachment is checked inside Do.
func (e *Element) check() error {
	if e.doc.closed.Load() {
		return fmt.Errorf("%w: the page holding the element was unloaded", ErrStaleElement)
	}
	return nil
}

// Do runs fn with access to the element's document after checking that the
// element is still attached.
func (e *Element) Do(fn func() error) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.doc.Do(func() error {
		if !dom.Contains(e.doc.Root, e.Node) {
			return fmt.Errorf("%w: the element is no longer attached to the page", ErrStaleElement)
		}
		return fn()
	})
}

// Find locates elements in the current browsing context, under parent when
// it is not nil. With wait set, it polls until something matches or wait
// has passed. Navigations queued by page timers are applied before every
// attempt. An empty result is not an error.
func (b *Browser) Find(parent *Element, by, value string, wait time.Duration) ([]*Element, error) {
	deadline := time.Now().Add(wait)
	for {
		if err := b.settle(); err != nil {
			return nil, err
		}
		found, err := b.find(parent, by, value)
		if err != nil || len(found) > 0 || !time.Now().Before(deadline) {
			return found, err
		}
		time.Sleep(implicitPoll)
	}
}

func (b *Browser) find(parent *Element, by, value string) ([]*Element, error) {
	d, err := b.document()
	if err != nil {
		return nil, err
	}
	var nodes []*html.Node
	search := func() error {
		root := d.Root
		if parent != nil {
			root = parent.Node
		}
		var err error
		nodes, err = dom.Find(root, by, value)
		return err
	}
	if parent != nil {
		d = parent.doc
		err = parent.Do(search)
	} else {
		err = d.Do(search)
	}
	if err != nil {
		return nil, err
	}
	found := make([]*Element, len(nodes))
	for i, n := range nodes {
		found[i] = b.ref(d, n)
	}
	return found, nil
}

// Tag returns the element's lower-case tag name.
func (e *Element) Tag() (string, error) {
	var tag string
	err := e.Do(func() error {
		tag = dom.Tag(e.Node)
		return nil
	})
	return tag, err
}

// Text returns the element's rendered text.
func (e *Element) Text() (string, error) {
	var text string
	err := e.Do(func() error {
		text = dom.Text(e.Node)
		return nil
	})
	return text, err
}

// Attribute returns an attribute, or the matching property for the names
// WebDriver reflects. ok is false when neither is present.
func (e *Element) Attribute(name string) (value string, ok bool, err error) {
	err = e.Do(func() error {
		value, ok = dom.Attribute(e.Node, name)
		return nil
	})
	return value, ok, err
}

// Property returns a DOM property as a string.
func (e *Element) Property(name string) (value string, ok bool, err error) {
	err = e.Do(func() error {
		value, ok = dom.Property(e.Node, name)
		return nil
	})
	return value, ok, err
}

// CSS returns the element's inline value for a style property.
func (e *Element) CSS(name string) (string, error) {
	var v string
	err := e.Do(func() error {
		v = dom.StyleProperty(e.Node, name)
		return nil
	})
	return v, err
}

func (e *Element) state(fn func(*html.Node) bool) (bool, error) {
	var on bool
	err := e.Do(func() error {
		on = fn(e.Node)
		return nil
	})
	return on, err
}

// IsSelected reports whether a checkbox, radio button or option is selected.
func (e *Element) IsSelected() (bool, error) { return e.state(dom.IsSelected) }

// IsEnabled reports whether a form control is enabled.
func (e *Element) IsEnabled() (bool, error) { return e.state(dom.IsEnabled) }

// IsDisplayed reports whether the element would be rendered.
func (e *Element) IsDisplayed() (bool, error) { return e.state(dom.IsDisplayed) }

// Rect returns a nominal layout box. Pages are not laid out, so only the
// displayed state affects it.
func (e *Element) Rect() (Rect, error) {
	shown, err := e.IsDisplayed()
	if err != nil || !shown {
		return Rect{}, err
	}
	return Rect{Width: 1, Height: 1}, nil
}
