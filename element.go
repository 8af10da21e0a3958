package htmlunit

import (
	"encoding/json"

	"github.com/wanmail/htmlunit/internal/browser"
)

// Element is an element of a Driver's page.
type Element struct {
	d *Driver
	e *browser.Element
}

var _ WebElement = (*Element)(nil)

// wrap returns the WebElement for an engine reference. It runs under the
// session lock.
func (d *Driver) wrap(e *browser.Element) *Element {
	return &Element{d: d, e: e}
}

func (el *Element) engine() *browser.Element {
	if el == nil {
		return nil
	}
	return el.e
}

// ID returns the reference ID of the element, as sent over the wire.
func (el *Element) ID() string {
	return el.e.ID
}

// MarshalJSON encodes the element as a W3C element reference.
func (el *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{ElementKey: el.e.ID})
}

// Click clicks the element.
func (el *Element) Click() error {
	return el.d.do(func(b *browser.Browser) error {
		return b.Click(el.e)
	})
}

// SendKeys types keys at the end of the element's value.
func (el *Element) SendKeys(keys string) error {
	return el.d.do(func(b *browser.Browser) error {
		return b.SendKeys(el.e, keys)
	})
}

// Submit submits the form the element belongs to.
func (el *Element) Submit() error {
	return el.d.do(func(b *browser.Browser) error {
		return b.Submit(el.e)
	})
}

// Clear empties a text control.
func (el *Element) Clear() error {
	return el.d.do(func(b *browser.Browser) error {
		return b.Clear(el.e)
	})
}

// MoveTo moves the pointer over the element. Offsets are recorded but do
// not change the target, as the engine does no layout.
func (el *Element) MoveTo(xOffset, yOffset int) error {
	return el.d.do(func(b *browser.Browser) error {
		return b.PointerMove(el.e, xOffset, yOffset)
	})
}

// FindElement finds the first descendant matching the locator.
func (el *Element) FindElement(by, value string) (WebElement, error) {
	return el.d.findElement(el, by, value)
}

// FindElements finds every descendant matching the locator.
func (el *Element) FindElements(by, value string) ([]WebElement, error) {
	return el.d.findElements(el, by, value)
}

func (el *Element) stringQuery(fn func(*browser.Element) (string, error)) (string, error) {
	var s string
	err := el.d.do(func(*browser.Browser) error {
		var err error
		s, err = fn(el.e)
		return err
	})
	return s, err
}

func (el *Element) boolQuery(fn func(*browser.Element) (bool, error)) (bool, error) {
	var v bool
	err := el.d.do(func(*browser.Browser) error {
		var err error
		v, err = fn(el.e)
		return err
	})
	return v, err
}

// TagName returns the lower-case tag name.
func (el *Element) TagName() (string, error) {
	return el.stringQuery((*browser.Element).Tag)
}

// Text returns the rendered text of the element.
func (el *Element) Text() (string, error) {
	return el.stringQuery((*browser.Element).Text)
}

// IsSelected reports whether a checkbox, radio or option is selected.
func (el *Element) IsSelected() (bool, error) {
	return el.boolQuery((*browser.Element).IsSelected)
}

// IsEnabled reports whether the element is not disabled.
func (el *Element) IsEnabled() (bool, error) {
	return el.boolQuery((*browser.Element).IsEnabled)
}

// IsDisplayed reports whether the element would be rendered.
func (el *Element) IsDisplayed() (bool, error) {
	return el.boolQuery((*browser.Element).IsDisplayed)
}

// GetAttribute returns an attribute value. For "value" it is the current
// value of the control, and boolean attributes read "true" when set. An
// absent attribute gives ErrNullValue.
func (el *Element) GetAttribute(name string) (string, error) {
	return el.optional(name, (*browser.Element).Attribute)
}

// GetProperty returns a DOM property of the element, or ErrNullValue when
// the element has no such property.
func (el *Element) GetProperty(name string) (string, error) {
	return el.optional(name, (*browser.Element).Property)
}

func (el *Element) optional(name string, fn func(*browser.Element, string) (string, bool, error)) (string, error) {
	var value string
	err := el.d.do(func(*browser.Browser) error {
		v, ok, err := fn(el.e, name)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNullValue
		}
		value = v
		return nil
	})
	return value, err
}

func (el *Element) rect() (browser.Rect, error) {
	var r browser.Rect
	err := el.d.do(func(*browser.Browser) error {
		var err error
		r, err = el.e.Rect()
		return err
	})
	return r, err
}

// Location returns the element's position.
func (el *Element) Location() (*Point, error) {
	r, err := el.rect()
	if err != nil {
		return nil, err
	}
	return &Point{X: r.X, Y: r.Y}, nil
}

// LocationInView is Location: pages do not scroll.
func (el *Element) LocationInView() (*Point, error) {
	return el.Location()
}

// Size returns the element's size.
func (el *Element) Size() (*Size, error) {
	r, err := el.rect()
	if err != nil {
		return nil, err
	}
	return &Size{Width: r.Width, Height: r.Height}, nil
}

// CSSProperty returns an inline style property of the element.
func (el *Element) CSSProperty(name string) (string, error) {
	return el.stringQuery(func(e *browser.Element) (string, error) {
		return e.CSS(name)
	})
}

// Screenshot is not supported.
func (el *Element) Screenshot(scroll bool) ([]byte, error) {
	return el.d.Screenshot()
}
