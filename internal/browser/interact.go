package browser

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/wanmail/htmlunit/internal/dom"
)

// activate runs the default action of a click on n. It runs with access to
// d's nodes, from Do or from a script's element.click().
func (b *Browser) activate(d *Document, n *html.Node) {
	if !dom.IsEnabled(n) {
		return
	}
	b.focus(d, n)
	switch {
	case dom.Tag(n) == "input" && dom.InputType(n) == "checkbox":
		dom.SetChecked(n, !dom.IsChecked(n))
		b.dispatch(d, n, "change")
	case dom.Tag(n) == "input" && dom.InputType(n) == "radio":
		if !dom.IsChecked(n) {
			dom.CheckRadio(n)
			b.dispatch(d, n, "change")
		}
	case dom.Tag(n) == "option":
		sel := dom.Ancestor(n, "select")
		if sel != nil && !dom.IsEnabled(sel) {
			return
		}
		if sel != nil && dom.HasAttr(sel, "multiple") {
			dom.SetSelected(n, !dom.IsSelected(n))
		} else {
			dom.SetSelected(n, true)
		}
		if sel != nil {
			b.dispatch(d, sel, "change")
		}
	case dom.IsSubmitter(n):
		if form := dom.Form(n); form != nil {
			b.submit(d, form, n, true)
		}
	}
	if a := dom.Ancestor(n, "a"); a != nil || dom.Tag(n) == "a" {
		if a == nil {
			a = n
		}
		if href, ok := dom.Attr(a, "href"); ok {
			b.navigateFrom(d, href, dom.AttrOr(a, "target", ""))
		}
	}
}

func (b *Browser) dispatch(d *Document, n *html.Node, typ string) bool {
	if d.bridge == nil {
		return true
	}
	return d.bridge.Dispatch(n, typ)
}

// focus moves focus to n, firing blur and focus events.
func (b *Browser) focus(d *Document, n *html.Node) {
	if d.focus == n {
		return
	}
	if d.focus != nil && dom.Contains(d.Root, d.focus) {
		b.dispatch(d, d.focus, "blur")
	}
	d.focus = n
	b.dispatch(d, n, "focus")
}

// Click clicks the element: it fires the click event and runs the default
// action unless a handler cancelled it.
func (b *Browser) Click(e *Element) error {
	err := e.Do(func() error {
		if !dom.IsDisplayed(e.Node) {
			return fmt.Errorf("%w: <%s> is not displayed", ErrNotInteractable, dom.Tag(e.Node))
		}
		b.click(e.doc, e.Node)
		return nil
	})
	if err != nil {
		return err
	}
	return b.settle()
}

func (b *Browser) click(d *Document, n *html.Node) {
	b.dispatch(d, n, "mousedown")
	b.dispatch(d, n, "mouseup")
	if b.dispatch(d, n, "click") {
		b.activate(d, n)
	}
}

// editable reports whether keys typed into n change its value.
func editable(n *html.Node) error {
	if !dom.IsTextField(n) {
		return fmt.Errorf("%w: <%s> does not accept text", ErrNotInteractable, dom.Tag(n))
	}
	if !dom.IsEnabled(n) || dom.HasAttr(n, "readonly") {
		return fmt.Errorf("%w: <%s> is disabled or read-only", ErrNotInteractable, dom.Tag(n))
	}
	return nil
}

// SendKeys types keys into a text control. Modifier keys in keys stay
// pressed until they appear again or the sequence ends.
func (b *Browser) SendKeys(e *Element, keys string) error {
	err := e.Do(func() error {
		n := e.Node
		if dom.Tag(n) == "input" && dom.InputType(n) == "file" {
			dom.SetValue(n, keys)
			b.dispatch(e.doc, n, "change")
			return nil
		}
		if err := editable(n); err != nil {
			return err
		}
		b.focus(e.doc, n)
		kb := b.keys
		before := dom.Value(n)
		kb.Sequence(keys, func(ed dom.Edit) {
			b.edit(e.doc, n, ed)
		})
		if dom.Value(n) != before {
			b.dispatch(e.doc, n, "change")
		}
		return nil
	})
	if err != nil {
		return err
	}
	return b.settle()
}

// edit applies one key press to the focused control n.
func (b *Browser) edit(d *Document, n *html.Node, ed dom.Edit) {
	b.dispatch(d, n, "keydown")
	switch ed.Kind {
	case dom.EditInsert, dom.EditBackspace:
		dom.SetValue(n, dom.ApplyEdit(dom.Value(n), ed))
		b.dispatch(d, n, "keypress")
		b.dispatch(d, n, "input")
	case dom.EditEnter:
		if dom.Tag(n) == "textarea" {
			dom.SetValue(n, dom.Value(n)+"\n")
			b.dispatch(d, n, "input")
			break
		}
		if form := dom.Form(n); form != nil && dom.Tag(n) == "input" {
			b.submit(d, form, defaultButton(form), true)
		}
	}
	b.dispatch(d, n, "keyup")
}

// defaultButton is the first submit button of a form, which implicit
// submission reports as the submitter.
func defaultButton(form *html.Node) *html.Node {
	for _, c := range dom.FormControls(form) {
		if dom.IsSubmitter(c) && dom.IsEnabled(c) {
			return c
		}
	}
	return nil
}

// Clear empties a text control.
func (b *Browser) Clear(e *Element) error {
	err := e.Do(func() error {
		if err := editable(e.Node); err != nil {
			return err
		}
		if dom.Value(e.Node) == "" {
			return nil
		}
		dom.SetValue(e.Node, "")
		b.dispatch(e.doc, e.Node, "input")
		b.dispatch(e.doc, e.Node, "change")
		return nil
	})
	if err != nil {
		return err
	}
	return b.settle()
}

// Submit submits the form owning the element.
func (b *Browser) Submit(e *Element) error {
	err := e.Do(func() error {
		form := dom.Form(e.Node)
		if form == nil {
			return fmt.Errorf("%w: <%s> is not in a form", ErrNoSuchElement, dom.Tag(e.Node))
		}
		b.submit(e.doc, form, nil, true)
		return nil
	})
	if err != nil {
		return err
	}
	return b.settle()
}

// focused is the element key actions are sent to: the focused element of d,
// or its body.
func focused(d *Document) *html.Node {
	if d.focus != nil && dom.Contains(d.Root, d.focus) {
		return d.focus
	}
	return dom.First(d.Root, "body")
}

// KeyDown presses a key on the focused element of the current document.
// Modifiers stay pressed until KeyUp or ReleaseActions.
func (b *Browser) KeyDown(key rune) error {
	d, err := b.document()
	if err != nil {
		return err
	}
	err = d.Do(func() error {
		ed := b.keys.Down(key)
		n := focused(d)
		if n == nil {
			return nil
		}
		if ed.Kind == dom.EditNone || editable(n) != nil {
			b.dispatch(d, n, "keydown")
			return nil
		}
		b.edit(d, n, ed)
		return nil
	})
	if err != nil {
		return err
	}
	return b.settle()
}

// KeyUp releases a key.
func (b *Browser) KeyUp(key rune) error {
	if _, err := b.document(); err != nil {
		return err
	}
	b.keys.Up(key)
	return nil
}

// pointerState is the mouse as seen by pointer actions.
type pointerState struct {
	X, Y    int
	target  *Element
	pressed *Element
}

// PointerMove moves the pointer to the center of target, or to a viewport
// position when target is nil. Without layout, only element targets can be
// hit.
func (b *Browser) PointerMove(target *Element, x, y int) error {
	if _, err := b.context(); err != nil {
		return err
	}
	if target == nil {
		b.pointer.X, b.pointer.Y = x, y
		b.pointer.target = nil
		return nil
	}
	err := target.Do(func() error {
		if b.pointer.target != target {
			b.dispatch(target.doc, target.Node, "mouseover")
		}
		b.dispatch(target.doc, target.Node, "mousemove")
		return nil
	})
	if err != nil {
		return err
	}
	b.pointer.target = target
	return nil
}

// PointerDown presses the mouse button over the current pointer target.
func (b *Browser) PointerDown() error {
	t := b.pointer.target
	b.pointer.pressed = t
	if t == nil {
		return nil
	}
	return t.Do(func() error {
		b.dispatch(t.doc, t.Node, "mousedown")
		return nil
	})
}

// PointerUp releases the mouse button. Releasing over the element it was
// pressed on clicks it.
func (b *Browser) PointerUp() error {
	t, pressed := b.pointer.target, b.pointer.pressed
	b.pointer.pressed = nil
	if t == nil {
		return nil
	}
	err := t.Do(func() error {
		b.dispatch(t.doc, t.Node, "mouseup")
		if pressed == t && b.dispatch(t.doc, t.Node, "click") {
			b.activate(t.doc, t.Node)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return b.settle()
}

// ReleaseActions releases every pressed key and button.
func (b *Browser) ReleaseActions() error {
	if _, err := b.context(); err != nil {
		return err
	}
	b.keys.Reset()
	b.pointer = pointerState{}
	return nil
}
