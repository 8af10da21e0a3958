package actions

import (
	"time"

	"github.com/wanmail/htmlunit"
)

// Actions is a chain of user interactions. Calls record actions; Perform
// sends them to the driver in one request. Keyboard and mouse stay in
// step: each call fills the other device's ticks with pauses.
type Actions struct {
	b *ActionBuilder
}

// New starts an action chain for wd.
func New(wd htmlunit.WebDriver) *Actions {
	return &Actions{b: NewActionBuilder(wd)}
}

func (a *Actions) step(fn func()) *Actions {
	fn()
	a.b.align()
	return a
}

// MoveToElement moves the mouse to the center of el.
func (a *Actions) MoveToElement(el htmlunit.WebElement) *Actions {
	return a.MoveToElementWithOffset(el, 0, 0)
}

// MoveToElementWithOffset moves the mouse to an offset from the center of
// el.
func (a *Actions) MoveToElementWithOffset(el htmlunit.WebElement, x, y int) *Actions {
	return a.step(func() { a.b.Pointer.MoveTo(el, x, y) })
}

// MoveByOffset moves the mouse relative to its position.
func (a *Actions) MoveByOffset(x, y int) *Actions {
	return a.step(func() { a.b.Pointer.MoveBy(x, y) })
}

// moveIfElement moves to el unless it is nil.
func (a *Actions) moveIfElement(el htmlunit.WebElement) {
	if el != nil {
		a.MoveToElement(el)
	}
}

// Click clicks el, or the current mouse position when el is nil.
func (a *Actions) Click(el htmlunit.WebElement) *Actions {
	a.moveIfElement(el)
	return a.step(func() { a.b.Pointer.Click(htmlunit.LeftButton) })
}

// ContextClick right-clicks el, or the current mouse position.
func (a *Actions) ContextClick(el htmlunit.WebElement) *Actions {
	a.moveIfElement(el)
	return a.step(func() { a.b.Pointer.Click(htmlunit.RightButton) })
}

// DoubleClick double-clicks el, or the current mouse position.
func (a *Actions) DoubleClick(el htmlunit.WebElement) *Actions {
	a.moveIfElement(el)
	return a.step(func() { a.b.Pointer.DoubleClick() })
}

// ClickAndHold presses the left button over el, or the current position.
func (a *Actions) ClickAndHold(el htmlunit.WebElement) *Actions {
	a.moveIfElement(el)
	return a.step(func() { a.b.Pointer.ClickAndHold() })
}

// Release releases the left button over el, or the current position.
func (a *Actions) Release(el htmlunit.WebElement) *Actions {
	a.moveIfElement(el)
	return a.step(func() { a.b.Pointer.Release() })
}

// DragAndDrop holds the button on source and releases it on target.
func (a *Actions) DragAndDrop(source, target htmlunit.WebElement) *Actions {
	return a.ClickAndHold(source).Release(target)
}

// DragAndDropByOffset holds the button on source and releases it after
// moving by the offset.
func (a *Actions) DragAndDropByOffset(source htmlunit.WebElement, x, y int) *Actions {
	return a.ClickAndHold(source).MoveByOffset(x, y).Release(nil)
}

// KeyDown presses key, typically a modifier such as htmlunit.ShiftKey.
func (a *Actions) KeyDown(key string) *Actions {
	return a.step(func() { a.b.Key.KeyDown(key) })
}

// KeyUp releases key.
func (a *Actions) KeyUp(key string) *Actions {
	return a.step(func() { a.b.Key.KeyUp(key) })
}

// SendKeys types text into the focused element.
func (a *Actions) SendKeys(text string) *Actions {
	return a.step(func() { a.b.Key.SendKeys(text) })
}

// SendKeysToElement clicks el, then types text into it.
func (a *Actions) SendKeysToElement(el htmlunit.WebElement, text string) *Actions {
	return a.Click(el).SendKeys(text)
}

// Pause idles both devices for d.
func (a *Actions) Pause(d time.Duration) *Actions {
	a.b.Key.Pause(d)
	a.b.Pointer.Pause(d)
	return a
}

// Sources returns the input sources recorded so far.
func (a *Actions) Sources() []htmlunit.InputSource {
	return a.b.Sources()
}

// Perform runs the recorded chain and clears it.
func (a *Actions) Perform() error {
	return a.b.Perform()
}

// Reset drops the recorded chain and releases all keys and buttons.
func (a *Actions) Reset() error {
	return a.b.ClearActions()
}
