package actions

import (
	"time"

	"github.com/wanmail/htmlunit"
)

// PointerActions records pointer interactions on a PointerInput.
type PointerActions struct {
	source *PointerInput
}

// NewPointerActions records onto source, or onto a new mouse when source is
// nil.
func NewPointerActions(source *PointerInput) *PointerActions {
	if source == nil {
		source = &PointerInput{inputDevice: newInputDevice(""), kind: PointerMouse}
	}
	return &PointerActions{source: source}
}

// Source returns the pointer the actions are recorded on.
func (pa *PointerActions) Source() *PointerInput {
	return pa.source
}

// MoveTo moves the pointer to an offset from the center of el.
func (pa *PointerActions) MoveTo(el htmlunit.WebElement, x, y int) *PointerActions {
	pa.source.move(el, x, y, DefaultMoveDuration)
	return pa
}

// MoveBy moves the pointer by an offset from its current position.
func (pa *PointerActions) MoveBy(x, y int) *PointerActions {
	pa.source.move(htmlunit.OriginPointer, x, y, DefaultMoveDuration)
	return pa
}

// MoveToLocation moves the pointer to a viewport position.
func (pa *PointerActions) MoveToLocation(x, y int) *PointerActions {
	pa.source.move(htmlunit.OriginViewport, x, y, DefaultMoveDuration)
	return pa
}

// ClickAndHold presses the left button.
func (pa *PointerActions) ClickAndHold() *PointerActions {
	pa.source.down(htmlunit.LeftButton)
	return pa
}

// Release releases the left button.
func (pa *PointerActions) Release() *PointerActions {
	pa.source.up(htmlunit.LeftButton)
	return pa
}

// Click presses and releases button.
func (pa *PointerActions) Click(button htmlunit.MouseButton) *PointerActions {
	pa.source.down(button)
	pa.source.up(button)
	return pa
}

// DoubleClick clicks the left button twice.
func (pa *PointerActions) DoubleClick() *PointerActions {
	return pa.Click(htmlunit.LeftButton).Click(htmlunit.LeftButton)
}

// Pause idles the pointer for one tick.
func (pa *PointerActions) Pause(d time.Duration) *PointerActions {
	pa.source.pause(d)
	return pa
}
