package actions

import (
	"fmt"
	"time"

	"github.com/wanmail/htmlunit"
)

// PointerInput is a pointer input source of a given kind.
type PointerInput struct {
	inputDevice
	kind string
}

// NewPointerInput returns a pointer source. kind is PointerMouse,
// PointerTouch or PointerPen; an empty id gets a random one.
func NewPointerInput(kind, id string) (*PointerInput, error) {
	if !validPointerKind(kind) {
		return nil, fmt.Errorf("actions: invalid pointer kind %q", kind)
	}
	return &PointerInput{inputDevice: newInputDevice(id), kind: kind}, nil
}

// Kind returns the pointer kind.
func (pi *PointerInput) Kind() string {
	return pi.kind
}

// move records a pointer move. origin is a WebElement, OriginViewport or
// OriginPointer.
func (pi *PointerInput) move(origin interface{}, x, y int, duration time.Duration) {
	pi.add(map[string]interface{}{
		"type":     htmlunit.ActionPointerMove,
		"duration": millis(duration),
		"origin":   origin,
		"x":        x,
		"y":        y,
	})
}

func (pi *PointerInput) down(button htmlunit.MouseButton) {
	pi.add(map[string]interface{}{"type": htmlunit.ActionPointerDown, "button": int(button)})
}

func (pi *PointerInput) up(button htmlunit.MouseButton) {
	pi.add(map[string]interface{}{"type": htmlunit.ActionPointerUp, "button": int(button)})
}

// Source returns the recorded actions as an input source.
func (pi *PointerInput) Source() htmlunit.InputSource {
	return htmlunit.InputSource{
		Type:       htmlunit.PointerSource,
		ID:         pi.id,
		Parameters: map[string]string{"pointerType": pi.kind},
		Actions:    pi.actions,
	}
}
