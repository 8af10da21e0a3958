// Package actions builds W3C action chains: sequences of keyboard and
// mouse input that a WebDriver performs tick by tick.
//
//	err := actions.New(wd).
//		Click(input).
//		KeyDown(htmlunit.ShiftKey).
//		SendKeys("hello").
//		KeyUp(htmlunit.ShiftKey).
//		Perform()
package actions

import "time"

// Pointer kinds.
const (
	PointerMouse = "mouse"
	PointerTouch = "touch"
	PointerPen   = "pen"
)

// DefaultMoveDuration is how long a pointer move takes.
const DefaultMoveDuration = 250 * time.Millisecond

func validPointerKind(kind string) bool {
	switch kind {
	case PointerMouse, PointerTouch, PointerPen:
		return true
	}
	return false
}

func millis(d time.Duration) int64 {
	return int64(d / time.Millisecond)
}
