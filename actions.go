package htmlunit

import (
	"time"

	"github.com/wanmail/htmlunit/internal/browser"
)

// Input source types.
const (
	KeySource     = "key"
	PointerSource = "pointer"
	NoneSource    = "none"
)

// Action types.
const (
	ActionPause       = "pause"
	ActionKeyDown     = "keyDown"
	ActionKeyUp       = "keyUp"
	ActionPointerMove = "pointerMove"
	ActionPointerDown = "pointerDown"
	ActionPointerUp   = "pointerUp"
)

// Pointer move origins other than an element.
const (
	OriginViewport = "viewport"
	OriginPointer  = "pointer"
)

// InputSource is one device of a W3C actions request: its type, ID and the
// actions it performs, one per tick.
//
// A pointerMove action's "origin" is a WebElement, an element reference
// map, "viewport" or "pointer".
type InputSource struct {
	Type       string                   `json:"type"`
	ID         string                   `json:"id"`
	Parameters map[string]string        `json:"parameters,omitempty"`
	Actions    []map[string]interface{} `json:"actions"`
}

// PerformActions runs the sources tick by tick. A tick runs the action of
// each source at that index in source order, then waits for its longest
// pause.
func (d *Driver) PerformActions(sources []InputSource) error {
	return d.do(func(b *browser.Browser) error {
		ticks := 0
		for _, src := range sources {
			switch src.Type {
			case KeySource, PointerSource, NoneSource:
			default:
				return newError(ErrInvalidArgument, "unknown input source type %q", src.Type)
			}
			if len(src.Actions) > ticks {
				ticks = len(src.Actions)
			}
		}
		for tick := 0; tick < ticks; tick++ {
			var wait time.Duration
			for _, src := range sources {
				if tick >= len(src.Actions) {
					continue
				}
				pause, err := d.perform(b, src, src.Actions[tick])
				if err != nil {
					return err
				}
				if pause > wait {
					wait = pause
				}
			}
			time.Sleep(wait)
		}
		return nil
	})
}

// perform runs one action and returns how long its tick must last.
func (d *Driver) perform(b *browser.Browser, src InputSource, a map[string]interface{}) (time.Duration, error) {
	typ, _ := a["type"].(string)
	duration := func() time.Duration {
		ms, _ := number(a["duration"])
		return time.Duration(ms) * time.Millisecond
	}
	if typ == ActionPause {
		return duration(), nil
	}
	switch src.Type {
	case KeySource:
		key, _ := a["value"].(string)
		runes := []rune(key)
		if len(runes) != 1 {
			return 0, newError(ErrInvalidArgument, "%s action needs a single key, got %q", typ, key)
		}
		switch typ {
		case ActionKeyDown:
			return 0, b.KeyDown(runes[0])
		case ActionKeyUp:
			return 0, b.KeyUp(runes[0])
		}
	case PointerSource:
		switch typ {
		case ActionPointerMove:
			x, _ := number(a["x"])
			y, _ := number(a["y"])
			target, err := d.origin(b, a["origin"])
			if err != nil {
				return 0, err
			}
			if target == nil && a["origin"] == OriginPointer {
				return duration(), nil
			}
			return duration(), b.PointerMove(target, int(x), int(y))
		case ActionPointerDown:
			return 0, b.PointerDown()
		case ActionPointerUp:
			return 0, b.PointerUp()
		}
	}
	return 0, newError(ErrInvalidArgument, "action %q is not valid for a %s source", typ, src.Type)
}

// origin resolves the target of a pointer move. A nil element means the
// viewport or the current pointer position.
func (d *Driver) origin(b *browser.Browser, o interface{}) (*browser.Element, error) {
	switch v := o.(type) {
	case nil:
		return nil, nil
	case string:
		if v == OriginViewport || v == OriginPointer {
			return nil, nil
		}
	case *Element:
		if v.d != d {
			return nil, newError(ErrInvalidArgument, "origin element belongs to another session")
		}
		return v.e, nil
	case map[string]interface{}:
		if id, ok := v[ElementKey].(string); ok {
			return b.Element(id)
		}
	}
	return nil, newError(ErrInvalidArgument, "invalid pointer origin %v", o)
}

// number reads a JSON or Go numeric value.
func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case time.Duration:
		return float64(n / time.Millisecond), true
	}
	return 0, false
}
