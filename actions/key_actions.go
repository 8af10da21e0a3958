package actions

import "time"

// KeyActions records keyboard interactions on a KeyInput.
type KeyActions struct {
	source *KeyInput
}

// NewKeyActions records onto source, or onto a new keyboard when source is
// nil.
func NewKeyActions(source *KeyInput) *KeyActions {
	if source == nil {
		source = NewKeyInput("")
	}
	return &KeyActions{source: source}
}

// Source returns the keyboard the actions are recorded on.
func (ka *KeyActions) Source() *KeyInput {
	return ka.source
}

// KeyDown presses every key of keys, one tick each.
func (ka *KeyActions) KeyDown(keys string) *KeyActions {
	for _, r := range keys {
		ka.source.keyDown(r)
	}
	return ka
}

// KeyUp releases every key of keys, one tick each.
func (ka *KeyActions) KeyUp(keys string) *KeyActions {
	for _, r := range keys {
		ka.source.keyUp(r)
	}
	return ka
}

// SendKeys presses and releases each key of text in turn.
func (ka *KeyActions) SendKeys(text string) *KeyActions {
	for _, r := range text {
		ka.source.keyDown(r)
		ka.source.keyUp(r)
	}
	return ka
}

// Pause idles the keyboard for one tick.
func (ka *KeyActions) Pause(d time.Duration) *KeyActions {
	ka.source.pause(d)
	return ka
}
