package actions

import "github.com/wanmail/htmlunit"

// KeyInput is a keyboard input source.
type KeyInput struct {
	inputDevice
}

// NewKeyInput returns a keyboard source. An empty id gets a random one.
func NewKeyInput(id string) *KeyInput {
	return &KeyInput{inputDevice: newInputDevice(id)}
}

func (ki *KeyInput) keyDown(key rune) {
	ki.add(map[string]interface{}{"type": htmlunit.ActionKeyDown, "value": string(key)})
}

func (ki *KeyInput) keyUp(key rune) {
	ki.add(map[string]interface{}{"type": htmlunit.ActionKeyUp, "value": string(key)})
}

// Source returns the recorded actions as an input source.
func (ki *KeyInput) Source() htmlunit.InputSource {
	return htmlunit.InputSource{
		Type:    htmlunit.KeySource,
		ID:      ki.id,
		Actions: ki.actions,
	}
}
