package dom

import "unicode"

// WebDriver key code points in the Unicode private use area.
const (
	KeyNull      = '\ue000'
	KeyBackspace = '\ue003'
	KeyTab       = '\ue004'
	KeyReturn    = '\ue006'
	KeyEnter     = '\ue007'
	KeyShift     = '\ue008'
	KeyControl   = '\ue009'
	KeyAlt       = '\ue00a'
	KeySpace     = '\ue00d'
	KeyDelete    = '\ue017'
	KeyMeta      = '\ue03d'

	KeyRightShift   = '\ue050'
	KeyRightControl = '\ue051'
	KeyRightAlt     = '\ue052'
	KeyRightMeta    = '\ue053'
)

// shifted maps unshifted US-layout characters to their shifted form.
var shifted = map[rune]rune{
	'1': '!', '2': '@', '3': '#', '4': '$', '5': '%',
	'6': '^', '7': '&', '8': '*', '9': '(', '0': ')',
	'-': '_', '=': '+', '[': '{', ']': '}', '\\': '|',
	';': ':', '\'': '"', ',': '<', '.': '>', '/': '?',
	'`': '~',
}

// keyChars maps non-modifier WebDriver keys that produce text.
var keyChars = map[rune]rune{
	KeySpace: ' ',
	'\ue018': ';', '\ue019': '=',
	'\ue01a': '0', '\ue01b': '1', '\ue01c': '2', '\ue01d': '3', '\ue01e': '4',
	'\ue01f': '5', '\ue020': '6', '\ue021': '7', '\ue022': '8', '\ue023': '9',
	'\ue024': '*', '\ue025': '+', '\ue026': ',', '\ue027': '-', '\ue028': '.',
	'\ue029': '/',
}

// EditKind classifies the effect of a key press on a text control.
type EditKind int

// Edit kinds.
const (
	EditNone EditKind = iota
	EditInsert
	EditBackspace
	EditDelete
	EditEnter
	EditTab
)

// Edit is the effect of one key press.
type Edit struct {
	Kind EditKind
	Char rune
}

// Keyboard tracks modifier state across key presses.
type Keyboard struct {
	Shift, Control, Alt, Meta bool
}

// IsModifier reports whether r is a modifier key.
func IsModifier(r rune) bool {
	switch r {
	case KeyShift, KeyRightShift, KeyControl, KeyRightControl, KeyAlt, KeyRightAlt, KeyMeta, KeyRightMeta:
		return true
	}
	return false
}

func (k *Keyboard) set(r rune, down bool) {
	switch r {
	case KeyShift, KeyRightShift:
		k.Shift = down
	case KeyControl, KeyRightControl:
		k.Control = down
	case KeyAlt, KeyRightAlt:
		k.Alt = down
	case KeyMeta, KeyRightMeta:
		k.Meta = down
	}
}

func (k *Keyboard) isDown(r rune) bool {
	switch r {
	case KeyShift, KeyRightShift:
		return k.Shift
	case KeyControl, KeyRightControl:
		return k.Control
	case KeyAlt, KeyRightAlt:
		return k.Alt
	case KeyMeta, KeyRightMeta:
		return k.Meta
	}
	return false
}

// Reset releases every modifier.
func (k *Keyboard) Reset() {
	*k = Keyboard{}
}

// Down presses a key and returns its effect on the focused control.
func (k *Keyboard) Down(r rune) Edit {
	if r == KeyNull {
		k.Reset()
		return Edit{}
	}
	if IsModifier(r) {
		k.set(r, true)
		return Edit{}
	}
	switch r {
	case KeyBackspace:
		return Edit{Kind: EditBackspace}
	case KeyDelete:
		return Edit{Kind: EditDelete}
	case KeyEnter, KeyReturn, '\n':
		return Edit{Kind: EditEnter}
	case KeyTab:
		return Edit{Kind: EditTab}
	}
	if c, ok := keyChars[r]; ok {
		r = c
	} else if r >= '\ue000' && r <= '\uf8ff' {
		return Edit{}
	}
	if k.Control || k.Alt || k.Meta {
		return Edit{}
	}
	if k.Shift {
		r = Shifted(r)
	}
	return Edit{Kind: EditInsert, Char: r}
}

// Up releases a key.
func (k *Keyboard) Up(r rune) {
	if IsModifier(r) {
		k.set(r, false)
	}
}

// Sequence presses the keys of an element send-keys string. A modifier
// toggles on its first occurrence and off on its second, and the null key
// releases all of them. Modifiers stay as they are at the end; callers
// release them when the sequence is complete.
func (k *Keyboard) Sequence(keys string, fn func(Edit)) {
	for _, r := range keys {
		if IsModifier(r) {
			k.set(r, !k.isDown(r))
			continue
		}
		e := k.Down(r)
		k.Up(r)
		if e.Kind != EditNone {
			fn(e)
		}
	}
}

// Shifted returns the shifted form of a character on a US layout.
func Shifted(r rune) rune {
	if s, ok := shifted[r]; ok {
		return s
	}
	return unicode.ToUpper(r)
}

// ApplyEdit applies an insert or deletion to a value with the caret at its
// end.
func ApplyEdit(value string, e Edit) string {
	switch e.Kind {
	case EditInsert:
		return value + string(e.Char)
	case EditBackspace:
		r := []rune(value)
		if len(r) == 0 {
			return value
		}
		return string(r[:len(r)-1])
	}
	return value
}
