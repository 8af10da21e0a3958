package browser

import (
	"fmt"
	"time"
)

// Alert kinds.
const (
	AlertKindAlert   = "alert"
	AlertKindConfirm = "confirm"
	AlertKindPrompt  = "prompt"
)

// Alert is an open user prompt.
type Alert struct {
	Kind    string
	Text    string
	Default string
}

// openAlert records a dialog raised by a page. Page scripts do not block
// on it: confirm and prompt return the answer given to the previous dialog.
func (b *Browser) openAlert(kind, text, def string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alert = &Alert{Kind: kind, Text: text, Default: def}
}

// CurrentAlert returns the open dialog.
func (b *Browser) CurrentAlert() (*Alert, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.alert == nil {
		return nil, ErrNoSuchAlert
	}
	a := *b.alert
	return &a, nil
}

// AnswerAlert closes the open dialog. accept becomes the answer of the next
// confirm or prompt.
func (b *Browser) AnswerAlert(accept bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.alert == nil {
		return ErrNoSuchAlert
	}
	b.alert = nil
	b.confirm = accept
	return nil
}

// SetAlertText sets the text the next prompt returns. The open dialog must
// be a prompt.
func (b *Browser) SetAlertText(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.alert == nil {
		return ErrNoSuchAlert
	}
	if b.alert.Kind != AlertKindPrompt {
		return fmt.Errorf("%w: a %s dialog takes no text", ErrNotInteractable, b.alert.Kind)
	}
	b.answer = &text
	return nil
}

// LogEntry is one message written to the page console, or an uncaught
// script error.
type LogEntry struct {
	Time    time.Time
	Level   string
	Message string
}

func (b *Browser) logConsole(level, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.console = append(b.console, LogEntry{Time: time.Now(), Level: level, Message: msg})
}

// Logs returns and clears the console entries collected so far.
func (b *Browser) Logs() []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	logs := b.console
	b.console = nil
	return logs
}
