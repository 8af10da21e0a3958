package browser

import (
	"fmt"
)

// Rect is the position and size of a window.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Window is a top-level browsing context.
type Window struct {
	Handle string
	Name   string

	// rect is guarded by the browser's mu: page scripts read it from
	// their event loops.
	rect Rect

	top     *Frame
	history []*request
	index   int
	closed  bool
}

func (b *Browser) newWindow(name string) *Window {
	w := &Window{
		Handle: newID(),
		Name:   name,
		rect:   Rect{Width: DefaultWidth, Height: DefaultHeight},
		index:  -1,
	}
	w.top = &Frame{window: w}
	w.top.doc = b.blankDocument(w.top)
	b.windows = append(b.windows, w)
	return w
}

func (w *Window) close() {
	w.closed = true
	w.top.close()
}

func (w *Window) push(req *request) {
	w.history = append(w.history[:w.index+1], req)
	w.index = len(w.history) - 1
}

// WindowHandles returns the handles of all open windows in opening order.
func (b *Browser) WindowHandles() ([]string, error) {
	if b.closed {
		return nil, ErrClosed
	}
	handles := make([]string, 0, len(b.windows))
	for _, w := range b.windows {
		handles = append(handles, w.Handle)
	}
	return handles, nil
}

// CurrentWindow returns the current window.
func (b *Browser) CurrentWindow() (*Window, error) {
	if b.closed {
		return nil, ErrClosed
	}
	if b.current == nil || b.current.closed {
		return nil, ErrNoSuchWindow
	}
	return b.current, nil
}

// window finds a window by handle or name. The empty string names the
// current window.
func (b *Browser) window(handleOrName string) (*Window, error) {
	if handleOrName == "" || handleOrName == "current" {
		return b.CurrentWindow()
	}
	if b.closed {
		return nil, ErrClosed
	}
	for _, w := range b.windows {
		if w.Handle == handleOrName {
			return w, nil
		}
	}
	for _, w := range b.windows {
		if w.Name != "" && w.Name == handleOrName {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoSuchWindow, handleOrName)
}

// SwitchWindow makes the window with the given handle or name current. The
// new window's top frame becomes the current browsing context.
func (b *Browser) SwitchWindow(handleOrName string) error {
	w, err := b.window(handleOrName)
	if err != nil {
		return err
	}
	b.current = w
	b.frame = w.top
	return nil
}

// NewWindow opens a blank window without switching to it.
func (b *Browser) NewWindow() (string, error) {
	if b.closed {
		return "", ErrClosed
	}
	return b.newWindow("").Handle, nil
}

// CloseWindow closes the window with the given handle, or the current window
// for the empty string, and returns the remaining handles.
func (b *Browser) CloseWindow(handle string) ([]string, error) {
	w, err := b.window(handle)
	if err != nil {
		return nil, err
	}
	b.removeWindow(w)
	return b.WindowHandles()
}

func (b *Browser) removeWindow(w *Window) {
	w.close()
	for i, o := range b.windows {
		if o == w {
			b.windows = append(b.windows[:i], b.windows[i+1:]...)
			break
		}
	}
	if b.current == w {
		b.current = nil
		b.frame = nil
	}
}

// WindowRect returns the rectangle of a window.
func (b *Browser) WindowRect(handle string) (Rect, error) {
	w, err := b.window(handle)
	if err != nil {
		return Rect{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return w.rect, nil
}

// viewport returns the size of w as page scripts see it.
func (b *Browser) viewport(w *Window) (width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return w.rect.Width, w.rect.Height
}

// SetWindowSize resizes a window.
func (b *Browser) SetWindowSize(handle string, width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidArgument, width, height)
	}
	w, err := b.window(handle)
	if err != nil {
		return err
	}
	b.mu.Lock()
	w.rect.Width, w.rect.Height = width, height
	b.mu.Unlock()
	return nil
}

// SetWindowPosition moves a window.
func (b *Browser) SetWindowPosition(handle string, x, y int) error {
	w, err := b.window(handle)
	if err != nil {
		return err
	}
	b.mu.Lock()
	w.rect.X, w.rect.Y = x, y
	b.mu.Unlock()
	return nil
}

// Screen dimensions a maximized window takes.
const (
	screenWidth  = 1920
	screenHeight = 1080
)

// MaximizeWindow sizes a window to the simulated screen.
func (b *Browser) MaximizeWindow(handle string) error {
	w, err := b.window(handle)
	if err != nil {
		return err
	}
	b.mu.Lock()
	w.rect = Rect{Width: screenWidth, Height: screenHeight}
	b.mu.Unlock()
	return nil
}
