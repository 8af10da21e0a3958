// Package browser implements the page engine behind a WebDriver session:
// windows, frames, documents with their script runtimes, navigation history,
// cookies, dialogs and the HTTP layer that loads pages.
//
// A Browser is driven by one caller at a time. Page scripts run on one event
// loop per document; everything they can touch outside their document goes
// through the Browser's mutex-guarded queues.
package browser

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/wanmail/htmlunit/internal/dom"
)

// Errors reported by the engine. The driver maps them to WebDriver error
// codes.
var (
	ErrNoSuchWindow        = errors.New("no such window")
	ErrNoSuchFrame         = errors.New("no such frame")
	ErrNoSuchAlert         = errors.New("no such alert")
	ErrNoSuchElement       = errors.New("no such element")
	ErrNoSuchCookie        = errors.New("no such cookie")
	ErrStaleElement        = errors.New("stale element reference")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidCookieDomain = errors.New("invalid cookie domain")
	ErrNotInteractable     = errors.New("element not interactable")
	ErrScriptTimeout       = errors.New("script timeout")
	ErrTimeout             = errors.New("timeout")
	ErrJavaScriptDisabled  = errors.New("javascript is disabled")
	ErrClosed              = errors.New("browser is closed")
)

// Default settings.
const (
	DefaultUserAgent       = "Mozilla/5.0 (X11; Linux x86_64) htmlunit-go"
	DefaultPageLoadTimeout = 300 * time.Second
	DefaultScriptTimeout   = 30 * time.Second
	DefaultWidth           = 1280
	DefaultHeight          = 1024

	// maxEffectRounds bounds how many rounds of script-triggered navigation
	// run after one command.
	maxEffectRounds = 10
)

// Proxy configures how pages are fetched.
type Proxy struct {
	// Type is "direct", "system" or "manual". Only manual proxies change
	// the transport.
	Type          string
	HTTP          string
	SOCKS         string
	SOCKSUsername string
	SOCKSPassword string
}

// Options configure a Browser.
type Options struct {
	JavaScript      bool
	UserAgent       string
	Proxy           *Proxy
	HTTPTimeout     time.Duration
	PageLoadTimeout time.Duration
	ScriptTimeout   time.Duration
}

// Browser is one simulated browser instance.
type Browser struct {
	opts    Options
	client  *http.Client
	cookies *CookieStore

	windows []*Window
	current *Window
	frame   *Frame

	mu      sync.Mutex
	alert   *Alert
	confirm bool
	answer  *string
	console []LogEntry
	effects []effect

	elements map[string]*Element
	keys     dom.Keyboard
	pointer  pointerState
	closed   bool
}

// New creates a browser with one blank window.
func New(opts Options) (*Browser, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = DefaultPageLoadTimeout
	}
	if opts.ScriptTimeout <= 0 {
		opts.ScriptTimeout = DefaultScriptTimeout
	}
	b := &Browser{
		opts:     opts,
		cookies:  NewCookieStore(),
		confirm:  true,
		elements: make(map[string]*Element),
	}
	client, err := newClient(opts, b.cookies)
	if err != nil {
		return nil, err
	}
	b.client = client

	w := b.newWindow("")
	b.current = w
	b.frame = w.top
	return b, nil
}

// JavaScriptEnabled reports whether pages run scripts.
func (b *Browser) JavaScriptEnabled() bool {
	return b.opts.JavaScript
}

// UserAgent returns the User-Agent header sent with every request.
func (b *Browser) UserAgent() string {
	return b.opts.UserAgent
}

// Timeouts returns the page load and script timeouts.
func (b *Browser) Timeouts() (pageLoad, script time.Duration) {
	return b.opts.PageLoadTimeout, b.opts.ScriptTimeout
}

// SetPageLoadTimeout bounds how long a navigation may take.
func (b *Browser) SetPageLoadTimeout(d time.Duration) {
	b.opts.PageLoadTimeout = d
}

// SetScriptTimeout bounds how long scripts may run or wait for their
// callback.
func (b *Browser) SetScriptTimeout(d time.Duration) {
	b.opts.ScriptTimeout = d
}

// Close stops every document's event loop and drops all state. Later calls
// return ErrClosed.
func (b *Browser) Close() error {
	if b.closed {
		return ErrClosed
	}
	b.closed = true
	for _, w := range b.windows {
		w.close()
	}
	b.windows = nil
	b.current = nil
	b.frame = nil
	b.elements = nil
	b.cookies.Clear()
	b.client.CloseIdleConnections()
	glog.V(1).Infof("htmlunit: browser closed")
	return nil
}

// context returns the current browsing context.
func (b *Browser) context() (*Frame, error) {
	if b.closed {
		return nil, ErrClosed
	}
	if b.current == nil || b.current.closed {
		return nil, ErrNoSuchWindow
	}
	if b.frame == nil || b.frame.window != b.current {
		b.frame = b.current.top
	}
	if b.frame.detached {
		return nil, fmt.Errorf("%w: the current frame was removed", ErrNoSuchFrame)
	}
	return b.frame, nil
}

// document returns the document of the current browsing context.
func (b *Browser) document() (*Document, error) {
	f, err := b.context()
	if err != nil {
		return nil, err
	}
	return f.doc, nil
}

// topDocument returns the document of the current window's top frame.
func (b *Browser) topDocument() (*Document, error) {
	if _, err := b.context(); err != nil && !errors.Is(err, ErrNoSuchFrame) {
		return nil, err
	}
	return b.current.top.doc, nil
}

// URL returns the address of the current top-level document.
func (b *Browser) URL() (string, error) {
	if err := b.settle(); err != nil {
		return "", err
	}
	d, err := b.topDocument()
	if err != nil {
		return "", err
	}
	return d.Location().String(), nil
}

// Title returns the title of the current top-level document.
func (b *Browser) Title() (string, error) {
	if err := b.settle(); err != nil {
		return "", err
	}
	d, err := b.topDocument()
	if err != nil {
		return "", err
	}
	var title string
	err = d.Do(func() error {
		title = dom.Title(d.Root)
		return nil
	})
	return title, err
}

// PageSource serializes the document of the current browsing context.
func (b *Browser) PageSource() (string, error) {
	if err := b.settle(); err != nil {
		return "", err
	}
	d, err := b.document()
	if err != nil {
		return "", err
	}
	var src string
	err = d.Do(func() error {
		src = dom.Render(d.Root, true)
		return nil
	})
	return src, err
}

// ActiveElement returns the focused element of the current document, or its
// body when nothing has focus.
func (b *Browser) ActiveElement() (*Element, error) {
	d, err := b.document()
	if err != nil {
		return nil, err
	}
	var n *html.Node
	err = d.Do(func() error {
		n = focused(d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNoSuchElement
	}
	return b.ref(d, n), nil
}

func newID() string {
	return uuid.New().String()
}
