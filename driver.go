package htmlunit

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/blang/semver"
	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/wanmail/htmlunit/internal/browser"
	"github.com/wanmail/htmlunit/internal/dom"
	"github.com/wanmail/htmlunit/internal/jsbind"
	"github.com/wanmail/htmlunit/log"
)

// Version is reported by Status and Capabilities.
const Version = "0.9.0"

// BrowserName is the browserName capability of embedded sessions.
const BrowserName = "htmlunit"

// DriverOption configures the engine of a Driver.
type DriverOption func(*browser.Options)

// WithUserAgent sets the User-Agent header sent with every request and
// reported by navigator.userAgent.
func WithUserAgent(ua string) DriverOption {
	return func(o *browser.Options) {
		o.UserAgent = ua
	}
}

// WithHTTPClientTimeout bounds every single HTTP request the engine makes.
func WithHTTPClientTimeout(timeout time.Duration) DriverOption {
	return func(o *browser.Options) {
		o.HTTPTimeout = timeout
	}
}

// Driver is a WebDriver session over an in-process browser engine. Its
// methods serialize on one lock; element values returned by it share that
// lock.
type Driver struct {
	mu       sync.Mutex
	id       string
	opts     browser.Options
	caps     Capabilities
	b        *browser.Browser
	implicit time.Duration
	closed   bool
}

var (
	_ WebDriver       = (*Driver)(nil)
	_ VersionedDriver = (*Driver)(nil)
)

// NewDriver starts a session with one blank window. javascriptEnabled
// decides whether pages run their scripts.
func NewDriver(javascriptEnabled bool, opts ...DriverOption) *Driver {
	caps := Capabilities{JavascriptEnabledKey: javascriptEnabled}
	d, err := newDriver(caps, opts)
	if err != nil {
		// Only a proxy setting can make the engine fail to start.
		panic(err)
	}
	return d
}

// NewDriverWithCapabilities starts a session configured from caps. It reads
// javascriptEnabled, proxy and timeouts.
func NewDriverWithCapabilities(caps Capabilities, opts ...DriverOption) (*Driver, error) {
	if caps == nil {
		caps = Capabilities{}
	}
	return newDriver(caps, opts)
}

func newDriver(caps Capabilities, opts []DriverOption) (*Driver, error) {
	o, implicit, err := engineOptions(caps)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(&o)
	}
	d := &Driver{opts: o, caps: caps, implicit: implicit}
	if err := d.start(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) start() error {
	b, err := browser.New(d.opts)
	if err != nil {
		return newError(ErrSessionNotCreated, "%v", err)
	}
	d.b = b
	d.id = uuid.New().String()
	d.closed = false
	debugLog("htmlunit: started session %s (javascript=%t)", d.id, d.opts.JavaScript)
	return nil
}

// engineOptions reads the capabilities the engine understands.
func engineOptions(caps Capabilities) (browser.Options, time.Duration, error) {
	var o browser.Options
	switch v := caps[JavascriptEnabledKey].(type) {
	case nil:
	case bool:
		o.JavaScript = v
	default:
		return o, 0, newError(ErrInvalidArgument, "capability %q must be a boolean, got %T", JavascriptEnabledKey, v)
	}

	var p Proxy
	switch v := caps[ProxyKey].(type) {
	case nil:
	case Proxy:
		p = v
	case *Proxy:
		p = *v
	case map[string]interface{}:
		if err := remarshal(v, &p); err != nil {
			return o, 0, newError(ErrInvalidArgument, "capability %q: %v", ProxyKey, err)
		}
	default:
		return o, 0, newError(ErrInvalidArgument, "capability %q has type %T", ProxyKey, v)
	}
	if p.Type != "" {
		o.Proxy = &browser.Proxy{
			Type:          string(p.Type),
			HTTP:          p.HTTP,
			SOCKS:         p.SOCKS,
			SOCKSUsername: p.SOCKSUsername,
			SOCKSPassword: p.SOCKSPassword,
		}
	}

	var implicit time.Duration
	if t, ok := caps[TimeoutsKey].(map[string]interface{}); ok {
		ms := func(key string) (time.Duration, bool) {
			f, ok := number(t[key])
			return time.Duration(f) * time.Millisecond, ok
		}
		if v, ok := ms("implicit"); ok {
			implicit = v
		}
		if v, ok := ms("pageLoad"); ok {
			o.PageLoadTimeout = v
		}
		if v, ok := ms("script"); ok {
			o.ScriptTimeout = v
		}
	}
	return o, implicit, nil
}

// remarshal copies a decoded JSON object into a typed value.
func remarshal(in, out interface{}) error {
	buf, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, out)
}

// do runs fn under the session lock after checking that the session is
// still open. Engine errors come back as *Error.
func (d *Driver) do(fn func(b *browser.Browser) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return newError(ErrInvalidSessionID, "session %s was quit", d.id)
	}
	return toWebDriverError(fn(d.b))
}

// engineErrors maps engine failures onto WebDriver error kinds.
var engineErrors = []struct {
	err  error
	kind *Error
}{
	{browser.ErrClosed, ErrInvalidSessionID},
	{browser.ErrNoSuchWindow, ErrNoSuchWindow},
	{browser.ErrNoSuchFrame, ErrNoSuchFrame},
	{browser.ErrNoSuchAlert, ErrNoSuchAlert},
	{browser.ErrNoSuchElement, ErrNoSuchElement},
	{browser.ErrNoSuchCookie, ErrNoSuchCookie},
	{browser.ErrStaleElement, ErrStaleElement},
	{browser.ErrInvalidArgument, ErrInvalidArgument},
	{browser.ErrInvalidCookieDomain, ErrInvalidCookieDomain},
	{browser.ErrNotInteractable, ErrElementNotInteractable},
	{browser.ErrScriptTimeout, ErrScriptTimeout},
	{browser.ErrTimeout, ErrTimeout},
	{browser.ErrJavaScriptDisabled, ErrUnsupportedOperation},
	{dom.ErrInvalidSelector, ErrInvalidSelector},
	{dom.ErrUnknownStrategy, ErrInvalidArgument},
	{jsbind.ErrInterrupted, ErrScriptTimeout},
	{jsbind.ErrScript, ErrJavaScript},
}

// toWebDriverError converts an engine error into an *Error of the matching
// kind. Unrecognized errors become "unknown error".
func toWebDriverError(err error) error {
	if err == nil {
		return nil
	}
	var wdErr *Error
	if errors.As(err, &wdErr) || errors.Is(err, ErrNullValue) {
		return err
	}
	for _, m := range engineErrors {
		if errors.Is(err, m.err) {
			return &Error{Err: m.kind.Err, Message: err.Error(), HTTPCode: HTTPStatus(m.kind.Err)}
		}
	}
	glog.Errorf("htmlunit: unexpected engine error: %v", err)
	return &Error{Err: ErrUnknown.Err, Message: err.Error(), HTTPCode: HTTPStatus(ErrUnknown.Err)}
}

// Status reports that the driver can take commands. Like GET /status, it
// does not belong to the session: it still answers after Quit, since
// NewSession can start a fresh browser.
func (d *Driver) Status() (*Status, error) {
	s := &Status{Ready: true, Message: "htmlunit ready"}
	s.Build.Version = Version
	s.OS.Arch = runtime.GOARCH
	s.OS.Name = runtime.GOOS
	return s, nil
}

// BrowserVersion returns the engine version. It does not depend on the
// session and answers after Quit.
func (d *Driver) BrowserVersion() semver.Version {
	return semver.MustParse(Version)
}

// NewSession starts a fresh browser when the session was quit and returns
// the session ID. An open session keeps its browser.
func (d *Driver) NewSession() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		return d.id, nil
	}
	if err := d.start(); err != nil {
		return "", err
	}
	return d.id, nil
}

// SessionID returns the ID of the session.
func (d *Driver) SessionID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.id
}

// SwitchSession accepts only the driver's own session ID: a Driver owns
// exactly one browser.
func (d *Driver) SwitchSession(sessionID string) error {
	return d.do(func(*browser.Browser) error {
		if sessionID != d.id {
			return newError(ErrInvalidSessionID, "unknown session %q", sessionID)
		}
		return nil
	})
}

// Capabilities returns the capabilities the session runs with.
func (d *Driver) Capabilities() (Capabilities, error) {
	var caps Capabilities
	err := d.do(func(b *browser.Browser) error {
		pageLoad, script := b.Timeouts()
		caps = Capabilities{
			"browserName":        BrowserName,
			"browserVersion":     Version,
			"platformName":       runtime.GOOS,
			JavascriptEnabledKey: b.JavaScriptEnabled(),
			"userAgent":          b.UserAgent(),
			TimeoutsKey: map[string]interface{}{
				"implicit": d.implicit.Milliseconds(),
				"pageLoad": pageLoad.Milliseconds(),
				"script":   script.Milliseconds(),
			},
		}
		if p, ok := d.caps[ProxyKey]; ok {
			caps[ProxyKey] = p
		}
		if l, ok := d.caps[log.CapabilitiesKey]; ok {
			caps[log.CapabilitiesKey] = l
		}
		return nil
	})
	return caps, err
}

func checkTimeout(timeout time.Duration) error {
	if timeout < 0 {
		return newError(ErrInvalidArgument, "negative timeout %v", timeout)
	}
	return nil
}

// SetAsyncScriptTimeout sets the script timeout, which bounds both
// synchronous scripts and the wait for an asynchronous script's callback.
func (d *Driver) SetAsyncScriptTimeout(timeout time.Duration) error {
	return d.do(func(b *browser.Browser) error {
		if err := checkTimeout(timeout); err != nil {
			return err
		}
		b.SetScriptTimeout(timeout)
		return nil
	})
}

// SetImplicitWaitTimeout sets how long element lookups retry. Zero means
// lookups fail at once.
func (d *Driver) SetImplicitWaitTimeout(timeout time.Duration) error {
	return d.do(func(*browser.Browser) error {
		if err := checkTimeout(timeout); err != nil {
			return err
		}
		d.implicit = timeout
		return nil
	})
}

// SetPageLoadTimeout bounds navigations.
func (d *Driver) SetPageLoadTimeout(timeout time.Duration) error {
	return d.do(func(b *browser.Browser) error {
		if err := checkTimeout(timeout); err != nil {
			return err
		}
		b.SetPageLoadTimeout(timeout)
		return nil
	})
}

// Quit closes the browser. Every later call on the driver or its elements
// fails with ErrInvalidSessionID.
func (d *Driver) Quit() error {
	return d.do(func(b *browser.Browser) error {
		d.closed = true
		debugLog("htmlunit: quit session %s", d.id)
		return b.Close()
	})
}

// CurrentWindowHandle returns the handle of the current window.
func (d *Driver) CurrentWindowHandle() (string, error) {
	var handle string
	err := d.do(func(b *browser.Browser) error {
		w, err := b.CurrentWindow()
		if err != nil {
			return err
		}
		handle = w.Handle
		return nil
	})
	return handle, err
}

// WindowHandles returns the handles of the open windows in opening order.
func (d *Driver) WindowHandles() ([]string, error) {
	var handles []string
	err := d.do(func(b *browser.Browser) error {
		var err error
		handles, err = b.WindowHandles()
		return err
	})
	return handles, err
}

// CurrentURL returns the URL of the current top-level document.
func (d *Driver) CurrentURL() (string, error) {
	return d.stringCommand((*browser.Browser).URL)
}

// Title returns the title of the current top-level document.
func (d *Driver) Title() (string, error) {
	return d.stringCommand((*browser.Browser).Title)
}

// PageSource returns the markup of the current browsing context.
func (d *Driver) PageSource() (string, error) {
	return d.stringCommand((*browser.Browser).PageSource)
}

func (d *Driver) stringCommand(fn func(*browser.Browser) (string, error)) (string, error) {
	var s string
	err := d.do(func(b *browser.Browser) error {
		var err error
		s, err = fn(b)
		return err
	})
	return s, err
}

// Close closes the current window.
func (d *Driver) Close() error {
	return d.CloseWindow("")
}

// SwitchFrame switches to a frame of the current browsing context. frame
// is a WebElement, an id or name, an index, or nil or "" for the top frame.
func (d *Driver) SwitchFrame(frame interface{}) error {
	return d.do(func(b *browser.Browser) error {
		switch f := frame.(type) {
		case *Element:
			if f.d != d {
				return newError(ErrNoSuchFrame, "element belongs to another session")
			}
			return b.SwitchFrame(f.e)
		case WebElement:
			return newError(ErrInvalidArgument, "element of type %T does not belong to this driver", f)
		case float64:
			return b.SwitchFrame(int(f))
		case string:
			if f == "" {
				return b.SwitchFrame(nil)
			}
		}
		return b.SwitchFrame(frame)
	})
}

// SwitchParentFrame switches to the parent of the current frame.
func (d *Driver) SwitchParentFrame() error {
	return d.do((*browser.Browser).SwitchParentFrame)
}

// SwitchWindow makes the window with the given handle or name current.
func (d *Driver) SwitchWindow(name string) error {
	return d.do(func(b *browser.Browser) error {
		return b.SwitchWindow(name)
	})
}

// CloseWindow closes a window. The empty name closes the current window.
func (d *Driver) CloseWindow(name string) error {
	return d.do(func(b *browser.Browser) error {
		_, err := b.CloseWindow(name)
		return err
	})
}

// MaximizeWindow gives a window the size of the simulated screen.
func (d *Driver) MaximizeWindow(name string) error {
	return d.do(func(b *browser.Browser) error {
		return b.MaximizeWindow(name)
	})
}

// ResizeWindow sets the size of a window.
func (d *Driver) ResizeWindow(name string, width, height int) error {
	return d.do(func(b *browser.Browser) error {
		return b.SetWindowSize(name, width, height)
	})
}

// WindowSize returns the size of a window.
func (d *Driver) WindowSize(name string) (*Size, error) {
	var size *Size
	err := d.do(func(b *browser.Browser) error {
		r, err := b.WindowRect(name)
		if err != nil {
			return err
		}
		size = &Size{Width: r.Width, Height: r.Height}
		return nil
	})
	return size, err
}

// SetWindowPosition moves a window.
func (d *Driver) SetWindowPosition(name string, x, y int) error {
	return d.do(func(b *browser.Browser) error {
		return b.SetWindowPosition(name, x, y)
	})
}

// WindowPosition returns the position of a window.
func (d *Driver) WindowPosition(name string) (*Point, error) {
	var pt *Point
	err := d.do(func(b *browser.Browser) error {
		r, err := b.WindowRect(name)
		if err != nil {
			return err
		}
		pt = &Point{X: r.X, Y: r.Y}
		return nil
	})
	return pt, err
}

// Get loads url into the current window. Hosts that cannot be reached
// leave an empty page at url rather than failing.
func (d *Driver) Get(url string) error {
	return d.do(func(b *browser.Browser) error {
		glog.V(1).Infof("htmlunit: GET %s", url)
		return b.Navigate(url)
	})
}

// Forward moves forward in the current window's history.
func (d *Driver) Forward() error {
	return d.do((*browser.Browser).Forward)
}

// Back moves back in the current window's history.
func (d *Driver) Back() error {
	return d.do((*browser.Browser).Back)
}

// Refresh reloads the current page.
func (d *Driver) Refresh() error {
	return d.do((*browser.Browser).Refresh)
}

// FindElement returns the first element matching the locator, waiting up
// to the implicit wait timeout for one to appear.
func (d *Driver) FindElement(by, value string) (WebElement, error) {
	return d.findElement(nil, by, value)
}

// FindElements returns every element matching the locator in document
// order. It waits up to the implicit wait timeout for a match and returns an
// empty slice if none appears.
func (d *Driver) FindElements(by, value string) ([]WebElement, error) {
	return d.findElements(nil, by, value)
}

func (d *Driver) findElement(parent *Element, by, value string) (WebElement, error) {
	var found WebElement
	err := d.do(func(b *browser.Browser) error {
		els, err := b.Find(parent.engine(), by, value, d.implicit)
		if err != nil {
			return err
		}
		if len(els) == 0 {
			return newError(ErrNoSuchElement, "no element matches %s %q", by, value)
		}
		found = d.wrap(els[0])
		return nil
	})
	return found, err
}

func (d *Driver) findElements(parent *Element, by, value string) ([]WebElement, error) {
	var found []WebElement
	err := d.do(func(b *browser.Browser) error {
		els, err := b.Find(parent.engine(), by, value, d.implicit)
		if err != nil {
			return err
		}
		found = make([]WebElement, len(els))
		for i, e := range els {
			found[i] = d.wrap(e)
		}
		return nil
	})
	return found, err
}

// ActiveElement returns the focused element, or the body when nothing has
// focus.
func (d *Driver) ActiveElement() (WebElement, error) {
	var el WebElement
	err := d.do(func(b *browser.Browser) error {
		e, err := b.ActiveElement()
		if err != nil {
			return err
		}
		el = d.wrap(e)
		return nil
	})
	return el, err
}

// ElementByID returns the element with the given reference ID, as found
// earlier by this session.
func (d *Driver) ElementByID(id string) (WebElement, error) {
	var el WebElement
	err := d.do(func(b *browser.Browser) error {
		e, err := b.Element(id)
		if err != nil {
			return err
		}
		el = d.wrap(e)
		return nil
	})
	return el, err
}

// DecodeElement decodes an element reference, bare or wrapped in a
// {"value": ...} reply.
func (d *Driver) DecodeElement(data []byte) (WebElement, error) {
	var reply struct {
		Value map[string]string `json:"value"`
	}
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, newError(ErrInvalidArgument, "decoding element: %v", err)
	}
	ref := reply.Value
	if ref == nil {
		if err := json.Unmarshal(data, &ref); err != nil {
			return nil, newError(ErrInvalidArgument, "decoding element: %v", err)
		}
	}
	id, ok := ref[ElementKey]
	if !ok {
		return nil, newError(ErrInvalidArgument, "no element reference in %s", data)
	}
	return d.ElementByID(id)
}

// DecodeElements decodes a list of element references, bare or wrapped in
// a {"value": ...} reply.
func (d *Driver) DecodeElements(data []byte) ([]WebElement, error) {
	var reply struct {
		Value []map[string]string `json:"value"`
	}
	var refs []map[string]string
	if err := json.Unmarshal(data, &reply); err == nil && reply.Value != nil {
		refs = reply.Value
	} else if err := json.Unmarshal(data, &refs); err != nil {
		return nil, newError(ErrInvalidArgument, "decoding elements: %v", err)
	}
	els := make([]WebElement, 0, len(refs))
	for _, ref := range refs {
		id, ok := ref[ElementKey]
		if !ok {
			return nil, newError(ErrInvalidArgument, "no element reference in %v", ref)
		}
		el, err := d.ElementByID(id)
		if err != nil {
			return nil, err
		}
		els = append(els, el)
	}
	return els, nil
}

func toCookie(c browser.Cookie) Cookie {
	out := Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		SameSite: c.SameSite,
	}
	if !c.Expires.IsZero() {
		out.Expiry = uint(c.Expires.Unix())
	}
	return out
}

// GetCookies returns the cookies visible to the current document.
func (d *Driver) GetCookies() ([]Cookie, error) {
	var cookies []Cookie
	err := d.do(func(b *browser.Browser) error {
		cs, err := b.Cookies()
		if err != nil {
			return err
		}
		cookies = make([]Cookie, len(cs))
		for i, c := range cs {
			cookies[i] = toCookie(c)
		}
		return nil
	})
	return cookies, err
}

// GetCookie returns the named cookie, or nil when the current document sees
// no cookie of that name.
func (d *Driver) GetCookie(name string) (*Cookie, error) {
	var cookie *Cookie
	err := d.do(func(b *browser.Browser) error {
		c, err := b.Cookie(name)
		if errors.Is(err, browser.ErrNoSuchCookie) {
			return nil
		}
		if err != nil {
			return err
		}
		out := toCookie(*c)
		cookie = &out
		return nil
	})
	return cookie, err
}

// AddCookie stores a cookie for the current document. The document must
// have been loaded over http or https.
func (d *Driver) AddCookie(cookie *Cookie) error {
	return d.do(func(b *browser.Browser) error {
		if cookie == nil {
			return newError(ErrInvalidArgument, "nil cookie")
		}
		c := browser.Cookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Domain:   cookie.Domain,
			Path:     cookie.Path,
			Secure:   cookie.Secure,
			HTTPOnly: cookie.HTTPOnly,
			SameSite: cookie.SameSite,
		}
		if cookie.Expiry > 0 {
			c.Expires = time.Unix(int64(cookie.Expiry), 0)
		}
		return b.AddCookie(c)
	})
}

// DeleteAllCookies deletes the cookies visible to the current document.
func (d *Driver) DeleteAllCookies() error {
	return d.do((*browser.Browser).DeleteAllCookies)
}

// DeleteCookie deletes the named cookie.
func (d *Driver) DeleteCookie(name string) error {
	return d.do(func(b *browser.Browser) error {
		return b.DeleteCookie(name)
	})
}

// KeyDown presses each key of keys on the active element. Modifiers stay
// pressed until KeyUp or ReleaseActions.
func (d *Driver) KeyDown(keys string) error {
	return d.do(func(b *browser.Browser) error {
		for _, k := range keys {
			if err := b.KeyDown(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// KeyUp releases each key of keys.
func (d *Driver) KeyUp(keys string) error {
	return d.do(func(b *browser.Browser) error {
		for _, k := range keys {
			if err := b.KeyUp(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReleaseActions releases every key and button held by earlier actions.
func (d *Driver) ReleaseActions() error {
	return d.do((*browser.Browser).ReleaseActions)
}

// Screenshot is not supported: the engine does not render pages.
func (d *Driver) Screenshot() ([]byte, error) {
	return nil, d.do(func(*browser.Browser) error {
		return newError(ErrUnsupportedOperation, "the embedded engine does not render pages")
	})
}

// Log returns and clears the console messages and uncaught script errors
// of the session that pass its loggingPrefs threshold. Only log.Browser
// is collected.
func (d *Driver) Log(typ log.Type) ([]log.Message, error) {
	var msgs []log.Message
	err := d.do(func(b *browser.Browser) error {
		if typ != log.Browser {
			return newError(ErrInvalidArgument, "log type %q is not collected", typ)
		}
		threshold := log.Threshold(d.caps[log.CapabilitiesKey], log.Browser)
		msgs = []log.Message{}
		for _, e := range b.Logs() {
			if !threshold.Includes(log.Level(e.Level)) {
				continue
			}
			msgs = append(msgs, log.Message{Timestamp: e.Time, Level: log.Level(e.Level), Message: e.Message})
		}
		return nil
	})
	return msgs, err
}

// DismissAlert closes the open dialog as cancelled.
func (d *Driver) DismissAlert() error {
	return d.do(func(b *browser.Browser) error {
		return b.AnswerAlert(false)
	})
}

// AcceptAlert closes the open dialog as accepted.
func (d *Driver) AcceptAlert() error {
	return d.do(func(b *browser.Browser) error {
		return b.AnswerAlert(true)
	})
}

// AlertText returns the message of the open dialog.
func (d *Driver) AlertText() (string, error) {
	var text string
	err := d.do(func(b *browser.Browser) error {
		a, err := b.CurrentAlert()
		if err != nil {
			return err
		}
		text = a.Text
		return nil
	})
	return text, err
}

// SetAlertText answers the open prompt.
func (d *Driver) SetAlertText(text string) error {
	return d.do(func(b *browser.Browser) error {
		return b.SetAlertText(text)
	})
}

// ExecuteScript runs script as a function body with args as its arguments.
// Numbers come back as float64 and elements as WebElement.
func (d *Driver) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	return d.execute((*browser.Browser).Execute, script, args)
}

// ExecuteScriptAsync runs script with a callback appended to args and
// returns the value the script passes to it. The script timeout bounds the
// wait.
func (d *Driver) ExecuteScriptAsync(script string, args []interface{}) (interface{}, error) {
	return d.execute((*browser.Browser).ExecuteAsync, script, args)
}

// ExecuteScriptRaw is ExecuteScript returning the {"value": ...} reply as
// JSON.
func (d *Driver) ExecuteScriptRaw(script string, args []interface{}) ([]byte, error) {
	return d.executeRaw(d.ExecuteScript, script, args)
}

// ExecuteScriptAsyncRaw is ExecuteScriptAsync returning the {"value": ...}
// reply as JSON.
func (d *Driver) ExecuteScriptAsyncRaw(script string, args []interface{}) ([]byte, error) {
	return d.executeRaw(d.ExecuteScriptAsync, script, args)
}

type runner func(b *browser.Browser, script string, args []interface{}) (interface{}, error)

func (d *Driver) execute(run runner, script string, args []interface{}) (interface{}, error) {
	var out interface{}
	err := d.do(func(b *browser.Browser) error {
		in, err := d.unwrapArgs(args)
		if err != nil {
			return err
		}
		v, err := run(b, script, in)
		if err != nil {
			return err
		}
		out = d.wrapResult(v)
		return nil
	})
	return out, err
}

func (d *Driver) executeRaw(exec func(string, []interface{}) (interface{}, error), script string, args []interface{}) ([]byte, error) {
	v, err := exec(script, args)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{"value": v})
}

// unwrapArgs replaces this driver's elements in script arguments with
// their engine references.
func (d *Driver) unwrapArgs(args []interface{}) ([]interface{}, error) {
	out := make([]interface{}, len(args))
	for i, a := range args {
		v, err := d.unwrapArg(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (d *Driver) unwrapArg(a interface{}) (interface{}, error) {
	switch v := a.(type) {
	case *Element:
		if v.d != d {
			return nil, newError(ErrInvalidArgument, "element belongs to another session")
		}
		return v.e, nil
	case WebElement:
		return nil, newError(ErrInvalidArgument, "element of type %T does not belong to this driver", v)
	case []interface{}:
		return d.unwrapArgs(v)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, x := range v {
			c, err := d.unwrapArg(x)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	}
	return a, nil
}

func (d *Driver) wrapResult(v interface{}) interface{} {
	switch v := v.(type) {
	case *browser.Element:
		return d.wrap(v)
	case []interface{}:
		for i, x := range v {
			v[i] = d.wrapResult(x)
		}
	case map[string]interface{}:
		for k, x := range v {
			v[k] = d.wrapResult(x)
		}
	}
	return v
}

// String describes the session for logs.
func (d *Driver) String() string {
	return fmt.Sprintf("htmlunit session %s", d.SessionID())
}
