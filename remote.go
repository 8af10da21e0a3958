// Remote WebDriver client implementation.
// See https://www.w3.org/TR/webdriver for the protocol.

package htmlunit

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blang/semver"

	"github.com/wanmail/htmlunit/log"
)

const (
	// Success is the legacy status code that indicates the method was
	// successful.
	Success = 0
	// DefaultURLPrefix is the default HTTP endpoint that offers the WebDriver
	// API.
	DefaultURLPrefix = "http://127.0.0.1:4444/wd/hub"
	// JSONType is JSON content type.
	JSONType = "application/json"
	// MaxRedirects is the maximum number of redirects to follow.
	MaxRedirects = 10
)

// VersionedDriver is implemented by drivers that know the version of the
// browser behind the session.
type VersionedDriver interface {
	BrowserVersion() semver.Version
}

type remoteWD struct {
	id, urlPrefix  string
	capabilities   Capabilities
	browserVersion semver.Version
}

var (
	_ WebDriver       = (*remoteWD)(nil)
	_ VersionedDriver = (*remoteWD)(nil)
)

// HTTPClient is the HTTP client used by remote sessions.
var HTTPClient = &http.Client{
	// http.Client doesn't copy request headers on redirect, and WebDriver
	// servers require them.
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) > MaxRedirects {
			return fmt.Errorf("too many redirects (%d)", len(via))
		}
		req.Header.Add("Accept", JSONType)
		return nil
	},
}

func newRequest(method string, url string, data []byte) (*http.Request, error) {
	request, err := http.NewRequest(method, url, bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	request.Header.Add("Accept", JSONType)
	if data != nil {
		request.Header.Add("Content-Type", JSONType)
	}
	return request, nil
}

// templateArg escapes s as a path segment of a URL template.
func templateArg(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), "%", "%%")
}

func cleanNils(buf []byte) {
	for i, b := range buf {
		if b == 0 {
			buf[i] = ' '
		}
	}
}

func (wd *remoteWD) requestURL(template string, args ...interface{}) string {
	return wd.urlPrefix + fmt.Sprintf(template, args...)
}

// serverReply is the envelope of every response. SessionID and Status are
// only set by servers speaking the legacy JSON wire protocol.
type serverReply struct {
	SessionID *string `json:"sessionId"`
	Status    int     `json:"status"`
	Value     json.RawMessage
}

// replyError decodes the error carried by a failed response.
func replyError(code int, buf []byte) error {
	reply := new(serverReply)
	if err := json.Unmarshal(buf, reply); err != nil {
		return &Error{
			Err:      ErrUnknown.Err,
			Message:  fmt.Sprintf("bad server reply status %d: %s", code, buf),
			HTTPCode: code,
		}
	}
	e := new(Error)
	if len(reply.Value) > 0 {
		if err := json.Unmarshal(reply.Value, e); err != nil {
			var msg string
			if json.Unmarshal(reply.Value, &msg) == nil {
				e.Message = msg
			}
		}
	}
	e.HTTPCode = code
	if reply.Status != Success {
		e.LegacyCode = reply.Status
		if e.Err == "" {
			kind, ok := legacyErrors[reply.Status]
			if !ok {
				kind = fmt.Sprintf("unknown error - %d", reply.Status)
			}
			e.Err = kind
		}
	}
	if e.Err == "" {
		e.Err = ErrUnknown.Err
	}
	return e
}

func (wd *remoteWD) execute(method, url string, data []byte) ([]byte, error) {
	return executeCommand(method, url, data)
}

func executeCommand(method, url string, data []byte) ([]byte, error) {
	debugLog("-> %s %s\n%s", method, url, data)
	request, err := newRequest(method, url, data)
	if err != nil {
		return nil, err
	}

	response, err := HTTPClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	buf, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("reading reply to %s %s: %v", method, url, err)
	}
	if debugFlag {
		var prettyBuf bytes.Buffer
		if err := json.Indent(&prettyBuf, buf, "", "    "); err == nil && prettyBuf.Len() > 0 {
			debugLog("<- %s [%s]\n%s", response.Status, response.Header.Get("Content-Type"), prettyBuf.Bytes())
		} else {
			debugLog("<- %s [%s]\n%s", response.Status, response.Header.Get("Content-Type"), buf)
		}
	}

	cleanNils(buf)
	if response.StatusCode >= 400 {
		return nil, replyError(response.StatusCode, buf)
	}

	if strings.HasPrefix(response.Header.Get("Content-Type"), JSONType) {
		reply := new(serverReply)
		if err := json.Unmarshal(buf, reply); err != nil {
			return nil, err
		}
		if reply.Status != Success {
			return nil, replyError(response.StatusCode, buf)
		}
	}

	// Nothing was returned, this is OK for some commands.
	return buf, nil
}

// NewRemote creates new remote client, this will also start a new session.
// capabilities provides the desired capabilities. urlPrefix is the URL to
// the WebDriver server, which must be prefixed with protocol (http, https,
// ...).
//
// Providing an empty string for urlPrefix causes the DefaultURLPrefix to be
// used.
func NewRemote(capabilities Capabilities, urlPrefix string) (WebDriver, error) {
	if urlPrefix == "" {
		urlPrefix = DefaultURLPrefix
	}

	wd := &remoteWD{urlPrefix: strings.TrimSuffix(urlPrefix, "/"), capabilities: capabilities}
	if _, err := wd.NewSession(); err != nil {
		return nil, err
	}
	return wd, nil
}

// DeleteSession deletes an existing session at the WebDriver instance
// specified by the urlPrefix and the session ID.
func DeleteSession(urlPrefix, id string) error {
	u, err := url.Parse(urlPrefix)
	if err != nil {
		return err
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/session/" + id
	_, err = executeCommand("DELETE", u.String(), nil)
	return err
}

func (wd *remoteWD) stringCommand(urlTemplate string) (string, error) {
	url := wd.requestURL(urlTemplate, wd.id)
	response, err := wd.execute("GET", url, nil)
	if err != nil {
		return "", err
	}

	reply := new(struct{ Value *string })
	if err := json.Unmarshal(response, reply); err != nil {
		return "", err
	}

	if reply.Value == nil {
		return "", ErrNullValue
	}

	return *reply.Value, nil
}

func (wd *remoteWD) voidCommand(urlTemplate string, params interface{}) error {
	return wd.voidMethod("POST", urlTemplate, params)
}

func (wd *remoteWD) voidMethod(method, urlTemplate string, params interface{}) error {
	data := []byte("{}")
	if params != nil {
		var err error
		data, err = json.Marshal(params)
		if err != nil {
			return err
		}
	}
	if method == "DELETE" || method == "GET" {
		data = nil
	}
	_, err := wd.execute(method, wd.requestURL(urlTemplate, wd.id), data)
	return err
}

func (wd *remoteWD) stringsCommand(urlTemplate string) ([]string, error) {
	url := wd.requestURL(urlTemplate, wd.id)
	response, err := wd.execute("GET", url, nil)
	if err != nil {
		return nil, err
	}

	reply := new(struct{ Value []string })
	if err := json.Unmarshal(response, reply); err != nil {
		return nil, err
	}

	return reply.Value, nil
}

func (wd *remoteWD) boolCommand(urlTemplate string) (bool, error) {
	url := wd.requestURL(urlTemplate, wd.id)
	response, err := wd.execute("GET", url, nil)
	if err != nil {
		return false, err
	}

	reply := new(struct{ Value bool })
	if err := json.Unmarshal(response, reply); err != nil {
		return false, err
	}

	return reply.Value, nil
}

func (wd *remoteWD) Status() (*Status, error) {
	url := wd.requestURL("/status")
	reply, err := wd.execute("GET", url, nil)
	if err != nil {
		return nil, err
	}

	status := new(struct{ Value Status })
	if err := json.Unmarshal(reply, status); err != nil {
		return nil, err
	}

	return &status.Value, nil
}

func (wd *remoteWD) NewSession() (string, error) {
	caps := wd.capabilities
	if caps == nil {
		caps = Capabilities{}
	}
	data, err := json.Marshal(map[string]interface{}{
		"capabilities": map[string]interface{}{
			"alwaysMatch": caps,
		},
		"desiredCapabilities": caps,
	})
	if err != nil {
		return "", err
	}

	response, err := wd.execute("POST", wd.requestURL("/session"), data)
	if err != nil {
		return "", err
	}

	reply := new(serverReply)
	if err := json.Unmarshal(response, reply); err != nil {
		return "", err
	}
	value := new(struct {
		SessionID    string       `json:"sessionId"`
		Capabilities Capabilities `json:"capabilities"`
	})
	if len(reply.Value) > 0 {
		if err := json.Unmarshal(reply.Value, value); err != nil {
			return "", err
		}
	}

	switch {
	case value.SessionID != "":
		wd.id = value.SessionID
	case reply.SessionID != nil:
		wd.id = *reply.SessionID
	default:
		return "", newError(ErrSessionNotCreated, "no session ID in reply: %s", response)
	}

	if v, ok := value.Capabilities["browserVersion"].(string); ok {
		version, err := semver.ParseTolerant(v)
		if err != nil {
			debugLog("htmlunit: unparsed browserVersion %q: %v", v, err)
		} else {
			wd.browserVersion = version
		}
	}
	return wd.id, nil
}

// BrowserVersion returns the browserVersion the server reported for the
// session.
func (wd *remoteWD) BrowserVersion() semver.Version {
	return wd.browserVersion
}

// SessionID returns the current session ID
func (wd *remoteWD) SessionID() string {
	return wd.id
}

func (wd *remoteWD) SwitchSession(sessionID string) error {
	wd.id = sessionID
	return nil
}

func (wd *remoteWD) Capabilities() (Capabilities, error) {
	url := wd.requestURL("/session/%s", wd.id)
	response, err := wd.execute("GET", url, nil)
	if err != nil {
		return nil, err
	}

	c := new(struct{ Value Capabilities })
	if err := json.Unmarshal(response, c); err != nil {
		return nil, err
	}

	return c.Value, nil
}

func (wd *remoteWD) setTimeout(key string, timeout time.Duration) error {
	return wd.voidCommand("/session/%s/timeouts", map[string]uint{
		key: uint(timeout / time.Millisecond),
	})
}

func (wd *remoteWD) SetAsyncScriptTimeout(timeout time.Duration) error {
	return wd.setTimeout("script", timeout)
}

func (wd *remoteWD) SetImplicitWaitTimeout(timeout time.Duration) error {
	return wd.setTimeout("implicit", timeout)
}

func (wd *remoteWD) SetPageLoadTimeout(timeout time.Duration) error {
	return wd.setTimeout("pageLoad", timeout)
}

func (wd *remoteWD) Quit() error {
	if wd.id == "" {
		return nil
	}
	_, err := wd.execute("DELETE", wd.requestURL("/session/%s", wd.id), nil)
	if err == nil {
		wd.id = ""
	}
	return err
}

func (wd *remoteWD) CurrentWindowHandle() (string, error) {
	return wd.stringCommand("/session/%s/window")
}

func (wd *remoteWD) WindowHandles() ([]string, error) {
	return wd.stringsCommand("/session/%s/window/handles")
}

func (wd *remoteWD) CurrentURL() (string, error) {
	return wd.stringCommand("/session/%s/url")
}

func (wd *remoteWD) Get(url string) error {
	return wd.voidCommand("/session/%s/url", map[string]string{
		"url": url,
	})
}

func (wd *remoteWD) Forward() error {
	return wd.voidCommand("/session/%s/forward", nil)
}

func (wd *remoteWD) Back() error {
	return wd.voidCommand("/session/%s/back", nil)
}

func (wd *remoteWD) Refresh() error {
	return wd.voidCommand("/session/%s/refresh", nil)
}

func (wd *remoteWD) Title() (string, error) {
	return wd.stringCommand("/session/%s/title")
}

func (wd *remoteWD) PageSource() (string, error) {
	return wd.stringCommand("/session/%s/source")
}

func (wd *remoteWD) find(by, value, suffix, url string) ([]byte, error) {
	params := map[string]string{
		"using": by,
		"value": value,
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	if len(url) == 0 {
		url = "/session/%s/element"
	}

	return wd.execute("POST", wd.requestURL(url+suffix, wd.id), data)
}

// elementRef is an element reference as sent by W3C and legacy servers.
type elementRef struct {
	Element string `json:"ELEMENT"`
	W3C     string `json:"element-6066-11e4-a52e-4f735466cecf"`
}

func (r elementRef) id() string {
	if r.W3C != "" {
		return r.W3C
	}
	return r.Element
}

func (wd *remoteWD) DecodeElement(data []byte) (WebElement, error) {
	reply := new(struct{ Value *elementRef })
	if err := json.Unmarshal(data, reply); err != nil {
		return nil, err
	}
	if reply.Value == nil || reply.Value.id() == "" {
		return nil, newError(ErrNoSuchElement, "no element reference in reply")
	}
	return &remoteWE{wd, reply.Value.id()}, nil
}

func (wd *remoteWD) FindElement(by, value string) (WebElement, error) {
	response, err := wd.find(by, value, "", "")
	if err != nil {
		return nil, err
	}
	return wd.DecodeElement(response)
}

func (wd *remoteWD) DecodeElements(data []byte) ([]WebElement, error) {
	reply := new(struct{ Value []elementRef })
	if err := json.Unmarshal(data, reply); err != nil {
		return nil, err
	}

	elems := make([]WebElement, len(reply.Value))
	for i, elem := range reply.Value {
		elems[i] = &remoteWE{wd, elem.id()}
	}

	return elems, nil
}

func (wd *remoteWD) FindElements(by, value string) ([]WebElement, error) {
	response, err := wd.find(by, value, "s", "")
	if err != nil {
		return nil, err
	}

	return wd.DecodeElements(response)
}

func (wd *remoteWD) Close() error {
	return wd.voidMethod("DELETE", "/session/%s/window", nil)
}

func (wd *remoteWD) SwitchWindow(name string) error {
	return wd.voidCommand("/session/%s/window", map[string]string{
		"handle": name,
		"name":   name,
	})
}

// inWindow runs fn with the named window current. W3C window commands
// only address the current window.
func (wd *remoteWD) inWindow(name string, fn func() error) error {
	if name == "" {
		return fn()
	}
	current, err := wd.CurrentWindowHandle()
	if err != nil {
		return err
	}
	if current == name {
		return fn()
	}
	if err := wd.SwitchWindow(name); err != nil {
		return err
	}
	fnErr := fn()
	if err := wd.SwitchWindow(current); err != nil && fnErr == nil && !errors.Is(err, ErrNoSuchWindow) {
		return err
	}
	return fnErr
}

func (wd *remoteWD) CloseWindow(name string) error {
	if name == "" {
		return wd.Close()
	}
	current, err := wd.CurrentWindowHandle()
	if err != nil && !errors.Is(err, ErrNoSuchWindow) {
		return err
	}
	if err := wd.SwitchWindow(name); err != nil {
		return err
	}
	if err := wd.Close(); err != nil {
		return err
	}
	if current != "" && current != name {
		return wd.SwitchWindow(current)
	}
	return nil
}

func (wd *remoteWD) MaximizeWindow(name string) error {
	return wd.inWindow(name, func() error {
		return wd.voidCommand("/session/%s/window/maximize", nil)
	})
}

type windowRect struct {
	X      *int `json:"x,omitempty"`
	Y      *int `json:"y,omitempty"`
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
}

func (wd *remoteWD) rect(name string) (*windowRect, error) {
	r := new(windowRect)
	err := wd.inWindow(name, func() error {
		response, err := wd.execute("GET", wd.requestURL("/session/%s/window/rect", wd.id), nil)
		if err != nil {
			return err
		}
		reply := new(struct{ Value *windowRect })
		reply.Value = r
		return json.Unmarshal(response, reply)
	})
	return r, err
}

func (wd *remoteWD) ResizeWindow(name string, width, height int) error {
	return wd.inWindow(name, func() error {
		return wd.voidCommand("/session/%s/window/rect", windowRect{Width: &width, Height: &height})
	})
}

func (wd *remoteWD) WindowSize(name string) (*Size, error) {
	r, err := wd.rect(name)
	if err != nil {
		return nil, err
	}
	size := new(Size)
	if r.Width != nil && r.Height != nil {
		size.Width, size.Height = *r.Width, *r.Height
	}
	return size, nil
}

func (wd *remoteWD) SetWindowPosition(name string, x, y int) error {
	return wd.inWindow(name, func() error {
		return wd.voidCommand("/session/%s/window/rect", windowRect{X: &x, Y: &y})
	})
}

func (wd *remoteWD) WindowPosition(name string) (*Point, error) {
	r, err := wd.rect(name)
	if err != nil {
		return nil, err
	}
	pt := new(Point)
	if r.X != nil && r.Y != nil {
		pt.X, pt.Y = *r.X, *r.Y
	}
	return pt, nil
}

func (wd *remoteWD) SwitchFrame(frame interface{}) error {
	params := map[string]interface{}{}
	switch f := frame.(type) {
	case WebElement, int, nil:
		params["id"] = f
	case string:
		if f == "" {
			params["id"] = nil
		} else {
			// W3C only switches by index or element.
			we, err := wd.FindElement(ByXPATH, fmt.Sprintf("//*[self::iframe or self::frame][@id=%s or @name=%s]", xpathLiteral(f), xpathLiteral(f)))
			if err != nil {
				return newError(ErrNoSuchFrame, "no frame with id or name %q", f)
			}
			params["id"] = we
		}
	default:
		return newError(ErrInvalidArgument, "invalid type %T for a frame", frame)
	}
	return wd.voidCommand("/session/%s/frame", params)
}

func (wd *remoteWD) SwitchParentFrame() error {
	return wd.voidCommand("/session/%s/frame/parent", nil)
}

func (wd *remoteWD) ActiveElement() (WebElement, error) {
	url := wd.requestURL("/session/%s/element/active", wd.id)
	response, err := wd.execute("GET", url, nil)
	if err != nil {
		return nil, err
	}

	return wd.DecodeElement(response)
}

// remoteCookie is a cookie as sent by servers: some report the expiry as a
// float.
type remoteCookie struct {
	Name     string      `json:"name"`
	Value    string      `json:"value"`
	Path     string      `json:"path"`
	Domain   string      `json:"domain"`
	Secure   bool        `json:"secure"`
	HTTPOnly bool        `json:"httpOnly"`
	Expiry   interface{} `json:"expiry"`
	SameSite string      `json:"sameSite"`
}

func (c remoteCookie) sanitize() Cookie {
	sanitized := Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		SameSite: c.SameSite,
	}
	if expiry, ok := number(c.Expiry); ok && expiry > 0 {
		sanitized.Expiry = uint(expiry)
	}
	return sanitized
}

func (wd *remoteWD) GetCookies() ([]Cookie, error) {
	url := wd.requestURL("/session/%s/cookie", wd.id)
	data, err := wd.execute("GET", url, nil)
	if err != nil {
		return nil, err
	}

	reply := new(struct{ Value []remoteCookie })
	if err := json.Unmarshal(data, reply); err != nil {
		return nil, err
	}

	cookies := make([]Cookie, len(reply.Value))
	for i, c := range reply.Value {
		cookies[i] = c.sanitize()
	}
	return cookies, nil
}

func (wd *remoteWD) GetCookie(name string) (*Cookie, error) {
	u := wd.requestURL("/session/%s/cookie/%s", wd.id, url.PathEscape(name))
	data, err := wd.execute("GET", u, nil)
	if errors.Is(err, ErrNoSuchCookie) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	reply := new(struct{ Value *remoteCookie })
	if err := json.Unmarshal(data, reply); err != nil {
		return nil, err
	}
	if reply.Value == nil {
		return nil, nil
	}
	c := reply.Value.sanitize()
	return &c, nil
}

func (wd *remoteWD) AddCookie(cookie *Cookie) error {
	return wd.voidCommand("/session/%s/cookie", map[string]*Cookie{
		"cookie": cookie,
	})
}

func (wd *remoteWD) DeleteAllCookies() error {
	return wd.voidMethod("DELETE", "/session/%s/cookie", nil)
}

func (wd *remoteWD) DeleteCookie(name string) error {
	return wd.voidMethod("DELETE", "/session/%s/cookie/"+templateArg(name), nil)
}

func (wd *remoteWD) PerformActions(sources []InputSource) error {
	return wd.voidCommand("/session/%s/actions", map[string]interface{}{
		"actions": sources,
	})
}

func (wd *remoteWD) ReleaseActions() error {
	return wd.voidMethod("DELETE", "/session/%s/actions", nil)
}

// keyActions builds one key source pressing or releasing each key.
func keyActions(typ, keys string) []InputSource {
	src := InputSource{Type: KeySource, ID: "keyboard"}
	for _, k := range keys {
		src.Actions = append(src.Actions, map[string]interface{}{
			"type":  typ,
			"value": string(k),
		})
	}
	return []InputSource{src}
}

func (wd *remoteWD) KeyDown(keys string) error {
	return wd.PerformActions(keyActions(ActionKeyDown, keys))
}

func (wd *remoteWD) KeyUp(keys string) error {
	return wd.PerformActions(keyActions(ActionKeyUp, keys))
}

func (wd *remoteWD) DismissAlert() error {
	return wd.voidCommand("/session/%s/alert/dismiss", nil)
}

func (wd *remoteWD) AcceptAlert() error {
	return wd.voidCommand("/session/%s/alert/accept", nil)
}

func (wd *remoteWD) AlertText() (string, error) {
	return wd.stringCommand("/session/%s/alert/text")
}

func (wd *remoteWD) SetAlertText(text string) error {
	return wd.voidCommand("/session/%s/alert/text", map[string]string{"text": text})
}

func (wd *remoteWD) execScriptRaw(script string, args []interface{}, suffix string) ([]byte, error) {
	if args == nil {
		args = make([]interface{}, 0)
	}

	data, err := json.Marshal(map[string]interface{}{
		"script": script,
		"args":   args,
	})
	if err != nil {
		return nil, err
	}

	return wd.execute("POST", wd.requestURL("/session/%s/execute/"+suffix, wd.id), data)
}

func (wd *remoteWD) execScript(script string, args []interface{}, suffix string) (interface{}, error) {
	response, err := wd.execScriptRaw(script, args, suffix)
	if err != nil {
		return nil, err
	}

	reply := new(struct{ Value interface{} })
	if err = json.Unmarshal(response, reply); err != nil {
		return nil, err
	}

	return wd.decodeValue(reply.Value), nil
}

// decodeValue turns element references in a script result into
// WebElements.
func (wd *remoteWD) decodeValue(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		if id, ok := v[ElementKey].(string); ok && len(v) == 1 {
			return &remoteWE{wd, id}
		}
		for k, x := range v {
			v[k] = wd.decodeValue(x)
		}
	case []interface{}:
		for i, x := range v {
			v[i] = wd.decodeValue(x)
		}
	}
	return v
}

func (wd *remoteWD) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	return wd.execScript(script, args, "sync")
}

func (wd *remoteWD) ExecuteScriptAsync(script string, args []interface{}) (interface{}, error) {
	return wd.execScript(script, args, "async")
}

func (wd *remoteWD) ExecuteScriptRaw(script string, args []interface{}) ([]byte, error) {
	return wd.execScriptRaw(script, args, "sync")
}

func (wd *remoteWD) ExecuteScriptAsyncRaw(script string, args []interface{}) ([]byte, error) {
	return wd.execScriptRaw(script, args, "async")
}

func (wd *remoteWD) Screenshot() ([]byte, error) {
	data, err := wd.stringCommand("/session/%s/screenshot")
	if err != nil {
		return nil, err
	}

	// Screenshots come base64 encoded.
	return io.ReadAll(base64.NewDecoder(base64.StdEncoding, strings.NewReader(data)))
}

func (wd *remoteWD) Log(typ log.Type) ([]log.Message, error) {
	url := wd.requestURL("/session/%s/log", wd.id)
	data, err := json.Marshal(map[string]log.Type{
		"type": typ,
	})
	if err != nil {
		return nil, err
	}
	response, err := wd.execute("POST", url, data)
	if err != nil {
		return nil, err
	}

	c := new(struct {
		Value []struct {
			Timestamp int64
			Level     string
			Message   string
		}
	})
	if err = json.Unmarshal(response, c); err != nil {
		return nil, err
	}

	msgs := make([]log.Message, len(c.Value))
	for i, m := range c.Value {
		msgs[i] = log.Message{
			Timestamp: time.UnixMilli(m.Timestamp),
			Level:     log.Level(m.Level),
			Message:   m.Message,
		}
	}
	return msgs, nil
}

func (wd *remoteWD) WaitWithTimeoutAndInterval(condition Condition, timeout, interval time.Duration) error {
	return wait(wd, condition, timeout, interval)
}

func (wd *remoteWD) WaitWithTimeout(condition Condition, timeout time.Duration) error {
	return wait(wd, condition, timeout, DefaultWaitInterval)
}

func (wd *remoteWD) Wait(condition Condition) error {
	return wait(wd, condition, DefaultWaitTimeout, DefaultWaitInterval)
}

type remoteWE struct {
	parent *remoteWD
	id     string
}

func (elem *remoteWE) Click() error {
	urlTemplate := fmt.Sprintf("/session/%%s/element/%s/click", elem.id)
	return elem.parent.voidCommand(urlTemplate, nil)
}

func (elem *remoteWE) SendKeys(keys string) error {
	urlTemplate := fmt.Sprintf("/session/%%s/element/%s/value", elem.id)
	return elem.parent.voidCommand(urlTemplate, processKeyString(keys))
}

func processKeyString(keys string) interface{} {
	chars := make([]string, 0, len(keys))
	for _, c := range keys {
		chars = append(chars, string(c))
	}
	return map[string]interface{}{
		"text":  keys,
		"value": chars,
	}
}

func (elem *remoteWE) TagName() (string, error) {
	urlTemplate := fmt.Sprintf("/session/%%s/element/%s/name", elem.id)
	return elem.parent.stringCommand(urlTemplate)
}

func (elem *remoteWE) Text() (string, error) {
	urlTemplate := fmt.Sprintf("/session/%%s/element/%s/text", elem.id)
	return elem.parent.stringCommand(urlTemplate)
}

func (elem *remoteWE) Submit() error {
	urlTemplate := fmt.Sprintf("/session/%%s/element/%s/submit", elem.id)
	return elem.parent.voidCommand(urlTemplate, nil)
}

func (elem *remoteWE) Clear() error {
	urlTemplate := fmt.Sprintf("/session/%%s/element/%s/clear", elem.id)
	return elem.parent.voidCommand(urlTemplate, nil)
}

func (elem *remoteWE) MoveTo(xOffset, yOffset int) error {
	return elem.parent.PerformActions([]InputSource{{
		Type:       PointerSource,
		ID:         "mouse",
		Parameters: map[string]string{"pointerType": "mouse"},
		Actions: []map[string]interface{}{{
			"type":   ActionPointerMove,
			"origin": elem,
			"x":      xOffset,
			"y":      yOffset,
		}},
	}})
}

func (elem *remoteWE) FindElement(by, value string) (WebElement, error) {
	url := fmt.Sprintf("/session/%%s/element/%s/element", elem.id)
	response, err := elem.parent.find(by, value, "", url)
	if err != nil {
		return nil, err
	}

	return elem.parent.DecodeElement(response)
}

func (elem *remoteWE) FindElements(by, value string) ([]WebElement, error) {
	url := fmt.Sprintf("/session/%%s/element/%s/element", elem.id)
	response, err := elem.parent.find(by, value, "s", url)
	if err != nil {
		return nil, err
	}

	return elem.parent.DecodeElements(response)
}

func (elem *remoteWE) boolQuery(urlTemplate string) (bool, error) {
	return elem.parent.boolCommand(fmt.Sprintf(urlTemplate, elem.id))
}

func (elem *remoteWE) IsSelected() (bool, error) {
	return elem.boolQuery("/session/%%s/element/%s/selected")
}

func (elem *remoteWE) IsEnabled() (bool, error) {
	return elem.boolQuery("/session/%%s/element/%s/enabled")
}

func (elem *remoteWE) IsDisplayed() (bool, error) {
	return elem.boolQuery("/session/%%s/element/%s/displayed")
}

func (elem *remoteWE) GetAttribute(name string) (string, error) {
	template := "/session/%%s/element/%s/attribute/%s"
	return elem.parent.stringCommand(fmt.Sprintf(template, elem.id, templateArg(name)))
}

func (elem *remoteWE) GetProperty(name string) (string, error) {
	template := "/session/%%s/element/%s/property/%s"
	return elem.parent.stringCommand(fmt.Sprintf(template, elem.id, templateArg(name)))
}

type elementRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (elem *remoteWE) rect() (*elementRect, error) {
	wd := elem.parent
	url := wd.requestURL("/session/%s/element/%s/rect", wd.id, elem.id)
	response, err := wd.execute("GET", url, nil)
	if err != nil {
		return nil, err
	}
	reply := new(struct{ Value elementRect })
	if err := json.Unmarshal(response, reply); err != nil {
		return nil, err
	}
	return &reply.Value, nil
}

func (elem *remoteWE) Location() (*Point, error) {
	r, err := elem.rect()
	if err != nil {
		return nil, err
	}
	return &Point{X: int(r.X), Y: int(r.Y)}, nil
}

func (elem *remoteWE) LocationInView() (*Point, error) {
	return elem.Location()
}

func (elem *remoteWE) Size() (*Size, error) {
	r, err := elem.rect()
	if err != nil {
		return nil, err
	}
	return &Size{Width: int(r.Width), Height: int(r.Height)}, nil
}

func (elem *remoteWE) CSSProperty(name string) (string, error) {
	wd := elem.parent
	return wd.stringCommand(fmt.Sprintf("/session/%%s/element/%s/css/%s", elem.id, templateArg(name)))
}

func (elem *remoteWE) Screenshot(scroll bool) ([]byte, error) {
	data, err := elem.parent.stringCommand(fmt.Sprintf("/session/%%s/element/%s/screenshot", elem.id))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(base64.NewDecoder(base64.StdEncoding, strings.NewReader(data)))
}

func (elem *remoteWE) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"ELEMENT":  elem.id,
		ElementKey: elem.id,
	})
}
