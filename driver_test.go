package htmlunit

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wanmail/htmlunit/log"
)

var fixtures = map[string]string{
	"/": `<html><head><title>Hello, world!</title></head><body>
<p>Hello, world!</p>
</body></html>`,
	"/form.html": `<html><head><title>Form</title></head><body>
<form id="form_id" name="form_name" action="/index.html" method="post">
  <input name="text" type="text" value="default text" />
  <input name="checkbox" type="checkbox" />
  <input name="submit" type="submit" value="Go" />
  <div id="div"><span>nested</span></div>
</form>
</body></html>`,
	"/frame.html": `<html><head><title>Frame</title></head><body>
<iframe id="iframe" src="/iframe.html"></iframe>
</body></html>`,
	"/iframe.html": `<html><body><p id="inner">inside</p></body></html>`,
	"/alert.html": `<html><head><title>Alert</title></head><body>
<a id="link" href="#" onclick="alert('An alert'); return false;">alert</a>
</body></html>`,
	"/index.html": `<html><head><title>Index</title></head><body>submitted</body></html>`,
	"/console.html": `<html><head><script>
console.log('chatter');
console.warn('careful');
console.error('broken');
</script></head><body></body></html>`,
}

func newFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := fixtures[r.URL.Path]
		if !ok {
			page = fixtures["/"]
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	}))
	t.Cleanup(s.Close)
	return s
}

// newTestDriver returns a JavaScript-enabled driver showing path.
func newTestDriver(t *testing.T, s *httptest.Server, path string) *Driver {
	t.Helper()
	d := NewDriver(true)
	t.Cleanup(func() { d.Quit() })
	if err := d.Get(s.URL + path); err != nil {
		t.Fatalf("d.Get(%q) returned error: %v", s.URL+path, err)
	}
	return d
}

func mustFind(t *testing.T, finder interface {
	FindElement(by, value string) (WebElement, error)
}, by, value string) WebElement {
	t.Helper()
	el, err := finder.FindElement(by, value)
	if err != nil {
		t.Fatalf("FindElement(%q, %q) returned error: %v", by, value, err)
	}
	return el
}

func currentURL(t *testing.T, d *Driver) string {
	t.Helper()
	u, err := d.CurrentURL()
	if err != nil {
		t.Fatalf("d.CurrentURL() returned error: %v", err)
	}
	return u
}

func TestNavigation(t *testing.T) {
	s := newFixtureServer(t)
	d := newTestDriver(t, s, "/")

	want := s.URL + "/"
	if got := currentURL(t, d); got != want {
		t.Errorf("CurrentURL() = %q, want %q", got, want)
	}
	if err := d.Refresh(); err != nil {
		t.Fatalf("d.Refresh() returned error: %v", err)
	}
	if got := currentURL(t, d); got != want {
		t.Errorf("CurrentURL() after Refresh = %q, want %q", got, want)
	}
	if title, err := d.Title(); err != nil || title != "Hello, world!" {
		t.Errorf("d.Title() = %q, %v; want %q", title, err, "Hello, world!")
	}
	if err := d.SetImplicitWaitTimeout(0); err != nil {
		t.Errorf("d.SetImplicitWaitTimeout(0) returned error: %v", err)
	}
}

func TestGetURLs(t *testing.T) {
	s := newFixtureServer(t)
	d := newTestDriver(t, s, "/")

	if err := d.Get("www.test.com"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("d.Get(no scheme) = %v, want %v", err, ErrInvalidArgument)
	}
	const unknown = "http://www.thisurldoesnotexist.comx/"
	if err := d.Get(unknown); err != nil {
		t.Fatalf("d.Get(%q) returned error: %v", unknown, err)
	}
	if got := currentURL(t, d); got != unknown {
		t.Errorf("CurrentURL() = %q, want %q", got, unknown)
	}
}

func TestQuit(t *testing.T) {
	s := newFixtureServer(t)
	d := newTestDriver(t, s, "/form.html")
	el := mustFind(t, d, ByName, "text")

	if err := d.Quit(); err != nil {
		t.Fatalf("d.Quit() returned error: %v", err)
	}
	checks := map[string]func() error{
		"Get":     func() error { return d.Get(s.URL) },
		"Title":   func() error { _, err := d.Title(); return err },
		"Element": func() error { _, err := el.Text(); return err },
		"Quit":    d.Quit,
	}
	for name, fn := range checks {
		if err := fn(); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("%s after Quit = %v, want %v", name, err, ErrInvalidSessionID)
		}
	}

	// Status and BrowserVersion describe the driver, not the session.
	if st, err := d.Status(); err != nil || !st.Ready {
		t.Errorf("d.Status() after Quit = %+v, %v; want ready", st, err)
	}
	if v := d.BrowserVersion(); v.String() != Version {
		t.Errorf("d.BrowserVersion() after Quit = %v, want %s", v, Version)
	}
}

func TestWindows(t *testing.T) {
	s := newFixtureServer(t)
	d := newTestDriver(t, s, "/")

	main, err := d.CurrentWindowHandle()
	if err != nil {
		t.Fatalf("d.CurrentWindowHandle() returned error: %v", err)
	}
	if _, err := d.ExecuteScript("window.open('new')", nil); err != nil {
		t.Fatalf("window.open returned error: %v", err)
	}
	if h, _ := d.CurrentWindowHandle(); h != main {
		t.Errorf("window.open changed the current window to %q, want %q", h, main)
	}
	handles, err := d.WindowHandles()
	if err != nil {
		t.Fatalf("d.WindowHandles() returned error: %v", err)
	}
	if len(handles) != 2 || handles[0] != main {
		t.Fatalf("d.WindowHandles() = %v, want [%s <new>]", handles, main)
	}
	if err := d.SwitchWindow(handles[1]); err != nil {
		t.Fatalf("d.SwitchWindow(%q) returned error: %v", handles[1], err)
	}
	if h, _ := d.CurrentWindowHandle(); h == main {
		t.Error("CurrentWindowHandle() is still the main window after switching")
	}
}

func TestWindowGeometry(t *testing.T) {
	s := newFixtureServer(t)
	d := newTestDriver(t, s, "/")

	if err := d.ResizeWindow("", 200, 300); err != nil {
		t.Fatalf("d.ResizeWindow(200, 300) returned error: %v", err)
	}
	size, err := d.WindowSize("")
	if err != nil {
		t.Fatalf("d.WindowSize() returned error: %v", err)
	}
	if diff := cmp.Diff(&Size{Width: 200, Height: 300}, size); diff != "" {
		t.Errorf("d.WindowSize() returned diff (-want/+got):\n%s", diff)
	}

	if err := d.SetWindowPosition("", 200, 300); err != nil {
		t.Fatalf("d.SetWindowPosition(200, 300) returned error: %v", err)
	}
	pos, err := d.WindowPosition("")
	if err != nil {
		t.Fatalf("d.WindowPosition() returned error: %v", err)
	}
	if diff := cmp.Diff(&Point{X: 200, Y: 300}, pos); diff != "" {
		t.Errorf("d.WindowPosition() returned diff (-want/+got):\n%s", diff)
	}
}

func TestFrames(t *testing.T) {
	s := newFixtureServer(t)
	d := newTestDriver(t, s, "/frame.html")

	toFrame := func() {
		t.Helper()
		if err := d.SwitchFrame(mustFind(t, d, ByID, "iframe")); err != nil {
			t.Fatalf("d.SwitchFrame(iframe) returned error: %v", err)
		}
		mustFind(t, d, ByID, "inner")
	}
	toFrame()
	if err := d.SwitchParentFrame(); err != nil {
		t.Fatalf("d.SwitchParentFrame() returned error: %v", err)
	}
	toFrame()
	if err := d.SwitchFrame(nil); err != nil {
		t.Fatalf("d.SwitchFrame(nil) returned error: %v", err)
	}
	toFrame()
}

func TestExecuteAsync(t *testing.T) {
	s := newFixtureServer(t)
	d := newTestDriver(t, s, "/")

	v, err := d.ExecuteScriptAsync("arguments[arguments.length - 1](123);", nil)
	if err != nil {
		t.Fatalf("ExecuteScriptAsync returned error: %v", err)
	}
	if n, ok := v.(float64); !ok || n != 123 {
		t.Errorf("ExecuteScriptAsync = %#v, want the number 123", v)
	}

	if err := d.SetAsyncScriptTimeout(100 * time.Millisecond); err != nil {
		t.Fatalf("d.SetAsyncScriptTimeout returned error: %v", err)
	}
	if _, err := d.ExecuteScriptAsync("var done = arguments[0];", nil); !errors.Is(err, ErrScriptTimeout) {
		t.Errorf("ExecuteScriptAsync without a callback = %v, want %v", err, ErrScriptTimeout)
	}
}

func TestFindInForm(t *testing.T) {
	s := newFixtureServer(t)
	d := newTestDriver(t, s, "/form.html")

	tests := []struct {
		by, form, input string
	}{
		{ByTagName, "form", "input"},
		{ByCSSSelector, "#form_id", "input"},
		{ByXPATH, "//form", "./input"},
	}
	for _, tc := range tests {
		forms, err := d.FindElements(tc.by, tc.form)
		if err != nil || len(forms) != 1 {
			t.Fatalf("d.FindElements(%q, %q) = %d elements, %v; want 1", tc.by, tc.form, len(forms), err)
		}
		inputs, err := forms[0].FindElements(tc.by, tc.input)
		if err != nil || len(inputs) != 3 {
			t.Errorf("form.FindElements(%q, %q) = %d elements, %v; want 3", tc.by, tc.input, len(inputs), err)
		}
		input := mustFind(t, forms[0], tc.by, tc.input)
		if name, err := input.TagName(); err != nil || name != "input" {
			t.Errorf("%s: TagName() = %q, %v; want input", tc.by, name, err)
		}
	}

	form := mustFind(t, d, ByName, "form_name")
	if name, _ := mustFind(t, form, ByName, "text").TagName(); name != "input" {
		t.Errorf("input by name has tag %q, want input", name)
	}
	if name, _ := mustFind(t, d, ByID, "form_id").TagName(); name != "form" {
		t.Errorf("form by id has tag %q, want form", name)
	}
	if _, err := d.FindElement(ByID, "nothing"); !errors.Is(err, ErrNoSuchElement) {
		t.Errorf("d.FindElement(missing) = %v, want %v", err, ErrNoSuchElement)
	}
}

func value(t *testing.T, el WebElement) string {
	t.Helper()
	v, err := el.GetAttribute("value")
	if err != nil {
		t.Fatalf("GetAttribute(value) returned error: %v", err)
	}
	return v
}

func TestSendKeysAndClear(t *testing.T) {
	s := newFixtureServer(t)
	d := newTestDriver(t, s, "/form.html")
	input := mustFind(t, d, ByName, "text")

	if got := value(t, input); got != "default text" {
		t.Fatalf("initial value = %q, want %q", got, "default text")
	}
	if err := input.SendKeys(" changed"); err != nil {
		t.Fatalf("SendKeys returned error: %v", err)
	}
	if got := value(t, input); got != "default text changed" {
		t.Errorf("value after SendKeys = %q, want %q", got, "default text changed")
	}
	if err := input.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if got := value(t, input); got != "" {
		t.Errorf("value after Clear = %q, want empty", got)
	}
}

func TestClickCheckbox(t *testing.T) {
	s := newFixtureServer(t)
	d := newTestDriver(t, s, "/form.html")
	box := mustFind(t, d, ByName, "checkbox")

	check := func(want bool) {
		t.Helper()
		attr, err := box.GetAttribute("selected")
		if want && (err != nil || attr != "true") {
			t.Errorf("GetAttribute(selected) = %q, %v; want \"true\"", attr, err)
		}
		if !want && !errors.Is(err, ErrNullValue) {
			t.Errorf("GetAttribute(selected) = %q, %v; want null", attr, err)
		}
		if got, err := box.IsSelected(); err != nil || got != want {
			t.Errorf("IsSelected() = %t, %v; want %t", got, err, want)
		}
	}
	check(false)
	if err := box.Click(); err != nil {
		t.Fatalf("Click returned error: %v", err)
	}
	check(true)
	if err := box.Click(); err != nil {
		t.Fatalf("Click returned error: %v", err)
	}
	check(false)
}

func TestSubmit(t *testing.T) {
	s := newFixtureServer(t)
	for _, tc := range []struct{ by, value string }{
		{ByTagName, "form"},
		{ByName, "text"},
		{ByID, "div"},
	} {
		d := newTestDriver(t, s, "/form.html")
		if err := mustFind(t, d, tc.by, tc.value).Submit(); err != nil {
			t.Fatalf("Submit from %s=%q returned error: %v", tc.by, tc.value, err)
		}
		if got, want := currentURL(t, d), s.URL+"/index.html"; got != want {
			t.Errorf("Submit from %s=%q: CurrentURL() = %q, want %q", tc.by, tc.value, got, want)
		}
	}

	d := newTestDriver(t, s, "/")
	if err := mustFind(t, d, ByTagName, "p").Submit(); !errors.Is(err, ErrNoSuchElement) {
		t.Errorf("Submit outside a form = %v, want %v", err, ErrNoSuchElement)
	}
}

func TestShiftedKeysThroughActions(t *testing.T) {
	s := newFixtureServer(t)
	d := newTestDriver(t, s, "/form.html")
	text := mustFind(t, d, ByName, "text")
	box := mustFind(t, d, ByName, "checkbox")
	if err := text.Click(); err != nil {
		t.Fatalf("Click returned error: %v", err)
	}

	keys := InputSource{Type: KeySource, ID: "keyboard"}
	add := func(typ, value string) {
		keys.Actions = append(keys.Actions, map[string]interface{}{"type": typ, "value": value})
	}
	add(ActionKeyDown, ShiftKey)
	for _, r := range "changed " {
		add(ActionKeyDown, string(r))
		add(ActionKeyUp, string(r))
	}
	add(ActionKeyUp, ShiftKey)
	if err := d.PerformActions([]InputSource{keys}); err != nil {
		t.Fatalf("PerformActions returned error: %v", err)
	}
	if err := box.Click(); err != nil {
		t.Fatalf("Click returned error: %v", err)
	}
	if got := value(t, text); got != "default textCHANGED " {
		t.Errorf("value = %q, want %q", got, "default textCHANGED ")
	}
	if on, _ := box.IsSelected(); !on {
		t.Error("checkbox is not selected")
	}
}

func TestAlerts(t *testing.T) {
	s := newFixtureServer(t)
	d := newTestDriver(t, s, "/alert.html")

	if _, err := d.AlertText(); !errors.Is(err, ErrNoSuchAlert) {
		t.Fatalf("d.AlertText() without an alert = %v, want %v", err, ErrNoSuchAlert)
	}
	for name, answer := range map[string]func() error{"accept": d.AcceptAlert, "dismiss": d.DismissAlert} {
		if err := mustFind(t, d, ByID, "link").Click(); err != nil {
			t.Fatalf("%s: Click returned error: %v", name, err)
		}
		if text, err := d.AlertText(); err != nil || text != "An alert" {
			t.Errorf("%s: d.AlertText() = %q, %v; want %q", name, text, err, "An alert")
		}
		if err := answer(); err != nil {
			t.Errorf("%s returned error: %v", name, err)
		}
		if err := answer(); !errors.Is(err, ErrNoSuchAlert) {
			t.Errorf("second %s = %v, want %v", name, err, ErrNoSuchAlert)
		}
	}
}

func TestCookies(t *testing.T) {
	s := newFixtureServer(t)
	d := newTestDriver(t, s, "/")

	if err := d.AddCookie(&Cookie{Name: "xxx", Value: "yyy"}); err != nil {
		t.Fatalf("d.AddCookie(xxx) returned error: %v", err)
	}
	c, err := d.GetCookie("xxx")
	if err != nil || c == nil {
		t.Fatalf("d.GetCookie(xxx) = %v, %v", c, err)
	}
	if c.Name != "xxx" || c.Value != "yyy" {
		t.Errorf("d.GetCookie(xxx) = %+v, want xxx=yyy", c)
	}
	cookies, err := d.GetCookies()
	if err != nil || len(cookies) != 1 {
		t.Fatalf("d.GetCookies() = %v, %v; want one cookie", cookies, err)
	}
	if err := d.DeleteCookie("xxx"); err != nil {
		t.Fatalf("d.DeleteCookie(xxx) returned error: %v", err)
	}
	if c, err := d.GetCookie("xxx"); c != nil || err != nil {
		t.Errorf("d.GetCookie(xxx) after delete = %v, %v; want nil, nil", c, err)
	}

	d.AddCookie(&Cookie{Name: "xxx", Value: "yyy"})
	d.AddCookie(&Cookie{Name: "yyy", Value: "xxx"})
	if cookies, _ := d.GetCookies(); len(cookies) != 2 {
		t.Errorf("d.GetCookies() = %v, want two cookies", cookies)
	}
	if err := d.DeleteAllCookies(); err != nil {
		t.Fatalf("d.DeleteAllCookies() returned error: %v", err)
	}
	if cookies, _ := d.GetCookies(); len(cookies) != 0 {
		t.Errorf("d.GetCookies() after DeleteAllCookies = %v, want none", cookies)
	}
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		desc    string
		caps    Capabilities
		wantJS  bool
		wantErr *Error
	}{
		{desc: "empty", caps: Capabilities{}, wantJS: false},
		{desc: "enabled", caps: Capabilities{JavascriptEnabledKey: true}, wantJS: true},
		{desc: "not a boolean", caps: Capabilities{JavascriptEnabledKey: "true"}, wantErr: ErrInvalidArgument},
		{desc: "bad proxy", caps: Capabilities{ProxyKey: 42}, wantErr: ErrInvalidArgument},
	}
	for _, tc := range tests {
		d, err := NewDriverWithCapabilities(tc.caps)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("%s: NewDriverWithCapabilities = %v, want %v", tc.desc, err, tc.wantErr)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: NewDriverWithCapabilities returned error: %v", tc.desc, err)
		}
		got, err := d.Capabilities()
		if err != nil {
			t.Fatalf("%s: d.Capabilities() returned error: %v", tc.desc, err)
		}
		if got[JavascriptEnabledKey] != tc.wantJS {
			t.Errorf("%s: javascriptEnabled = %v, want %t", tc.desc, got[JavascriptEnabledKey], tc.wantJS)
		}
		d.Quit()
	}
}

func TestScriptsDisabled(t *testing.T) {
	s := newFixtureServer(t)
	d := NewDriver(false)
	defer d.Quit()
	if err := d.Get(s.URL + "/alert.html"); err != nil {
		t.Fatalf("d.Get returned error: %v", err)
	}
	if _, err := d.ExecuteScript("return 1;", nil); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("ExecuteScript with scripts disabled = %v, want %v", err, ErrUnsupportedOperation)
	}
	if err := mustFind(t, d, ByID, "link").Click(); err != nil {
		t.Fatalf("Click returned error: %v", err)
	}
	if _, err := d.AlertText(); !errors.Is(err, ErrNoSuchAlert) {
		t.Errorf("onclick ran with scripts disabled: AlertText() = %v", err)
	}
}

func TestLogThreshold(t *testing.T) {
	s := newFixtureServer(t)
	caps := Capabilities{JavascriptEnabledKey: true}
	caps.SetLogLevel(log.Browser, log.Warning)
	d, err := NewDriverWithCapabilities(caps)
	if err != nil {
		t.Fatalf("NewDriverWithCapabilities returned error: %v", err)
	}
	defer d.Quit()
	if err := d.Get(s.URL + "/console.html"); err != nil {
		t.Fatalf("d.Get returned error: %v", err)
	}

	msgs, err := d.Log(log.Browser)
	if err != nil {
		t.Fatalf("d.Log(Browser) returned error: %v", err)
	}
	var got []string
	for _, m := range msgs {
		got = append(got, string(m.Level)+": "+m.Message)
	}
	if diff := cmp.Diff([]string{"WARNING: careful", "SEVERE: broken"}, got); diff != "" {
		t.Errorf("d.Log(Browser) returned diff (-want/+got):\n%s", diff)
	}

	if msgs, err := d.Log(log.Browser); err != nil || len(msgs) != 0 {
		t.Errorf("second d.Log(Browser) = %v, %v; want no messages", msgs, err)
	}
	if _, err := d.Log(log.Driver); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("d.Log(Driver) = %v, want %v", err, ErrInvalidArgument)
	}
}
