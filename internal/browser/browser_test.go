package browser

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wanmail/htmlunit/internal/dom"
)

const homePage = `<html>
<head><title>Home</title></head>
<body>
<a id="other" href="/other">other page</a>
<p id="para">Some text</p>
<form id="f" method="post" action="/echo">
	<input type="text" name="q" id="q" value="x"/>
	<input type="checkbox" name="c" id="c"/>
	<input type="radio" name="r" id="r1" value="1" checked/>
	<input type="radio" name="r" id="r2" value="2"/>
	<input type="submit" name="go" value="Go"/>
</form>
<iframe id="fr" name="frn" src="/frame"></iframe>
</body>
</html>`

const dialogPage = `<html>
<head><title>Dialogs</title></head>
<body>
<button id="confirm" onclick="document.title = String(confirm('sure?'))">confirm</button>
<button id="prompt" onclick="document.title = String(prompt('name?', 'anon'))">prompt</button>
<button id="alert" onclick="alert('hi')">alert</button>
</body>
</html>`

const busyPage = `<html>
<head><title>Busy</title></head>
<body>
<script>
var ticks = 0;
setInterval(function() {
	ticks++;
	window.innerWidth;
	location.href = '#tick' + (ticks % 5);
}, 1);
</script>
</body>
</html>`

const latePage = `<html>
<head><title>Late</title></head>
<body>
<script>
setTimeout(function() {
	var p = document.createElement('p');
	p.id = 'late';
	document.body.appendChild(p);
}, 100);
</script>
</body>
</html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, body)
		}
	}
	mux.HandleFunc("/", page(homePage))
	mux.HandleFunc("/other", page(`<html><head><title>Other</title></head><body><p id="o">other</p></body></html>`))
	mux.HandleFunc("/frame", page(`<html><body><p id="inner">inner</p></body></html>`))
	mux.HandleFunc("/dialogs", page(dialogPage))
	mux.HandleFunc("/late", page(latePage))
	mux.HandleFunc("/busy", page(busyPage))
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `<html><head><title>Echo</title></head><body><p id="result">%s q=%s c=%s go=%s</p></body></html>`,
			r.Method, r.FormValue("q"), r.FormValue("c"), r.FormValue("go"))
	})
	mux.HandleFunc("/cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "a", Value: "1", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "secret", Value: "s", Path: "/", HttpOnly: true})
		fmt.Fprint(w, `<html><head><title>Cookie</title></head><body></body></html>`)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
		fmt.Fprint(w, `<html><head><title>Slow</title></head></html>`)
	})
	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func newBrowser(t *testing.T, javascript bool) *Browser {
	t.Helper()
	b, err := New(Options{JavaScript: javascript})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func navigate(t *testing.T, b *Browser, u string) {
	t.Helper()
	if err := b.Navigate(u); err != nil {
		t.Fatalf("Navigate(%q) returned error: %v", u, err)
	}
}

func find(t *testing.T, b *Browser, by, value string) *Element {
	t.Helper()
	found, err := b.Find(nil, by, value, 0)
	if err != nil {
		t.Fatalf("Find(%q, %q) returned error: %v", by, value, err)
	}
	if len(found) == 0 {
		t.Fatalf("Find(%q, %q) found nothing", by, value)
	}
	return found[0]
}

func title(t *testing.T, b *Browser) string {
	t.Helper()
	s, err := b.Title()
	if err != nil {
		t.Fatalf("Title() returned error: %v", err)
	}
	return s
}

func TestNavigate(t *testing.T) {
	s := newServer(t)
	for _, js := range []bool{true, false} {
		t.Run(fmt.Sprintf("javascript=%t", js), func(t *testing.T) {
			b := newBrowser(t, js)
			navigate(t, b, s.URL+"/")
			if got := title(t, b); got != "Home" {
				t.Errorf("Title() = %q, want %q", got, "Home")
			}
			u, err := b.URL()
			if err != nil {
				t.Fatalf("URL() returned error: %v", err)
			}
			if want := s.URL + "/"; u != want {
				t.Errorf("URL() = %q, want %q", u, want)
			}

			if err := b.Click(find(t, b, dom.ByID, "other")); err != nil {
				t.Fatalf("Click() returned error: %v", err)
			}
			if got := title(t, b); got != "Other" {
				t.Errorf("Title() after click = %q, want %q", got, "Other")
			}
			if err := b.Back(); err != nil {
				t.Fatalf("Back() returned error: %v", err)
			}
			if got := title(t, b); got != "Home" {
				t.Errorf("Title() after Back() = %q, want %q", got, "Home")
			}
			if err := b.Forward(); err != nil {
				t.Fatalf("Forward() returned error: %v", err)
			}
			if got := title(t, b); got != "Other" {
				t.Errorf("Title() after Forward() = %q, want %q", got, "Other")
			}
		})
	}
}

func TestNavigateErrors(t *testing.T) {
	s := newServer(t)
	b := newBrowser(t, true)

	for _, u := range []string{"not a url", "http://", "ftp://example.com/"} {
		if err := b.Navigate(u); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Navigate(%q) returned %v, want %v", u, err, ErrInvalidArgument)
		}
	}

	// A host that refuses connections gives an empty page.
	const unreachable = "http://127.0.0.1:1/"
	navigate(t, b, unreachable)
	if got := title(t, b); got != "" {
		t.Errorf("Title() = %q, want empty", got)
	}
	if u, _ := b.URL(); u != unreachable {
		t.Errorf("URL() = %q, want %q", u, unreachable)
	}

	b.SetPageLoadTimeout(50 * time.Millisecond)
	if err := b.Navigate(s.URL + "/slow"); !errors.Is(err, ErrTimeout) {
		t.Errorf("Navigate(/slow) returned %v, want %v", err, ErrTimeout)
	}
}

func TestForms(t *testing.T) {
	s := newServer(t)
	b := newBrowser(t, true)
	navigate(t, b, s.URL+"/")

	q := find(t, b, dom.ByID, "q")
	if err := b.Clear(q); err != nil {
		t.Fatalf("Clear() returned error: %v", err)
	}
	if err := b.SendKeys(q, "hello"); err != nil {
		t.Fatalf("SendKeys() returned error: %v", err)
	}
	if v, _, _ := q.Attribute("value"); v != "hello" {
		t.Errorf("value = %q, want %q", v, "hello")
	}
	if err := b.SendKeys(find(t, b, dom.ByID, "para"), "x"); !errors.Is(err, ErrNotInteractable) {
		t.Errorf("SendKeys(<p>) returned %v, want %v", err, ErrNotInteractable)
	}

	c := find(t, b, dom.ByID, "c")
	if err := b.Click(c); err != nil {
		t.Fatalf("Click(checkbox) returned error: %v", err)
	}
	if on, _ := c.IsSelected(); !on {
		t.Errorf("checkbox IsSelected() = false after click")
	}
	r1, r2 := find(t, b, dom.ByID, "r1"), find(t, b, dom.ByID, "r2")
	if err := b.Click(r2); err != nil {
		t.Fatalf("Click(radio) returned error: %v", err)
	}
	if on, _ := r1.IsSelected(); on {
		t.Errorf("first radio still selected after clicking the second")
	}

	if err := b.SendKeys(q, string(dom.KeyEnter)); err != nil {
		t.Fatalf("SendKeys(Enter) returned error: %v", err)
	}
	if got := title(t, b); got != "Echo" {
		t.Fatalf("Title() after submit = %q, want %q", got, "Echo")
	}
	text, err := find(t, b, dom.ByID, "result").Text()
	if err != nil {
		t.Fatalf("Text() returned error: %v", err)
	}
	if want := "POST q=hello c=on go=Go"; text != want {
		t.Errorf("result = %q, want %q", text, want)
	}

	if _, err := q.Tag(); !errors.Is(err, ErrStaleElement) {
		t.Errorf("Tag() of an element from the previous page returned %v, want %v", err, ErrStaleElement)
	}
	if _, err := b.Element(q.ID); !errors.Is(err, ErrNoSuchElement) && !errors.Is(err, ErrStaleElement) {
		t.Errorf("Element(%q) returned %v, want a stale or unknown reference", q.ID, err)
	}
}

func TestFrames(t *testing.T) {
	s := newServer(t)
	b := newBrowser(t, false)
	navigate(t, b, s.URL+"/")

	for _, id := range []interface{}{"fr", "frn", 0} {
		if err := b.SwitchFrame(id); err != nil {
			t.Fatalf("SwitchFrame(%v) returned error: %v", id, err)
		}
		find(t, b, dom.ByID, "inner")
		if err := b.SwitchParentFrame(); err != nil {
			t.Fatalf("SwitchParentFrame() returned error: %v", err)
		}
		if found, _ := b.Find(nil, dom.ByID, "inner", 0); len(found) != 0 {
			t.Errorf("inner frame content visible from the top document")
		}
	}
	if err := b.SwitchFrame(find(t, b, dom.ByID, "fr")); err != nil {
		t.Fatalf("SwitchFrame(element) returned error: %v", err)
	}
	if err := b.SwitchFrame(nil); err != nil {
		t.Fatalf("SwitchFrame(nil) returned error: %v", err)
	}
	if err := b.SwitchFrame("missing"); !errors.Is(err, ErrNoSuchFrame) {
		t.Errorf("SwitchFrame(missing) returned %v, want %v", err, ErrNoSuchFrame)
	}
}

func TestWindows(t *testing.T) {
	s := newServer(t)
	b := newBrowser(t, true)
	navigate(t, b, s.URL+"/")
	first, err := b.CurrentWindow()
	if err != nil {
		t.Fatalf("CurrentWindow() returned error: %v", err)
	}

	if _, err := b.Execute("window.open('/other', 'w2')", nil); err != nil {
		t.Fatalf("Execute(window.open) returned error: %v", err)
	}
	handles, err := b.WindowHandles()
	if err != nil {
		t.Fatalf("WindowHandles() returned error: %v", err)
	}
	if len(handles) != 2 {
		t.Fatalf("WindowHandles() = %v, want 2 handles", handles)
	}
	if got := title(t, b); got != "Home" {
		t.Errorf("window.open switched windows: Title() = %q", got)
	}
	if err := b.SwitchWindow("w2"); err != nil {
		t.Fatalf("SwitchWindow(w2) returned error: %v", err)
	}
	if got := title(t, b); got != "Other" {
		t.Errorf("Title() in new window = %q, want %q", got, "Other")
	}

	rest, err := b.CloseWindow("")
	if err != nil {
		t.Fatalf("CloseWindow() returned error: %v", err)
	}
	if diff := cmp.Diff([]string{first.Handle}, rest); diff != "" {
		t.Errorf("CloseWindow() returned diff (-want +got):\n%s", diff)
	}
	if _, err := b.Title(); !errors.Is(err, ErrNoSuchWindow) {
		t.Errorf("Title() after closing the current window returned %v, want %v", err, ErrNoSuchWindow)
	}
	if err := b.SwitchWindow(first.Handle); err != nil {
		t.Fatalf("SwitchWindow(%q) returned error: %v", first.Handle, err)
	}

	if err := b.SetWindowSize("", 800, 600); err != nil {
		t.Fatalf("SetWindowSize() returned error: %v", err)
	}
	rect, err := b.WindowRect("")
	if err != nil {
		t.Fatalf("WindowRect() returned error: %v", err)
	}
	if rect.Width != 800 || rect.Height != 600 {
		t.Errorf("WindowRect() = %+v, want 800x600", rect)
	}
}

func TestDialogs(t *testing.T) {
	s := newServer(t)
	b := newBrowser(t, true)
	navigate(t, b, s.URL+"/dialogs")

	if _, err := b.CurrentAlert(); !errors.Is(err, ErrNoSuchAlert) {
		t.Errorf("CurrentAlert() with no dialog returned %v, want %v", err, ErrNoSuchAlert)
	}

	if err := b.Click(find(t, b, dom.ByID, "confirm")); err != nil {
		t.Fatalf("Click(confirm) returned error: %v", err)
	}
	a, err := b.CurrentAlert()
	if err != nil {
		t.Fatalf("CurrentAlert() returned error: %v", err)
	}
	if diff := cmp.Diff(&Alert{Kind: AlertKindConfirm, Text: "sure?"}, a); diff != "" {
		t.Errorf("CurrentAlert() returned diff (-want +got):\n%s", diff)
	}
	if got := title(t, b); got != "true" {
		t.Errorf("confirm() returned %q, want %q", got, "true")
	}
	if err := b.SetAlertText("x"); !errors.Is(err, ErrNotInteractable) {
		t.Errorf("SetAlertText() on a confirm returned %v, want %v", err, ErrNotInteractable)
	}
	if err := b.AnswerAlert(false); err != nil {
		t.Fatalf("AnswerAlert(false) returned error: %v", err)
	}
	if err := b.AnswerAlert(false); !errors.Is(err, ErrNoSuchAlert) {
		t.Errorf("second AnswerAlert() returned %v, want %v", err, ErrNoSuchAlert)
	}
	if err := b.Click(find(t, b, dom.ByID, "confirm")); err != nil {
		t.Fatalf("Click(confirm) returned error: %v", err)
	}
	if got := title(t, b); got != "false" {
		t.Errorf("confirm() after dismiss returned %q, want %q", got, "false")
	}
	if err := b.AnswerAlert(true); err != nil {
		t.Fatalf("AnswerAlert(true) returned error: %v", err)
	}

	if err := b.Click(find(t, b, dom.ByID, "prompt")); err != nil {
		t.Fatalf("Click(prompt) returned error: %v", err)
	}
	if got := title(t, b); got != "anon" {
		t.Errorf("prompt() returned %q, want the default %q", got, "anon")
	}
	if err := b.SetAlertText("bob"); err != nil {
		t.Fatalf("SetAlertText() returned error: %v", err)
	}
	if err := b.AnswerAlert(true); err != nil {
		t.Fatalf("AnswerAlert(true) returned error: %v", err)
	}
	if err := b.Click(find(t, b, dom.ByID, "prompt")); err != nil {
		t.Fatalf("Click(prompt) returned error: %v", err)
	}
	if got := title(t, b); got != "bob" {
		t.Errorf("prompt() returned %q, want %q", got, "bob")
	}
}

func TestCookies(t *testing.T) {
	s := newServer(t)
	b := newBrowser(t, true)

	if err := b.AddCookie(Cookie{Name: "x", Value: "y"}); !errors.Is(err, ErrInvalidCookieDomain) {
		t.Errorf("AddCookie() on about:blank returned %v, want %v", err, ErrInvalidCookieDomain)
	}

	navigate(t, b, s.URL+"/cookie")
	if c, err := b.Cookie("a"); err != nil || c.Value != "1" {
		t.Errorf("Cookie(a) = %+v, %v, want value 1", c, err)
	}
	got, err := b.Execute("return document.cookie", nil)
	if err != nil {
		t.Fatalf("Execute(document.cookie) returned error: %v", err)
	}
	if got != "a=1" {
		t.Errorf("document.cookie = %q, want %q", got, "a=1")
	}

	if err := b.AddCookie(Cookie{Name: "b", Value: "2"}); err != nil {
		t.Fatalf("AddCookie() returned error: %v", err)
	}
	if c, err := b.Cookie("b"); err != nil || c.Path != "/" {
		t.Errorf("Cookie(b) = %+v, %v, want path /", c, err)
	}
	if err := b.AddCookie(Cookie{Name: "c", Value: "3", Domain: "example.com"}); !errors.Is(err, ErrInvalidCookieDomain) {
		t.Errorf("AddCookie(example.com) returned %v, want %v", err, ErrInvalidCookieDomain)
	}

	if err := b.DeleteCookie("a"); err != nil {
		t.Fatalf("DeleteCookie() returned error: %v", err)
	}
	if _, err := b.Cookie("a"); !errors.Is(err, ErrNoSuchCookie) {
		t.Errorf("Cookie(a) after delete returned %v, want %v", err, ErrNoSuchCookie)
	}
	if err := b.DeleteAllCookies(); err != nil {
		t.Fatalf("DeleteAllCookies() returned error: %v", err)
	}
	if cookies, _ := b.Cookies(); len(cookies) != 0 {
		t.Errorf("Cookies() after DeleteAllCookies() = %+v, want none", cookies)
	}
}

func TestExecute(t *testing.T) {
	s := newServer(t)
	b := newBrowser(t, true)
	navigate(t, b, s.URL+"/")

	got, err := b.Execute("return 1 + 1", nil)
	if err != nil {
		t.Fatalf("Execute() returned error: %v", err)
	}
	if got != float64(2) {
		t.Errorf("Execute(1 + 1) = %v (%T), want 2", got, got)
	}

	q := find(t, b, dom.ByID, "q")
	got, err = b.Execute("return arguments[0].value + arguments[1]", []interface{}{q, "!"})
	if err != nil {
		t.Fatalf("Execute() returned error: %v", err)
	}
	if got != "x!" {
		t.Errorf("Execute(element arg) = %v, want %q", got, "x!")
	}

	got, err = b.Execute("return document.getElementById('q')", nil)
	if err != nil {
		t.Fatalf("Execute() returned error: %v", err)
	}
	if e, ok := got.(*Element); !ok || e.ID != q.ID {
		t.Errorf("Execute() returned %v, want the element %s", got, q.ID)
	}

	if _, err := b.Execute("throw new Error('boom')", nil); err == nil {
		t.Errorf("Execute(throw) returned no error")
	}

	got, err = b.ExecuteAsync("var done = arguments[arguments.length - 1]; setTimeout(function() { done('later'); }, 10);", nil)
	if err != nil {
		t.Fatalf("ExecuteAsync() returned error: %v", err)
	}
	if got != "later" {
		t.Errorf("ExecuteAsync() = %v, want %q", got, "later")
	}

	b.SetScriptTimeout(50 * time.Millisecond)
	if _, err := b.ExecuteAsync("", nil); !errors.Is(err, ErrScriptTimeout) {
		t.Errorf("ExecuteAsync() without a callback returned %v, want %v", err, ErrScriptTimeout)
	}
}

func TestExecuteDisabled(t *testing.T) {
	b := newBrowser(t, false)
	if _, err := b.Execute("return 1", nil); !errors.Is(err, ErrJavaScriptDisabled) {
		t.Errorf("Execute() returned %v, want %v", err, ErrJavaScriptDisabled)
	}
}

func TestImplicitWait(t *testing.T) {
	s := newServer(t)
	b := newBrowser(t, true)
	navigate(t, b, s.URL+"/late")

	found, err := b.Find(nil, dom.ByID, "late", 2*time.Second)
	if err != nil {
		t.Fatalf("Find() returned error: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("Find(late) with a wait found %d elements, want 1", len(found))
	}
	if _, err := b.Find(nil, dom.ByCSSSelector, "[[", 0); !errors.Is(err, dom.ErrInvalidSelector) {
		t.Errorf("Find() with a bad selector returned %v, want %v", err, dom.ErrInvalidSelector)
	}
}

func TestActions(t *testing.T) {
	s := newServer(t)
	b := newBrowser(t, true)
	navigate(t, b, s.URL+"/")

	q := find(t, b, dom.ByID, "q")
	if err := b.Clear(q); err != nil {
		t.Fatalf("Clear() returned error: %v", err)
	}
	if err := b.PointerMove(q, 0, 0); err != nil {
		t.Fatalf("PointerMove() returned error: %v", err)
	}
	if err := b.PointerDown(); err != nil {
		t.Fatalf("PointerDown() returned error: %v", err)
	}
	if err := b.PointerUp(); err != nil {
		t.Fatalf("PointerUp() returned error: %v", err)
	}
	for _, k := range []rune{dom.KeyShift, 'a', 'b'} {
		if err := b.KeyDown(k); err != nil {
			t.Fatalf("KeyDown(%q) returned error: %v", k, err)
		}
	}
	if err := b.ReleaseActions(); err != nil {
		t.Fatalf("ReleaseActions() returned error: %v", err)
	}
	if err := b.KeyDown('c'); err != nil {
		t.Fatalf("KeyDown(c) returned error: %v", err)
	}
	if v, _, _ := q.Attribute("value"); v != "ABc" {
		t.Errorf("value = %q, want %q", v, "ABc")
	}
	active, err := b.ActiveElement()
	if err != nil {
		t.Fatalf("ActiveElement() returned error: %v", err)
	}
	if active.ID != q.ID {
		t.Errorf("ActiveElement() = %s, want %s", active.ID, q.ID)
	}
}

func TestURLNormalization(t *testing.T) {
	b := newBrowser(t, false)
	tests := []struct {
		in, want string
	}{
		{"http://127.0.0.1:1", "http://127.0.0.1:1/"},
		{"http://127.0.0.1:1/a b", "http://127.0.0.1:1/a%20b"},
		{"  http://127.0.0.1:1/x?q=1#top ", "http://127.0.0.1:1/x?q=1#top"},
		{"HTTP://127.0.0.1:1/Path", "http://127.0.0.1:1/Path"},
	}
	for _, tc := range tests {
		navigate(t, b, tc.in)
		if got, _ := b.URL(); got != tc.want {
			t.Errorf("URL() after Navigate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestScriptsDuringWindowCommands(t *testing.T) {
	s := newServer(t)
	b := newBrowser(t, true)
	navigate(t, b, s.URL+"/busy")

	for i := 0; i < 200; i++ {
		if err := b.SetWindowSize("", 300+i, 400+i); err != nil {
			t.Fatalf("SetWindowSize() returned error: %v", err)
		}
		if err := b.SetWindowPosition("", i, i); err != nil {
			t.Fatalf("SetWindowPosition() returned error: %v", err)
		}
		u, err := b.URL()
		if err != nil {
			t.Fatalf("URL() returned error: %v", err)
		}
		if !strings.HasPrefix(u, s.URL+"/busy") {
			t.Fatalf("URL() = %q, want the busy page", u)
		}
	}
	got, err := b.Execute("return window.innerWidth;", nil)
	if err != nil {
		t.Fatalf("Execute(innerWidth) returned error: %v", err)
	}
	if got != float64(499) {
		t.Errorf("window.innerWidth = %v, want 499", got)
	}
}

func TestTimerNavigation(t *testing.T) {
	s := newServer(t)
	b := newBrowser(t, true)
	navigate(t, b, s.URL+"/")

	if _, err := b.Execute("setTimeout(function() { location.href = '/other'; }, 50);", nil); err != nil {
		t.Fatalf("Execute(setTimeout) returned error: %v", err)
	}
	found, err := b.Find(nil, dom.ByID, "o", 2*time.Second)
	if err != nil {
		t.Fatalf("Find(o) returned error: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("Find(o) with a wait found %d elements, want 1", len(found))
	}
	if u, _ := b.URL(); u != s.URL+"/other" {
		t.Errorf("URL() = %q, want %q", u, s.URL+"/other")
	}

	if _, err := b.Execute("setTimeout(function() { location.href = '/'; }, 10);", nil); err != nil {
		t.Fatalf("Execute(setTimeout) returned error: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	if u, _ := b.URL(); u != s.URL+"/" {
		t.Errorf("URL() after the timer fired = %q, want %q", u, s.URL+"/")
	}
	if got := title(t, b); got != "Home" {
		t.Errorf("Title() after the timer fired = %q, want %q", got, "Home")
	}
}

func TestCookieDomains(t *testing.T) {
	mustParse := func(raw string) *url.URL {
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatal(err)
		}
		return u
	}
	names := func(cookies []Cookie) []string {
		var out []string
		for _, c := range cookies {
			out = append(out, c.Name+"@"+c.Domain)
		}
		return out
	}

	s := NewCookieStore()
	s.SetCookies(mustParse("http://evil.example.com/"), []*http.Cookie{
		{Name: "super", Value: "x", Domain: "com"},
		{Name: "dotted", Value: "x", Domain: ".com"},
		{Name: "shared", Value: "y", Domain: "example.com"},
		{Name: "own", Value: "z"},
	})
	s.SetCookies(mustParse("http://localhost/"), []*http.Cookie{
		{Name: "local", Value: "l", Domain: "localhost"},
	})
	s.SetCookies(mustParse("http://127.0.0.1/"), []*http.Cookie{
		{Name: "ip", Value: "i", Domain: "0.0.1"},
	})

	tests := []struct {
		url  string
		want []string
	}{
		{"http://bank.com/", nil},
		{"http://www.example.com/", []string{"shared@example.com"}},
		{"http://evil.example.com/", []string{"shared@example.com", "own@evil.example.com"}},
		{"http://localhost/", []string{"local@localhost"}},
		{"http://a.localhost/", nil},
		{"http://127.0.0.1/", nil},
	}
	for _, tc := range tests {
		if diff := cmp.Diff(tc.want, names(s.Visible(mustParse(tc.url)))); diff != "" {
			t.Errorf("Visible(%q) returned diff (-want/+got):\n%s", tc.url, diff)
		}
	}

	if err := s.Add(mustParse("http://evil.example.com/"), Cookie{Name: "super", Value: "x", Domain: "com"}); !errors.Is(err, ErrInvalidCookieDomain) {
		t.Errorf("Add(Domain=com) returned %v, want %v", err, ErrInvalidCookieDomain)
	}
	if err := s.Add(mustParse("http://localhost/"), Cookie{Name: "mine", Value: "m", Domain: "localhost"}); err != nil {
		t.Errorf("Add(Domain=localhost) on localhost returned error: %v", err)
	}
}
