package jsbind

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/wanmail/htmlunit/internal/dom"
)

type fakeHost struct {
	url       *url.URL
	alerts    []string
	navigated []string
	activated []*html.Node
	submitted []*html.Node
	opened    []string
	console   []string
	cookie    string
	focus     *html.Node
	confirm   bool
}

func (h *fakeHost) URL() *url.URL                     { return h.url }
func (h *fakeHost) UserAgent() string                 { return "test-agent" }
func (h *fakeHost) Navigate(href string)              { h.navigated = append(h.navigated, href) }
func (h *fakeHost) Reload()                           { h.navigated = append(h.navigated, "reload") }
func (h *fakeHost) Activate(n *html.Node)             { h.activated = append(h.activated, n) }
func (h *fakeHost) Submit(form, submitter *html.Node) { h.submitted = append(h.submitted, form) }
func (h *fakeHost) Focus(n *html.Node)                { h.focus = n }
func (h *fakeHost) ActiveElement() *html.Node         { return h.focus }
func (h *fakeHost) Open(href, name string)            { h.opened = append(h.opened, href) }
func (h *fakeHost) Close()                            {}
func (h *fakeHost) Alert(msg string)                  { h.alerts = append(h.alerts, msg) }
func (h *fakeHost) Confirm(msg string) bool           { return h.confirm }
func (h *fakeHost) Cookie() string                    { return h.cookie }
func (h *fakeHost) SetCookie(s string)                { h.cookie = s }
func (h *fakeHost) Viewport() (int, int)              { return 1280, 1024 }
func (h *fakeHost) Prompt(msg, def string) (string, bool) {
	return "answer", true
}
func (h *fakeHost) Console(level, msg string) {
	h.console = append(h.console, level+": "+msg)
}

const page = `<html><head><title>Hello, world!</title></head>
<body onload="document.title = 'loaded'">
<form id="form_id" action="/index.html">
	<input type="text" name="text" value="default text">
	<input type="checkbox" name="checkbox" id="chk">
	<a id="stop" href="/x" onclick="return false">stop</a>
	<a id="link" href="/y" onclick="alert('An alert')">go</a>
</form>
</body></html>`

func newBridge(t *testing.T) (*Bridge, *fakeHost, *html.Node) {
	t.Helper()
	doc, err := dom.Parse(page)
	if err != nil {
		t.Fatalf("dom.Parse() returned error: %v", err)
	}
	u, _ := url.Parse("http://example.com/form.html")
	host := &fakeHost{url: u}
	return New(goja.New(), doc, host), host, doc
}

func TestCall(t *testing.T) {
	b, _, _ := newBridge(t)
	for _, tc := range []struct {
		script string
		args   []interface{}
		want   interface{}
	}{
		{"return 123;", nil, float64(123)},
		{"return 1.5;", nil, 1.5},
		{"return 'x' + arguments[0];", []interface{}{"y"}, "xy"},
		{"return arguments[0] + arguments[1];", []interface{}{float64(1), float64(2)}, float64(3)},
		{"return true;", nil, true},
		{"return null;", nil, nil},
		{"return;", nil, nil},
		{"return [1, 'a', [false]];", nil, []interface{}{float64(1), "a", []interface{}{false}}},
		{"return {a: 1, b: 'c'};", nil, map[string]interface{}{"a": float64(1), "b": "c"}},
		{"return document.title;", nil, "Hello, world!"},
		{"return arguments[0].length;", []interface{}{[]interface{}{"a", "b"}}, float64(2)},
	} {
		got, err := b.Call(tc.script, tc.args)
		if err != nil {
			t.Fatalf("Call(%q) returned error: %v", tc.script, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Call(%q) diff (-want/+got):\n%s", tc.script, diff)
		}
	}

	got, err := b.Call("return document.getElementById('chk');", nil)
	if err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}
	n, ok := got.(*html.Node)
	if !ok || dom.AttrOr(n, "id", "") != "chk" {
		t.Fatalf("Call() = %#v, want the #chk node", got)
	}
	same, err := b.Call("return arguments[0] === document.getElementById('chk');", []interface{}{n})
	if err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}
	if same != true {
		t.Errorf("node argument is not identical to the looked up element")
	}
}

func TestCallErrors(t *testing.T) {
	b, _, _ := newBridge(t)
	for _, script := range []string{
		"throw new Error('boom');",
		"return undefinedFunction();",
		"return (;",
	} {
		if _, err := b.Call(script, nil); !errors.Is(err, ErrScript) {
			t.Errorf("Call(%q) returned error %v, want %v", script, err, ErrScript)
		}
	}
}

func TestCallAsync(t *testing.T) {
	b, _, _ := newBridge(t)
	var got interface{}
	var calls int
	b.CallAsync("var done = arguments[arguments.length - 1]; done(123); done(456);", nil, func(v interface{}, err error) {
		if err != nil {
			t.Errorf("CallAsync() returned error: %v", err)
		}
		got = v
		calls++
	})
	if calls != 1 || got != float64(123) {
		t.Fatalf("CallAsync() completed %d times with %v, want once with 123", calls, got)
	}

	calls = 0
	b.CallAsync("throw 'bad';", nil, func(v interface{}, err error) {
		calls++
		if !errors.Is(err, ErrScript) {
			t.Errorf("CallAsync() returned error %v, want %v", err, ErrScript)
		}
	})
	if calls != 1 {
		t.Errorf("CallAsync() with a throwing script completed %d times, want 1", calls)
	}
}

func TestElementProperties(t *testing.T) {
	b, host, doc := newBridge(t)
	script := `
var text = document.getElementsByName('text')[0];
text.value = text.value + ' changed';
var box = document.getElementById('chk');
box.checked = true;
document.title = 'Changed';
document.cookie = 'a=b';
return [text.value, box.checked, document.forms.length, box.tagName, text.form.id];`
	got, err := b.Call(script, nil)
	if err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}
	want := []interface{}{"default text changed", true, float64(1), "INPUT", "form_id"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Call() diff (-want/+got):\n%s", diff)
	}
	if title := dom.Title(doc); title != "Changed" {
		t.Errorf("title = %q, want %q", title, "Changed")
	}
	if host.cookie != "a=b" {
		t.Errorf("host cookie = %q, want %q", host.cookie, "a=b")
	}
	if n := dom.First(doc, "input"); dom.Value(n) != "default text changed" {
		t.Errorf("input value = %q, want %q", dom.Value(n), "default text changed")
	}
}

func TestClickDispatch(t *testing.T) {
	b, host, doc := newBridge(t)
	stop, _ := dom.Find(doc, dom.ByID, "stop")
	if b.Dispatch(stop[0], "click") {
		t.Errorf("Dispatch() on a handler returning false allowed the default action")
	}
	link, _ := dom.Find(doc, dom.ByID, "link")
	if !b.Dispatch(link[0], "click") {
		t.Errorf("Dispatch() on #link cancelled the default action")
	}
	if diff := cmp.Diff([]string{"An alert"}, host.alerts); diff != "" {
		t.Errorf("alerts diff (-want/+got):\n%s", diff)
	}

	if _, err := b.Call("document.getElementById('chk').click();", nil); err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}
	if len(host.activated) != 1 || dom.AttrOr(host.activated[0], "id", "") != "chk" {
		t.Errorf("element.click() activated %v, want #chk", host.activated)
	}
}

func TestListeners(t *testing.T) {
	b, host, _ := newBridge(t)
	script := `
var seen = [];
document.addEventListener('click', function(e) { seen.push('document:' + e.target.id); });
var box = document.getElementById('chk');
box.addEventListener('click', function(e) { seen.push('box'); e.preventDefault(); });
box.click();
return seen;`
	got, err := b.Call(script, nil)
	if err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}
	if diff := cmp.Diff([]interface{}{"box", "document:chk"}, got); diff != "" {
		t.Errorf("listener order diff (-want/+got):\n%s", diff)
	}
	if len(host.activated) != 0 {
		t.Errorf("preventDefault() did not cancel activation")
	}
}

func TestFireLoad(t *testing.T) {
	b, _, doc := newBridge(t)
	b.FireLoad()
	if title := dom.Title(doc); title != "loaded" {
		t.Errorf("title after load = %q, want %q", title, "loaded")
	}
	state, err := b.Call("return document.readyState;", nil)
	if err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}
	if state != "complete" {
		t.Errorf("document.readyState = %v, want complete", state)
	}
}

func TestWindow(t *testing.T) {
	b, host, _ := newBridge(t)
	if err := b.RunScript("test.js", `
console.log('hello', 1);
console.error('bad');
window.open('/other', 'name');
location.href = '/next';
var answer = prompt('q');
var ok = confirm('sure?');`); err != nil {
		t.Fatalf("RunScript() returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"INFO: hello 1", "SEVERE: bad"}, host.console); diff != "" {
		t.Errorf("console diff (-want/+got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/other"}, host.opened); diff != "" {
		t.Errorf("opened diff (-want/+got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/next"}, host.navigated); diff != "" {
		t.Errorf("navigated diff (-want/+got):\n%s", diff)
	}
	got, err := b.Call("return [answer, ok, location.pathname, innerWidth];", nil)
	if err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}
	if diff := cmp.Diff([]interface{}{"answer", false, "/form.html", float64(1280)}, got); diff != "" {
		t.Errorf("window state diff (-want/+got):\n%s", diff)
	}
}

func TestInnerHTML(t *testing.T) {
	b, _, doc := newBridge(t)
	if _, err := b.Call(`document.body.innerHTML = '<p id="p">new <b>text</b></p>';`, nil); err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}
	p, err := dom.Find(doc, dom.ByID, "p")
	if err != nil || len(p) != 1 {
		t.Fatalf("Find(#p) = %v, %v; want one node", p, err)
	}
	if got := strings.TrimSpace(dom.Text(p[0])); got != "new text" {
		t.Errorf("Text(#p) = %q, want %q", got, "new text")
	}
}
