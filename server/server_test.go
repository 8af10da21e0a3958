package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wanmail/htmlunit"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	s, err := New(opts...)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	hs := httptest.NewServer(s)
	t.Cleanup(func() {
		hs.Close()
		s.Close()
	})
	return s, hs
}

// call sends a command and decodes the "value" of the reply.
func call(t *testing.T, method, url string, body interface{}) (int, interface{}) {
	t.Helper()
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			t.Fatalf("json.Marshal(%v) returned error: %v", body, err)
		}
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("http.NewRequest(%s, %s) returned error: %v", method, url, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s returned error: %v", method, url, err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, htmlunit.JSONType) {
		t.Errorf("%s %s: Content-Type = %q, want JSON", method, url, ct)
	}
	var reply struct {
		Value interface{} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatalf("%s %s: decoding reply: %v", method, url, err)
	}
	return resp.StatusCode, reply.Value
}

func errorKind(v interface{}) string {
	m, _ := v.(map[string]interface{})
	kind, _ := m["error"].(string)
	return kind
}

func newSession(t *testing.T, base string, body interface{}) string {
	t.Helper()
	code, v := call(t, "POST", base+"/session", body)
	if code != http.StatusOK {
		t.Fatalf("POST /session returned %d: %v", code, v)
	}
	id, _ := v.(map[string]interface{})["sessionId"].(string)
	if id == "" {
		t.Fatalf("POST /session returned no session ID: %v", v)
	}
	return id
}

func TestStatus(t *testing.T) {
	_, hs := newTestServer(t, URLPrefix("/wd/hub"))
	code, v := call(t, "GET", hs.URL+"/wd/hub/status", nil)
	if code != http.StatusOK {
		t.Fatalf("GET /status returned %d, want 200", code)
	}
	if ready, _ := v.(map[string]interface{})["ready"].(bool); !ready {
		t.Errorf("status = %v, want ready", v)
	}
}

func TestRoutingErrors(t *testing.T) {
	_, hs := newTestServer(t, URLPrefix("wd/hub/"))
	tests := []struct {
		desc, method, path string
		code               int
		kind               string
	}{
		{"unknown path", "GET", "/wd/hub/no/such/command", http.StatusNotFound, "unknown command"},
		{"path outside the prefix", "GET", "/status", http.StatusNotFound, "unknown command"},
		{"unsupported method", "PUT", "/wd/hub/status", http.StatusMethodNotAllowed, "unknown method"},
		{"unknown session", "GET", "/wd/hub/session/bogus/title", http.StatusNotFound, "invalid session id"},
	}
	for _, tc := range tests {
		code, v := call(t, tc.method, hs.URL+tc.path, nil)
		if code != tc.code || errorKind(v) != tc.kind {
			t.Errorf("%s: %s %s = %d %q, want %d %q", tc.desc, tc.method, tc.path, code, errorKind(v), tc.code, tc.kind)
		}
	}
}

func TestURLPrefixRejectsPatterns(t *testing.T) {
	if _, err := New(URLPrefix("/wd/{hub}")); err == nil {
		t.Fatal("New(URLPrefix(\"/wd/{hub}\")) returned nil error")
	}
}

func TestNewSessionCapabilities(t *testing.T) {
	s, hs := newTestServer(t, JavascriptByDefault(true))

	tests := []struct {
		desc    string
		body    interface{}
		wantJS  bool
		wantErr string
	}{
		{
			desc:   "server default",
			body:   map[string]interface{}{},
			wantJS: true,
		},
		{
			desc: "alwaysMatch wins over firstMatch",
			body: map[string]interface{}{
				"capabilities": map[string]interface{}{
					"alwaysMatch": map[string]interface{}{htmlunit.JavascriptEnabledKey: false},
					"firstMatch":  []interface{}{map[string]interface{}{htmlunit.JavascriptEnabledKey: true}},
				},
			},
			wantJS: false,
		},
		{
			desc: "firstMatch fills gaps",
			body: map[string]interface{}{
				"capabilities": map[string]interface{}{
					"firstMatch": []interface{}{map[string]interface{}{htmlunit.JavascriptEnabledKey: false}},
				},
			},
			wantJS: false,
		},
		{
			desc: "legacy desired capabilities",
			body: map[string]interface{}{
				"desiredCapabilities": map[string]interface{}{htmlunit.JavascriptEnabledKey: false},
			},
			wantJS: false,
		},
		{
			desc: "another browser",
			body: map[string]interface{}{
				"capabilities": map[string]interface{}{
					"alwaysMatch": map[string]interface{}{"browserName": "firefox"},
				},
			},
			wantErr: "session not created",
		},
		{
			desc: "malformed javascriptEnabled",
			body: map[string]interface{}{
				"desiredCapabilities": map[string]interface{}{htmlunit.JavascriptEnabledKey: "yes"},
			},
			wantErr: "invalid argument",
		},
	}
	for _, tc := range tests {
		code, v := call(t, "POST", hs.URL+"/session", tc.body)
		if tc.wantErr != "" {
			if code == http.StatusOK || errorKind(v) != tc.wantErr {
				t.Errorf("%s: POST /session = %d %v, want error %q", tc.desc, code, v, tc.wantErr)
			}
			continue
		}
		if code != http.StatusOK {
			t.Errorf("%s: POST /session returned %d: %v", tc.desc, code, v)
			continue
		}
		caps := v.(map[string]interface{})["capabilities"].(map[string]interface{})
		if got := caps[htmlunit.JavascriptEnabledKey]; got != tc.wantJS {
			t.Errorf("%s: javascriptEnabled = %v, want %t", tc.desc, got, tc.wantJS)
		}
		if got := caps["browserName"]; got != htmlunit.BrowserName {
			t.Errorf("%s: browserName = %v, want %q", tc.desc, got, htmlunit.BrowserName)
		}
	}
	if got, want := s.SessionCount(), 4; got != want {
		t.Errorf("SessionCount() = %d, want %d", got, want)
	}
}

func TestDeleteSession(t *testing.T) {
	s, hs := newTestServer(t)
	id := newSession(t, hs.URL, nil)
	if code, v := call(t, "DELETE", hs.URL+"/session/"+id, nil); code != http.StatusOK {
		t.Fatalf("DELETE /session/%s returned %d: %v", id, code, v)
	}
	if s.SessionCount() != 0 {
		t.Errorf("SessionCount() = %d after delete, want 0", s.SessionCount())
	}
	if code, v := call(t, "GET", hs.URL+"/session/"+id+"/url", nil); code != http.StatusNotFound || errorKind(v) != "invalid session id" {
		t.Errorf("GET /url after delete = %d %v, want invalid session id", code, v)
	}
}

const page = `<html><head><title>Server Page</title></head><body>
<a id="link" href="/next">next</a>
<input id="q" name="q" value="initial">
<iframe id="inner" src="/inner"></iframe>
</body></html>`

const innerPage = `<html><body><p>inner</p></body></html>`

func servePages(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/inner" {
		fmt.Fprint(w, innerPage)
		return
	}
	fmt.Fprint(w, page)
}

func TestElementCommands(t *testing.T) {
	pages := httptest.NewServer(http.HandlerFunc(servePages))
	defer pages.Close()
	_, hs := newTestServer(t)
	base := hs.URL + "/session/" + newSession(t, hs.URL, nil)

	if code, v := call(t, "POST", base+"/url", map[string]string{"url": pages.URL}); code != http.StatusOK {
		t.Fatalf("POST /url returned %d: %v", code, v)
	}
	if _, v := call(t, "GET", base+"/title", nil); v != "Server Page" {
		t.Errorf("GET /title = %v, want %q", v, "Server Page")
	}

	_, v := call(t, "POST", base+"/element", map[string]string{"using": htmlunit.ByCSSSelector, "value": "#q"})
	id, _ := v.(map[string]interface{})[htmlunit.ElementKey].(string)
	if id == "" {
		t.Fatalf("POST /element returned %v, want an element reference", v)
	}
	el := base + "/element/" + id

	if code, v := call(t, "GET", el+"/attribute/no-such-attribute", nil); code != http.StatusOK || v != nil {
		t.Errorf("GET missing attribute = %d %v, want 200 null", code, v)
	}
	if code, v := call(t, "POST", el+"/value", map[string]interface{}{"value": []string{"!", "?"}}); code != http.StatusOK {
		t.Fatalf("POST /value returned %d: %v", code, v)
	}
	if _, v := call(t, "GET", el+"/property/value", nil); v != "initial!?" {
		t.Errorf("value property = %v, want %q", v, "initial!?")
	}
	_, v = call(t, "GET", el+"/rect", nil)
	want := map[string]interface{}{"x": 0.0, "y": 0.0, "width": 1.0, "height": 1.0}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Errorf("GET /rect returned diff (-want/+got):\n%s", diff)
	}

	_, v = call(t, "POST", base+"/execute/sync", map[string]interface{}{
		"script": "return arguments[0].name + arguments[1];",
		"args":   []interface{}{map[string]string{htmlunit.ElementKey: id}, 1},
	})
	if v != "q1" {
		t.Errorf("script with an element argument = %v, want %q", v, "q1")
	}

	if code, v := call(t, "POST", base+"/elements", map[string]string{"using": htmlunit.ByCSSSelector, "value": "blink"}); code != http.StatusOK || v == nil || len(v.([]interface{})) != 0 {
		t.Errorf("POST /elements with no match = %d %v, want an empty list", code, v)
	}
	if code, v := call(t, "POST", base+"/element", map[string]string{"using": htmlunit.ByID, "value": "missing"}); code != http.StatusNotFound || errorKind(v) != "no such element" {
		t.Errorf("POST /element for a missing id = %d %v, want no such element", code, v)
	}
	if code, v := call(t, "GET", base+"/element/bogus/text", nil); code != http.StatusNotFound {
		t.Errorf("GET text of an unknown element = %d %v, want 404", code, v)
	}

	_, v = call(t, "POST", base+"/element", map[string]string{"using": htmlunit.ByID, "value": "inner"})
	if code, v := call(t, "POST", base+"/frame", map[string]interface{}{"id": v}); code != http.StatusOK {
		t.Fatalf("POST /frame with an element returned %d: %v", code, v)
	}
	if _, v := call(t, "GET", base+"/source", nil); !strings.Contains(fmt.Sprint(v), "inner") {
		t.Errorf("frame source = %v, want the inner document", v)
	}
	if code, v := call(t, "POST", base+"/frame", map[string]interface{}{"id": -1}); code != http.StatusBadRequest {
		t.Errorf("POST /frame with index -1 = %d %v, want 400", code, v)
	}
}

func TestCookieAndAlertErrors(t *testing.T) {
	pages := httptest.NewServer(http.HandlerFunc(servePages))
	defer pages.Close()
	_, hs := newTestServer(t)
	base := hs.URL + "/session/" + newSession(t, hs.URL, nil)
	call(t, "POST", base+"/url", map[string]string{"url": pages.URL})

	if code, v := call(t, "GET", base+"/cookie/absent", nil); code != http.StatusNotFound || errorKind(v) != "no such cookie" {
		t.Errorf("GET missing cookie = %d %v, want no such cookie", code, v)
	}
	if code, v := call(t, "POST", base+"/cookie", map[string]interface{}{}); code != http.StatusBadRequest {
		t.Errorf("POST /cookie without a cookie = %d %v, want 400", code, v)
	}
	if code, v := call(t, "GET", base+"/cookie", nil); code != http.StatusOK || v == nil {
		t.Errorf("GET /cookie = %d %v, want an empty list", code, v)
	}
	if code, v := call(t, "GET", base+"/alert/text", nil); code != http.StatusNotFound || errorKind(v) != "no such alert" {
		t.Errorf("GET /alert/text with no dialog = %d %v, want no such alert", code, v)
	}
	if code, v := call(t, "GET", base+"/screenshot", nil); code != http.StatusInternalServerError || errorKind(v) != "unsupported operation" {
		t.Errorf("GET /screenshot = %d %v, want unsupported operation", code, v)
	}
	if code, v := call(t, "POST", base+"/log", map[string]string{"type": "browser"}); code != http.StatusOK || v == nil {
		t.Errorf("POST /log = %d %v, want an empty list", code, v)
	}
}
