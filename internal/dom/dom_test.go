package dom

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

const formPage = `<html>
<head><title>  Form page </title></head>
<body>
<form id="form_id" name="form_name" method="post" action="/index.html">
	<input type="text" name="text" value="default text"/>
	<input type="checkbox" name="checkbox" id="check"/>
	<div id="div" class="a b">inside <span style="display:none">hidden</span><br>line</div>
	<input type="submit" name="go" value="Go"/>
	<select name="s">
		<option value="one">One</option>
		<option id="two" value="two">Two</option>
	</select>
</form>
<a href="/other">other page</a>
<a href="/search">search results</a>
</body>
</html>`

func parse(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() returned error: %v", err)
	}
	return doc
}

func mustFind(t *testing.T, root *html.Node, by, value string) *html.Node {
	t.Helper()
	nodes, err := Find(root, by, value)
	if err != nil {
		t.Fatalf("Find(%q, %q) returned error: %v", by, value, err)
	}
	if len(nodes) == 0 {
		t.Fatalf("Find(%q, %q) returned no nodes", by, value)
	}
	return nodes[0]
}

func TestFind(t *testing.T) {
	doc := parse(t, formPage)
	for _, tc := range []struct {
		by, value string
		want      int
		tag       string
	}{
		{ByTagName, "input", 3, "input"},
		{ByTagName, "FORM", 1, "form"},
		{ByCSSSelector, "#form_id input", 3, "input"},
		{ByCSSSelector, "select > option", 2, "option"},
		{ByXPATH, "//form", 1, "form"},
		{ByXPATH, "//input[@type='checkbox']", 1, "input"},
		{ByName, "form_name", 1, "form"},
		{ByID, "div", 1, "div"},
		{ByClassName, "b", 1, "div"},
		{ByLinkText, "other page", 1, "a"},
		{ByPartialLinkText, "search", 1, "a"},
		{ByID, "missing", 0, ""},
	} {
		t.Run(tc.by+"/"+tc.value, func(t *testing.T) {
			nodes, err := Find(doc, tc.by, tc.value)
			if err != nil {
				t.Fatalf("Find(%q, %q) returned error: %v", tc.by, tc.value, err)
			}
			if len(nodes) != tc.want {
				t.Fatalf("len(Find(%q, %q)) = %d, want %d", tc.by, tc.value, len(nodes), tc.want)
			}
			for _, n := range nodes {
				if got := Tag(n); got != tc.tag {
					t.Errorf("Find(%q, %q) matched <%s>, want <%s>", tc.by, tc.value, got, tc.tag)
				}
			}
		})
	}
}

func TestFindScopedToDescendants(t *testing.T) {
	doc := parse(t, formPage)
	form := mustFind(t, doc, ByID, "form_id")

	for _, tc := range []struct{ by, value string }{
		{ByTagName, "input"},
		{ByCSSSelector, "input"},
		{ByXPATH, "./input"},
	} {
		nodes, err := Find(form, tc.by, tc.value)
		if err != nil {
			t.Fatalf("Find(form, %q, %q) returned error: %v", tc.by, tc.value, err)
		}
		if len(nodes) != 3 {
			t.Errorf("len(Find(form, %q, %q)) = %d, want 3", tc.by, tc.value, len(nodes))
		}
	}

	// The form itself is not its own descendant.
	if nodes, _ := Find(form, ByTagName, "form"); len(nodes) != 0 {
		t.Errorf("Find(form, tag name, form) = %d nodes, want 0", len(nodes))
	}
	// Absolute paths are filtered to the subtree.
	if nodes, _ := Find(form, ByXPATH, "//a"); len(nodes) != 0 {
		t.Errorf("Find(form, xpath, //a) = %d nodes, want 0", len(nodes))
	}
}

func TestFindDocumentOrder(t *testing.T) {
	doc := parse(t, `<p id="1"></p><div><p id="2"></p></div><p id="3"></p>`)
	nodes, err := Find(doc, ByTagName, "p")
	if err != nil {
		t.Fatalf("Find() returned error: %v", err)
	}
	var ids []string
	for _, n := range nodes {
		ids = append(ids, AttrOr(n, "id", ""))
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, ids); diff != "" {
		t.Fatalf("Find() order diff (-want/+got):\n%s", diff)
	}
}

func TestFindErrors(t *testing.T) {
	doc := parse(t, formPage)
	for _, tc := range []struct {
		by, value string
		want      error
	}{
		{ByCSSSelector, "input[", ErrInvalidSelector},
		{ByXPATH, "//input[", ErrInvalidSelector},
		{ByClassName, "a b", ErrInvalidSelector},
		{"no such strategy", "x", ErrUnknownStrategy},
	} {
		if _, err := Find(doc, tc.by, tc.value); !errors.Is(err, tc.want) {
			t.Errorf("Find(%q, %q) returned error %v, want %v", tc.by, tc.value, err, tc.want)
		}
	}
}

func TestAttribute(t *testing.T) {
	doc := parse(t, formPage)
	text := mustFind(t, doc, ByName, "text")
	check := mustFind(t, doc, ByName, "checkbox")

	if v, ok := Attribute(text, "value"); !ok || v != "default text" {
		t.Errorf(`Attribute(text, "value") = %q, %t; want "default text", true`, v, ok)
	}
	if _, ok := Attribute(check, "selected"); ok {
		t.Errorf(`Attribute(checkbox, "selected") is set before clicking`)
	}
	SetChecked(check, true)
	if v, ok := Attribute(check, "selected"); !ok || v != "true" {
		t.Errorf(`Attribute(checkbox, "selected") = %q, %t; want "true", true`, v, ok)
	}
	if _, ok := Attribute(check, "no-such-attribute"); ok {
		t.Errorf(`Attribute(checkbox, "no-such-attribute") reported a value`)
	}
	if v, ok := Attribute(mustFind(t, doc, ByID, "two"), "index"); !ok || v != "1" {
		t.Errorf(`Attribute(option, "index") = %q, %t; want "1", true`, v, ok)
	}
}

func TestSelectOptions(t *testing.T) {
	doc := parse(t, formPage)
	sel := mustFind(t, doc, ByName, "s")
	if got := Value(sel); got != "one" {
		t.Errorf("Value(select) = %q, want %q", got, "one")
	}
	SetSelected(mustFind(t, doc, ByID, "two"), true)
	if got := Value(sel); got != "two" {
		t.Errorf("Value(select) after selecting = %q, want %q", got, "two")
	}
	selected := 0
	for _, o := range Options(sel) {
		if IsSelected(o) {
			selected++
		}
	}
	if selected != 1 {
		t.Errorf("single select has %d selected options, want 1", selected)
	}
}

func TestText(t *testing.T) {
	doc := parse(t, formPage)
	if got, want := Text(mustFind(t, doc, ByID, "div")), "inside\nline"; got != want {
		t.Errorf("Text(div) = %q, want %q", got, want)
	}
	if got, want := Title(doc), "Form page"; got != want {
		t.Errorf("Title() = %q, want %q", got, want)
	}
	SetTitle(doc, "Changed")
	if got := Title(doc); got != "Changed" {
		t.Errorf("Title() after SetTitle = %q, want %q", got, "Changed")
	}
}

func TestIsDisplayed(t *testing.T) {
	doc := parse(t, `<div id="a">a</div><div hidden><p id="b">b</p></div>
<span id="c" style="visibility: hidden">c</span><input id="d" type="hidden">`)
	for id, want := range map[string]bool{"a": true, "b": false, "c": false, "d": false} {
		if got := IsDisplayed(mustFind(t, doc, ByID, id)); got != want {
			t.Errorf("IsDisplayed(#%s) = %t, want %t", id, got, want)
		}
	}
}

func TestBuildSubmission(t *testing.T) {
	doc := parse(t, formPage)
	base, _ := url.Parse("http://example.com/form.html")
	form := Form(mustFind(t, doc, ByID, "div"))
	if form == nil || AttrOr(form, "id", "") != "form_id" {
		t.Fatalf("Form(div) = %v, want #form_id", form)
	}
	SetChecked(mustFind(t, doc, ByName, "checkbox"), true)

	s, err := BuildSubmission(form, mustFind(t, doc, ByName, "go"), base)
	if err != nil {
		t.Fatalf("BuildSubmission() returned error: %v", err)
	}
	if got, want := s.URL.String(), "http://example.com/index.html"; got != want {
		t.Errorf("BuildSubmission().URL = %q, want %q", got, want)
	}
	s.URL = nil
	want := &Submission{
		Method:      "POST",
		Body:        "checkbox=on&go=Go&s=one&text=default+text",
		ContentType: "application/x-www-form-urlencoded",
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("BuildSubmission() diff (-want/+got):\n%s", diff)
	}
}

func TestBuildSubmissionGet(t *testing.T) {
	doc := parse(t, `<form action="/search?old=1"><input name="q" value="go lang"></form>`)
	base, _ := url.Parse("http://example.com/")
	s, err := BuildSubmission(First(doc, "form"), nil, base)
	if err != nil {
		t.Fatalf("BuildSubmission() returned error: %v", err)
	}
	if got, want := s.URL.String(), "http://example.com/search?q=go+lang"; got != want {
		t.Errorf("BuildSubmission().URL = %q, want %q", got, want)
	}
	if s.Method != "GET" || s.Body != "" {
		t.Errorf("BuildSubmission() = %s with body %q, want GET without body", s.Method, s.Body)
	}
}

func TestKeyboardShift(t *testing.T) {
	var k Keyboard
	value := "default text"
	k.Down(KeyShift)
	for _, r := range "changed 1" {
		value = ApplyEdit(value, k.Down(r))
		k.Up(r)
	}
	k.Up(KeyShift)
	value = ApplyEdit(value, k.Down('x'))
	if want := "default textCHANGED !x"; value != want {
		t.Fatalf("typed value = %q, want %q", value, want)
	}
}

func TestKeyboardSequence(t *testing.T) {
	var k Keyboard
	value := "ab"
	seq := string(KeyShift) + "cd" + string(KeyShift) + "e" + string(KeyBackspace) + "f" + string(KeyEnter)
	var enter bool
	k.Sequence(seq, func(e Edit) {
		if e.Kind == EditEnter {
			enter = true
		}
		value = ApplyEdit(value, e)
	})
	if want := "abCDf"; value != want {
		t.Errorf("typed value = %q, want %q", value, want)
	}
	if !enter {
		t.Errorf("Sequence() did not report the enter key")
	}
	if k.Shift {
		t.Errorf("Shift is still held after toggling it twice")
	}
}
