package dom

import (
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Submission describes the request a form submission produces.
type Submission struct {
	Method      string
	URL         *url.URL
	Body        string
	ContentType string
	Target      string
}

// Form returns the form owning n: n itself, the form named by its form
// attribute, or its closest form ancestor.
func Form(n *html.Node) *html.Node {
	if Tag(n) == "form" {
		return n
	}
	if id, ok := Attr(n, "form"); ok && id != "" {
		for _, f := range Elements(Root(n), func(c *html.Node) bool { return Tag(c) == "form" }) {
			if AttrOr(f, "id", "") == id {
				return f
			}
		}
	}
	return Ancestor(n, "form")
}

// IsSubmitter reports whether clicking n submits its form.
func IsSubmitter(n *html.Node) bool {
	switch Tag(n) {
	case "button":
		t := strings.ToLower(AttrOr(n, "type", "submit"))
		return t == "submit" || t == ""
	case "input":
		t := InputType(n)
		return t == "submit" || t == "image"
	}
	return false
}

// FormControls returns the listed controls of a form in tree order.
func FormControls(form *html.Node) []*html.Node {
	id := AttrOr(form, "id", "")
	return Elements(Root(form), func(n *html.Node) bool {
		if !IsElement(n, "input", "select", "textarea", "button") {
			return false
		}
		if v, ok := Attr(n, "form"); ok && v != "" {
			return v == id
		}
		return Contains(form, n)
	})
}

// Serialize builds the name/value pairs of a form's successful controls.
// The submitter, when given, contributes its own name and value.
func Serialize(form, submitter *html.Node) url.Values {
	data := url.Values{}
	for _, c := range FormControls(form) {
		name := AttrOr(c, "name", "")
		if name == "" || !IsEnabled(c) {
			continue
		}
		switch Tag(c) {
		case "input":
			switch InputType(c) {
			case "checkbox", "radio":
				if IsChecked(c) {
					data.Add(name, Value(c))
				}
			case "submit", "image", "button", "reset", "file":
				if c == submitter {
					data.Add(name, Value(c))
				}
			default:
				data.Add(name, Value(c))
			}
		case "button":
			if c == submitter {
				data.Add(name, Value(c))
			}
		case "textarea":
			data.Add(name, Value(c))
		case "select":
			for _, o := range Options(c) {
				if IsSelected(o) {
					data.Add(name, Value(o))
				}
			}
		}
	}
	return data
}

// BuildSubmission resolves the action of form against base and encodes the
// form data for its method.
func BuildSubmission(form, submitter *html.Node, base *url.URL) (*Submission, error) {
	method := strings.ToUpper(strings.TrimSpace(AttrOr(form, "method", "get")))
	action := AttrOr(form, "action", "")
	target := AttrOr(form, "target", "")
	if submitter != nil {
		if v, ok := Attr(submitter, "formaction"); ok {
			action = v
		}
		if v, ok := Attr(submitter, "formmethod"); ok {
			method = strings.ToUpper(v)
		}
		if v, ok := Attr(submitter, "formtarget"); ok {
			target = v
		}
	}
	if method != http.MethodPost {
		method = http.MethodGet
	}

	u := base
	if strings.TrimSpace(action) != "" {
		ref, err := url.Parse(strings.TrimSpace(action))
		if err != nil {
			return nil, err
		}
		u = base.ResolveReference(ref)
	}
	u = cloneURL(u)
	u.Fragment = ""

	data := Serialize(form, submitter)
	s := &Submission{Method: method, URL: u, Target: target}
	if method == http.MethodPost {
		s.Body = data.Encode()
		s.ContentType = "application/x-www-form-urlencoded"
	} else {
		u.RawQuery = data.Encode()
	}
	return s, nil
}

func cloneURL(u *url.URL) *url.URL {
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}
