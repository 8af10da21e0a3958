package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// booleanAttrs are reported as "true" when present and as absent otherwise.
var booleanAttrs = map[string]bool{
	"async":           true,
	"autofocus":       true,
	"autoplay":        true,
	"checked":         true,
	"compact":         true,
	"controls":        true,
	"declare":         true,
	"defaultchecked":  true,
	"defaultselected": true,
	"defer":           true,
	"disabled":        true,
	"formnovalidate":  true,
	"hidden":          true,
	"ismap":           true,
	"loop":            true,
	"multiple":        true,
	"muted":           true,
	"nohref":          true,
	"noresize":        true,
	"noshade":         true,
	"novalidate":      true,
	"nowrap":          true,
	"open":            true,
	"readonly":        true,
	"required":        true,
	"reversed":        true,
	"selected":        true,
}

// IsBooleanAttr reports whether name is an HTML boolean attribute.
func IsBooleanAttr(name string) bool {
	return booleanAttrs[strings.ToLower(name)]
}

// InputType returns the lower-cased type of an input, defaulting to "text".
func InputType(n *html.Node) string {
	t := strings.ToLower(strings.TrimSpace(AttrOr(n, "type", "")))
	if t == "" {
		return "text"
	}
	return t
}

// IsCheckable reports whether n is a checkbox or radio input.
func IsCheckable(n *html.Node) bool {
	if Tag(n) != "input" {
		return false
	}
	t := InputType(n)
	return t == "checkbox" || t == "radio"
}

// IsTextField reports whether n accepts typed text.
func IsTextField(n *html.Node) bool {
	switch Tag(n) {
	case "textarea":
		return true
	case "input":
		switch InputType(n) {
		case "checkbox", "radio", "submit", "button", "image", "reset", "file", "hidden":
			return false
		}
		return true
	}
	return HasAttr(n, "contenteditable")
}

// Value returns the current value of a form control.
func Value(n *html.Node) string {
	switch Tag(n) {
	case "textarea":
		return TextContent(n)
	case "select":
		for _, o := range Options(n) {
			if IsSelected(o) {
				return Value(o)
			}
		}
		if opts := Options(n); len(opts) > 0 {
			return Value(opts[0])
		}
		return ""
	case "option":
		if v, ok := Attr(n, "value"); ok {
			return v
		}
		return strings.TrimSpace(TextContent(n))
	case "input":
		if v, ok := Attr(n, "value"); ok {
			return v
		}
		if IsCheckable(n) {
			return "on"
		}
		return ""
	}
	if HasAttr(n, "contenteditable") {
		return TextContent(n)
	}
	return AttrOr(n, "value", "")
}

// SetValue sets the current value of a form control.
func SetValue(n *html.Node, v string) {
	switch Tag(n) {
	case "textarea":
		SetTextContent(n, v)
	case "select":
		for _, o := range Options(n) {
			SetSelected(o, Value(o) == v)
		}
	default:
		if HasAttr(n, "contenteditable") {
			SetTextContent(n, v)
			return
		}
		SetAttr(n, "value", v)
	}
}

// Options returns the option elements of a select, in document order.
func Options(sel *html.Node) []*html.Node {
	return Elements(sel, func(n *html.Node) bool { return Tag(n) == "option" })
}

// IsChecked reports the checked state of a checkbox or radio.
func IsChecked(n *html.Node) bool {
	return HasAttr(n, "checked")
}

// SetChecked sets the checked state of a checkbox or radio.
func SetChecked(n *html.Node, on bool) {
	if on {
		SetAttr(n, "checked", "checked")
	} else {
		RemoveAttr(n, "checked")
	}
}

// IsSelected reports the selection state of options, checkboxes and radios.
func IsSelected(n *html.Node) bool {
	switch Tag(n) {
	case "option":
		return HasAttr(n, "selected")
	case "input":
		return IsCheckable(n) && IsChecked(n)
	}
	return false
}

// SetSelected sets the selection state of an option. A single select keeps
// at most one selected option.
func SetSelected(opt *html.Node, on bool) {
	if !on {
		RemoveAttr(opt, "selected")
		return
	}
	if sel := Ancestor(opt, "select"); sel != nil && !HasAttr(sel, "multiple") {
		for _, o := range Options(sel) {
			RemoveAttr(o, "selected")
		}
	}
	SetAttr(opt, "selected", "selected")
}

// CheckRadio checks a radio and unchecks the others of its group.
func CheckRadio(n *html.Node) {
	name := AttrOr(n, "name", "")
	if name != "" {
		scope := Ancestor(n, "form")
		if scope == nil {
			scope = Root(n)
		}
		for _, r := range Elements(scope, func(c *html.Node) bool {
			return Tag(c) == "input" && InputType(c) == "radio" && AttrOr(c, "name", "") == name
		}) {
			SetChecked(r, false)
		}
	}
	SetChecked(n, true)
}

// IsEnabled reports whether a control is not disabled, directly or through a
// disabled fieldset or optgroup.
func IsEnabled(n *html.Node) bool {
	if HasAttr(n, "disabled") {
		return false
	}
	switch Tag(n) {
	case "input", "select", "textarea", "button", "option", "optgroup":
		for p := n.Parent; p != nil; p = p.Parent {
			switch Tag(p) {
			case "fieldset", "optgroup", "select":
				if HasAttr(p, "disabled") {
					return false
				}
			}
		}
	}
	return true
}

// IsDisplayed reports whether an element would be rendered, judged from the
// hidden attribute, hidden inputs, non-rendered tags and inline display or
// visibility styles of the element and its ancestors.
func IsDisplayed(n *html.Node) bool {
	if Tag(n) == "input" && InputType(n) == "hidden" {
		return false
	}
	if Tag(n) == "option" {
		if sel := Ancestor(n, "select"); sel != nil {
			return IsDisplayed(sel)
		}
	}
	for p := n; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		switch Tag(p) {
		case "head", "script", "style", "noscript", "template", "title", "meta", "link":
			return false
		}
		if HasAttr(p, "hidden") {
			return false
		}
		if strings.EqualFold(StyleProperty(p, "display"), "none") {
			return false
		}
		if p == n {
			switch strings.ToLower(StyleProperty(p, "visibility")) {
			case "hidden", "collapse":
				return false
			}
		}
	}
	return true
}

// StyleProperty returns a declaration from the inline style attribute.
func StyleProperty(n *html.Node, name string) string {
	style, ok := Attr(n, "style")
	if !ok {
		return ""
	}
	name = strings.ToLower(strings.TrimSpace(name))
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.ToLower(strings.TrimSpace(k)) == name {
			v = strings.TrimSpace(v)
			v = strings.TrimSpace(strings.TrimSuffix(v, "!important"))
			return v
		}
	}
	return ""
}

// Attribute implements the WebDriver attribute read: the current value for
// "value", "true" or absent for boolean attributes, and the raw attribute
// otherwise. The second result is false when the value is null.
func Attribute(n *html.Node, name string) (string, bool) {
	lname := strings.ToLower(name)
	switch {
	case lname == "value" && (IsElement(n, "input", "textarea", "select", "option")):
		return Value(n), true
	case lname == "selected" || lname == "checked":
		if IsElement(n, "input", "option") {
			if IsSelected(n) {
				return "true", true
			}
			return "", false
		}
	case lname == "disabled":
		if !IsEnabled(n) {
			return "true", true
		}
		return "", false
	case lname == "class" || lname == "classname":
		return Attr(n, "class")
	case lname == "index" && Tag(n) == "option":
		if sel := Ancestor(n, "select"); sel != nil {
			for i, o := range Options(sel) {
				if o == n {
					return strconv.Itoa(i), true
				}
			}
		}
	case lname == "type" && Tag(n) == "input":
		return InputType(n), true
	}
	if IsBooleanAttr(lname) {
		if HasAttr(n, lname) {
			return "true", true
		}
		return "", false
	}
	return Attr(n, lname)
}

// Property returns the DOM property of an element for the common reflected
// properties. The second result is false when the property is undefined.
func Property(n *html.Node, name string) (string, bool) {
	switch name {
	case "value":
		return Value(n), true
	case "checked":
		return strconv.FormatBool(IsChecked(n)), true
	case "selected":
		return strconv.FormatBool(IsSelected(n)), true
	case "disabled":
		return strconv.FormatBool(!IsEnabled(n)), true
	case "tagName":
		return strings.ToUpper(Tag(n)), true
	case "textContent":
		return TextContent(n), true
	case "innerHTML":
		return Render(n, false), true
	case "outerHTML":
		return Render(n, true), true
	case "className":
		return AttrOr(n, "class", ""), true
	case "id", "name", "href", "src", "type", "title", "lang":
		return Attr(n, name)
	}
	return "", false
}
