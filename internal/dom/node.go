// Package dom holds the node-level helpers the page engine builds on:
// attribute access, form control state, text extraction, locators, form
// serialization and key typing. Functions here never touch script state.
package dom

import (
	"bytes"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Tag returns the lower-cased tag name of an element, or "" for other nodes.
func Tag(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

// IsElement reports whether n is an element with one of the given tags. With
// no tags it reports whether n is an element at all.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	t := Tag(n)
	for _, want := range tags {
		if t == want {
			return true
		}
	}
	return false
}

// Attr returns the value of the named attribute and whether it is present.
func Attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	name = strings.ToLower(name)
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.ToLower(a.Key) == name {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or def when it is absent.
func AttrOr(n *html.Node, name, def string) string {
	if v, ok := Attr(n, name); ok {
		return v
	}
	return def
}

// HasAttr reports whether the attribute is present.
func HasAttr(n *html.Node, name string) bool {
	_, ok := Attr(n, name)
	return ok
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, name, val string) {
	name = strings.ToLower(name)
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.ToLower(a.Key) == name {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: val})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, name string) {
	name = strings.ToLower(name)
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.ToLower(a.Key) == name {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}

// Root walks up to the topmost ancestor of n.
func Root(n *html.Node) *html.Node {
	for n != nil && n.Parent != nil {
		n = n.Parent
	}
	return n
}

// Contains reports whether n is root or one of its descendants.
func Contains(root, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

// Ancestor returns the closest ancestor of n (excluding n) with the given tag.
func Ancestor(n *html.Node, tag string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if Tag(p) == tag {
			return p
		}
	}
	return nil
}

// Walk visits root and its descendants in document order. Returning false
// from fn skips the children of the visited node.
func Walk(root *html.Node, fn func(*html.Node) bool) {
	if root == nil {
		return
	}
	if !fn(root) {
		return
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// Elements returns every element below root in document order, root
// excluded.
func Elements(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, func(n *html.Node) bool {
			if n.Type == html.ElementNode && (match == nil || match(n)) {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}

// First returns the first element below root matching tag, or nil.
func First(root *html.Node, tag string) *html.Node {
	els := Elements(root, func(n *html.Node) bool { return Tag(n) == tag })
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

// Children returns the element children of n.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Title returns the trimmed text of the document's first title element.
func Title(doc *html.Node) string {
	t := First(doc, "title")
	if t == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(t))
}

// SetTitle replaces the title text, creating the element under head when
// the document has none.
func SetTitle(doc *html.Node, title string) {
	t := First(doc, "title")
	if t == nil {
		head := First(doc, "head")
		if head == nil {
			return
		}
		t = &html.Node{Type: html.ElementNode, Data: "title", DataAtom: atom.Title}
		head.AppendChild(t)
	}
	SetTextContent(t, title)
}

// TextContent returns the concatenated text of all descendants.
func TextContent(n *html.Node) string {
	return htmlquery.InnerText(n)
}

// SetTextContent replaces the children of n with a single text node.
func SetTextContent(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// Render serializes n, including n itself when outer is true.
func Render(n *html.Node, outer bool) string {
	if outer || n.Type == html.DocumentNode {
		var buf bytes.Buffer
		if err := html.Render(&buf, n); err != nil {
			return ""
		}
		return buf.String()
	}
	return htmlquery.OutputHTML(n, false)
}

// Parse parses a full document.
func Parse(src string) (*html.Node, error) {
	return html.Parse(strings.NewReader(src))
}

// ParseFragment parses markup in the context of parent and returns the
// resulting nodes, detached.
func ParseFragment(parent *html.Node, src string) ([]*html.Node, error) {
	ctx := parent
	if ctx == nil || ctx.Type != html.ElementNode {
		ctx = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	}
	return html.ParseFragment(strings.NewReader(src), ctx)
}

// Blank returns an empty document, the content of about:blank.
func Blank() *html.Node {
	doc, _ := Parse("<html><head></head><body></body></html>")
	return doc
}
