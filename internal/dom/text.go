package dom

import (
	"strings"

	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"tr": true, "ul": true, "option": true, "select": true,
}

// Text returns the rendered text of an element: hidden subtrees are
// skipped, block elements and <br> break lines, and runs of white space
// collapse to one space.
func Text(n *html.Node) string {
	if !IsDisplayed(n) {
		return ""
	}
	var lines []string
	var cur strings.Builder
	flush := func() {
		line := strings.Join(strings.Fields(cur.String()), " ")
		if line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			cur.WriteString(c.Data)
			return
		case html.ElementNode:
			if c != n && !selfDisplayed(c) {
				return
			}
			t := Tag(c)
			if t == "br" {
				flush()
				return
			}
			if blockTags[t] {
				flush()
			}
			for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
				walk(ch)
			}
			if blockTags[t] {
				flush()
			}
			return
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	flush()
	return strings.Join(lines, "\n")
}

// selfDisplayed checks the element's own rendering flags only; ancestors
// were already checked by the caller walking down.
func selfDisplayed(n *html.Node) bool {
	switch Tag(n) {
	case "head", "script", "style", "noscript", "template", "title", "meta", "link":
		return false
	case "input":
		if InputType(n) == "hidden" {
			return false
		}
	}
	if HasAttr(n, "hidden") {
		return false
	}
	return !strings.EqualFold(StyleProperty(n, "display"), "none")
}
