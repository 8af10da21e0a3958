package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Locator strategies, spelled as on the WebDriver wire.
const (
	ByID              = "id"
	ByXPATH           = "xpath"
	ByLinkText        = "link text"
	ByPartialLinkText = "partial link text"
	ByName            = "name"
	ByTagName         = "tag name"
	ByClassName       = "class name"
	ByCSSSelector     = "css selector"
)

var (
	// ErrInvalidSelector is returned for selectors that do not parse.
	ErrInvalidSelector = errors.New("invalid selector")
	// ErrUnknownStrategy is returned for an unsupported locator strategy.
	ErrUnknownStrategy = errors.New("unknown locator strategy")
)

// Find evaluates a locator below root and returns the matching elements in
// document order. root itself never matches.
func Find(root *html.Node, by, value string) ([]*html.Node, error) {
	switch by {
	case ByID:
		return Elements(root, func(n *html.Node) bool { return AttrOr(n, "id", "\x00") == value }), nil
	case ByName:
		return Elements(root, func(n *html.Node) bool { return AttrOr(n, "name", "\x00") == value }), nil
	case ByTagName:
		tag := strings.ToLower(strings.TrimSpace(value))
		if tag == "" {
			return nil, fmt.Errorf("%w: empty tag name", ErrInvalidSelector)
		}
		return Elements(root, func(n *html.Node) bool { return tag == "*" || Tag(n) == tag }), nil
	case ByClassName:
		class := strings.TrimSpace(value)
		if class == "" || strings.ContainsAny(class, " \t\n") {
			return nil, fmt.Errorf("%w: compound class names are not permitted: %q", ErrInvalidSelector, value)
		}
		return Elements(root, func(n *html.Node) bool {
			for _, c := range strings.Fields(AttrOr(n, "class", "")) {
				if c == class {
					return true
				}
			}
			return false
		}), nil
	case ByLinkText, ByPartialLinkText:
		want := strings.TrimSpace(value)
		return Elements(root, func(n *html.Node) bool {
			if Tag(n) != "a" {
				return false
			}
			text := strings.TrimSpace(Text(n))
			if by == ByLinkText {
				return text == want
			}
			return strings.Contains(text, want)
		}), nil
	case ByCSSSelector:
		return findCSS(root, value)
	case ByXPATH:
		return findXPath(root, value)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, by)
}

func findCSS(root *html.Node, sel string) ([]*html.Node, error) {
	if _, err := cascadia.ParseGroup(sel); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSelector, sel, err)
	}
	return goquery.NewDocumentFromNode(root).Find(sel).Nodes, nil
}

func findXPath(root *html.Node, expr string) ([]*html.Node, error) {
	nodes, err := htmlquery.QueryAll(root, expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSelector, expr, err)
	}
	seen := make(map[*html.Node]bool, len(nodes))
	out := make([]*html.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Type != html.ElementNode || n == root || seen[n] || !Contains(root, n) {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}

// Matches reports whether n matches a CSS selector.
func Matches(n *html.Node, sel string) (bool, error) {
	m, err := cascadia.ParseGroup(sel)
	if err != nil {
		return false, fmt.Errorf("%w: %q: %v", ErrInvalidSelector, sel, err)
	}
	return m.Match(n), nil
}
