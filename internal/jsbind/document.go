package jsbind

import (
	"strings"

	"github.com/dop251/goja"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wanmail/htmlunit/internal/dom"
)

func (b *Bridge) newDocument() *goja.Object {
	d := b.vm.NewObject()
	d.Set("nodeType", 9)
	d.Set("nodeName", "#document")

	b.accessor(d, "title", func() interface{} { return dom.Title(b.doc) }, func(v goja.Value) {
		dom.SetTitle(b.doc, v.String())
	})
	b.accessor(d, "cookie", func() interface{} { return b.host.Cookie() }, func(v goja.Value) {
		b.host.SetCookie(v.String())
	})
	b.accessor(d, "readyState", func() interface{} { return b.readyState }, nil)
	b.accessor(d, "URL", func() interface{} {
		if u := b.host.URL(); u != nil {
			return u.String()
		}
		return ""
	}, nil)
	b.accessor(d, "documentElement", func() interface{} { return dom.First(b.doc, "html") }, nil)
	b.accessor(d, "head", func() interface{} { return dom.First(b.doc, "head") }, nil)
	b.accessor(d, "body", func() interface{} { return dom.First(b.doc, "body") }, nil)
	b.accessor(d, "forms", func() interface{} { return b.nodeList(dom.Elements(b.doc, isTag("form"))) }, nil)
	b.accessor(d, "links", func() interface{} {
		return b.nodeList(dom.Elements(b.doc, func(n *html.Node) bool {
			return dom.IsElement(n, "a", "area") && dom.HasAttr(n, "href")
		}))
	}, nil)
	b.accessor(d, "activeElement", func() interface{} {
		if n := b.host.ActiveElement(); n != nil {
			return n
		}
		return dom.First(b.doc, "body")
	}, nil)

	d.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		id := argString(call, 0)
		for _, n := range dom.Elements(b.doc, nil) {
			if dom.AttrOr(n, "id", "") == id {
				return b.ToValue(n)
			}
		}
		return goja.Null()
	})
	d.Set("getElementsByName", func(call goja.FunctionCall) goja.Value {
		name := argString(call, 0)
		return b.nodeList(dom.Elements(b.doc, func(n *html.Node) bool {
			return dom.AttrOr(n, "name", "") == name
		}))
	})
	b.setQueryMethods(d, b.doc)

	d.Set("createElement", func(call goja.FunctionCall) goja.Value {
		tag := strings.ToLower(argString(call, 0))
		return b.ToValue(&html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))})
	})
	d.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		return b.ToValue(&html.Node{Type: html.TextNode, Data: argString(call, 0)})
	})
	b.setEventMethods(d, b.doc)
	return d
}

// setQueryMethods installs the lookup methods shared by document and
// elements, scoped to the descendants of root.
func (b *Bridge) setQueryMethods(obj *goja.Object, root *html.Node) {
	obj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		nodes, err := dom.Find(root, dom.ByTagName, argString(call, 0))
		if err != nil {
			return b.nodeList(nil)
		}
		return b.nodeList(nodes)
	})
	obj.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		classes := strings.Fields(argString(call, 0))
		return b.nodeList(dom.Elements(root, func(n *html.Node) bool {
			have := strings.Fields(dom.AttrOr(n, "class", ""))
			for _, c := range classes {
				if !contains(have, c) {
					return false
				}
			}
			return len(classes) > 0
		}))
	})
	obj.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		nodes := b.query(root, argString(call, 0))
		if len(nodes) == 0 {
			return goja.Null()
		}
		return b.ToValue(nodes[0])
	})
	obj.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return b.nodeList(b.query(root, argString(call, 0)))
	})
}

func (b *Bridge) query(root *html.Node, sel string) []*html.Node {
	nodes, err := dom.Find(root, dom.ByCSSSelector, sel)
	if err != nil {
		panic(b.vm.NewGoError(err))
	}
	return nodes
}

func (b *Bridge) nodeList(nodes []*html.Node) goja.Value {
	vals := make([]interface{}, len(nodes))
	for i, n := range nodes {
		vals[i] = b.ToValue(n)
	}
	return b.vm.NewArray(vals...)
}

func isTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return dom.Tag(n) == tag }
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
