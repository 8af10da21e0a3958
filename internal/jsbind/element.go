package jsbind

import (
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"golang.org/x/net/html"

	"github.com/wanmail/htmlunit/internal/dom"
)

// wrap returns the script object of n, creating it on first use so that the
// same node always maps to the same object.
func (b *Bridge) wrap(n *html.Node) *goja.Object {
	if obj, ok := b.wrappers[n]; ok {
		return obj
	}
	obj := b.vm.NewObject()
	b.wrappers[n] = obj
	b.nodes[obj] = n

	switch n.Type {
	case html.ElementNode:
		b.defineElement(obj, n)
	case html.TextNode, html.CommentNode:
		nodeType := 3
		if n.Type == html.CommentNode {
			nodeType = 8
		}
		obj.Set("nodeType", nodeType)
		text := func() interface{} { return n.Data }
		setText := func(v goja.Value) { n.Data = v.String() }
		b.accessor(obj, "data", text, setText)
		b.accessor(obj, "nodeValue", text, setText)
		b.accessor(obj, "textContent", text, setText)
		b.defineTree(obj, n)
	default:
		b.defineTree(obj, n)
	}
	return obj
}

// Node returns the node behind a script value, or nil when v is not a
// wrapped node.
func (b *Bridge) Node(v goja.Value) *html.Node {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	return b.nodes[obj]
}

func (b *Bridge) defineTree(obj *goja.Object, n *html.Node) {
	b.accessor(obj, "parentNode", func() interface{} { return n.Parent }, nil)
	b.accessor(obj, "parentElement", func() interface{} {
		if n.Parent != nil && n.Parent.Type == html.ElementNode {
			return n.Parent
		}
		return nil
	}, nil)
	b.accessor(obj, "firstChild", func() interface{} { return n.FirstChild }, nil)
	b.accessor(obj, "lastChild", func() interface{} { return n.LastChild }, nil)
	b.accessor(obj, "nextSibling", func() interface{} { return n.NextSibling }, nil)
	b.accessor(obj, "previousSibling", func() interface{} { return n.PrevSibling }, nil)
	b.accessor(obj, "childNodes", func() interface{} {
		var nodes []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			nodes = append(nodes, c)
		}
		return b.nodeList(nodes)
	}, nil)
}

func (b *Bridge) defineElement(obj *goja.Object, n *html.Node) {
	b.defineTree(obj, n)
	obj.Set("nodeType", 1)
	obj.Set("tagName", strings.ToUpper(n.Data))
	obj.Set("nodeName", strings.ToUpper(n.Data))

	for _, name := range []string{"id", "name", "type", "title", "lang", "src", "action", "method", "target", "rel", "alt"} {
		name := name
		b.accessor(obj, name, func() interface{} {
			if name == "type" && dom.Tag(n) == "input" {
				return dom.InputType(n)
			}
			return dom.AttrOr(n, name, "")
		}, func(v goja.Value) { dom.SetAttr(n, name, v.String()) })
	}
	b.accessor(obj, "className", func() interface{} { return dom.AttrOr(n, "class", "") }, func(v goja.Value) {
		dom.SetAttr(n, "class", v.String())
	})
	b.accessor(obj, "href", func() interface{} {
		href, ok := dom.Attr(n, "href")
		if !ok {
			return ""
		}
		if base := b.host.URL(); base != nil {
			if u, err := base.Parse(strings.TrimSpace(href)); err == nil {
				return u.String()
			}
		}
		return href
	}, func(v goja.Value) { dom.SetAttr(n, "href", v.String()) })

	b.accessor(obj, "value", func() interface{} { return dom.Value(n) }, func(v goja.Value) {
		dom.SetValue(n, v.String())
	})
	b.accessor(obj, "defaultValue", func() interface{} { return dom.AttrOr(n, "value", "") }, nil)
	b.accessor(obj, "checked", func() interface{} { return dom.IsChecked(n) }, func(v goja.Value) {
		switch {
		case !v.ToBoolean():
			dom.SetChecked(n, false)
		case dom.InputType(n) == "radio":
			dom.CheckRadio(n)
		default:
			dom.SetChecked(n, true)
		}
	})
	b.accessor(obj, "selected", func() interface{} { return dom.IsSelected(n) }, func(v goja.Value) {
		dom.SetSelected(n, v.ToBoolean())
	})
	b.accessor(obj, "disabled", func() interface{} { return !dom.IsEnabled(n) }, func(v goja.Value) {
		if v.ToBoolean() {
			dom.SetAttr(n, "disabled", "")
		} else {
			dom.RemoveAttr(n, "disabled")
		}
	})
	b.accessor(obj, "readOnly", func() interface{} { return dom.HasAttr(n, "readonly") }, nil)
	b.accessor(obj, "textContent", func() interface{} { return dom.TextContent(n) }, func(v goja.Value) {
		dom.SetTextContent(n, v.String())
	})
	b.accessor(obj, "innerText", func() interface{} { return dom.Text(n) }, func(v goja.Value) {
		dom.SetTextContent(n, v.String())
	})
	b.accessor(obj, "innerHTML", func() interface{} { return dom.Render(n, false) }, func(v goja.Value) {
		b.setInnerHTML(n, v.String())
	})
	b.accessor(obj, "outerHTML", func() interface{} { return dom.Render(n, true) }, nil)
	b.accessor(obj, "children", func() interface{} { return b.nodeList(dom.Children(n)) }, nil)
	b.accessor(obj, "form", func() interface{} {
		if dom.Tag(n) == "form" {
			return nil
		}
		return dom.Form(n)
	}, nil)
	if dom.Tag(n) == "select" {
		b.accessor(obj, "options", func() interface{} { return b.nodeList(dom.Options(n)) }, nil)
		b.accessor(obj, "selectedIndex", func() interface{} {
			for i, o := range dom.Options(n) {
				if dom.IsSelected(o) {
					return i
				}
			}
			return -1
		}, func(v goja.Value) {
			i := int(v.ToInteger())
			for j, o := range dom.Options(n) {
				dom.SetSelected(o, i == j)
			}
		})
	}
	if dom.Tag(n) == "form" {
		b.accessor(obj, "elements", func() interface{} { return b.nodeList(dom.FormControls(n)) }, nil)
		obj.Set("submit", func(goja.FunctionCall) goja.Value {
			b.host.Submit(n, nil)
			return goja.Undefined()
		})
	}
	style := b.newStyle(n)
	b.accessor(obj, "style", func() interface{} { return style }, nil)

	obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		if v, ok := dom.Attr(n, argString(call, 0)); ok {
			return b.vm.ToValue(v)
		}
		return goja.Null()
	})
	obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		dom.SetAttr(n, argString(call, 0), argString(call, 1))
		return goja.Undefined()
	})
	obj.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		dom.RemoveAttr(n, argString(call, 0))
		return goja.Undefined()
	})
	obj.Set("hasAttribute", func(call goja.FunctionCall) goja.Value {
		return b.vm.ToValue(dom.HasAttr(n, argString(call, 0)))
	})
	obj.Set("matches", func(call goja.FunctionCall) goja.Value {
		ok, err := dom.Matches(n, argString(call, 0))
		if err != nil {
			panic(b.vm.NewGoError(err))
		}
		return b.vm.ToValue(ok)
	})
	obj.Set("closest", func(call goja.FunctionCall) goja.Value {
		for p := n; p != nil && p.Type == html.ElementNode; p = p.Parent {
			ok, err := dom.Matches(p, argString(call, 0))
			if err != nil {
				panic(b.vm.NewGoError(err))
			}
			if ok {
				return b.ToValue(p)
			}
		}
		return goja.Null()
	})
	b.setQueryMethods(obj, n)

	obj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		c := b.argNode(call, 0)
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
		n.AppendChild(c)
		return call.Argument(0)
	})
	obj.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		c := b.argNode(call, 0)
		if c.Parent != n {
			panic(b.vm.NewTypeError("node is not a child"))
		}
		n.RemoveChild(c)
		return call.Argument(0)
	})
	obj.Set("insertBefore", func(call goja.FunctionCall) goja.Value {
		c := b.argNode(call, 0)
		ref := b.Node(call.Argument(1))
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
		if ref == nil {
			n.AppendChild(c)
		} else {
			n.InsertBefore(c, ref)
		}
		return call.Argument(0)
	})
	obj.Set("remove", func(goja.FunctionCall) goja.Value {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return goja.Undefined()
	})

	obj.Set("click", func(goja.FunctionCall) goja.Value {
		if b.Dispatch(n, "click") {
			b.host.Activate(n)
		}
		return goja.Undefined()
	})
	obj.Set("focus", func(goja.FunctionCall) goja.Value {
		b.host.Focus(n)
		return goja.Undefined()
	})
	obj.Set("blur", func(goja.FunctionCall) goja.Value {
		if b.host.ActiveElement() == n {
			b.host.Focus(nil)
		}
		return goja.Undefined()
	})
	b.setEventMethods(obj, n)
}

// newStyle exposes the inline style declarations of n as properties.
func (b *Bridge) newStyle(n *html.Node) *goja.Object {
	style := b.vm.NewObject()
	for _, prop := range []string{"display", "visibility", "color", "backgroundColor", "width", "height"} {
		css := cssName(prop)
		b.accessor(style, prop, func() interface{} { return dom.StyleProperty(n, css) }, func(v goja.Value) {
			setStyleProperty(n, css, v.String())
		})
	}
	style.Set("getPropertyValue", func(call goja.FunctionCall) goja.Value {
		return b.vm.ToValue(dom.StyleProperty(n, argString(call, 0)))
	})
	style.Set("setProperty", func(call goja.FunctionCall) goja.Value {
		setStyleProperty(n, argString(call, 0), argString(call, 1))
		return goja.Undefined()
	})
	return style
}

func cssName(prop string) string {
	var sb strings.Builder
	for _, r := range prop {
		if r >= 'A' && r <= 'Z' {
			sb.WriteByte('-')
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func setStyleProperty(n *html.Node, name, value string) {
	var decls []string
	for _, decl := range strings.Split(dom.AttrOr(n, "style", ""), ";") {
		k, _, ok := strings.Cut(decl, ":")
		if !ok || strings.EqualFold(strings.TrimSpace(k), name) {
			continue
		}
		decls = append(decls, strings.TrimSpace(decl))
	}
	if value != "" {
		decls = append(decls, name+": "+value)
	}
	dom.SetAttr(n, "style", strings.Join(decls, "; "))
}

func (b *Bridge) setInnerHTML(n *html.Node, src string) {
	nodes, err := dom.ParseFragment(n, src)
	if err != nil {
		panic(b.vm.NewGoError(err))
	}
	dom.SetTextContent(n, "")
	for _, c := range nodes {
		n.AppendChild(c)
	}
}

func (b *Bridge) argNode(call goja.FunctionCall, i int) *html.Node {
	n := b.Node(call.Argument(i))
	if n == nil {
		panic(b.vm.NewTypeError("argument " + strconv.Itoa(i) + " is not a node"))
	}
	return n
}
