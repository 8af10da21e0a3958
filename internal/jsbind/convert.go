package jsbind

import (
	"strconv"

	"github.com/dop251/goja"
	"golang.org/x/net/html"
)

// ToValue converts a Go value into a script value. Nodes become their
// wrapper objects, slices become arrays and string-keyed maps become plain
// objects.
func (b *Bridge) ToValue(v interface{}) goja.Value {
	switch x := v.(type) {
	case nil:
		return goja.Null()
	case goja.Value:
		return x
	case *html.Node:
		if x == nil {
			return goja.Null()
		}
		return b.wrap(x)
	case []*html.Node:
		return b.nodeList(x)
	case []interface{}:
		items := make([]interface{}, len(x))
		for i, e := range x {
			items[i] = b.ToValue(e)
		}
		return b.vm.NewArray(items...)
	case map[string]interface{}:
		obj := b.vm.NewObject()
		for k, e := range x {
			obj.Set(k, b.ToValue(e))
		}
		return obj
	}
	return b.vm.ToValue(v)
}

// Export converts a script value into plain Go values: nil, bool, float64,
// string, *html.Node, []interface{} and map[string]interface{}. Functions
// and cyclic references export as nil.
func (b *Bridge) Export(v goja.Value) interface{} {
	return b.export(v, make(map[*goja.Object]bool))
}

func (b *Bridge) export(v goja.Value, seen map[*goja.Object]bool) interface{} {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		switch x := v.Export().(type) {
		case int64:
			return float64(x)
		case int:
			return float64(x)
		default:
			return x
		}
	}
	if n, ok := b.nodes[obj]; ok {
		return n
	}
	if seen[obj] {
		return nil
	}
	if _, ok := goja.AssertFunction(obj); ok {
		return nil
	}
	seen[obj] = true
	defer delete(seen, obj)

	switch obj.ClassName() {
	case "Array":
		length := int(obj.Get("length").ToInteger())
		out := make([]interface{}, length)
		for i := range out {
			out[i] = b.export(obj.Get(strconv.Itoa(i)), seen)
		}
		return out
	case "Error", "Date", "RegExp":
		return obj.String()
	}
	out := make(map[string]interface{})
	for _, k := range obj.Keys() {
		out[k] = b.export(obj.Get(k), seen)
	}
	return out
}
