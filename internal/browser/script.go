package browser

import (
	"fmt"
	"time"

	"golang.org/x/net/html"
)

// Execute runs script as the body of a function in the current browsing
// context. Elements among args are passed as their nodes, and nodes in the
// result come back as elements.
func (b *Browser) Execute(script string, args []interface{}) (interface{}, error) {
	d, in, err := b.scriptArgs(args)
	if err != nil {
		return nil, err
	}
	var out interface{}
	err = d.within(b.opts.ScriptTimeout, ErrScriptTimeout, func() error {
		var err error
		out, err = d.bridge.Call(script, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	result := b.scriptResult(d, out)
	return result, b.settle()
}

// ExecuteAsync is Execute for scripts that report their result through the
// callback passed as their last argument. The script timeout bounds the
// wait for the callback.
func (b *Browser) ExecuteAsync(script string, args []interface{}) (interface{}, error) {
	d, in, err := b.scriptArgs(args)
	if err != nil {
		return nil, err
	}
	type result struct {
		v   interface{}
		err error
	}
	done := make(chan result, 1)
	timer := time.NewTimer(b.opts.ScriptTimeout)
	defer timer.Stop()

	err = d.within(b.opts.ScriptTimeout, ErrScriptTimeout, func() error {
		d.bridge.CallAsync(script, in, func(v interface{}, err error) {
			done <- result{v, err}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return b.scriptResult(d, r.v), b.settle()
	case <-timer.C:
		return nil, fmt.Errorf("%w: no result within %v", ErrScriptTimeout, b.opts.ScriptTimeout)
	}
}

func (b *Browser) scriptArgs(args []interface{}) (*Document, []interface{}, error) {
	if !b.opts.JavaScript {
		return nil, nil, ErrJavaScriptDisabled
	}
	d, err := b.document()
	if err != nil {
		return nil, nil, err
	}
	in := make([]interface{}, len(args))
	for i, a := range args {
		v, err := b.scriptArg(a)
		if err != nil {
			return nil, nil, err
		}
		in[i] = v
	}
	return d, in, nil
}

func (b *Browser) scriptArg(a interface{}) (interface{}, error) {
	switch v := a.(type) {
	case *Element:
		if err := v.Do(func() error { return nil }); err != nil {
			return nil, err
		}
		return v.Node, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, x := range v {
			c, err := b.scriptArg(x)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, x := range v {
			c, err := b.scriptArg(x)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	}
	return a, nil
}

// scriptResult replaces the nodes in a script result with element
// references.
func (b *Browser) scriptResult(d *Document, v interface{}) interface{} {
	switch v := v.(type) {
	case *html.Node:
		return b.ref(d, v)
	case []interface{}:
		for i, x := range v {
			v[i] = b.scriptResult(d, x)
		}
	case map[string]interface{}:
		for k, x := range v {
			v[k] = b.scriptResult(d, x)
		}
	}
	return v
}
