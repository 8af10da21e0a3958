package jsbind

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dop251/goja"
)

var (
	// ErrScript is returned for exceptions and syntax errors raised by page
	// or caller scripts.
	ErrScript = errors.New("javascript error")
	// ErrInterrupted is returned when a running script was interrupted.
	ErrInterrupted = errors.New("script interrupted")
)

func wrapError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Errorf("%w: %v", ErrInterrupted, interrupted.Value())
	}
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return fmt.Errorf("%w: %s", ErrScript, ex.Value().String())
	}
	return fmt.Errorf("%w: %v", ErrScript, err)
}

func (b *Bridge) fail(err error) error {
	err = wrapError(err)
	if errors.Is(err, ErrInterrupted) {
		b.vm.ClearInterrupt()
	}
	return err
}

// RunScript evaluates a page script in the global scope.
func (b *Bridge) RunScript(name, src string) error {
	if _, err := b.vm.RunScript(name, src); err != nil {
		return b.fail(err)
	}
	return nil
}

// Interrupt stops the script currently running in the runtime. It is safe to
// call from any goroutine.
func (b *Bridge) Interrupt(reason interface{}) {
	b.vm.Interrupt(reason)
}

func (b *Bridge) compile(body string) (goja.Callable, error) {
	v, err := b.vm.RunString("(function() {\n" + body + "\n})")
	if err != nil {
		return nil, b.fail(err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("%w: script body is not a function", ErrScript)
	}
	return fn, nil
}

func (b *Bridge) args(args []interface{}) []goja.Value {
	vals := make([]goja.Value, len(args))
	for i, a := range args {
		vals[i] = b.ToValue(a)
	}
	return vals
}

// Call runs body as the body of a function receiving args as its
// arguments and returns the exported result.
func (b *Bridge) Call(body string, args []interface{}) (interface{}, error) {
	fn, err := b.compile(body)
	if err != nil {
		return nil, err
	}
	ret, err := fn(b.vm.GlobalObject(), b.args(args)...)
	if err != nil {
		return nil, b.fail(err)
	}
	return b.Export(ret), nil
}

// CallAsync runs body like Call with a completion callback appended to
// args. done is called at most once: with the value the script passes to the
// callback, or with the error it throws before calling it. done runs on the
// runtime's goroutine and must not block.
func (b *Bridge) CallAsync(body string, args []interface{}, done func(interface{}, error)) {
	var once sync.Once
	finish := func(v interface{}, err error) {
		once.Do(func() { done(v, err) })
	}
	fn, err := b.compile(body)
	if err != nil {
		finish(nil, err)
		return
	}
	callback := b.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		finish(b.Export(call.Argument(0)), nil)
		return goja.Undefined()
	})
	if _, err := fn(b.vm.GlobalObject(), append(b.args(args), callback)...); err != nil {
		finish(nil, b.fail(err))
	}
}
