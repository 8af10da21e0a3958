package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wanmail/htmlunit"
	"github.com/wanmail/htmlunit/log"
)

func (s *Server) sessionRoutes(r chi.Router) {
	r.Get("/", getCapabilities)
	r.Delete("/", s.deleteSession)
	r.Post("/timeouts", setTimeouts)

	r.Post("/url", navigate)
	r.Get("/url", stringValue((*htmlunit.Driver).CurrentURL))
	r.Post("/back", void((*htmlunit.Driver).Back))
	r.Post("/forward", void((*htmlunit.Driver).Forward))
	r.Post("/refresh", void((*htmlunit.Driver).Refresh))
	r.Get("/title", stringValue((*htmlunit.Driver).Title))
	r.Get("/source", stringValue((*htmlunit.Driver).PageSource))

	r.Get("/window", stringValue((*htmlunit.Driver).CurrentWindowHandle))
	r.Post("/window", switchWindow)
	r.Delete("/window", closeWindow)
	r.Get("/window/handles", windowHandles)
	r.Get("/window/rect", windowRect)
	r.Post("/window/rect", setWindowRect)
	r.Post("/window/maximize", maximizeWindow)
	r.Post("/frame", switchFrame)
	r.Post("/frame/parent", void((*htmlunit.Driver).SwitchParentFrame))

	r.Post("/element", findElement)
	r.Post("/elements", findElements)
	r.Get("/element/active", activeElement)
	r.Route("/element/{elementID}", func(r chi.Router) {
		r.Use(withElement)
		r.Post("/element", findElement)
		r.Post("/elements", findElements)
		r.Get("/selected", elementBool(htmlunit.WebElement.IsSelected))
		r.Get("/enabled", elementBool(htmlunit.WebElement.IsEnabled))
		r.Get("/displayed", elementBool(htmlunit.WebElement.IsDisplayed))
		r.Get("/attribute/{name}", elementNamed(htmlunit.WebElement.GetAttribute))
		r.Get("/property/{name}", elementNamed(htmlunit.WebElement.GetProperty))
		r.Get("/css/{name}", elementNamed(htmlunit.WebElement.CSSProperty))
		r.Get("/text", elementString(htmlunit.WebElement.Text))
		r.Get("/name", elementString(htmlunit.WebElement.TagName))
		r.Get("/rect", elementRect)
		r.Get("/screenshot", elementScreenshot)
		r.Post("/click", elementVoid(htmlunit.WebElement.Click))
		r.Post("/clear", elementVoid(htmlunit.WebElement.Clear))
		r.Post("/submit", elementVoid(htmlunit.WebElement.Submit))
		r.Post("/value", sendKeys)
	})

	r.Post("/execute/sync", execute(false))
	r.Post("/execute/async", execute(true))

	r.Get("/cookie", getCookies)
	r.Post("/cookie", addCookie)
	r.Delete("/cookie", void((*htmlunit.Driver).DeleteAllCookies))
	r.Get("/cookie/{name}", getCookie)
	r.Delete("/cookie/{name}", deleteCookie)

	r.Post("/actions", performActions)
	r.Delete("/actions", void((*htmlunit.Driver).ReleaseActions))

	r.Post("/alert/dismiss", void((*htmlunit.Driver).DismissAlert))
	r.Post("/alert/accept", void((*htmlunit.Driver).AcceptAlert))
	r.Get("/alert/text", stringValue((*htmlunit.Driver).AlertText))
	r.Post("/alert/text", setAlertText)

	r.Get("/screenshot", screenshot)
	r.Post("/log", getLog)
}

// void adapts a driver command without arguments or result.
func void(fn func(*htmlunit.Driver) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(driverFrom(r)); err != nil {
			writeError(w, err)
			return
		}
		writeValue(w, nil)
	}
}

// stringValue adapts a driver query returning a string.
func stringValue(fn func(*htmlunit.Driver) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := fn(driverFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeValue(w, v)
	}
}

func getCapabilities(w http.ResponseWriter, r *http.Request) {
	caps, err := driverFrom(r).Capabilities()
	if err != nil {
		writeError(w, err)
		return
	}
	writeValue(w, caps)
}

func setTimeouts(w http.ResponseWriter, r *http.Request) {
	var req map[string]interface{}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	d := driverFrom(r)
	setters := map[string]func(time.Duration) error{
		"script":   d.SetAsyncScriptTimeout,
		"implicit": d.SetImplicitWaitTimeout,
		"pageLoad": d.SetPageLoadTimeout,
	}
	for key, v := range req {
		set, ok := setters[key]
		if !ok {
			continue
		}
		ms, ok := v.(float64)
		if !ok || ms < 0 {
			writeError(w, newError(htmlunit.ErrInvalidArgument, "timeout %q must be a non-negative number, got %v", key, v))
			return
		}
		if err := set(time.Duration(ms) * time.Millisecond); err != nil {
			writeError(w, err)
			return
		}
	}
	writeValue(w, nil)
}

func navigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := driverFrom(r).Get(req.URL); err != nil {
		writeError(w, err)
		return
	}
	writeValue(w, nil)
}

func switchWindow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Handle string `json:"handle"`
		Name   string `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	name := req.Handle
	if name == "" {
		name = req.Name
	}
	if err := driverFrom(r).SwitchWindow(name); err != nil {
		writeError(w, err)
		return
	}
	writeValue(w, nil)
}

// closeWindow closes the current window and replies with the handles
// still open.
func closeWindow(w http.ResponseWriter, r *http.Request) {
	d := driverFrom(r)
	if err := d.Close(); err != nil {
		writeError(w, err)
		return
	}
	handles, err := d.WindowHandles()
	if err != nil {
		writeError(w, err)
		return
	}
	writeValue(w, handles)
}

func windowHandles(w http.ResponseWriter, r *http.Request) {
	handles, err := driverFrom(r).WindowHandles()
	if err != nil {
		writeError(w, err)
		return
	}
	writeValue(w, handles)
}

type rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func currentRect(d *htmlunit.Driver) (*rect, error) {
	pos, err := d.WindowPosition("")
	if err != nil {
		return nil, err
	}
	size, err := d.WindowSize("")
	if err != nil {
		return nil, err
	}
	return &rect{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}, nil
}

func windowRect(w http.ResponseWriter, r *http.Request) {
	rc, err := currentRect(driverFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeValue(w, rc)
}

func setWindowRect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X      *int `json:"x"`
		Y      *int `json:"y"`
		Width  *int `json:"width"`
		Height *int `json:"height"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	d := driverFrom(r)
	if req.X != nil && req.Y != nil {
		if err := d.SetWindowPosition("", *req.X, *req.Y); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Width != nil && req.Height != nil {
		if err := d.ResizeWindow("", *req.Width, *req.Height); err != nil {
			writeError(w, err)
			return
		}
	}
	windowRect(w, r)
}

func maximizeWindow(w http.ResponseWriter, r *http.Request) {
	if err := driverFrom(r).MaximizeWindow(""); err != nil {
		writeError(w, err)
		return
	}
	windowRect(w, r)
}

func switchFrame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID interface{} `json:"id"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	d := driverFrom(r)
	var frame interface{}
	switch id := req.ID.(type) {
	case nil:
	case float64:
		if id < 0 || id != float64(int(id)) {
			writeError(w, newError(htmlunit.ErrInvalidArgument, "frame index %v is not a non-negative integer", id))
			return
		}
		frame = int(id)
	case string:
		frame = id
	case map[string]interface{}:
		el, err := referencedElement(d, id)
		if err != nil {
			writeError(w, err)
			return
		}
		frame = el
	default:
		writeError(w, newError(htmlunit.ErrInvalidArgument, "invalid frame id %v", req.ID))
		return
	}
	if err := d.SwitchFrame(frame); err != nil {
		writeError(w, err)
		return
	}
	writeValue(w, nil)
}

// referencedElement resolves a W3C or legacy element reference.
func referencedElement(d *htmlunit.Driver, ref map[string]interface{}) (htmlunit.WebElement, error) {
	id, ok := ref[htmlunit.ElementKey].(string)
	if !ok {
		id, ok = ref["ELEMENT"].(string)
	}
	if !ok {
		return nil, newError(htmlunit.ErrInvalidArgument, "not an element reference: %v", ref)
	}
	return d.ElementByID(id)
}

const elementKey ctxKey = 1

func withElement(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		el, err := driverFrom(r).ElementByID(chi.URLParam(r, "elementID"))
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), elementKey, el)))
	})
}

func elementFrom(r *http.Request) htmlunit.WebElement {
	el, _ := r.Context().Value(elementKey).(htmlunit.WebElement)
	return el
}

type findRequest struct {
	Using string `json:"using"`
	Value string `json:"value"`
}

func decodeFind(r *http.Request) (*findRequest, error) {
	req := new(findRequest)
	if err := decode(r, req); err != nil {
		return nil, err
	}
	if req.Using == "" {
		return nil, newError(htmlunit.ErrInvalidArgument, "missing locator strategy")
	}
	return req, nil
}

// findElement searches the document, or the element of the URL when the
// route has one.
func findElement(w http.ResponseWriter, r *http.Request) {
	req, err := decodeFind(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var el htmlunit.WebElement
	if parent := elementFrom(r); parent != nil {
		el, err = parent.FindElement(req.Using, req.Value)
	} else {
		el, err = driverFrom(r).FindElement(req.Using, req.Value)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeValue(w, el)
}

func findElements(w http.ResponseWriter, r *http.Request) {
	req, err := decodeFind(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var els []htmlunit.WebElement
	if parent := elementFrom(r); parent != nil {
		els, err = parent.FindElements(req.Using, req.Value)
	} else {
		els, err = driverFrom(r).FindElements(req.Using, req.Value)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if els == nil {
		els = []htmlunit.WebElement{}
	}
	writeValue(w, els)
}

func activeElement(w http.ResponseWriter, r *http.Request) {
	el, err := driverFrom(r).ActiveElement()
	if err != nil {
		writeError(w, err)
		return
	}
	writeValue(w, el)
}

func elementVoid(fn func(htmlunit.WebElement) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(elementFrom(r)); err != nil {
			writeError(w, err)
			return
		}
		writeValue(w, nil)
	}
}

func elementBool(fn func(htmlunit.WebElement) (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := fn(elementFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeValue(w, v)
	}
}

func elementString(fn func(htmlunit.WebElement) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := fn(elementFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeValue(w, v)
	}
}

// elementNamed adapts a query taking the {name} URL parameter.
func elementNamed(fn func(htmlunit.WebElement, string) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := fn(elementFrom(r), chi.URLParam(r, "name"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeValue(w, v)
	}
}

func elementRect(w http.ResponseWriter, r *http.Request) {
	el := elementFrom(r)
	pt, err := el.Location()
	if err != nil {
		writeError(w, err)
		return
	}
	size, err := el.Size()
	if err != nil {
		writeError(w, err)
		return
	}
	writeValue(w, &rect{X: pt.X, Y: pt.Y, Width: size.Width, Height: size.Height})
}

func elementScreenshot(w http.ResponseWriter, r *http.Request) {
	if _, err := elementFrom(r).Screenshot(false); err != nil {
		writeError(w, err)
		return
	}
	writeError(w, newError(htmlunit.ErrUnsupportedOperation, "screenshots are not supported"))
}

func sendKeys(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text  *string  `json:"text"`
		Value []string `json:"value"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	keys := strings.Join(req.Value, "")
	if req.Text != nil {
		keys = *req.Text
	}
	if err := elementFrom(r).SendKeys(keys); err != nil {
		writeError(w, err)
		return
	}
	writeValue(w, nil)
}

func execute(async bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Script string        `json:"script"`
			Args   []interface{} `json:"args"`
		}
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		d := driverFrom(r)
		args := make([]interface{}, len(req.Args))
		for i, a := range req.Args {
			v, err := scriptArg(d, a)
			if err != nil {
				writeError(w, err)
				return
			}
			args[i] = v
		}
		run := d.ExecuteScript
		if async {
			run = d.ExecuteScriptAsync
		}
		v, err := run(req.Script, args)
		if err != nil {
			writeError(w, err)
			return
		}
		writeValue(w, v)
	}
}

// scriptArg replaces element references in a decoded script argument with
// the elements they name.
func scriptArg(d *htmlunit.Driver, a interface{}) (interface{}, error) {
	switch v := a.(type) {
	case map[string]interface{}:
		if len(v) <= 2 {
			_, w3c := v[htmlunit.ElementKey]
			_, legacy := v["ELEMENT"]
			if w3c || legacy {
				return referencedElement(d, v)
			}
		}
		out := make(map[string]interface{}, len(v))
		for k, x := range v {
			y, err := scriptArg(d, x)
			if err != nil {
				return nil, err
			}
			out[k] = y
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, x := range v {
			y, err := scriptArg(d, x)
			if err != nil {
				return nil, err
			}
			out[i] = y
		}
		return out, nil
	}
	return a, nil
}

func getCookies(w http.ResponseWriter, r *http.Request) {
	cookies, err := driverFrom(r).GetCookies()
	if err != nil {
		writeError(w, err)
		return
	}
	if cookies == nil {
		cookies = []htmlunit.Cookie{}
	}
	writeValue(w, cookies)
}

func getCookie(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	c, err := driverFrom(r).GetCookie(name)
	if err != nil {
		writeError(w, err)
		return
	}
	if c == nil {
		writeError(w, newError(htmlunit.ErrNoSuchCookie, "no cookie named %q", name))
		return
	}
	writeValue(w, c)
}

func addCookie(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Cookie *htmlunit.Cookie `json:"cookie"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Cookie == nil {
		writeError(w, newError(htmlunit.ErrInvalidArgument, "missing cookie"))
		return
	}
	if err := driverFrom(r).AddCookie(req.Cookie); err != nil {
		writeError(w, err)
		return
	}
	writeValue(w, nil)
}

func deleteCookie(w http.ResponseWriter, r *http.Request) {
	if err := driverFrom(r).DeleteCookie(chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	writeValue(w, nil)
}

func performActions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Actions []htmlunit.InputSource `json:"actions"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := driverFrom(r).PerformActions(req.Actions); err != nil {
		writeError(w, err)
		return
	}
	writeValue(w, nil)
}

func setAlertText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text *string `json:"text"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Text == nil {
		writeError(w, newError(htmlunit.ErrInvalidArgument, "missing text"))
		return
	}
	if err := driverFrom(r).SetAlertText(*req.Text); err != nil {
		writeError(w, err)
		return
	}
	writeValue(w, nil)
}

func screenshot(w http.ResponseWriter, r *http.Request) {
	if _, err := driverFrom(r).Screenshot(); err != nil {
		writeError(w, err)
		return
	}
	writeError(w, newError(htmlunit.ErrUnsupportedOperation, "screenshots are not supported"))
}

// logEntry is a log message on the wire, stamped in Unix milliseconds.
type logEntry struct {
	Timestamp int64     `json:"timestamp"`
	Level     log.Level `json:"level"`
	Message   string    `json:"message"`
}

func getLog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type log.Type `json:"type"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	msgs, err := driverFrom(r).Log(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	entries := make([]logEntry, len(msgs))
	for i, m := range msgs {
		entries[i] = logEntry{Timestamp: m.Timestamp.UnixMilli(), Level: m.Level, Message: m.Message}
	}
	writeValue(w, entries)
}
