package browser

import (
	"net/http"
	"net/url"

	"golang.org/x/net/html"
)

// host connects a document's script bridge to the browser. Its methods run
// on the document's event loop.
type host struct {
	d *Document
}

func (h *host) URL() *url.URL        { return h.d.Location() }
func (h *host) UserAgent() string    { return h.d.b.opts.UserAgent }
func (h *host) Navigate(href string) { h.d.b.navigateFrom(h.d, href, "") }

func (h *host) Reload() {
	h.d.b.queue(effect{kind: effectReload, frame: h.d.frame})
}

func (h *host) Activate(n *html.Node) {
	h.d.b.activate(h.d, n)
}

func (h *host) Submit(form, submitter *html.Node) {
	h.d.b.submit(h.d, form, submitter, false)
}

func (h *host) Focus(n *html.Node)        { h.d.focus = n }
func (h *host) ActiveElement() *html.Node { return h.d.focus }

func (h *host) Open(href, name string) {
	req, ok := resolve(h.d, href)
	if !ok {
		return
	}
	if name == "" {
		name = "_blank"
	}
	h.d.b.queue(effect{kind: effectOpen, frame: h.d.frame, req: req, name: name})
}

func (h *host) Close() {
	h.d.b.queue(effect{kind: effectClose, frame: h.d.frame})
}

func (h *host) Alert(msg string) {
	h.d.b.openAlert(AlertKindAlert, msg, "")
}

func (h *host) Confirm(msg string) bool {
	h.d.b.openAlert(AlertKindConfirm, msg, "")
	h.d.b.mu.Lock()
	defer h.d.b.mu.Unlock()
	return h.d.b.confirm
}

func (h *host) Prompt(msg, def string) (string, bool) {
	h.d.b.openAlert(AlertKindPrompt, msg, def)
	b := h.d.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.confirm {
		return "", false
	}
	if b.answer != nil {
		return *b.answer, true
	}
	return def, true
}

func (h *host) Cookie() string {
	return h.d.b.cookies.scriptHeader(h.d.Location())
}

func (h *host) SetCookie(s string) {
	cookies := (&http.Response{Header: http.Header{"Set-Cookie": {s}}}).Cookies()
	for _, c := range cookies {
		if c.HttpOnly {
			return
		}
	}
	h.d.b.cookies.SetCookies(h.d.Location(), cookies)
}

func (h *host) Console(level, msg string) {
	h.d.b.logConsole(level, msg)
}

func (h *host) Viewport() (int, int) {
	return h.d.b.viewport(h.d.frame.window)
}
