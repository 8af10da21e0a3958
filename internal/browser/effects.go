package browser

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/net/html"

	"github.com/wanmail/htmlunit/internal/dom"
	"github.com/wanmail/htmlunit/internal/jsbind"
)

type effectKind int

const (
	effectNavigate effectKind = iota
	effectReload
	effectSubmit
	effectOpen
	effectClose
)

// effect is a navigation requested by a page, applied once the script that
// requested it has returned.
type effect struct {
	kind  effectKind
	frame *Frame
	req   *request
	name  string
}

func (b *Browser) queue(e effect) {
	b.mu.Lock()
	b.effects = append(b.effects, e)
	b.mu.Unlock()
}

func (b *Browser) takeEffects() []effect {
	b.mu.Lock()
	defer b.mu.Unlock()
	effects := b.effects
	b.effects = nil
	return effects
}

// settle applies queued effects until none are left, or until
// maxEffectRounds rounds have run.
func (b *Browser) settle() error {
	for i := 0; i < maxEffectRounds; i++ {
		effects := b.takeEffects()
		if len(effects) == 0 {
			return nil
		}
		for _, e := range effects {
			if err := b.apply(e); err != nil {
				return err
			}
		}
	}
	if dropped := b.takeEffects(); len(dropped) > 0 {
		glog.Warningf("htmlunit: dropped %d navigations queued by page scripts", len(dropped))
	}
	return nil
}

func (b *Browser) apply(e effect) error {
	if b.closed || e.frame.detached || e.frame.window.closed {
		return nil
	}
	w := e.frame.window
	switch e.kind {
	case effectNavigate, effectSubmit:
		if e.name != "" {
			return b.openWindow(e.req, e.name)
		}
		if e.frame == w.top {
			if b.frame == nil || b.frame.window == w {
				b.frame = w.top
			}
			return b.loadTop(w, e.req, true)
		}
		return b.load(e.frame, e.req, depthOf(e.frame))
	case effectReload:
		return b.load(e.frame, &request{method: http.MethodGet, url: e.frame.doc.Location()}, depthOf(e.frame))
	case effectOpen:
		return b.openWindow(e.req, e.name)
	case effectClose:
		b.removeWindow(w)
	}
	return nil
}

// openWindow loads req into the window with the given name, creating the
// window when there is none. The current window does not change.
func (b *Browser) openWindow(req *request, name string) error {
	var w *Window
	if name != "" && name != "_blank" {
		for _, o := range b.windows {
			if o.Name == name {
				w = o
			}
		}
	}
	if w == nil {
		if name == "_blank" {
			name = ""
		}
		w = b.newWindow(name)
	}
	if req.url == blankURL {
		return nil
	}
	return b.loadTop(w, req, true)
}

func depthOf(f *Frame) int {
	depth := 0
	for p := f.parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// resolve turns an href from a page into a request. The second result is
// false for hrefs that do not navigate.
func resolve(d *Document, href string) (*request, bool) {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return nil, false
	}
	if href == "" || href == "about:blank" {
		return &request{method: http.MethodGet, url: blankURL}, true
	}
	u, err := d.Location().Parse(href)
	if err != nil {
		glog.Warningf("htmlunit: bad link %q: %v", href, err)
		return nil, false
	}
	return &request{method: http.MethodGet, url: u}, true
}

// navigateFrom queues navigation of d's frame, or of a named window when
// target names one.
func (b *Browser) navigateFrom(d *Document, href, target string) {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(href)), "javascript:") && d.bridge != nil {
		code, _ := url.PathUnescape(strings.TrimSpace(href)[len("javascript:"):])
		if err := d.bridge.RunScript(d.Location().String(), code); err != nil {
			b.logConsole(jsbind.LevelSevere, err.Error())
		}
		return
	}
	req, ok := resolve(d, href)
	if !ok {
		return
	}
	if samePage(d.Location(), req.url) {
		d.setLocation(req.url)
		return
	}
	b.queue(effect{kind: effectNavigate, frame: d.frame, req: req, name: windowTarget(target)})
}

// submit queues the submission of form, firing its submit event first when
// fire is set. It runs with access to d's nodes.
func (b *Browser) submit(d *Document, form, submitter *html.Node, fire bool) {
	if fire && d.bridge != nil && !d.bridge.Dispatch(form, "submit") {
		return
	}
	s, err := dom.BuildSubmission(form, submitter, d.Location())
	if err != nil {
		glog.Warningf("htmlunit: form action: %v", err)
		return
	}
	b.queue(effect{
		kind:  effectSubmit,
		frame: d.frame,
		req:   &request{method: s.Method, url: s.URL, body: s.Body, contentType: s.ContentType},
		name:  windowTarget(s.Target),
	})
}

// windowTarget maps a link or form target to a window name; targets that
// stay in the same frame map to "".
func windowTarget(target string) string {
	switch strings.ToLower(strings.TrimSpace(target)) {
	case "", "_self", "_parent", "_top":
		return ""
	}
	return target
}

// samePage reports whether to differs from from only in its fragment.
func samePage(from, to *url.URL) bool {
	if to.Fragment == "" {
		return false
	}
	a, c := *from, *to
	a.Fragment, c.Fragment = "", ""
	a.RawFragment, c.RawFragment = "", ""
	return a.String() == c.String()
}
