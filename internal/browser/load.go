package browser

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/wanmail/htmlunit/internal/dom"
	"github.com/wanmail/htmlunit/internal/jsbind"
)

// maxFrameDepth bounds nested frame loading.
const maxFrameDepth = 8

// Navigate loads rawURL into the top frame of the current window and makes
// that frame the current browsing context.
func (b *Browser) Navigate(rawURL string) error {
	w, err := b.CurrentWindow()
	if err != nil {
		return err
	}
	u, err := parseURL(rawURL)
	if err != nil {
		return err
	}
	b.frame = w.top
	if err := b.loadTop(w, &request{method: http.MethodGet, url: u}, true); err != nil {
		return err
	}
	return b.settle()
}

// Refresh reloads the current top-level document.
func (b *Browser) Refresh() error {
	w, err := b.CurrentWindow()
	if err != nil {
		return err
	}
	b.frame = w.top
	req := &request{method: http.MethodGet, url: w.top.doc.Location()}
	if w.index >= 0 {
		req = w.history[w.index]
	}
	if err := b.loadTop(w, req, false); err != nil {
		return err
	}
	return b.settle()
}

// Back goes one step back in the current window's history.
func (b *Browser) Back() error {
	return b.traverse(-1)
}

// Forward goes one step forward in the current window's history.
func (b *Browser) Forward() error {
	return b.traverse(1)
}

func (b *Browser) traverse(delta int) error {
	w, err := b.CurrentWindow()
	if err != nil {
		return err
	}
	i := w.index + delta
	if i < 0 || i >= len(w.history) {
		return nil
	}
	w.index = i
	b.frame = w.top
	if err := b.loadTop(w, w.history[i], false); err != nil {
		return err
	}
	return b.settle()
}

func (b *Browser) loadTop(w *Window, req *request, record bool) error {
	if err := b.load(w.top, req, 0); err != nil {
		return err
	}
	if record {
		w.push(req)
	}
	return nil
}

// load fetches req and replaces the document of f with the result. Child
// frames load concurrently before the page's own scripts run.
func (b *Browser) load(f *Frame, req *request, depth int) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.opts.PageLoadTimeout)
	defer cancel()

	d, err := b.build(ctx, f, req, depth)
	if err != nil {
		return err
	}
	old := f.doc
	f.doc = d
	if old != nil {
		old.close()
	}
	b.run(d)
	return nil
}

// build fetches and parses a page and loads its frames, without running
// any of its scripts.
func (b *Browser) build(ctx context.Context, f *Frame, req *request, depth int) (*Document, error) {
	resp, err := b.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	root, err := resp.parse()
	if err != nil {
		glog.Warningf("htmlunit: parsing %s: %v", resp.url, err)
		root = dom.Blank()
	}
	d := b.newDocument(f, resp.url, root)
	if af := dom.Elements(root, func(n *html.Node) bool { return dom.HasAttr(n, "autofocus") }); len(af) > 0 {
		d.focus = af[0]
	}

	if depth < maxFrameDepth {
		owners := dom.Elements(root, func(n *html.Node) bool { return dom.IsElement(n, "iframe", "frame") })
		d.frames = make([]*Frame, len(owners))
		g, gctx := errgroup.WithContext(ctx)
		for i, owner := range owners {
			child := &Frame{window: f.window, parent: f, owner: owner}
			d.frames[i] = child
			g.Go(func() error {
				src := strings.TrimSpace(dom.AttrOr(owner, "src", ""))
				creq := &request{method: http.MethodGet, url: blankURL}
				if src != "" && src != "about:blank" {
					u, err := d.Location().Parse(src)
					if err != nil {
						glog.Warningf("htmlunit: frame source %q: %v", src, err)
					} else {
						creq.url = u
					}
				}
				cd, err := b.build(gctx, child, creq, depth+1)
				if err != nil {
					return err
				}
				child.doc = cd
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			for _, c := range d.frames {
				if c.doc != nil {
					c.close()
				}
			}
			return nil, err
		}
	}
	return d, nil
}

// run starts the scripts of d and its frames, children first, then fires
// the load event.
func (b *Browser) run(d *Document) {
	for _, c := range d.frames {
		b.run(c.doc)
	}
	if !b.opts.JavaScript {
		return
	}
	type script struct{ name, src, ref string }
	var scripts []script
	for i, n := range dom.Elements(d.Root, func(n *html.Node) bool {
		return dom.Tag(n) == "script" && isJavaScript(dom.AttrOr(n, "type", ""))
	}) {
		scripts = append(scripts, script{
			name: fmt.Sprintf("%s#script%d", d.Location(), i),
			src:  dom.TextContent(n),
			ref:  strings.TrimSpace(dom.AttrOr(n, "src", "")),
		})
	}

	d.startLoop()
	for _, s := range scripts {
		if s.ref != "" {
			var fetched bool
			if s.src, s.name, fetched = b.fetchScript(d, s.ref); !fetched {
				continue
			}
		}
		err := d.Do(func() error { return d.bridge.RunScript(s.name, s.src) })
		if err != nil {
			b.logConsole(jsbind.LevelSevere, err.Error())
		}
	}
	err := d.Do(func() error {
		d.bridge.FireLoad()
		return nil
	})
	if err != nil {
		b.logConsole(jsbind.LevelSevere, err.Error())
	}
}

func (b *Browser) fetchScript(d *Document, ref string) (src, name string, ok bool) {
	u, err := d.Location().Parse(ref)
	if err != nil {
		glog.Warningf("htmlunit: script source %q: %v", ref, err)
		return "", "", false
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.opts.PageLoadTimeout)
	defer cancel()
	resp, err := b.fetch(ctx, &request{method: http.MethodGet, url: u})
	if err != nil {
		glog.Warningf("htmlunit: script %s: %v", u, err)
		return "", "", false
	}
	if resp.status >= 400 {
		glog.Warningf("htmlunit: script %s: status %d", u, resp.status)
		return "", "", false
	}
	return resp.body, u.String(), true
}

func isJavaScript(typ string) bool {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if i := strings.IndexByte(typ, ';'); i >= 0 {
		typ = strings.TrimSpace(typ[:i])
	}
	switch typ {
	case "", "text/javascript", "application/javascript", "text/ecmascript", "application/ecmascript", "application/x-javascript":
		return true
	}
	return false
}
