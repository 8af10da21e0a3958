package browser

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang/glog"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/proxy"

	"github.com/wanmail/htmlunit/internal/dom"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 32 << 20

// request is one page load: a GET of url, or a form POST.
type request struct {
	method      string
	url         *url.URL
	body        string
	contentType string
}

// response is a fetched page.
type response struct {
	url         *url.URL
	status      int
	contentType string
	body        string
}

func newClient(opts Options, jar http.CookieJar) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	if p := opts.Proxy; p != nil && strings.EqualFold(p.Type, "manual") {
		switch {
		case p.SOCKS != "":
			var auth *proxy.Auth
			if p.SOCKSUsername != "" {
				auth = &proxy.Auth{User: p.SOCKSUsername, Password: p.SOCKSPassword}
			}
			dialer, err := proxy.SOCKS5("tcp", p.SOCKS, auth, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("%w: socks proxy %q: %v", ErrInvalidArgument, p.SOCKS, err)
			}
			cd, ok := dialer.(proxy.ContextDialer)
			if !ok {
				return nil, fmt.Errorf("%w: socks proxy %q cannot dial with a context", ErrInvalidArgument, p.SOCKS)
			}
			transport.DialContext = cd.DialContext
		case p.HTTP != "":
			raw := p.HTTP
			if !strings.Contains(raw, "://") {
				raw = "http://" + raw
			}
			u, err := url.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: http proxy %q: %v", ErrInvalidArgument, p.HTTP, err)
			}
			transport.Proxy = http.ProxyURL(u)
		}
	} else if p != nil && strings.EqualFold(p.Type, "system") {
		transport.Proxy = http.ProxyFromEnvironment
	}
	return &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   opts.HTTPTimeout,
	}, nil
}

// parseURL checks that raw is an absolute address the browser can load.
func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed URL %q: %v", ErrInvalidArgument, raw, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return nil, fmt.Errorf("%w: malformed URL %q: missing host", ErrInvalidArgument, raw)
		}
		if u.Path == "" && u.Opaque == "" {
			u.Path = "/"
		}
	case "about":
	case "":
		return nil, fmt.Errorf("%w: malformed URL %q: missing scheme", ErrInvalidArgument, raw)
	default:
		return nil, fmt.Errorf("%w: unsupported URL scheme %q", ErrInvalidArgument, u.Scheme)
	}
	return u, nil
}

// fetch loads req. Failures to reach the host are logged and produce an
// empty response for the requested URL; only deadlines are errors.
func (b *Browser) fetch(ctx context.Context, req *request) (*response, error) {
	if req.url.Scheme == "about" {
		return &response{url: req.url, status: http.StatusOK, contentType: "text/html"}, nil
	}
	var body io.Reader
	if req.method == http.MethodPost {
		body = strings.NewReader(req.body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.method, req.url.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	hreq.Header.Set("User-Agent", b.opts.UserAgent)
	hreq.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	if req.contentType != "" {
		hreq.Header.Set("Content-Type", req.contentType)
	}

	glog.V(1).Infof("htmlunit: %s %s", req.method, req.url)
	resp, err := b.client.Do(hreq)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fmt.Errorf("%w: loading %s: %v", ErrTimeout, req.url, err)
		}
		glog.Warningf("htmlunit: loading %s: %v", req.url, err)
		return &response{url: req.url}, nil
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	r, err := charset.NewReader(io.LimitReader(resp.Body, maxBodySize), ct)
	if err != nil {
		r = io.LimitReader(resp.Body, maxBodySize)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrTimeout, req.url, err)
		}
		glog.Warningf("htmlunit: reading %s: %v", req.url, err)
	}
	return &response{
		url:         resp.Request.URL,
		status:      resp.StatusCode,
		contentType: ct,
		body:        string(data),
	}, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// parse builds the node tree of a response. Bodies that are not HTML are
// shown as preformatted text.
func (r *response) parse() (*xhtml.Node, error) {
	if r.body == "" {
		return dom.Blank(), nil
	}
	mt, _, _ := mime.ParseMediaType(r.contentType)
	switch mt {
	case "", "text/html", "application/xhtml+xml":
		return dom.Parse(r.body)
	}
	return dom.Parse("<html><head></head><body><pre>" + html.EscapeString(r.body) + "</pre></body></html>")
}
