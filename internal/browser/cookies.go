package browser

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Cookie is a stored cookie.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	SameSite string
	// Expires is zero for session cookies.
	Expires  time.Time
	HostOnly bool

	created time.Time
}

func (c *Cookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

func (c *Cookie) matches(u *url.URL) bool {
	host := canonicalHost(u)
	if c.HostOnly {
		if host != c.Domain {
			return false
		}
	} else if !domainMatch(host, c.Domain) {
		return false
	}
	if c.Secure && u.Scheme != "https" {
		return false
	}
	return pathMatch(requestPath(u), c.Path)
}

// CookieStore is the session's cookie jar. It serves as the HTTP client's
// jar and backs document.cookie and the WebDriver cookie commands.
type CookieStore struct {
	mu      sync.Mutex
	cookies []*Cookie
	now     func() time.Time
}

var _ http.CookieJar = (*CookieStore)(nil)

// NewCookieStore returns an empty store.
func NewCookieStore() *CookieStore {
	return &CookieStore{now: time.Now}
}

// SetCookies stores cookies received in a response from u.
func (s *CookieStore) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	host := canonicalHost(u)
	for _, hc := range cookies {
		c := &Cookie{
			Name:     hc.Name,
			Value:    hc.Value,
			Path:     hc.Path,
			Secure:   hc.Secure,
			HTTPOnly: hc.HttpOnly,
			SameSite: sameSite(hc.SameSite),
			created:  now,
		}
		var ok bool
		if c.Domain, c.HostOnly, ok = cookieDomain(host, hc.Domain); !ok {
			continue
		}
		if c.Path == "" || !strings.HasPrefix(c.Path, "/") {
			c.Path = defaultPath(u)
		}
		switch {
		case hc.MaxAge < 0:
			c.Expires = now.Add(-time.Second)
		case hc.MaxAge > 0:
			c.Expires = now.Add(time.Duration(hc.MaxAge) * time.Second)
		case !hc.Expires.IsZero():
			c.Expires = hc.Expires
		}
		s.put(c, now)
	}
}

// put replaces the cookie with the same name, domain and path, or appends c.
// Expired cookies only remove.
func (s *CookieStore) put(c *Cookie, now time.Time) {
	for i, o := range s.cookies {
		if o.Name == c.Name && o.Domain == c.Domain && o.Path == c.Path {
			s.cookies = append(s.cookies[:i], s.cookies[i+1:]...)
			c.created = o.created
			break
		}
	}
	if !c.expired(now) {
		s.cookies = append(s.cookies, c)
	}
}

// Cookies returns the cookies to send with a request to u.
func (s *CookieStore) Cookies(u *url.URL) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range s.Visible(u) {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// Visible returns the cookies that apply to u, longest path first.
func (s *CookieStore) Visible(u *url.URL) []Cookie {
	if !isHTTP(u) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var out []Cookie
	live := s.cookies[:0]
	for _, c := range s.cookies {
		if c.expired(now) {
			continue
		}
		live = append(live, c)
		if c.matches(u) {
			out = append(out, *c)
		}
	}
	s.cookies = live
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Path) != len(out[j].Path) {
			return len(out[i].Path) > len(out[j].Path)
		}
		return out[i].created.Before(out[j].created)
	})
	return out
}

// Get returns the visible cookie with the given name, or nil.
func (s *CookieStore) Get(u *url.URL, name string) *Cookie {
	for _, c := range s.Visible(u) {
		if c.Name == name {
			c := c
			return &c
		}
	}
	return nil
}

// Add stores a cookie given through WebDriver for the document at u. The
// domain defaults to u's host and must cover it; the path defaults to "/".
func (s *CookieStore) Add(u *url.URL, c Cookie) error {
	if !isHTTP(u) {
		return fmt.Errorf("%w: cookies cannot be set on %s", ErrInvalidCookieDomain, u)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: cookie name is empty", ErrInvalidArgument)
	}
	host := canonicalHost(u)
	domain, hostOnly, ok := cookieDomain(host, c.Domain)
	if !ok {
		return fmt.Errorf("%w: %q does not cover %q", ErrInvalidCookieDomain, c.Domain, host)
	}
	c.Domain, c.HostOnly = domain, hostOnly
	if c.Path == "" {
		c.Path = "/"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	c.created = now
	s.put(&c, now)
	return nil
}

// Delete removes the visible cookies with the given name.
func (s *CookieStore) Delete(u *url.URL, name string) {
	s.remove(u, func(c *Cookie) bool { return c.Name == name })
}

// DeleteVisible removes every cookie visible to u.
func (s *CookieStore) DeleteVisible(u *url.URL) {
	s.remove(u, func(*Cookie) bool { return true })
}

func (s *CookieStore) remove(u *url.URL, match func(*Cookie) bool) {
	if !isHTTP(u) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.cookies[:0]
	for _, c := range s.cookies {
		if c.matches(u) && match(c) {
			continue
		}
		kept = append(kept, c)
	}
	s.cookies = kept
}

// Clear drops every cookie.
func (s *CookieStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = nil
}

// scriptHeader renders the cookies visible to scripts at u the way
// document.cookie reads them.
func (s *CookieStore) scriptHeader(u *url.URL) string {
	var parts []string
	for _, c := range s.Visible(u) {
		if !c.HTTPOnly {
			parts = append(parts, c.Name+"="+c.Value)
		}
	}
	return strings.Join(parts, "; ")
}

func isHTTP(u *url.URL) bool {
	return u != nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func canonicalHost(u *url.URL) string {
	return strings.ToLower(u.Hostname())
}

// cookieDomain resolves the Domain attribute of a cookie set for host.
// Cookies without one, and cookies set by IP hosts, are host-only. A public
// suffix such as "com" is only accepted as the host itself, and then the
// cookie is host-only too. ok is false when the cookie must be rejected.
func cookieDomain(host, attr string) (domain string, hostOnly, ok bool) {
	domain = strings.TrimPrefix(strings.ToLower(attr), ".")
	switch {
	case domain == "":
		return host, true, true
	case net.ParseIP(host) != nil:
		return host, true, domain == host
	}
	if suffix, _ := publicsuffix.PublicSuffix(domain); suffix == domain {
		return host, true, domain == host
	}
	if !domainMatch(host, domain) {
		return "", false, false
	}
	return domain, false, true
}

func domainMatch(host, domain string) bool {
	if host == domain {
		return true
	}
	return net.ParseIP(host) == nil && strings.HasSuffix(host, "."+domain)
}

func requestPath(u *url.URL) string {
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

func pathMatch(reqPath, cookiePath string) bool {
	if reqPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(reqPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || reqPath[len(cookiePath)] == '/'
}

// defaultPath is the directory of u's path.
func defaultPath(u *url.URL) string {
	p := u.Path
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}

func sameSite(s http.SameSite) string {
	switch s {
	case http.SameSiteLaxMode:
		return "Lax"
	case http.SameSiteStrictMode:
		return "Strict"
	case http.SameSiteNoneMode:
		return "None"
	}
	return ""
}

// Cookies returns the cookies visible to the current document.
func (b *Browser) Cookies() ([]Cookie, error) {
	d, err := b.document()
	if err != nil {
		return nil, err
	}
	return b.cookies.Visible(d.Location()), nil
}

// Cookie returns the visible cookie with the given name.
func (b *Browser) Cookie(name string) (*Cookie, error) {
	d, err := b.document()
	if err != nil {
		return nil, err
	}
	c := b.cookies.Get(d.Location(), name)
	if c == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchCookie, name)
	}
	return c, nil
}

// AddCookie stores a cookie for the current document.
func (b *Browser) AddCookie(c Cookie) error {
	d, err := b.document()
	if err != nil {
		return err
	}
	return b.cookies.Add(d.Location(), c)
}

// DeleteCookie removes the visible cookie with the given name.
func (b *Browser) DeleteCookie(name string) error {
	d, err := b.document()
	if err != nil {
		return err
	}
	b.cookies.Delete(d.Location(), name)
	return nil
}

// DeleteAllCookies removes every cookie visible to the current document.
func (b *Browser) DeleteAllCookies() error {
	d, err := b.document()
	if err != nil {
		return err
	}
	b.cookies.DeleteVisible(d.Location())
	return nil
}
