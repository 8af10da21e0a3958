// Package server serves htmlunit sessions over the W3C WebDriver HTTP
// protocol, so that any WebDriver client can drive the embedded browser.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"runtime"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang/glog"

	"github.com/wanmail/htmlunit"
)

// Option configures a Server.
type Option func(*Server) error

// URLPrefix mounts the endpoints under prefix, such as "/wd/hub".
func URLPrefix(prefix string) Option {
	return func(s *Server) error {
		prefix = "/" + strings.Trim(prefix, "/")
		if prefix == "/" {
			prefix = ""
		}
		if strings.ContainsAny(prefix, "{}*") {
			return fmt.Errorf("server: invalid URL prefix %q", prefix)
		}
		s.prefix = prefix
		return nil
	}
}

// Output specifies that every request should be logged to w.
func Output(w io.Writer) Option {
	return func(s *Server) error {
		s.output = w
		return nil
	}
}

// JavascriptByDefault decides whether sessions run page scripts when the
// new session request does not say.
func JavascriptByDefault(enabled bool) Option {
	return func(s *Server) error {
		s.javascript = enabled
		return nil
	}
}

// DriverOptions are applied to the driver of every new session.
func DriverOptions(opts ...htmlunit.DriverOption) Option {
	return func(s *Server) error {
		s.driverOpts = append(s.driverOpts, opts...)
		return nil
	}
}

// ListenHost sets the interface a Service listens on. The default is the
// loopback interface.
func ListenHost(host string) Option {
	return func(s *Server) error {
		s.host = host
		return nil
	}
}

// Server is an http.Handler that owns a set of htmlunit sessions.
type Server struct {
	prefix     string
	host       string
	output     io.Writer
	javascript bool
	driverOpts []htmlunit.DriverOption

	mu       sync.Mutex
	sessions map[string]*htmlunit.Driver

	router chi.Router
}

var _ http.Handler = (*Server)(nil)

// New returns a server with no sessions.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		host:       "127.0.0.1",
		javascript: true,
		sessions:   make(map[string]*htmlunit.Driver),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.router = s.routes()
	return s, nil
}

// Prefix returns the path the endpoints are mounted under.
func (s *Server) Prefix() string {
	return s.prefix
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close quits every session.
func (s *Server) Close() error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*htmlunit.Driver)
	s.mu.Unlock()

	var errs []error
	for id, d := range sessions {
		if err := d.Quit(); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.output != nil {
		r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  stdlog.New(s.output, "", stdlog.LstdFlags),
			NoColor: true,
		}))
	}
	r.Use(traceRequests)

	api := chi.NewRouter()
	api.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, newError(htmlunit.ErrUnknownCommand, "%s %s", r.Method, r.URL.Path))
	})
	api.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, newError(htmlunit.ErrUnknownMethod, "%s %s", r.Method, r.URL.Path))
	})

	api.Get("/status", s.status)
	api.Post("/session", s.newSession)
	api.Route("/session/{sessionID}", func(r chi.Router) {
		r.Use(s.withSession)
		s.sessionRoutes(r)
	})

	if s.prefix == "" {
		r.Mount("/", api)
		return r
	}
	r.Mount(s.prefix, api)
	r.NotFound(api.NotFoundHandler())
	return r
}

func traceRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if glog.V(1) {
			glog.Infof("htmlunit server: %s %s", r.Method, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

type ctxKey int

const driverKey ctxKey = 0

// withSession resolves the session of the URL and stores its driver in the
// request context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		s.mu.Lock()
		d, ok := s.sessions[id]
		s.mu.Unlock()
		if !ok {
			writeError(w, newError(htmlunit.ErrInvalidSessionID, "no active session with ID %q", id))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), driverKey, d)))
	})
}

func driverFrom(r *http.Request) *htmlunit.Driver {
	return r.Context().Value(driverKey).(*htmlunit.Driver)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	st := &htmlunit.Status{Ready: true, Message: "htmlunit server ready"}
	st.Build.Version = htmlunit.Version
	st.OS.Arch = runtime.GOARCH
	st.OS.Name = runtime.GOOS
	writeValue(w, st)
}

// newSessionRequest accepts both the W3C and the legacy payload.
type newSessionRequest struct {
	Capabilities struct {
		AlwaysMatch htmlunit.Capabilities   `json:"alwaysMatch"`
		FirstMatch  []htmlunit.Capabilities `json:"firstMatch"`
	} `json:"capabilities"`
	DesiredCapabilities htmlunit.Capabilities `json:"desiredCapabilities"`
}

// merged returns alwaysMatch extended by the first firstMatch entry, or the
// legacy desired capabilities when the W3C form is absent.
func (req *newSessionRequest) merged() htmlunit.Capabilities {
	caps := htmlunit.Capabilities{}
	w3c := req.Capabilities.AlwaysMatch != nil || len(req.Capabilities.FirstMatch) > 0
	if !w3c {
		for k, v := range req.DesiredCapabilities {
			caps[k] = v
		}
		return caps
	}
	for k, v := range req.Capabilities.AlwaysMatch {
		caps[k] = v
	}
	if len(req.Capabilities.FirstMatch) > 0 {
		for k, v := range req.Capabilities.FirstMatch[0] {
			if _, ok := caps[k]; !ok {
				caps[k] = v
			}
		}
	}
	return caps
}

func (s *Server) newSession(w http.ResponseWriter, r *http.Request) {
	req := new(newSessionRequest)
	if err := decode(r, req); err != nil {
		writeError(w, err)
		return
	}
	caps := req.merged()
	if name, ok := caps["browserName"].(string); ok && name != "" && !strings.EqualFold(name, htmlunit.BrowserName) {
		writeError(w, newError(htmlunit.ErrSessionNotCreated, "browser %q is not available; this server runs %q", name, htmlunit.BrowserName))
		return
	}
	if _, ok := caps[htmlunit.JavascriptEnabledKey]; !ok {
		caps.SetJavascriptEnabled(s.javascript)
	}

	d, err := htmlunit.NewDriverWithCapabilities(caps, s.driverOpts...)
	if err != nil {
		writeError(w, err)
		return
	}
	actual, err := d.Capabilities()
	if err != nil {
		d.Quit()
		writeError(w, err)
		return
	}

	s.mu.Lock()
	s.sessions[d.SessionID()] = d
	s.mu.Unlock()
	glog.V(1).Infof("htmlunit server: created session %s", d.SessionID())

	writeValue(w, map[string]interface{}{
		"sessionId":    d.SessionID(),
		"capabilities": actual,
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	d := driverFrom(r)
	s.mu.Lock()
	delete(s.sessions, d.SessionID())
	s.mu.Unlock()
	if err := d.Quit(); err != nil {
		writeError(w, err)
		return
	}
	glog.V(1).Infof("htmlunit server: deleted session %s", d.SessionID())
	writeValue(w, nil)
}

// reply is the envelope of every response.
type reply struct {
	Value interface{} `json:"value"`
}

func writeValue(w http.ResponseWriter, v interface{}) {
	writeJSON(w, http.StatusOK, reply{Value: v})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	buf, err := json.Marshal(v)
	if err != nil {
		glog.Errorf("htmlunit server: encoding reply: %v", err)
		code = http.StatusInternalServerError
		buf, _ = json.Marshal(reply{Value: &htmlunit.Error{Err: htmlunit.ErrUnknown.Err, Message: err.Error()}})
	}
	w.Header().Set("Content-Type", htmlunit.JSONType+"; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(code)
	w.Write(buf)
}

// writeError writes err as a W3C error. A null value is a success with a
// null result.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, htmlunit.ErrNullValue) {
		writeValue(w, nil)
		return
	}
	var e *htmlunit.Error
	if !errors.As(err, &e) {
		glog.Errorf("htmlunit server: %v", err)
		e = &htmlunit.Error{Err: htmlunit.ErrUnknown.Err, Message: err.Error()}
	}
	writeJSON(w, htmlunit.HTTPStatus(e.Err), reply{Value: e})
}

func newError(kind *htmlunit.Error, format string, args ...interface{}) *htmlunit.Error {
	return &htmlunit.Error{
		Err:      kind.Err,
		Message:  fmt.Sprintf(format, args...),
		HTTPCode: htmlunit.HTTPStatus(kind.Err),
	}
}

// decode reads a JSON request body into v. An empty body leaves v as is.
func decode(r *http.Request, v interface{}) error {
	buf, err := io.ReadAll(r.Body)
	if err != nil {
		return newError(htmlunit.ErrInvalidArgument, "reading request: %v", err)
	}
	if len(strings.TrimSpace(string(buf))) == 0 {
		return nil
	}
	if err := json.Unmarshal(buf, v); err != nil {
		return newError(htmlunit.ErrInvalidArgument, "decoding request: %v", err)
	}
	return nil
}
