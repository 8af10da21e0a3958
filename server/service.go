package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/golang/glog"
)

// Service runs a Server on a local TCP port in the background.
type Service struct {
	srv      *Server
	http     *http.Server
	listener net.Listener
	addr     string
	done     chan error
}

// NewService starts a server listening on port, or on a free port when
// port is 0, and waits until it answers /status.
func NewService(port int, opts ...Option) (*Service, error) {
	srv, err := New(opts...)
	if err != nil {
		return nil, err
	}
	l, err := net.Listen("tcp", net.JoinHostPort(srv.host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("listening on port %d: %w", port, err)
	}
	host := srv.host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	s := &Service{
		srv:      srv,
		http:     &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second},
		listener: l,
		addr:     fmt.Sprintf("http://%s%s", net.JoinHostPort(host, strconv.Itoa(l.Addr().(*net.TCPAddr).Port)), srv.prefix),
		done:     make(chan error, 1),
	}
	go func() {
		s.done <- s.http.Serve(l)
	}()
	if err := s.start(); err != nil {
		s.Stop()
		return nil, err
	}
	glog.Infof("htmlunit server listening on %s", s.addr)
	return s, nil
}

// Addr returns the URL prefix clients pass to htmlunit.NewRemote.
func (s *Service) Addr() string {
	return s.addr
}

// Server returns the handler the service runs.
func (s *Service) Server() *Server {
	return s.srv
}

// Done receives the serve error once the service stops serving.
func (s *Service) Done() <-chan error {
	return s.done
}

func (s *Service) start() error {
	client := &http.Client{Timeout: time.Second}
	for i := 0; i < 50; i++ {
		resp, err := client.Get(s.addr + "/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server did not respond on %s", s.addr)
}

// Stop shuts the listener down, waiting up to five seconds for requests in
// flight, then quits every session.
func (s *Service) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.http.Shutdown(ctx)
	if cerr := s.srv.Close(); err == nil {
		err = cerr
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return err
}
