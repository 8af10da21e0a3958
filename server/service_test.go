package server

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wanmail/htmlunit/internal/seleniumtest"
)

func TestRemoteClient(t *testing.T) {
	pages := httptest.NewServer(seleniumtest.Handler)
	defer pages.Close()

	var out bytes.Buffer
	svc, err := NewService(0, URLPrefix("/wd/hub"), Output(&out))
	if err != nil {
		t.Fatalf("NewService() returned error: %v", err)
	}
	if !strings.HasSuffix(svc.Addr(), "/wd/hub") {
		svc.Stop()
		t.Fatalf("svc.Addr() = %q, want the /wd/hub prefix", svc.Addr())
	}

	seleniumtest.RunCommonTests(t, seleniumtest.Config{
		Addr:      svc.Addr(),
		ServerURL: pages.URL,
	})

	// Shutdown waits for handlers, so the log is complete afterwards.
	if err := svc.Stop(); err != nil {
		t.Fatalf("svc.Stop() returned error: %v", err)
	}
	if !strings.Contains(out.String(), "/wd/hub/status") {
		t.Errorf("request log does not mention /wd/hub/status:\n%s", out.String())
	}
}

func TestServiceStopQuitsSessions(t *testing.T) {
	svc, err := NewService(0)
	if err != nil {
		t.Fatalf("NewService() returned error: %v", err)
	}
	newSession(t, svc.Addr(), nil)
	if got := svc.Server().SessionCount(); got != 1 {
		t.Fatalf("SessionCount() = %d, want 1", got)
	}
	if err := svc.Stop(); err != nil {
		t.Fatalf("svc.Stop() returned error: %v", err)
	}
	if got := svc.Server().SessionCount(); got != 0 {
		t.Errorf("SessionCount() after Stop = %d, want 0", got)
	}
	if err := <-svc.Done(); err == nil || !strings.Contains(err.Error(), "closed") {
		t.Errorf("Done() = %v, want the server closed error", err)
	}
}
