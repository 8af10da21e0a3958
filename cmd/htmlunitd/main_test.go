package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	"github.com/wanmail/htmlunit/server"
)

func parse(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("htmlunitd", pflag.ContinueOnError)
	addFlags(flags)
	if err := flags.Parse(args); err != nil {
		t.Fatalf("flags.Parse(%q) returned error: %v", args, err)
	}
	return flags
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newViper(parse(t)), "")
	if err != nil {
		t.Fatalf("loadConfig() returned error: %v", err)
	}
	want := config{Host: "127.0.0.1", Port: 4444, URLBase: "/wd/hub", Javascript: true}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("loadConfig() returned diff (-want/+got):\n%s", diff)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	t.Setenv("HTMLUNITD_PORT", "5555")
	t.Setenv("HTMLUNITD_USER_AGENT", "from-env")

	file := filepath.Join(t.TempDir(), "htmlunitd.yaml")
	yaml := "url-base: /hub\njavascript: false\nhttp-timeout: 3s\nuser-agent: from-file\n"
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(newViper(parse(t, "--access-log", "--port", "6666")), file)
	if err != nil {
		t.Fatalf("loadConfig() returned error: %v", err)
	}
	want := config{
		Host:        "127.0.0.1",
		Port:        6666,
		URLBase:     "/hub",
		Javascript:  false,
		UserAgent:   "from-env",
		HTTPTimeout: 3 * time.Second,
		AccessLog:   true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("loadConfig() returned diff (-want/+got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := loadConfig(newViper(parse(t, "--port", "70000")), ""); err == nil {
		t.Error("loadConfig() with port 70000 returned nil error")
	}
	if _, err := loadConfig(newViper(parse(t)), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("loadConfig() with a missing file returned nil error")
	}
}

func TestRunUntilCancelled(t *testing.T) {
	ready := make(chan *server.Service, 1)
	cmd := newRootCmd(ready)
	cmd.SetArgs([]string{"--port", "0", "--url-base", "/hub", "--javascript=false"})
	cmd.SetErr(io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	var svc *server.Service
	select {
	case svc = <-ready:
	case err := <-done:
		t.Fatalf("htmlunitd exited early: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("htmlunitd did not start")
	}

	resp, err := http.Get(svc.Addr() + "/status")
	if err != nil {
		t.Fatalf("GET /status returned error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /status returned %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("htmlunitd returned error after cancel: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("htmlunitd did not stop")
	}
}
