package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNormalizeCommand(t *testing.T) {
	out, err := runRoot(t, "", "normalize", "--type", "single-line text", "<b>Hi</b> &amp; bye")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if out != "Hi & bye\n" {
		t.Fatalf("expected %q, got %q", "Hi & bye\n", out)
	}
}

func TestNormalizeCommandReadsStdin(t *testing.T) {
	out, err := runRoot(t, "one<br/>two", "normalize", "--type", "multi-line text", "-")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if out != "one\r\ntwo\n" {
		t.Fatalf("expected CRLF joined lines, got %q", out)
	}
}

func TestNormalizeCommandRequiresType(t *testing.T) {
	if _, err := runRoot(t, "", "normalize", "value"); err == nil {
		t.Fatalf("expected missing type error")
	}
}

func TestLoadConfigAppliesFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webedit.yaml")
	if err := os.WriteFile(path, []byte("http:\n  addr: \":9000\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WEBEDIT_BASE_PATH", "/edit")

	cmd := NewRootCmd()
	if err := cmd.PersistentFlags().Set("config", path); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTP.Addr != ":9000" || cfg.HTTP.BasePath != "/edit" {
		t.Fatalf("unexpected http config %+v", cfg.HTTP)
	}
}

func TestLoadConfigValidatesOverrides(t *testing.T) {
	t.Setenv("WEBEDIT_SESSION_PROVIDER", "redis")
	t.Setenv("REDIS_URL", "")

	if _, err := loadConfig(NewRootCmd()); err == nil {
		t.Fatalf("expected validation error for redis without url")
	}
}

func TestServeStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}

	done := make(chan error, 1)
	var out bytes.Buffer
	go func() { done <- serve(ctx, server, &out) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not stop")
	}
}
