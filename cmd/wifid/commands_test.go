package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/muurk/wifid/internal/config"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		configPath, logLevel, dataDir = "", "", ""
		noConsole, ephemeral, writeFile, forceWrite = false, false, false, false
		remoteAddr = ""
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExecEphemeral(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "missing.yaml")

	out, err := runRoot(t, "exec", "--ephemeral", "--config", cfgFile, "--data-dir", dir, "M585")
	if err != nil {
		t.Fatalf("exec error = %v", err)
	}
	if out != "echo:Hostname#wifid\n" {
		t.Errorf("output = %q", out)
	}
}

func TestExecPersists(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "missing.yaml")

	if _, err := runRoot(t, "exec", "--config", cfgFile, "--data-dir", dir, "SET-HOSTNAME", "kitchen"); err != nil {
		t.Fatalf("exec set error = %v", err)
	}
	out, err := runRoot(t, "exec", "--config", cfgFile, "--data-dir", dir, "SET-HOSTNAME")
	if err != nil {
		t.Fatalf("exec query error = %v", err)
	}
	if out != "echo:Hostname#kitchen\n" {
		t.Errorf("output = %q", out)
	}
}

func TestDefaultsWrite(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "wifid", "config.yaml")

	out, err := runRoot(t, "defaults", "--write", "--config", cfgFile)
	if err != nil {
		t.Fatalf("defaults --write error = %v", err)
	}
	if !strings.Contains(out, cfgFile) {
		t.Errorf("output = %q, want path", out)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Defaults.Hostname != "wifid" {
		t.Errorf("Defaults.Hostname = %q", cfg.Defaults.Hostname)
	}

	if _, err := runRoot(t, "defaults", "--write", "--config", cfgFile); err == nil {
		t.Error("second --write without --force succeeded")
	}
	if _, err := runRoot(t, "defaults", "--write", "--force", "--config", cfgFile); err != nil {
		t.Errorf("--force error = %v", err)
	}
}

func TestDefaultsPrint(t *testing.T) {
	out, err := runRoot(t, "defaults")
	if err != nil {
		t.Fatalf("defaults error = %v", err)
	}
	for _, want := range []string{"version: 1", "namespace:", "hostname: wifid"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExecRemote(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte("echo:Received#"+string(msg)))
	}))
	defer srv.Close()

	out, err := runRoot(t, "exec", "--remote", strings.TrimPrefix(srv.URL, "http://"), "SET-MODE", "S=1")
	if err != nil {
		t.Fatalf("exec --remote error = %v", err)
	}
	if out != "echo:Received#SET-MODE S=1\n" {
		t.Errorf("output = %q", out)
	}
}
