package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a3tai/mcp-pdf-form/internal/assets"
	"github.com/a3tai/mcp-pdf-form/internal/config"
	"github.com/a3tai/mcp-pdf-form/internal/testutil"
)

// captureStdout returns what fn prints on stdout
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	originalStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = originalStdout }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
		w.Close()
	}()

	var buf bytes.Buffer
	io.Copy(&buf, r)
	<-done
	return buf.String()
}

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
	}()

	version = "1.2.3"
	buildTime = "2025-06-01_10:30:00"
	gitCommit = "abc123"

	output := captureStdout(t, printVersion)

	for _, expected := range []string{
		"MCP PDF Form",
		"Version: 1.2.3",
		"Build Time: 2025-06-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("printVersion() output missing expected string: %s\nActual output:\n%s", expected, output)
		}
	}
}

func TestSetupLogging(t *testing.T) {
	originalOutput := log.Writer()
	originalFlags := log.Flags()
	defer func() {
		log.SetOutput(originalOutput)
		log.SetFlags(originalFlags)
	}()

	setupLogging(&config.Config{Mode: "stdio", LogLevel: "debug"})
	if log.Writer() != os.Stderr {
		t.Error("setupLogging() for stdio debug mode should set output to stderr")
	}

	setupLogging(&config.Config{Mode: "stdio", LogLevel: "info"})
	if log.Writer() == os.Stderr {
		t.Error("setupLogging() for stdio non-debug mode should not use stderr")
	}

	setupLogging(&config.Config{Mode: "server", LogLevel: "info"})
	if log.Flags() != log.LstdFlags|log.Lshortfile {
		t.Errorf("setupLogging() for server mode: flags = %v, want %v", log.Flags(), log.LstdFlags|log.Lshortfile)
	}
}

func TestNewService_BundledForm(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OutputDirectory = t.TempDir()

	service, err := newService(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newService() unexpected error: %v", err)
	}

	result, err := service.ReadForm(context.Background())
	if err != nil {
		t.Fatalf("ReadForm() unexpected error: %v", err)
	}
	if result.Source != assets.FormName {
		t.Errorf("Source = %s, want %s", result.Source, assets.FormName)
	}
	if result.Count == 0 {
		t.Error("bundled form should have fields")
	}
}

func TestNewService_FormOverride(t *testing.T) {
	dir := t.TempDir()
	formPath := filepath.Join(dir, "custom.pdf")
	data := testutil.Form{
		Fields: []testutil.Field{{Name: "only", Kind: testutil.TextField, Object: 42}},
	}.Bytes()
	if err := os.WriteFile(formPath, data, 0o644); err != nil {
		t.Fatalf("Failed to write form: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.OutputDirectory = dir
	cfg.FormPath = formPath

	service, err := newService(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newService() unexpected error: %v", err)
	}
	result, err := service.ReadForm(context.Background())
	if err != nil {
		t.Fatalf("ReadForm() unexpected error: %v", err)
	}
	if result.Count != 1 || result.Values[0].ID != "42R" {
		t.Errorf("unexpected form data: %+v", result.Values)
	}

	cfg.FormPath = filepath.Join(dir, "missing.pdf")
	if _, err := newService(context.Background(), cfg); err == nil {
		t.Error("newService() expected error for missing form")
	}
}

func TestRun_FormLoadFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OutputDirectory = t.TempDir()
	cfg.FormPath = filepath.Join(cfg.OutputDirectory, "missing.pdf")

	err := run(context.Background(), cfg)
	if err == nil {
		t.Fatal("run() expected error for missing form")
	}
	if !strings.Contains(err.Error(), "failed to create PDF form service") {
		t.Errorf("run() error = %v", err)
	}
}
