package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

// withArgs runs fn with os.Args replaced and the flag and viper state reset
func withArgs(t *testing.T, args []string, fn func()) {
	t.Helper()
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
	}()

	os.Args = args
	resetFlags()
	fn()
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	withArgs(t, []string{"mcp-pdf-form"}, func() {
		cfg, err := LoadFromFlags()
		if err != nil {
			t.Fatalf("LoadFromFlags() unexpected error: %v", err)
		}

		if cfg.Mode != "stdio" {
			t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, "stdio")
		}
		if cfg.Port != 8080 {
			t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, 8080)
		}
		if cfg.Scale != DefaultScale {
			t.Errorf("LoadFromFlags() Scale = %v, want %v", cfg.Scale, DefaultScale)
		}
		if cfg.RevokeDelay != DefaultRevokeDelay {
			t.Errorf("LoadFromFlags() RevokeDelay = %v, want %v", cfg.RevokeDelay, DefaultRevokeDelay)
		}
		if cfg.OutputDirectory == "" {
			t.Error("LoadFromFlags() OutputDirectory should not be empty")
		}
	})
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	outDir := t.TempDir()
	formFile := filepath.Join(t.TempDir(), "form.pdf")
	if err := os.WriteFile(formFile, []byte("%PDF-1.7"), 0o644); err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}

	withArgs(t, []string{
		"mcp-pdf-form",
		"--mode=server",
		"--host=0.0.0.0",
		"--port=9090",
		"--form=" + formFile,
		"--output=" + outDir,
		"--scale=2",
		"--downloadname=arret.pdf",
		"--revokedelay=3s",
		"--loglevel=debug",
		"--maxfilesize=2048",
	}, func() {
		cfg, err := LoadFromFlags()
		if err != nil {
			t.Fatalf("LoadFromFlags() unexpected error: %v", err)
		}

		if cfg.Mode != "server" || cfg.Host != "0.0.0.0" || cfg.Port != 9090 {
			t.Errorf("LoadFromFlags() server settings = %s %s %d", cfg.Mode, cfg.Host, cfg.Port)
		}
		if cfg.FormPath != formFile {
			t.Errorf("LoadFromFlags() FormPath = %v, want %v", cfg.FormPath, formFile)
		}
		if cfg.OutputDirectory != outDir {
			t.Errorf("LoadFromFlags() OutputDirectory = %v, want %v", cfg.OutputDirectory, outDir)
		}
		if cfg.Scale != 2 {
			t.Errorf("LoadFromFlags() Scale = %v, want 2", cfg.Scale)
		}
		if cfg.DownloadName != "arret.pdf" {
			t.Errorf("LoadFromFlags() DownloadName = %v, want arret.pdf", cfg.DownloadName)
		}
		if cfg.RevokeDelay != 3*time.Second {
			t.Errorf("LoadFromFlags() RevokeDelay = %v, want 3s", cfg.RevokeDelay)
		}
		if !cfg.IsDebug() {
			t.Errorf("LoadFromFlags() LogLevel = %v, want debug", cfg.LogLevel)
		}
		if cfg.MaxFileSize != 2048 {
			t.Errorf("LoadFromFlags() MaxFileSize = %v, want 2048", cfg.MaxFileSize)
		}
	})
}

func TestLoadFromFlags_Environment(t *testing.T) {
	outDir := t.TempDir()
	t.Setenv("MCP_PDF_FORM_MODE", "server")
	t.Setenv("MCP_PDF_FORM_PORT", "8181")
	t.Setenv("MCP_PDF_FORM_OUTPUT", outDir)
	t.Setenv("MCP_PDF_FORM_DOWNLOADNAME", "env.pdf")
	t.Setenv("MCP_PDF_FORM_REVOKEDELAY", "250ms")

	withArgs(t, []string{"mcp-pdf-form"}, func() {
		cfg, err := LoadFromFlags()
		if err != nil {
			t.Fatalf("LoadFromFlags() unexpected error: %v", err)
		}

		if cfg.Mode != "server" {
			t.Errorf("LoadFromFlags() Mode = %v, want server", cfg.Mode)
		}
		if cfg.Port != 8181 {
			t.Errorf("LoadFromFlags() Port = %v, want 8181", cfg.Port)
		}
		if cfg.OutputDirectory != outDir {
			t.Errorf("LoadFromFlags() OutputDirectory = %v, want %v", cfg.OutputDirectory, outDir)
		}
		if cfg.DownloadName != "env.pdf" {
			t.Errorf("LoadFromFlags() DownloadName = %v, want env.pdf", cfg.DownloadName)
		}
		if cfg.RevokeDelay != 250*time.Millisecond {
			t.Errorf("LoadFromFlags() RevokeDelay = %v, want 250ms", cfg.RevokeDelay)
		}
	})
}

func TestLoadFromFlags_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "invalid mode", args: []string{"mcp-pdf-form", "--mode=invalid"}},
		{name: "invalid log level", args: []string{"mcp-pdf-form", "--loglevel=loud"}},
		{name: "missing form", args: []string{"mcp-pdf-form", "--form=/non/existent/form.pdf"}},
		{name: "version", args: []string{"mcp-pdf-form", "--version"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			withArgs(t, tt.args, func() {
				if _, err := LoadFromFlags(); err == nil {
					t.Error("LoadFromFlags() expected error")
				}
			})
		})
	}
}
