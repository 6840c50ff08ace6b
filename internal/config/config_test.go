package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "stdio" {
		t.Errorf("Expected default mode to be 'stdio', got '%s'", cfg.Mode)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}
	if cfg.ServerName != "mcp-pdf-form" {
		t.Errorf("Expected default server name to be 'mcp-pdf-form', got '%s'", cfg.ServerName)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}
	if cfg.Scale != 1.2 {
		t.Errorf("Expected default scale to be 1.2, got %g", cfg.Scale)
	}
	if cfg.DownloadName != "newFile.pdf" {
		t.Errorf("Expected default download name to be 'newFile.pdf', got '%s'", cfg.DownloadName)
	}
	if cfg.RevokeDelay != 1500*time.Millisecond {
		t.Errorf("Expected default revoke delay to be 1.5s, got %s", cfg.RevokeDelay)
	}
	if cfg.FormPath != "" {
		t.Errorf("Expected no form override by default, got '%s'", cfg.FormPath)
	}

	currentDir, _ := os.Getwd()
	if cfg.OutputDirectory != currentDir {
		t.Errorf("Expected default output directory to be '%s', got '%s'", currentDir, cfg.OutputDirectory)
	}
}

func TestConfigValidate(t *testing.T) {
	tempDir := t.TempDir()
	formFile := filepath.Join(tempDir, "form.pdf")
	if err := os.WriteFile(formFile, []byte("%PDF-1.7"), 0o644); err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}

	withChange := func(change func(*Config)) *Config {
		cfg := DefaultConfig()
		cfg.OutputDirectory = tempDir
		change(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{
			name:   "valid config - stdio mode",
			config: withChange(func(*Config) {}),
		},
		{
			name:   "valid config - server mode",
			config: withChange(func(c *Config) { c.Mode = ModeServer; c.Port = 9090 }),
		},
		{
			name:   "valid config - form override",
			config: withChange(func(c *Config) { c.FormPath = formFile }),
		},
		{
			name:   "stdio mode ignores port",
			config: withChange(func(c *Config) { c.Port = 0 }),
		},
		{
			name:   "output directory is created",
			config: withChange(func(c *Config) { c.OutputDirectory = filepath.Join(tempDir, "new", "out") }),
		},
		{
			name:    "invalid mode",
			config:  withChange(func(c *Config) { c.Mode = "invalid" }),
			wantErr: "mode must be",
		},
		{
			name:    "invalid port - server mode",
			config:  withChange(func(c *Config) { c.Mode = ModeServer; c.Port = 70000 }),
			wantErr: "port must be",
		},
		{
			name:    "empty output directory",
			config:  withChange(func(c *Config) { c.OutputDirectory = "" }),
			wantErr: "output directory cannot be empty",
		},
		{
			name:    "missing form",
			config:  withChange(func(c *Config) { c.FormPath = filepath.Join(tempDir, "missing.pdf") }),
			wantErr: "cannot access form",
		},
		{
			name:    "form is a directory",
			config:  withChange(func(c *Config) { c.FormPath = tempDir }),
			wantErr: "form path is a directory",
		},
		{
			name:    "zero scale",
			config:  withChange(func(c *Config) { c.Scale = 0 }),
			wantErr: "scale must be positive",
		},
		{
			name:    "empty download name",
			config:  withChange(func(c *Config) { c.DownloadName = "" }),
			wantErr: "invalid download name",
		},
		{
			name:    "download name with directory",
			config:  withChange(func(c *Config) { c.DownloadName = "../out.pdf" }),
			wantErr: "invalid download name",
		},
		{
			name:    "negative revoke delay",
			config:  withChange(func(c *Config) { c.RevokeDelay = -time.Second }),
			wantErr: "revoke delay cannot be negative",
		},
		{
			name:    "zero max file size",
			config:  withChange(func(c *Config) { c.MaxFileSize = 0 }),
			wantErr: "maximum file size must be positive",
		},
		{
			name:    "invalid log level",
			config:  withChange(func(c *Config) { c.LogLevel = "verbose" }),
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "0.0.0.0"
	cfg.Port = 9000

	if got := cfg.Address(); got != "0.0.0.0:9000" {
		t.Errorf("Address() = %s, want 0.0.0.0:9000", got)
	}
	if !cfg.IsStdioMode() || cfg.IsServerMode() {
		t.Error("Expected stdio mode")
	}
	cfg.Mode = ModeServer
	if cfg.IsStdioMode() || !cfg.IsServerMode() {
		t.Error("Expected server mode")
	}
	if cfg.IsDebug() {
		t.Error("IsDebug() should be false for info level")
	}
	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("IsDebug() should be true for debug level")
	}

	s := cfg.String()
	for _, want := range []string{"Mode: server", "Port: 9000", "DownloadName: newFile.pdf", "RevokeDelay: 1.5s"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %s, missing %q", s, want)
		}
	}
}
