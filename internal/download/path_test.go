package download

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewPathValidator(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name      string
		dir       string
		wantError bool
	}{
		{name: "valid directory", dir: tempDir},
		{name: "empty directory", dir: "", wantError: true},
		{name: "non-existent directory", dir: filepath.Join(tempDir, "later")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator, err := NewPathValidator(tt.dir)
			if tt.wantError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if validator.Directory() != tt.dir {
				t.Errorf("Directory() = %q, want %q", validator.Directory(), tt.dir)
			}
		})
	}
}

func TestPathValidator_ResolveFileName(t *testing.T) {
	tempDir := t.TempDir()
	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	absDir, err := filepath.Abs(tempDir)
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}

	tests := []struct {
		name      string
		fileName  string
		want      string
		wantError bool
	}{
		{name: "plain name", fileName: "newFile.pdf", want: filepath.Join(absDir, "newFile.pdf")},
		{name: "name with spaces", fileName: "arret de travail.pdf", want: filepath.Join(absDir, "arret de travail.pdf")},
		{name: "empty name", fileName: "", wantError: true},
		{name: "dot", fileName: ".", wantError: true},
		{name: "parent", fileName: "..", wantError: true},
		{name: "traversal", fileName: "../escape.pdf", wantError: true},
		{name: "subdirectory", fileName: "sub/file.pdf", wantError: true},
		{name: "backslash", fileName: `sub\file.pdf`, wantError: true},
		{name: "absolute", fileName: "/etc/passwd", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.ResolveFileName(tt.fileName)
			if tt.wantError {
				if !errors.Is(err, ErrInvalidName) {
					t.Errorf("Expected ErrInvalidName, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveFileName(%q) = %q, want %q", tt.fileName, got, tt.want)
			}
		})
	}
}

func TestPathValidator_IsPathWithinDirectory(t *testing.T) {
	tempDir := t.TempDir()
	outsideDir := t.TempDir()

	validator, err := NewPathValidator(tempDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	link := filepath.Join(tempDir, "link.pdf")
	target := filepath.Join(outsideDir, "target.pdf")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create target: %v", err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("Symlinks not supported: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "directory itself", path: tempDir, want: true},
		{name: "file inside", path: filepath.Join(tempDir, "a.pdf"), want: true},
		{name: "file outside", path: filepath.Join(outsideDir, "a.pdf"), want: false},
		{name: "symlink escaping", path: link, want: false},
		{name: "sibling with shared prefix", path: tempDir + "-other", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.IsPathWithinDirectory(tt.path)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsPathWithinDirectory(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
