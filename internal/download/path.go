package download

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator keeps download targets inside an output directory
type PathValidator struct {
	directory string
}

// NewPathValidator creates a validator for directory. The directory does not need to exist yet.
func NewPathValidator(directory string) (*PathValidator, error) {
	if directory == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}
	return &PathValidator{directory: directory}, nil
}

// Directory returns the output directory
func (v *PathValidator) Directory() string {
	return v.directory
}

// ResolveFileName returns the absolute location of a download named name.
// Names carrying directories or resolving outside the output directory are rejected.
func (v *PathValidator) ResolveFileName(name string) (string, error) {
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}

	absDir, err := filepath.Abs(v.directory)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory: %w", err)
	}
	location := filepath.Join(absDir, name)

	within, err := v.IsPathWithinDirectory(location)
	if err != nil {
		return "", fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return "", fmt.Errorf("%w: %q is outside the output directory", ErrInvalidName, name)
	}
	return location, nil
}

// IsPathWithinDirectory checks whether path lies inside the output directory,
// following symlinks on both sides.
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	absDir, err := filepath.Abs(v.directory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve output directory: %w", err)
	}

	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(absDir)

	realPath := cleanPath
	if info, err := os.Lstat(cleanPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
			realPath = resolved
		}
	}
	realDir := cleanDir
	if resolved, err := filepath.EvalSymlinks(cleanDir); err == nil {
		realDir = resolved
	}

	within := func(p string) bool {
		for _, dir := range []string{cleanDir, realDir} {
			if p == dir || strings.HasPrefix(p, dir+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}

	return within(cleanPath) && within(realPath), nil
}
