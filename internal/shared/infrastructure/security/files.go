// Package security guards file access for template import and export.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// forbiddenChars are shell metacharacters rejected in user-supplied paths.
const forbiddenChars = ";&|$`(){}<>!\n\r"

// ErrPathEscapesDir is returned when a path resolves outside its base directory.
var ErrPathEscapesDir = errors.New("file path escapes base directory")

// CleanPath validates a user-supplied path and returns it absolute, with
// symlinks resolved when the file exists.
func CleanPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("file path cannot be empty")
	}
	if i := strings.IndexAny(path, forbiddenChars); i >= 0 {
		return "", fmt.Errorf("file path contains forbidden character %q", path[i])
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	return resolved, nil
}

// CleanPathInDir is CleanPath plus a check that the result stays inside baseDir.
func CleanPathInDir(path, baseDir string) (string, error) {
	if baseDir == "" {
		return "", errors.New("base directory cannot be empty")
	}

	clean, err := CleanPath(path)
	if err != nil {
		return "", err
	}
	base, err := CleanPath(baseDir)
	if err != nil {
		return "", err
	}

	if clean != base && !strings.HasPrefix(clean, base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is not within %s", ErrPathEscapesDir, path, baseDir)
	}
	return clean, nil
}

// ReadFile reads a file after validating its path.
func ReadFile(path string) ([]byte, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is validated above
	return os.ReadFile(clean)
}

// WriteFile writes data with owner-only permissions after validating the path.
func WriteFile(path string, data []byte) error {
	clean, err := CleanPath(path)
	if err != nil {
		return err
	}
	return os.WriteFile(clean, data, 0o600)
}
