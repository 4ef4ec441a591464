package fileops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideDirectory is returned when a path does not live under the
// directory it was checked against.
var ErrOutsideDirectory = errors.New("path is not within base directory")

// ValidatePathSecurity performs static checks on a caller-supplied path.
//
// The function validates:
//   - Empty or whitespace-only paths
//   - Embedded NUL bytes, which the OS would silently truncate at
//
// It does not reject ".." segments: callers are expected to canonicalize the
// path with CanonicalPath and then test containment with IsWithinDirectory.
//
// Usage example:
//
//	if err := fileops.ValidatePathSecurity(input); err != nil {
//	    return err
//	}
func ValidatePathSecurity(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains null bytes")
	}

	return nil
}

// CleanAbs converts path to a clean absolute path. All "." and ".." segments
// are resolved lexically. A leading "~" is an ordinary path component.
func CleanAbs(path string) (string, error) {
	if err := ValidatePathSecurity(path); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve absolute path: %w", err)
	}

	return filepath.Clean(abs), nil
}

// CanonicalPath returns the absolute, cleaned form of path with every symlink
// in its longest existing prefix resolved. Components that do not exist yet
// (for example the target of a pending write) are appended unchanged, so the
// result is well defined for paths that will only be created later.
//
// Usage example:
//
//	canonical, err := fileops.CanonicalPath("/project/../project/link/new.txt")
//	if err != nil {
//	    return err
//	}
func CanonicalPath(path string) (string, error) {
	abs, err := CleanAbs(path)
	if err != nil {
		return "", err
	}

	existing := abs
	var rest []string

	for {
		resolved, err := filepath.EvalSymlinks(existing)
		if err == nil {
			parts := append([]string{resolved}, rest...)
			return filepath.Join(parts...), nil
		}

		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("cannot resolve %s: %w", existing, err)
		}

		parent := filepath.Dir(existing)
		if parent == existing {
			// Nothing along the path exists, not even the volume root.
			return abs, nil
		}

		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}
}

// IsWithinDirectory reports whether path equals baseDir or is one of its
// descendants. Both arguments must already be clean absolute paths; the test
// is done per path component, so "/data-old" is not inside "/data".
func IsWithinDirectory(path, baseDir string) bool {
	rel, err := filepath.Rel(baseDir, path)
	if err != nil {
		return false
	}

	if rel == "." {
		return true
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// ValidateDirectory checks that path exists and is a directory.
func ValidateDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", path)
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	return nil
}

// ExpandPath expands a path that starts with "~/" to the user's home directory.
//
// Usage example:
//
//	expanded := fileops.ExpandPath("~/projects/app")
//	// Returns something like "/home/user/projects/app"
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
