package fileops

import (
	"fmt"
	"os"
	"path/filepath"
)

// IsSymlink checks if a given path is a symbolic link.
// This function uses lstat to examine the file without following symlinks.
//
// Usage example:
//
//	isLink, err := fileops.IsSymlink("/path/to/potential/symlink")
//	if err != nil {
//	    return fmt.Errorf("failed to check symlink: %w", err)
//	}
func IsSymlink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat path: %w", err)
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}

// ResolveSymlink resolves a symbolic link and returns the final target path.
// Chains are followed until a non-symlink target is reached.
func ResolveSymlink(linkPath string) (string, error) {
	resolved, err := filepath.EvalSymlinks(linkPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve symlink: %w", err)
	}
	return resolved, nil
}

// ValidateSymlinkSecurity validates that a symlink resolves to a location
// inside one of allowedBasePaths. A target elsewhere yields an error wrapping
// ErrOutsideDirectory.
//
// The function checks:
//   - Symlink exists and is actually a symlink
//   - Symlink can be resolved (not broken, no loop)
//   - Resolved target is within one of the allowed base paths
//
// Usage example:
//
//	err := fileops.ValidateSymlinkSecurity("/project/docs", []string{"/project"})
//	if err != nil {
//	    return fmt.Errorf("symlink security check failed: %w", err)
//	}
func ValidateSymlinkSecurity(linkPath string, allowedBasePaths []string) error {
	isLink, err := IsSymlink(linkPath)
	if err != nil {
		return fmt.Errorf("cannot check if path is symlink: %w", err)
	}
	if !isLink {
		return fmt.Errorf("path is not a symbolic link: %s", linkPath)
	}

	resolved, err := ResolveSymlink(linkPath)
	if err != nil {
		return fmt.Errorf("symlink resolution failed: %w", err)
	}

	for _, basePath := range allowedBasePaths {
		baseCanonical, err := CanonicalPath(basePath)
		if err != nil {
			continue
		}

		if IsWithinDirectory(resolved, baseCanonical) {
			return nil
		}
	}

	return fmt.Errorf("%w: symlink target is not within any allowed base path: %s", ErrOutsideDirectory, resolved)
}
