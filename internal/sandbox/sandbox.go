// Package sandbox decides whether a path is reachable from the registered
// project roots.
package sandbox

import (
	"fmt"

	"fsserver/internal/fserr"
	"fsserver/internal/logging"
	"fsserver/pkg/fileops"
)

// Root is a registered directory. Path is the cleaned absolute form reported
// to callers; Canonical has its symlinks resolved and is used for containment.
type Root struct {
	Path      string
	Canonical string
}

// Sandbox holds an immutable, ordered set of roots. It is safe for concurrent use.
type Sandbox struct {
	roots []Root
}

// New registers paths as roots, in order. Every path must exist and be a
// directory. Duplicate roots are registered once.
func New(paths ...string) (*Sandbox, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one root directory is required")
	}

	s := &Sandbox{}
	seen := make(map[string]bool, len(paths))

	for _, p := range paths {
		abs, err := fileops.CleanAbs(p)
		if err != nil {
			return nil, fmt.Errorf("invalid root %q: %w", p, err)
		}

		if err := fileops.ValidateDirectory(abs); err != nil {
			logging.Error("Invalid root directory", "path", abs, "error", err)
			return nil, fmt.Errorf("invalid root %q: %w", p, err)
		}

		canonical, err := fileops.CanonicalPath(abs)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve root %q: %w", p, err)
		}

		if seen[canonical] {
			continue
		}
		seen[canonical] = true

		s.roots = append(s.roots, Root{Path: abs, Canonical: canonical})
		logging.Info("Root directory registered", "path", abs)
	}

	return s, nil
}

// Roots returns the registered roots in registration order.
func (s *Sandbox) Roots() []Root {
	out := make([]Root, len(s.roots))
	copy(out, s.roots)
	return out
}

// Paths returns the registered root paths in registration order.
func (s *Sandbox) Paths() []string {
	out := make([]string, len(s.roots))
	for i, r := range s.roots {
		out[i] = r.Path
	}
	return out
}

// Primary returns the first registered root.
func (s *Sandbox) Primary() string {
	return s.roots[0].Path
}

// Allowed reports whether path, once made absolute and canonical, equals or
// lies below at least one root.
func (s *Sandbox) Allowed(path string) bool {
	_, err := s.Resolve(path)
	return err == nil
}

// Resolve returns the cleaned absolute form of path when it is allowed.
// Paths outside every root yield a permission_denied OperationError, and
// malformed paths an invalid_argument one.
func (s *Sandbox) Resolve(path string) (string, error) {
	abs, err := fileops.CleanAbs(path)
	if err != nil {
		return "", fserr.Wrap(fserr.InvalidArgument, err, "Invalid path")
	}

	if _, ok := s.RootOf(abs); !ok {
		logging.Debug("Path outside sandbox", "path", abs)
		return "", fserr.ErrAccessDenied
	}
	return abs, nil
}

// RootOf returns the first root containing the canonical form of path. ok
// is false when path is outside every root or cannot be canonicalized.
func (s *Sandbox) RootOf(path string) (root Root, ok bool) {
	canonical, err := fileops.CanonicalPath(path)
	if err != nil {
		logging.Debug("Cannot canonicalize path", "path", path, "error", err)
		return Root{}, false
	}
	for _, r := range s.roots {
		if fileops.IsWithinDirectory(canonical, r.Canonical) {
			return r, true
		}
	}
	return Root{}, false
}
