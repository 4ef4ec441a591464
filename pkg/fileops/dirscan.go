package fileops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// DirectoryScanOptions configures the behavior of directory scanning operations.
type DirectoryScanOptions struct {
	// SkipUnreadableDirs determines whether to skip directories that cannot be read
	// or to return an error. Setting to true makes scanning more resilient.
	SkipUnreadableDirs bool

	// SkipDirs contains directory names that are never descended into nor
	// reported. These are exact matches against directory names (not full paths).
	SkipDirs []string

	// FileFilter is an optional function that determines whether a file should be included.
	// If nil, all files are included.
	FileFilter func(filename string) bool
}

// FileInfo represents information about a discovered entry during directory scanning.
type FileInfo struct {
	// Name is the base name without path components
	Name string

	// Path is the relative path from the scan root to this entry
	Path string

	// AbsPath is the scan root joined with Path
	AbsPath string

	// IsDir indicates whether this entry represents a directory
	IsDir bool

	// Size is the size in bytes; symlinks report the size of their target
	Size int64

	// ModTime is the last modification time
	ModTime time.Time

	// Mode contains the file mode and permission bits
	Mode os.FileMode
}

// WalkFunc is called for every reported entry. Returning fs.SkipDir for a
// directory prunes it; returning fs.SkipAll ends the walk without error. Any
// other error aborts the walk and is returned from Walk.
type WalkFunc func(entry FileInfo) error

// SecureDirectoryScanner provides breadth-first directory scanning confined
// to an os.Root, so neither ".." entries nor symlinks can lead the scan
// outside the directory it was created for.
type SecureDirectoryScanner struct {
	// root defines the security boundary for scanning operations
	root *os.Root

	// opts contains the scanning configuration
	opts *DirectoryScanOptions

	// scanRoot stores the absolute path of the scan root
	scanRoot string
}

// NewDirectoryScanner creates a new secure directory scanner for the given path.
// It fails only when the starting path itself is unusable: empty, missing, not
// a directory or not openable.
//
// Usage example:
//
//	scanner, err := fileops.NewDirectoryScanner("/project", &fileops.DirectoryScanOptions{
//	    SkipUnreadableDirs: true,
//	    SkipDirs:           []string{".git", "node_modules"},
//	})
//	if err != nil {
//	    return fmt.Errorf("failed to create scanner: %w", err)
//	}
//	defer scanner.Close()
func NewDirectoryScanner(scanPath string, opts *DirectoryScanOptions) (*SecureDirectoryScanner, error) {
	if opts == nil {
		opts = getDefaultScanOptions()
	}

	if strings.TrimSpace(scanPath) == "" {
		return nil, fmt.Errorf("scan path cannot be empty")
	}

	absPath, err := CleanAbs(scanPath)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve scan path: %w", err)
	}

	if err := ValidateDirectory(absPath); err != nil {
		return nil, fmt.Errorf("cannot scan path: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("cannot create secure scan root: %w", err)
	}

	return &SecureDirectoryScanner{
		root:     root,
		opts:     opts,
		scanRoot: absPath,
	}, nil
}

// getDefaultScanOptions returns sensible default scanning options.
func getDefaultScanOptions() *DirectoryScanOptions {
	return &DirectoryScanOptions{
		SkipUnreadableDirs: true,
		SkipDirs:           getDefaultSkipDirs(),
	}
}

// getDefaultSkipDirs returns commonly skipped directory names.
func getDefaultSkipDirs() []string {
	return []string{
		".git",
		".svn",
		"__pycache__",
		"node_modules",
		".venv",
		"venv",
		".pytest_cache",
		".mypy_cache",
		"dist",
		"build",
	}
}

// Close releases resources associated with the scanner.
func (s *SecureDirectoryScanner) Close() error {
	if s.root != nil {
		err := s.root.Close()
		s.root = nil
		return err
	}
	return nil
}

// Walk visits the tree breadth-first. Entries of one directory are reported
// in name order before any of its subdirectories are opened. Directories named
// in SkipDirs are neither reported nor descended. Symlinks are followed only
// when their target stays inside the root; symlinked directories are reported
// but not descended, which rules out cycles.
func (s *SecureDirectoryScanner) Walk(fn WalkFunc) error {
	if s.root == nil {
		return fmt.Errorf("scanner has been closed")
	}

	queue := []string{"."}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		entries, err := s.readDir(current)
		if err != nil {
			if s.opts.SkipUnreadableDirs {
				continue
			}
			return fmt.Errorf("failed to read directory %s: %w", current, err)
		}

		for _, entry := range entries {
			entryPath := filepath.Join(current, entry.Name())

			info, descend, ok := s.describe(entry, entryPath)
			if !ok {
				continue
			}

			if info.IsDir && s.shouldSkipDirectory(info.Name) {
				continue
			}
			if !info.IsDir && !s.shouldIncludeFile(info.Name) {
				continue
			}

			err := fn(info)
			switch {
			case errors.Is(err, fs.SkipAll):
				return nil
			case errors.Is(err, fs.SkipDir):
				continue
			case err != nil:
				return err
			}

			if descend {
				queue = append(queue, entryPath)
			}
		}
	}

	return nil
}

func (s *SecureDirectoryScanner) readDir(relativePath string) ([]os.DirEntry, error) {
	dir, err := s.root.Open(relativePath)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	entries, err := dir.ReadDir(-1)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(entries, func(a, b os.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, nil
}

// describe builds the FileInfo for one entry. ok is false when the entry
// cannot be described (vanished, unreadable, or a symlink leaving the root).
func (s *SecureDirectoryScanner) describe(entry os.DirEntry, entryPath string) (info FileInfo, descend bool, ok bool) {
	stat, err := s.root.Lstat(entryPath)
	if err != nil {
		return FileInfo{}, false, false
	}

	isLink := stat.Mode()&os.ModeSymlink != 0
	if isLink {
		// Root.Stat refuses targets that escape the root.
		stat, err = s.root.Stat(entryPath)
		if err != nil {
			return FileInfo{}, false, false
		}
	}

	return FileInfo{
		Name:    entry.Name(),
		Path:    entryPath,
		AbsPath: filepath.Join(s.scanRoot, entryPath),
		IsDir:   stat.IsDir(),
		Size:    stat.Size(),
		ModTime: stat.ModTime(),
		Mode:    stat.Mode(),
	}, stat.IsDir() && !isLink, true
}

// shouldSkipDirectory determines if a directory should be skipped based on configured rules.
func (s *SecureDirectoryScanner) shouldSkipDirectory(dirName string) bool {
	return slices.Contains(s.opts.SkipDirs, dirName)
}

// shouldIncludeFile determines if a file should be included based on configured rules.
func (s *SecureDirectoryScanner) shouldIncludeFile(fileName string) bool {
	if s.opts.FileFilter != nil {
		return s.opts.FileFilter(fileName)
	}
	return true
}
