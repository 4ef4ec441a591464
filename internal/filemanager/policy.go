package filemanager

import (
	"path/filepath"
	"slices"
	"strings"
)

// DefaultMaxImportantFiles caps the important-file scan.
const DefaultMaxImportantFiles = 50

// NoExtension is the file_types key for files without an extension.
const NoExtension = "no_extension"

// defaultAllowedExtensions lists the text formats that may be read or written.
var defaultAllowedExtensions = []string{
	".txt", ".md", ".py", ".js", ".ts", ".json", ".yaml", ".yml",
	".html", ".css", ".sql", ".sh", ".bash", ".conf", ".cfg",
	".log", ".csv", ".xml", ".ini", ".toml", ".rst",
	".go", ".mod", ".sum",
}

// defaultExcludedDirs are never listed, scanned or counted.
var defaultExcludedDirs = []string{
	".git", ".svn", "__pycache__", "node_modules", ".venv",
	"venv", ".pytest_cache", ".mypy_cache", "dist", "build",
}

// priorityFiles are reported first when present at a root's top level.
var priorityFiles = []string{
	"README.md", "README.txt", "requirements.txt", "package.json",
	"setup.py", "Dockerfile", "docker-compose.yml", ".env.example",
	"config.py", "settings.py", "main.py", "app.py", "index.js",
	"go.mod", "main.go",
}

// DefaultAllowedExtensions returns a copy of the default extension allow-list.
func DefaultAllowedExtensions() []string {
	return slices.Clone(defaultAllowedExtensions)
}

// DefaultExcludedDirs returns a copy of the default excluded directory names.
func DefaultExcludedDirs() []string {
	return slices.Clone(defaultExcludedDirs)
}

// Policy holds the extension allow-list, the excluded directory names and the
// important-file limit. The zero value allows nothing; use NewPolicy or
// DefaultPolicy.
type Policy struct {
	allowedExtensions map[string]bool
	excludedDirs      map[string]bool
	MaxImportantFiles int
}

// NewPolicy builds a Policy. Extensions are matched case-insensitively and
// may be given with or without the leading dot.
func NewPolicy(extensions, excludedDirs []string, maxImportant int) Policy {
	p := Policy{
		allowedExtensions: make(map[string]bool, len(extensions)),
		excludedDirs:      make(map[string]bool, len(excludedDirs)),
		MaxImportantFiles: maxImportant,
	}

	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		p.allowedExtensions[ext] = true
	}

	for _, dir := range excludedDirs {
		if dir = strings.TrimSpace(dir); dir != "" {
			p.excludedDirs[dir] = true
		}
	}

	if p.MaxImportantFiles <= 0 {
		p.MaxImportantFiles = DefaultMaxImportantFiles
	}

	return p
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return NewPolicy(defaultAllowedExtensions, defaultExcludedDirs, DefaultMaxImportantFiles)
}

// AllowsFile reports whether name has an allow-listed extension.
func (p Policy) AllowsFile(name string) bool {
	return p.allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsExcludedDir reports whether a directory with this base name is excluded.
func (p Policy) IsExcludedDir(name string) bool {
	return p.excludedDirs[name]
}

// ExcludedDirs returns the excluded names, sorted.
func (p Policy) ExcludedDirs() []string {
	out := make([]string, 0, len(p.excludedDirs))
	for name := range p.excludedDirs {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// extensionKey returns the lower-cased extension used in file_types.
func extensionKey(name string) string {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		return ext
	}
	return NoExtension
}
