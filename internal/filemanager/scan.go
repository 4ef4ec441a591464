package filemanager

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"fsserver/internal/fserr"
	"fsserver/pkg/fileops"

	"github.com/bmatcuk/doublestar/v4"
)

// ImportantFiles returns up to Policy.MaxImportantFiles absolute paths below
// root: the priority files present at its top level first, then allow-listed
// files in breadth-first order with excluded directories pruned. Priority
// files that resolve outside the sandbox are left out. Unreadable
// entries are skipped; only an unusable root is an error.
func (fm *FileManager) ImportantFiles(root string) ([]string, error) {
	limit := fm.policy.MaxImportantFiles
	files := make([]string, 0, limit)
	seen := make(map[string]bool, limit)

	for _, name := range priorityFiles {
		if len(files) >= limit {
			return files, nil
		}
		path := filepath.Join(root, name)
		if !fm.sandbox.Allowed(path) {
			fm.logger.Debug("Skipping priority file outside sandbox", "path", path)
			continue
		}
		if st, err := os.Stat(path); err == nil && st.Mode().IsRegular() {
			files = append(files, path)
			seen[path] = true
		}
	}

	scanner, err := fm.newScanner(root)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory scanner: %w", err)
	}
	defer scanner.Close()

	err = scanner.Walk(func(entry fileops.FileInfo) error {
		if len(files) >= limit {
			return fs.SkipAll
		}
		if entry.IsDir || seen[entry.AbsPath] || !fm.policy.AllowsFile(entry.Name) {
			return nil
		}
		files = append(files, entry.AbsPath)
		seen[entry.AbsPath] = true
		return nil
	})
	if err != nil {
		fm.logger.Warn("Important file scan stopped early", "root", root, "error", err)
	}

	fm.logger.Debug("Scanned important files", "root", root, "fileCount", len(files))
	return files, nil
}

// Search looks for files whose base name matches the glob "*pattern*" under
// every root, in root order, then, when inContent is set and the quota is not
// yet met, for important files whose text contains pattern case-insensitively.
// It stops once maxResults hits are collected.
func (fm *FileManager) Search(pattern string, inContent bool, maxResults int) ([]SearchResult, error) {
	if maxResults <= 0 {
		return nil, fserr.New(fserr.InvalidArgument, "max_results must be positive, got %d", maxResults)
	}

	glob := "*" + pattern + "*"
	if !doublestar.ValidatePattern(glob) {
		return nil, fserr.New(fserr.InvalidArgument, "Invalid search pattern: %s", pattern)
	}

	results := make([]SearchResult, 0)
	found := make(map[string]bool)

	for _, root := range fm.sandbox.Paths() {
		if len(results) >= maxResults {
			break
		}

		fm.searchNames(root, glob, maxResults, &results, found)

		if inContent && len(results) < maxResults {
			fm.searchContent(root, pattern, maxResults, &results, found)
		}
	}

	return results, nil
}

func (fm *FileManager) searchNames(root, glob string, maxResults int, results *[]SearchResult, found map[string]bool) {
	scanner, err := fm.newScanner(root)
	if err != nil {
		fm.logger.Error("Search failed for root", "root", root, "error", err)
		return
	}
	defer scanner.Close()

	err = scanner.Walk(func(entry fileops.FileInfo) error {
		if len(*results) >= maxResults {
			return fs.SkipAll
		}
		if entry.IsDir || !fm.policy.AllowsFile(entry.Name) {
			return nil
		}

		matched, err := doublestar.Match(glob, entry.Name)
		if err != nil || !matched || !fm.sandbox.Allowed(entry.AbsPath) {
			return nil
		}

		info, err := statInfo(entry.AbsPath)
		if err != nil {
			return nil
		}

		*results = append(*results, SearchResult{Path: entry.AbsPath, MatchType: MatchFilename, Info: info})
		found[entry.AbsPath] = true
		return nil
	})
	if err != nil {
		fm.logger.Error("Search failed for root", "root", root, "error", err)
	}
}

func (fm *FileManager) searchContent(root, pattern string, maxResults int, results *[]SearchResult, found map[string]bool) {
	candidates, err := fm.ImportantFiles(root)
	if err != nil {
		fm.logger.Error("Content search failed for root", "root", root, "error", err)
		return
	}

	needle := strings.ToLower(pattern)
	for _, path := range candidates {
		if len(*results) >= maxResults {
			return
		}
		if found[path] || !fm.sandbox.Allowed(path) {
			continue
		}

		text, err := readDecoded(path)
		if err != nil || !strings.Contains(strings.ToLower(text), needle) {
			continue
		}

		info, err := statInfo(path)
		if err != nil {
			continue
		}

		*results = append(*results, SearchResult{Path: path, MatchType: MatchContent, Info: info})
		found[path] = true
	}
}
