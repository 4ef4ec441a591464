package filemanager

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"fsserver/internal/fserr"
	"fsserver/internal/logging"
	"fsserver/internal/sandbox"
	"fsserver/pkg/fileops"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// largestFilesLimit is the number of entries kept in Stats.LargestFiles.
const largestFilesLimit = 10

// FileManager enumerates and describes files below the sandbox roots. Every
// method taking a caller-supplied path checks it against the sandbox first.
type FileManager struct {
	sandbox *sandbox.Sandbox
	policy  Policy
	logger  *logging.AppLogger
}

// NewFileManager creates a FileManager over sb using policy.
func NewFileManager(sb *sandbox.Sandbox, policy Policy, logger *logging.AppLogger) *FileManager {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &FileManager{
		sandbox: sb,
		policy:  policy,
		logger:  logger,
	}
}

// Sandbox returns the sandbox the manager is confined to.
func (fm *FileManager) Sandbox() *sandbox.Sandbox {
	return fm.sandbox
}

// resolve applies the sandbox to a caller-supplied path.
func (fm *FileManager) resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fserr.ErrPathRequired
	}
	return fm.sandbox.Resolve(path)
}

// Info returns the FileInfo of an allowed path.
func (fm *FileManager) Info(path string) (FileInfo, error) {
	abs, err := fm.resolve(path)
	if err != nil {
		return FileInfo{}, err
	}
	return statInfo(abs)
}

// statInfo follows symlinks, so a link reports its target's size and type.
func statInfo(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fserr.FromFS(err, path)
	}
	return newFileInfo(path, st), nil
}

func newFileInfo(path string, st fs.FileInfo) FileInfo {
	return FileInfo{
		Name:        filepath.Base(path),
		Path:        path,
		Size:        st.Size(),
		Modified:    st.ModTime().Local().Format(time.RFC3339),
		IsDirectory: st.IsDir(),
		MimeType:    MimeType(path),
	}
}

// Children lists the immediate children of dir whose names are not excluded,
// sorted by name. Entries that cannot be read, and symlinks pointing outside
// the sandbox, carry an Error instead of their stat fields. dir must already
// be resolved.
func (fm *FileManager) Children(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fserr.FromFS(err, dir)
	}

	items := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if fm.policy.IsExcludedDir(entry.Name()) {
			continue
		}

		itemPath := filepath.Join(dir, entry.Name())

		// A link leaving the sandbox must not leak its target's metadata.
		if entry.Type()&fs.ModeSymlink != 0 {
			if err := fileops.ValidateSymlinkSecurity(itemPath, fm.sandbox.Paths()); err != nil {
				fm.logger.Debug("Hiding symlink target", "path", itemPath, "error", err)
				items = append(items, FileInfo{Name: entry.Name(), Path: itemPath, Error: fserr.ErrAccessDenied.Error()})
				continue
			}
		}

		info, err := statInfo(itemPath)
		if err != nil {
			fm.logger.Debug("Cannot stat directory entry", "path", itemPath, "error", err)
			info = FileInfo{Name: entry.Name(), Path: itemPath, Error: err.Error()}
		}
		items = append(items, info)
	}

	return items, nil
}

// ListDirectory lists an allowed directory.
func (fm *FileManager) ListDirectory(path string) (DirectoryListing, error) {
	abs, err := fm.resolve(path)
	if err != nil {
		return DirectoryListing{}, err
	}

	if err := requireDirectory(abs); err != nil {
		return DirectoryListing{}, err
	}

	items, err := fm.Children(abs)
	if err != nil {
		return DirectoryListing{}, err
	}

	return DirectoryListing{Directory: abs, Items: items}, nil
}

func requireDirectory(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fserr.ErrNotADirectory
		}
		return fserr.FromFS(err, path)
	}
	if !st.IsDir() {
		return fserr.ErrNotADirectory
	}
	return nil
}

// Stats walks the subtree below an allowed directory, pruning excluded
// directories. Entries that cannot be read are skipped.
func (fm *FileManager) Stats(path string) (Stats, error) {
	start := time.Now()
	defer fm.logger.LogPerformance("file_stats", start)

	abs, err := fm.resolve(path)
	if err != nil {
		return Stats{}, err
	}
	if err := requireDirectory(abs); err != nil {
		return Stats{}, err
	}

	scanner, err := fm.newScanner(abs)
	if err != nil {
		return Stats{}, fserr.FromFS(err, abs)
	}
	defer scanner.Close()

	stats := Stats{FileTypes: map[string]int{}}
	var files []SizedFile

	err = scanner.Walk(func(entry fileops.FileInfo) error {
		if entry.IsDir {
			stats.TotalDirectories++
			return nil
		}

		stats.TotalFiles++
		stats.TotalSize += entry.Size
		stats.FileTypes[extensionKey(entry.Name)]++
		files = append(files, SizedFile{Path: entry.AbsPath, Size: entry.Size})
		return nil
	})
	if err != nil {
		return Stats{}, fserr.Wrap(fserr.IO, err, "Cannot walk %s", abs)
	}

	// Stable so that equal sizes keep walk order.
	slices.SortStableFunc(files, func(a, b SizedFile) int {
		switch {
		case a.Size > b.Size:
			return -1
		case a.Size < b.Size:
			return 1
		}
		return 0
	})
	if len(files) > largestFilesLimit {
		files = files[:largestFilesLimit]
	}
	stats.LargestFiles = append([]SizedFile{}, files...)

	return stats, nil
}

func (fm *FileManager) newScanner(dir string) (*fileops.SecureDirectoryScanner, error) {
	return fileops.NewDirectoryScanner(dir, &fileops.DirectoryScanOptions{
		SkipUnreadableDirs: true,
		SkipDirs:           fm.policy.ExcludedDirs(),
	})
}

// checkFile applies the sandbox and the extension allow-list.
func (fm *FileManager) checkFile(path string) (string, error) {
	abs, err := fm.resolve(path)
	if err != nil {
		return "", err
	}
	if !fm.policy.AllowsFile(abs) {
		return "", fserr.ErrFileTypeNotAllowed
	}
	return abs, nil
}

// ReadText reads an allowed, allow-listed file as text. A UTF-8 byte order
// mark is dropped and invalid sequences become U+FFFD.
func (fm *FileManager) ReadText(path string) (string, error) {
	abs, err := fm.checkFile(path)
	if err != nil {
		return "", err
	}
	return readDecoded(abs)
}

func readDecoded(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fserr.FromFS(err, path)
	}

	text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", fserr.Wrap(fserr.IO, err, "Cannot decode %s", path)
	}
	return string(text), nil
}

// WriteText replaces the content of an allowed, allow-listed file, creating
// missing parent directories. Readers see either the old or the new content.
func (fm *FileManager) WriteText(path, content string) (string, error) {
	abs, err := fm.checkFile(path)
	if err != nil {
		return "", err
	}

	if err := fileops.EnsureDirectoryExists(filepath.Dir(abs)); err != nil {
		return "", fserr.FromFS(err, filepath.Dir(abs))
	}

	if err := fileops.AtomicWriteFile(abs, []byte(content), 0644); err != nil {
		return "", fserr.FromFS(err, abs)
	}

	fm.logger.Info("File written", "path", abs, "bytes", len(content))
	return abs, nil
}

// Describe returns the resource description of a file of the given size.
func (fm *FileManager) Describe(path string, size int64) string {
	desc := fmt.Sprintf("File size: %d bytes", size)
	if summary := markdownDescription(path); summary != "" {
		return summary + " - " + desc
	}
	return desc
}
