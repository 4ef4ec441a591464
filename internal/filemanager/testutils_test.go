package filemanager

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"fsserver/internal/logging"
	"fsserver/internal/sandbox"
)

// File and Directory Operations

// createTempTestDir creates a temporary directory with symlinks resolved, so
// paths reported by the manager compare equal to the ones built in tests.
func createTempTestDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	return dir
}

// createTestFile creates a test file with specified content
func createTestFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
	return path
}

// createTempDirStructure creates a directory structure from a map. Keys ending
// in "/" are directories.
func createTempDirStructure(t *testing.T, structure map[string]string) string {
	t.Helper()

	tempDir := createTempTestDir(t)

	for path, content := range structure {
		fullPath := filepath.Join(tempDir, path)

		if strings.HasSuffix(path, "/") {
			if err := os.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", path, err)
			}
			continue
		}
		createTestFile(t, tempDir, path, content)
	}

	return tempDir
}

// readFileContent reads and returns file content
func readFileContent(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// isWindows returns true if running on Windows
func isWindows() bool {
	return runtime.GOOS == "windows"
}

// Test Object Creation

// createTestLogger creates a test logger instance
func createTestLogger() *logging.AppLogger {
	logger, _ := logging.NewTestLogger()
	return logger
}

// newTestManager builds a FileManager with the default policy over roots.
func newTestManager(t *testing.T, roots ...string) *FileManager {
	t.Helper()
	sb, err := sandbox.New(roots...)
	if err != nil {
		t.Fatalf("failed to create sandbox: %v", err)
	}
	return NewFileManager(sb, DefaultPolicy(), createTestLogger())
}

// createTestSymlink creates a symbolic link with platform-aware error handling
func createTestSymlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		if isWindows() {
			t.Skipf("symlink creation failed on Windows: %v", err)
		}
		t.Fatalf("failed to create symlink: %v", err)
	}
}
