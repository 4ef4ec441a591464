package fileops

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")

	if err := AtomicWriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("second"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile overwrite failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestAtomicWriteFile_PreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on Windows")
	}

	path := filepath.Join(t.TempDir(), "script.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh"), 0755); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := AtomicWriteFile(path, []byte("#!/bin/sh\necho hi"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}
}

func TestAtomicWriteFile_Errors(t *testing.T) {
	dir := t.TempDir()

	if err := AtomicWriteFile(dir, []byte("x"), 0644); err == nil {
		t.Error("writing over a directory should fail")
	}
	if err := AtomicWriteFile(filepath.Join(dir, "missing", "f.txt"), []byte("x"), 0644); err == nil {
		t.Error("writing into a missing directory should fail")
	}
}

func TestEnsureDirectoryExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")

	if err := EnsureDirectoryExists(path); err != nil {
		t.Fatalf("EnsureDirectoryExists failed: %v", err)
	}
	if err := EnsureDirectoryExists(path); err != nil {
		t.Fatalf("second EnsureDirectoryExists failed: %v", err)
	}
	if err := ValidateDirectory(path); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}
