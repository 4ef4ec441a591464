// Package fileops provides the low-level filesystem primitives the server is
// built on: path canonicalization and containment checks, symlink inspection,
// confined breadth-first directory scanning and atomic file replacement.
//
// # Containment
//
// Paths coming from a remote caller are never compared as strings. They are
// made absolute, cleaned, and have the symlinks of their longest existing
// prefix resolved before a per-component containment test:
//
//	canonical, err := fileops.CanonicalPath(input)
//	if err != nil {
//	    return err
//	}
//	if !fileops.IsWithinDirectory(canonical, root) {
//	    return fileops.ErrOutsideDirectory
//	}
//
// # Scanning
//
// SecureDirectoryScanner walks a tree breadth-first inside an os.Root, pruning
// directory names from its skip list and skipping entries it cannot read:
//
//	scanner, err := fileops.NewDirectoryScanner(root, opts)
//	if err != nil {
//	    return err
//	}
//	defer scanner.Close()
//	err = scanner.Walk(func(entry fileops.FileInfo) error {
//	    fmt.Println(entry.Path)
//	    return nil
//	})
//
// # Atomic Operations
//
// AtomicWriteFile replaces a file through a temporary sibling and a rename,
// so concurrent readers never observe a truncated file.
package fileops
