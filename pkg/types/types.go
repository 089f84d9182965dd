// Package types contains the shared value types and interfaces used
// across the tidy engine. It has no dependencies on other tidy packages
// to avoid circular imports.
package types

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// FS abstracts the filesystem operations the engine performs so that
// tests can run against an in-memory implementation.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	Open(name string) (fs.File, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Mutations
	Rename(oldpath, newpath string) error
	Remove(name string) error
	RemoveAll(path string) error
}

// FileEntry is the engine's view of a single file. It is recomputed per
// operation and never persisted.
type FileEntry struct {
	Path     string            // absolute path
	Size     int64             // size in bytes
	ModTime  time.Time         // modification time
	Ext      string            // extension, lower-cased, without the dot
	IsDir    bool              // whether the entry is a directory
	Metadata map[string]string // extracted metadata, nil until requested
}

// NewFileEntry builds a FileEntry from a path and its FileInfo.
func NewFileEntry(path string, info fs.FileInfo) FileEntry {
	return FileEntry{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Ext:     strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")),
		IsDir:   info.IsDir(),
	}
}
