package types

import (
	"io/fs"
)

// FS is the filesystem surface used by manifest loading, workspace discovery
// and input globbing. Paths are native paths; Glob patterns use forward slashes.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error

	// Glob expands a doublestar pattern relative to root and returns the
	// matched paths relative to root, in walk order.
	Glob(root, pattern string) ([]string, error)
}
