package tree

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/temirov/cdigest/internal/utils"
)

// ErrNotText reports file content that cannot be decoded as text.
var ErrNotText = errors.New("file content is not text")

// FileSystem is the read-only view of storage consumed by the Walker.
type FileSystem interface {
	// ListDir returns the entry names of a directory.
	ListDir(path string) ([]string, error)
	IsDir(path string) bool
	IsFile(path string) bool
	FileSize(path string) (int64, error)
	// ReadText returns the decoded content of a file or an error wrapping ErrNotText.
	ReadText(path string) (string, error)
	// RealPath resolves symbolic links in path.
	RealPath(path string) (string, error)
}

// OSFileSystem implements FileSystem on top of the operating system.
type OSFileSystem struct{}

// ListDir lists entry names of path.
func (OSFileSystem) ListDir(path string) ([]string, error) {
	directoryEntries, readDirectoryError := os.ReadDir(path)
	if readDirectoryError != nil {
		return nil, readDirectoryError
	}
	names := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		names = append(names, directoryEntry.Name())
	}
	return names, nil
}

// IsDir follows symbolic links.
func (OSFileSystem) IsDir(path string) bool {
	info, statError := os.Stat(path)
	return statError == nil && info.IsDir()
}

// IsFile follows symbolic links and reports regular files only.
func (OSFileSystem) IsFile(path string) bool {
	info, statError := os.Stat(path)
	return statError == nil && info.Mode().IsRegular()
}

// FileSize returns the size in bytes reported by the operating system.
func (OSFileSystem) FileSize(path string) (int64, error) {
	info, statError := os.Stat(path)
	if statError != nil {
		return 0, statError
	}
	return info.Size(), nil
}

// ReadText reads path and rejects content that is invalid UTF-8 or contains NUL bytes.
//
// #nosec G304
func (OSFileSystem) ReadText(path string) (string, error) {
	content, readError := os.ReadFile(path)
	if readError != nil {
		return "", readError
	}
	if utils.IsBinary(content) {
		return "", &os.PathError{Op: "decode", Path: path, Err: ErrNotText}
	}
	return string(content), nil
}

// RealPath resolves symbolic links.
func (OSFileSystem) RealPath(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}
