// Package clipboard copies produced documents to the system clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnavailable reports that no clipboard utility was found on this system.
var ErrUnavailable = errors.New("system clipboard is unavailable")

// Copier places text on a clipboard.
type Copier interface {
	Copy(text string) error
}

// SystemCopier writes to the operating system clipboard through
// github.com/atotto/clipboard.
type SystemCopier struct{}

// NewSystemCopier returns a Copier backed by the operating system clipboard.
func NewSystemCopier() *SystemCopier {
	return &SystemCopier{}
}

// Copy replaces the clipboard contents with text.
func (copier *SystemCopier) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	return clipboard.WriteAll(text)
}

var _ Copier = (*SystemCopier)(nil)
