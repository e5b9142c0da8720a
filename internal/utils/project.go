package utils

import (
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// DetectModulePath returns the module path declared by go.mod in rootDirectory.
// An empty string is returned when the file is absent or cannot be parsed.
func DetectModulePath(rootDirectory string) string {
	goModPath := filepath.Join(rootDirectory, GoModFileName)
	// #nosec G304
	content, readError := os.ReadFile(goModPath)
	if readError != nil {
		return ""
	}
	return modfile.ModulePath(content)
}
