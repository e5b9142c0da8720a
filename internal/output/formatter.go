// Package output renders analyzed trees as documents and console reports.
package output

import (
	"fmt"
	"strings"

	"github.com/temirov/cdigest/internal/tree"
)

const (
	// FormatText renders a plain-text document.
	FormatText = "text"
	// FormatMarkdown renders a markdown document.
	FormatMarkdown = "markdown"
	// FormatJSON renders the node dictionary as JSON.
	FormatJSON = "json"
	// FormatYAML renders the node dictionary as YAML.
	FormatYAML = "yaml"

	unsupportedFormatErrorFormat = "unsupported output format %q (expected one of %s)"
)

// SupportedFormats lists the accepted format names.
var SupportedFormats = []string{FormatText, FormatMarkdown, FormatJSON, FormatYAML}

// Formatter turns an analyzed tree into a document.
type Formatter interface {
	// FileExtension returns the extension, including the dot, of written documents.
	FileExtension() string
	Format(root *tree.Node, patterns []string) (string, error)
}

// Options carry data shared by every formatter.
type Options struct {
	// TokenCounter counts tokens for summary blocks. Nil counts nothing.
	TokenCounter tree.TokenCounter
	// ModulePath is the Go module path of the analyzed project, if any.
	ModulePath string
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, options Options) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FormatText:
		return textFormatter{options: options}, nil
	case FormatMarkdown:
		return markdownFormatter{options: options}, nil
	case FormatJSON:
		return structuredFormatter{options: options, encoding: FormatJSON}, nil
	case FormatYAML:
		return structuredFormatter{options: options, encoding: FormatYAML}, nil
	default:
		return nil, fmt.Errorf(unsupportedFormatErrorFormat, name, strings.Join(SupportedFormats, ", "))
	}
}

// DefaultOutputFileName returns "<directory>_codebase_dump<extension>".
func DefaultOutputFileName(directoryName string, formatter Formatter) string {
	return directoryName + "_codebase_dump" + formatter.FileExtension()
}

// EstimateOutputSize approximates the document size in bytes: non-ignored text,
// plus 100 bytes of structure per non-ignored file, plus 1000 bytes of summary.
func EstimateOutputSize(root *tree.Node) int64 {
	const (
		bytesPerFile   = 100
		bytesOfSummary = 1000
	)
	return root.NonIgnoredTextContentSize() + int64(root.NonIgnoredFileCount())*bytesPerFile + bytesOfSummary
}
