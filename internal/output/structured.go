package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/cdigest/internal/tree"
)

const (
	jsonFileExtension = ".json"
	yamlFileExtension = ".yaml"

	indentPrefix = ""
	indentSpacer = "  "
	yamlIndent   = 2

	encodeDocumentErrorFormat = "encode %s document: %w"
)

// Document is the serialized form of an analysis.
type Document struct {
	Project        string       `json:"project" yaml:"project"`
	ModulePath     string       `json:"module_path,omitempty" yaml:"module_path,omitempty"`
	IgnorePatterns []string     `json:"ignore_patterns" yaml:"ignore_patterns"`
	Tree           NodeDocument `json:"tree" yaml:"tree"`
}

// NodeDocument is the dictionary form of a node. Files carry Content,
// directories carry aggregates and Children.
type NodeDocument struct {
	Name                      string         `json:"name" yaml:"name"`
	Type                      string         `json:"type" yaml:"type"`
	Size                      int64          `json:"size" yaml:"size"`
	IsIgnored                 bool           `json:"is_ignored" yaml:"is_ignored"`
	Content                   *string        `json:"content,omitempty" yaml:"content,omitempty"`
	NonIgnoredTextContentSize *int64         `json:"non_ignored_text_content_size,omitempty" yaml:"non_ignored_text_content_size,omitempty"`
	TotalTokens               *int           `json:"total_tokens,omitempty" yaml:"total_tokens,omitempty"`
	FileCount                 *int           `json:"file_count,omitempty" yaml:"file_count,omitempty"`
	DirCount                  *int           `json:"dir_count,omitempty" yaml:"dir_count,omitempty"`
	Children                  []NodeDocument `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewNodeDocument converts node and its subtree.
func NewNodeDocument(node *tree.Node, counter tree.TokenCounter) NodeDocument {
	document := NodeDocument{
		Name:      node.Name,
		Type:      node.Kind.String(),
		Size:      node.Size(),
		IsIgnored: node.Ignored,
	}
	if !node.IsDir() {
		content := node.Content
		document.Content = &content
		return document
	}
	textSize := node.NonIgnoredTextContentSize()
	totalTokens := node.TotalTokens(counter)
	fileCount := node.NonIgnoredFileCount()
	directoryCount := node.NonIgnoredDirectoryCount()
	document.NonIgnoredTextContentSize = &textSize
	document.TotalTokens = &totalTokens
	document.FileCount = &fileCount
	document.DirCount = &directoryCount
	document.Children = make([]NodeDocument, 0, len(node.Children))
	for _, child := range node.Children {
		document.Children = append(document.Children, NewNodeDocument(child, counter))
	}
	return document
}

type structuredFormatter struct {
	options  Options
	encoding string
}

func (formatter structuredFormatter) FileExtension() string {
	if formatter.encoding == FormatYAML {
		return yamlFileExtension
	}
	return jsonFileExtension
}

func (formatter structuredFormatter) Format(root *tree.Node, patterns []string) (string, error) {
	document := Document{
		Project:        root.Name,
		ModulePath:     formatter.options.ModulePath,
		IgnorePatterns: append([]string{}, patterns...),
		Tree:           NewNodeDocument(root, formatter.options.TokenCounter),
	}
	if formatter.encoding == FormatYAML {
		return encodeYAML(document)
	}
	encoded, encodeError := json.MarshalIndent(document, indentPrefix, indentSpacer)
	if encodeError != nil {
		return "", fmt.Errorf(encodeDocumentErrorFormat, FormatJSON, encodeError)
	}
	return string(encoded) + "\n", nil
}

func encodeYAML(document Document) (string, error) {
	var buffer strings.Builder
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(yamlIndent)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return "", fmt.Errorf(encodeDocumentErrorFormat, FormatYAML, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return "", fmt.Errorf(encodeDocumentErrorFormat, FormatYAML, closeError)
	}
	return buffer.String(), nil
}
