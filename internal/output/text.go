package output

import (
	"strings"

	"github.com/temirov/cdigest/internal/tree"
)

const (
	textFileExtension     = ".txt"
	markdownFileExtension = ".md"

	projectHeaderPrefix = "Parsed codebase for the project: "
	moduleHeaderPrefix  = "Go module: "
)

type textFormatter struct {
	options Options
}

func (textFormatter) FileExtension() string {
	return textFileExtension
}

func (formatter textFormatter) Format(root *tree.Node, patterns []string) (string, error) {
	var builder strings.Builder
	builder.WriteString(projectHeaderPrefix + root.Name + "\n")
	if formatter.options.ModulePath != "" {
		builder.WriteString(moduleHeaderPrefix + formatter.options.ModulePath + "\n")
	}
	builder.WriteString("\n\nDirectory Structure:\n")
	builder.WriteString(LLMTreeString(root))
	builder.WriteString("\n\nSummary\n\n")
	builder.WriteString(SummaryString(root, formatter.options.TokenCounter))
	builder.WriteString("Ignore summary:\n")
	builder.WriteString(IgnoredFilesSummary(root, patterns))
	builder.WriteString("Files:\n\n")
	for _, entry := range ContentEntries(root) {
		builder.WriteString("File: " + entry.Path + "\n")
		builder.WriteString("---\n")
		builder.WriteString("Content:\n")
		builder.WriteString(entry.Content)
		builder.WriteString("\n\n")
	}
	return builder.String(), nil
}

type markdownFormatter struct {
	options Options
}

func (markdownFormatter) FileExtension() string {
	return markdownFileExtension
}

func (formatter markdownFormatter) Format(root *tree.Node, patterns []string) (string, error) {
	var builder strings.Builder
	builder.WriteString("# " + projectHeaderPrefix + root.Name + "\n\n")
	if formatter.options.ModulePath != "" {
		builder.WriteString(moduleHeaderPrefix + "`" + formatter.options.ModulePath + "`\n\n")
	}
	builder.WriteString("\n## Directory Structure\n")
	builder.WriteString(LLMTreeString(root))
	builder.WriteString("\n## Summary\n")
	builder.WriteString(SummaryString(root, formatter.options.TokenCounter))
	builder.WriteString("\n## Ignore summary:\n")
	builder.WriteString(IgnoredFilesSummary(root, patterns))
	builder.WriteString("\n## Files:\n")
	for _, entry := range ContentEntries(root) {
		fence := codeFence(entry.Content)
		builder.WriteString("### " + entry.Path + "\n\n")
		builder.WriteString(fence + "\n" + entry.Content + "\n" + fence + "\n\n")
	}
	return builder.String(), nil
}

// codeFence returns a backtick fence longer than any backtick run in content.
func codeFence(content string) string {
	const minimumFenceLength = 3
	longestRun, currentRun := 0, 0
	for _, character := range content {
		if character == '`' {
			currentRun++
			if currentRun > longestRun {
				longestRun = currentRun
			}
			continue
		}
		currentRun = 0
	}
	fenceLength := minimumFenceLength
	if longestRun >= fenceLength {
		fenceLength = longestRun + 1
	}
	return strings.Repeat("`", fenceLength)
}
