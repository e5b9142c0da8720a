package output

import (
	"fmt"
	"strings"

	"github.com/temirov/cdigest/internal/tree"
	"github.com/temirov/cdigest/internal/utils"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	ignoredStatusSuffix  = " [Status: IGNORED]"
	fileSizeSuffixFormat = " (%d bytes)"

	// LargestEntriesCount is the number of files and directories listed in summaries.
	LargestEntriesCount = 10

	noLargeFilesMessage       = "No large files found."
	noLargeDirectoriesMessage = "No large directories found."
	largestEntryLineFormat    = "%s- %s (%s kB)\n"
)

// FileContent is one file emitted in the contents section of a document.
type FileContent struct {
	Path    string
	Content string
}

// TreeString renders node as a box-drawing tree. Ignored nodes and their
// subtrees are skipped unless showIgnored is set.
func TreeString(node *tree.Node, showSize bool, showIgnored bool) string {
	var builder strings.Builder
	writeTreeNode(&builder, node, "", true, showSize, showIgnored)
	return builder.String()
}

func writeTreeNode(builder *strings.Builder, node *tree.Node, prefix string, isLast bool, showSize bool, showIgnored bool) {
	if node.Ignored && !showIgnored {
		return
	}
	connector, childPadding := treeBranchConnector, treeBranchPadding
	if isLast {
		connector, childPadding = treeLastConnector, treeLastPadding
	}
	builder.WriteString(prefix + connector + node.Name)
	if showSize && !node.IsDir() {
		fmt.Fprintf(builder, fileSizeSuffixFormat, node.Size())
	}
	if node.Ignored {
		builder.WriteString(ignoredStatusSuffix)
	}
	builder.WriteString("\n")
	if !node.IsDir() {
		return
	}
	children := node.Children
	if !showIgnored {
		children = visibleChildren(children)
	}
	for index, child := range children {
		writeTreeNode(builder, child, prefix+childPadding, index == len(children)-1, showSize, showIgnored)
	}
}

func visibleChildren(children []*tree.Node) []*tree.Node {
	visible := make([]*tree.Node, 0, len(children))
	for _, child := range children {
		if !child.Ignored {
			visible = append(visible, child)
		}
	}
	return visible
}

// LLMTreeString renders one "- <full path>" line per non-ignored node, with a
// trailing "/" for directories and the byte size for files.
func LLMTreeString(node *tree.Node) string {
	var builder strings.Builder
	writeLLMTreeNode(&builder, node)
	return builder.String()
}

func writeLLMTreeNode(builder *strings.Builder, node *tree.Node) {
	if node.Ignored {
		return
	}
	builder.WriteString("- " + node.FullPath())
	if node.IsDir() {
		builder.WriteString("/\n")
		for _, child := range node.Children {
			writeLLMTreeNode(builder, child)
		}
		return
	}
	fmt.Fprintf(builder, fileSizeSuffixFormat+"\n", node.Size())
}

// ContentEntries lists non-ignored text files in tree order. Files below an
// ignored directory are included when they are not marked themselves.
func ContentEntries(root *tree.Node) []FileContent {
	var entries []FileContent
	for _, fileNode := range root.NonIgnoredFiles() {
		if !fileNode.IsText() {
			continue
		}
		entries = append(entries, FileContent{Path: fileNode.FullPath(), Content: fileNode.Content})
	}
	return entries
}

// SummaryString renders the statistics block of a document.
func SummaryString(root *tree.Node, counter tree.TokenCounter) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "- Total files: %d\n", root.NonIgnoredFileCount())
	fmt.Fprintf(&builder, "- Total directories: %d\n", root.NonIgnoredDirectoryCount())
	fmt.Fprintf(&builder, "- Total text file size (including ignored): %s KB\n", utils.FormatKilobytes(root.Size()))
	fmt.Fprintf(&builder, "- Total tokens: %d\n", root.TotalTokens(counter))
	fmt.Fprintf(&builder, "- Analyzed text content size: %s KB\n\n", utils.FormatKilobytes(root.NonIgnoredTextContentSize()))
	builder.WriteString("Top largest non-ignored files:\n")
	builder.WriteString(LargestEntriesString(root.LargestFiles(LargestEntriesCount), noLargeFilesMessage, ""))
	builder.WriteString("\n")
	builder.WriteString("Top largest non-ignored directories:\n")
	builder.WriteString(LargestEntriesString(root.LargestDirectories(LargestEntriesCount), noLargeDirectoriesMessage, ""))
	builder.WriteString("\n")
	return builder.String()
}

// LargestEntriesString lists nodes with their size in kilobytes, or
// emptyMessage when there are none.
func LargestEntriesString(nodes []*tree.Node, emptyMessage string, prefix string) string {
	if len(nodes) == 0 {
		return prefix + emptyMessage + "\n"
	}
	var builder strings.Builder
	for _, node := range nodes {
		fmt.Fprintf(&builder, largestEntryLineFormat, prefix, node.FullPath(), utils.FormatKilobytes(node.Size()))
	}
	return builder.String()
}

// IgnoredFilesSummary reports how many files were ignored and which patterns applied.
func IgnoredFilesSummary(root *tree.Node, patterns []string) string {
	var builder strings.Builder
	builder.WriteString("During the analysis, some files were ignored:\n")
	fmt.Fprintf(&builder, "- No of files ignored during parsing: %d\n", len(root.IgnoredFiles()))
	fmt.Fprintf(&builder, "- Patterns used to ignore files: %s\n", PatternList(patterns))
	return builder.String()
}

// PatternList renders patterns as "{a, b}" in lexical order.
func PatternList(patterns []string) string {
	uniquePatterns := make(map[string]struct{}, len(patterns))
	for _, pattern := range patterns {
		uniquePatterns[pattern] = struct{}{}
	}
	return "{" + strings.Join(utils.SortedPatternSet(uniquePatterns), ", ") + "}"
}
