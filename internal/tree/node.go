// Package tree models an analyzed directory tree and builds it from a file system.
package tree

import (
	"path/filepath"
	"sort"
)

// NonTextContent replaces the content of files that could not be decoded as text.
const NonTextContent = "[Non-text file]"

// Kind distinguishes file nodes from directory nodes.
type Kind int

const (
	// KindFile marks a file node.
	KindFile Kind = iota
	// KindDirectory marks a directory node.
	KindDirectory
)

const (
	kindFileName      = "text_file"
	kindDirectoryName = "directory"
)

// String returns the serialized name of the kind.
func (kind Kind) String() string {
	if kind == KindDirectory {
		return kindDirectoryName
	}
	return kindFileName
}

// TokenCounter counts tokens in text. Implementations report failures as zero.
type TokenCounter interface {
	CountTokens(text string) int
}

// TokenCounterFunc adapts a function to TokenCounter.
type TokenCounterFunc func(text string) int

// CountTokens calls function(text).
func (function TokenCounterFunc) CountTokens(text string) int {
	return function(text)
}

// Node is one entry of an analyzed tree. Files carry Content, directories carry
// Children. A directory owns its children; parent is a back-reference used only
// to rebuild paths.
type Node struct {
	Name     string
	Kind     Kind
	Ignored  bool
	Content  string
	Children []*Node
	parent   *Node
}

// NewFile creates a file node.
func NewFile(name string, content string, ignored bool) *Node {
	return &Node{Name: name, Kind: KindFile, Content: content, Ignored: ignored}
}

// NewDirectory creates a directory node without children.
func NewDirectory(name string, ignored bool) *Node {
	return &Node{Name: name, Kind: KindDirectory, Ignored: ignored}
}

// AddChild appends child to the directory and sets its parent.
func (node *Node) AddChild(child *Node) {
	child.parent = node
	node.Children = append(node.Children, child)
}

// Parent returns the owning directory, or nil for the root.
func (node *Node) Parent() *Node {
	return node.parent
}

// IsDir reports whether the node is a directory.
func (node *Node) IsDir() bool {
	return node.Kind == KindDirectory
}

// IsText reports whether the node is a file whose content was decoded as text.
func (node *Node) IsText() bool {
	return node.Kind == KindFile && node.Content != NonTextContent
}

// Size returns the content length of a file, or the summed size of every
// descendant file of a directory. Ignored children are counted.
func (node *Node) Size() int64 {
	if node.Kind == KindFile {
		return int64(len(node.Content))
	}
	var total int64
	for _, child := range node.Children {
		total += child.Size()
	}
	return total
}

// FullPath joins the names from the root down to the node.
func (node *Node) FullPath() string {
	if node.parent == nil {
		return node.Name
	}
	return filepath.Join(node.parent.FullPath(), node.Name)
}

// AllChildren flattens every descendant in depth-first pre-order.
func (node *Node) AllChildren() []*Node {
	var descendants []*Node
	node.collect(func(*Node) bool { return true }, &descendants)
	return descendants
}

func (node *Node) collect(keep func(*Node) bool, descendants *[]*Node) {
	for _, child := range node.Children {
		if keep(child) {
			*descendants = append(*descendants, child)
		}
		if child.Kind == KindDirectory {
			child.collect(keep, descendants)
		}
	}
}

func (node *Node) filter(kind Kind, ignored bool) []*Node {
	var matches []*Node
	node.collect(func(candidate *Node) bool {
		return candidate.Kind == kind && candidate.Ignored == ignored
	}, &matches)
	return matches
}

// NonIgnoredFiles returns descendant files that are not marked ignored. Files
// below an ignored directory are included when they are not marked themselves.
func (node *Node) NonIgnoredFiles() []*Node {
	return node.filter(KindFile, false)
}

// IgnoredFiles returns descendant files marked ignored.
func (node *Node) IgnoredFiles() []*Node {
	return node.filter(KindFile, true)
}

// NonIgnoredDirectories returns descendant directories not marked ignored.
func (node *Node) NonIgnoredDirectories() []*Node {
	return node.filter(KindDirectory, false)
}

// IgnoredDirectories returns descendant directories marked ignored.
func (node *Node) IgnoredDirectories() []*Node {
	return node.filter(KindDirectory, true)
}

// NonIgnoredFileCount returns len(NonIgnoredFiles()).
func (node *Node) NonIgnoredFileCount() int {
	return len(node.NonIgnoredFiles())
}

// NonIgnoredDirectoryCount returns len(NonIgnoredDirectories()).
func (node *Node) NonIgnoredDirectoryCount() int {
	return len(node.NonIgnoredDirectories())
}

// NonIgnoredTextContentSize sums file content lengths, skipping every subtree
// whose root is ignored.
func (node *Node) NonIgnoredTextContentSize() int64 {
	if node.Kind == KindFile {
		return int64(len(node.Content))
	}
	var total int64
	for _, child := range node.Children {
		if child.Ignored {
			continue
		}
		total += child.NonIgnoredTextContentSize()
	}
	return total
}

// TotalTokens sums counter's token counts over file contents, skipping every
// subtree whose root is ignored. A nil counter counts nothing.
func (node *Node) TotalTokens(counter TokenCounter) int {
	if counter == nil {
		return 0
	}
	if node.Kind == KindFile {
		return counter.CountTokens(node.Content)
	}
	total := 0
	for _, child := range node.Children {
		if child.Ignored {
			continue
		}
		total += child.TotalTokens(counter)
	}
	return total
}

// LargestFiles returns at most count non-ignored descendant files ordered by
// size descending. Equal sizes keep traversal order.
func (node *Node) LargestFiles(count int) []*Node {
	return largest(node.NonIgnoredFiles(), count)
}

// LargestDirectories returns at most count non-ignored descendant directories
// ordered by size descending. Equal sizes keep traversal order.
func (node *Node) LargestDirectories(count int) []*Node {
	return largest(node.NonIgnoredDirectories(), count)
}

type sizedNode struct {
	node *Node
	size int64
}

func largest(candidates []*Node, count int) []*Node {
	if count <= 0 || len(candidates) == 0 {
		return nil
	}
	sized := make([]sizedNode, len(candidates))
	for index, candidate := range candidates {
		sized[index] = sizedNode{node: candidate, size: candidate.Size()}
	}
	sort.SliceStable(sized, func(left, right int) bool {
		return sized[left].size > sized[right].size
	})
	if count > len(sized) {
		count = len(sized)
	}
	result := make([]*Node, count)
	for index := range result {
		result[index] = sized[index].node
	}
	return result
}
