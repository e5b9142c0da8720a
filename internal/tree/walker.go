package tree

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/temirov/cdigest/internal/utils"
)

// MaximumDepth bounds recursion regardless of Options.MaxDepth.
const MaximumDepth = 512

const (
	resolveRootPathErrorFormat = "resolve path %s: %w"
	walkInterruptedErrorFormat = "walk interrupted at %s: %w"

	listDirectoryWarningMessage   = "unable to list directory, treating it as empty"
	readFileWarningMessage        = "unable to read file, skipping it"
	directoryCycleWarningMessage  = "directory already visited on this branch, not descending"
	depthCeilingWarningMessage    = "maximum depth reached, not descending"
	unsupportedEntryDebugMessage  = "skipping entry that is neither a file nor a directory"
	largeFilesIgnoredDebugMessage = "ignored largest files"

	pathLogField  = "path"
	countLogField = "count"
	depthLogField = "depth"
)

// IgnoreMatcher decides whether a path is excluded.
type IgnoreMatcher interface {
	Match(path string, isDir bool) bool
}

// Options tune a walk.
type Options struct {
	// IgnoreTopFiles marks the N largest non-ignored files of every directory as ignored.
	IgnoreTopFiles int
	// MaxDepth is the deepest directory level whose entries are listed; the root is
	// level 0. Directories below it become leaves. A negative value is unbounded.
	MaxDepth int
}

// UnboundedDepth disables the MaxDepth limit.
const UnboundedDepth = -1

// DefaultOptions walks the whole tree without ignoring large files.
func DefaultOptions() Options {
	return Options{MaxDepth: UnboundedDepth}
}

// Walker builds trees from a FileSystem.
type Walker struct {
	fileSystem FileSystem
	logger     *zap.Logger
}

// NewWalker returns a Walker reading from fileSystem, or from the operating
// system when fileSystem is nil.
func NewWalker(fileSystem FileSystem, logger *zap.Logger) *Walker {
	if fileSystem == nil {
		fileSystem = OSFileSystem{}
	}
	return &Walker{fileSystem: fileSystem, logger: utils.LoggerOrNop(logger)}
}

// AnalyzeDirectory walks path and returns its tree. Unreadable directories,
// including path itself, become empty directory nodes and unreadable files are
// left out. The only error is a cancelled ctx, returned together with the tree
// built so far.
func (walker *Walker) AnalyzeDirectory(ctx context.Context, path string, matcher IgnoreMatcher, options Options) (*Node, error) {
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return NewDirectory(filepath.Base(path), false), fmt.Errorf(resolveRootPathErrorFormat, path, absoluteError)
	}
	root := NewDirectory(filepath.Base(absolutePath), false)
	state := &walkState{
		matcher:   matcher,
		options:   options,
		ancestors: make(map[string]struct{}),
	}
	state.enter(walker.realPath(absolutePath))
	walkError := walker.walkDirectory(ctx, state, root, absolutePath, 0)
	return root, walkError
}

type walkState struct {
	matcher   IgnoreMatcher
	options   Options
	ancestors map[string]struct{}
}

func (state *walkState) enter(realPath string) {
	state.ancestors[realPath] = struct{}{}
}

func (state *walkState) leave(realPath string) {
	delete(state.ancestors, realPath)
}

func (state *walkState) visited(realPath string) bool {
	_, exists := state.ancestors[realPath]
	return exists
}

func (state *walkState) ignored(path string, isDir bool) bool {
	if state.matcher == nil {
		return false
	}
	return state.matcher.Match(path, isDir)
}

func (state *walkState) descends(depth int) bool {
	return state.options.MaxDepth < 0 || depth <= state.options.MaxDepth
}

func (walker *Walker) walkDirectory(ctx context.Context, state *walkState, directory *Node, directoryPath string, depth int) error {
	if contextError := ctx.Err(); contextError != nil {
		return fmt.Errorf(walkInterruptedErrorFormat, directoryPath, contextError)
	}

	entryNames, listError := walker.fileSystem.ListDir(directoryPath)
	if listError != nil {
		walker.logger.Warn(listDirectoryWarningMessage, zap.String(pathLogField, directoryPath), zap.Error(listError))
		return nil
	}
	sortedNames := append([]string(nil), entryNames...)
	sort.Strings(sortedNames)

	for _, entryName := range sortedNames {
		entryPath := filepath.Join(directoryPath, entryName)
		switch {
		case walker.fileSystem.IsDir(entryPath):
			subdirectory := NewDirectory(entryName, state.ignored(entryPath, true))
			directory.AddChild(subdirectory)
			if walkError := walker.descend(ctx, state, subdirectory, entryPath, depth+1); walkError != nil {
				return walkError
			}
		case walker.fileSystem.IsFile(entryPath):
			fileNode, readable := walker.readFile(entryPath, entryName, state.ignored(entryPath, false))
			if readable {
				directory.AddChild(fileNode)
			}
		default:
			walker.logger.Debug(unsupportedEntryDebugMessage, zap.String(pathLogField, entryPath))
		}
	}

	if state.options.IgnoreTopFiles > 0 {
		walker.ignoreLargestFiles(directory, directoryPath, state.options.IgnoreTopFiles)
	}
	return nil
}

func (walker *Walker) descend(ctx context.Context, state *walkState, directory *Node, directoryPath string, depth int) error {
	if !state.descends(depth) {
		return nil
	}
	if depth > MaximumDepth {
		walker.logger.Warn(depthCeilingWarningMessage, zap.String(pathLogField, directoryPath), zap.Int(depthLogField, depth))
		return nil
	}
	realPath := walker.realPath(directoryPath)
	if state.visited(realPath) {
		walker.logger.Warn(directoryCycleWarningMessage, zap.String(pathLogField, directoryPath))
		return nil
	}
	state.enter(realPath)
	defer state.leave(realPath)
	return walker.walkDirectory(ctx, state, directory, directoryPath, depth)
}

// readFile returns false when the file cannot be read for reasons other than
// its content not being text.
func (walker *Walker) readFile(filePath string, fileName string, ignored bool) (*Node, bool) {
	if _, sizeError := walker.fileSystem.FileSize(filePath); sizeError != nil {
		walker.logger.Warn(readFileWarningMessage, zap.String(pathLogField, filePath), zap.Error(sizeError))
		return nil, false
	}
	content, readError := walker.fileSystem.ReadText(filePath)
	if readError != nil {
		if !errors.Is(readError, ErrNotText) {
			walker.logger.Warn(readFileWarningMessage, zap.String(pathLogField, filePath), zap.Error(readError))
			return nil, false
		}
		content = NonTextContent
	}
	return NewFile(fileName, content, ignored), true
}

func (walker *Walker) realPath(path string) string {
	resolvedPath, resolveError := walker.fileSystem.RealPath(path)
	if resolveError != nil {
		return filepath.Clean(path)
	}
	return resolvedPath
}

// ignoreLargestFiles marks the count largest non-ignored immediate files of
// directory as ignored.
func (walker *Walker) ignoreLargestFiles(directory *Node, directoryPath string, count int) {
	var candidates []*Node
	for _, child := range directory.Children {
		if child.Kind == KindFile && !child.Ignored {
			candidates = append(candidates, child)
		}
	}
	largestFiles := largest(candidates, count)
	for _, fileNode := range largestFiles {
		fileNode.Ignored = true
	}
	if len(largestFiles) > 0 {
		walker.logger.Debug(largeFilesIgnoredDebugMessage, zap.String(pathLogField, directoryPath), zap.Int(countLogField, len(largestFiles)))
	}
}
