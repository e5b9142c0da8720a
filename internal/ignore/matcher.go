// Package ignore decides whether paths are excluded by gitignore-style patterns.
//
// Patterns follow gitignore semantics: a pattern without "/" matches a path
// segment at any depth, a pattern containing "/" is anchored at the base
// directory, a trailing "/" restricts the pattern to directories, "**" spans
// zero or more segments, and "*" and "?" never cross a "/". Patterns form a
// union: a path is ignored when any pattern matches it. Negated ("!") patterns
// are accepted but never re-include a path.
package ignore

import (
	"path/filepath"
	"strings"

	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/temirov/cdigest/internal/utils"
)

const (
	commentPrefix        = "#"
	pathSegmentSeparator = "/"
	currentDirectory     = "."
	parentDirectory      = ".."
)

// Matcher evaluates paths against a compiled pattern set rooted at a base directory.
type Matcher struct {
	basePath string
	patterns []gitignore.Pattern
}

// NewMatcher compiles patterns relative to basePath. Blank and comment entries
// are discarded. Malformed patterns compile but never match.
func NewMatcher(basePath string, patterns []string) *Matcher {
	absoluteBasePath, absoluteError := filepath.Abs(basePath)
	if absoluteError != nil {
		absoluteBasePath = filepath.Clean(basePath)
	}
	compiledPatterns := make([]gitignore.Pattern, 0, len(patterns))
	for _, pattern := range ActivePatterns(patterns) {
		compiledPatterns = append(compiledPatterns, gitignore.ParsePattern(pattern, nil))
	}
	return &Matcher{basePath: absoluteBasePath, patterns: compiledPatterns}
}

// ActivePatterns returns the patterns that take part in matching, dropping
// blank lines and "#" comments while preserving order.
func ActivePatterns(patterns []string) []string {
	active := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" || strings.HasPrefix(trimmedPattern, commentPrefix) {
			continue
		}
		active = append(active, trimmedPattern)
	}
	return active
}

// BasePath returns the absolute directory patterns are anchored to.
func (matcher *Matcher) BasePath() string {
	return matcher.basePath
}

// Match reports whether path should be ignored. The base directory itself and
// paths outside of it are never ignored.
func (matcher *Matcher) Match(path string, isDir bool) bool {
	if matcher == nil || len(matcher.patterns) == 0 {
		return false
	}
	segments := matcher.relativeSegments(path)
	if len(segments) == 0 {
		return false
	}
	for _, pattern := range matcher.patterns {
		if pattern.Match(segments, isDir) == gitignore.Exclude {
			return true
		}
	}
	return false
}

func (matcher *Matcher) relativeSegments(path string) []string {
	absolutePath := path
	if !filepath.IsAbs(absolutePath) {
		absolutePath = filepath.Join(matcher.basePath, path)
	}
	relativePath := utils.RelativePathOrSelf(absolutePath, matcher.basePath)
	if relativePath == currentDirectory || filepath.IsAbs(relativePath) {
		return nil
	}
	if relativePath == parentDirectory || strings.HasPrefix(relativePath, parentDirectory+pathSegmentSeparator) {
		return nil
	}
	return strings.Split(relativePath, pathSegmentSeparator)
}

// ShouldIgnore is the stateless form of Matcher.Match: it compiles patterns
// against basePath and evaluates a single path.
func ShouldIgnore(path string, basePath string, patterns []string, isDir bool) bool {
	return NewMatcher(basePath, patterns).Match(path, isDir)
}
