package ignore_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/temirov/cdigest/internal/ignore"
)

const testBasePath = "/test"

type matchCase struct {
	name     string
	path     string
	isDir    bool
	expected bool
}

func runMatchCases(t *testing.T, patterns []string, testCases []matchCase) {
	t.Helper()
	matcher := ignore.NewMatcher(testBasePath, patterns)
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			actual := matcher.Match(filepath.FromSlash(testCase.path), testCase.isDir)
			if actual != testCase.expected {
				t.Fatalf("patterns %v, path %s (dir=%v): expected %v, got %v", patterns, testCase.path, testCase.isDir, testCase.expected, actual)
			}
		})
	}
}

func TestMatchBasenamePattern(t *testing.T) {
	runMatchCases(t, []string{"test.txt"}, []matchCase{
		{name: "exact basename", path: "/test/test.txt", expected: true},
		{name: "other basename", path: "/test/other.txt", expected: false},
	})
}

func TestMatchBasenameGlobAtAnyDepth(t *testing.T) {
	runMatchCases(t, []string{"*.tmp"}, []matchCase{
		{name: "root level", path: "/test/c.tmp", expected: true},
		{name: "nested", path: "/test/a/b/c.tmp", expected: true},
		{name: "different extension", path: "/test/a/b/c.txt", expected: false},
	})
}

func TestMatchRelativePathPattern(t *testing.T) {
	runMatchCases(t, []string{"sub/test.txt"}, []matchCase{
		{name: "exact relative path", path: "/test/sub/test.txt", expected: true},
		{name: "sibling file", path: "/test/sub/other.txt", expected: false},
		{name: "same basename at root", path: "/test/test.txt", expected: false},
	})
}

func TestMatchDirectoryOnlyPattern(t *testing.T) {
	runMatchCases(t, []string{"sub/"}, []matchCase{
		{name: "directory", path: "/test/sub", isDir: true, expected: true},
		{name: "file with similar name", path: "/test/sub.txt", expected: false},
		{name: "file named like the directory", path: "/test/sub", isDir: false, expected: false},
		{name: "descendant", path: "/test/sub/inner.go", expected: true},
	})
}

func TestMatchRecursiveWildcard(t *testing.T) {
	runMatchCases(t, []string{"**/logs", "**/*.tmp"}, []matchCase{
		{name: "logs at root", path: "/test/logs", isDir: true, expected: true},
		{name: "nested logs", path: "/test/sub/logs", isDir: true, expected: true},
		{name: "nested tmp", path: "/test/sub/file.tmp", expected: true},
		{name: "nested txt", path: "/test/sub/file.txt", expected: false},
	})
}

func TestMatchMidPatternRecursiveWildcard(t *testing.T) {
	runMatchCases(t, []string{"docs/**/draft.md"}, []matchCase{
		{name: "zero segments", path: "/test/docs/draft.md", expected: true},
		{name: "many segments", path: "/test/docs/a/b/draft.md", expected: true},
		{name: "outside anchor", path: "/test/other/draft.md", expected: false},
	})
}

func TestMatchSingleSegmentWildcardsDoNotCrossSeparator(t *testing.T) {
	runMatchCases(t, []string{"src/*.go", "file?.txt"}, []matchCase{
		{name: "direct child", path: "/test/src/main.go", expected: true},
		{name: "grandchild", path: "/test/src/inner/main.go", expected: false},
		{name: "question mark", path: "/test/file1.txt", expected: true},
		{name: "question mark needs one character", path: "/test/file.txt", expected: false},
	})
}

func TestMatchAnchoredDirectoryPattern(t *testing.T) {
	const projectBase = "/Users/dev/workspace/repo-analysis-app"
	matcher := ignore.NewMatcher(projectBase, []string{"/.next/"})
	deepFile := filepath.FromSlash(projectBase + "/.next/static/chunks/pages/_app-6a626577ffa902a4.js")
	if !matcher.Match(deepFile, false) {
		t.Fatalf("expected file inside anchored directory to be ignored")
	}
	if matcher.Match(filepath.FromSlash(projectBase+"/src/.next"), true) {
		t.Fatalf("anchored pattern must not match nested directory")
	}
}

func TestMatchEmptyAndCommentPatterns(t *testing.T) {
	runMatchCases(t, []string{"", "# Comment only", "   "}, []matchCase{
		{name: "nothing ignored", path: "/test/file.txt", expected: false},
	})
}

func TestMatchMalformedPatternFailsOpen(t *testing.T) {
	runMatchCases(t, []string{"[unclosed", "*.log"}, []matchCase{
		{name: "malformed pattern does not match", path: "/test/[unclosed", expected: false},
		{name: "other patterns still apply", path: "/test/debug.log", expected: true},
	})
}

func TestMatchNegationDoesNotReinclude(t *testing.T) {
	runMatchCases(t, []string{"*.log", "!keep.log"}, []matchCase{
		{name: "negated path stays ignored", path: "/test/keep.log", expected: true},
		{name: "negation alone ignores nothing", path: "/test/keep.txt", expected: false},
	})
}

func TestMatchBaseAndOutsidePaths(t *testing.T) {
	runMatchCases(t, []string{"*"}, []matchCase{
		{name: "base itself", path: "/test", isDir: true, expected: false},
		{name: "outside base", path: "/elsewhere/file.txt", expected: false},
		{name: "inside base", path: "/test/file.txt", expected: true},
	})
}

func TestMatchIsOrderIndependent(t *testing.T) {
	forward := ignore.NewMatcher(testBasePath, []string{"build/", "*.pyc", "docs/*.md"})
	reverse := ignore.NewMatcher(testBasePath, []string{"docs/*.md", "*.pyc", "build/"})
	paths := []struct {
		path  string
		isDir bool
	}{
		{path: "/test/build", isDir: true},
		{path: "/test/a/b.pyc"},
		{path: "/test/docs/readme.md"},
		{path: "/test/main.go"},
	}
	for _, candidate := range paths {
		nativePath := filepath.FromSlash(candidate.path)
		first := forward.Match(nativePath, candidate.isDir)
		if first != reverse.Match(nativePath, candidate.isDir) {
			t.Fatalf("order changed the result for %s", candidate.path)
		}
		if first != forward.Match(nativePath, candidate.isDir) {
			t.Fatalf("repeated evaluation changed the result for %s", candidate.path)
		}
	}
}

func TestShouldIgnore(t *testing.T) {
	if !ignore.ShouldIgnore(filepath.FromSlash("/test/a/b.pyc"), testBasePath, []string{"*.pyc"}, false) {
		t.Fatalf("expected *.pyc to ignore a nested file")
	}
	if ignore.ShouldIgnore(filepath.FromSlash("/test/a/b.py"), testBasePath, []string{"*.pyc"}, false) {
		t.Fatalf("did not expect *.pyc to ignore a .py file")
	}
}

func TestActivePatterns(t *testing.T) {
	actual := ignore.ActivePatterns([]string{"", "#comment", " *.log ", "build/"})
	expected := []string{"*.log", "build/"}
	if !reflect.DeepEqual(actual, expected) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}
