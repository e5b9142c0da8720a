package utils_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/temirov/cdigest/internal/utils"
)

// TestDeduplicatePatterns verifies that DeduplicatePatterns removes duplicate patterns.
func TestDeduplicatePatterns(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		patterns []string
		expected []string
	}{
		{
			testName: "removes duplicates",
			patterns: []string{"a", "b", "a"},
			expected: []string{"a", "b"},
		},
		{
			testName: "keeps unique",
			patterns: []string{"b", "a"},
			expected: []string{"b", "a"},
		},
	}
	for _, testCase := range testCases {
		actual := utils.DeduplicatePatterns(testCase.patterns)
		if !reflect.DeepEqual(actual, testCase.expected) {
			testingInstance.Errorf("%s: expected %v, got %v", testCase.testName, testCase.expected, actual)
		}
	}
}

// TestSortedPatternSet verifies lexical ordering of a pattern set.
func TestSortedPatternSet(testingInstance *testing.T) {
	patternSet := map[string]struct{}{"*.tmp": {}, ".git": {}, "build": {}}
	actual := utils.SortedPatternSet(patternSet)
	expected := []string{"*.tmp", ".git", "build"}
	if !reflect.DeepEqual(actual, expected) {
		testingInstance.Fatalf("expected %v, got %v", expected, actual)
	}
}

// TestRelativePathOrSelf verifies relative path resolution against a root.
func TestRelativePathOrSelf(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	testCases := []struct {
		testName string
		fullPath string
		expected string
	}{
		{testName: "root itself", fullPath: rootDirectory, expected: "."},
		{testName: "direct child", fullPath: filepath.Join(rootDirectory, "file.txt"), expected: "file.txt"},
		{testName: "nested child", fullPath: filepath.Join(rootDirectory, "sub", "file.txt"), expected: "sub/file.txt"},
	}
	for _, testCase := range testCases {
		actual := utils.RelativePathOrSelf(testCase.fullPath, rootDirectory)
		if actual != testCase.expected {
			testingInstance.Errorf("%s: expected %q, got %q", testCase.testName, testCase.expected, actual)
		}
	}
}

// TestIsBinary verifies binary detection over byte slices.
func TestIsBinary(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		data     []byte
		expected bool
	}{
		{testName: "empty", data: nil, expected: false},
		{testName: "text", data: []byte("plain text"), expected: false},
		{testName: "nul byte", data: []byte{'a', 0x00, 'b'}, expected: true},
		{testName: "invalid utf8", data: []byte{0xff, 0xfe}, expected: true},
	}
	for _, testCase := range testCases {
		if actual := utils.IsBinary(testCase.data); actual != testCase.expected {
			testingInstance.Errorf("%s: expected %v, got %v", testCase.testName, testCase.expected, actual)
		}
	}
}

// TestDetectModulePath verifies module path extraction from go.mod.
func TestDetectModulePath(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	if modulePath := utils.DetectModulePath(rootDirectory); modulePath != "" {
		testingInstance.Fatalf("expected empty module path without go.mod, got %q", modulePath)
	}
	goModContent := "module example.com/sample\n\ngo 1.24\n"
	if writeError := os.WriteFile(filepath.Join(rootDirectory, utils.GoModFileName), []byte(goModContent), 0o644); writeError != nil {
		testingInstance.Fatalf("write go.mod: %v", writeError)
	}
	if modulePath := utils.DetectModulePath(rootDirectory); modulePath != "example.com/sample" {
		testingInstance.Fatalf("expected example.com/sample, got %q", modulePath)
	}
}
