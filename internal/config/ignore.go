// Package config assembles ignore pattern sets and application configuration.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/cdigest/internal/ignore"
	"github.com/temirov/cdigest/internal/utils"
)

const (
	commentLinePrefix                   = "#"
	resolveBasePathErrorFormat          = "resolve base path %s: %w"
	loadIgnoreFileErrorFormat           = "loading %s from %s: %w"
	closeIgnoreFileWarningMessage       = "failed to close ignore file"
	loadedIgnoreFileDebugMessage        = "loaded ignore file"
	ignorePatternsAssembledDebugMessage = "ignore patterns assembled"
	pathLogField                        = "path"
	patternCountLogField                = "patterns"
)

// defaultIgnorePatterns covers common VCS, build, IDE and OS artifacts.
var defaultIgnorePatterns = [...]string{
	// Python
	"*.pyc", "*.pyo", "*.pyd", "__pycache__",
	// JavaScript
	"node_modules", "bower_components",
	// Version control
	utils.GitDirectoryName, ".svn", ".hg", utils.GitIgnoreFileName,
	// Virtual environments
	"venv", ".venv", "env",
	// IDEs
	".idea", ".vscode",
	// Temporary and log files
	"*.log", "*.bak", "*.swp", "*.tmp",
	// macOS
	".DS_Store",
	// Windows
	"Thumbs.db",
	// Build directories
	"build", "dist",
	// Python egg info
	"*.egg-info",
	// Compiled libraries
	"*.so", "*.dylib", "*.dll",
}

// DefaultIgnorePatterns returns a copy of the built-in ignore list.
func DefaultIgnorePatterns() []string {
	patterns := make([]string, len(defaultIgnorePatterns))
	copy(patterns, defaultIgnorePatterns[:])
	return patterns
}

// IgnoreOptions selects which pattern sources contribute to an IgnoreConfig.
type IgnoreOptions struct {
	BasePath          string
	LoadDefaults      bool
	LoadGitignore     bool
	LoadProjectIgnore bool
	ExtraPatterns     []string
	Logger            *zap.Logger
}

// IgnoreConfig is the union of all configured ignore pattern sources.
type IgnoreConfig struct {
	basePath   string
	patternSet map[string]struct{}
	matcher    *ignore.Matcher
}

// NewIgnoreConfig builds the pattern union described by options. A BasePath of
// "." resolves to the current working directory. Missing ignore files are
// skipped; ignore files that exist but cannot be read produce an error.
func NewIgnoreConfig(options IgnoreOptions) (*IgnoreConfig, error) {
	logger := utils.LoggerOrNop(options.Logger)
	basePath := options.BasePath
	if basePath == "" {
		basePath = "."
	}
	absoluteBasePath, absoluteError := filepath.Abs(basePath)
	if absoluteError != nil {
		return nil, fmt.Errorf(resolveBasePathErrorFormat, basePath, absoluteError)
	}

	patternSet := make(map[string]struct{})
	if options.LoadDefaults {
		for _, pattern := range defaultIgnorePatterns {
			patternSet[pattern] = struct{}{}
		}
	}
	for _, pattern := range options.ExtraPatterns {
		patternSet[pattern] = struct{}{}
	}

	ignoreFiles := []struct {
		enabled bool
		name    string
	}{
		{enabled: options.LoadProjectIgnore, name: utils.ProjectIgnoreFileName},
		{enabled: options.LoadGitignore, name: utils.GitIgnoreFileName},
	}
	for _, ignoreFile := range ignoreFiles {
		if !ignoreFile.enabled {
			continue
		}
		ignoreFilePath := filepath.Join(absoluteBasePath, ignoreFile.name)
		filePatterns, loadError := LoadIgnoreFilePatterns(ignoreFilePath, logger)
		if loadError != nil {
			return nil, fmt.Errorf(loadIgnoreFileErrorFormat, ignoreFile.name, absoluteBasePath, loadError)
		}
		if filePatterns != nil {
			logger.Debug(loadedIgnoreFileDebugMessage, zap.String(pathLogField, ignoreFilePath), zap.Int(patternCountLogField, len(filePatterns)))
		}
		for _, pattern := range filePatterns {
			patternSet[pattern] = struct{}{}
		}
	}

	config := &IgnoreConfig{basePath: absoluteBasePath, patternSet: patternSet}
	config.matcher = ignore.NewMatcher(absoluteBasePath, config.Patterns())
	logger.Debug(ignorePatternsAssembledDebugMessage, zap.String(pathLogField, absoluteBasePath), zap.Int(patternCountLogField, len(patternSet)))
	return config, nil
}

// BasePath returns the absolute directory the patterns are anchored to.
func (config *IgnoreConfig) BasePath() string {
	return config.basePath
}

// Patterns returns the pattern union in lexical order.
func (config *IgnoreConfig) Patterns() []string {
	return utils.SortedPatternSet(config.patternSet)
}

// Matcher returns the compiled matcher for the pattern union.
func (config *IgnoreConfig) Matcher() *ignore.Matcher {
	return config.matcher
}

// ShouldIgnore reports whether path is excluded by the pattern union.
func (config *IgnoreConfig) ShouldIgnore(path string, isDir bool) bool {
	return config.matcher.Match(path, isDir)
}

// LoadIgnoreFilePatterns reads a line-oriented ignore file, skipping blank lines
// and "#" comments. A missing file yields nil patterns and no error.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string, logger *zap.Logger) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil {
			utils.LoggerOrNop(logger).Warn(closeIgnoreFileWarningMessage, zap.String(pathLogField, ignoreFilePath), zap.Error(closeError))
		}
	}()

	patterns := []string{}
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentLinePrefix) {
			continue
		}
		patterns = append(patterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return patterns, nil
}
