package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/cdigest/internal/utils"
)

func TestInitializeConfigurationCreatesLocalFile(t *testing.T) {
	workingDirectory := t.TempDir()
	options := InitOptions{WorkingDirectory: workingDirectory, Target: InitTargetLocal}
	path, err := InitializeConfiguration(options)
	if err != nil {
		t.Fatalf("InitializeConfiguration error: %v", err)
	}
	expectedPath := filepath.Join(workingDirectory, utils.ConfigFileName)
	if path != expectedPath {
		t.Fatalf("expected path %s, got %s", expectedPath, path)
	}
	content, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("read config: %v", readErr)
	}
	if !strings.Contains(string(content), "output_format:") {
		t.Fatalf("unexpected configuration content: %s", string(content))
	}
}

func TestInitializeConfigurationTemplateLoads(t *testing.T) {
	isolateEnvironment(t)
	workingDirectory := t.TempDir()
	if _, err := InitializeConfiguration(InitOptions{WorkingDirectory: workingDirectory}); err != nil {
		t.Fatalf("InitializeConfiguration error: %v", err)
	}
	loadedConfig, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory})
	if err != nil {
		t.Fatalf("LoadApplicationConfiguration error: %v", err)
	}
	if loadedConfig.OutputFormat != "text" {
		t.Fatalf("expected text format from template, got %q", loadedConfig.OutputFormat)
	}
	if loadedConfig.MaxDepth == nil || *loadedConfig.MaxDepth != -1 {
		t.Fatalf("expected unbounded max depth from template")
	}
	if loadedConfig.Ignore.Defaults == nil || !*loadedConfig.Ignore.Defaults {
		t.Fatalf("expected default ignores enabled by template")
	}
	if loadedConfig.Audit.BaseURL != "https://codeaudits.ai/" {
		t.Fatalf("unexpected audit base url %q", loadedConfig.Audit.BaseURL)
	}
}

func TestInitializeConfigurationHonorsGlobalTarget(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)
	path, err := InitializeConfiguration(InitOptions{Target: InitTargetGlobal, Force: true})
	if err != nil {
		t.Fatalf("InitializeConfiguration error: %v", err)
	}
	expectedPath := filepath.Join(homeDir, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
	if path != expectedPath {
		t.Fatalf("expected configuration at %s, got %s", expectedPath, path)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("expected file to exist at %s: %v", path, statErr)
	}
}

func TestInitializeConfigurationPreventsOverwriteWithoutForce(t *testing.T) {
	workingDirectory := t.TempDir()
	path := filepath.Join(workingDirectory, utils.ConfigFileName)
	if err := os.WriteFile(path, []byte("existing"), 0o600); err != nil {
		t.Fatalf("write seed config: %v", err)
	}
	_, err := InitializeConfiguration(InitOptions{WorkingDirectory: workingDirectory, Target: InitTargetLocal, Force: false})
	if err == nil {
		t.Fatalf("expected error when configuration already exists")
	}
	content, _ := os.ReadFile(path)
	if string(content) != "existing" {
		t.Fatalf("existing configuration must not be modified")
	}

	if _, forceErr := InitializeConfiguration(InitOptions{WorkingDirectory: workingDirectory, Force: true}); forceErr != nil {
		t.Fatalf("expected force to overwrite, got %v", forceErr)
	}
	content, _ = os.ReadFile(path)
	if string(content) != DefaultConfigurationTemplate() {
		t.Fatalf("expected template content after forced overwrite")
	}
}

func TestInitializeConfigurationRejectsUnknownTarget(t *testing.T) {
	if _, err := InitializeConfiguration(InitOptions{Target: InitTarget("remote")}); err == nil {
		t.Fatalf("expected unsupported target to fail")
	}
}
