package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/cdigest/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal  InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultConfigurationTemplate = `# Output document format: text, markdown, json or yaml.
output_format: text
# Output file path. Empty selects <directory>_codebase_dump<extension>.
output_file: ""
ignore_top_large_files: 0
# -1 walks the whole tree.
max_depth: -1
clipboard: false
tokens:
  model: gpt-4o
ignore:
  defaults: true
  gitignore: true
  project_file: true
  extra: []
audit:
  base_url: https://codeaudits.ai/
  # Prefer the CDIGEST_API_KEY environment variable over storing the key here.
  api_key: ""
`)

const (
	configurationDirectoryPermissions = 0o755
	configurationFilePermissions      = 0o600

	initWorkingDirectoryErrorFormat = "determine working directory for configuration: %w"
	initHomeDirectoryErrorFormat    = "resolve home directory for configuration: %w"
	initCreateDirectoryErrorFormat  = "create configuration directory %s: %w"
	initUnsupportedTargetFormat     = "unsupported init target %q"
	initAlreadyExistsErrorFormat    = "configuration file already exists at %s (use --force to overwrite)"
	initInspectErrorFormat          = "inspect configuration path %s: %w"
	initWriteErrorFormat            = "write configuration to %s: %w"
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// DefaultConfigurationTemplate returns the commented configuration written by init.
func DefaultConfigurationTemplate() string {
	return defaultConfigurationTemplate
}

// InitializeConfiguration writes the default configuration to the requested
// target and returns the written path. An existing file is only replaced when
// Force is set.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, resolveErr := resolveInitDestination(options)
	if resolveErr != nil {
		return "", resolveErr
	}

	if _, err := os.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf(initAlreadyExistsErrorFormat, destinationPath)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf(initInspectErrorFormat, destinationPath, err)
	}

	if err := os.WriteFile(destinationPath, []byte(defaultConfigurationTemplate), configurationFilePermissions); err != nil {
		return "", fmt.Errorf(initWriteErrorFormat, destinationPath, err)
	}
	return destinationPath, nil
}

func resolveInitDestination(options InitOptions) (string, error) {
	switch options.Target {
	case "", InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf(initWorkingDirectoryErrorFormat, err)
			}
			workingDirectory = current
		}
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf(initHomeDirectoryErrorFormat, err)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := os.MkdirAll(configurationDirectory, configurationDirectoryPermissions); err != nil {
			return "", fmt.Errorf(initCreateDirectoryErrorFormat, configurationDirectory, err)
		}
		return filepath.Join(configurationDirectory, utils.GlobalConfigFileName), nil
	default:
		return "", fmt.Errorf(initUnsupportedTargetFormat, options.Target)
	}
}
