package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/temirov/cdigest/internal/utils"
)

const (
	// EnvironmentPrefix prefixes environment variables read by cdigest.
	EnvironmentPrefix = "CDIGEST"
	// EnvironmentFileName is the dotenv file loaded from the working directory.
	EnvironmentFileName = ".env"

	environmentAPIKeyKey       = "api_key"
	environmentAuditBaseURLKey = "audit_base_url"

	determineWorkingDirectoryErrorFormat = "determine working directory: %w"
	resolveConfigurationPathErrorFormat  = "resolve configuration path %s: %w"
	statConfigurationErrorFormat         = "stat configuration %s: %w"
	configurationIsDirectoryErrorFormat  = "configuration path %s is a directory"
	readConfigurationErrorFormat         = "read configuration from %s: %w"
	decodeConfigurationErrorFormat       = "decode configuration from %s: %w"
	loadEnvironmentFileErrorFormat       = "load environment file %s: %w"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds defaults for the digest command.
type ApplicationConfiguration struct {
	OutputFormat        string              `mapstructure:"output_format"`
	OutputFile          string              `mapstructure:"output_file"`
	IgnoreTopLargeFiles *int                `mapstructure:"ignore_top_large_files"`
	MaxDepth            *int                `mapstructure:"max_depth"`
	Clipboard           *bool               `mapstructure:"clipboard"`
	Tokens              TokenConfiguration  `mapstructure:"tokens"`
	Ignore              IgnoreConfiguration `mapstructure:"ignore"`
	Audit               AuditConfiguration  `mapstructure:"audit"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Model string `mapstructure:"model"`
}

// IgnoreConfiguration selects ignore pattern sources.
type IgnoreConfiguration struct {
	Defaults    *bool    `mapstructure:"defaults"`
	Gitignore   *bool    `mapstructure:"gitignore"`
	ProjectFile *bool    `mapstructure:"project_file"`
	Extra       []string `mapstructure:"extra"`
}

// AuditConfiguration holds audit upload settings.
type AuditConfiguration struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// LoadApplicationConfiguration loads configuration from the global file, the
// local (or explicit) file and the environment, later sources winning.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(determineWorkingDirectoryErrorFormat, err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	environmentConfig, environmentErr := loadEnvironmentConfiguration(workingDirectory)
	if environmentErr != nil {
		return ApplicationConfiguration{}, environmentErr
	}
	merged = merged.Merge(environmentConfig)

	merged.Ignore.Extra = utils.DeduplicatePatterns(merged.Ignore.Extra)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf(resolveConfigurationPathErrorFormat, explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf(statConfigurationErrorFormat, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(configurationIsDirectoryErrorFormat, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(readConfigurationErrorFormat, path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(decodeConfigurationErrorFormat, path, decodeErr)
	}
	return config, nil
}

// loadEnvironmentConfiguration reads CDIGEST_* variables after loading an
// optional .env file. Variables already set in the process take priority over
// the file.
func loadEnvironmentConfiguration(workingDirectory string) (ApplicationConfiguration, error) {
	environmentFilePath := filepath.Join(workingDirectory, EnvironmentFileName)
	if _, statErr := os.Stat(environmentFilePath); statErr == nil {
		if loadErr := godotenv.Load(environmentFilePath); loadErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf(loadEnvironmentFileErrorFormat, environmentFilePath, loadErr)
		}
	}

	environment := viper.New()
	environment.SetEnvPrefix(EnvironmentPrefix)
	environment.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	environment.AutomaticEnv()

	return ApplicationConfiguration{
		Audit: AuditConfiguration{
			APIKey:  environment.GetString(environmentAPIKeyKey),
			BaseURL: environment.GetString(environmentAuditBaseURLKey),
		},
	}, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.OutputFormat != "" {
		result.OutputFormat = override.OutputFormat
	}
	if override.OutputFile != "" {
		result.OutputFile = override.OutputFile
	}
	if override.IgnoreTopLargeFiles != nil {
		result.IgnoreTopLargeFiles = cloneInt(override.IgnoreTopLargeFiles)
	}
	if override.MaxDepth != nil {
		result.MaxDepth = cloneInt(override.MaxDepth)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	if override.Tokens.Model != "" {
		result.Tokens.Model = override.Tokens.Model
	}
	result.Ignore = result.Ignore.merge(override.Ignore)
	result.Audit = result.Audit.merge(override.Audit)
	return result
}

func (config IgnoreConfiguration) merge(override IgnoreConfiguration) IgnoreConfiguration {
	result := config
	if override.Defaults != nil {
		result.Defaults = cloneBool(override.Defaults)
	}
	if override.Gitignore != nil {
		result.Gitignore = cloneBool(override.Gitignore)
	}
	if override.ProjectFile != nil {
		result.ProjectFile = cloneBool(override.ProjectFile)
	}
	if len(override.Extra) > 0 {
		result.Extra = append([]string{}, utils.DeduplicatePatterns(override.Extra)...)
	}
	return result
}

func (config AuditConfiguration) merge(override AuditConfiguration) AuditConfiguration {
	result := config
	if override.BaseURL != "" {
		result.BaseURL = override.BaseURL
	}
	if override.APIKey != "" {
		result.APIKey = override.APIKey
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
