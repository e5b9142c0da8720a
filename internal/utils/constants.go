package utils

// File and directory names shared across packages.
const (
	// ProjectIgnoreFileName is the name of the cdigest-specific ignore file.
	ProjectIgnoreFileName = ".cdigestignore"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// ConfigFileName is the name of the local configuration file.
	ConfigFileName = ".cdigest.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".cdigest"
	// GlobalConfigFileName is the name of the configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// GoModFileName is the name of a Go module definition file.
	GoModFileName = "go.mod"
)

// Logger messages used by the entry point.
const (
	// LoggerInitializationFailedMessageFormat reports failure to construct the logger.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal command errors.
	ApplicationExecutionFailedMessage = "cdigest failed"
)
