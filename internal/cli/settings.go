package cli

import (
	"github.com/spf13/cobra"

	"github.com/temirov/cdigest/internal/config"
	"github.com/temirov/cdigest/internal/tokenizer"
	"github.com/temirov/cdigest/internal/upload"
	"github.com/temirov/cdigest/internal/utils"
)

// digestSettings is the effective configuration of one digest run.
type digestSettings struct {
	rootPath            string
	outputFormat        string
	outputFile          string
	ignoreTopLargeFiles int
	maxDepth            int
	loadDefaults        bool
	loadGitignore       bool
	loadProjectIgnore   bool
	extraPatterns       []string
	model               string
	clipboard           bool
	auditUpload         bool
	auditBaseURL        string
	apiKey              string
}

// resolveDigestSettings applies the precedence explicit flag, then
// configuration (environment over local file over global file), then the
// flag default. Exclude patterns from flags and configuration are combined.
func resolveDigestSettings(command *cobra.Command, flags digestFlags, applicationConfiguration config.ApplicationConfiguration) digestSettings {
	changed := func(name string) bool {
		return command.Flags().Changed(name)
	}
	settings := digestSettings{
		outputFormat:        flags.outputFormat,
		outputFile:          flags.outputFile,
		ignoreTopLargeFiles: flags.ignoreTopLargeFiles,
		maxDepth:            flags.maxDepth,
		loadDefaults:        !flags.noDefaultIgnores,
		loadGitignore:       !flags.noGitignore,
		loadProjectIgnore:   !flags.noProjectIgnore,
		model:               flags.model,
		clipboard:           flags.clipboard,
		auditUpload:         flags.auditUpload,
		auditBaseURL:        flags.auditBaseURL,
		apiKey:              flags.apiKey,
	}

	if !changed(outputFormatFlagName) && applicationConfiguration.OutputFormat != "" {
		settings.outputFormat = applicationConfiguration.OutputFormat
	}
	if !changed(outputFileFlagName) && applicationConfiguration.OutputFile != "" {
		settings.outputFile = applicationConfiguration.OutputFile
	}
	if !changed(ignoreTopLargeFilesFlagName) && applicationConfiguration.IgnoreTopLargeFiles != nil {
		settings.ignoreTopLargeFiles = *applicationConfiguration.IgnoreTopLargeFiles
	}
	if !changed(maxDepthFlagName) && applicationConfiguration.MaxDepth != nil {
		settings.maxDepth = *applicationConfiguration.MaxDepth
	}
	if !changed(clipboardFlagName) && applicationConfiguration.Clipboard != nil {
		settings.clipboard = *applicationConfiguration.Clipboard
	}
	if !changed(modelFlagName) && applicationConfiguration.Tokens.Model != "" {
		settings.model = applicationConfiguration.Tokens.Model
	}

	ignoreConfiguration := applicationConfiguration.Ignore
	if !changed(noDefaultIgnoresFlagName) && ignoreConfiguration.Defaults != nil {
		settings.loadDefaults = *ignoreConfiguration.Defaults
	}
	if !changed(noGitignoreFlagName) && ignoreConfiguration.Gitignore != nil {
		settings.loadGitignore = *ignoreConfiguration.Gitignore
	}
	if !changed(noProjectIgnoreFlagName) && ignoreConfiguration.ProjectFile != nil {
		settings.loadProjectIgnore = *ignoreConfiguration.ProjectFile
	}
	settings.extraPatterns = utils.DeduplicatePatterns(append(append([]string{}, ignoreConfiguration.Extra...), flags.excludePatterns...))

	if !changed(auditBaseURLFlagName) && applicationConfiguration.Audit.BaseURL != "" {
		settings.auditBaseURL = applicationConfiguration.Audit.BaseURL
	}
	if !changed(apiKeyFlagName) && applicationConfiguration.Audit.APIKey != "" {
		settings.apiKey = applicationConfiguration.Audit.APIKey
	}

	if settings.model == "" {
		settings.model = tokenizer.DefaultModel
	}
	if settings.auditBaseURL == "" {
		settings.auditBaseURL = upload.DefaultBaseURL
	}
	return settings
}
