// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/cdigest/internal/config"
	"github.com/temirov/cdigest/internal/output"
	"github.com/temirov/cdigest/internal/services/clipboard"
	"github.com/temirov/cdigest/internal/tokenizer"
	"github.com/temirov/cdigest/internal/tree"
	"github.com/temirov/cdigest/internal/upload"
	"github.com/temirov/cdigest/internal/utils"
)

const (
	rootUse              = "cdigest [path]"
	rootShortDescription = "Digest a codebase into a single document for language models"
	rootLongDescription  = `cdigest walks a directory, skips what the ignore patterns exclude, and writes
one document with the directory structure, size and token statistics, and the
content of every text file.

Ignore patterns come from a built-in default list, .gitignore, .cdigestignore
and -e/--exclude. Defaults for every flag can be stored in .cdigest.yaml or
~/.cdigest/config.yaml (see "cdigest init").`
	rootUsageExample = `  # Digest the current directory into a text document
  cdigest .

  # Markdown document without the two largest files of each directory
  cdigest ./service -o markdown --ignore-top-large-files 2

  # Only the first two directory levels, copied to the clipboard
  cdigest . --max-depth 2 --clipboard`

	initUse              = "init"
	initShortDescription = "Write a default configuration file"
	initLongDescription  = `Write a commented default configuration to .cdigest.yaml in the working
directory, or to ~/.cdigest/config.yaml with --global.`

	outputFormatFlagName        = "output-format"
	outputFormatFlagShorthand   = "o"
	outputFileFlagName          = "file"
	outputFileFlagShorthand     = "f"
	ignoreTopLargeFilesFlagName = "ignore-top-large-files"
	maxDepthFlagName            = "max-depth"
	excludeFlagName             = "exclude"
	excludeFlagShorthand        = "e"
	noDefaultIgnoresFlagName    = "no-default-ignores"
	noGitignoreFlagName         = "no-gitignore"
	noProjectIgnoreFlagName     = "no-cdigestignore"
	modelFlagName               = "model"
	clipboardFlagName           = "clipboard"
	auditUploadFlagName         = "audit-upload"
	auditBaseURLFlagName        = "audit-base-url"
	apiKeyFlagName              = "api-key"
	configFlagName              = "config"
	versionFlagName             = "version"
	globalFlagName              = "global"
	forceFlagName               = "force"

	outputFormatFlagDescription        = "output document format: text, markdown, json or yaml"
	outputFileFlagDescription          = "output file path (default <directory>_codebase_dump<extension>)"
	ignoreTopLargeFilesFlagDescription = "ignore the N largest files of every directory"
	maxDepthFlagDescription            = "deepest directory level to list, -1 for unbounded"
	excludeFlagDescription             = "additional ignore pattern (repeatable)"
	noDefaultIgnoresFlagDescription    = "do not apply the built-in ignore patterns"
	noGitignoreFlagDescription         = "do not read .gitignore"
	noProjectIgnoreFlagDescription     = "do not read .cdigestignore"
	modelFlagDescription               = "tokenizer model used for token counts"
	clipboardFlagDescription           = "copy the document to the clipboard"
	auditUploadFlagDescription         = "upload the document to the audit service"
	auditBaseURLFlagDescription        = "audit service base URL"
	apiKeyFlagDescription              = "audit service API key (or CDIGEST_API_KEY)"
	configFlagDescription              = "configuration file to use instead of ./.cdigest.yaml"
	versionFlagDescription             = "display application version"
	globalFlagDescription              = "write the global configuration file"
	forceFlagDescription               = "overwrite an existing configuration file"

	versionTemplate           = "cdigest version: %s\n"
	configurationWrittenLine  = "Configuration written to %s\n"
	workingDirectoryErrorForm = "unable to determine working directory: %w"
)

var errMissingPath = errors.New("a directory path is required")

type httpDoer interface {
	Do(request *http.Request) (*http.Response, error)
}

// dependencies are the collaborators the commands reach outside the process through.
type dependencies struct {
	logger          *zap.Logger
	copier          clipboard.Copier
	httpClient      httpDoer
	fileSystem      tree.FileSystem
	newTokenCounter func(tokenizer.Config) (tokenizer.Counter, string, error)
}

func defaultDependencies(logger *zap.Logger) dependencies {
	return dependencies{
		logger:          utils.LoggerOrNop(logger),
		copier:          clipboard.NewSystemCopier(),
		newTokenCounter: tokenizer.NewCounter,
	}
}

// Execute runs the cdigest application until it finishes or the process is
// interrupted.
func Execute(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCommand := createRootCommand(defaultDependencies(logger))
	rootCommand.SetArgs(joinSwitchArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// digestFlags holds the raw values of the root command flags.
type digestFlags struct {
	outputFormat        string
	outputFile          string
	ignoreTopLargeFiles int
	maxDepth            int
	excludePatterns     []string
	noDefaultIgnores    bool
	noGitignore         bool
	noProjectIgnore     bool
	model               string
	clipboard           bool
	auditUpload         bool
	auditBaseURL        string
	apiKey              string
	configPath          string
	showVersion         bool
}

func createRootCommand(deps dependencies) *cobra.Command {
	var flags digestFlags

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if flags.showVersion {
				_, err := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return err
			}
			if len(arguments) == 0 {
				_ = command.Help()
				return errMissingPath
			}
			workingDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return fmt.Errorf(workingDirectoryErrorForm, workingDirectoryError)
			}
			applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
				WorkingDirectory: workingDirectory,
				ExplicitFilePath: flags.configPath,
			})
			if configurationError != nil {
				return configurationError
			}
			settings := resolveDigestSettings(command, flags, applicationConfiguration)
			settings.rootPath = arguments[0]
			return runDigest(command.Context(), command.OutOrStdout(), settings, deps)
		},
	}

	bindDigestFlags(rootCommand.Flags(), &flags)
	rootCommand.AddCommand(createInitCommand())
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// bindDigestFlags registers the digest flags on flagSet.
func bindDigestFlags(flagSet *pflag.FlagSet, flags *digestFlags) {
	flagSet.StringVarP(&flags.outputFormat, outputFormatFlagName, outputFormatFlagShorthand, output.FormatText, outputFormatFlagDescription)
	flagSet.StringVarP(&flags.outputFile, outputFileFlagName, outputFileFlagShorthand, "", outputFileFlagDescription)
	flagSet.IntVar(&flags.ignoreTopLargeFiles, ignoreTopLargeFilesFlagName, 0, ignoreTopLargeFilesFlagDescription)
	flagSet.IntVar(&flags.maxDepth, maxDepthFlagName, tree.UnboundedDepth, maxDepthFlagDescription)
	flagSet.StringArrayVarP(&flags.excludePatterns, excludeFlagName, excludeFlagShorthand, nil, excludeFlagDescription)
	registerSwitchFlag(flagSet, &flags.noDefaultIgnores, noDefaultIgnoresFlagName, noDefaultIgnoresFlagDescription)
	registerSwitchFlag(flagSet, &flags.noGitignore, noGitignoreFlagName, noGitignoreFlagDescription)
	registerSwitchFlag(flagSet, &flags.noProjectIgnore, noProjectIgnoreFlagName, noProjectIgnoreFlagDescription)
	flagSet.StringVar(&flags.model, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	registerSwitchFlag(flagSet, &flags.clipboard, clipboardFlagName, clipboardFlagDescription)
	registerSwitchFlag(flagSet, &flags.auditUpload, auditUploadFlagName, auditUploadFlagDescription)
	flagSet.StringVar(&flags.auditBaseURL, auditBaseURLFlagName, upload.DefaultBaseURL, auditBaseURLFlagDescription)
	flagSet.StringVar(&flags.apiKey, apiKeyFlagName, "", apiKeyFlagDescription)
	flagSet.StringVar(&flags.configPath, configFlagName, "", configFlagDescription)
	registerSwitchFlag(flagSet, &flags.showVersion, versionFlagName, versionFlagDescription)
}

func createInitCommand() *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			return printLine(command.OutOrStdout(), configurationWrittenLine, writtenPath)
		},
	}
	registerSwitchFlag(initCommand.Flags(), &global, globalFlagName, globalFlagDescription)
	registerSwitchFlag(initCommand.Flags(), &force, forceFlagName, forceFlagDescription)
	return initCommand
}

func printLine(writer io.Writer, format string, arguments ...any) error {
	_, err := fmt.Fprintf(writer, format, arguments...)
	return err
}
