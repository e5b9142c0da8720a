package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/cdigest/internal/config"
	"github.com/temirov/cdigest/internal/output"
	"github.com/temirov/cdigest/internal/tokenizer"
	"github.com/temirov/cdigest/internal/tree"
	"github.com/temirov/cdigest/internal/upload"
	"github.com/temirov/cdigest/internal/utils"
)

const (
	outputDirectoryPermissions = 0o755
	outputFilePermissions      = 0o644

	resolveRootErrorFormat     = "resolve %s: %w"
	rootNotDirectoryFormat     = "%s is not a directory"
	analyzeErrorFormat         = "analyze %s: %w"
	countTokensErrorFormat     = "count tokens: %w"
	createOutputDirErrorFormat = "create output directory %s: %w"
	writeOutputErrorFormat     = "write output file %s: %w"
	uploadErrorFormat          = "upload audit: %w"

	estimatedSizeLine   = "Estimated output size: %s\n"
	analysisHeading     = "Analysis Summary"
	documentWrittenLine = "Codebase digest written to %s\n"
	clipboardCopiedLine = "Digest copied to clipboard\n"
	auditUploadedLine   = "Audit uploaded to %s\n"

	tokenizerUnavailableWarning = "tokenizer unavailable, token counts will be zero"
	clipboardFailedWarning      = "failed to copy digest to clipboard"
	tokenizerSelectedDebug      = "tokenizer selected"
	modelLogField               = "model"
	encodingLogField            = "encoding"
)

// runDigest analyzes settings.rootPath and writes, prints, copies and
// uploads the resulting document as configured.
func runDigest(ctx context.Context, writer io.Writer, settings digestSettings, deps dependencies) error {
	logger := utils.LoggerOrNop(deps.logger)

	rootPath, resolveError := filepath.Abs(settings.rootPath)
	if resolveError != nil {
		return fmt.Errorf(resolveRootErrorFormat, settings.rootPath, resolveError)
	}
	if rootInfo, statError := os.Stat(rootPath); statError != nil {
		return fmt.Errorf(resolveRootErrorFormat, settings.rootPath, statError)
	} else if !rootInfo.IsDir() {
		return fmt.Errorf(rootNotDirectoryFormat, rootPath)
	}

	tokenCache := tokenizer.NewCache(newTextCounter(settings.model, deps, logger))
	formatter, formatterError := output.NewFormatter(settings.outputFormat, output.Options{
		TokenCounter: tokenCache,
		ModulePath:   utils.DetectModulePath(rootPath),
	})
	if formatterError != nil {
		return formatterError
	}

	ignoreConfig, ignoreError := config.NewIgnoreConfig(config.IgnoreOptions{
		BasePath:          rootPath,
		LoadDefaults:      settings.loadDefaults,
		LoadGitignore:     settings.loadGitignore,
		LoadProjectIgnore: settings.loadProjectIgnore,
		ExtraPatterns:     settings.extraPatterns,
		Logger:            logger,
	})
	if ignoreError != nil {
		return ignoreError
	}

	walker := tree.NewWalker(deps.fileSystem, logger)
	root, walkError := walker.AnalyzeDirectory(ctx, rootPath, ignoreConfig.Matcher(), tree.Options{
		IgnoreTopFiles: settings.ignoreTopLargeFiles,
		MaxDepth:       settings.maxDepth,
	})
	if walkError != nil {
		return fmt.Errorf(analyzeErrorFormat, rootPath, walkError)
	}
	if err := printLine(writer, estimatedSizeLine, utils.FormatFileSize(output.EstimateOutputSize(root))); err != nil {
		return err
	}

	contentEntries := output.ContentEntries(root)
	texts := make([]string, 0, len(contentEntries))
	for _, entry := range contentEntries {
		texts = append(texts, entry.Content)
	}
	if err := tokenCache.Prime(ctx, texts, 0); err != nil {
		return fmt.Errorf(countTokensErrorFormat, err)
	}

	patterns := ignoreConfig.Patterns()
	document, formatError := formatter.Format(root, patterns)
	if formatError != nil {
		return formatError
	}
	outputPath := settings.outputFile
	if outputPath == "" {
		outputPath = output.DefaultOutputFileName(filepath.Base(rootPath), formatter)
	}
	if err := writeDocument(outputPath, document); err != nil {
		return err
	}

	if err := printReport(writer, root, tokenCache, patterns); err != nil {
		return err
	}
	if err := printLine(writer, documentWrittenLine, outputPath); err != nil {
		return err
	}

	if settings.clipboard {
		if copyError := deps.copier.Copy(document); copyError != nil {
			logger.Warn(clipboardFailedWarning, zap.Error(copyError))
		} else if err := printLine(writer, clipboardCopiedLine); err != nil {
			return err
		}
	}

	if settings.auditUpload {
		return uploadDocument(ctx, writer, settings, deps, logger, document)
	}
	return nil
}

func newTextCounter(model string, deps dependencies, logger *zap.Logger) *tokenizer.SafeCounter {
	if deps.newTokenCounter == nil {
		return tokenizer.NewSafeCounter(nil, logger)
	}
	counter, encodingName, counterError := deps.newTokenCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		logger.Warn(tokenizerUnavailableWarning, zap.String(modelLogField, model), zap.Error(counterError))
		return tokenizer.NewSafeCounter(nil, logger)
	}
	logger.Debug(tokenizerSelectedDebug, zap.String(modelLogField, model), zap.String(encodingLogField, encodingName))
	return tokenizer.NewSafeCounter(counter, logger)
}

func writeDocument(outputPath string, document string) error {
	if directory := filepath.Dir(outputPath); directory != "." {
		if err := os.MkdirAll(directory, outputDirectoryPermissions); err != nil {
			return fmt.Errorf(createOutputDirErrorFormat, directory, err)
		}
	}
	if err := os.WriteFile(outputPath, []byte(document), outputFilePermissions); err != nil {
		return fmt.Errorf(writeOutputErrorFormat, outputPath, err)
	}
	return nil
}

func printReport(writer io.Writer, root *tree.Node, counter tree.TokenCounter, patterns []string) error {
	var report strings.Builder
	report.WriteString("\n" + analysisHeading + "\n")
	report.WriteString(strings.Repeat("=", len(analysisHeading)) + "\n")
	report.WriteString(output.TreeString(root, true, false))
	report.WriteString("\n")
	report.WriteString(output.SummaryString(root, counter))
	report.WriteString(output.LargestEntriesTable(root, output.LargestEntriesCount))
	report.WriteString("\n\n")
	report.WriteString(output.IgnoredFilesSummary(root, patterns))
	report.WriteString("\n")
	_, err := io.WriteString(writer, report.String())
	return err
}

func uploadDocument(ctx context.Context, writer io.Writer, settings digestSettings, deps dependencies, logger *zap.Logger, document string) error {
	uploader, uploaderError := upload.NewAuditUploader(
		settings.apiKey,
		settings.auditBaseURL,
		utils.SubmitterName(utils.GetApplicationVersion()),
		deps.httpClient,
		logger,
	)
	if uploaderError != nil {
		return fmt.Errorf(uploadErrorFormat, uploaderError)
	}
	if _, uploadError := uploader.Upload(ctx, document); uploadError != nil {
		return fmt.Errorf(uploadErrorFormat, uploadError)
	}
	return printLine(writer, auditUploadedLine, uploader.Endpoint())
}
