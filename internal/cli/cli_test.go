package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/cdigest/internal/config"
	"github.com/temirov/cdigest/internal/tokenizer"
	"github.com/temirov/cdigest/internal/upload"
)

const (
	sampleProjectName = "sample"
	mainSource        = "package main\n\nfunc main() {}\n"
	readmeSource      = "# Sample\n"
	vendoredSource    = "module.exports = {}\n"
)

type wordCounter struct{}

func (wordCounter) Name() string { return "words" }

func (wordCounter) CountString(input string) (int, error) {
	return len(strings.Fields(input)), nil
}

type recordingCopier struct {
	copied []string
	err    error
}

func (copier *recordingCopier) Copy(text string) error {
	if copier.err != nil {
		return copier.err
	}
	copier.copied = append(copier.copied, text)
	return nil
}

func testDependencies(copier *recordingCopier) dependencies {
	return dependencies{
		copier: copier,
		newTokenCounter: func(tokenizer.Config) (tokenizer.Counter, string, error) {
			return wordCounter{}, "words", nil
		},
	}
}

// isolateCommandEnvironment points HOME at an empty directory, clears the
// CDIGEST_ variables and changes into a fresh working directory.
func isolateCommandEnvironment(t *testing.T) string {
	t.Helper()
	homeDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)
	for _, name := range []string{"CDIGEST_API_KEY", "CDIGEST_AUDIT_BASE_URL"} {
		t.Setenv(name, "")
		if err := os.Unsetenv(name); err != nil {
			t.Fatalf("unset %s: %v", name, err)
		}
	}
	workingDirectory := t.TempDir()
	previousDirectory, getwdError := os.Getwd()
	if getwdError != nil {
		t.Fatalf("failed to get working directory: %v", getwdError)
	}
	if chdirError := os.Chdir(workingDirectory); chdirError != nil {
		t.Fatalf("failed to change directory: %v", chdirError)
	}
	t.Cleanup(func() { _ = os.Chdir(previousDirectory) })
	return workingDirectory
}

func writeProjectFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func createSampleProject(t *testing.T) string {
	t.Helper()
	projectDirectory := filepath.Join(t.TempDir(), sampleProjectName)
	writeProjectFile(t, filepath.Join(projectDirectory, "main.go"), []byte(mainSource))
	writeProjectFile(t, filepath.Join(projectDirectory, "README.md"), []byte(readmeSource))
	writeProjectFile(t, filepath.Join(projectDirectory, "node_modules", "lib", "index.js"), []byte(vendoredSource))
	writeProjectFile(t, filepath.Join(projectDirectory, "logo.png"), []byte{0x89, 'P', 'N', 'G', 0x00, 0x01})
	return projectDirectory
}

func executeCommand(t *testing.T, deps dependencies, arguments ...string) (string, error) {
	t.Helper()
	rootCommand := createRootCommand(deps)
	var outputBuffer bytes.Buffer
	rootCommand.SetOut(&outputBuffer)
	rootCommand.SetErr(&outputBuffer)
	rootCommand.SetArgs(joinSwitchArguments(rootCommand, arguments))
	executeErr := rootCommand.ExecuteContext(context.Background())
	return outputBuffer.String(), executeErr
}

func readOutputFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(content)
}

func TestDigestWritesTextDocument(t *testing.T) {
	workingDirectory := isolateCommandEnvironment(t)
	projectDirectory := createSampleProject(t)
	outputPath := filepath.Join(workingDirectory, "nested", "digest.txt")

	consoleOutput, err := executeCommand(t, testDependencies(&recordingCopier{}), projectDirectory, "-f", outputPath)
	if err != nil {
		t.Fatalf("digest failed: %v", err)
	}

	document := readOutputFile(t, outputPath)
	expectedFragments := []string{
		"Parsed codebase for the project: " + sampleProjectName,
		"Directory Structure:",
		"File: " + filepath.Join(sampleProjectName, "main.go"),
		mainSource,
		readmeSource,
		"- Total tokens: 9",
	}
	for _, fragment := range expectedFragments {
		if !strings.Contains(document, fragment) {
			t.Errorf("document is missing %q:\n%s", fragment, document)
		}
	}
	if strings.Contains(document, vendoredSource) {
		t.Errorf("document includes ignored node_modules content")
	}
	if strings.Contains(document, "File: "+filepath.Join(sampleProjectName, "logo.png")) {
		t.Errorf("document includes the content entry of a binary file")
	}

	for _, fragment := range []string{"Estimated output size:", "Analysis Summary", "Largest non-ignored entries", "Codebase digest written to " + outputPath} {
		if !strings.Contains(consoleOutput, fragment) {
			t.Errorf("console output is missing %q:\n%s", fragment, consoleOutput)
		}
	}
}

func TestDigestDefaultOutputFileName(t *testing.T) {
	workingDirectory := isolateCommandEnvironment(t)
	projectDirectory := createSampleProject(t)

	if _, err := executeCommand(t, testDependencies(&recordingCopier{}), projectDirectory, "-o", "markdown"); err != nil {
		t.Fatalf("digest failed: %v", err)
	}

	document := readOutputFile(t, filepath.Join(workingDirectory, sampleProjectName+"_codebase_dump.md"))
	if !strings.HasPrefix(document, "# Parsed codebase for the project: "+sampleProjectName) {
		t.Fatalf("unexpected markdown header:\n%s", document)
	}
}

func TestDigestStructuredDocumentHonorsExcludes(t *testing.T) {
	workingDirectory := isolateCommandEnvironment(t)
	projectDirectory := createSampleProject(t)
	outputPath := filepath.Join(workingDirectory, "digest.json")

	if _, err := executeCommand(t, testDependencies(&recordingCopier{}), projectDirectory, "-o", "json", "-f", outputPath, "-e", "*.md"); err != nil {
		t.Fatalf("digest failed: %v", err)
	}

	var document struct {
		Project        string   `json:"project"`
		IgnorePatterns []string `json:"ignore_patterns"`
		Tree           struct {
			Children []struct {
				Name      string `json:"name"`
				IsIgnored bool   `json:"is_ignored"`
			} `json:"children"`
		} `json:"tree"`
	}
	if err := json.Unmarshal([]byte(readOutputFile(t, outputPath)), &document); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if document.Project != sampleProjectName {
		t.Fatalf("expected project %q, got %q", sampleProjectName, document.Project)
	}
	ignoredByName := map[string]bool{}
	for _, child := range document.Tree.Children {
		ignoredByName[child.Name] = child.IsIgnored
	}
	expected := map[string]bool{"README.md": true, "main.go": false, "node_modules": true, "logo.png": false}
	for name, ignored := range expected {
		actual, present := ignoredByName[name]
		if !present {
			t.Errorf("tree is missing %s", name)
			continue
		}
		if actual != ignored {
			t.Errorf("expected %s ignored=%t, got %t", name, ignored, actual)
		}
	}
}

func TestDigestConfigurationFileProvidesDefaults(t *testing.T) {
	workingDirectory := isolateCommandEnvironment(t)
	projectDirectory := createSampleProject(t)
	configuration := "output_format: markdown\nignore:\n  defaults: false\n"
	writeProjectFile(t, filepath.Join(workingDirectory, ".cdigest.yaml"), []byte(configuration))

	if _, err := executeCommand(t, testDependencies(&recordingCopier{}), projectDirectory); err != nil {
		t.Fatalf("digest failed: %v", err)
	}
	document := readOutputFile(t, filepath.Join(workingDirectory, sampleProjectName+"_codebase_dump.md"))
	if !strings.Contains(document, vendoredSource) {
		t.Fatalf("expected node_modules content once default ignores are disabled:\n%s", document)
	}

	if _, err := executeCommand(t, testDependencies(&recordingCopier{}), projectDirectory, "-o", "text"); err != nil {
		t.Fatalf("digest with explicit format failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(workingDirectory, sampleProjectName+"_codebase_dump.txt")); err != nil {
		t.Fatalf("expected explicit flag to override configured format: %v", err)
	}
}

func TestDigestRejectsUnknownFormat(t *testing.T) {
	isolateCommandEnvironment(t)
	projectDirectory := createSampleProject(t)

	_, err := executeCommand(t, testDependencies(&recordingCopier{}), projectDirectory, "-o", "xml")
	if err == nil || !strings.Contains(err.Error(), "unsupported output format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestDigestRequiresDirectory(t *testing.T) {
	workingDirectory := isolateCommandEnvironment(t)

	if _, err := executeCommand(t, testDependencies(&recordingCopier{})); !errors.Is(err, errMissingPath) {
		t.Fatalf("expected missing path error, got %v", err)
	}
	if _, err := executeCommand(t, testDependencies(&recordingCopier{}), filepath.Join(workingDirectory, "absent")); err == nil {
		t.Fatalf("expected error for a missing directory")
	}
	filePath := filepath.Join(workingDirectory, "file.txt")
	writeProjectFile(t, filePath, []byte("text"))
	if _, err := executeCommand(t, testDependencies(&recordingCopier{}), filePath); err == nil || !strings.Contains(err.Error(), "is not a directory") {
		t.Fatalf("expected not a directory error, got %v", err)
	}
}

func TestDigestCopiesDocumentToClipboard(t *testing.T) {
	workingDirectory := isolateCommandEnvironment(t)
	projectDirectory := createSampleProject(t)
	outputPath := filepath.Join(workingDirectory, "digest.txt")
	copier := &recordingCopier{}

	consoleOutput, err := executeCommand(t, testDependencies(copier), projectDirectory, "-f", outputPath, "--clipboard")
	if err != nil {
		t.Fatalf("digest failed: %v", err)
	}
	if len(copier.copied) != 1 || copier.copied[0] != readOutputFile(t, outputPath) {
		t.Fatalf("expected the written document on the clipboard, got %d copies", len(copier.copied))
	}
	if !strings.Contains(consoleOutput, "Digest copied to clipboard") {
		t.Fatalf("expected clipboard confirmation:\n%s", consoleOutput)
	}
}

func TestDigestClipboardFailureIsNotFatal(t *testing.T) {
	workingDirectory := isolateCommandEnvironment(t)
	projectDirectory := createSampleProject(t)
	copier := &recordingCopier{err: errors.New("no clipboard")}

	consoleOutput, err := executeCommand(t, testDependencies(copier), projectDirectory, "-f", filepath.Join(workingDirectory, "digest.txt"), "--clipboard", "yes")
	if err != nil {
		t.Fatalf("clipboard failure must not fail the digest: %v", err)
	}
	if strings.Contains(consoleOutput, "Digest copied to clipboard") {
		t.Fatalf("unexpected clipboard confirmation:\n%s", consoleOutput)
	}
}

func TestDigestUploadsAudit(t *testing.T) {
	workingDirectory := isolateCommandEnvironment(t)
	projectDirectory := createSampleProject(t)
	outputPath := filepath.Join(workingDirectory, "digest.txt")

	type capturedUpload struct {
		path   string
		apiKey string
		text   string
	}
	uploads := make(chan capturedUpload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)
		var payload map[string]string
		_ = json.Unmarshal(body, &payload)
		uploads <- capturedUpload{path: request.URL.Path, apiKey: request.Header.Get("x-api-key"), text: payload["text"]}
		responseWriter.Header().Set("Content-Type", "application/json")
		_, _ = responseWriter.Write([]byte(`{"status":"queued"}`))
	}))
	defer server.Close()

	consoleOutput, err := executeCommand(t, testDependencies(&recordingCopier{}), projectDirectory,
		"-f", outputPath, "--audit-upload", "--api-key", "secret", "--audit-base-url", server.URL)
	if err != nil {
		t.Fatalf("digest failed: %v", err)
	}

	received := <-uploads
	if received.path != "/api/repo/add" {
		t.Errorf("unexpected upload path %q", received.path)
	}
	if received.apiKey != "secret" {
		t.Errorf("unexpected api key %q", received.apiKey)
	}
	if received.text != readOutputFile(t, outputPath) {
		t.Errorf("uploaded text differs from the written document")
	}
	if !strings.Contains(consoleOutput, "Audit uploaded to "+server.URL+"/api/repo/add") {
		t.Errorf("expected upload confirmation:\n%s", consoleOutput)
	}
}

func TestDigestUploadWithoutAPIKeyFails(t *testing.T) {
	workingDirectory := isolateCommandEnvironment(t)
	projectDirectory := createSampleProject(t)

	_, err := executeCommand(t, testDependencies(&recordingCopier{}), projectDirectory, "-f", filepath.Join(workingDirectory, "digest.txt"), "--audit-upload")
	if !errors.Is(err, upload.ErrMissingAPIKey) {
		t.Fatalf("expected missing API key error, got %v", err)
	}
}

func TestDigestWithoutTokenizerCountsZero(t *testing.T) {
	workingDirectory := isolateCommandEnvironment(t)
	projectDirectory := createSampleProject(t)
	outputPath := filepath.Join(workingDirectory, "digest.txt")
	deps := testDependencies(&recordingCopier{})
	deps.newTokenCounter = func(tokenizer.Config) (tokenizer.Counter, string, error) {
		return nil, "", errors.New("encoding download failed")
	}

	if _, err := executeCommand(t, deps, projectDirectory, "-f", outputPath); err != nil {
		t.Fatalf("digest failed: %v", err)
	}
	if document := readOutputFile(t, outputPath); !strings.Contains(document, "- Total tokens: 0") {
		t.Fatalf("expected zero tokens without a tokenizer:\n%s", document)
	}
}

func TestVersionFlag(t *testing.T) {
	isolateCommandEnvironment(t)

	consoleOutput, err := executeCommand(t, testDependencies(&recordingCopier{}), "--version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(consoleOutput, "cdigest version: ") {
		t.Fatalf("unexpected version output %q", consoleOutput)
	}
}

func TestInitCommandWritesConfiguration(t *testing.T) {
	workingDirectory := isolateCommandEnvironment(t)
	configurationPath := filepath.Join(workingDirectory, ".cdigest.yaml")

	consoleOutput, err := executeCommand(t, testDependencies(&recordingCopier{}), "init")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(consoleOutput, configurationPath) {
		t.Fatalf("expected written path in output %q", consoleOutput)
	}
	if readOutputFile(t, configurationPath) != config.DefaultConfigurationTemplate() {
		t.Fatalf("unexpected configuration content")
	}

	if _, err := executeCommand(t, testDependencies(&recordingCopier{}), "init"); err == nil {
		t.Fatalf("expected init to refuse overwriting without --force")
	}
	if _, err := executeCommand(t, testDependencies(&recordingCopier{}), "init", "--force"); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
}

func TestInitCommandGlobalTarget(t *testing.T) {
	isolateCommandEnvironment(t)
	homeDirectory := os.Getenv("HOME")

	if _, err := executeCommand(t, testDependencies(&recordingCopier{}), "init", "--global"); err != nil {
		t.Fatalf("init --global failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(homeDirectory, ".cdigest", "config.yaml")); err != nil {
		t.Fatalf("expected global configuration: %v", err)
	}
}
