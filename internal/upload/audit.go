// Package upload submits produced documents to a remote audit service.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/cdigest/internal/utils"
)

const (
	// DefaultBaseURL is the audit service used when none is configured.
	DefaultBaseURL = "https://codeaudits.ai/"

	addRepositoryPath = "api/repo/add"
	apiKeyHeader      = "x-api-key"
	contentTypeHeader = "Content-Type"
	userAgentHeader   = "User-Agent"
	jsonContentType   = "application/json"
	requestTimeout    = 60 * time.Second
	maxResponseBytes  = 2 << 20

	encodePayloadErrorFormat  = "encode audit payload: %w"
	buildRequestErrorFormat   = "build audit request: %w"
	sendRequestErrorFormat    = "send audit request: %w"
	readResponseErrorFormat   = "read audit response: %w"
	uploadFailedErrorFormat   = "failed to upload audit: %s"
	decodeResponseErrorFormat = "decode audit response: %w"

	uploadingInfoMessage = "uploading to audits API"
	uploadedInfoMessage  = "audit uploaded successfully"
	urlLogField          = "url"
	responseLogField     = "response"
	statusLogField       = "status"
	bytesLogField        = "bytes"
)

var (
	// ErrMissingAPIKey reports an uploader constructed without an API key.
	ErrMissingAPIKey = errors.New("API key is required to upload audit")
	// ErrEmptyAudit reports an attempt to upload an empty document.
	ErrEmptyAudit    = errors.New("repository content is required to upload")
)

type httpClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// AuditUploader posts documents to the audit service.
type AuditUploader struct {
	apiKey      string
	endpoint    string
	submittedBy string
	client      httpClient
	logger      *zap.Logger
}

// NewAuditUploader returns an uploader for baseURL. A nil client selects a
// default HTTP client; submittedBy is sent as the User-Agent.
func NewAuditUploader(apiKey string, baseURL string, submittedBy string, client httpClient, logger *zap.Logger) (*AuditUploader, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &AuditUploader{
		apiKey:      apiKey,
		endpoint:    baseURL + addRepositoryPath,
		submittedBy: submittedBy,
		client:      client,
		logger:      utils.LoggerOrNop(logger),
	}, nil
}

// Endpoint returns the URL documents are posted to.
func (uploader *AuditUploader) Endpoint() string {
	return uploader.endpoint
}

// Upload posts audit and returns the decoded response of the service.
func (uploader *AuditUploader) Upload(ctx context.Context, audit string) (map[string]any, error) {
	if audit == "" {
		return nil, ErrEmptyAudit
	}
	payload, encodeError := json.Marshal(map[string]string{"text": audit})
	if encodeError != nil {
		return nil, fmt.Errorf(encodePayloadErrorFormat, encodeError)
	}
	request, requestError := http.NewRequestWithContext(ctx, http.MethodPost, uploader.endpoint, bytes.NewReader(payload))
	if requestError != nil {
		return nil, fmt.Errorf(buildRequestErrorFormat, requestError)
	}
	request.Header.Set(apiKeyHeader, uploader.apiKey)
	request.Header.Set(contentTypeHeader, jsonContentType)
	if uploader.submittedBy != "" {
		request.Header.Set(userAgentHeader, uploader.submittedBy)
	}

	uploader.logger.Info(uploadingInfoMessage, zap.String(urlLogField, uploader.endpoint), zap.Int(bytesLogField, len(audit)))
	response, sendError := uploader.client.Do(request)
	if sendError != nil {
		return nil, fmt.Errorf(sendRequestErrorFormat, sendError)
	}
	defer response.Body.Close()

	body, readError := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if readError != nil {
		return nil, fmt.Errorf(readResponseErrorFormat, readError)
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(uploadFailedErrorFormat, strings.TrimSpace(string(body)))
	}

	var auditInfo map[string]any
	if decodeError := json.Unmarshal(body, &auditInfo); decodeError != nil {
		return nil, fmt.Errorf(decodeResponseErrorFormat, decodeError)
	}
	uploader.logger.Info(uploadedInfoMessage, zap.Int(statusLogField, response.StatusCode), zap.Any(responseLogField, auditInfo))
	return auditInfo, nil
}
