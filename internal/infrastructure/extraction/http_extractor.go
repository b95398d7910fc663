package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/bizledger/backend/internal/application/purchasing"
	"github.com/bizledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 60 * time.Second
	// maxResponseBytes bounds how much of a response body is read
	maxResponseBytes = 4 << 20
	formFieldFile    = "file"
)

// HTTPExtractor posts PDFs to an extraction endpoint as multipart/form-data
// and decodes the returned JSON payload.
type HTTPExtractor struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures an HTTPExtractor
type Option func(*HTTPExtractor)

// WithHTTPClient replaces the default client, e.g. to add transport instrumentation
func WithHTTPClient(client *http.Client) Option {
	return func(e *HTTPExtractor) {
		e.httpClient = client
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *HTTPExtractor) {
		e.logger = logger
	}
}

// NewHTTPExtractor creates an extractor for cfg.Endpoint
func NewHTTPExtractor(cfg config.ExtractionConfig, opts ...Option) (*HTTPExtractor, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("extraction: endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	e := &HTTPExtractor{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

var _ purchasing.DocumentExtractor = (*HTTPExtractor)(nil)

// Extract uploads the document and returns the extracted payload.
// The payload is not validated here; the intake service does that.
func (e *HTTPExtractor) Extract(ctx context.Context, filename string, pdf []byte) (*purchasing.ParsedGrvDocument, error) {
	if len(pdf) == 0 {
		return nil, newExtractionError("upload", ErrEmptyDocument, filename)
	}

	body, contentType, err := multipartBody(filename, pdf)
	if err != nil {
		return nil, newExtractionError("encode", err, filename)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, body)
	if err != nil {
		return nil, newExtractionError("upload", err, "failed to create request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, newExtractionError("upload", ctxErr, filename)
		}
		return nil, newExtractionError("upload", fmt.Errorf("%w: %v", ErrServiceUnavailable, err), filename)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, newExtractionError("read", err, "failed to read response")
	}

	e.logger.Debug("Extraction service responded",
		zap.String("filename", filename),
		zap.Int("status", resp.StatusCode),
		zap.Int("document_bytes", len(pdf)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return nil, newExtractionError("upload", ErrRejected, rejectionDetails(resp.StatusCode, respBody))
	}

	var doc purchasing.ParsedGrvDocument
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, newExtractionError("decode", fmt.Errorf("%w: %v", ErrMalformedResponse, err), filename)
	}
	return &doc, nil
}

func multipartBody(filename string, pdf []byte) (*bytes.Buffer, string, error) {
	if filename == "" {
		filename = "document.pdf"
	}
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile(formFieldFile, filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(pdf); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// extractionErrorResponse is the error body the extraction service may send
type extractionErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func rejectionDetails(status int, body []byte) string {
	var errResp extractionErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if msg := strings.TrimSpace(errResp.Message + " " + errResp.Error); msg != "" {
			return fmt.Sprintf("HTTP %d: %s", status, msg)
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}
