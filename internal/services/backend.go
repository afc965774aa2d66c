package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"floorplan-studio/internal/logger"
	"floorplan-studio/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const (
	analyzePath  = "/analyze"
	generatePath = "/generate_plan"
	historyPath  = "/history"
	downloadPath = "/download/"

	// maxResponseSize bounds how much of a backend response is read.
	maxResponseSize = 32 * 1024 * 1024
)

// BackendError is a failure the planner backend reported with success=false.
type BackendError struct {
	Op      string
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

// TransportError covers unreachable backends, timeouts and unparseable responses.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type BackendClient struct {
	client   *http.Client
	baseURL  string
	validate *validator.Validate
}

// NewBackendClient talks to the planner backend at baseURL. Timeouts come from
// the caller's context, so httpClient should not set its own.
func NewBackendClient(baseURL string, httpClient *http.Client) *BackendClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &BackendClient{
		client:   httpClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		validate: validator.New(),
	}
}

func (bc *BackendClient) Analyze(ctx context.Context, file *models.SelectedFile) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, file.Name))
	header.Set("Content-Type", file.MediaType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return "", &TransportError{Op: "analyze", Err: err}
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", &TransportError{Op: "analyze", Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", &TransportError{Op: "analyze", Err: err}
	}

	var resp models.AnalyzeResponse
	if err := bc.do(ctx, "analyze", http.MethodPost, analyzePath, writer.FormDataContentType(), &body, &resp, &resp.Success, &resp.Error); err != nil {
		var be *BackendError
		if errors.As(err, &be) && be.Message == "" {
			be.Message = "Analysis failed"
		}
		return "", err
	}

	logger.WithFields(logrus.Fields{
		"fileId":         file.ID,
		"analysisLength": len(resp.Analysis),
	}).Info("Received analysis from backend")

	return resp.Analysis, nil
}

func (bc *BackendClient) GeneratePlan(ctx context.Context, requirements string) (string, error) {
	request := models.GeneratePlanRequest{Requirements: requirements}
	if err := bc.validate.Struct(request); err != nil {
		return "", fmt.Errorf("invalid generate request: %w", err)
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return "", &TransportError{Op: "generate", Err: err}
	}

	var resp models.GeneratePlanResponse
	if err := bc.do(ctx, "generate", http.MethodPost, generatePath, "application/json", bytes.NewReader(payload), &resp, &resp.Success, &resp.Error); err != nil {
		var be *BackendError
		if errors.As(err, &be) && be.Message == "" {
			be.Message = "Plan generation failed"
		}
		return "", err
	}

	logger.WithFields(logrus.Fields{
		"planLength": len(resp.GeneratedPlan),
	}).Info("Received generated plan from backend")

	return resp.GeneratedPlan, nil
}

// History returns the backend's entries newest first. Entries that fail
// validation are skipped; a listing with no valid entry at all is an error.
func (bc *BackendClient) History(ctx context.Context) ([]models.HistoryEntry, error) {
	var resp models.HistoryResponse
	if err := bc.do(ctx, "history", http.MethodGet, historyPath, "", nil, &resp, &resp.Success, &resp.Error); err != nil {
		var be *BackendError
		if errors.As(err, &be) && be.Message == "" {
			be.Message = "Error loading history"
		}
		return nil, err
	}

	entries := make([]models.HistoryEntry, 0, len(resp.Files))
	for _, entry := range resp.Files {
		if err := bc.validate.Struct(entry); err != nil {
			logger.WithFields(logrus.Fields{
				"filename": entry.Filename,
				"error":    err.Error(),
			}).Warn("Skipping malformed history entry")
			continue
		}
		entries = append(entries, entry)
	}

	if len(resp.Files) > 0 && len(entries) == 0 {
		return nil, &TransportError{Op: "history", Err: fmt.Errorf("all %d history entries are malformed", len(resp.Files))}
	}

	return entries, nil
}

// DownloadURL is where a history entry's file is served by the backend.
func (bc *BackendClient) DownloadURL(filename string) string {
	return bc.baseURL + downloadPath + url.PathEscape(filename)
}

// do issues one request and decodes the JSON envelope into out. success and
// message point into out so the envelope check stays shared across endpoints.
func (bc *BackendClient) do(ctx context.Context, op, method, path, contentType string, body io.Reader, out interface{}, success *bool, message *string) error {
	req, err := http.NewRequestWithContext(ctx, method, bc.baseURL+path, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := bc.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("invalid response (status %d): %w", resp.StatusCode, err)}
	}

	if !*success {
		return &BackendError{Op: op, Message: *message}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{Op: op, Err: fmt.Errorf("unexpected status: %s", resp.Status)}
	}

	return nil
}
