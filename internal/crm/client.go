// Package crm is the HTTP client for the CRM backend REST API. The backend
// owns all persistence; this service only calls its endpoints.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/salesops/crm-import/internal/core"
)

// Client calls the CRM backend.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a backend client. httpClient may be nil, in which case a
// client with a 30s timeout is used. Request timeouts are the HTTP client's
// responsibility; the import pipeline does not add its own per-call deadline.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// errorResponse is the backend's error body shape.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e errorResponse) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// CreateCompany submits one company to POST /companies.
//
// Status mapping to the categorized error signal:
//
//	201             -> success, created company returned
//	409             -> duplicate (corporate-number conflict)
//	400, 422        -> validation (server-side field rejection)
//	anything else   -> other
func (c *Client) CreateCompany(ctx context.Context, payload core.CompanyPayload) (core.CreatedCompany, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return core.CreatedCompany{}, fmt.Errorf("marshal company: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/companies", bytes.NewReader(data))
	if err != nil {
		return core.CreatedCompany{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.CreatedCompany{}, fmt.Errorf("create company: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return core.CreatedCompany{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
		var created core.CreatedCompany
		if err := json.Unmarshal(body, &created); err != nil {
			return core.CreatedCompany{}, fmt.Errorf("decode response: %w", err)
		}
		return created, nil
	}

	var errResp errorResponse
	_ = json.Unmarshal(body, &errResp)

	return core.CreatedCompany{}, &core.APIError{
		Category:   categoryForStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    errResp.text(),
	}
}

func categoryForStatus(status int) core.OutcomeCategory {
	switch status {
	case http.StatusConflict:
		return core.OutcomeDuplicate
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return core.OutcomeValidation
	default:
		return core.OutcomeOther
	}
}
