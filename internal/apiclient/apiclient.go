package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	internal_errors "github.com/itchan-dev/tunetag/shared/errors"
	"github.com/itchan-dev/tunetag/shared/metrics"
)

const maxResponseSize = 10 << 20

// APIClient struct handles all communication with the backend API.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
}

// New creates a client for the backend rooted at baseURL (for example
// "http://localhost:8000/api"). A zero timeout means no client-side limit;
// callers still bound every call through its context.
func New(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{
			Timeout:   timeout,
			Transport: metrics.NewTransport(nil),
		},
	}
}

// do is the single, unified helper for making API requests.
func (c *APIClient) do(ctx context.Context, method, route string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(metrics.WithRoute(ctx, route), method, c.BaseURL+route, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	return resp, nil
}

// post sends data as JSON to route and decodes the answer into out (when out
// is not nil). Every route shares one failure convention: a non-2xx status or
// a body with a non-empty "error" field is an *errors.APIError.
func (c *APIClient) post(ctx context.Context, route string, data, out any) error {
	raw, err := c.postRaw(ctx, route, data)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("cannot decode %s response: %w", route, err)
	}
	return nil
}

func (c *APIClient) postRaw(ctx context.Context, route string, data any) (json.RawMessage, error) {
	jsonBody, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", route, err)
	}

	resp, err := c.do(ctx, http.MethodPost, route, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cannot read %s response: %w", route, err)
	}
	if err := checkResponse(route, resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

type errorEnvelope struct {
	Error string `json:"error"`
}

func checkResponse(route string, status int, body []byte) error {
	var envelope errorEnvelope
	if isJSONObject(body) {
		// a body that is not an envelope just has no message to offer
		_ = json.Unmarshal(body, &envelope)
	}

	if status < 200 || status > 299 || envelope.Error != "" {
		return &internal_errors.APIError{Route: route, StatusCode: status, Message: envelope.Error}
	}
	return nil
}

func isJSONObject(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
