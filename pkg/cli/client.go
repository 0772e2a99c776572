// Package cli implements revengine-cli, a thin command-line wrapper around
// the revision engine's HTTP API.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIError is returned when the server responds with a non-2xx status.
type APIError struct {
	HTTPStatus int
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.HTTPStatus, e.Message)
}

// Client is a minimal HTTP client for the revision engine API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient constructs a Client against baseURL.
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 30 * time.Second}}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 300 {
		var apiErr APIError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		apiErr.HTTPStatus = resp.StatusCode
		return &apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Compare runs a compare operation between two documents.
func (c *Client) Compare(ctx context.Context, leftDocID, rightDocID string) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, http.MethodPost, "/compare", map[string]string{
		"left_doc_id": leftDocID, "right_doc_id": rightDocID,
	}, &out)
	return out, err
}

// GetCompare fetches a previously persisted compare run.
func (c *Client) GetCompare(ctx context.Context, runID string) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, http.MethodGet, "/compare/"+runID, nil, &out)
	return out, err
}

// Merge runs a three-way merge between a base and incoming document.
func (c *Client) Merge(ctx context.Context, baseDocID, incomingDocID string) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, http.MethodPost, "/merge", map[string]string{
		"base_doc_id": baseDocID, "incoming_doc_id": incomingDocID,
	}, &out)
	return out, err
}

// GetMerge fetches a previously persisted merge run.
func (c *Client) GetMerge(ctx context.Context, mergeID string) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, http.MethodGet, "/merge/"+mergeID, nil, &out)
	return out, err
}

// ResolveConflict applies a resolution to a merge conflict.
func (c *Client) ResolveConflict(ctx context.Context, mergeID, conflictID, resolution string) error {
	return c.do(ctx, http.MethodPost,
		fmt.Sprintf("/merge/%s/conflicts/%s/resolve", mergeID, conflictID),
		map[string]string{"resolution": resolution}, nil)
}

// CreateWorkflow starts a new document review workflow.
func (c *Client) CreateWorkflow(ctx context.Context, documentID string) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, http.MethodPost, "/workflows", map[string]string{"document_id": documentID}, &out)
	return out, err
}

// GetWorkflow fetches a workflow by id.
func (c *Client) GetWorkflow(ctx context.Context, id string) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, http.MethodGet, "/workflows/"+id, nil, &out)
	return out, err
}

// SubmitWorkflowEvent advances a workflow by submitting an event.
func (c *Client) SubmitWorkflowEvent(ctx context.Context, id, eventType string, payload map[string]any) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, http.MethodPost, "/workflows/"+id+"/events", map[string]any{
		"event_type": eventType, "payload": payload,
	}, &out)
	return out, err
}
