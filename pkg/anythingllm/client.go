package anythingllm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ClientInterface defines the workspace operations of the AnythingLLM API
type ClientInterface interface {
	CreateWorkspace(ctx context.Context, payload *WorkspacePayload) (*CreateWorkspaceResponse, error)
	UpdateWorkspace(ctx context.Context, slug string, req *UpdateWorkspaceRequest) (*UpdateWorkspaceResponse, error)
	DeleteWorkspace(ctx context.Context, slug string) error
	GetWorkspace(ctx context.Context, slug string) (*GetWorkspaceResponse, error)
	ListWorkspaces(ctx context.Context) (*ListWorkspacesResponse, error)
	Chat(ctx context.Context, slug string, req *ChatRequest) (*ChatResponse, error)
	StreamChat(ctx context.Context, slug string, req *ChatRequest) (*ChatStream, error)
	VectorSearch(ctx context.Context, slug string, req *VectorSearchRequest) (*VectorSearchResponse, error)
}

// Client provides a high-level interface for the AnythingLLM workspace API
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new AnythingLLM client with the given options
func NewClient(options ...ClientOption) *Client {
	config := DefaultConfig()

	for _, option := range options {
		option(config)
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

// CreateWorkspace creates a new workspace. The server assigns the slug;
// calling this twice with the same payload creates two distinct workspaces.
func (c *Client) CreateWorkspace(ctx context.Context, payload *WorkspacePayload) (*CreateWorkspaceResponse, error) {
	if payload == nil {
		return nil, fmt.Errorf("payload is required")
	}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/workspace/new", payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	var result CreateWorkspaceResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process create workspace response: %w", err)
	}

	return &result, nil
}

// UpdateWorkspace applies a partial settings update to a workspace
func (c *Client) UpdateWorkspace(ctx context.Context, slug string, req *UpdateWorkspaceRequest) (*UpdateWorkspaceResponse, error) {
	if slug == "" {
		return nil, fmt.Errorf("workspace slug is required")
	}

	path := fmt.Sprintf("/api/v1/workspace/%s/update", slug)
	resp, err := c.doRequest(ctx, "POST", path, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}

	var result UpdateWorkspaceResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process update workspace response: %w", err)
	}

	return &result, nil
}

// DeleteWorkspace deletes a workspace by slug. The caller decides how to
// treat a 404; it is surfaced as a regular *Error.
func (c *Client) DeleteWorkspace(ctx context.Context, slug string) error {
	if slug == "" {
		return fmt.Errorf("workspace slug is required")
	}

	path := fmt.Sprintf("/api/v1/workspace/%s", slug)
	resp, err := c.doRequest(ctx, "DELETE", path, nil)
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	if err := c.handleResponse(resp, nil); err != nil {
		return fmt.Errorf("failed to process delete workspace response: %w", err)
	}

	return nil
}

// GetWorkspace retrieves workspace details by slug
func (c *Client) GetWorkspace(ctx context.Context, slug string) (*GetWorkspaceResponse, error) {
	if slug == "" {
		return nil, fmt.Errorf("workspace slug is required")
	}

	path := fmt.Sprintf("/api/v1/workspace/%s", slug)
	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	var result GetWorkspaceResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process get workspace response: %w", err)
	}

	return &result, nil
}

// ListWorkspaces retrieves all workspaces on the server
func (c *Client) ListWorkspaces(ctx context.Context) (*ListWorkspacesResponse, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/workspaces", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	var result ListWorkspacesResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process list workspaces response: %w", err)
	}

	return &result, nil
}

// Chat sends a message to a workspace and blocks until the full answer
func (c *Client) Chat(ctx context.Context, slug string, req *ChatRequest) (*ChatResponse, error) {
	if slug == "" {
		return nil, fmt.Errorf("workspace slug is required")
	}
	if req == nil {
		return nil, fmt.Errorf("chat request is required")
	}

	path := fmt.Sprintf("/api/v1/workspace/%s/chat", slug)
	resp, err := c.doRequest(ctx, "POST", path, req)
	if err != nil {
		return nil, fmt.Errorf("failed to send chat message: %w", err)
	}

	var result ChatResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process chat response: %w", err)
	}

	return &result, nil
}

// StreamChat sends a message and returns a cursor over the streamed answer.
// The caller must drain or Close the returned stream to release the
// connection. The request is not retried.
func (c *Client) StreamChat(ctx context.Context, slug string, req *ChatRequest) (*ChatStream, error) {
	if slug == "" {
		return nil, fmt.Errorf("workspace slug is required")
	}
	if req == nil {
		return nil, fmt.Errorf("chat request is required")
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/workspace/%s/stream-chat", c.config.BaseURL, slug)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create stream chat request: %w", err)
	}
	c.applyHeaders(httpReq, nil)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute stream chat request: %w", err)
	}

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("stream chat failed with status %d", resp.StatusCode),
			Body:       string(body),
		}
	}

	return newChatStream(resp.Body), nil
}

// VectorSearch runs a semantic search within a workspace
func (c *Client) VectorSearch(ctx context.Context, slug string, req *VectorSearchRequest) (*VectorSearchResponse, error) {
	if slug == "" {
		return nil, fmt.Errorf("workspace slug is required")
	}
	if req == nil {
		return nil, fmt.Errorf("search request is required")
	}

	path := fmt.Sprintf("/api/v1/workspace/%s/vector-search", slug)
	resp, err := c.doRequest(ctx, "POST", path, req)
	if err != nil {
		return nil, fmt.Errorf("failed to run vector search: %w", err)
	}

	var result VectorSearchResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process vector search response: %w", err)
	}

	return &result, nil
}

// applyHeaders sets default headers, per-request headers, user agent and
// the bearer token when an API key is configured
func (c *Client) applyHeaders(req *http.Request, headers map[string]string) {
	for key, value := range c.config.DefaultHeaders {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
}

// doRequest performs an HTTP request with retry on transport failures and
// server errors. Client errors (4xx) are returned to the caller immediately.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	url := c.config.BaseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		var requestBody io.Reader
		if bodyBytes != nil {
			requestBody = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, requestBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		c.applyHeaders(req, nil)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			log.Error().
				Int("status_code", resp.StatusCode).
				Str("method", method).
				Str("path", path).
				Msg("server error")

			resp.Body.Close()
			lastErr = &Error{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("server error: %d", resp.StatusCode),
			}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", c.config.RetryAttempts, lastErr)
}

// handleResponse processes the HTTP response and unmarshals JSON if successful
func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errorResponse struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}

		message := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if json.Unmarshal(body, &errorResponse) == nil {
			if errorResponse.Error != "" {
				message = errorResponse.Error
			} else if errorResponse.Message != "" {
				message = errorResponse.Message
			}
		}

		return &Error{
			StatusCode: resp.StatusCode,
			Message:    message,
			Body:       string(body),
		}
	}

	// Some endpoints answer 204 or an empty body on success
	if result != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
