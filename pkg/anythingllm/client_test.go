package anythingllm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_BearerAuth(t *testing.T) {
	var gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		json.NewEncoder(w).Encode(ListWorkspacesResponse{})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithAPIKey("secret-token"))
	_, err := client.ListWorkspaces(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
}

func TestClient_NoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(ListWorkspacesResponse{})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.ListWorkspaces(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_TrailingSlashBaseURL(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(ListWorkspacesResponse{})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL + "/"))
	_, err := client.ListWorkspaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/workspaces", gotPath)
}

func TestClient_ErrorResponseParsing(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "error field",
			status:      http.StatusBadRequest,
			body:        `{"error": "name already in use"}`,
			wantMessage: "name already in use",
		},
		{
			name:        "message field",
			status:      http.StatusForbidden,
			body:        `{"message": "forbidden"}`,
			wantMessage: "forbidden",
		},
		{
			name:        "unparsable body",
			status:      http.StatusNotFound,
			body:        `gone`,
			wantMessage: "HTTP 404",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client := NewClient(WithBaseURL(server.URL), WithRetry(0, 0))
			_, err := client.GetWorkspace(context.Background(), "some-slug")

			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.body, apiErr.Body)
		})
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(ListWorkspacesResponse{
			Workspaces: []WorkspaceSummary{{Name: "A", Slug: "a"}},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithRetry(3, 0))
	resp, err := client.ListWorkspaces(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, attempts)
	require.Len(t, resp.Workspaces, 1)
	assert.Equal(t, "a", resp.Workspaces[0].Slug)
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithRetry(3, 0))
	_, err := client.GetWorkspace(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.True(t, IsNotFoundError(err))
}

func TestClient_StreamChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/workspace/tech-help/stream-chat", r.URL.Path)

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hi", req.Message)

		fmt.Fprintln(w, `{"textResponse": "he"}`)
		fmt.Fprintln(w, `{"textResponse": "llo", "close": true}`)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	stream, err := client.StreamChat(context.Background(), "tech-help", &ChatRequest{Message: "hi", Mode: "chat"})
	require.NoError(t, err)

	chunks, err := stream.Collect()
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "he", chunks[0].TextResponse)
	assert.True(t, chunks[1].Close)
}

func TestClient_StreamChatErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": "no access"}`)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.StreamChat(context.Background(), "tech-help", &ChatRequest{Message: "hi"})

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}
