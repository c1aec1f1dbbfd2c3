package managers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	gosimpleslug "github.com/gosimple/slug"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmspace/llmspace/pkg/anythingllm"
	"github.com/llmspace/llmspace/pkg/domain"
)

// fakeServer emulates the workspace endpoints, assigning slugs from names
// and recording every created workspace
type fakeServer struct {
	t       *testing.T
	created []string
	deleted []string
	listing []anythingllm.WorkspaceSummary
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/workspace/new", func(w http.ResponseWriter, r *http.Request) {
		var payload anythingllm.WorkspacePayload
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&payload))
		f.created = append(f.created, payload.Name)

		json.NewEncoder(w).Encode(anythingllm.CreateWorkspaceResponse{
			Workspace: &anythingllm.WorkspaceSummary{
				ID:   len(f.created),
				Name: payload.Name,
				Slug: gosimpleslug.Make(payload.Name),
			},
		})
	})

	mux.HandleFunc("GET /api/v1/workspaces", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anythingllm.ListWorkspacesResponse{Workspaces: f.listing})
	})

	mux.HandleFunc("DELETE /api/v1/workspace/{slug}", func(w http.ResponseWriter, r *http.Request) {
		f.deleted = append(f.deleted, r.PathValue("slug"))
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

func newTestManager(t *testing.T) (*WorkspaceManager, *fakeServer) {
	t.Helper()

	fake := &fakeServer{t: t}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client := anythingllm.NewClient(
		anythingllm.WithBaseURL(server.URL),
		anythingllm.WithRetry(0, 0),
	)
	manager := NewWorkspaceManager(WorkspaceManagerDependencies{Client: client})
	return manager, fake
}

func TestCreateWorkspacesFromJSON_SingleObject(t *testing.T) {
	manager, fake := newTestManager(t)

	results, err := manager.CreateWorkspacesFromJSON(context.Background(),
		[]byte(`{"workspace_name": "Tech Help", "custom_prompt": "You are an expert in tech."}`))
	require.NoError(t, err)

	require.Len(t, results, 1)
	require.True(t, results[0].OK())
	assert.Equal(t, "tech-help", results[0].Workspace.Slug())
	assert.Equal(t, []string{"Tech Help"}, fake.created)
	assert.Equal(t, 1, manager.Len())
}

func TestCreateWorkspacesFromJSON_PartialFailure(t *testing.T) {
	manager, fake := newTestManager(t)

	raw := []byte(`[
		{"workspace_name": "First", "custom_prompt": "a"},
		{"workspace_name": "Second"},
		{"workspace_name": "Third", "custom_prompt": "c"}
	]`)

	results, err := manager.CreateWorkspacesFromJSON(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].OK())
	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, "First", results[0].Name)

	require.False(t, results[1].OK())
	assert.Equal(t, 1, results[1].Index)
	assert.Equal(t, "Second", results[1].Name)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, results[1].Err, &validationErr)

	assert.True(t, results[2].OK())
	assert.Equal(t, 2, results[2].Index)

	// Items 1 and 3 reached the remote create call, in input order
	assert.Equal(t, []string{"First", "Third"}, fake.created)
	assert.Equal(t, 2, manager.Len())
	assert.Equal(t, 1, FailureCount(results))
}

func TestCreateWorkspacesFromJSON_BadTopLevel(t *testing.T) {
	manager, fake := newTestManager(t)

	_, err := manager.CreateWorkspacesFromJSON(context.Background(), []byte(`[{"workspace_name": `))
	require.Error(t, err)
	assert.Empty(t, fake.created)
}

func TestCreateWorkspacesFromFile(t *testing.T) {
	manager, _ := newTestManager(t)

	path := filepath.Join(t.TempDir(), "workspaces.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"workspace_name": "A", "custom_prompt": "pa"},
		{"workspace_name": "B", "custom_prompt": "pb"}
	]`), 0o644))

	results, err := manager.CreateWorkspacesFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Zero(t, FailureCount(results))
}

func TestCreateWorkspacesFromFile_Missing(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.CreateWorkspacesFromFile(context.Background(), "/no/such/file.json")

	var fileErr *domain.ConfigFileError
	require.ErrorAs(t, err, &fileErr)
}

func TestCreateWorkspacesFromFile_InvalidJSON(t *testing.T) {
	manager, _ := newTestManager(t)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))

	_, err := manager.CreateWorkspacesFromFile(context.Background(), path)

	var fileErr *domain.ConfigFileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, path, fileErr.Path)
}

func TestCreateWorkspacesFromRolesDir(t *testing.T) {
	manager, fake := newTestManager(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "analyst.json"),
		[]byte(`{"workspace_name": "Analyst", "custom_prompt": "Analyze."}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"),
		[]byte(`{"workspace_name": `), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coder.json"),
		[]byte(`{"workspace_name": "Coder", "custom_prompt": "Code."}`), 0o644))
	// Non-JSON files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`hi`), 0o644))

	results, err := manager.CreateWorkspacesFromRolesDir(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.True(t, results[0].OK())
	assert.Equal(t, "analyst.json", results[0].Source)

	require.False(t, results[1].OK())
	assert.Equal(t, "broken.json", results[1].Source)
	var fileErr *domain.ConfigFileError
	assert.ErrorAs(t, results[1].Err, &fileErr)

	assert.True(t, results[2].OK())
	assert.Equal(t, "coder.json", results[2].Source)

	assert.Equal(t, []string{"Analyst", "Coder"}, fake.created)
}

func TestCreateWorkspacesFromRolesDir_Missing(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.CreateWorkspacesFromRolesDir(context.Background(), "/no/such/dir")

	var fileErr *domain.ConfigFileError
	require.ErrorAs(t, err, &fileErr)
}

func TestLoadWorkspaces_ReplacesLocalSet(t *testing.T) {
	manager, fake := newTestManager(t)

	// A local-only workspace that was never created remotely
	results, err := manager.CreateWorkspacesFromJSON(context.Background(),
		[]byte(`{"workspace_name": "Local", "custom_prompt": "p"}`))
	require.NoError(t, err)
	require.True(t, results[0].OK())

	prompt := "Remote prompt"
	fake.listing = []anythingllm.WorkspaceSummary{
		{ID: 1, Name: "Remote One", Slug: "remote-one", OpenAIPrompt: &prompt},
		{ID: 2, Name: "Remote Two", Slug: "remote-two"},
	}

	require.NoError(t, manager.LoadWorkspaces(context.Background()))

	assert.Equal(t, 2, manager.Len())
	_, err = manager.GetWorkspace("local")
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	ws, err := manager.GetWorkspace("remote-one")
	require.NoError(t, err)
	assert.Equal(t, "Remote prompt", ws.Config().CustomPrompt)
	assert.Equal(t, 0.7, ws.Config().Temperature)
}

func TestGetWorkspace_NotFound(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.GetWorkspace("nope")

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.Slug)
}

func TestDeleteWorkspace_RemovesFromSet(t *testing.T) {
	manager, fake := newTestManager(t)

	_, err := manager.CreateWorkspacesFromJSON(context.Background(),
		[]byte(`{"workspace_name": "Doomed", "custom_prompt": "p"}`))
	require.NoError(t, err)
	require.Equal(t, 1, manager.Len())

	require.NoError(t, manager.DeleteWorkspace(context.Background(), "doomed"))

	assert.Equal(t, []string{"doomed"}, fake.deleted)
	assert.Equal(t, 0, manager.Len())
}

func TestSaveWorkspacesToFile(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.CreateWorkspacesFromJSON(context.Background(), []byte(`[
		{"workspace_name": "B First", "custom_prompt": "pb"},
		{"workspace_name": "A Second", "custom_prompt": "pa"}
	]`))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, manager.SaveWorkspacesToFile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var configs []domain.Config
	require.NoError(t, json.Unmarshal(raw, &configs))

	// Insertion order is preserved, not alphabetical
	require.Len(t, configs, 2)
	assert.Equal(t, "B First", configs[0].WorkspaceName)
	assert.Equal(t, "A Second", configs[1].WorkspaceName)
	assert.Equal(t, 0.7, configs[0].Temperature)
}
