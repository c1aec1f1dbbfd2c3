// Package managers holds the orchestration layer between the CLI and the
// AnythingLLM client: bulk workspace creation from JSON configuration,
// loading the remote workspace set and saving it back to disk.
package managers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"

	"github.com/llmspace/llmspace/pkg/anythingllm"
	"github.com/llmspace/llmspace/pkg/domain"
)

// Result is the outcome of one item of a bulk operation. Exactly one of
// Workspace and Err is set. Index follows the input order across the whole
// batch; Source names the originating file for directory bulk loads.
type Result struct {
	Index     int
	Name      string
	Source    string
	Workspace *domain.Workspace
	Err       error
}

// OK reports whether the item succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// FailureCount returns how many results in a batch failed
func FailureCount(results []Result) int {
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	return failed
}

// WorkspaceManager owns a set of workspace entities keyed by slug, or by a
// slugified local key while an entity has not been created remotely yet.
// The set is insertion-ordered and not synchronized with the server unless
// LoadWorkspaces is called. Not safe for concurrent use.
type WorkspaceManager struct {
	client     anythingllm.ClientInterface
	keys       []string
	workspaces map[string]*domain.Workspace
}

// WorkspaceManagerDependencies holds the dependencies for NewWorkspaceManager
type WorkspaceManagerDependencies struct {
	Client anythingllm.ClientInterface
}

func NewWorkspaceManager(deps WorkspaceManagerDependencies) *WorkspaceManager {
	return &WorkspaceManager{
		client:     deps.Client,
		workspaces: make(map[string]*domain.Workspace),
	}
}

// add stores a workspace under its slug, falling back to a slugified name
// for entities the server has not identified yet
func (m *WorkspaceManager) add(ws *domain.Workspace) {
	key := ws.Slug()
	if key == "" {
		key = slug.Make(ws.Config().WorkspaceName)
	}
	if _, exists := m.workspaces[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.workspaces[key] = ws
}

func (m *WorkspaceManager) remove(key string) {
	if _, exists := m.workspaces[key]; !exists {
		return
	}
	delete(m.workspaces, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Workspaces returns the managed entities in insertion order
func (m *WorkspaceManager) Workspaces() []*domain.Workspace {
	out := make([]*domain.Workspace, 0, len(m.keys))
	for _, key := range m.keys {
		out = append(out, m.workspaces[key])
	}
	return out
}

// Len returns the number of managed workspaces
func (m *WorkspaceManager) Len() int {
	return len(m.keys)
}

// splitConfigs turns a JSON document into its item list: an array yields
// its elements, a single object yields itself
func splitConfigs(raw []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var item json.RawMessage
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, err
	}
	return []json.RawMessage{item}, nil
}

// peekName extracts workspace_name from a raw config for result reporting,
// tolerating configs that fail full validation
func peekName(raw json.RawMessage) string {
	var doc struct {
		WorkspaceName string `json:"workspace_name"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	return doc.WorkspaceName
}

// createConfigs processes items one at a time in order. A failed item is
// recorded and never aborts the rest of the batch.
func (m *WorkspaceManager) createConfigs(ctx context.Context, items []json.RawMessage, source string, startIndex int) []Result {
	results := make([]Result, 0, len(items))

	for i, item := range items {
		result := Result{
			Index:  startIndex + i,
			Name:   peekName(item),
			Source: source,
		}

		ws, err := domain.WorkspaceFromJSON(m.client, item)
		if err == nil {
			err = ws.Create(ctx)
		}

		if err != nil {
			log.Warn().
				Err(err).
				Int("index", result.Index).
				Str("name", result.Name).
				Msg("workspace creation failed")
			result.Err = err
		} else {
			result.Name = ws.Config().WorkspaceName
			result.Workspace = ws
			m.add(ws)
		}

		results = append(results, result)
	}

	return results
}

// CreateWorkspacesFromJSON creates workspaces from a JSON document holding
// one configuration object or an array of them. Each item is processed
// independently and tagged success or failure in the returned results; only
// an unparsable top-level document fails the whole call.
func (m *WorkspaceManager) CreateWorkspacesFromJSON(ctx context.Context, raw []byte) ([]Result, error) {
	items, err := splitConfigs(raw)
	if err != nil {
		return nil, fmt.Errorf("parse workspace configs: %w", err)
	}
	return m.createConfigs(ctx, items, "", 0), nil
}

// CreateWorkspacesFromFile reads a JSON file and creates workspaces from
// its configurations with the same per-item semantics as
// CreateWorkspacesFromJSON
func (m *WorkspaceManager) CreateWorkspacesFromFile(ctx context.Context, path string) ([]Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ConfigFileError{Path: path, Err: err}
	}

	items, err := splitConfigs(raw)
	if err != nil {
		return nil, &domain.ConfigFileError{Path: path, Err: err}
	}

	return m.createConfigs(ctx, items, filepath.Base(path), 0), nil
}

// CreateWorkspacesFromRolesDir creates workspaces from every *.json file
// directly inside dir, in filename order. A file that cannot be read or
// parsed contributes one failed result and does not block the other files.
func (m *WorkspaceManager) CreateWorkspacesFromRolesDir(ctx context.Context, dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.ConfigFileError{Path: dir, Err: err}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	var results []Result
	for _, name := range files {
		path := filepath.Join(dir, name)

		raw, err := os.ReadFile(path)
		var items []json.RawMessage
		if err == nil {
			items, err = splitConfigs(raw)
		}
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("skipping unreadable role file")
			results = append(results, Result{
				Index:  len(results),
				Source: name,
				Err:    &domain.ConfigFileError{Path: path, Err: err},
			})
			continue
		}

		results = append(results, m.createConfigs(ctx, items, name, len(results))...)
	}

	return results, nil
}

// ListWorkspaces fetches the raw remote workspace summaries without
// touching the managed set
func (m *WorkspaceManager) ListWorkspaces(ctx context.Context) ([]anythingllm.WorkspaceSummary, error) {
	resp, err := m.client.ListWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return resp.Workspaces, nil
}

// LoadWorkspaces replaces the entire managed set with entities built from
// the remote listing. Local-only workspaces that were never created
// remotely are dropped by this call.
func (m *WorkspaceManager) LoadWorkspaces(ctx context.Context) error {
	summaries, err := m.ListWorkspaces(ctx)
	if err != nil {
		return err
	}

	m.keys = nil
	m.workspaces = make(map[string]*domain.Workspace)

	for _, summary := range summaries {
		if summary.Slug == "" {
			continue
		}
		m.add(domain.AttachWorkspace(m.client, summary))
	}

	return nil
}

// GetWorkspace returns the managed workspace with the given slug. It never
// fetches from the server.
func (m *WorkspaceManager) GetWorkspace(slug string) (*domain.Workspace, error) {
	ws, ok := m.workspaces[slug]
	if !ok {
		return nil, &domain.NotFoundError{Slug: slug}
	}
	return ws, nil
}

// DeleteWorkspace deletes the managed workspace with the given slug on the
// server and removes it from the set only if the delete succeeds
func (m *WorkspaceManager) DeleteWorkspace(ctx context.Context, slug string) error {
	ws, err := m.GetWorkspace(slug)
	if err != nil {
		return err
	}

	if err := ws.Delete(ctx); err != nil {
		return err
	}

	m.remove(slug)
	return nil
}

// SaveWorkspacesToFile writes the managed configurations as a JSON array in
// insertion order, overwriting path
func (m *WorkspaceManager) SaveWorkspacesToFile(path string) error {
	configs := make([]domain.Config, 0, len(m.keys))
	for _, ws := range m.Workspaces() {
		configs = append(configs, ws.Config())
	}

	data, err := json.MarshalIndent(configs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workspace configs: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write workspace configs: %w", err)
	}

	return nil
}
