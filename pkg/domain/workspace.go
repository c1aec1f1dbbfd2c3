package domain

import (
	"context"
	"fmt"

	"github.com/llmspace/llmspace/pkg/anythingllm"
)

// Workspace ties one configuration to a remote AnythingLLM workspace. The
// slug is empty until Create succeeds or the workspace is attached from a
// server listing; every slug-addressed operation requires it.
type Workspace struct {
	client anythingllm.ClientInterface
	cfg    Config
	id     int
	slug   string
}

// NewWorkspace builds a local-only workspace from a validated configuration
func NewWorkspace(client anythingllm.ClientInterface, cfg Config) (*Workspace, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Workspace{client: client, cfg: cfg}, nil
}

// WorkspaceFromJSON builds a local-only workspace from a raw configuration
// object, applying the standard defaults
func WorkspaceFromJSON(client anythingllm.ClientInterface, raw []byte) (*Workspace, error) {
	cfg, err := ConfigFromJSON(raw)
	if err != nil {
		return nil, err
	}
	return &Workspace{client: client, cfg: cfg}, nil
}

// AttachWorkspace builds a remote-backed workspace from a server listing
// entry. Settings the server omitted take the standard defaults.
func AttachWorkspace(client anythingllm.ClientInterface, summary anythingllm.WorkspaceSummary) *Workspace {
	defaults := StandardDefaults()

	cfg := Config{
		WorkspaceName:        summary.Name,
		Temperature:          defaults.Temperature,
		SimilarityThreshold:  defaults.SimilarityThreshold,
		HistoryCount:         defaults.HistoryCount,
		QueryRefusalResponse: defaults.QueryRefusalResponse,
		ChatMode:             defaults.ChatMode,
		TopN:                 defaults.TopN,
	}
	if summary.OpenAIPrompt != nil {
		cfg.CustomPrompt = *summary.OpenAIPrompt
	}
	if summary.OpenAITemp != nil {
		cfg.Temperature = *summary.OpenAITemp
	}
	if summary.SimilarityThreshold != nil {
		cfg.SimilarityThreshold = *summary.SimilarityThreshold
	}
	if summary.OpenAIHistory != nil {
		cfg.HistoryCount = *summary.OpenAIHistory
	}
	if summary.QueryRefusalResponse != nil {
		cfg.QueryRefusalResponse = *summary.QueryRefusalResponse
	}
	if summary.ChatMode != nil {
		cfg.ChatMode = *summary.ChatMode
	}
	if summary.TopN != nil {
		cfg.TopN = *summary.TopN
	}

	return &Workspace{
		client: client,
		cfg:    cfg,
		id:     summary.ID,
		slug:   summary.Slug,
	}
}

// Config returns a copy of the workspace's configuration. Slug and
// credentials are never part of it, so marshaling the returned value is the
// round-trippable file representation.
func (w *Workspace) Config() Config {
	return w.cfg
}

// Slug returns the server-assigned identifier, empty while local-only
func (w *Workspace) Slug() string {
	return w.slug
}

// ID returns the server-assigned numeric id, zero while local-only
func (w *Workspace) ID() int {
	return w.id
}

func (w *Workspace) String() string {
	return fmt.Sprintf("Workspace(name=%s, slug=%s)", w.cfg.WorkspaceName, w.slug)
}

func (w *Workspace) payload() *anythingllm.WorkspacePayload {
	return &anythingllm.WorkspacePayload{
		Name:                 w.cfg.WorkspaceName,
		OpenAIPrompt:         w.cfg.CustomPrompt,
		OpenAITemp:           w.cfg.Temperature,
		OpenAIHistory:        w.cfg.HistoryCount,
		SimilarityThreshold:  w.cfg.SimilarityThreshold,
		QueryRefusalResponse: w.cfg.QueryRefusalResponse,
		ChatMode:             w.cfg.ChatMode,
		TopN:                 w.cfg.TopN,
	}
}

// Create registers the workspace on the server and stores the assigned
// slug. Creation is not deduplicated: calling Create twice makes two remote
// workspaces, which is the caller's responsibility to avoid.
func (w *Workspace) Create(ctx context.Context) error {
	if w.cfg.WorkspaceName == "" || w.cfg.CustomPrompt == "" {
		return &PreconditionError{Reason: "workspace name and custom prompt must be set before create"}
	}

	resp, err := w.client.CreateWorkspace(ctx, w.payload())
	if err != nil {
		return err
	}

	if resp.Workspace != nil {
		w.id = resp.Workspace.ID
		w.slug = resp.Workspace.Slug
	}

	return nil
}

// UpdateFields is the subset of settings to change in Update. Nil fields
// are left untouched.
type UpdateFields struct {
	WorkspaceName        *string
	CustomPrompt         *string
	Temperature          *float64
	SimilarityThreshold  *float64
	HistoryCount         *int
	QueryRefusalResponse *string
	ChatMode             *string
	TopN                 *int
}

// Update sends only the supplied field subset to the server and merges the
// accepted fields into the local configuration on success
func (w *Workspace) Update(ctx context.Context, fields UpdateFields) error {
	if w.slug == "" {
		return errNoSlug("update the workspace")
	}

	req := &anythingllm.UpdateWorkspaceRequest{
		Name:                 fields.WorkspaceName,
		OpenAIPrompt:         fields.CustomPrompt,
		OpenAITemp:           fields.Temperature,
		OpenAIHistory:        fields.HistoryCount,
		SimilarityThreshold:  fields.SimilarityThreshold,
		QueryRefusalResponse: fields.QueryRefusalResponse,
		ChatMode:             fields.ChatMode,
		TopN:                 fields.TopN,
	}

	if _, err := w.client.UpdateWorkspace(ctx, w.slug, req); err != nil {
		return err
	}

	if fields.WorkspaceName != nil {
		w.cfg.WorkspaceName = *fields.WorkspaceName
	}
	if fields.CustomPrompt != nil {
		w.cfg.CustomPrompt = *fields.CustomPrompt
	}
	if fields.Temperature != nil {
		w.cfg.Temperature = *fields.Temperature
	}
	if fields.SimilarityThreshold != nil {
		w.cfg.SimilarityThreshold = *fields.SimilarityThreshold
	}
	if fields.HistoryCount != nil {
		w.cfg.HistoryCount = *fields.HistoryCount
	}
	if fields.QueryRefusalResponse != nil {
		w.cfg.QueryRefusalResponse = *fields.QueryRefusalResponse
	}
	if fields.ChatMode != nil {
		w.cfg.ChatMode = *fields.ChatMode
	}
	if fields.TopN != nil {
		w.cfg.TopN = *fields.TopN
	}

	return nil
}

// Delete removes the workspace from the server and clears the local slug,
// returning the entity to the local-only state. A 404 counts as success so
// deletes stay idempotent for cleanup.
func (w *Workspace) Delete(ctx context.Context) error {
	if w.slug == "" {
		return errNoSlug("delete the workspace")
	}

	if err := w.client.DeleteWorkspace(ctx, w.slug); err != nil && !anythingllm.IsNotFoundError(err) {
		return err
	}

	w.id = 0
	w.slug = ""
	return nil
}

// Details fetches the current server-side state of the workspace
func (w *Workspace) Details(ctx context.Context) (*anythingllm.WorkspaceSummary, error) {
	if w.slug == "" {
		return nil, errNoSlug("get workspace details")
	}

	resp, err := w.client.GetWorkspace(ctx, w.slug)
	if err != nil {
		return nil, err
	}

	return resp.Workspace, nil
}

// ChatOptions carries the optional parts of a chat call. A zero value uses
// the workspace's configured chat mode with no session or attachments.
type ChatOptions struct {
	Mode        string
	SessionID   string
	Attachments []anythingllm.ChatAttachment
}

func (w *Workspace) chatRequest(message string, opts ChatOptions) *anythingllm.ChatRequest {
	mode := opts.Mode
	if mode == "" {
		mode = w.cfg.ChatMode
	}
	return &anythingllm.ChatRequest{
		Message:     message,
		Mode:        mode,
		SessionID:   opts.SessionID,
		Attachments: opts.Attachments,
	}
}

// Chat sends one message and blocks until the full answer arrives
func (w *Workspace) Chat(ctx context.Context, message string, opts ChatOptions) (*anythingllm.ChatResponse, error) {
	if w.slug == "" {
		return nil, errNoSlug("chat with the workspace")
	}
	return w.client.Chat(ctx, w.slug, w.chatRequest(message, opts))
}

// StreamChat sends one message and returns a cursor over the streamed
// answer chunks. The caller owns the stream and must drain or Close it.
func (w *Workspace) StreamChat(ctx context.Context, message string, opts ChatOptions) (*anythingllm.ChatStream, error) {
	if w.slug == "" {
		return nil, errNoSlug("stream chat with the workspace")
	}
	return w.client.StreamChat(ctx, w.slug, w.chatRequest(message, opts))
}

// SearchOptions carries the optional parts of a vector search. Nil values
// fall back to the workspace's configured settings.
type SearchOptions struct {
	TopN           *int
	ScoreThreshold *float64
}

// VectorSearch runs a semantic search within the workspace, passing the
// server's scored results through untouched
func (w *Workspace) VectorSearch(ctx context.Context, query string, opts SearchOptions) (*anythingllm.VectorSearchResponse, error) {
	if w.slug == "" {
		return nil, errNoSlug("search the workspace")
	}

	topN := opts.TopN
	if topN == nil {
		n := w.cfg.TopN
		topN = &n
	}

	return w.client.VectorSearch(ctx, w.slug, &anythingllm.VectorSearchRequest{
		Query:          query,
		TopN:           topN,
		ScoreThreshold: opts.ScoreThreshold,
	})
}
