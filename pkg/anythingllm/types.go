// Package anythingllm provides a Go client for the AnythingLLM developer API.
// It covers the workspace endpoints: create, update, delete, detail, listing,
// chat (blocking and streamed) and vector search.
package anythingllm

// ChatMode selects how the server answers a message. "chat" blends the
// conversation history with retrieved context, "query" answers strictly from
// retrieved context.
type ChatMode string

const (
	ChatModeChat  ChatMode = "chat"
	ChatModeQuery ChatMode = "query"
)

// WorkspacePayload carries the full workspace settings on create. Field
// names follow the server's wire contract.
type WorkspacePayload struct {
	Name                 string  `json:"name"`
	OpenAIPrompt         string  `json:"openAiPrompt"`
	OpenAITemp           float64 `json:"openAiTemp"`
	OpenAIHistory        int     `json:"openAiHistory"`
	SimilarityThreshold  float64 `json:"similarityThreshold"`
	QueryRefusalResponse string  `json:"queryRefusalResponse"`
	ChatMode             string  `json:"chatMode"`
	TopN                 int     `json:"topN"`
}

// UpdateWorkspaceRequest carries a partial settings update. Nil fields are
// omitted from the request body and left untouched on the server.
type UpdateWorkspaceRequest struct {
	Name                 *string  `json:"name,omitempty"`
	OpenAIPrompt         *string  `json:"openAiPrompt,omitempty"`
	OpenAITemp           *float64 `json:"openAiTemp,omitempty"`
	OpenAIHistory        *int     `json:"openAiHistory,omitempty"`
	SimilarityThreshold  *float64 `json:"similarityThreshold,omitempty"`
	QueryRefusalResponse *string  `json:"queryRefusalResponse,omitempty"`
	ChatMode             *string  `json:"chatMode,omitempty"`
	TopN                 *int     `json:"topN,omitempty"`
}

// WorkspaceSummary is the server's representation of a workspace. Settings
// fields are pointers because older servers omit them from listings.
type WorkspaceSummary struct {
	ID                   int      `json:"id"`
	Name                 string   `json:"name"`
	Slug                 string   `json:"slug"`
	OpenAIPrompt         *string  `json:"openAiPrompt"`
	OpenAITemp           *float64 `json:"openAiTemp"`
	OpenAIHistory        *int     `json:"openAiHistory"`
	SimilarityThreshold  *float64 `json:"similarityThreshold"`
	QueryRefusalResponse *string  `json:"queryRefusalResponse"`
	ChatMode             *string  `json:"chatMode"`
	TopN                 *int     `json:"topN"`
	CreatedAt            string   `json:"createdAt,omitempty"`
}

// CreateWorkspaceResponse is the response to a workspace creation
type CreateWorkspaceResponse struct {
	Workspace *WorkspaceSummary `json:"workspace"`
	Message   string            `json:"message,omitempty"`
}

// UpdateWorkspaceResponse is the response to a workspace update
type UpdateWorkspaceResponse struct {
	Workspace *WorkspaceSummary `json:"workspace"`
	Message   string            `json:"message,omitempty"`
}

// GetWorkspaceResponse is the response to a workspace detail request
type GetWorkspaceResponse struct {
	Workspace *WorkspaceSummary `json:"workspace"`
}

// ListWorkspacesResponse is the response to a workspace listing
type ListWorkspacesResponse struct {
	Workspaces []WorkspaceSummary `json:"workspaces"`
}

// ChatAttachment is an inline file sent with a chat message
type ChatAttachment struct {
	Name          string `json:"name"`
	Mime          string `json:"mime"`
	ContentString string `json:"contentString"`
}

// ChatRequest is the body of a chat or stream-chat call
type ChatRequest struct {
	Message     string           `json:"message"`
	Mode        string           `json:"mode"`
	SessionID   string           `json:"sessionId,omitempty"`
	Attachments []ChatAttachment `json:"attachments,omitempty"`
}

// ChatSource is a retrieved document reference attached to a chat answer
type ChatSource struct {
	Title string  `json:"title,omitempty"`
	Chunk string  `json:"chunk,omitempty"`
	Score float64 `json:"score,omitempty"`
}

// ChatResponse is the full answer of a blocking chat call
type ChatResponse struct {
	ID           string       `json:"id,omitempty"`
	Type         string       `json:"type,omitempty"`
	TextResponse string       `json:"textResponse"`
	Sources      []ChatSource `json:"sources,omitempty"`
	Close        bool         `json:"close,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// ChatChunk is one unit of a streamed chat response. The chunk carrying
// Close=true is the last one the server sends.
type ChatChunk struct {
	UUID         string       `json:"uuid,omitempty"`
	Type         string       `json:"type,omitempty"`
	TextResponse string       `json:"textResponse"`
	Sources      []ChatSource `json:"sources,omitempty"`
	Close        bool         `json:"close"`
	Error        string       `json:"error,omitempty"`
}

// VectorSearchRequest is the body of a vector search call. Nil TopN and
// ScoreThreshold leave the workspace's configured values in effect.
type VectorSearchRequest struct {
	Query          string   `json:"query"`
	TopN           *int     `json:"topN,omitempty"`
	ScoreThreshold *float64 `json:"scoreThreshold,omitempty"`
}

// VectorSearchResult is one scored match from a vector search
type VectorSearchResult struct {
	Score    float64        `json:"score"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// VectorSearchResponse is the response to a vector search, passed through
// from the server without local reranking
type VectorSearchResponse struct {
	Results []VectorSearchResult `json:"results"`
}
