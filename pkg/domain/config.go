package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/llmspace/llmspace/pkg/anythingllm"
)

// Defaults is the set of values filled into a workspace configuration when
// a field is absent or null. Keeping them in one record keeps defaulting
// out of the parsing code.
type Defaults struct {
	Temperature          float64
	SimilarityThreshold  float64
	HistoryCount         int
	QueryRefusalResponse string
	ChatMode             string
	TopN                 int
}

// StandardDefaults returns the defaults applied by ConfigFromJSON
func StandardDefaults() Defaults {
	return Defaults{
		Temperature:          0.7,
		SimilarityThreshold:  0.7,
		HistoryCount:         20,
		QueryRefusalResponse: "I'm sorry, I cannot answer that question based on the available information.",
		ChatMode:             string(anythingllm.ChatModeChat),
		TopN:                 4,
	}
}

// Config holds one workspace's settings in the configuration file format.
// WorkspaceName and CustomPrompt are required; everything else defaults.
type Config struct {
	WorkspaceName        string  `json:"workspace_name"`
	CustomPrompt         string  `json:"custom_prompt"`
	Temperature          float64 `json:"temperature"`
	SimilarityThreshold  float64 `json:"similarity_threshold"`
	HistoryCount         int     `json:"history_count"`
	QueryRefusalResponse string  `json:"query_refusal_response"`
	ChatMode             string  `json:"chat_mode"`
	TopN                 int     `json:"top_n"`
}

// configDoc distinguishes absent/null fields from zero values during parsing
type configDoc struct {
	WorkspaceName        *string  `json:"workspace_name"`
	CustomPrompt         *string  `json:"custom_prompt"`
	Temperature          *float64 `json:"temperature"`
	SimilarityThreshold  *float64 `json:"similarity_threshold"`
	HistoryCount         *int     `json:"history_count"`
	QueryRefusalResponse *string  `json:"query_refusal_response"`
	ChatMode             *string  `json:"chat_mode"`
	TopN                 *int     `json:"top_n"`
}

// ConfigFromJSON parses a single configuration object, validates the
// required fields and fills defaults for the rest. Wrong-typed values fail
// rather than coerce.
func ConfigFromJSON(raw []byte) (Config, error) {
	return ConfigFromJSONWithDefaults(raw, StandardDefaults())
}

// ConfigFromJSONWithDefaults is ConfigFromJSON with a caller-supplied
// defaults record
func ConfigFromJSONWithDefaults(raw []byte, defaults Defaults) (Config, error) {
	var doc configDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return Config{}, &ValidationError{
				Fields: []string{typeErr.Field},
				Reason: fmt.Sprintf("field %q must be of type %s", typeErr.Field, typeErr.Type),
			}
		}
		return Config{}, &ValidationError{Reason: fmt.Sprintf("not a valid config object: %v", err)}
	}

	var missing []string
	if doc.WorkspaceName == nil || *doc.WorkspaceName == "" {
		missing = append(missing, "workspace_name")
	}
	if doc.CustomPrompt == nil || *doc.CustomPrompt == "" {
		missing = append(missing, "custom_prompt")
	}
	if len(missing) > 0 {
		return Config{}, &ValidationError{Fields: missing}
	}

	cfg := Config{
		WorkspaceName:        *doc.WorkspaceName,
		CustomPrompt:         *doc.CustomPrompt,
		Temperature:          defaults.Temperature,
		SimilarityThreshold:  defaults.SimilarityThreshold,
		HistoryCount:         defaults.HistoryCount,
		QueryRefusalResponse: defaults.QueryRefusalResponse,
		ChatMode:             defaults.ChatMode,
		TopN:                 defaults.TopN,
	}

	if doc.Temperature != nil {
		cfg.Temperature = *doc.Temperature
	}
	if doc.SimilarityThreshold != nil {
		cfg.SimilarityThreshold = *doc.SimilarityThreshold
	}
	if doc.HistoryCount != nil {
		cfg.HistoryCount = *doc.HistoryCount
	}
	if doc.QueryRefusalResponse != nil {
		cfg.QueryRefusalResponse = *doc.QueryRefusalResponse
	}
	if doc.ChatMode != nil {
		cfg.ChatMode = *doc.ChatMode
	}
	if doc.TopN != nil {
		cfg.TopN = *doc.TopN
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the required fields and the chat mode enum
func (c Config) Validate() error {
	var missing []string
	if c.WorkspaceName == "" {
		missing = append(missing, "workspace_name")
	}
	if c.CustomPrompt == "" {
		missing = append(missing, "custom_prompt")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}

	if mode := anythingllm.ChatMode(c.ChatMode); mode != anythingllm.ChatModeChat && mode != anythingllm.ChatModeQuery {
		return &ValidationError{
			Fields: []string{"chat_mode"},
			Reason: fmt.Sprintf("chat_mode must be %q or %q, got %q", anythingllm.ChatModeChat, anythingllm.ChatModeQuery, c.ChatMode),
		}
	}

	return nil
}
