package types

import "encoding/json"

// Outbound request bodies for the OpenAI-compatible upstream. Responses are
// read by path (gjson) in internal/translate, so only requests are modeled.

// CompletionRequest is the payload for POST /completions.
type CompletionRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Stream      bool     `json:"stream"`
}

// ChatCompletionRequest is the payload for POST /chat/completions.
type ChatCompletionRequest struct {
	Model    string            `json:"model"`
	Messages []json.RawMessage `json:"messages"`
	Stream   bool              `json:"stream"`
}

// EmbeddingsRequest is the payload for POST /embeddings.
type EmbeddingsRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions"`
}
