package types

import "encoding/json"

// GenerateOptions carries the subset of Ollama sampling options the gateway maps upstream.
type GenerateOptions struct {
	// Maximum number of tokens to generate (mapped to max_tokens).
	// example: 128
	NumPredict *int `json:"num_predict,omitempty" example:"128"`
	// Sampling temperature.
	// example: 0.7
	Temperature *float64 `json:"temperature,omitempty" example:"0.7"`
}

// GenerateRequest is the Ollama /api/generate payload.
type GenerateRequest struct {
	// Model identifier forwarded to the upstream completion endpoint.
	// example: llama3.2:3b
	Model string `json:"model" example:"llama3.2:3b"`
	// Prompt text to complete. An empty prompt is forwarded as is; only a
	// missing one is rejected.
	// example: Why is the sky blue?
	Prompt *string `json:"prompt" example:"Why is the sky blue?"`
	// Optional sampling options.
	Options *GenerateOptions `json:"options,omitempty"`
	// If true, upstream bytes are streamed back as text/event-stream. Defaults to false.
	// example: false
	Stream bool `json:"stream,omitempty" example:"false"`
}

// GenerateResponse is the buffered /api/generate response.
type GenerateResponse struct {
	// example: gpt-4o-mini
	Model string `json:"model" example:"gpt-4o-mini"`
	// Creation time, ISO-8601 UTC with second precision.
	// example: 2025-06-03T16:22:53Z
	CreatedAt string `json:"created_at" example:"2025-06-03T16:22:53Z"`
	// Completion text.
	Response string `json:"response"`
	// Always true for buffered responses.
	Done bool `json:"done"`
}

// ChatRequest is the Ollama /api/chat payload. Messages are kept raw so that
// fields the gateway does not model (images, names, tool results) reach the
// upstream untouched.
type ChatRequest struct {
	// Requested model; replaced by the configured chat model when pinning is on.
	// example: llama3.1:latest
	Model string `json:"model,omitempty" example:"llama3.1:latest"`
	// Ordered conversation, each element an object with role and content.
	Messages []json.RawMessage `json:"messages" swaggertype:"array,object"`
	// If true, the response is streamed as NDJSON.
	// example: true
	Stream bool `json:"stream,omitempty" example:"true"`
}

// ChatResponse is the buffered /api/chat response.
type ChatResponse struct {
	// Assistant message exactly as returned by the upstream in choices[0].message.
	Message json.RawMessage `json:"message" swaggertype:"object"`
	// Always empty; tool calls are not translated.
	ToolCalls []json.RawMessage `json:"tool_calls" swaggertype:"array,object"`
}

// EmbeddingItem is one vector in a multi-input embeddings response.
type EmbeddingItem struct {
	Embedding json.RawMessage `json:"embedding" swaggertype:"array,number"`
}

// EmbedResponse is the /api/embed(dings) response. Exactly one of Embedding
// (single input) or Embeddings (several inputs) is set.
type EmbedResponse struct {
	// example: text-embedding-3-small
	Model      string          `json:"model" example:"text-embedding-3-small"`
	Embedding  json.RawMessage `json:"embedding,omitempty" swaggertype:"array,number"`
	Embeddings []EmbeddingItem `json:"embeddings,omitempty"`
}

// ShowRequest is the /api/show payload. Name is the legacy spelling of Model.
type ShowRequest struct {
	// example: gpt-4o-mini
	Model string `json:"model" example:"gpt-4o-mini"`
	Name  string `json:"name,omitempty"`
}

// VersionResponse is returned by GET /api/version.
type VersionResponse struct {
	// example: 0.6.0
	Version string `json:"version" example:"0.6.0"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: messages field is required
	Error string `json:"error" example:"messages field is required"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
	// Status returned by the upstream, when the failure came from there.
	// example: 401
	UpstreamStatus int `json:"upstream_status,omitempty" example:"401"`
}
