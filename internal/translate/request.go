// Package translate maps Ollama-shaped requests to OpenAI-shaped upstream
// requests and upstream responses back to what Ollama clients expect.
package translate

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"ollamaproxy/pkg/types"
)

// Models holds the pinned upstream identifiers.
type Models struct {
	// Chat replaces the caller's model on /api/chat when PinChat is set,
	// and fills it in when the caller sent none.
	Chat    string
	PinChat bool
	// Embed and EmbedDimensions are always used for embeddings.
	Embed           string
	EmbedDimensions int
}

// Generate builds the /completions body for an /api/generate request.
func Generate(req types.GenerateRequest) (types.CompletionRequest, error) {
	if strings.TrimSpace(req.Model) == "" {
		return types.CompletionRequest{}, ErrValidation("model field is required")
	}
	if req.Prompt == nil {
		return types.CompletionRequest{}, ErrValidation("prompt field is required")
	}
	out := types.CompletionRequest{
		Model:  req.Model,
		Prompt: *req.Prompt,
		Stream: req.Stream,
	}
	if req.Options != nil {
		out.MaxTokens = req.Options.NumPredict
		out.Temperature = req.Options.Temperature
	}
	return out, nil
}

// Chat builds the /chat/completions body for an /api/chat request.
// Messages are forwarded verbatim and in order.
func Chat(req types.ChatRequest, m Models) (types.ChatCompletionRequest, error) {
	if len(req.Messages) == 0 {
		return types.ChatCompletionRequest{}, ErrValidation("messages field is required")
	}
	model := m.Chat
	if !m.PinChat && strings.TrimSpace(req.Model) != "" {
		model = req.Model
	}
	return types.ChatCompletionRequest{
		Model:    model,
		Messages: req.Messages,
		Stream:   req.Stream,
	}, nil
}

// embedFields lists the accepted input field names in priority order.
var embedFields = []string{"input", "inputs", "prompt", "prompts"}

// EmbedInputs extracts the embedding inputs from a raw request body. The
// first present field of input, inputs, prompt, prompts wins; a bare string
// becomes a one-element list.
func EmbedInputs(body []byte) ([]string, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrValidation("invalid JSON body")
	}
	doc := gjson.ParseBytes(body)
	for _, field := range embedFields {
		v := doc.Get(field)
		if !v.Exists() {
			continue
		}
		switch {
		case v.Type == gjson.String:
			return []string{v.String()}, nil
		case v.IsArray():
			items := v.Array()
			if len(items) == 0 {
				return nil, ErrValidation("'" + field + "' must not be empty")
			}
			out := make([]string, 0, len(items))
			for _, it := range items {
				if it.Type != gjson.String {
					return nil, ErrValidation("'" + field + "' must contain only strings")
				}
				out = append(out, it.String())
			}
			return out, nil
		default:
			return nil, ErrValidation("'" + field + "' must be a string or a list of strings")
		}
	}
	return nil, ErrValidation("missing 'input' or 'prompt' field")
}

// Embed builds the /embeddings body. Model and dimensions are always the
// configured ones.
func Embed(inputs []string, m Models) types.EmbeddingsRequest {
	return types.EmbeddingsRequest{
		Model:      m.Embed,
		Input:      inputs,
		Dimensions: m.EmbedDimensions,
	}
}

// ShowModel returns the model named by an /api/show body, preferring
// model over the legacy name field.
func ShowModel(body []byte) (string, error) {
	var req types.ShowRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", ErrValidation("invalid JSON body")
	}
	name := strings.TrimSpace(req.Model)
	if name == "" {
		name = strings.TrimSpace(req.Name)
	}
	if name == "" {
		return "", ErrValidation("model field required")
	}
	return name, nil
}
