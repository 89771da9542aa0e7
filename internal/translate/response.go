package translate

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/tidwall/gjson"

	"ollamaproxy/pkg/types"
)

// createdAtLayout is the Ollama created_at layout: UTC, second precision.
const createdAtLayout = "2006-01-02T15:04:05Z"

// Now is the clock used for created_at; tests may replace it.
var Now = time.Now

func parseUpstream(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &ShapeError{msg: "response is not valid JSON"}
	}
	return gjson.ParseBytes(body), nil
}

// ChatResponse extracts choices[0].message from a buffered chat completion.
// The message is passed through byte-for-byte; tool_calls is always empty.
func ChatResponse(body []byte) (types.ChatResponse, error) {
	doc, err := parseUpstream(body)
	if err != nil {
		return types.ChatResponse{}, err
	}
	first := doc.Get("choices.0")
	if !first.Exists() {
		return types.ChatResponse{}, errMissingChoices
	}
	msg := first.Get("message")
	if !msg.Exists() || msg.Type == gjson.Null {
		return types.ChatResponse{}, errMissingMessage
	}
	return types.ChatResponse{
		Message:   json.RawMessage(msg.Raw),
		ToolCalls: []json.RawMessage{},
	}, nil
}

// GenerateResponse reshapes a buffered completion into an Ollama generate
// response. The upstream's model name is reported when present.
func GenerateResponse(body []byte, requestedModel string) (types.GenerateResponse, error) {
	doc, err := parseUpstream(body)
	if err != nil {
		return types.GenerateResponse{}, err
	}
	first := doc.Get("choices.0")
	if !first.Exists() {
		return types.GenerateResponse{}, errMissingChoices
	}
	text := first.Get("text")
	if !text.Exists() {
		return types.GenerateResponse{}, errMissingText
	}
	model := doc.Get("model").String()
	if model == "" {
		model = requestedModel
	}
	return types.GenerateResponse{
		Model:     model,
		CreatedAt: Now().UTC().Format(createdAtLayout),
		Response:  text.String(),
		Done:      true,
	}, nil
}

// EmbedResponse reshapes an upstream embeddings body. One input yields the
// singular embedding key; several yield embeddings in input order.
func EmbedResponse(body []byte, inputs int, fallbackModel string) (types.EmbedResponse, error) {
	doc, err := parseUpstream(body)
	if err != nil {
		return types.EmbedResponse{}, err
	}
	data := doc.Get("data")
	if !data.IsArray() {
		return types.EmbedResponse{}, errMissingData
	}
	items := data.Array()
	if len(items) < inputs || inputs < 1 {
		return types.EmbedResponse{}, errMissingData
	}
	// Upstreams report each vector's input position in index.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Get("index").Int() < items[j].Get("index").Int()
	})
	vectors := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		v := it.Get("embedding")
		if !v.Exists() || v.Type == gjson.Null {
			return types.EmbedResponse{}, errMissingData
		}
		vectors = append(vectors, json.RawMessage(v.Raw))
	}

	model := doc.Get("model").String()
	if model == "" {
		model = fallbackModel
	}
	out := types.EmbedResponse{Model: model}
	if inputs == 1 {
		out.Embedding = vectors[0]
		return out, nil
	}
	out.Embeddings = make([]types.EmbeddingItem, len(vectors))
	for i, v := range vectors {
		out.Embeddings[i] = types.EmbeddingItem{Embedding: v}
	}
	return out, nil
}
