// Package registry serves the emulated "installed models" catalog for /api/tags.
// The catalog is static: the upstream's own model list is never consulted.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ollamaproxy/internal/common/fsutil"
	"ollamaproxy/pkg/types"
)

// Catalog is an immutable list of model descriptors.
type Catalog struct {
	models []types.ModelDescriptor
}

func i64(v int64) *int64   { return &v }
func str(v string) *string { return &v }

// builtin mirrors a small local Ollama install: one chat model, one
// embedding model and one larger chat model.
var builtin = []types.ModelDescriptor{
	{
		Name:       "llama3.2:3b",
		Model:      "llama3.2:3b",
		ModifiedAt: "2025-06-03T16:22:53.8203312Z",
		Size:       i64(2019393189),
		Digest:     str("a80c4f17acd55265feec403c7aef86be0c25983ab279d83f3bcd3abbcb5b8b72"),
		Details: types.ModelDetails{
			Format: "gguf", Family: "llama", Families: []string{"llama"},
			ParameterSize: "3.2B", QuantizationLevel: "Q4_K_M",
		},
	},
	{
		Name:       "nomic-embed-text:latest",
		Model:      "nomic-embed-text:latest",
		ModifiedAt: "2024-10-24T17:55:24.103472Z",
		Size:       i64(274302450),
		Digest:     str("0a109f422b47e3a30ba2b10eca18548e944e8a23073ee3f3e947efcf3c45e59f"),
		Details: types.ModelDetails{
			Format: "gguf", Family: "nomic-bert", Families: []string{"nomic-bert"},
			ParameterSize: "137M", QuantizationLevel: "F16",
		},
	},
	{
		Name:       "llama3.1:latest",
		Model:      "llama3.1:latest",
		ModifiedAt: "2024-10-24T17:53:31.7416903Z",
		Size:       i64(4661230766),
		Digest:     str("42182419e9508c30c4b1fe55015f06b65f4ca4b9e28a744be55008d21998a093"),
		Details: types.ModelDetails{
			Format: "gguf", Family: "llama", Families: []string{"llama"},
			ParameterSize: "8.0B", QuantizationLevel: "Q4_0",
		},
	},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{models: builtin}
}

// LoadFile reads a catalog from a .yaml/.yml/.json/.toml file shaped like the
// /api/tags response ({"models": [...]}). Missing model fields default to the
// name, and a missing modified_at defaults to the load time.
func LoadFile(path string) (*Catalog, error) {
	var doc types.TagsResponse
	if err := fsutil.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	if len(doc.Models) == 0 {
		return nil, errors.New("catalog has no models")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i := range doc.Models {
		m := &doc.Models[i]
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			return nil, fmt.Errorf("catalog model %d: name is required", i)
		}
		if m.Model == "" {
			m.Model = m.Name
		}
		if m.ModifiedAt == "" {
			m.ModifiedAt = now
		} else if _, err := time.Parse(time.RFC3339Nano, m.ModifiedAt); err != nil {
			return nil, fmt.Errorf("catalog model %q: modified_at: %w", m.Name, err)
		}
		if m.Details.Families == nil && m.Details.Family != "" {
			m.Details.Families = []string{m.Details.Family}
		}
	}
	return &Catalog{models: doc.Models}, nil
}

// Len reports the number of models in the catalog.
func (c *Catalog) Len() int { return len(c.models) }

// Tags returns a freshly built /api/tags payload. Callers may mutate it.
func (c *Catalog) Tags() types.TagsResponse {
	out := make([]types.ModelDescriptor, len(c.models))
	for i, m := range c.models {
		m.Details.Families = append([]string(nil), m.Details.Families...)
		if m.Size != nil {
			m.Size = i64(*m.Size)
		}
		if m.Digest != nil {
			m.Digest = str(*m.Digest)
		}
		out[i] = m
	}
	return types.TagsResponse{Models: out}
}
