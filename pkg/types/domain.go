package types

// ModelDetails describes the format and family of a catalog model.
type ModelDetails struct {
	ParentModel string `json:"parent_model" yaml:"parent_model" toml:"parent_model"`
	// example: gguf
	Format string `json:"format" yaml:"format" toml:"format" example:"gguf"`
	// example: llama
	Family   string   `json:"family" yaml:"family" toml:"family" example:"llama"`
	Families []string `json:"families" yaml:"families" toml:"families"`
	// example: 3.2B
	ParameterSize string `json:"parameter_size" yaml:"parameter_size" toml:"parameter_size" example:"3.2B"`
	// example: Q4_K_M
	QuantizationLevel string `json:"quantization_level" yaml:"quantization_level" toml:"quantization_level" example:"Q4_K_M"`
}

// ModelDescriptor is one entry of the emulated /api/tags catalog.
type ModelDescriptor struct {
	// example: llama3.2:3b
	Name string `json:"name" yaml:"name" toml:"name" example:"llama3.2:3b"`
	// example: llama3.2:3b
	Model string `json:"model" yaml:"model" toml:"model" example:"llama3.2:3b"`
	// Last modification time, ISO-8601 UTC.
	// example: 2025-06-03T16:22:53.8203312Z
	ModifiedAt string `json:"modified_at" yaml:"modified_at" toml:"modified_at" example:"2025-06-03T16:22:53.8203312Z"`
	// Size in bytes; null when unknown.
	Size *int64 `json:"size" yaml:"size" toml:"size"`
	// Content digest; null when unknown.
	Digest  *string      `json:"digest" yaml:"digest" toml:"digest"`
	Details ModelDetails `json:"details" yaml:"details" toml:"details"`
}

// TagsResponse wraps the catalog returned by GET /api/tags.
type TagsResponse struct {
	Models []ModelDescriptor `json:"models" yaml:"models" toml:"models"`
}
