package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"ollamaproxy/internal/registry"
	"ollamaproxy/internal/translate"
	"ollamaproxy/pkg/types"
)

// Upstream paths relative to the configured base URL.
const (
	pathCompletions = "/completions"
	pathChat        = "/chat/completions"
	pathEmbeddings  = "/embeddings"
	pathModels      = "/models/"
)

// Upstream is the subset of *upstream.Client the gateway needs.
type Upstream interface {
	PostJSON(ctx context.Context, path string, payload any) ([]byte, error)
	Get(ctx context.Context, path string) ([]byte, error)
	Stream(ctx context.Context, path string, payload any) (io.ReadCloser, error)
}

// Config carries the collaborators and pinned models of a Service.
type Config struct {
	Upstream        Upstream
	Catalog         *registry.Catalog
	Models          translate.Models
	ReportedVersion string
	Logger          zerolog.Logger
}

// Service implements the HTTP layer's service interface.
type Service struct {
	up      Upstream
	catalog *registry.Catalog
	models  translate.Models
	version string
	log     zerolog.Logger
}

// New builds a Service. A nil catalog falls back to the built-in one.
func New(cfg Config) *Service {
	cat := cfg.Catalog
	if cat == nil {
		cat = registry.Default()
	}
	return &Service{
		up:      cfg.Upstream,
		catalog: cat,
		models:  cfg.Models,
		version: cfg.ReportedVersion,
		log:     cfg.Logger,
	}
}

// Generate performs a buffered /api/generate.
func (s *Service) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	payload, err := translate.Generate(req)
	if err != nil {
		return types.GenerateResponse{}, err
	}
	payload.Stream = false
	body, err := s.up.PostJSON(ctx, pathCompletions, payload)
	if err != nil {
		return types.GenerateResponse{}, err
	}
	return translate.GenerateResponse(body, req.Model)
}

// GenerateStream relays the upstream completion stream to w byte for byte.
func (s *Service) GenerateStream(ctx context.Context, req types.GenerateRequest, w io.Writer, flush func()) error {
	payload, err := translate.Generate(req)
	if err != nil {
		return err
	}
	payload.Stream = true
	rc, err := s.up.Stream(ctx, pathCompletions, payload)
	if err != nil {
		return err
	}
	defer rc.Close()
	if _, err := translate.PassThrough(w, rc, flush); err != nil {
		return fmt.Errorf("relay completion stream: %w", err)
	}
	return nil
}

// Chat performs a buffered /api/chat.
func (s *Service) Chat(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	payload, err := translate.Chat(req, s.models)
	if err != nil {
		return types.ChatResponse{}, err
	}
	payload.Stream = false
	body, err := s.up.PostJSON(ctx, pathChat, payload)
	if err != nil {
		return types.ChatResponse{}, err
	}
	return translate.ChatResponse(body)
}

// ChatStream writes one NDJSON frame per upstream chunk, flushing after
// each, and the terminator line once the upstream signals completion.
func (s *Service) ChatStream(ctx context.Context, req types.ChatRequest, w io.Writer, flush func()) error {
	payload, err := translate.Chat(req, s.models)
	if err != nil {
		return err
	}
	payload.Stream = true
	rc, err := s.up.Stream(ctx, pathChat, payload)
	if err != nil {
		return err
	}
	defer rc.Close()

	skipped := func(p []byte) {
		s.log.Debug().Str("request_id", middleware.GetReqID(ctx)).Bytes("payload", p).Msg("skipping malformed chat chunk")
	}
	for frame, err := range translate.ChatFrames(rc, skipped) {
		if err != nil {
			return fmt.Errorf("read chat stream: %w", err)
		}
		if _, err := w.Write(frame); err != nil {
			return err
		}
		if flush != nil {
			flush()
		}
	}
	return nil
}

// Embed handles both /api/embed and /api/embeddings from the raw body.
func (s *Service) Embed(ctx context.Context, body []byte) (types.EmbedResponse, error) {
	inputs, err := translate.EmbedInputs(body)
	if err != nil {
		return types.EmbedResponse{}, err
	}
	resp, err := s.up.PostJSON(ctx, pathEmbeddings, translate.Embed(inputs, s.models))
	if err != nil {
		return types.EmbedResponse{}, err
	}
	return translate.EmbedResponse(resp, len(inputs), s.models.Embed)
}

// Show returns the upstream's raw model document for the named model.
func (s *Service) Show(ctx context.Context, body []byte) (json.RawMessage, error) {
	name, err := translate.ShowModel(body)
	if err != nil {
		return nil, err
	}
	return s.up.Get(ctx, pathModels+url.PathEscape(name))
}

// Tags lists the emulated installed models.
func (s *Service) Tags() types.TagsResponse { return s.catalog.Tags() }

// Version reports the Ollama version the gateway claims to be.
func (s *Service) Version() types.VersionResponse {
	return types.VersionResponse{Version: s.version}
}
