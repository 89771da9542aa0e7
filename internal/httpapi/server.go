package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ollamaproxy/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error)
	GenerateStream(ctx context.Context, req types.GenerateRequest, w io.Writer, flush func()) error
	Chat(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error)
	ChatStream(ctx context.Context, req types.ChatRequest, w io.Writer, flush func()) error
	Embed(ctx context.Context, body []byte) (types.EmbedResponse, error)
	Show(ctx context.Context, body []byte) (json.RawMessage, error)
	Tags() types.TagsResponse
	Version() types.VersionResponse
}

const (
	// RootMessage is the liveness text served on / .
	RootMessage = "Ollama proxy is running"
	// NotImplementedMessage answers every model-management endpoint.
	NotImplementedMessage = "Not implemented in OpenAI proxy."

	contentTypeNDJSON = "application/x-ndjson"
	contentTypeSSE    = "text/event-stream"
)

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Streams are never buffered by the compressor.
	r.Use(middleware.Compress(5, "application/json"))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		methods, headers := corsDefaults()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: methods,
			AllowedHeaders: headers,
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	h := &handlers{svc: svc}

	r.Get("/", rootHandler)
	r.Head("/", rootHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", h.generate)
		r.Post("/chat", h.chat)
		r.Post("/embed", h.embed)
		r.Post("/embeddings", h.embed)
		r.Get("/tags", h.tags)
		r.Post("/show", h.show)
		r.Get("/version", h.version)

		r.Post("/pull", notImplemented)
		r.Post("/create", notImplemented)
		r.Post("/copy", notImplemented)
		r.Delete("/delete", notImplemented)
		r.Post("/stop", notImplemented)
		r.Get("/ps", notImplemented)
	})
	r.Post("/v1/completions", h.chat)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, RootMessage)
}

func notImplemented(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotImplemented)
	_, _ = io.WriteString(w, NotImplementedMessage)
}

type handlers struct {
	svc Service
}

// generate godoc
// @Summary      Complete a prompt
// @Description  Buffered JSON by default; with stream=true the upstream SSE bytes are relayed unchanged.
// @Tags         inference
// @Accept       json
// @Produce      json
// @Produce      text/event-stream
// @Param        request  body      types.GenerateRequest  true  "Generate request"
// @Success      200      {object}  types.GenerateResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      502      {object}  types.ErrorResponse
// @Router       /api/generate [post]
func (h *handlers) generate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rl := newRequestLog(r, req.Model)
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()

	if req.Stream {
		streamResponse(ctx, w, r, rl, contentTypeSSE, func(ctx context.Context, out io.Writer, flush func()) error {
			return h.svc.GenerateStream(ctx, req, out, flush)
		})
		return
	}
	resp, err := h.svc.Generate(ctx, req)
	respond(w, r, rl, resp, err)
}

// chat godoc
// @Summary      Chat completion
// @Description  The model is pinned to the configured chat model. With stream=true the response is NDJSON, one line per upstream chunk, ending with a [DONE] line.
// @Tags         inference
// @Accept       json
// @Produce      json
// @Produce      application/x-ndjson
// @Param        request  body      types.ChatRequest  true  "Chat request"
// @Success      200      {object}  types.ChatResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Failure      502      {object}  types.ErrorResponse
// @Router       /api/chat [post]
// @Router       /v1/completions [post]
func (h *handlers) chat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rl := newRequestLog(r, req.Model)
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()

	if req.Stream {
		streamResponse(ctx, w, r, rl, contentTypeNDJSON, func(ctx context.Context, out io.Writer, flush func()) error {
			return h.svc.ChatStream(ctx, req, out, flush)
		})
		return
	}
	resp, err := h.svc.Chat(ctx, req)
	respond(w, r, rl, resp, err)
}

// embed godoc
// @Summary      Create embeddings
// @Description  Accepts input, inputs, prompt or prompts as a string or list of strings. One input yields "embedding", several yield "embeddings".
// @Tags         inference
// @Accept       json
// @Produce      json
// @Success      200  {object}  types.EmbedResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      502  {object}  types.ErrorResponse
// @Router       /api/embed [post]
// @Router       /api/embeddings [post]
func (h *handlers) embed(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	rl := newRequestLog(r, "")
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	resp, err := h.svc.Embed(ctx, body)
	respond(w, r, rl, resp, err)
}

// show godoc
// @Summary      Show model
// @Description  Returns the upstream model document unchanged.
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        request  body      types.ShowRequest  true  "Model to show"
// @Success      200      {object}  object
// @Failure      400      {object}  types.ErrorResponse
// @Failure      502      {object}  types.ErrorResponse
// @Router       /api/show [post]
func (h *handlers) show(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	rl := newRequestLog(r, "")
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	raw, err := h.svc.Show(ctx, body)
	respond(w, r, rl, raw, err)
}

// tags godoc
// @Summary      List installed models
// @Tags         models
// @Produce      json
// @Success      200  {object}  types.TagsResponse
// @Router       /api/tags [get]
func (h *handlers) tags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Tags())
}

// version godoc
// @Summary      Reported Ollama version
// @Tags         meta
// @Produce      json
// @Success      200  {object}  types.VersionResponse
// @Router       /api/version [get]
func (h *handlers) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Version())
}

// readBody reads the size-limited request body, answering the error itself.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		writeJSONError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	return body, true
}

// decodeJSON reads and decodes the request body into v. Unknown fields are
// ignored; Ollama clients send options the gateway does not map.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body, ok := readBody(w, r)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// respond writes a buffered result or its error.
func respond(w http.ResponseWriter, r *http.Request, rl requestLog, v any, err error) {
	if err != nil {
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			rl.end(0, err)
			return
		}
		rl.end(writeError(w, err), err)
		return
	}
	writeJSON(w, http.StatusOK, v)
	rl.end(http.StatusOK, nil)
}

// streamWriter commits the stream's status and content type on first write,
// so errors raised before any output can still be answered as JSON.
type streamWriter struct {
	w           http.ResponseWriter
	contentType string
	started     bool
}

func (sw *streamWriter) Write(p []byte) (int, error) {
	if !sw.started {
		sw.started = true
		sw.w.Header().Set("Content-Type", sw.contentType)
		sw.w.Header().Set("Cache-Control", "no-cache")
		sw.w.WriteHeader(http.StatusOK)
	}
	return sw.w.Write(p)
}

func streamResponse(ctx context.Context, w http.ResponseWriter, r *http.Request, rl requestLog, contentType string, run func(context.Context, io.Writer, func()) error) {
	sw := &streamWriter{w: w, contentType: contentType}
	var out io.Writer = sw
	if rl.lvl >= LevelDebug {
		out = io.MultiWriter(sw, &loggingLineWriter{log: rl.log})
	}
	var flush func()
	if f, ok := w.(http.Flusher); ok {
		flush = f.Flush
	}

	err := run(ctx, out, flush)
	switch {
	case err == nil:
		if !sw.started {
			// Upstream closed without a single byte; still answer 200.
			sw.w.Header().Set("Content-Type", contentType)
			sw.w.WriteHeader(http.StatusOK)
		}
		rl.end(http.StatusOK, nil)
	case sw.started:
		// Headers are gone; the client sees the stream end early.
		IncrementStreamAborted(routePatternOrPath(r))
		rl.end(http.StatusOK, err)
	case r.Context().Err() != nil || serverBaseCtx.Err() != nil:
		rl.end(0, err)
	default:
		rl.end(writeError(w, err), err)
	}
}
