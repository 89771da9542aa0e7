package httpapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"ollamaproxy/pkg/types"
)

func requestIDFrom(ctx context.Context) string { return middleware.GetReqID(ctx) }

// blockService blocks until the context is done; used for shutdown paths.
type blockService struct{ mockService }

func (b *blockService) Chat(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	<-ctx.Done()
	return types.ChatResponse{}, ctx.Err()
}

func TestChatLogsWithZerologInfo(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer SetLogger(zerolog.Nop())

	h := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/api/chat?log=info", bytes.NewBufferString(`{"messages":[{}]}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with info logging, got %d", rec.Code)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"request start"`)) || !bytes.Contains(buf.Bytes(), []byte(`"request end"`)) {
		t.Fatalf("missing start/end lines: %s", buf.String())
	}
}

func TestStreamWithDebugLoggingLogsFrames(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	defer SetLogger(zerolog.Nop())

	h := NewMux(&mockService{frames: []string{"{\"a\":1}\n", "[DONE]\n"}})
	req := httptest.NewRequest(http.MethodPost, "/api/chat?log=debug", bytes.NewBufferString(`{"messages":[{}],"stream":true}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with debug logging, got %d", rec.Code)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`stream>`)) {
		t.Fatalf("frames not logged: %s", buf.String())
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	SetCORSOptions(true, []string{"*"}, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)

	h := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodGet, "/api/tags", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options=nosniff, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatalf("expected CORS header Access-Control-Allow-Origin to be set, got empty")
	}
}

func TestCORSDisabledByDefault(t *testing.T) {
	h := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodGet, "/api/tags", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected CORS header %q", got)
	}
}

func TestShutdownCancelsInFlightRequest(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	SetBaseContext(base)
	defer SetBaseContext(nil)

	h := NewMux(&blockService{})
	done := make(chan *httptest.ResponseRecorder)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{"messages":[{}]}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		done <- rec
	}()
	cancel()
	rec := <-done
	// Nothing is written for a request abandoned by shutdown.
	if rec.Body.Len() != 0 {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestStreamAbortCounted(t *testing.T) {
	before := testutil.ToFloat64(streamsAbortedTotal.WithLabelValues("/api/chat"))
	h := NewMux(&mockService{frames: []string{"{\"a\":1}\n"}, streamErr: io.ErrUnexpectedEOF})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{"messages":[{}],"stream":true}`))
	h.ServeHTTP(httptest.NewRecorder(), req)
	after := testutil.ToFloat64(streamsAbortedTotal.WithLabelValues("/api/chat"))
	if after != before+1 {
		t.Fatalf("streams_aborted_total: before=%v after=%v", before, after)
	}
}
