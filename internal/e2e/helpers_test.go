package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ollamaproxy/internal/gateway"
	"ollamaproxy/internal/httpapi"
	"ollamaproxy/internal/registry"
	"ollamaproxy/internal/translate"
	"ollamaproxy/internal/upstream"
)

// recordedCall is one request the fake OpenAI backend received.
type recordedCall struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

// fakeOpenAI is a scriptable stand-in for the upstream backend.
type fakeOpenAI struct {
	mu     sync.Mutex
	calls  []recordedCall
	routes map[string]http.HandlerFunc
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := recordedCall{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
	if b, _ := io.ReadAll(r.Body); len(b) > 0 {
		_ = json.Unmarshal(b, &rc.Body)
	}
	f.mu.Lock()
	f.calls = append(f.calls, rc)
	h := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()
	if h == nil {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (f *fakeOpenAI) handle(methodPath string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[methodPath] = h
}

func (f *fakeOpenAI) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

type stack struct {
	proxy    *httptest.Server
	upstream *fakeOpenAI
}

// newStack wires the real upstream client, gateway and HTTP layer against a
// fake OpenAI backend.
func newStack(t *testing.T) *stack {
	t.Helper()
	fake := &fakeOpenAI{routes: map[string]http.HandlerFunc{}}
	upSrv := httptest.NewServer(fake)
	t.Cleanup(upSrv.Close)

	client := upstream.New(upstream.Options{
		BaseURL: upSrv.URL + "/v1",
		APIKey:  "sk-e2e",
		Timeout: 5 * time.Second,
		Logger:  zerolog.Nop(),
	})
	t.Cleanup(func() { _ = client.Close() })

	svc := gateway.New(gateway.Config{
		Upstream:        client,
		Catalog:         registry.Default(),
		Models:          translate.Models{Chat: "gpt-4o-mini", PinChat: true, Embed: "text-embedding-3-small", EmbedDimensions: 768},
		ReportedVersion: "0.6.0",
		Logger:          zerolog.Nop(),
	})
	proxy := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(proxy.Close)
	return &stack{proxy: proxy, upstream: fake}
}

func jsonReply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func sseReply(chunks ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range chunks {
			_, _ = io.WriteString(w, c)
			w.(http.Flusher).Flush()
		}
	}
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	return doReq(t, req)
}

func httpPostJSON(t *testing.T, url string, payload string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewBufferString(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return doReq(t, req)
}

func doReq(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
