package blackbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func projectRootFromThisFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file: <root>/tests/blackbox/blackbox_test.go
	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

func buildBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("blackbox tests build the binary; skipped in -short mode")
	}
	root := projectRootFromThisFile(t)
	binPath := filepath.Join(t.TempDir(), "ollamaproxy")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/ollamaproxy")
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(out))
	}
	return binPath
}

// baseEnv drops inherited proxy settings so a developer's shell cannot leak in.
func baseEnv(extra ...string) []string {
	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "OPENAI_") || strings.HasPrefix(kv, "OLLAMAPROXY_") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, extra...)
}

type serverProc struct {
	cmd  *exec.Cmd
	base string
}

func startServer(t *testing.T, bin, upstreamURL string) *serverProc {
	t.Helper()
	port := findFreePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	cmd := exec.Command(bin, "--addr", fmt.Sprintf("127.0.0.1:%d", port), "--env-file", filepath.Join(t.TempDir(), "none.env"))
	cmd.Env = baseEnv("OPENAI_BASE_URL="+upstreamURL, "OPENAI_API_KEY=sk-blackbox", "OLLAMAPROXY_LOG_FORMAT=json")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() { _ = cmd.Process.Kill(); _ = cmd.Wait() })

	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not become healthy in time")
		}
		time.Sleep(50 * time.Millisecond)
	}
	return &serverProc{cmd: cmd, base: base}
}

func postJSON(t *testing.T, url, payload string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, strings.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func TestBlackbox_Flow(t *testing.T) {
	bin := buildBinary(t)
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-blackbox" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/chat/completions":
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\n\ndata: [DONE]\n\n")
		case "/embeddings":
			_, _ = io.WriteString(w, `{"data":[{"index":0,"embedding":[0.1,0.2]}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer up.Close()
	sp := startServer(t, bin, up.URL)

	resp, err := http.Get(sp.base + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "Ollama proxy is running" {
		t.Fatalf("GET / = %d %q", resp.StatusCode, body)
	}

	resp, body = postJSON(t, sp.base+"/api/chat", `{"model":"llama3","messages":[{"role":"user","content":"hi"}],"stream":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/api/chat %d %s", resp.StatusCode, body)
	}
	if !bytes.HasSuffix(body, []byte("[DONE]\n")) || bytes.Count(body, []byte("\n")) != 2 {
		t.Fatalf("/api/chat stream=%q", body)
	}

	resp, body = postJSON(t, sp.base+"/api/embeddings", `{"prompt":"x"}`)
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(`"embedding":[0.1,0.2]`)) {
		t.Fatalf("/api/embeddings %d %s", resp.StatusCode, body)
	}

	resp, _ = postJSON(t, sp.base+"/api/pull", `{"name":"llama3"}`)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("/api/pull %d", resp.StatusCode)
	}
}

func TestBlackbox_MissingAPIKeyExits(t *testing.T) {
	bin := buildBinary(t)
	cmd := exec.Command(bin, "--addr", fmt.Sprintf("127.0.0.1:%d", findFreePort(t)), "--env-file", filepath.Join(t.TempDir(), "none.env"))
	cmd.Env = baseEnv()
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected non-zero exit, output=%s", out)
	}
	if !bytes.Contains(out, []byte("api_key is required")) {
		t.Fatalf("output=%s", out)
	}
}
