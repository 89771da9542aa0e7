// Package upstream is the HTTP client for the OpenAI-compatible backend.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxResponseBytes caps buffered upstream bodies.
const maxResponseBytes = 64 << 20

var errIdleTimeout = errors.New("upstream idle timeout")

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	// Timeout bounds a buffered call end to end, and for streams the wait
	// for headers and for each successive read.
	Timeout        time.Duration
	ConnectTimeout time.Duration
	Logger         zerolog.Logger
}

// Client talks to one OpenAI-compatible base URL with a bearer credential.
// It is safe for concurrent use; connections are pooled across requests.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxBody    int64
	httpClient *http.Client
	log        zerolog.Logger
}

// New constructs a Client with a pooled transport.
func New(opts Options) *Client {
	connect := opts.ConnectTimeout
	if connect <= 0 {
		connect = 10 * time.Second
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connect,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   connect,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout=0: every call carries its own context deadline instead.
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		timeout:    timeout,
		maxBody:    maxResponseBytes,
		httpClient: &http.Client{Transport: tr, Timeout: 0},
		log:        opts.Logger,
	}
}

// BaseURL returns the normalized upstream base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Close releases idle pooled connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// PostJSON sends payload to path and returns the full response body.
func (c *Client) PostJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, payload)
}

// Get fetches path and returns the full response body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observe(path, "error", start)
		return nil, c.transportError(ctx, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		observe(path, statusLabel(resp.StatusCode), start)
		return nil, readHTTPError(resp)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		observe(path, "error", start)
		return nil, c.transportError(ctx, method, path, err)
	}
	if int64(len(body)) > c.maxBody {
		observe(path, "error", start)
		c.log.Warn().Str("method", method).Str("path", path).Int64("limit", c.maxBody).Msg("upstream response too large")
		return nil, &TooLargeError{Limit: c.maxBody}
	}
	observe(path, statusLabel(resp.StatusCode), start)
	return body, nil
}

// Stream posts payload to path and returns the live response body once the
// upstream has answered with a success status. The caller must Close the
// returned reader; Close cancels the upstream request and releases the
// connection, so it is safe to call on any exit path and more than once.
func (c *Client) Stream(ctx context.Context, path string, payload any) (io.ReadCloser, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	// Idle timer covers both the header wait and gaps between reads.
	idle := time.AfterFunc(c.timeout, func() { cancel(errIdleTimeout) })

	start := time.Now()
	req, err := c.newRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		idle.Stop()
		cancel(nil)
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		idle.Stop()
		observe(path, "error", start)
		err = c.transportError(ctx, http.MethodPost, path, err)
		cancel(nil)
		return nil, err
	}
	if resp.StatusCode >= 400 {
		idle.Stop()
		observe(path, statusLabel(resp.StatusCode), start)
		err := readHTTPError(resp)
		resp.Body.Close()
		cancel(nil)
		return nil, err
	}
	observe(path, statusLabel(resp.StatusCode), start)
	streamsOpen.Inc()
	idle.Reset(c.timeout)
	return &streamBody{body: resp.Body, cancel: cancel, idle: idle, timeout: c.timeout}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal upstream request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	rid := middleware.GetReqID(ctx)
	if rid == "" {
		rid = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", rid)
	return req, nil
}

func (c *Client) transportError(ctx context.Context, method, path string, err error) error {
	timeout := errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(context.Cause(ctx), errIdleTimeout)
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		timeout = true
	}
	c.log.Warn().Str("method", method).Str("path", path).Bool("timeout", timeout).Err(err).Msg("upstream request failed")
	return &TransportError{Err: err, Timeout: timeout}
}

// streamBody wraps a live upstream body with an idle timeout and an
// idempotent Close that also cancels the request context.
type streamBody struct {
	body    io.ReadCloser
	cancel  context.CancelCauseFunc
	idle    *time.Timer
	timeout time.Duration
	once    sync.Once
}

func (s *streamBody) Read(p []byte) (int, error) {
	n, err := s.body.Read(p)
	if n > 0 {
		s.idle.Reset(s.timeout)
	}
	return n, err
}

func (s *streamBody) Close() error {
	var err error
	s.once.Do(func() {
		s.idle.Stop()
		s.cancel(nil)
		err = s.body.Close()
		streamsOpen.Dec()
	})
	return err
}
