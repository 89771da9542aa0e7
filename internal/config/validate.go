package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks required fields and value ranges. A missing upstream
// credential is always an error: the gateway refuses to start without it.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.APIKey) == "" {
		errs = append(errs, errors.New("api_key is required (set OPENAI_API_KEY or api_key_file)"))
	}
	if u, err := url.Parse(c.UpstreamURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("upstream_url must be an absolute URL, got %q", c.UpstreamURL))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.UpstreamTimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("upstream_timeout_sec must be > 0, got %d", c.UpstreamTimeoutSec))
	}
	if c.ChatModel == "" {
		errs = append(errs, errors.New("chat_model is required"))
	}
	if c.EmbedModel == "" {
		errs = append(errs, errors.New("embed_model is required"))
	}
	if c.EmbedDimensions <= 0 {
		errs = append(errs, fmt.Errorf("embed_dimensions must be > 0, got %d", c.EmbedDimensions))
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be \"console\" or \"json\", got %q", c.LogFormat))
	}

	return errors.Join(errs...)
}
