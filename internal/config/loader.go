package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"ollamaproxy/internal/common/fsutil"
)

// Getenv looks up an environment variable; os.Getenv satisfies it.
type Getenv func(string) string

// Load reads a configuration file on top of Defaults().
// Supports: .yaml/.yml, .json, .toml. Keys absent from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if err := fsutil.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve builds the effective configuration from an optional config file,
// an optional .env file and the environment. It does not validate; callers
// apply flag overrides first and then call Validate.
func Resolve(path, envFile string, getenv Getenv) (Config, error) {
	cfg := Defaults()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}
	env, err := layeredEnv(envFile, getenv)
	if err != nil {
		return cfg, err
	}
	ApplyEnv(&cfg, env)
	if err := resolveSecrets(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// layeredEnv returns a lookup where process variables win over .env entries.
func layeredEnv(envFile string, getenv Getenv) (Getenv, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	if envFile == "" || !fsutil.PathExists(envFile) {
		return getenv, nil
	}
	dot, err := godotenv.Read(envFile)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", envFile, err)
	}
	return func(k string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return dot[k]
	}, nil
}

// ApplyEnv overlays environment variables onto cfg. OPENAI_BASE_URL and
// OPENAI_API_KEY keep the names used by OpenAI SDKs; everything else uses
// the OLLAMAPROXY_ prefix. Unparseable numbers and booleans are ignored.
func ApplyEnv(cfg *Config, getenv Getenv) {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	flag := func(key string, dst *bool) {
		if v := getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	str("OPENAI_BASE_URL", &cfg.UpstreamURL)
	str("OPENAI_API_KEY", &cfg.APIKey)
	str("OLLAMAPROXY_ADDR", &cfg.Addr)
	str("OLLAMAPROXY_API_KEY_FILE", &cfg.APIKeyFile)
	num("OLLAMAPROXY_UPSTREAM_TIMEOUT_SEC", &cfg.UpstreamTimeoutSec)
	str("OLLAMAPROXY_CHAT_MODEL", &cfg.ChatModel)
	flag("OLLAMAPROXY_PIN_CHAT_MODEL", &cfg.PinChatModel)
	str("OLLAMAPROXY_EMBED_MODEL", &cfg.EmbedModel)
	num("OLLAMAPROXY_EMBED_DIMENSIONS", &cfg.EmbedDimensions)
	str("OLLAMAPROXY_CATALOG_FILE", &cfg.CatalogFile)
	str("OLLAMAPROXY_LOG_LEVEL", &cfg.LogLevel)
	str("OLLAMAPROXY_LOG_FORMAT", &cfg.LogFormat)
	str("OLLAMAPROXY_REQUEST_LOG", &cfg.RequestLog)
	flag("OLLAMAPROXY_CORS_ENABLED", &cfg.CORSEnabled)
	if v := getenv("OLLAMAPROXY_CORS_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = SplitCSV(v)
	}
}

// resolveSecrets fills APIKey from APIKeyFile when no key was given directly.
func resolveSecrets(cfg *Config) error {
	if cfg.APIKey != "" || cfg.APIKeyFile == "" {
		return nil
	}
	v, err := fsutil.ReadSecretFile(cfg.APIKeyFile)
	if err != nil {
		return fmt.Errorf("api_key_file: %w", err)
	}
	cfg.APIKey = v
	return nil
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping empties.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
