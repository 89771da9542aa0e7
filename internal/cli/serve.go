package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"ollamaproxy/internal/config"
	"ollamaproxy/internal/gateway"
	"ollamaproxy/internal/httpapi"
	"ollamaproxy/internal/registry"
	"ollamaproxy/internal/translate"
	"ollamaproxy/internal/upstream"
)

// loadCatalog returns the configured catalog or the built-in one.
func loadCatalog(cfg config.Config) (*registry.Catalog, error) {
	if cfg.CatalogFile == "" {
		return registry.Default(), nil
	}
	return registry.LoadFile(cfg.CatalogFile)
}

// newHandler wires the HTTP layer for cfg. The returned close func releases
// pooled upstream connections.
func newHandler(cfg config.Config, log zerolog.Logger) (http.Handler, func(), error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}
	up := upstream.New(upstream.Options{
		BaseURL:        cfg.UpstreamURL,
		APIKey:         cfg.APIKey,
		Timeout:        cfg.UpstreamTimeout(),
		ConnectTimeout: cfg.ConnectTimeout(),
		Logger:         log.With().Str("component", "upstream").Logger(),
	})
	svc := gateway.New(gateway.Config{
		Upstream: up,
		Catalog:  cat,
		Models: translate.Models{
			Chat:            cfg.ChatModel,
			PinChat:         cfg.PinChatModel,
			Embed:           cfg.EmbedModel,
			EmbedDimensions: cfg.EmbedDimensions,
		},
		ReportedVersion: cfg.ReportedVersion,
		Logger:          log.With().Str("component", "gateway").Logger(),
	})

	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	httpapi.SetRequestLogLevel(cfg.RequestLog)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSAllowedOrigins, nil, nil)
	return httpapi.NewMux(svc), func() { _ = up.Close() }, nil
}

// serve runs the gateway until ctx is canceled, then shuts down gracefully.
// ready, if non-nil, receives the bound address once listening.
func serve(ctx context.Context, cfg config.Config, log zerolog.Logger, ready func(addr string)) error {
	h, closeUp, err := newHandler(cfg, log)
	if err != nil {
		return err
	}
	defer closeUp()

	// Canceling the base context aborts in-flight upstream calls.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	defer httpapi.SetBaseContext(nil)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Str("upstream", cfg.UpstreamURL).
			Str("chat_model", cfg.ChatModel).Str("embed_model", cfg.EmbedModel).Msg("ollamaproxy listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	if ready != nil {
		ready(ln.Addr().String())
	}

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		// Streams still open after the grace period are cut off here.
		log.Warn().Err(err).Msg("graceful shutdown error")
		cancelBase()
		_ = srv.Close()
	}
	<-errCh
	return nil
}
