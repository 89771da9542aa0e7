package httpapi

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger of the HTTP layer. Silent until SetLogger.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// loggingLineWriter logs complete NDJSON lines at debug level.
type loggingLineWriter struct {
	log zerolog.Logger
	buf []byte
}

func (lw *loggingLineWriter) Write(p []byte) (int, error) {
	lw.buf = append(lw.buf, p...)
	for {
		idx := bytes.IndexByte(lw.buf, '\n')
		if idx < 0 {
			break
		}
		if idx > 0 {
			lw.log.Debug().Bytes("frame", lw.buf[:idx]).Msg("stream>")
		}
		lw.buf = lw.buf[idx+1:]
	}
	return len(p), nil
}

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

var defaultLogLevel = LevelInfo

// SetRequestLogLevel sets the default per-request log level
// (off, error, info, debug).
func SetRequestLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// requestLog is the start/end logging of one API call.
type requestLog struct {
	lvl   LogLevel
	log   zerolog.Logger
	start time.Time
}

func newRequestLog(r *http.Request, model string) requestLog {
	rl := requestLog{lvl: requestLogLevel(r), start: time.Now()}
	rl.log = zlog.With().Str("path", r.URL.Path).Str("request_id", middleware.GetReqID(r.Context())).Logger()
	if rl.lvl >= LevelInfo {
		ev := rl.log.Info()
		if model != "" {
			ev = ev.Str("model", model)
		}
		ev.Msg("request start")
	}
	return rl
}

// end logs the outcome; failures are logged from LevelError up.
func (rl requestLog) end(status int, err error) {
	switch {
	case err != nil && rl.lvl >= LevelError:
		rl.log.Error().Int("status", status).Dur("dur", time.Since(rl.start)).Err(err).Msg("request end")
	case err == nil && rl.lvl >= LevelInfo:
		rl.log.Info().Int("status", status).Dur("dur", time.Since(rl.start)).Msg("request end")
	}
}
