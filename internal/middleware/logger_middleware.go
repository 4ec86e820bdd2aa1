package middleware

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

func wrap(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// requestMeta lets inner middleware report the caller back to the access log,
// which runs outside authentication.
type requestMeta struct {
	userID string
}

const metaKey contextKey = "requestMeta"

func requestMetaFrom(ctx context.Context) *requestMeta {
	meta, _ := ctx.Value(metaKey).(*requestMeta)
	return meta
}

func LoggerMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := wrap(w)
			meta := &requestMeta{}
			ctx := logger.WithContext(context.WithValue(r.Context(), metaKey, meta))
			next.ServeHTTP(rw, r.WithContext(ctx))

			userID := meta.userID
			if userID == "" {
				userID = "anonymous"
			}

			event := logger.Info()
			switch {
			case rw.statusCode >= 500:
				event = logger.Error()
			case rw.statusCode >= 400:
				event = logger.Warn()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Int("status", rw.statusCode).
				Dur("duration", time.Since(start)).
				Str("user_id", userID).
				Msg("request")
		})
	}
}
