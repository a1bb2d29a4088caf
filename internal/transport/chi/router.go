package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/wordser/internal/logger"
	"github.com/kailas-cloud/wordser/internal/metrics"
	gen "github.com/kailas-cloud/wordser/internal/transport/generated"
)

const maxRequestIDLen = 128

// NewRouter assembles the middleware chain and mounts the generated routes.
// extra middlewares run innermost, right before the handler.
func NewRouter(server *Server, logger *zap.Logger, extra ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(jsonRecoverer(logger))
	r.Use(metrics.Middleware())
	for _, mw := range extra {
		r.Use(mw)
	}

	return gen.HandlerWithOptions(server, gen.ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			logpkg.FromContext(r.Context(), logger).Info("request rejected",
				zap.String("path", r.URL.Path),
				zap.String("error_kind", "invalid_input"),
				zap.Error(err),
			)
			writeFailure(w, r, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest, err.Error())
		},
	})
}

// requestID honors an incoming X-Request-ID or assigns a fresh UUID, storing it
// where chiMiddleware.GetReqID finds it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(chiMiddleware.RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), chiMiddleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// jsonRecoverer turns handler panics into a JSON 500 in the route's failure shape.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				logpkg.FromContext(r.Context(), logger).Error("panic recovered",
					zap.Any("panic", rvr),
					zap.Stack("stacktrace"),
				)
				writeFailure(w, r, http.StatusInternalServerError, gen.ErrorResponseCodeInternalError, "internal error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and echoes X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := chiMiddleware.GetReqID(r.Context())
			if id != "" {
				w.Header().Set("X-Request-ID", id)
			}

			reqLogger := logger.With(zap.String("request_id", id))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
