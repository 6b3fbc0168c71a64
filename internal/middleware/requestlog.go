// internal/middleware/requestlog.go
//
// Access logging and latency metrics.
//
// RequestLog derives a per-request zap logger tagged with chi's request id,
// stores it in the context (logger.WithContext), and emits one line per
// request after the handler returns.  Durations feed the
// crm_http_request_duration_seconds histogram.
//
// Mount after middleware.RequestID so the id is present.

package middleware

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/crm/internal/logger"
	"github.com/yanizio/crm/internal/metrics"
)

// RequestLog returns access-log middleware writing through base.
func RequestLog(base *zap.SugaredLogger) func(http.Handler) http.Handler {
	if base == nil {
		base = zap.S()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := base.With("req_id", chimw.GetReqID(r.Context()))
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), log)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			took := time.Since(start)
			metrics.HTTPRequestDuration.
				WithLabelValues(r.Method, strconv.Itoa(status)).
				Observe(took.Seconds())

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"took", took,
			}
			if status >= 500 {
				log.Warnw("request", fields...)
				return
			}
			log.Infow("request", fields...)
		})
	}
}
