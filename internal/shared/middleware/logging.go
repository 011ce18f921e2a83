package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"restaurant-waste/internal/shared/util"
)

// Logging writes one access line per request.
func Logging(logger *util.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.HTTP(status, time.Since(start), r.RemoteAddr, r.Method, r.URL.Path,
				"request_id", GetRequestID(r.Context()))
		})
	}
}
