package middleware

import (
	"net/http"

	"github.com/ali-aktas/HocaLingo-sub003/internal/api/shared"
)

// TraceID assigns every request a trace ID for log correlation and echoes
// it back in the X-Trace-ID response header.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		w.Header().Set("X-Trace-ID", shared.GetTraceID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
