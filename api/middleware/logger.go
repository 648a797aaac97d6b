// Package middleware provides HTTP middleware for the fivepseq API.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/grailbio/base/log"

	"github.com/aria-lang/fivepseq-go/internal/metrics"
)

// Logger logs one line per request and records its latency. Server errors
// are logged at error level.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		metrics.ObserveRequest(r.Method, strconv.Itoa(status), elapsed.Seconds())

		reqID := chimiddleware.GetReqID(r.Context())
		if status >= http.StatusInternalServerError {
			log.Error.Printf("[%s] %s %s -> %d (%d bytes) in %s", reqID, r.Method, r.URL.Path, status, ww.BytesWritten(), elapsed)
			return
		}
		log.Printf("[%s] %s %s -> %d (%d bytes) in %s", reqID, r.Method, r.URL.Path, status, ww.BytesWritten(), elapsed)
	})
}
