package httpapi

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/session"
)

type ctxKey int

const sessionKey ctxKey = iota

// requireSession resolves the bare token in the Authorization header (no
// bearer scheme) and gates the route by role.
func (a *API) requireSession(req session.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := a.directory.Resolve(r.Header.Get("Authorization"), req)
			if err != nil {
				a.respondError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFrom(ctx context.Context) *session.Session {
	return ctx.Value(sessionKey).(*session.Session)
}

// logRequests emits one structured line per request.
func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		a.log.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
