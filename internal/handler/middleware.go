package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/auth"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/model"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const requesterKey ctxKey = iota

// RequesterFrom extracts the authenticated requester stored by RequireAuth.
func RequesterFrom(ctx context.Context) (model.Requester, bool) {
	req, ok := ctx.Value(requesterKey).(model.Requester)
	return req, ok
}

// RequireAuth verifies the Bearer token and stores the requester
// identity in the request context. The core only ever sees this
// identity, never a role.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}

			requester, err := auth.ParseToken(token, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), requesterKey, *requester)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Logger is a structured access-log middleware: method, path, status,
// duration, and the chi request ID.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Printf("%s %s %d %s request_id=%s",
			r.Method, r.URL.Path, ww.Status(), time.Since(start), chimiddleware.GetReqID(r.Context()))
	})
}

// CORS is a permissive CORS middleware for browser clients.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
