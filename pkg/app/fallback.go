package app

import (
	"net/http"

	apperrors "innkeep/pkg/errors"
	httputil "innkeep/pkg/http"
)

// notFound and methodNotAllowed keep unrouted requests inside the JSON envelope.
func notFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httputil.WriteError(w, apperrors.NotFound("Route "+r.Method+" "+r.URL.Path))
	})
}

func methodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httputil.WriteError(w, apperrors.New(apperrors.CodeInvalidInput, "Method "+r.Method+" not allowed", http.StatusMethodNotAllowed))
	})
}
