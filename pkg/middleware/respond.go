package middleware

import (
	"net/http"

	apperrors "innkeep/pkg/errors"
	httputil "innkeep/pkg/http"
	"innkeep/pkg/logger"
)

func reject(w http.ResponseWriter, log *logger.Logger, r *http.Request, appErr *apperrors.AppError) {
	if err := httputil.WriteError(w, appErr); err != nil && log != nil {
		log.WithContext(r.Context()).Error("failed to write error response",
			"middleware", appErr.Code,
			"path", r.URL.Path,
			"error", err,
		)
	}
}
