package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// DecodeJSON decodes a request body into dst. Malformed, empty or oversized
// bodies are reported as invalid input.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperrors.InvalidInput("Request body too large").
				WithReason("request body must not exceed " + strconv.FormatInt(maxErr.Limit, 10) + " bytes")
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("Invalid request body").WithReason("request body is empty")
		default:
			return apperrors.InvalidInput("Invalid request body").WithReason(err.Error())
		}
	}
	return nil
}
