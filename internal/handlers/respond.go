package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AnshRaj112/survey-backend/internal/errs"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as an HTTPError. Anything else is logged and hidden
// behind a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		h.logger(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		httpErr = errs.NewInternalServerError()
	} else if httpErr.Status >= http.StatusInternalServerError {
		h.logger(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		h.logger(r).Warn().Int("status", httpErr.Status).Str("reason", httpErr.Message).Msg("request rejected")
	}
	writeJSON(w, httpErr.Status, httpErr)
}

// decodeJSON reads a single JSON value into dst. Field types that reject a
// value with their own *errs.HTTPError keep it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return errs.NewBadRequestError("Invalid request body", nil)
	}
	return nil
}
