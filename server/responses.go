package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/jrsteele09/go-calendar-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"

	notAuthenticatedText = "Not authenticated"
	errorText            = "Error"
	invalidBodyText      = "Invalid request body"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}

// writeFailure renders the outcome of a failed gateway call. Missing credentials are a
// normal text answer; everything else is logged and reported as an opaque error.
func writeFailure(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, errors.ErrNotAuthenticated) {
		writeText(w, http.StatusOK, notAuthenticatedText)
		return
	}
	log.Err(errors.Upstream(op, err)).Str("op", op).Msg("Upstream call failed")
	writeText(w, http.StatusInternalServerError, errorText)
}

// decodeJSON reads a JSON request body into v. An empty body leaves v at its zero value.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if stderrors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "decode body: %v", err)
	}
	return nil
}

func writeInvalidBody(w http.ResponseWriter, err error) {
	log.Warn().Err(err).Msg("Rejected request body")
	writeText(w, http.StatusBadRequest, invalidBodyText)
}
