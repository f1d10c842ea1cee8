// internal/app/system/httpjson/httpjson.go
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/helal366/flexora-server/internal/app/system/apperr"
	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies; everything this API accepts is a
// small document.
const maxBodyBytes = 1 << 20

// Decode reads a JSON request body into dst. Unknown fields are tolerated
// (clients send display-only fields the server ignores).
func Decode(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.E(apperr.InvalidInput, "request body is required")
		}
		return apperr.Wrap(apperr.InvalidInput, "malformed JSON body", err)
	}
	return nil
}

// Write encodes v as the JSON response with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the uniform JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.Upstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// WriteError renders err as the JSON error envelope. Unclassified errors are
// logged and reported as a generic 500 so internals never leak to callers.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := StatusFor(err)
	msg := apperr.Message(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Error("internal error", zap.Error(err))
		}
		msg = "internal server error"
	}
	Write(w, status, errorBody{Error: msg, Kind: apperr.KindOf(err).String()})
}
