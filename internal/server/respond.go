package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/caselaw/casestrainer/internal/pipeline"
)

// writeJSON writes v as a JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the {error, code, message} error contract (spec
// §7) at the given HTTP status.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"code":    code,
		"message": message,
	})
}

// writeTypedError maps a pipeline.TypedError onto the HTTP status its
// error code implies (spec §6.1, §7); any other error is a 500.
func writeTypedError(w http.ResponseWriter, err error) {
	var typed *pipeline.TypedError
	if !errors.As(err, &typed) {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch typed.Code {
	case pipeline.CodeInputError, pipeline.CodeExtractionError, pipeline.CodeFetchError:
		status = http.StatusBadRequest
	case pipeline.CodeUnsupportedFormat:
		status = http.StatusUnsupportedMediaType
	case pipeline.CodeNotFound:
		status = http.StatusNotFound
	case pipeline.CodeJobCanceled, pipeline.CodeJobFailed:
		status = http.StatusConflict
	}
	writeError(w, status, string(typed.Code), typed.Message)
}
