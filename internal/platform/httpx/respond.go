// Package httpx holds the JSON response helpers shared by all HTTP handlers.
package httpx

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"biblios/internal/apperror"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads the request body into v.
func Decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// Error maps an operation error to its transport status code and writes it.
func Error(w http.ResponseWriter, err error) {
	kind := apperror.KindOf(err)
	status := http.StatusInternalServerError

	switch kind {
	case apperror.KindNotFound:
		status = http.StatusNotFound
	case apperror.KindConflict, apperror.KindLimitExceeded, apperror.KindDuplicate,
		apperror.KindAvailable, apperror.KindInvalid:
		status = http.StatusBadRequest
	}

	JSON(w, status, errorBody{Error: err.Error(), Kind: kind.String()})
}
