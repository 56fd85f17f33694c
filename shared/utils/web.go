package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	internal_errors "github.com/itchan-dev/tunetag/shared/errors"
	"github.com/itchan-dev/tunetag/shared/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorBody is the JSON shape of every failure the backend reports.
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

// WriteErrorAndStatusCode reports err as {"error": "..."}.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var e *internal_errors.ErrorWithStatusCode
	if errors.As(err, &e) {
		WriteJSON(w, e.StatusCode, ErrorBody{Error: e.Message})
		return
	}
	// default error is 500
	WriteJSON(w, http.StatusInternalServerError, ErrorBody{Error: err.Error()})
}

// Validate runs the struct's `validate` tags.
func Validate(v any) error {
	return validate.Struct(v)
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request validation failed", "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("request body is not valid json", "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	return nil
}
