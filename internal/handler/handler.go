package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopstream/internal/checkout"
	"shopstream/internal/model"

	"github.com/rs/zerolog"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code. Encoding
// failures are logged; the status line has already been sent by then.
func writeJSON(w http.ResponseWriter, status int, data any, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Int("status", status).Msg("failed to encode response")
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message}, logger)
}

// writeFieldErrors writes a 422 carrying the per-field messages.
func writeFieldErrors(w http.ResponseWriter, fields map[string]string, logger zerolog.Logger) {
	logger.Debug().Int("field_count", len(fields)).Msg("validation failed")
	writeJSON(w, http.StatusUnprocessableEntity, model.ErrorResponse{
		Error:   model.ErrCodeValidationFailed,
		Message: "validation failed",
		Fields:  fields,
	}, logger)
}

// decodeJSON reads a JSON body into dst and reports a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger zerolog.Logger) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}

// writeServiceError maps a domain or checkout error onto an HTTP response.
// Anything unrecognised becomes a 500 with fallback as the message.
func writeServiceError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var validation *model.ValidationError
	if errors.As(err, &validation) {
		writeFieldErrors(w, validation.Fields, logger)
		return
	}

	var domain *model.DomainError
	if errors.As(err, &domain) {
		status := http.StatusBadRequest
		if domain.Code == model.ErrCodeOrderNotFound {
			status = http.StatusNotFound
		}
		writeError(w, status, domain.Code, domain.Message, logger)
		return
	}

	switch {
	case errors.Is(err, checkout.ErrSubmissionInFlight), errors.Is(err, checkout.ErrNotOnReview):
		writeError(w, http.StatusConflict, model.ErrCodeCheckoutState, err.Error(), logger)
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, model.ErrCodeEmptyOrder, err.Error(), logger)
	case errors.Is(err, checkout.ErrUnknownField):
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, err.Error(), logger)
	default:
		logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, fallback, logger)
	}
}
