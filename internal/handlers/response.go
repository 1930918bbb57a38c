package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "schoolhub-backend/internal/errors"
)

// errorResponse is the wire shape of every failure.
type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// respondJSON writes a success payload.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps an error onto its HTTP status via the stable error code.
// Internal causes are logged, never serialized.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.Code == apperrors.CodeInternal {
		logger.Error("request failed", zap.Error(err))
	}
	respondJSON(w, appErr.Code.HTTPStatus(), errorResponse{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Fields:  appErr.Fields,
	})
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}
