// Package respond centralizes the JSON response and error translation
// shared by the API handlers.
package respond

import (
	"encoding/json"
	"net/http"

	"shoplist/internal/domain"
	apperror "shoplist/internal/errors"
	"shoplist/internal/pkg/logger"
)

// JSON writes data with the given status.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error maps a service error onto the standardized error body. Server-side
// failures are logged with their root cause; client errors are not.
func Error(w http.ResponseWriter, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)
	if status >= 500 {
		log.Error("request failed: "+category, err)
	}

	JSON(w, status, domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
		Fields:   apperror.FieldsOf(err),
	})
}
