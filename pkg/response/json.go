package response

import (
	"encoding/json"
	"net/http"

	"ethics-reporting-system/pkg/apperror"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	JSON(w, statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Error(w http.ResponseWriter, statusCode int, code, message string) {
	JSON(w, statusCode, APIResponse{
		Success: false,
		Error:   &ErrorBody{Message: message, Code: code},
	})
}

// AppError shapes a service error into the error envelope.
func AppError(w http.ResponseWriter, err error) {
	appErr := apperror.From(err)
	JSON(w, appErr.Status, APIResponse{
		Success: false,
		Error: &ErrorBody{
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		},
	})
}
