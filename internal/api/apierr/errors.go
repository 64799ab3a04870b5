package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/poolhall/tablequeue/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeInvalidContact    = "INVALID_CONTACT"
	CodePlayerNotFound    = "PLAYER_NOT_FOUND"
	CodeDuplicateContact  = "DUPLICATE_CONTACT"
	CodeGameNotFound      = "GAME_NOT_FOUND"
	CodeGameAlreadyActive = "GAME_ALREADY_ACTIVE"
	CodeNotAuthorized     = "NOT_AUTHORIZED"
	CodeDataIntegrity     = "DATA_INTEGRITY"
	CodeInternalError     = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var invalid *model.InvalidContactError
	if errors.As(err, &invalid) {
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidContact, invalid.Error()}}
	}

	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrDuplicateContact):
		return &httpError{http.StatusConflict, APIError{CodeDuplicateContact, "Contact is already registered"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrGameAlreadyActive):
		return &httpError{http.StatusConflict, APIError{CodeGameAlreadyActive, "A game is already active or pending"}}
	case errors.Is(err, model.ErrNotAuthorized):
		return &httpError{http.StatusForbidden, APIError{CodeNotAuthorized, "You may not perform this action"}}
	case errors.Is(err, model.ErrDataIntegrity):
		return &httpError{http.StatusInternalServerError, APIError{CodeDataIntegrity, "Data integrity violation"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
