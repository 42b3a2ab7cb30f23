package errors

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AppError is an application error carrying the HTTP status it maps to.
type AppError struct {
	Code    int    // HTTP status code
	Message string // user-facing message
	Err     error  // original error
}

// Error returns the error message
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the original error
func (e *AppError) Unwrap() error {
	return e.Err
}

// asAppError builds a new AppError
func newAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string, err error) *AppError {
	return newAppError(http.StatusBadRequest, message, err)
}

func Unauthorized(message string, err error) *AppError {
	return newAppError(http.StatusUnauthorized, message, err)
}

func Forbidden(message string, err error) *AppError {
	return newAppError(http.StatusForbidden, message, err)
}

func NotFound(message string, err error) *AppError {
	return newAppError(http.StatusNotFound, message, err)
}

func Conflict(message string, err error) *AppError {
	return newAppError(http.StatusConflict, message, err)
}

func UnprocessableEntity(message string, err error) *AppError {
	return newAppError(http.StatusUnprocessableEntity, message, err)
}

func Internal(err error) *AppError {
	return newAppError(http.StatusInternalServerError, "Internal server error", err)
}

// HandleError responds with the appropriate status code and message
func HandleError(c *gin.Context, err error) {
	var appErr *AppError
	log.Printf("%v\n", err.Error())
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
		return
	}

	// Default to internal server error
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
