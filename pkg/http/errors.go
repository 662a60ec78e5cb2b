package http

import (
	"fmt"
	"net/http"
)

// AppError represents application-level error with HTTP status.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewNotFound(code, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Status: http.StatusNotFound, Err: err}
}

func NewConflict(code, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Status: http.StatusConflict, Err: err}
}

func NewUnavailable(code, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Status: http.StatusServiceUnavailable, Err: err}
}
