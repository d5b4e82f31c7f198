package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Issue is one field-level validation failure.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type Error struct {
	Status int
	Code   string
	Err    error
	Issues []Issue
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Validation builds a 400 carrying field issues.
func Validation(issues []Issue) *Error {
	return &Error{
		Status: http.StatusBadRequest,
		Code:   "invalid_request",
		Err:    errors.New("invalid request"),
		Issues: issues,
	}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}
