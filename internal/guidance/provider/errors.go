package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/wellspring-backend/internal/platform/httpx"
)

type Kind string

const (
	KindAuth       Kind = "auth"
	KindNotFound   Kind = "not_found"
	KindRateLimit  Kind = "rate_limit"
	KindServer     Kind = "server"
	KindNetwork    Kind = "network"
	KindMalformed  Kind = "malformed"
	KindBadRequest Kind = "bad_request"
)

// Retryable reports whether another attempt may succeed.
func (k Kind) Retryable() bool {
	return k == KindRateLimit || k == KindServer || k == KindNetwork
}

// Configuration reports whether the failure points at deployment settings
// (credentials, model or endpoint) rather than a transient condition.
func (k Kind) Configuration() bool {
	return k == KindAuth || k == KindNotFound
}

type Error struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Status != 0 {
		return fmt.Sprintf("provider %s (%d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a classified error, or "" when err is not one.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) && pe != nil {
		return pe.Kind
	}
	return ""
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case httpx.IsRetryableHTTPStatus(status):
		return KindServer
	case status >= 400:
		return KindBadRequest
	default:
		return KindMalformed
	}
}

// Classify maps transport and API failures onto a Kind.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Kind: kindForStatus(apiErr.HTTPStatusCode), Status: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{Kind: kindForStatus(reqErr.HTTPStatusCode), Status: reqErr.HTTPStatusCode, Err: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &Error{Kind: KindMalformed, Err: err}
	}

	// deadlines, dial and TLS failures, and anything unrecognised
	return &Error{Kind: KindNetwork, Err: err}
}
