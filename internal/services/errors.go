package services

import (
	"errors"
	"net/http"

	"github.com/yungbote/wellspring-backend/internal/platform/apierr"
)

var (
	errEmailTaken         = apierr.New(http.StatusConflict, "email_taken", errors.New("email already registered"))
	errInvalidCredentials = apierr.New(http.StatusUnauthorized, "invalid_credentials", errors.New("invalid email or password"))
	errRefreshInvalid     = apierr.New(http.StatusUnauthorized, "refresh_invalid", errors.New("refresh token not recognized"))
	errRefreshExpired     = apierr.New(http.StatusUnauthorized, "refresh_expired", errors.New("refresh token expired"))
	errSessionNotFound    = apierr.New(http.StatusNotFound, "session_not_found", errors.New("session not found"))
	errUserNotFound       = apierr.New(http.StatusNotFound, "user_not_found", errors.New("user not found"))
	errWrongPassword      = apierr.New(http.StatusForbidden, "wrong_password", errors.New("current password is incorrect"))
)

func unauthorized(cause error) *apierr.Error {
	return apierr.New(http.StatusUnauthorized, "unauthorized", cause)
}
