package response

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/wellspring-backend/internal/platform/apierr"
	"github.com/yungbote/wellspring-backend/internal/platform/ctxutil"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
	"github.com/yungbote/wellspring-backend/internal/platform/validate"
)

// StatusClientClosedRequest is the nginx convention for a caller that went away.
const StatusClientClosedRequest = 499

type ErrorBody struct {
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Issues  []apierr.Issue `json:"issues,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorBody{Message: msg, Code: code})
}

// RespondAPIError writes err as the error envelope. Errors that are not an
// *apierr.Error become a generic 500 and are only logged.
func RespondAPIError(c *gin.Context, log *logger.Logger, err error) {
	if ae, ok := apierr.As(err); ok {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if status >= http.StatusInternalServerError {
			logError(c, log, err)
			c.AbortWithStatusJSON(status, ErrorBody{Message: "internal server error", Code: codeOr(ae.Code, "internal")})
			return
		}
		msg := http.StatusText(status)
		if ae.Err != nil {
			msg = ae.Err.Error()
		}
		c.AbortWithStatusJSON(status, ErrorBody{Message: msg, Code: ae.Code, Issues: ae.Issues})
		return
	}
	if errors.Is(err, context.Canceled) {
		c.AbortWithStatus(StatusClientClosedRequest)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, ErrorBody{Message: "request timed out", Code: "timeout"})
		return
	}
	logError(c, log, err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody{Message: "internal server error", Code: "internal"})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// BindJSON decodes the body into dst and runs struct validation. On failure
// it returns an *apierr.Error ready for RespondAPIError.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindError(err)
	}
	return validate.Struct(dst)
}

func bindError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apierr.New(http.StatusRequestEntityTooLarge, "payload_too_large", errors.New("request body too large"))
	}
	if errors.Is(err, io.EOF) {
		return apierr.Validation([]apierr.Issue{{Path: "", Message: "request body is required"}})
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apierr.Validation([]apierr.Issue{{Path: typeErr.Field, Message: "must be a " + typeErr.Type.String()}})
	}
	if issues := validate.Issues(err); len(issues) > 0 {
		return apierr.Validation(issues)
	}
	return apierr.Validation([]apierr.Issue{{Path: "", Message: "malformed JSON"}})
}

func codeOr(code, def string) string {
	if code == "" {
		return def
	}
	return code
}

func logError(c *gin.Context, log *logger.Logger, err error) {
	if log == nil {
		return
	}
	log.Error("request failed",
		"error", err,
		"route", c.FullPath(),
		"request_id", ctxutil.RequestID(c.Request.Context()),
	)
}
