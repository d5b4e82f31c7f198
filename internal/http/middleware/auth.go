package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/wellspring-backend/internal/http/response"
	"github.com/yungbote/wellspring-backend/internal/platform/apierr"
	"github.com/yungbote/wellspring-backend/internal/platform/ctxutil"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
	"github.com/yungbote/wellspring-backend/internal/services"
)

var errBadToken = errors.New("missing or invalid token")

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// RequireAuth admits requests whose bearer token maps to a live session.
// Every rejection reads the same; store failures surface as 500.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errBadToken)
			return
		}

		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), token)
		if err != nil {
			if ae, isAPI := apierr.As(err); isAPI && ae.Status < http.StatusInternalServerError {
				am.log.Debug("token rejected", "error", err)
				response.RespondError(c, http.StatusUnauthorized, "unauthorized", errBadToken)
				return
			}
			response.RespondAPIError(c, am.log, err)
			return
		}

		if rd := ctxutil.GetRequestData(ctx); rd == nil || rd.UserID == uuid.Nil {
			response.RespondError(c, http.StatusForbidden, "forbidden", nil)
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
