package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/wellspring-backend/internal/http/response"
	"github.com/yungbote/wellspring-backend/internal/platform/apierr"
	"github.com/yungbote/wellspring-backend/internal/platform/ctxutil"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
	"github.com/yungbote/wellspring-backend/internal/services"
)

type SessionHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewSessionHandler(log *logger.Logger, authService services.AuthService) *SessionHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionHandler{log: log.With("handler", "SessionHandler"), authService: authService}
}

type sessionView struct {
	ID        uuid.UUID `json:"id"`
	UserAgent string    `json:"user_agent"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Current   bool      `json:"current"`
}

// GET /api/sessions
func (sh *SessionHandler) List(c *gin.Context) {
	sessions, err := sh.authService.ListSessions(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, sh.log, err)
		return
	}
	current := uuid.Nil
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		current = rd.SessionID
	}
	out := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionView{
			ID:        s.ID,
			UserAgent: s.UserAgent,
			IP:        s.IP,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
			Current:   s.ID == current,
		})
	}
	response.RespondOK(c, gin.H{"sessions": out})
}

// DELETE /api/sessions/:id
func (sh *SessionHandler) Revoke(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, sh.log, apierr.Validation([]apierr.Issue{{Path: "id", Message: "must be a valid id"}}))
		return
	}
	if err := sh.authService.RevokeSession(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, sh.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var (
	errNoRoute  = apierr.New(http.StatusNotFound, "not_found", errors.New("route not found"))
	errNoMethod = apierr.New(http.StatusMethodNotAllowed, "method_not_allowed", errors.New("method not allowed"))
)

// NotFound renders unknown routes with the error envelope.
func NotFound(c *gin.Context) {
	response.RespondAPIError(c, nil, errNoRoute)
}

func MethodNotAllowed(c *gin.Context) {
	response.RespondAPIError(c, nil, errNoMethod)
}
