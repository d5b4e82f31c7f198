package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/wellspring-backend/internal/http/response"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
	"github.com/yungbote/wellspring-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func sessionMeta(c *gin.Context) services.SessionMeta {
	return services.SessionMeta{UserAgent: c.Request.UserAgent(), IP: c.ClientIP()}
}

// POST /api/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := response.BindJSON(c, &req); err != nil {
		response.RespondAPIError(c, ah.log, err)
		return
	}
	user, err := ah.authService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, ah.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"user": user})
}

// POST /api/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := response.BindJSON(c, &req); err != nil {
		response.RespondAPIError(c, ah.log, err)
		return
	}
	pair, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password, sessionMeta(c))
	if err != nil {
		response.RespondAPIError(c, ah.log, err)
		return
	}
	response.RespondOK(c, pair)
}

// POST /api/refresh
func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := response.BindJSON(c, &req); err != nil {
		response.RespondAPIError(c, ah.log, err)
		return
	}
	pair, err := ah.authService.RefreshUser(c.Request.Context(), req.RefreshToken, sessionMeta(c))
	if err != nil {
		response.RespondAPIError(c, ah.log, err)
		return
	}
	response.RespondOK(c, pair)
}

// POST /api/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
		response.RespondAPIError(c, ah.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
