package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/wellspring-backend/internal/http/response"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
	"github.com/yungbote/wellspring-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &UserHandler{log: log.With("handler", "UserHandler"), userService: userService}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// PATCH /api/me
// body: { "first_name": "...", "last_name": "..." }
func (uh *UserHandler) ChangeName(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
	}
	if err := response.BindJSON(c, &req); err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	u, err := uh.userService.UpdateName(c.Request.Context(), req.FirstName, req.LastName)
	if err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"me": u})
}

// POST /api/me/password
func (uh *UserHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required"`
	}
	if err := response.BindJSON(c, &req); err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	if err := uh.userService.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
