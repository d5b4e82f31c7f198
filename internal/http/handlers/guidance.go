package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/wellspring-backend/internal/guidance/service"
	"github.com/yungbote/wellspring-backend/internal/http/response"
	"github.com/yungbote/wellspring-backend/internal/platform/apierr"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

type GuidanceHandler struct {
	log     *logger.Logger
	service service.GuidanceService
}

func NewGuidanceHandler(log *logger.Logger, svc service.GuidanceService) *GuidanceHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GuidanceHandler{log: log.With("handler", "GuidanceHandler"), service: svc}
}

type guidanceContext struct {
	Mode string `json:"mode" validate:"omitempty,oneof=journal prompt"`
}

type guidanceRequest struct {
	Text    string           `json:"text" validate:"required,max=4000"`
	Context *guidanceContext `json:"context,omitempty" validate:"omitempty"`
}

var errMisconfigured = apierr.New(http.StatusServiceUnavailable, "provider_misconfigured", errors.New("guidance provider unavailable"))

// POST /api/guidance
func (gh *GuidanceHandler) Guide(c *gin.Context) {
	var req guidanceRequest
	if err := response.BindJSON(c, &req); err != nil {
		response.RespondAPIError(c, gh.log, err)
		return
	}
	mode := ""
	if req.Context != nil {
		mode = req.Context.Mode
	}

	res, err := gh.service.Guide(c.Request.Context(), service.Request{Text: req.Text, Mode: mode})
	if err != nil {
		if errors.Is(err, service.ErrProviderMisconfigured) {
			gh.log.Error("guidance unavailable", "error", err)
			response.RespondAPIError(c, gh.log, errMisconfigured)
			return
		}
		response.RespondAPIError(c, gh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}
