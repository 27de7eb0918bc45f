package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/httpx"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/fekuna/omnipos-warehouse/internal/session"
	"github.com/fekuna/omnipos-warehouse/internal/session/dto"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	uc     session.UseCase
	resp   *httpx.Responder
	logger logger.ZapLogger
}

func NewSessionHandler(uc session.UseCase, resp *httpx.Responder, log logger.ZapLogger) *SessionHandler {
	return &SessionHandler{
		uc:     uc,
		resp:   resp,
		logger: log,
	}
}

func (h *SessionHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if !h.resp.BindJSON(c, &input) {
		return
	}

	res, err := h.uc.Login(c.Request.Context(), &input)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.uc.Logout(c.Request.Context(), auth.GetSessionID(c.Request.Context())); err != nil {
		h.resp.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
