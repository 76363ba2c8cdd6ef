package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/academic-console/pkg/errors"
	"github.com/noah-isme/academic-console/pkg/response"
)

// SessionHandler exposes the workspace state as JSON.
type SessionHandler struct{}

// NewSessionHandler constructs the handler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Status godoc
// @Summary Console session status
// @Description Reports whether the browser's workspace is signed in, its role and current page. The session token is never exposed.
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope{data=models.SessionStatus}
// @Router /api/session [get]
func (h *SessionHandler) Status(c *gin.Context) {
	shell := shellFromContext(c)
	if shell == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "workspace missing"))
		return
	}
	response.JSON(c, http.StatusOK, shell.Status())
}
