package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/StudyConnect/internal/services"
	"github.com/Gopher0727/StudyConnect/internal/validation"
)

type InvitationHandler struct {
	invitationService *services.InvitationService
}

func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

func (h *InvitationHandler) Get(c *gin.Context) {
	inv, err := h.invitationService.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, validation.ReasonSuccess, inv)
}

// Accept 当前用户接受邀请
func (h *InvitationHandler) Accept(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	member, reason, err := h.invitationService.Accept(c.Request.Context(), c.Param("code"), userID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, reason, member)
}
