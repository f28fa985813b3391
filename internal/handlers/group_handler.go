package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/StudyConnect/internal/services"
	"github.com/Gopher0727/StudyConnect/internal/validation"
)

// GroupHandler 小组、成员和邀请接口
type GroupHandler struct {
	groupService      *services.GroupService
	invitationService *services.InvitationService
}

func NewGroupHandler(groupService *services.GroupService, invitationService *services.InvitationService) *GroupHandler {
	return &GroupHandler{
		groupService:      groupService,
		invitationService: invitationService,
	}
}

type visibilityRequest struct {
	Visibility string `json:"visibility"`
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *GroupHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, reasonBadBody)
		return
	}
	group, reason, err := h.groupService.CreateGroup(c.Request.Context(), userID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusCreated, reason, group)
}

func (h *GroupHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	group, err := h.groupService.GetGroup(c.Request.Context(), groupID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, validation.ReasonSuccess, group)
}

// List 公开小组列表，mine=true 时返回当前用户所在的小组
func (h *GroupHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var (
		groups []*services.GroupDTO
		err    error
	)
	if c.Query("mine") == "true" {
		groups, err = h.groupService.ListMyGroups(c.Request.Context(), userID)
	} else {
		groups, err = h.groupService.ListPublicGroups(c.Request.Context())
	}
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, validation.ReasonSuccess, groups)
}

func (h *GroupHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.groupService.DeleteGroup(c.Request.Context(), groupID, userID); err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, validation.ReasonSuccess, nil)
}

func (h *GroupHandler) Members(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	members, err := h.groupService.ListMembers(c.Request.Context(), groupID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, validation.ReasonSuccess, members)
}

// Join 加入公开小组
func (h *GroupHandler) Join(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	member, reason, err := h.groupService.JoinGroup(c.Request.Context(), groupID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, reason, member)
}

func (h *GroupHandler) Leave(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	reason, err := h.groupService.LeaveGroup(c.Request.Context(), groupID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, reason, nil)
}

func (h *GroupHandler) ChangeVisibility(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, reasonBadBody)
		return
	}
	group, err := h.groupService.ChangeVisibility(c.Request.Context(), groupID, userID, req.Visibility)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, validation.ReasonSuccess, group)
}

func (h *GroupHandler) ChangeRole(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, reasonBadBody)
		return
	}
	member, err := h.groupService.ChangeMemberRole(c.Request.Context(), groupID, userID, targetID, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, validation.ReasonSuccess, member)
}

// RemoveMember 管理员移出成员
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	reason, err := h.groupService.RemoveMember(c.Request.Context(), groupID, userID, targetID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, reason, nil)
}

// Invite 管理员邀请成员，受邀人为邮箱
func (h *GroupHandler) Invite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, reasonBadBody)
		return
	}
	inv, reason, err := h.invitationService.Invite(c.Request.Context(), groupID, userID, req.Invitee)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusCreated, reason, inv)
}
