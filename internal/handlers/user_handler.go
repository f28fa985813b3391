package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/StudyConnect/internal/services"
	"github.com/Gopher0727/StudyConnect/internal/validation"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register 注册用户
func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, reasonBadBody)
		return
	}
	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusCreated, validation.ReasonSuccess, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, validation.ReasonSuccess, user)
}

// Me 当前用户
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, validation.ReasonSuccess, user)
}

// TouchLogin 网关登录成功后回调，记录最近登录时间
func (h *UserHandler) TouchLogin(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.userService.TouchLogin(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, validation.ReasonSuccess, user)
}

// UpdateProfile 修改自己的资料
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, reasonBadBody)
		return
	}
	user, reason, err := h.userService.UpdateProfile(c.Request.Context(), actorID, userID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, reason, user)
}
