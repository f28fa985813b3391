package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/StudyConnect/internal/services"
	"github.com/Gopher0727/StudyConnect/internal/validation"
)

// TaskHandler 任务、分配和评论接口
type TaskHandler struct {
	taskService       *services.TaskService
	assignmentService *services.AssignmentService
	commentService    *services.CommentService
}

func NewTaskHandler(taskService *services.TaskService, assignmentService *services.AssignmentService, commentService *services.CommentService) *TaskHandler {
	return &TaskHandler{
		taskService:       taskService,
		assignmentService: assignmentService,
		commentService:    commentService,
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, reasonBadBody)
		return
	}
	task, reason, err := h.taskService.CreateTask(c.Request.Context(), userID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusCreated, reason, task)
}

// List 个人任务和所在小组的任务
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	tasks, err := h.taskService.ListTasks(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, validation.ReasonSuccess, tasks)
}

func (h *TaskHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	task, err := h.taskService.GetTask(c.Request.Context(), taskID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, validation.ReasonSuccess, task)
}

// Edit 部分更新，截止日期已过时 message 为警告文案
func (h *TaskHandler) Edit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, reasonBadBody)
		return
	}
	task, reason, err := h.taskService.EditTask(c.Request.Context(), taskID, userID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, reason, task)
}

func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, reasonBadBody)
		return
	}
	task, err := h.taskService.ChangeStatus(c.Request.Context(), taskID, userID, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, validation.ReasonSuccess, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.taskService.DeleteTask(c.Request.Context(), taskID, userID); err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, validation.ReasonSuccess, nil)
}

// Assign 管理员把小组任务分配给成员
func (h *TaskHandler) Assign(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, reasonBadBody)
		return
	}
	result, reason, err := h.assignmentService.AssignTask(c.Request.Context(), taskID, userID, req.AssigneeIDs)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, reason, result)
}

func (h *TaskHandler) AddComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, reasonBadBody)
		return
	}
	comment, err := h.commentService.AddComment(c.Request.Context(), taskID, userID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusCreated, validation.ReasonSuccess, comment)
}

func (h *TaskHandler) ListComments(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	comments, err := h.commentService.ListComments(c.Request.Context(), taskID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, validation.ReasonSuccess, comments)
}
