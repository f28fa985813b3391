package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/models"
)

// TaskInput 创建任务的原始输入
type TaskInput struct {
	Title    string
	Notes    string
	Due      string
	Priority string
	Category string
}

// TaskDraft 通过校验的任务字段，状态固定为 OPEN
type TaskDraft struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    models.TaskPriority
	Status      models.TaskStatus
	Category    string
}

// ValidateNewTask 按顺序校验，第一条失败的规则决定返回的原因
func ValidateNewTask(in TaskInput) (TaskDraft, error) {
	if err := checkTitle(in.Title); err != nil {
		return TaskDraft{}, err
	}
	if err := checkNotes(in.Notes); err != nil {
		return TaskDraft{}, err
	}
	due, err := ParseDue(in.Due)
	if err != nil {
		return TaskDraft{}, err
	}
	priority, ok := models.ParseTaskPriority(in.Priority)
	if !ok {
		return TaskDraft{}, apperr.Validation(ReasonInvalidPriority)
	}
	if err := checkCategory(in.Category); err != nil {
		return TaskDraft{}, err
	}

	return TaskDraft{
		Title:       in.Title,
		Description: in.Notes,
		DueDate:     due,
		Priority:    priority,
		Status:      models.StatusOpen,
		Category:    in.Category,
	}, nil
}

// Apply 用草稿填充新任务
func (d TaskDraft) Apply(t *models.Task) {
	t.Title = d.Title
	t.Description = d.Description
	t.DueDate = d.DueDate
	t.Priority = d.Priority
	t.Status = d.Status
	t.Category = d.Category
}

// TaskEdit 编辑请求，nil 字段表示不修改；Due 为空串表示清除截止时间
type TaskEdit struct {
	Title    *string
	Notes    *string
	Due      *string
	Priority *string
	Status   *string
	Category *string
}

// TaskPatch 通过校验的修改
type TaskPatch struct {
	Title       *string
	Description *string
	SetDue      bool
	DueDate     *time.Time
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
	Category    *string
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && !p.SetDue &&
		p.Priority == nil && p.Status == nil && p.Category == nil
}

// ValidateTaskEdit 只校验出现的字段。空标题直接拒绝；
// 截止日期早于今天仍然允许保存，但原因变为 ReasonPastDueSave。
func ValidateTaskEdit(edit TaskEdit, now time.Time) (TaskPatch, string, error) {
	var patch TaskPatch
	reason := ReasonSuccess

	if edit.Title != nil {
		if err := checkTitle(*edit.Title); err != nil {
			return TaskPatch{}, "", err
		}
		patch.Title = edit.Title
	}
	if edit.Notes != nil {
		if err := checkNotes(*edit.Notes); err != nil {
			return TaskPatch{}, "", err
		}
		patch.Description = edit.Notes
	}
	if edit.Due != nil {
		due, err := ParseDue(*edit.Due)
		if err != nil {
			return TaskPatch{}, "", err
		}
		patch.SetDue = true
		patch.DueDate = due
		if due != nil && BeforeToday(*due, now) {
			reason = ReasonPastDueSave
		}
	}
	if edit.Priority != nil {
		p, ok := models.ParseTaskPriority(*edit.Priority)
		if !ok {
			return TaskPatch{}, "", apperr.Validation(ReasonInvalidPriority)
		}
		patch.Priority = &p
	}
	if edit.Status != nil {
		s, ok := models.ParseTaskStatus(*edit.Status)
		if !ok {
			return TaskPatch{}, "", apperr.Validation(ReasonInvalidStatus)
		}
		patch.Status = &s
	}
	if edit.Category != nil {
		if err := checkCategory(*edit.Category); err != nil {
			return TaskPatch{}, "", err
		}
		patch.Category = edit.Category
	}
	return patch, reason, nil
}

// Apply 把修改写回任务并刷新 UpdatedAt
func (p TaskPatch) Apply(t *models.Task, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.SetDue {
		t.DueDate = p.DueDate
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	t.Touch(now)
}

// ValidateStatus 解析状态变更
func ValidateStatus(s string) (models.TaskStatus, error) {
	st, ok := models.ParseTaskStatus(s)
	if !ok {
		return "", apperr.Validation(ReasonInvalidStatus)
	}
	return st, nil
}

func checkTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperr.Validation(ReasonTitleRequired)
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return apperr.Validation(ReasonTitleTooLong)
	}
	return nil
}

func checkNotes(notes string) error {
	if utf8.RuneCountInString(notes) > MaxNotesLen {
		return apperr.Validation(ReasonNotesTooLong)
	}
	return nil
}

func checkCategory(category string) error {
	if utf8.RuneCountInString(category) > MaxCategoryLen {
		return apperr.Validation(ReasonCategoryTooLong)
	}
	return nil
}
