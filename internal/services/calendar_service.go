package services

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/calendar"
	"github.com/Gopher0727/StudyConnect/internal/models"
	"github.com/Gopher0727/StudyConnect/internal/validation"
	logger "github.com/Gopher0727/StudyConnect/middleware/log"
)

// FormatICS 唯一支持的导出格式
const FormatICS = "ICS"

// CalendarService 导出截止日期落在区间内的任务
type CalendarService struct {
	tasks  TaskStore
	groups GroupStore
	log    *logger.Logger
}

func NewCalendarService(tasks TaskStore, groups GroupStore, log *logger.Logger) *CalendarService {
	return &CalendarService{tasks: tasks, groups: groups, log: log}
}

// ExportRequest From/To 为 YYYY-MM-DD，闭区间。FailureReason 为空时使用默认失败文案。
type ExportRequest struct {
	UserID            uint
	Format            string
	From              string
	To                string
	IncludeGroupTasks bool
	FailureReason     string
}

// ExportResult 导出结果
type ExportResult struct {
	Document calendar.Document
	Reason   string
}

// Export 先按隐私规则过滤，再按日期区间过滤，事件按截止时间和 ID 排序
func (s *CalendarService) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if !strings.EqualFold(strings.TrimSpace(req.Format), FormatICS) {
		return nil, apperr.Validation(ReasonUnsupportedFormat)
	}
	from, errFrom := validation.ParseDate(req.From)
	to, errTo := validation.ParseDate(req.To)
	if errFrom != nil || errTo != nil || from.After(to) {
		return nil, apperr.Validation(ReasonInvalidRange)
	}

	failure := req.FailureReason
	if failure == "" {
		failure = ReasonExportFailure
	}

	var groupIDs []uint
	if req.IncludeGroupTasks {
		ids, err := s.groups.GetUserGroupIDs(ctx, req.UserID)
		if err != nil {
			s.log.ErrorContext(ctx, "calendar export failed", zap.Error(err))
			return nil, apperr.Internal(failure, err)
		}
		groupIDs = ids
	}
	candidates, err := s.tasks.ListForUser(ctx, req.UserID, groupIDs)
	if err != nil {
		s.log.ErrorContext(ctx, "calendar export failed", zap.Error(err))
		return nil, apperr.Internal(failure, err)
	}

	visible := visibleTasks(candidates, req.UserID, req.IncludeGroupTasks, groupIDs)
	selected := dueWithin(visible, from, to)

	events := make([]calendar.Event, 0, len(selected))
	for _, t := range selected {
		events = append(events, calendar.Event{Summary: t.Title, Start: *t.DueDate})
	}
	doc := calendar.Build(events)

	reason := ReasonExportSuccess
	if doc.Empty() {
		reason = ReasonExportEmpty
	}
	return &ExportResult{Document: doc, Reason: reason}, nil
}

// visibleTasks 个人任务只保留自己创建的；小组任务只在开启且用户是成员时保留
func visibleTasks(tasks []models.Task, userID uint, includeGroups bool, memberOf []uint) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsPersonalTask() {
			if t.CreatedBy == userID {
				out = append(out, t)
			}
			continue
		}
		if includeGroups && slices.Contains(memberOf, *t.GroupID) {
			out = append(out, t)
		}
	}
	return out
}

// dueWithin 截止日期的日历日落在 [from, to] 内，结果按截止时间、ID 排序
func dueWithin(tasks []models.Task, from, to time.Time) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		d := validation.DateOf(*t.DueDate)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, func(a, b models.Task) int {
		if c := a.DueDate.Compare(*b.DueDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
