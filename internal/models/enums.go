package models

import "strings"

// TaskPriority 任务优先级，LOW < MEDIUM < HIGH
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// TaskPriorities 按顺序列出全部优先级
var TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

// Rank 返回排序序号，未知值返回 -1
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	default:
		return -1
	}
}

func (p TaskPriority) Valid() bool { return p.Rank() >= 0 }

// ParseTaskPriority 忽略大小写解析优先级
func ParseTaskPriority(s string) (TaskPriority, bool) {
	p := TaskPriority(strings.ToUpper(strings.TrimSpace(s)))
	return p, p.Valid()
}

// TaskStatus 任务状态，OPEN < IN_PROGRESS < COMPLETED
type TaskStatus string

const (
	StatusOpen       TaskStatus = "OPEN"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

var TaskStatuses = []TaskStatus{StatusOpen, StatusInProgress, StatusCompleted}

func (s TaskStatus) Rank() int {
	switch s {
	case StatusOpen:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	default:
		return -1
	}
}

func (s TaskStatus) Valid() bool { return s.Rank() >= 0 }

func ParseTaskStatus(s string) (TaskStatus, bool) {
	st := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.Valid()
}

// GroupRole 成员角色
type GroupRole string

const (
	RoleStudent GroupRole = "STUDENT"
	RoleAdmin   GroupRole = "ADMIN"
)

var GroupRoles = []GroupRole{RoleStudent, RoleAdmin}

func (r GroupRole) Rank() int {
	switch r {
	case RoleStudent:
		return 0
	case RoleAdmin:
		return 1
	default:
		return -1
	}
}

func (r GroupRole) Valid() bool { return r.Rank() >= 0 }

func ParseGroupRole(s string) (GroupRole, bool) {
	r := GroupRole(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// GroupVisibility 群组可见性，PUBLIC 群组允许自行加入
type GroupVisibility string

const (
	VisibilityPrivate GroupVisibility = "PRIVATE"
	VisibilityPublic  GroupVisibility = "PUBLIC"
)

var GroupVisibilities = []GroupVisibility{VisibilityPrivate, VisibilityPublic}

func (v GroupVisibility) Rank() int {
	switch v {
	case VisibilityPrivate:
		return 0
	case VisibilityPublic:
		return 1
	default:
		return -1
	}
}

func (v GroupVisibility) Valid() bool { return v.Rank() >= 0 }

func ParseGroupVisibility(s string) (GroupVisibility, bool) {
	v := GroupVisibility(strings.ToUpper(strings.TrimSpace(s)))
	return v, v.Valid()
}

// InvitationStatus 邀请状态；过期不落库，按 ExpiresAt 惰性判断
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)
