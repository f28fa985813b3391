package models

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

func drawTask(rt *rapid.T) *Task {
	task := &Task{
		ID:       rapid.UintRange(1, 1<<20).Draw(rt, "id"),
		Title:    rapid.StringN(1, 20, -1).Draw(rt, "title"),
		Priority: rapid.SampledFrom(TaskPriorities).Draw(rt, "priority"),
		Status:   rapid.SampledFrom(TaskStatuses).Draw(rt, "status"),
	}
	if rapid.Bool().Draw(rt, "hasGroup") {
		gid := rapid.UintRange(1, 1000).Draw(rt, "groupID")
		task.GroupID = &gid
	}
	if rapid.Bool().Draw(rt, "hasDue") {
		due := time.Unix(rapid.Int64Range(0, 4_000_000_000).Draw(rt, "due"), 0).UTC()
		task.DueDate = &due
	}
	return task
}

// Property: personal and group are complements for every task
func TestProperty_PersonalGroupComplement(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		task := drawTask(rt)
		if task.IsPersonalTask() == task.IsGroupTask() {
			rt.Fatalf("IsPersonalTask and IsGroupTask must differ, group=%v", task.GroupID)
		}
	})
}

// Property: a past due date is overdue until the task is completed
func TestProperty_OverdueUntilCompleted(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		task := drawTask(rt)
		now := time.Unix(rapid.Int64Range(1, 4_000_000_000).Draw(rt, "now"), 0).UTC()
		past := now.Add(-time.Duration(rapid.Int64Range(1, 1<<40).Draw(rt, "lag")))
		task.DueDate = &past

		want := task.Status != StatusCompleted
		if got := task.IsOverdue(now); got != want {
			rt.Fatalf("IsOverdue = %v for status %s, want %v", got, task.Status, want)
		}

		task.Status = StatusCompleted
		if task.IsOverdue(now) {
			rt.Fatalf("completed task must never be overdue")
		}
	})
}

func TestProperty_NoDueDateNeverOverdue(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		task := drawTask(rt)
		task.DueDate = nil
		now := time.Unix(rapid.Int64Range(0, 4_000_000_000).Draw(rt, "now"), 0)
		if task.IsOverdue(now) {
			rt.Fatalf("task without due date reported overdue")
		}
	})
}
