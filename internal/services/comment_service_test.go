package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/validation"
)

func TestComments(t *testing.T) {
	e := newEnv(t)
	admin := e.user("admin@example.com")
	bob := e.user("bob@example.com")
	outsider := e.user("out@example.com")
	g := e.group(admin, "PRIVATE", 0)
	e.addStudent(g.ID, bob)
	task := e.groupTask(admin, g.ID, "Discuss", "")

	_, err := e.comments.AddComment(e.ctx, task.ID, admin.ID, "Start with chapter 2")
	require.NoError(t, err)
	e.clock.Advance(1)
	_, err = e.comments.AddComment(e.ctx, task.ID, bob.ID, "Done")
	require.NoError(t, err)

	list, err := e.comments.ListComments(e.ctx, task.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Start with chapter 2", list[0].Content)
	assert.Equal(t, bob.ID, list[1].UserID)

	_, err = e.comments.AddComment(e.ctx, task.ID, outsider.ID, "hi")
	assert.ErrorIs(t, err, apperr.ErrPermission)
	_, err = e.comments.ListComments(e.ctx, task.ID, outsider.ID)
	assert.ErrorIs(t, err, apperr.ErrPermission)

	_, err = e.comments.AddComment(e.ctx, task.ID, bob.ID, "  ")
	assert.Equal(t, validation.ReasonContentRequired, apperr.ReasonOf(err))
}
