package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/StudyConnect/internal/apperr"
	"github.com/Gopher0727/StudyConnect/internal/models"
)

func TestInvite_Duplicate(t *testing.T) {
	e := newEnv(t)
	admin := e.user("admin@example.com")
	g := e.group(admin, "PRIVATE", 0)

	before, err := e.groups.ListMembers(e.ctx, g.ID, admin.ID)
	require.NoError(t, err)

	inv, reason, err := e.invitations.Invite(e.ctx, g.ID, admin.ID, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, ReasonInviteRecorded, reason)
	assert.Equal(t, models.InvitationPending, inv.Status)
	assert.True(t, inv.ExpiresAt.Equal(baseTime.Add(DefaultInvitationTTL)))

	_, _, err = e.invitations.Invite(e.ctx, g.ID, admin.ID, "Bob@Example.com")
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Duplicate invitation", apperr.ReasonOf(err))

	after, err := e.groups.ListMembers(e.ctx, g.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, int64(1), e.count(&models.Invitation{}))
	assert.Len(t, e.notifier.invitations, 1)
}

func TestInvite_Rules(t *testing.T) {
	e := newEnv(t)
	admin := e.user("admin@example.com")
	bob := e.user("bob@example.com")
	g := e.group(admin, "PRIVATE", 0)
	e.addStudent(g.ID, bob)

	_, _, err := e.invitations.Invite(e.ctx, g.ID, bob.ID, "carol@example.com")
	assert.ErrorIs(t, err, apperr.ErrPermission)
	assert.Equal(t, ReasonAdminInvite, apperr.ReasonOf(err))

	_, _, err = e.invitations.Invite(e.ctx, g.ID, admin.ID, "not-an-email")
	assert.Equal(t, ReasonInvalidInvitee, apperr.ReasonOf(err))

	_, _, err = e.invitations.Invite(e.ctx, g.ID, admin.ID, "BOB@example.com")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, ReasonAlreadyMember, apperr.ReasonOf(err))

	_, _, err = e.invitations.Invite(e.ctx, 9999, admin.ID, "carol@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Zero(t, e.count(&models.Invitation{}))
	assert.Zero(t, e.notifier.calls)
}

func TestInvite_DeliveryFailureRollsBack(t *testing.T) {
	e := newEnv(t)
	admin := e.user("admin@example.com")
	g := e.group(admin, "PRIVATE", 0)

	e.notifier.setFail(true)
	_, _, err := e.invitations.Invite(e.ctx, g.ID, admin.ID, "bob@example.com")
	require.ErrorIs(t, err, apperr.ErrDelivery)
	assert.Equal(t, "Delivery error; retry", apperr.ReasonOf(err))
	assert.ErrorIs(t, err, errBrokerDown)
	assert.Zero(t, e.count(&models.Invitation{}))

	e.notifier.setFail(false)
	_, reason, err := e.invitations.Invite(e.ctx, g.ID, admin.ID, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, ReasonInviteRecorded, reason)
}

func TestAccept(t *testing.T) {
	e := newEnv(t)
	admin := e.user("admin@example.com")
	bob := e.user("bob@example.com")
	g := e.group(admin, "PRIVATE", 0)

	inv, _, err := e.invitations.Invite(e.ctx, g.ID, admin.ID, "bob@example.com")
	require.NoError(t, err)

	e.clock.Advance(DefaultInvitationTTL - 1)
	member, reason, err := e.invitations.Accept(e.ctx, inv.Code, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, ReasonInviteAccepted, reason)
	assert.Equal(t, models.RoleStudent, member.Role)
	require.NotNil(t, member.InvitedBy)
	assert.Equal(t, admin.ID, *member.InvitedBy)

	got, err := e.invitations.Get(e.ctx, inv.Code)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationAccepted, got.Status)
	require.NotNil(t, got.AcceptedAt)

	_, _, err = e.invitations.Accept(e.ctx, inv.Code, bob.ID)
	assert.Equal(t, ReasonInviteUsed, apperr.ReasonOf(err))
}

func TestAccept_ExpiresAfterSevenDays(t *testing.T) {
	e := newEnv(t)
	admin := e.user("admin@example.com")
	bob := e.user("bob@example.com")
	g := e.group(admin, "PRIVATE", 0)

	inv, _, err := e.invitations.Invite(e.ctx, g.ID, admin.ID, "bob@example.com")
	require.NoError(t, err)

	e.clock.Advance(DefaultInvitationTTL)
	_, _, err = e.invitations.Accept(e.ctx, inv.Code, bob.ID)
	assert.Equal(t, ReasonInviteExpired, apperr.ReasonOf(err))

	got, err := e.invitations.Get(e.ctx, inv.Code)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationExpired, got.Status)

	ok, err := e.groupRepo.IsMember(e.ctx, g.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// 过期的邀请不算重复
	_, _, err = e.invitations.Invite(e.ctx, g.ID, admin.ID, "bob@example.com")
	require.NoError(t, err)
}

func TestAccept_WrongUser(t *testing.T) {
	e := newEnv(t)
	admin := e.user("admin@example.com")
	mallory := e.user("mallory@example.com")
	g := e.group(admin, "PRIVATE", 0)

	inv, _, err := e.invitations.Invite(e.ctx, g.ID, admin.ID, "bob@example.com")
	require.NoError(t, err)

	_, _, err = e.invitations.Accept(e.ctx, inv.Code, mallory.ID)
	assert.ErrorIs(t, err, apperr.ErrPermission)
	assert.Equal(t, ReasonInviteOtherUser, apperr.ReasonOf(err))

	_, _, err = e.invitations.Accept(e.ctx, "NOPE", mallory.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAccept_GroupFullKeepsInvitationPending(t *testing.T) {
	e := newEnv(t)
	admin := e.user("admin@example.com")
	bob := e.user("bob@example.com")
	carol := e.user("carol@example.com")
	g := e.group(admin, "PRIVATE", 2)

	inv, _, err := e.invitations.Invite(e.ctx, g.ID, admin.ID, "bob@example.com")
	require.NoError(t, err)
	e.addStudent(g.ID, carol)

	_, _, err = e.invitations.Accept(e.ctx, inv.Code, bob.ID)
	assert.Equal(t, "Group is full", apperr.ReasonOf(err))

	got, err := e.invitations.Get(e.ctx, inv.Code)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationPending, got.Status)
}
