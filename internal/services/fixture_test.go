package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Gopher0727/StudyConnect/internal/models"
	"github.com/Gopher0727/StudyConnect/internal/repositories"
	"github.com/Gopher0727/StudyConnect/internal/testutil"
	logger "github.com/Gopher0727/StudyConnect/middleware/log"
)

var baseTime = time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

var errBrokerDown = errors.New("kafka: broker not available")

type fakeNotifier struct {
	mu            sync.Mutex
	fail          bool
	notifications []models.Notification
	invitations   []models.Invitation
	calls         int
}

func (n *fakeNotifier) Notify(_ context.Context, notifications []models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.fail {
		return errBrokerDown
	}
	n.notifications = append(n.notifications, notifications...)
	return nil
}

func (n *fakeNotifier) SendInvitation(_ context.Context, inv *models.Invitation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.fail {
		return errBrokerDown
	}
	n.invitations = append(n.invitations, *inv)
	return nil
}

func (n *fakeNotifier) setFail(fail bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fail = fail
}

type sequenceCodes struct {
	mu sync.Mutex
	n  int
}

func (c *sequenceCodes) NextCode() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return fmt.Sprintf("CODE%04d", c.n), nil
}

// env 每个测试独立的一套服务，底层是内存 SQLite
type env struct {
	t        *testing.T
	ctx      context.Context
	db       *gorm.DB
	clock    *testutil.Clock
	notifier *fakeNotifier

	userRepo   *repositories.UserRepository
	groupRepo  *repositories.GroupRepository
	taskRepo   *repositories.TaskRepository
	inviteRepo *repositories.InvitationRepository

	users       *UserService
	tasks       *TaskService
	groups      *GroupService
	invitations *InvitationService
	assignments *AssignmentService
	calendar    *CalendarService
	comments    *CommentService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock(baseTime)
	log := logger.NewNop()
	now := Clock(clock.Now)

	e := &env{
		t:          t,
		ctx:        testutil.Ctx(t),
		db:         db,
		clock:      clock,
		notifier:   &fakeNotifier{},
		userRepo:   repositories.NewUserRepository(db, nil),
		groupRepo:  repositories.NewGroupRepository(db),
		taskRepo:   repositories.NewTaskRepository(db),
		inviteRepo: repositories.NewInvitationRepository(db),
	}
	tx := repositories.NewTxManager(db)
	commentRepo := repositories.NewCommentRepository(db)

	e.users = NewUserService(e.userRepo, now, log)
	e.tasks = NewTaskService(e.taskRepo, e.userRepo, e.groupRepo, now, log)
	e.groups = NewGroupService(e.groupRepo, e.userRepo, tx, now, log)
	e.invitations = NewInvitationService(InvitationDeps{
		Invitations: e.inviteRepo,
		Groups:      e.groupRepo,
		Users:       e.userRepo,
		Tx:          tx,
		Notifier:    e.notifier,
		Codes:       &sequenceCodes{},
		Clock:       now,
		Log:         log,
	})
	e.assignments = NewAssignmentService(e.taskRepo, e.groupRepo, e.userRepo, tx, e.notifier, now, log)
	e.calendar = NewCalendarService(e.taskRepo, e.groupRepo, log)
	e.comments = NewCommentService(commentRepo, e.taskRepo, e.groupRepo, now)
	return e
}

// user 直接写库，避免每个测试都走 bcrypt
func (e *env) user(email string) *models.User {
	e.t.Helper()
	u := newUser(email, "hash", email, e.clock.Now())
	require.NoError(e.t, e.userRepo.Create(e.ctx, u))
	return u
}

func (e *env) group(admin *models.User, visibility string, maxMembers int) *GroupDTO {
	e.t.Helper()
	g, _, err := e.groups.CreateGroup(e.ctx, admin.ID, &CreateGroupRequest{
		Name:       "Study group",
		Visibility: visibility,
		MaxMembers: maxMembers,
	})
	require.NoError(e.t, err)
	return g
}

func (e *env) addStudent(groupID uint, u *models.User) {
	e.t.Helper()
	require.NoError(e.t, e.groupRepo.AddMember(e.ctx, &models.GroupMember{
		GroupID:  groupID,
		UserID:   u.ID,
		Role:     models.RoleStudent,
		JoinedAt: e.clock.Now(),
	}))
}

func (e *env) groupTask(creator *models.User, groupID uint, title, due string) *TaskDTO {
	e.t.Helper()
	task, _, err := e.tasks.CreateTask(e.ctx, creator.ID, &CreateTaskRequest{
		Title:    title,
		Due:      due,
		Priority: "MEDIUM",
		GroupID:  &groupID,
	})
	require.NoError(e.t, err)
	return task
}

func (e *env) personalTask(creator *models.User, title, due string) *TaskDTO {
	e.t.Helper()
	task, _, err := e.tasks.CreateTask(e.ctx, creator.ID, &CreateTaskRequest{
		Title:    title,
		Due:      due,
		Priority: "LOW",
	})
	require.NoError(e.t, err)
	return task
}

func (e *env) count(model any) int64 {
	e.t.Helper()
	var n int64
	require.NoError(e.t, e.db.Model(model).Count(&n).Error)
	return n
}

func ptr[T any](v T) *T { return &v }
