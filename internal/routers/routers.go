package routers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/StudyConnect/config"
	"github.com/Gopher0727/StudyConnect/internal/handlers"
	"github.com/Gopher0727/StudyConnect/internal/middlewares"
	"github.com/Gopher0727/StudyConnect/internal/utils"
	logger "github.com/Gopher0727/StudyConnect/middleware/log"
	"github.com/Gopher0727/StudyConnect/utils/ratelimit"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	User       *handlers.UserHandler
	Task       *handlers.TaskHandler
	Group      *handlers.GroupHandler
	Invitation *handlers.InvitationHandler
	Calendar   *handlers.CalendarHandler
}

// Options 可选的基础设施，零值表示不启用
type Options struct {
	Logger    *logger.Logger
	Pool      *utils.WorkerPool
	Limiter   ratelimit.Limiter
	RateLimit config.RateLimitConfig
}

// SetupRoutes 设置所有路由
func SetupRoutes(r *gin.Engine, h Handlers, opts Options) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", middlewares.UserIDHeader, logger.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{logger.RequestIDHeader, handlers.ExportReasonHeader}
	r.Use(cors.New(corsConfig))

	if opts.Logger != nil {
		r.Use(logger.GinMiddleware(opts.Logger))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"Status": "OK",
		})
	})

	// 业务请求放入协程池排队执行
	api := r.Group("/api/v1", middlewares.AsyncMiddleware(opts.Pool))

	RegisterUserRoutes(api, h.User)
	RegisterTaskRoutes(api, h.Task)
	RegisterGroupRoutes(api, h.Group, opts)
	RegisterInvitationRoutes(api, h.Invitation)
	RegisterCalendarRoutes(api, h.Calendar)
}

func RegisterUserRoutes(api *gin.RouterGroup, h *handlers.UserHandler) {
	users := api.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("/:id", h.Get)
		users.PUT("/:id", middlewares.Identity(), h.UpdateProfile)
	}
	me := api.Group("/users/me", middlewares.Identity())
	{
		me.GET("", h.Me)
		me.POST("/login", h.TouchLogin)
	}
}

func RegisterTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	tasks := api.Group("/tasks", middlewares.Identity())
	{
		tasks.POST("", h.Create)
		tasks.GET("", h.List)
		tasks.GET("/:id", h.Get)
		tasks.PATCH("/:id", h.Edit)
		tasks.PATCH("/:id/status", h.ChangeStatus)
		tasks.DELETE("/:id", h.Delete)

		tasks.POST("/:id/assign", h.Assign)
		tasks.POST("/:id/comments", h.AddComment)
		tasks.GET("/:id/comments", h.ListComments)
	}
}

func RegisterGroupRoutes(api *gin.RouterGroup, h *handlers.GroupHandler, opts Options) {
	groups := api.Group("/groups", middlewares.Identity())
	{
		groups.POST("", h.Create)
		groups.GET("", h.List)
		groups.GET("/:id", h.Get)
		groups.DELETE("/:id", h.Delete)

		// 成员管理
		groups.GET("/:id/members", h.Members)
		groups.POST("/:id/join", h.Join)
		groups.POST("/:id/leave", h.Leave)
		groups.PATCH("/:id/visibility", h.ChangeVisibility)
		groups.PATCH("/:id/members/:user_id/role", h.ChangeRole)
		groups.DELETE("/:id/members/:user_id", h.RemoveMember)

		// 邀请按用户限流
		groups.POST("/:id/invitations",
			middlewares.RateLimit(opts.Limiter, opts.RateLimit.InviteLimit, opts.RateLimit.Window(), middlewares.UserKey("invite")),
			h.Invite,
		)
	}
}

func RegisterInvitationRoutes(api *gin.RouterGroup, h *handlers.InvitationHandler) {
	invitations := api.Group("/invitations")
	{
		invitations.GET("/:code", h.Get)
		invitations.POST("/:code/accept", middlewares.Identity(), h.Accept)
	}
}

func RegisterCalendarRoutes(api *gin.RouterGroup, h *handlers.CalendarHandler) {
	api.GET("/calendar/export", middlewares.Identity(), h.Export)
}
