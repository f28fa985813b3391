package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gopher0727/StudyConnect/config"
	"github.com/Gopher0727/StudyConnect/internal/handlers"
	"github.com/Gopher0727/StudyConnect/internal/mq"
	"github.com/Gopher0727/StudyConnect/internal/repositories"
	"github.com/Gopher0727/StudyConnect/internal/routers"
	"github.com/Gopher0727/StudyConnect/internal/services"
	"github.com/Gopher0727/StudyConnect/internal/storage"
	"github.com/Gopher0727/StudyConnect/internal/utils"
	logger "github.com/Gopher0727/StudyConnect/middleware/log"
	"github.com/Gopher0727/StudyConnect/utils/ratelimit"
	"github.com/Gopher0727/StudyConnect/utils/snowflake"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig("./config.toml")
	if err != nil {
		log.Fatalf("配置初始化失败: %v", err)
	}

	appLog, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}

	err = run(cfg, appLog)
	if err != nil {
		appLog.Error("服务异常退出", zap.Error(err))
	}
	_ = appLog.Close()
	if err != nil {
		os.Exit(1)
	}
}

// run 组装并运行服务，返回前执行所有清理
func run(cfg *config.Config, appLog *logger.Logger) error {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化 PostgreSQL
	postgres, err := storage.InitPostgres(&cfg.Postgres, appLog.Logger)
	if err != nil {
		return fmt.Errorf("postgres 初始化失败: %w", err)
	}
	if err := storage.Migrate(postgres); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	// 初始化 Redis
	redisClient, err := storage.InitRedis(ctx, &cfg.Redis, appLog.Logger)
	if err != nil {
		return fmt.Errorf("redis 初始化失败: %w", err)
	}
	defer redisClient.Close()

	// 初始化仓储层
	userRepo := repositories.NewUserRepository(postgres, redisClient)
	groupRepo := repositories.NewGroupRepository(postgres)
	taskRepo := repositories.NewTaskRepository(postgres)
	commentRepo := repositories.NewCommentRepository(postgres)
	invitationRepo := repositories.NewInvitationRepository(postgres)
	tx := repositories.NewTxManager(postgres)

	codes, err := snowflake.NewGenerator(snowflake.Config{WorkerID: cfg.Server.NodeID})
	if err != nil {
		return fmt.Errorf("邀请码生成器初始化失败: %w", err)
	}

	// 初始化通知投递，Kafka 不可用时降级为日志通知
	logNotifier := mq.NewLogNotifier(appLog)
	var notifier services.Notifier = logNotifier
	kafkaNotifier, err := mq.NewKafkaNotifier(&cfg.Kafka, appLog)
	if err != nil {
		appLog.Warn("Kafka 生产者初始化失败，降级为日志通知", zap.Error(err))
	} else {
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
	}

	if kafkaNotifier != nil && cfg.Kafka.Consume {
		consumer, err := mq.NewConsumer(&cfg.Kafka, logNotifier, appLog)
		if err != nil {
			appLog.Warn("Kafka 消费者初始化失败", zap.Error(err))
		} else {
			consumer.Start(ctx)
			defer consumer.Stop()
		}
	}

	// 初始化协程池与限流器
	pool := utils.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appLog.Logger)
	pool.Start()
	defer pool.Stop()

	limiter := ratelimit.NewFixedWindowLimiter(redisClient, appLog.Logger, true)

	// 初始化服务层
	now := services.Clock(time.Now)
	userService := services.NewUserService(userRepo, now, appLog)
	taskService := services.NewTaskService(taskRepo, userRepo, groupRepo, now, appLog)
	groupService := services.NewGroupService(groupRepo, userRepo, tx, now, appLog)
	assignmentService := services.NewAssignmentService(taskRepo, groupRepo, userRepo, tx, notifier, now, appLog)
	commentService := services.NewCommentService(commentRepo, taskRepo, groupRepo, now)
	calendarService := services.NewCalendarService(taskRepo, groupRepo, appLog)
	invitationService := services.NewInvitationService(services.InvitationDeps{
		Invitations: invitationRepo,
		Groups:      groupRepo,
		Users:       userRepo,
		Tx:          tx,
		Notifier:    notifier,
		Codes:       codes,
		TTL:         cfg.Invitation.TTL(),
		Clock:       now,
		Log:         appLog,
	})

	// 配置并创建 Gin 引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())

	routers.SetupRoutes(r, routers.Handlers{
		User:       handlers.NewUserHandler(userService),
		Task:       handlers.NewTaskHandler(taskService, assignmentService, commentService),
		Group:      handlers.NewGroupHandler(groupService, invitationService),
		Invitation: handlers.NewInvitationHandler(invitationService),
		Calendar:   handlers.NewCalendarHandler(calendarService),
	}, routers.Options{
		Logger:    appLog,
		Pool:      pool,
		Limiter:   limiter,
		RateLimit: cfg.RateLimit,
	})

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Server.Port),
		Handler: r,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLog.Info("正在启动服务器", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("启动服务器失败: %w", err)
		}
	case <-ctx.Done():
	}
	appLog.Info("正在关闭服务器")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务器关闭失败: %w", err)
	}
	return nil
}
