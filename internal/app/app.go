package app

import (
	"context"
	"course_advisor_backend/internal/config"
	"course_advisor_backend/internal/controller"
	"course_advisor_backend/internal/repository"
	"course_advisor_backend/internal/service"
	"course_advisor_backend/pkg/configwatcher"
	"course_advisor_backend/pkg/database"
	"course_advisor_backend/pkg/logger"
	"course_advisor_backend/pkg/monitoring"
	"course_advisor_backend/pkg/security"
	"course_advisor_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services *services
}

type repositories struct {
	user       *repository.UserRepository
	session    *repository.SessionRepository
	evaluation *repository.EvaluationRepository
	question   *repository.QuestionRepository
}

type services struct {
	ai         *service.AIService
	mail       *service.EmailService
	auth       *service.AuthService
	session    *service.SessionService
	evaluation *service.EvaluationService
	question   *service.QuestionService
}

type controllers struct {
	auth       *controller.AuthController
	session    *controller.SessionController
	evaluation *controller.EvaluationController
	question   *controller.QuestionController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		session:    repository.NewSessionRepository(db),
		evaluation: repository.NewEvaluationRepository(db),
		question:   repository.NewQuestionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.ai = service.NewAIService(cfg.AI)
	s.mail = service.NewEmailService(cfg.Mail)
	s.auth = service.NewAuthService(repos.user, rdb, s.mail, cfg)
	s.session = service.NewSessionService(repos.session)
	s.evaluation = service.NewEvaluationService(repos.evaluation, s.ai)
	s.question = service.NewQuestionService(repos.question, rdb)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		session:    controller.NewSessionController(s.session),
		evaluation: controller.NewEvaluationController(s.evaluation),
		question:   controller.NewQuestionController(s.question),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// watchConfig AI接入参数支持热更新，其余配置仍需重启生效
func (a *App) watchConfig(s *services) {
	go configwatcher.WatchConfig("configs/config.yaml", func(cfg *config.Config) {
		logger.Log.Info("Config reloaded, applying AI settings")
		s.ai.UpdateConfig(cfg.AI)
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("course-advisor", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	app.watchConfig(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
