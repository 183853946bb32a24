package app

import (
	"course_advisor_backend/docs"
	"course_advisor_backend/internal/config"
	"course_advisor_backend/internal/middleware"
	"course_advisor_backend/internal/model"
	"course_advisor_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/verify", c.auth.VerifyEmail)
		public.POST("/verify/resend", c.auth.ResendVerification)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.GET("/questions", c.question.ListStudentQuestions)

		// 测评会话
		authGroup.POST("/sessions", c.session.CreateSession)
		authGroup.GET("/sessions", c.session.ListHistory)
		authGroup.GET("/sessions/:id", c.session.GetSession)
		authGroup.POST("/sessions/:id/answers", c.session.SubmitAnswer)
		authGroup.PUT("/sessions/:id/progress", c.session.UpdateProgress)
		authGroup.POST("/sessions/:id/submit", c.session.SubmitSession)

		// AI评估
		authGroup.POST("/evaluations/evaluate", c.evaluation.Evaluate)
		authGroup.POST("/evaluations", c.evaluation.SaveEvaluation)
		authGroup.GET("/evaluations/mine", c.evaluation.ListMine)
		authGroup.GET("/evaluations/:id", c.evaluation.GetEvaluation)
	}

	// 3. 顾问/管理员路由
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	admin.Use(middleware.RoleMiddleware(model.Counselor, model.Admin))
	{
		admin.POST("/questions", c.question.CreateQuestion)
		admin.GET("/questions", c.question.ListQuestions)
		admin.GET("/questions/:id", c.question.GetQuestion)
		admin.PUT("/questions/:id", c.question.UpdateQuestion)
		admin.DELETE("/questions/:id", c.question.DeleteQuestion)

		admin.GET("/evaluations", c.evaluation.ListEvaluations)
		admin.DELETE("/evaluations/:id", c.evaluation.DeleteEvaluation)
	}
}
