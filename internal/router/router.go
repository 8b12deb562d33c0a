// Package router assembles the gin engine: middleware chain, operational
// endpoints, and the role-guarded API groups.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/taqyim-dev/taqyim-api/internal/evaluation"
	"github.com/taqyim-dev/taqyim-api/internal/handler"
	"github.com/taqyim-dev/taqyim-api/internal/identity"
	"github.com/taqyim-dev/taqyim-api/internal/middleware"
	"github.com/taqyim-dev/taqyim-api/internal/models"
	"github.com/taqyim-dev/taqyim-api/internal/routeguard"
	"github.com/taqyim-dev/taqyim-api/internal/service"
	"github.com/taqyim-dev/taqyim-api/internal/store"
	"github.com/taqyim-dev/taqyim-api/pkg/config"
	"github.com/taqyim-dev/taqyim-api/pkg/logger"
	corsmiddleware "github.com/taqyim-dev/taqyim-api/pkg/middleware/cors"
	reqidmiddleware "github.com/taqyim-dev/taqyim-api/pkg/middleware/requestid"
	"github.com/taqyim-dev/taqyim-api/pkg/response"
)

// Deps carries everything the router wires together.
type Deps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    *store.Store
	Identity *identity.Service
	Workflow *evaluation.Manager
	Metrics  *service.MetricsService
	Exports  *service.ExportService
	Validate *validator.Validate
}

// New builds the engine with the full route table.
func New(deps Deps) *gin.Engine {
	cfg := deps.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if !deps.Store.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "initializing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authn := middleware.Authenticate(deps.Identity, deps.Store)

	// Root lands every visitor on their role home.
	r.GET("/", authn, func(c *gin.Context) {
		c.Redirect(http.StatusFound, routeguard.Home(handler.CurrentUser(c)))
	})

	authHandler := handler.NewAuthHandler(deps.Identity, deps.Store)
	userHandler := handler.NewUserHandler(deps.Store, deps.Validate)
	studentHandler := handler.NewStudentHandler(deps.Store, deps.Validate)
	subjectHandler := handler.NewSubjectHandler(deps.Store, deps.Validate)
	classroomHandler := handler.NewClassroomHandler(deps.Store, deps.Validate)
	reportHandler := handler.NewReportHandler(deps.Store, deps.Exports)
	teacherHandler := handler.NewTeacherHandler(deps.Store)
	evaluationHandler := handler.NewEvaluationHandler(deps.Workflow)

	api := r.Group(cfg.APIPrefix)
	api.Use(authn)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", authHandler.Me)

	// Signed download links are self-authorizing.
	api.GET("/export/:token", reportHandler.Download)

	admin := api.Group("/admin", middleware.RequireRole(deps.Store, models.RoleAdmin))
	{
		admin.GET("/users", userHandler.List)
		admin.POST("/users", userHandler.Create)
		admin.PUT("/users/:id", userHandler.Update)
		admin.DELETE("/users/:id", userHandler.Delete)

		admin.GET("/students", studentHandler.List)
		admin.POST("/students", studentHandler.Create)
		admin.PUT("/students/:id", studentHandler.Update)
		admin.DELETE("/students/:id", studentHandler.Delete)

		admin.GET("/subjects", subjectHandler.List)
		admin.POST("/subjects", subjectHandler.Create)
		admin.PUT("/subjects/:id", subjectHandler.Update)
		admin.DELETE("/subjects/:id", subjectHandler.Delete)

		admin.GET("/classrooms", classroomHandler.List)
		admin.POST("/classrooms", classroomHandler.Create)
		admin.PUT("/classrooms/:id", classroomHandler.Update)
		admin.DELETE("/classrooms/:id", classroomHandler.Delete)

		admin.GET("/reports", reportHandler.List)
		admin.POST("/reports/exports", reportHandler.CreateExport)
		admin.GET("/reports/exports", reportHandler.ListExports)

		admin.GET("/metrics", func(c *gin.Context) {
			response.JSON(c, http.StatusOK, deps.Metrics.Snapshot(), nil)
		})
	}

	teacher := api.Group("/teacher", middleware.RequireRole(deps.Store, models.RoleTeacher))
	{
		teacher.GET("/students", teacherHandler.Students)
		teacher.GET("/subject", teacherHandler.Subject)

		teacher.POST("/students/:id/evaluation", evaluationHandler.Open)
		teacher.GET("/students/:id/evaluation", evaluationHandler.Get)
		teacher.PUT("/students/:id/evaluation/level", evaluationHandler.Rate)
		teacher.POST("/students/:id/evaluation/message", evaluationHandler.Generate)
		teacher.POST("/students/:id/evaluation/send", evaluationHandler.Send)
		teacher.DELETE("/students/:id/evaluation", evaluationHandler.Close)
	}

	return r
}
