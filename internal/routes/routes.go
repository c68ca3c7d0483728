package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"sheetdesk/internal/authz"
	"sheetdesk/internal/handlers"
	"sheetdesk/internal/middleware"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Pages       *handlers.PagesHandler
	Checklist   *handlers.ChecklistHandler
	Projects    *handlers.ProjectHandler
	Assign      *handlers.AssignHandler
	Realtime    *handlers.RealtimeHandler
	Submissions *handlers.SubmissionsHandler
}

func SetupRoutes(r *gin.Engine, tokens middleware.TokenParser, h Handlers) *gin.Engine {
	r.Use(middleware.RequestID())

	// ---- public
	r.GET("/healthz", handlers.Health)
	r.POST("/login", h.Auth.Login)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ---- protected
	r.Use(middleware.AuthMiddleware(tokens))
	r.Use(middleware.ReadOnlyGuard())

	r.GET("/attendance", h.Pages.Attendance)
	r.GET("/score", h.Pages.Score)
	r.GET("/score/report.pdf", h.Pages.ScoreReport)
	r.GET("/quick-tasks", h.Pages.QuickTasks)

	checklist := r.Group("/checklist")
	{
		checklist.GET("", h.Checklist.Pending)
		checklist.GET("/history", h.Checklist.History)
		checklist.POST("/submit", h.Checklist.Submit)
	}

	projects := r.Group("/projects")
	{
		projects.GET("", h.Projects.Dashboard)
		projects.GET("/report.pdf", h.Projects.Report)
	}

	// ASSIGN (admin)
	assign := r.Group("/assign", middleware.RequireRoles(authz.RoleAdmin))
	{
		assign.GET("/options", h.Assign.Options)
		assign.POST("/preview", h.Assign.Preview)
		assign.POST("/submit", h.Assign.Submit)
	}

	r.GET("/submissions", middleware.RequireRoles(authz.RoleAdmin), h.Submissions.List)

	r.GET("/ws/sheets", h.Realtime.Subscribe)

	return r
}
