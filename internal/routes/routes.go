package routes

import (
	"github.com/damoang/tourlog-backend/internal/handler"
	"github.com/damoang/tourlog-backend/internal/middleware"
	"github.com/damoang/tourlog-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// Handlers 라우트에 연결되는 핸들러 묶음
type Handlers struct {
	Content   *handler.ContentHandler
	Version   *handler.VersionHandler
	Preview   *handler.PreviewHandler
	Scheduler *handler.SchedulerHandler
	Term      *handler.TermHandler
	Health    *handler.HealthHandler
}

// Setup configures all API routes
func Setup(router *gin.Engine, h Handlers, jwtManager *jwt.Manager) {
	auth := middleware.JWTAuth(jwtManager)
	admin := middleware.RequireAdmin()

	router.GET("/health", h.Health.Health)

	api := router.Group("/api/v1")

	// 공개 조회 (미발행 글은 관리자 또는 preview_token)
	items := api.Group("/items")
	items.GET("/:id", middleware.OptionalJWTAuth(jwtManager), h.Content.GetItem)
	items.GET("/:id/versions", auth, admin, h.Version.ListVersions)
	items.POST("/:id/versions/:versionId/restore", auth, h.Version.RestoreVersion)

	api.GET("/terms/:kind", h.Term.ListTerms)

	preview := api.Group("/preview")
	preview.POST("/issue", auth, admin, h.Preview.IssuePreview)
	preview.POST("/verify", middleware.OptionalJWTAuth(jwtManager), h.Preview.VerifyPreview)

	// 편집/운영 (관리자)
	adminGroup := api.Group("/admin", auth, admin)
	adminGroup.GET("/items", h.Content.ListItems)
	adminGroup.POST("/items", h.Content.CreateItem)
	adminGroup.PATCH("/items/:id", h.Content.UpdateItem)
	adminGroup.POST("/items/:id/schedule", h.Content.ScheduleItem)
	adminGroup.POST("/items/:id/status", h.Content.TransitionItem)
	adminGroup.PUT("/terms/:kind/:id", h.Term.RenameTerm)
	adminGroup.GET("/scheduler/tasks", h.Scheduler.ListTasks)
	adminGroup.POST("/scheduler/:interval/run", h.Scheduler.RunInterval)
}
