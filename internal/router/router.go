package router

import (
	"net/http"

	"showcase/internal/handlers"
	"showcase/internal/middleware"
	"showcase/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps 路由依赖的服务
type Deps struct {
	Auth          *middleware.Authenticator
	Projects      *services.ProjectService
	Votes         *services.VoteService
	Comments      *services.CommentService
	Notifications *services.NotificationService
	Moderation    *services.ModerationService
	Uploads       *services.UploadService
	Log           *zap.Logger
}

// New 创建 gin 引擎并注册中间件和路由
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Log))
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	projectHandler := handlers.NewProjectHandler(d.Projects, d.Log)
	voteHandler := handlers.NewVoteHandler(d.Votes, d.Log)
	commentHandler := handlers.NewCommentHandler(d.Comments, d.Log)
	notificationHandler := handlers.NewNotificationHandler(d.Notifications, d.Log)
	adminHandler := handlers.NewAdminHandler(d.Projects, d.Moderation, d.Log)
	userHandler := handlers.NewUserHandler()
	uploadHandler := handlers.NewUploadHandler(d.Uploads, d.Log)

	// 健康检查与监控
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/")
	api.Use(d.Auth.LoadUser())

	// 公开路由
	api.GET("/projects", projectHandler.List)
	api.GET("/projects/featured", projectHandler.Featured)
	api.GET("/projects/:id", projectHandler.Get)
	api.GET("/projects/:id/comments", commentHandler.List)

	// 需要登录的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", userHandler.Me)
		authorized.GET("/me/projects", projectHandler.Mine)

		authorized.POST("/projects", projectHandler.Create)
		authorized.PUT("/projects/:id", projectHandler.Update)
		authorized.DELETE("/projects/:id", projectHandler.Delete)
		authorized.POST("/projects/:id/vote", voteHandler.Vote)
		authorized.POST("/projects/:id/comments", commentHandler.Create)
		authorized.DELETE("/comments/:id", commentHandler.Delete)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.PATCH("/notifications/:id/read", notificationHandler.Read)
		authorized.POST("/notifications/read-all", notificationHandler.ReadAll)

		authorized.POST("/upload/presigned", uploadHandler.Presign)

		// 审核状态先查项目再查角色，所以不放在 AdminRequired 分组里
		authorized.PUT("/admin/projects/:id/status", adminHandler.SetStatus)
	}

	admin := authorized.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/projects", adminHandler.Projects)
		admin.DELETE("/projects/:id", adminHandler.DeleteProject)
	}
}
