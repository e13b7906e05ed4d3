package app

import (
	_ "formflow_backend/docs"
	"formflow_backend/internal/config"
	"formflow_backend/internal/middleware"
	"formflow_backend/internal/model"
	"formflow_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 公共提交入口：发布态表单接收填写
		public.POST("/forms/:id/submit", c.form.Submit)
	}

	// 编辑端路由：需要登录，查看/删除授权在控制器里按页面归属判定
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Editor))
	{
		authGroup.GET("/forms", c.form.ListPages)
		authGroup.POST("/forms", c.form.CreatePage)
		authGroup.GET("/forms/:id", c.form.GetPage)
		authGroup.POST("/forms/:id/fields", c.form.AddField)
		authGroup.PUT("/forms/:id/fields/:fid", c.form.UpdateField)
		authGroup.DELETE("/forms/:id/fields/:fid", c.form.DeleteField)

		authGroup.GET("/forms/:id/submissions", c.submission.ListSubmissions)
		authGroup.GET("/forms/:id/submissions/:sid/delete", c.submission.ConfirmDelete)
		authGroup.POST("/forms/:id/submissions/:sid/delete", c.submission.DeleteSubmission)
	}
}
