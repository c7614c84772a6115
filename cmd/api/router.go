package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"connect-digitals-backend/internal/domains/user"
	"connect-digitals-backend/internal/shared/middleware"
	"connect-digitals-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	authenticate := middleware.Authenticate(c.JWTManager, c.UserRepo)
	optionalAuth := middleware.OptionalAuthenticate(c.JWTManager, c.UserRepo)
	requireAdmin := middleware.RequireRoles(user.RoleAdmin)

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(api, c, authenticate)
		setupBlogRoutes(api, c, authenticate, optionalAuth)
		setupContactRoutes(api, c)
		setupUploadRoutes(api, c, authenticate, requireAdmin)
		setupAdminRoutes(api, c, authenticate, requireAdmin)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(api *gin.RouterGroup, c *container.Container, authenticate gin.HandlerFunc) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
		auth.GET("/verify-email", c.UserHandler.VerifyEmail)
		auth.POST("/forgot-password", c.UserHandler.ForgotPassword)
		auth.POST("/reset-password", c.UserHandler.ResetPassword)
		auth.PUT("/change-password", authenticate, c.UserHandler.ChangePassword)

		auth.GET("/me", authenticate, c.UserHandler.Me)
		auth.PUT("/profile", authenticate, c.UserHandler.UpdateProfile)
	}
}

// ========================================
// BLOG ROUTES
// ========================================
func setupBlogRoutes(api *gin.RouterGroup, c *container.Container, authenticate, optionalAuth gin.HandlerFunc) {
	blog := api.Group("/blog")
	{
		// Public reads; identity attached when a valid token is sent
		blog.GET("", optionalAuth, c.BlogHandler.ListPublished)
		blog.GET("/featured", c.BlogHandler.GetFeatured)
		blog.GET("/categories", c.BlogHandler.GetCategories)
		blog.GET("/:slug", c.BlogHandler.GetBySlug)

		// Public comment submission
		blog.POST("/:id/comments", c.BlogHandler.AddComment)

		// Content mutations require a logged-in author
		blog.POST("", authenticate, c.BlogHandler.CreatePost)
		blog.PUT("/:id", authenticate, c.BlogHandler.UpdatePost)
		blog.DELETE("/:id", authenticate, c.BlogHandler.DeletePost)
	}
}

// ========================================
// CONTACT ROUTES
// ========================================
func setupContactRoutes(api *gin.RouterGroup, c *container.Container) {
	api.POST("/contact", c.ContactHandler.SubmitMessage)
}

// ========================================
// UPLOAD ROUTES
// ========================================
func setupUploadRoutes(api *gin.RouterGroup, c *container.Container, authenticate, requireAdmin gin.HandlerFunc) {
	uploads := api.Group("/upload")
	uploads.Use(authenticate)
	{
		uploads.POST("/image", c.UploadHandler.UploadImage)
		uploads.POST("/images", c.UploadHandler.UploadImages)
		uploads.POST("/avatar", c.UploadHandler.UploadAvatar)
		uploads.DELETE("/image/:id", c.UploadHandler.DeleteImage)
		uploads.GET("/stats", requireAdmin, c.UploadHandler.Stats)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
// Editors and authors manage content through /blog with ownership
// checks; everything under /admin is reserved for admins.
func setupAdminRoutes(api *gin.RouterGroup, c *container.Container, authenticate, requireAdmin gin.HandlerFunc) {
	admin := api.Group("/admin")
	admin.Use(authenticate, requireAdmin)
	{
		admin.GET("/dashboard", c.DashboardHandler.GetDashboard)

		posts := admin.Group("/posts")
		{
			posts.GET("", c.BlogHandler.AdminListPosts)
			posts.GET("/export", c.BlogHandler.ExportPosts)
			posts.GET("/:id", c.BlogHandler.AdminGetPost)
			posts.PUT("/:id/status", c.BlogHandler.UpdateStatus)
			posts.PUT("/:id/featured", c.BlogHandler.UpdateFeatured)
		}

		comments := admin.Group("/comments")
		{
			comments.GET("", c.BlogHandler.ListComments)
			comments.PUT("/:id", c.BlogHandler.ModerateComment)
			comments.DELETE("/:id", c.BlogHandler.DeleteComment)
		}

		users := admin.Group("/users")
		{
			users.GET("", c.UserHandler.ListUsers)
			users.GET("/:id", c.UserHandler.GetUser)
			users.PUT("/:id/role", c.UserHandler.UpdateUserRole)
			users.PUT("/:id/status", c.UserHandler.UpdateUserStatus)
		}
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
