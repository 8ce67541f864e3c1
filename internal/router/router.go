package router

import (
	"net/http"

	"github.com/carauction/carauction-backend/config"
	"github.com/carauction/carauction-backend/internal/app/controller"
	"github.com/carauction/carauction-backend/internal/app/model"
	"github.com/carauction/carauction-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController *controller.AuthController
	postController *controller.PostController
	feedController *controller.FeedController
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	postController *controller.PostController,
	feedController *controller.FeedController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController: authController,
		postController: postController,
		feedController: feedController,
		authMiddleware: authMiddleware,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Car auction API is running",
		})
	})

	// Uploaded images on the local backend
	if r.config.Upload.Backend != config.UploadBackendS3 {
		router.Static("/images", r.config.Upload.Dir)
	}

	authenticated := r.authMiddleware.Authenticate()
	customerOnly := r.authMiddleware.RequireRole(model.RoleCustomer)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", r.authController.Signup)
			auth.POST("/login", r.authController.Login)
			auth.POST("/admin-login", r.authController.AdminLogin)
			auth.POST("/signout", authenticated, r.authController.Signout)
			auth.GET("/me", authenticated, customerOnly, r.authController.Me)
			auth.PATCH("/send-verification-code", r.authController.SendVerificationCode)
			auth.PATCH("/verify-verification-code", r.authController.VerifyVerificationCode)
			auth.PATCH("/change-password", authenticated, customerOnly, r.authController.ChangePassword)
			auth.PATCH("/send-forgot-password-code", r.authController.SendForgotPasswordCode)
			auth.PATCH("/verify-forgot-password-code", r.authController.VerifyForgotPasswordCode)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", r.postController.ListPosts)
			posts.GET("/feed", r.authMiddleware.OptionalAuthenticate(), r.feedController.Subscribe)
			posts.GET("/:id", r.postController.GetPost)
			posts.POST("", authenticated, customerOnly, r.postController.CreatePost)
			posts.POST("/images", authenticated, r.postController.UploadImage)
			posts.PUT("/:id",
				authenticated,
				r.authMiddleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
				r.postController.UpdatePost,
			)
			posts.DELETE("/:id",
				authenticated,
				r.authMiddleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
				r.postController.DeletePost,
			)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
