package routes

import (
	"net/http"
	"time"

	"agency-cms/config"
	"agency-cms/handlers"
	"agency-cms/helper"
	"agency-cms/mailer"
	"agency-cms/metrics"
	"agency-cms/middleware"
	"agency-cms/models"
	"agency-cms/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps holds everything the HTTP layer needs.
type Deps struct {
	Config  *config.Config
	Log     *zap.Logger
	Helper  *helper.HTTPHelper
	Cookies *helper.Cookies

	AuthService       services.AuthService
	NewsletterService services.NewsletterService
	AdminService      services.AdminService
	UserService       services.UserService
	ContactService    services.ContactService
	VisitService      services.VisitService

	Renderer *mailer.Renderer
	Images   handlers.ImageStore
}

func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config

	authHandler := handlers.NewAuthHandler(d.AuthService, d.Cookies, d.Helper)
	newsletterHandler := handlers.NewNewsletterHandler(d.NewsletterService, d.Renderer, d.Images, d.Log, d.Helper)
	adminHandler := handlers.NewAdminHandler(d.AdminService, d.Helper)
	userHandler := handlers.NewUserHandler(d.UserService, d.Images, d.Log, d.Helper)
	contactHandler := handlers.NewContactHandler(d.ContactService, d.Helper)

	router := gin.New()
	router.Use(
		middleware.RequestLogger(d.Log),
		middleware.ErrorHandler(d.Helper, d.Log, cfg.ExposeInternalErrors),
		middleware.Recovery(d.Log),
		cors.New(corsConfig(cfg.FrontendURL)),
	)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", metrics.Handler())
	router.Static("/uploads", cfg.UploadDir)

	limit := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware()
	authenticate := middleware.Authenticate(d.AuthService, d.Cookies)
	anyAdmin := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)
	can := middleware.RequirePermission

	v1 := router.Group("/api/v1")
	{
		public := v1.Group("/public")
		public.Use(middleware.DailyVisit(d.VisitService, d.Cookies, d.Log))
		{
			public.POST("/auth/login", limit, authHandler.Login)
			public.POST("/contacts", limit, contactHandler.CreateContact)

			newsletters := public.Group("/newsletters")
			{
				newsletters.POST("/join", limit, newsletterHandler.Join)
				newsletters.GET("/activate", newsletterHandler.Activate)
				newsletters.GET("/thanks", newsletterHandler.Thanks)
				newsletters.DELETE("/unsubscribe", newsletterHandler.Unsubscribe)
			}
		}

		users := v1.Group("/users", authenticate, anyAdmin)
		{
			users.GET("/profiles", userHandler.GetProfile)
			users.PATCH("/profiles/personal-info", userHandler.UpdatePersonalInfo)
			users.PATCH("/profiles/password", userHandler.UpdatePassword)
			users.PATCH("/profiles/photo", userHandler.UpdatePhoto)
			users.PATCH("/profiles/address", userHandler.UpdateAddress)
			users.POST("/logout", authHandler.Logout)
		}

		admin := v1.Group("/admin", authenticate, anyAdmin)
		{
			newsletters := admin.Group("/newsletters")
			{
				newsletters.GET("", can(models.PermReadNewsletter), newsletterHandler.GetNewsletters)
				newsletters.GET("/:newsletterId", can(models.PermReadNewsletter), newsletterHandler.GetNewsletter)
				newsletters.POST("", can(models.PermWriteNewsletter), newsletterHandler.CreateNewsletter)
				newsletters.PATCH("/:newsletterId", can(models.PermUpdateNewsletter), newsletterHandler.UpdateNewsletter)
				newsletters.DELETE("/:newsletterId", can(models.PermDeleteNewsletter), newsletterHandler.DeleteNewsletter)
			}

			admin.GET("/contacts", can(models.PermReadContact), contactHandler.GetContacts)
		}

		superAdmin := v1.Group("/super-admin", authenticate, middleware.RequireRole(models.RoleSuperAdmin))
		{
			admins := superAdmin.Group("/admins")
			{
				admins.POST("/register", can(models.PermWriteAdmin), adminHandler.Register)
				admins.GET("", can(models.PermReadAdmin), adminHandler.GetAdmins)
				admins.GET("/:adminId", can(models.PermReadAdmin), adminHandler.GetAdmin)
				admins.PATCH("/:adminId/permissions", can(models.PermUpdateAdmin), adminHandler.UpdatePermissions)
				admins.DELETE("/:adminId", can(models.PermDeleteAdmin), adminHandler.DeleteAdmin)
			}
		}
	}

	return router
}

// corsConfig allows the frontend origin with credentials so the session cookie is sent.
func corsConfig(origin string) cors.Config {
	return cors.Config{
		AllowOrigins:     []string{origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
