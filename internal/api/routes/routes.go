package routes

import (
	"juba-homez/internal/api/handlers"
	"juba-homez/internal/api/middleware"
	"juba-homez/internal/api/respond"
	"juba-homez/internal/authz"
	"juba-homez/internal/config"
	"juba-homez/internal/obs"
	"juba-homez/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const uploadsPrefix = "/uploads"

// multipartOverhead covers form boundaries and headers on top of the files.
const multipartOverhead = 1 << 20

// SetupRoutes wires services, handlers and middleware onto r. publisher may
// be nil, in which case notifications are only stored.
func SetupRoutes(r *gin.Engine, cfg *config.Config, db *gorm.DB, publisher services.EventPublisher) {
	// Initialize services
	tokens := services.NewTokenService(cfg)
	audit := services.NewAuditService(db)
	notifications := services.NewNotificationService(db, publisher)
	authService := services.NewAuthService(db, cfg, tokens, audit)
	userService := services.NewUserService(db, audit)
	propertyService := services.NewPropertyService(db, audit)
	storage := services.NewLocalStorage(cfg.Paths.Uploads, uploadsPrefix, cfg.MaxUploadBytes())
	mediaService := services.NewMediaService(db, storage, audit, cfg.Uploads.MaxFiles)
	inquiryService := services.NewInquiryService(db, audit, notifications)
	viewingService := services.NewViewingService(db, audit, notifications)
	photoJobService := services.NewPhotoJobService(db, audit, notifications)
	analyticsService := services.NewAnalyticsService(db)
	announcementService := services.NewAnnouncementService(db, audit, notifications)
	approvalService := services.NewApprovalService(db, audit, notifications)
	loaders := services.NewLoaders(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	mediaHandler := handlers.NewMediaHandler(mediaService, loaders)
	inquiryHandler := handlers.NewInquiryHandler(inquiryService)
	viewingHandler := handlers.NewViewingHandler(viewingService)
	photoJobHandler := handlers.NewPhotoJobHandler(photoJobService)
	notificationHandler := handlers.NewNotificationHandler(notifications)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	adminHandler := handlers.NewAdminHandler(approvalService, userService, propertyService, mediaService, audit, announcementService)
	healthHandler := handlers.NewHealthHandler(db)

	auth := middleware.NewAuthenticator(tokens, userService)
	required := auth.Required()
	optional := auth.Optional()

	// Middleware
	obs.Init()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestContext())
	r.Use(obs.Instrument())
	r.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	r.Use(middleware.RateLimit(cfg.Security.RateLimit))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes, cfg.MaxUploadBytes()*int64(cfg.Uploads.MaxFiles)+multipartOverhead))
	r.Use(middleware.ErrorHandler())

	r.GET("/health", healthHandler.GetHealth)
	r.GET("/metrics", gin.WrapH(obs.Handler()))
	r.Static(uploadsPrefix, cfg.Paths.Uploads)
	r.NoRoute(func(c *gin.Context) {
		c.Error(respond.NotFound("Route not found"))
	})

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler.GetHealth)

	// Auth routes (public)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/password/forgot", authHandler.ForgotPassword)
		authGroup.POST("/password/reset", authHandler.ResetPassword)
	}

	users := api.Group("/users")
	{
		users.GET("/me", required, userHandler.GetMe)
		users.PATCH("/me", required, middleware.Require(authz.ProfileUpdate), userHandler.UpdateMe)
		users.GET("/:id/public", userHandler.GetPublicProfile)
	}

	properties := api.Group("/properties")
	{
		properties.GET("", optional, propertyHandler.ListProperties)
		properties.GET("/areas", propertyHandler.GetAreas)
		properties.GET("/:id", optional, propertyHandler.GetProperty)
		properties.POST("", required, middleware.Require(authz.PropertyCreate), propertyHandler.CreateProperty)
		properties.PATCH("/:id", required,
			middleware.RequireResource(authz.PropertyUpdate, loaders.Property, "id"), propertyHandler.UpdateProperty)
		properties.PATCH("/:id/status", required,
			middleware.RequireResource(authz.PropertyStatus, loaders.Property, "id"), propertyHandler.UpdateStatus)
		properties.DELETE("/:id", required,
			middleware.RequireResource(authz.PropertyDelete, loaders.Property, "id"), propertyHandler.DeleteProperty)

		properties.GET("/:id/media", optional, mediaHandler.ListPropertyMedia)
		properties.POST("/:id/media", required,
			middleware.RequireResource(authz.MediaUpload, loaders.PropertyWithCrew, "id"), mediaHandler.UploadMedia)

		properties.POST("/:id/inquiries", optional, inquiryHandler.CreateInquiry)
	}

	api.DELETE("/media/:id", required,
		middleware.RequireResource(authz.MediaDelete, loaders.Media, "id"), mediaHandler.DeleteMedia)

	inquiries := api.Group("/inquiries")
	{
		inquiries.POST("", optional, inquiryHandler.CreateInquiryFromBody)
		inquiries.GET("", required, middleware.Require(authz.InquiryList), inquiryHandler.ListInquiries)
		inquiries.GET("/:id", required,
			middleware.RequireResource(authz.InquiryRead, loaders.Inquiry, "id"), inquiryHandler.GetInquiry)
		inquiries.POST("/:id/replies", required,
			middleware.RequireResource(authz.InquiryReply, loaders.Inquiry, "id"), inquiryHandler.ReplyInquiry)
	}

	viewings := api.Group("/viewings")
	{
		viewings.POST("/properties/:propertyId/requests", optional, viewingHandler.CreateRequest)
		viewings.GET("/requests", required, middleware.Require(authz.ViewingRequestList), viewingHandler.ListRequests)
		// ownership of the listing in the body is checked by the service
		viewings.POST("", required, viewingHandler.Schedule)
		viewings.GET("", required, middleware.Require(authz.ViewingList), viewingHandler.ListViewings)
		viewings.PATCH("/:id/reschedule", required,
			middleware.RequireResource(authz.ViewingManage, loaders.Viewing, "id"), viewingHandler.Reschedule)
		viewings.PATCH("/:id/cancel", required,
			middleware.RequireResource(authz.ViewingManage, loaders.Viewing, "id"), viewingHandler.Cancel)
	}

	photoJobs := api.Group("/photo-jobs", required)
	{
		photoJobs.POST("/properties/:propertyId",
			middleware.RequireResource(authz.PhotoJobCreate, loaders.Property, "propertyId"), photoJobHandler.CreateJob)
		photoJobs.GET("/open", middleware.Require(authz.PhotoJobBrowse), photoJobHandler.ListOpenJobs)
		photoJobs.GET("", middleware.Require(authz.PhotoJobList), photoJobHandler.ListJobs)
		photoJobs.PATCH("/:id/accept", middleware.Require(authz.PhotoJobAccept),
			photoJobHandler.Transition(services.JobAccept))
		photoJobs.PATCH("/:id/reject", middleware.RequireResource(authz.PhotoJobAdvance, loaders.PhotoJob, "id"),
			photoJobHandler.Transition(services.JobReject))
		photoJobs.PATCH("/:id/schedule", middleware.RequireResource(authz.PhotoJobAdvance, loaders.PhotoJob, "id"),
			photoJobHandler.Transition(services.JobSchedule))
		photoJobs.PATCH("/:id/complete", middleware.RequireResource(authz.PhotoJobAdvance, loaders.PhotoJob, "id"),
			photoJobHandler.Transition(services.JobComplete))
		photoJobs.GET("/:id/messages", middleware.RequireResource(authz.PhotoJobMessage, loaders.PhotoJob, "id"),
			photoJobHandler.ListMessages)
		photoJobs.POST("/:id/messages", middleware.RequireResource(authz.PhotoJobMessage, loaders.PhotoJob, "id"),
			photoJobHandler.SendMessage)
	}

	notificationRoutes := api.Group("/notifications", required, middleware.Require(authz.Notifications))
	{
		notificationRoutes.GET("", notificationHandler.ListNotifications)
		notificationRoutes.PATCH("/read-all", notificationHandler.MarkAllRead)
		notificationRoutes.PATCH("/:id/read", notificationHandler.MarkRead)
	}

	analytics := api.Group("/analytics")
	{
		analytics.POST("/events", optional, analyticsHandler.TrackEvent)
		analytics.GET("/my-properties", required, middleware.Require(authz.MyAnalytics), analyticsHandler.MyProperties)
		analytics.GET("/properties/:id", required,
			middleware.RequireResource(authz.PropertyAnalytics, loaders.Property, "id"), analyticsHandler.PropertyReport)
	}

	// Admin routes
	admin := api.Group("/admin", required, middleware.Require(authz.ModerationRead))
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.PATCH("/users/:id/approve", middleware.Require(authz.Moderate), adminHandler.Moderate(services.KindUser, services.Approve))
		admin.PATCH("/users/:id/reject", middleware.Require(authz.Moderate), adminHandler.Moderate(services.KindUser, services.Reject))
		admin.PATCH("/users/:id/suspend", middleware.Require(authz.Moderate), adminHandler.Moderate(services.KindUser, services.Suspend))

		admin.GET("/properties", adminHandler.ListProperties)
		admin.PATCH("/properties/:id/approve", middleware.Require(authz.Moderate), adminHandler.Moderate(services.KindProperty, services.Approve))
		admin.PATCH("/properties/:id/reject", middleware.Require(authz.Moderate), adminHandler.Moderate(services.KindProperty, services.Reject))

		admin.GET("/media", adminHandler.ListMedia)
		admin.PATCH("/media/:id/approve", middleware.Require(authz.Moderate), adminHandler.Moderate(services.KindMedia, services.Approve))
		admin.PATCH("/media/:id/reject", middleware.Require(authz.Moderate), adminHandler.Moderate(services.KindMedia, services.Reject))

		admin.GET("/audit-logs", middleware.Require(authz.AuditRead), adminHandler.ListAuditLogs)
		admin.GET("/announcements", adminHandler.ListAnnouncements)
		admin.POST("/announcements", middleware.Require(authz.Announce), adminHandler.CreateAnnouncement)
	}
}
