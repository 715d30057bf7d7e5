package api

import (
	"net/http"

	appDelivery "jobtrail-backend/internal/application/delivery"
	authDelivery "jobtrail-backend/internal/auth/delivery"
	authUsecase "jobtrail-backend/internal/auth/usecase"
	mailDelivery "jobtrail-backend/internal/mailsync/delivery"
	"jobtrail-backend/pkg/sse"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	authUc authUsecase.AuthUsecase,
	sseManager *sse.Manager,
	authHandler *authDelivery.AuthHandler,
	appHandler *appDelivery.ApplicationHandler,
	mailHandler *mailDelivery.MailSyncHandler,
) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// SSE endpoint
		api.GET("/events", authDelivery.AuthMiddleware(authUc), func(c *gin.Context) {
			userID := c.GetString("userID")
			sseManager.ServeHTTP(c, userID)
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/google", authHandler.GoogleSignIn)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", authDelivery.AuthMiddleware(authUc), authHandler.Me)
			auth.PUT("/me", authDelivery.AuthMiddleware(authUc), authHandler.UpdateProfile)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/logout-all", authDelivery.AuthMiddleware(authUc), authHandler.LogoutAll)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(authDelivery.AuthMiddleware(authUc))
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", authHandler.UnregisterFCMToken)
		}

		// Application routes (protected)
		applications := api.Group("/applications")
		applications.Use(authDelivery.AuthMiddleware(authUc))
		{
			applications.GET("", appHandler.GetApplications)
			applications.POST("", appHandler.CreateApplication)
			applications.GET("/:id", appHandler.GetApplicationByID)
			applications.PUT("/:id", appHandler.UpdateApplication)
			applications.DELETE("/:id", appHandler.DeleteApplication)
			applications.PATCH("/:id/status", appHandler.UpdateApplicationStatus)
			applications.GET("/:id/documents", appHandler.GetDocuments)
			applications.POST("/:id/documents", appHandler.AddDocument)
			applications.GET("/:id/interviews", appHandler.GetInterviewEvents)
			applications.POST("/:id/interviews", appHandler.AddInterviewEvent)
		}

		// Document and interview deletion (protected)
		documents := api.Group("/documents")
		documents.Use(authDelivery.AuthMiddleware(authUc))
		{
			documents.DELETE("/:id", appHandler.DeleteDocument)
		}
		interviews := api.Group("/interviews")
		interviews.Use(authDelivery.AuthMiddleware(authUc))
		{
			interviews.DELETE("/:id", appHandler.DeleteInterviewEvent)
		}

		// Mailbox integration routes (protected)
		integrations := api.Group("/integrations")
		integrations.Use(authDelivery.AuthMiddleware(authUc))
		{
			integrations.GET("", mailHandler.GetIntegrations)
			integrations.GET("/:provider/authorize", mailHandler.Authorize)
			integrations.POST("/:provider/callback", mailHandler.Callback)
			integrations.POST("/imap", mailHandler.ConnectIMAP)
			integrations.DELETE("/:id", mailHandler.DisconnectIntegration)
		}

		// Sync routes (protected)
		sync := api.Group("/sync")
		sync.Use(authDelivery.AuthMiddleware(authUc))
		{
			sync.POST("", mailHandler.Sync)
			sync.POST("/match", mailHandler.Match)
		}

		// Tracked message routes (protected)
		messages := api.Group("/messages")
		messages.Use(authDelivery.AuthMiddleware(authUc))
		{
			messages.GET("", mailHandler.GetMessages)
		}
	}
}
