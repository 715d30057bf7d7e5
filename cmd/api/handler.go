package api

import (
	appDelivery "jobtrail-backend/internal/application/delivery"
	appUsecasePkg "jobtrail-backend/internal/application/usecase"
	authDelivery "jobtrail-backend/internal/auth/delivery"
	authRepo "jobtrail-backend/internal/auth/repository"
	authUsecasePkg "jobtrail-backend/internal/auth/usecase"
	mailDelivery "jobtrail-backend/internal/mailsync/delivery"
	mailUsecasePkg "jobtrail-backend/internal/mailsync/usecase"
	"jobtrail-backend/pkg/config"
	"jobtrail-backend/pkg/sse"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase authUsecasePkg.AuthUsecase
	sseManager  *sse.Manager
	config      *config.Config
	authHandler *authDelivery.AuthHandler
	appHandler  *appDelivery.ApplicationHandler
	mailHandler *mailDelivery.MailSyncHandler
}

func NewHandler(
	authUc authUsecasePkg.AuthUsecase,
	appUc appUsecasePkg.ApplicationUsecase,
	syncUc mailUsecasePkg.SyncUsecase,
	fcmRepo authRepo.FCMTokenRepository,
	sseManager *sse.Manager,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authUsecase: authUc,
		sseManager:  sseManager,
		config:      cfg,
		authHandler: authDelivery.NewAuthHandler(authUc, fcmRepo),
		appHandler:  appDelivery.NewApplicationHandler(appUc),
		mailHandler: mailDelivery.NewMailSyncHandler(syncUc),
	}
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Setup routes
	SetupRoutes(r, h.authUsecase, h.sseManager, h.authHandler, h.appHandler, h.mailHandler)

	return r.Run(addr)
}
