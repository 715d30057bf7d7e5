package delivery

import (
	"net/http"
	"strconv"

	"jobtrail-backend/internal/mailsync/domain"
	"jobtrail-backend/internal/mailsync/usecase"

	"github.com/gin-gonic/gin"
)

// MailSyncHandler handles mailbox integration and sync HTTP requests
type MailSyncHandler struct {
	syncUsecase usecase.SyncUsecase
}

// NewMailSyncHandler creates a new MailSyncHandler
func NewMailSyncHandler(syncUsecase usecase.SyncUsecase) *MailSyncHandler {
	return &MailSyncHandler{
		syncUsecase: syncUsecase,
	}
}

// GetIntegrations returns the user's active mailbox integrations
// GET /api/integrations
func (h *MailSyncHandler) GetIntegrations(c *gin.Context) {
	userID := c.GetString("userID")

	integrations, err := h.syncUsecase.GetIntegrations(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if integrations == nil {
		integrations = []*domain.MailboxIntegration{}
	}

	c.JSON(http.StatusOK, gin.H{"integrations": integrations})
}

// Authorize starts the OAuth flow for a provider
// GET /api/integrations/:provider/authorize
func (h *MailSyncHandler) Authorize(c *gin.Context) {
	provider := c.Param("provider")

	url, state, err := h.syncUsecase.BeginAuthorization(provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":   url,
		"state": state,
	})
}

// Callback finishes the OAuth flow
// POST /api/integrations/:provider/callback
func (h *MailSyncHandler) Callback(c *gin.Context) {
	userID := c.GetString("userID")
	provider := c.Param("provider")

	var req struct {
		Code  string `json:"code" binding:"required"`
		State string `json:"state" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	integration, err := h.syncUsecase.CompleteAuthorization(c.Request.Context(), userID, provider, req.State, req.Code)
	if err != nil {
		if err.Error() == "invalid or expired state" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired state"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, integration)
}

// ConnectIMAP connects an IMAP mailbox with an app password
// POST /api/integrations/imap
func (h *MailSyncHandler) ConnectIMAP(c *gin.Context) {
	userID := c.GetString("userID")

	var req usecase.IMAPConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	integration, err := h.syncUsecase.ConnectIMAP(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, integration)
}

// DisconnectIntegration soft-disables an integration
// DELETE /api/integrations/:id
func (h *MailSyncHandler) DisconnectIntegration(c *gin.Context) {
	userID := c.GetString("userID")
	integrationID := c.Param("id")

	if err := h.syncUsecase.DisconnectIntegration(userID, integrationID); err != nil {
		if err.Error() == "integration not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Integration not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Integration disconnected"})
}

// Sync runs a sync+match cycle for the authenticated user
// POST /api/sync
func (h *MailSyncHandler) Sync(c *gin.Context) {
	userID := c.GetString("userID")
	ctx := c.Request.Context()

	synced, err := h.syncUsecase.SyncUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	matched, err := h.syncUsecase.MatchAll(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"synced":  synced,
		"matched": matched,
	})
}

// Match re-runs matching without fetching anything new
// POST /api/sync/match
func (h *MailSyncHandler) Match(c *gin.Context) {
	userID := c.GetString("userID")

	matched, err := h.syncUsecase.MatchAll(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"matched": matched})
}

// GetMessages returns the user's tracked messages
// GET /api/messages?limit=50
func (h *MailSyncHandler) GetMessages(c *gin.Context) {
	userID := c.GetString("userID")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, err := h.syncUsecase.GetMessages(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if messages == nil {
		messages = []*domain.TrackedMessage{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
