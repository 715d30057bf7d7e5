package delivery

import (
	"net/http"

	"jobtrail-backend/internal/application/domain"
	"jobtrail-backend/internal/application/usecase"

	"github.com/gin-gonic/gin"
)

// ApplicationHandler handles application-related HTTP requests
type ApplicationHandler struct {
	appUsecase usecase.ApplicationUsecase
}

// NewApplicationHandler creates a new ApplicationHandler
func NewApplicationHandler(appUsecase usecase.ApplicationUsecase) *ApplicationHandler {
	return &ApplicationHandler{
		appUsecase: appUsecase,
	}
}

// GetApplications returns all applications for the authenticated user
// GET /api/applications?status=interview
func (h *ApplicationHandler) GetApplications(c *gin.Context) {
	userID := c.GetString("userID")

	status := c.Query("status")
	var statusPtr *string
	if status != "" {
		statusPtr = &status
	}

	apps, err := h.appUsecase.GetUserApplications(userID, statusPtr)
	if err != nil {
		if err.Error() == "invalid status" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if apps == nil {
		apps = []*domain.JobApplication{}
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": apps,
		"total":        len(apps),
	})
}

// GetApplicationByID returns a specific application
// GET /api/applications/:id
func (h *ApplicationHandler) GetApplicationByID(c *gin.Context) {
	userID := c.GetString("userID")
	applicationID := c.Param("id")

	app, err := h.appUsecase.GetApplicationByID(userID, applicationID)
	if err != nil {
		respondUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// CreateApplication creates a new application
// POST /api/applications
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	userID := c.GetString("userID")

	var req usecase.ApplicationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.appUsecase.CreateApplication(userID, req)
	if err != nil {
		if err.Error() == "invalid status" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, app)
}

// UpdateApplication updates an existing application
// PUT /api/applications/:id
func (h *ApplicationHandler) UpdateApplication(c *gin.Context) {
	userID := c.GetString("userID")
	applicationID := c.Param("id")

	var updates usecase.ApplicationUpdateRequest
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.appUsecase.UpdateApplication(userID, applicationID, updates)
	if err != nil {
		respondUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// UpdateApplicationStatus is a convenience endpoint to just update status
// PATCH /api/applications/:id/status
func (h *ApplicationHandler) UpdateApplicationStatus(c *gin.Context) {
	userID := c.GetString("userID")
	applicationID := c.Param("id")

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.appUsecase.SetStatus(userID, applicationID, req.Status)
	if err != nil {
		if err.Error() == "invalid status" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		respondUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// DeleteApplication deletes an application
// DELETE /api/applications/:id
func (h *ApplicationHandler) DeleteApplication(c *gin.Context) {
	userID := c.GetString("userID")
	applicationID := c.Param("id")

	err := h.appUsecase.DeleteApplication(userID, applicationID)
	if err != nil {
		respondUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application deleted successfully"})
}

// GetDocuments lists documents attached to an application
// GET /api/applications/:id/documents
func (h *ApplicationHandler) GetDocuments(c *gin.Context) {
	userID := c.GetString("userID")
	applicationID := c.Param("id")

	docs, err := h.appUsecase.GetDocuments(userID, applicationID)
	if err != nil {
		respondUsecaseError(c, err)
		return
	}

	if docs == nil {
		docs = []*domain.Document{}
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// AddDocument attaches a document to an application
// POST /api/applications/:id/documents
func (h *ApplicationHandler) AddDocument(c *gin.Context) {
	userID := c.GetString("userID")
	applicationID := c.Param("id")

	var req usecase.DocumentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.appUsecase.AddDocument(userID, applicationID, req)
	if err != nil {
		if err.Error() == "invalid document kind" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document kind"})
			return
		}
		respondUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// DeleteDocument removes a document
// DELETE /api/documents/:id
func (h *ApplicationHandler) DeleteDocument(c *gin.Context) {
	userID := c.GetString("userID")
	documentID := c.Param("id")

	if err := h.appUsecase.DeleteDocument(userID, documentID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}

// GetInterviewEvents lists interviews for an application
// GET /api/applications/:id/interviews
func (h *ApplicationHandler) GetInterviewEvents(c *gin.Context) {
	userID := c.GetString("userID")
	applicationID := c.Param("id")

	events, err := h.appUsecase.GetInterviewEvents(userID, applicationID)
	if err != nil {
		respondUsecaseError(c, err)
		return
	}

	if events == nil {
		events = []*domain.InterviewEvent{}
	}

	c.JSON(http.StatusOK, gin.H{"interviews": events})
}

// AddInterviewEvent schedules an interview for an application
// POST /api/applications/:id/interviews
func (h *ApplicationHandler) AddInterviewEvent(c *gin.Context) {
	userID := c.GetString("userID")
	applicationID := c.Param("id")

	var req usecase.InterviewEventCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.appUsecase.AddInterviewEvent(userID, applicationID, req)
	if err != nil {
		if err.Error() == "invalid starts_at, expected RFC3339" {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// DeleteInterviewEvent removes a scheduled interview
// DELETE /api/interviews/:id
func (h *ApplicationHandler) DeleteInterviewEvent(c *gin.Context) {
	userID := c.GetString("userID")
	eventID := c.Param("id")

	if err := h.appUsecase.DeleteInterviewEvent(userID, eventID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Interview deleted successfully"})
}

func respondUsecaseError(c *gin.Context, err error) {
	switch err.Error() {
	case "application not found":
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
	case "unauthorized":
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
