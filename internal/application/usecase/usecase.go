package usecase

import (
	"jobtrail-backend/internal/application/domain"
)

// ApplicationUsecase defines the interface for application business logic
type ApplicationUsecase interface {
	// CreateApplication creates a new job application
	CreateApplication(userID string, req ApplicationCreateRequest) (*domain.JobApplication, error)

	// GetApplicationByID retrieves an application by ID (with ownership check)
	GetApplicationByID(userID, applicationID string) (*domain.JobApplication, error)

	// GetUserApplications retrieves all applications for a user with optional status filter
	GetUserApplications(userID string, status *string) ([]*domain.JobApplication, error)

	// UpdateApplication updates an existing application
	UpdateApplication(userID, applicationID string, updates ApplicationUpdateRequest) (*domain.JobApplication, error)

	// SetStatus moves an application to a new pipeline status
	SetStatus(userID, applicationID string, status string) (*domain.JobApplication, error)

	// DeleteApplication deletes an application
	DeleteApplication(userID, applicationID string) error

	// AddDocument attaches a document to an application
	AddDocument(userID, applicationID string, req DocumentCreateRequest) (*domain.Document, error)

	// GetDocuments lists the documents attached to an application
	GetDocuments(userID, applicationID string) ([]*domain.Document, error)

	// DeleteDocument removes a document
	DeleteDocument(userID, documentID string) error

	// AddInterviewEvent schedules an interview for an application
	AddInterviewEvent(userID, applicationID string, req InterviewEventCreateRequest) (*domain.InterviewEvent, error)

	// GetInterviewEvents lists the interviews scheduled for an application
	GetInterviewEvents(userID, applicationID string) ([]*domain.InterviewEvent, error)

	// DeleteInterviewEvent removes a scheduled interview
	DeleteInterviewEvent(userID, eventID string) error
}

// ApplicationCreateRequest carries the fields for a new application
type ApplicationCreateRequest struct {
	Company    string `json:"company" binding:"required"`
	Position   string `json:"position" binding:"required"`
	Location   string `json:"location"`
	URL        string `json:"url"`
	SalaryNote string `json:"salary_note"`
	Notes      string `json:"notes"`
	Status     string `json:"status"`
}

// ApplicationUpdateRequest represents the fields that can be updated
type ApplicationUpdateRequest struct {
	Company    *string `json:"company,omitempty"`
	Position   *string `json:"position,omitempty"`
	Location   *string `json:"location,omitempty"`
	URL        *string `json:"url,omitempty"`
	SalaryNote *string `json:"salary_note,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// DocumentCreateRequest carries the metadata for a new document
type DocumentCreateRequest struct {
	Name string `json:"name" binding:"required"`
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

// InterviewEventCreateRequest carries the fields for a new interview event
type InterviewEventCreateRequest struct {
	Title      string  `json:"title" binding:"required"`
	Location   string  `json:"location"`
	StartsAt   string  `json:"starts_at" binding:"required"`
	ReminderAt *string `json:"reminder_at,omitempty"`
}
