package repository

import (
	"time"

	"jobtrail-backend/internal/application/domain"
)

// ApplicationRepository defines data access for job applications
type ApplicationRepository interface {
	// Create creates a new application
	Create(app *domain.JobApplication) error

	// FindByID finds an application by its ID
	FindByID(id string) (*domain.JobApplication, error)

	// FindByUserID returns the user's applications in stable retrieval
	// order (insertion order), optionally filtered by status
	FindByUserID(userID string, status *domain.ApplicationStatus) ([]*domain.JobApplication, error)

	// Update updates an existing application
	Update(app *domain.JobApplication) error

	// UpdateStatus overwrites the status and sets last_updated to at,
	// whether or not the status value actually changed
	UpdateStatus(id string, status domain.ApplicationStatus, at time.Time) error

	// Delete deletes an application by ID
	Delete(userID, id string) error
}

// DocumentRepository defines data access for application documents
type DocumentRepository interface {
	Create(doc *domain.Document) error
	FindByApplicationID(userID, applicationID string) ([]*domain.Document, error)
	Delete(userID, id string) error
}

// InterviewEventRepository defines data access for interview events
type InterviewEventRepository interface {
	Create(event *domain.InterviewEvent) error
	FindByApplicationID(userID, applicationID string) ([]*domain.InterviewEvent, error)
	Delete(userID, id string) error

	// FindPendingReminders returns events with reminder_at <= now that
	// have not been reminded yet
	FindPendingReminders(now time.Time) ([]*domain.InterviewEvent, error)

	// MarkReminderSent marks an event's reminder as sent
	MarkReminderSent(id string) error
}
