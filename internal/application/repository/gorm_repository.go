package repository

import (
	"errors"
	"time"

	"jobtrail-backend/internal/application/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormApplicationRepository implements ApplicationRepository using GORM
type gormApplicationRepository struct {
	db *gorm.DB
}

// NewGormApplicationRepository creates a new GORM-based ApplicationRepository
func NewGormApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &gormApplicationRepository{db: db}
}

func (r *gormApplicationRepository) Create(app *domain.JobApplication) error {
	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	if app.Status == "" {
		app.Status = domain.StatusSaved
	}
	now := time.Now()
	app.LastUpdated = now
	app.CreatedAt = now
	app.UpdatedAt = now
	return r.db.Create(app).Error
}

func (r *gormApplicationRepository) FindByID(id string) (*domain.JobApplication, error) {
	var app domain.JobApplication
	err := r.db.Where("id = ?", id).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *gormApplicationRepository) FindByUserID(userID string, status *domain.ApplicationStatus) ([]*domain.JobApplication, error) {
	var apps []*domain.JobApplication
	query := r.db.Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("created_at ASC").Find(&apps).Error
	return apps, err
}

func (r *gormApplicationRepository) Update(app *domain.JobApplication) error {
	app.UpdatedAt = time.Now()
	return r.db.Save(app).Error
}

func (r *gormApplicationRepository) UpdateStatus(id string, status domain.ApplicationStatus, at time.Time) error {
	return r.db.Model(&domain.JobApplication{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"last_updated": at,
			"updated_at":   at,
		}).Error
}

func (r *gormApplicationRepository) Delete(userID, id string) error {
	return r.db.Where("user_id = ? AND id = ?", userID, id).
		Delete(&domain.JobApplication{}).Error
}

// gormDocumentRepository implements DocumentRepository using GORM
type gormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GORM-based DocumentRepository
func NewGormDocumentRepository(db *gorm.DB) DocumentRepository {
	return &gormDocumentRepository{db: db}
}

func (r *gormDocumentRepository) Create(doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Kind == "" {
		doc.Kind = domain.DocumentOther
	}
	doc.CreatedAt = time.Now()
	return r.db.Create(doc).Error
}

func (r *gormDocumentRepository) FindByApplicationID(userID, applicationID string) ([]*domain.Document, error) {
	var docs []*domain.Document
	err := r.db.Where("user_id = ? AND application_id = ?", userID, applicationID).
		Order("created_at ASC").Find(&docs).Error
	return docs, err
}

func (r *gormDocumentRepository) Delete(userID, id string) error {
	return r.db.Where("user_id = ? AND id = ?", userID, id).
		Delete(&domain.Document{}).Error
}

// gormInterviewEventRepository implements InterviewEventRepository using GORM
type gormInterviewEventRepository struct {
	db *gorm.DB
}

// NewGormInterviewEventRepository creates a new GORM-based InterviewEventRepository
func NewGormInterviewEventRepository(db *gorm.DB) InterviewEventRepository {
	return &gormInterviewEventRepository{db: db}
}

func (r *gormInterviewEventRepository) Create(event *domain.InterviewEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	return r.db.Create(event).Error
}

func (r *gormInterviewEventRepository) FindByApplicationID(userID, applicationID string) ([]*domain.InterviewEvent, error) {
	var events []*domain.InterviewEvent
	err := r.db.Where("user_id = ? AND application_id = ?", userID, applicationID).
		Order("starts_at ASC").Find(&events).Error
	return events, err
}

func (r *gormInterviewEventRepository) Delete(userID, id string) error {
	return r.db.Where("user_id = ? AND id = ?", userID, id).
		Delete(&domain.InterviewEvent{}).Error
}

func (r *gormInterviewEventRepository) FindPendingReminders(now time.Time) ([]*domain.InterviewEvent, error) {
	var events []*domain.InterviewEvent
	err := r.db.Where("reminder_at <= ? AND reminder_sent = ?", now, false).
		Find(&events).Error
	return events, err
}

func (r *gormInterviewEventRepository) MarkReminderSent(id string) error {
	return r.db.Model(&domain.InterviewEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"reminder_sent": true,
			"updated_at":    time.Now(),
		}).Error
}
