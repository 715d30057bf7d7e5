package usecase

import (
	"errors"
	"time"

	"jobtrail-backend/internal/application/domain"
	"jobtrail-backend/internal/application/repository"
)

// applicationUsecase implements ApplicationUsecase interface
type applicationUsecase struct {
	appRepo   repository.ApplicationRepository
	docRepo   repository.DocumentRepository
	eventRepo repository.InterviewEventRepository
}

// NewApplicationUsecase creates a new instance of applicationUsecase
func NewApplicationUsecase(
	appRepo repository.ApplicationRepository,
	docRepo repository.DocumentRepository,
	eventRepo repository.InterviewEventRepository,
) ApplicationUsecase {
	return &applicationUsecase{
		appRepo:   appRepo,
		docRepo:   docRepo,
		eventRepo: eventRepo,
	}
}

func (u *applicationUsecase) CreateApplication(userID string, req ApplicationCreateRequest) (*domain.JobApplication, error) {
	status := domain.StatusSaved
	if req.Status != "" {
		status = domain.ApplicationStatus(req.Status)
		if !domain.ValidStatus(status) {
			return nil, errors.New("invalid status")
		}
	}

	app := &domain.JobApplication{
		UserID:     userID,
		Company:    req.Company,
		Position:   req.Position,
		Location:   req.Location,
		URL:        req.URL,
		SalaryNote: req.SalaryNote,
		Notes:      req.Notes,
		Status:     status,
	}

	if err := u.appRepo.Create(app); err != nil {
		return nil, err
	}

	return app, nil
}

func (u *applicationUsecase) GetApplicationByID(userID, applicationID string) (*domain.JobApplication, error) {
	app, err := u.appRepo.FindByID(applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, errors.New("application not found")
	}
	if app.UserID != userID {
		return nil, errors.New("unauthorized")
	}
	return app, nil
}

func (u *applicationUsecase) GetUserApplications(userID string, status *string) ([]*domain.JobApplication, error) {
	var statusFilter *domain.ApplicationStatus
	if status != nil && *status != "" {
		s := domain.ApplicationStatus(*status)
		if !domain.ValidStatus(s) {
			return nil, errors.New("invalid status")
		}
		statusFilter = &s
	}
	return u.appRepo.FindByUserID(userID, statusFilter)
}

func (u *applicationUsecase) UpdateApplication(userID, applicationID string, updates ApplicationUpdateRequest) (*domain.JobApplication, error) {
	app, err := u.GetApplicationByID(userID, applicationID)
	if err != nil {
		return nil, err
	}

	if updates.Company != nil {
		app.Company = *updates.Company
	}
	if updates.Position != nil {
		app.Position = *updates.Position
	}
	if updates.Location != nil {
		app.Location = *updates.Location
	}
	if updates.URL != nil {
		app.URL = *updates.URL
	}
	if updates.SalaryNote != nil {
		app.SalaryNote = *updates.SalaryNote
	}
	if updates.Notes != nil {
		app.Notes = *updates.Notes
	}

	if err := u.appRepo.Update(app); err != nil {
		return nil, err
	}

	return app, nil
}

func (u *applicationUsecase) SetStatus(userID, applicationID string, status string) (*domain.JobApplication, error) {
	app, err := u.GetApplicationByID(userID, applicationID)
	if err != nil {
		return nil, err
	}

	s := domain.ApplicationStatus(status)
	if !domain.ValidStatus(s) {
		return nil, errors.New("invalid status")
	}

	now := time.Now()
	if err := u.appRepo.UpdateStatus(app.ID, s, now); err != nil {
		return nil, err
	}

	app.Status = s
	app.LastUpdated = now
	return app, nil
}

func (u *applicationUsecase) DeleteApplication(userID, applicationID string) error {
	app, err := u.GetApplicationByID(userID, applicationID)
	if err != nil {
		return err
	}
	return u.appRepo.Delete(userID, app.ID)
}

func (u *applicationUsecase) AddDocument(userID, applicationID string, req DocumentCreateRequest) (*domain.Document, error) {
	app, err := u.GetApplicationByID(userID, applicationID)
	if err != nil {
		return nil, err
	}

	kind := domain.DocumentKind(req.Kind)
	switch kind {
	case domain.DocumentResume, domain.DocumentCoverLetter, domain.DocumentOther:
	case "":
		kind = domain.DocumentOther
	default:
		return nil, errors.New("invalid document kind")
	}

	doc := &domain.Document{
		UserID:        userID,
		ApplicationID: app.ID,
		Name:          req.Name,
		Kind:          kind,
		URL:           req.URL,
	}

	if err := u.docRepo.Create(doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func (u *applicationUsecase) GetDocuments(userID, applicationID string) ([]*domain.Document, error) {
	app, err := u.GetApplicationByID(userID, applicationID)
	if err != nil {
		return nil, err
	}
	return u.docRepo.FindByApplicationID(userID, app.ID)
}

func (u *applicationUsecase) DeleteDocument(userID, documentID string) error {
	return u.docRepo.Delete(userID, documentID)
}

func (u *applicationUsecase) AddInterviewEvent(userID, applicationID string, req InterviewEventCreateRequest) (*domain.InterviewEvent, error) {
	app, err := u.GetApplicationByID(userID, applicationID)
	if err != nil {
		return nil, err
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, errors.New("invalid starts_at, expected RFC3339")
	}

	event := &domain.InterviewEvent{
		UserID:        userID,
		ApplicationID: app.ID,
		Title:         req.Title,
		Location:      req.Location,
		StartsAt:      startsAt,
	}

	if req.ReminderAt != nil && *req.ReminderAt != "" {
		if t, err := time.Parse(time.RFC3339, *req.ReminderAt); err == nil {
			event.ReminderAt = &t
		}
	} else {
		// Default reminder one hour before the interview
		reminderTime := startsAt.Add(-1 * time.Hour)
		if reminderTime.After(time.Now()) {
			event.ReminderAt = &reminderTime
		}
	}

	if err := u.eventRepo.Create(event); err != nil {
		return nil, err
	}

	return event, nil
}

func (u *applicationUsecase) GetInterviewEvents(userID, applicationID string) ([]*domain.InterviewEvent, error) {
	app, err := u.GetApplicationByID(userID, applicationID)
	if err != nil {
		return nil, err
	}
	return u.eventRepo.FindByApplicationID(userID, app.ID)
}

func (u *applicationUsecase) DeleteInterviewEvent(userID, eventID string) error {
	return u.eventRepo.Delete(userID, eventID)
}
