package usecase

import (
	"time"

	appdomain "jobtrail-backend/internal/application/domain"
	"jobtrail-backend/internal/mailsync/domain"
)

// applyStatus overwrites the application's status with the message's
// inferred one and bumps last_updated, whether or not the value
// changed. Every reconciliation is a timestamp refresh. There is no
// ordering guard: a message reconciled later wins even if it was
// received earlier.
func (u *syncUsecase) applyStatus(app *appdomain.JobApplication, msg *domain.TrackedMessage) error {
	status := appdomain.ApplicationStatus(msg.InferredStatus)
	now := time.Now()

	if err := u.appRepo.UpdateStatus(app.ID, status, now); err != nil {
		return err
	}

	app.Status = status
	app.LastUpdated = now

	if u.notifier != nil {
		u.notifier.ApplicationStatusChanged(app.UserID, app, msg)
	}

	return nil
}
