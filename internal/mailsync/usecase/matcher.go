package usecase

import (
	"fmt"
	"log"
	"strings"

	appdomain "jobtrail-backend/internal/application/domain"
	"jobtrail-backend/internal/mailsync/domain"
)

// MatchAll scans the user's unlinked messages against their applications.
// A message links to the first application whose company and position
// both appear, lower-cased, as substrings of the message text. First
// match wins; there is no scoring pass. Messages nothing matches stay
// unlinked and get re-scanned on the next call, so an application
// created later can pick up an older message.
func (u *syncUsecase) MatchAll(userID string) (int, error) {
	messages, err := u.messageRepo.FindUnlinked(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load unlinked messages: %v", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	apps, err := u.appRepo.FindByUserID(userID, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to load applications: %v", err)
	}
	if len(apps) == 0 {
		return 0, nil
	}

	matched := 0
	for _, msg := range messages {
		app := firstMatch(msg, apps)
		if app == nil {
			continue
		}

		linked, err := u.messageRepo.Link(msg.ID, app.ID)
		if err != nil {
			log.Printf("[MailSync] Failed to link message %s to application %s: %v", msg.ID, app.ID, err)
			continue
		}
		if !linked {
			// A concurrent pass got here first; its link stands
			continue
		}
		matched++

		if msg.InferredStatus != "" {
			if err := u.applyStatus(app, msg); err != nil {
				log.Printf("[MailSync] Failed to reconcile status for application %s: %v", app.ID, err)
			}
		}
	}

	return matched, nil
}

// firstMatch returns the first application in retrieval order whose
// company and position both occur in the message text.
func firstMatch(msg *domain.TrackedMessage, apps []*appdomain.JobApplication) *appdomain.JobApplication {
	text := strings.ToLower(msg.Subject + " " + msg.Body)
	for _, app := range apps {
		company := strings.ToLower(app.Company)
		position := strings.ToLower(app.Position)
		if company == "" || position == "" {
			continue
		}
		if strings.Contains(text, company) && strings.Contains(text, position) {
			return app
		}
	}
	return nil
}
