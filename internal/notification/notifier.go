package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	appdomain "jobtrail-backend/internal/application/domain"
	authrepo "jobtrail-backend/internal/auth/repository"
	maildomain "jobtrail-backend/internal/mailsync/domain"
	"jobtrail-backend/pkg/fcm"
	"jobtrail-backend/pkg/sse"
)

// StatusNotifier dispatches user-facing alerts when the reconciler
// changes an application's status. Delivery is best effort; the sync
// flow never waits on it.
type StatusNotifier struct {
	sseManager *sse.Manager
	fcmRepo    authrepo.FCMTokenRepository
	fcmClient  *fcm.Client
}

// NewStatusNotifier creates a new StatusNotifier. fcmClient may be nil,
// in which case only SSE events are sent.
func NewStatusNotifier(sseManager *sse.Manager, fcmRepo authrepo.FCMTokenRepository, fcmClient *fcm.Client) *StatusNotifier {
	return &StatusNotifier{
		sseManager: sseManager,
		fcmRepo:    fcmRepo,
		fcmClient:  fcmClient,
	}
}

// ApplicationStatusChanged fans the status change out over SSE and FCM.
func (n *StatusNotifier) ApplicationStatusChanged(userID string, app *appdomain.JobApplication, msg *maildomain.TrackedMessage) {
	n.sseManager.SendToUser(userID, "application_update", map[string]interface{}{
		"application_id": app.ID,
		"company":        app.Company,
		"position":       app.Position,
		"status":         app.Status,
		"message_id":     msg.ID,
		"timestamp":      time.Now(),
	})

	if n.fcmClient == nil || n.fcmRepo == nil {
		return
	}

	go func() {
		tokens, err := n.fcmRepo.GetTokensByUserID(userID)
		if err != nil {
			log.Printf("[Notifier] Error getting FCM tokens for user %s: %v", userID, err)
			return
		}
		if len(tokens) == 0 {
			return
		}

		var tokenStrings []string
		for _, t := range tokens {
			tokenStrings = append(tokenStrings, t.Token)
		}

		notification := fcm.NotificationData{
			Title: fmt.Sprintf("%s: %s", app.Company, statusLine(app.Status)),
			Body:  fmt.Sprintf("Your %s application moved to %s based on an email from %s.", app.Position, app.Status, msg.Sender),
			Link: "/applications/" + app.ID,
			Data: map[string]string{
				"type":           "application_update",
				"application_id": app.ID,
				"status":         string(app.Status),
			},
		}

		failedTokens, err := n.fcmClient.SendToDevices(context.Background(), tokenStrings, notification)
		if err != nil {
			log.Printf("[Notifier] Error sending status notification: %v", err)
			return
		}

		// Cleanup failed tokens
		for _, token := range failedTokens {
			n.fcmRepo.DeleteToken(token)
		}
	}()
}

func statusLine(status appdomain.ApplicationStatus) string {
	switch status {
	case appdomain.StatusApplied:
		return "application received"
	case appdomain.StatusInterview:
		return "interview stage"
	case appdomain.StatusOffer:
		return "offer received"
	case appdomain.StatusRejected:
		return "not moving forward"
	default:
		return string(status)
	}
}
