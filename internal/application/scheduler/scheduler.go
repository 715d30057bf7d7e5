package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"jobtrail-backend/internal/application/repository"
	"jobtrail-backend/pkg/fcm"

	authrepo "jobtrail-backend/internal/auth/repository"
)

// InterviewReminderScheduler sends FCM reminders for upcoming interviews
type InterviewReminderScheduler struct {
	eventRepo repository.InterviewEventRepository
	appRepo   repository.ApplicationRepository
	fcmRepo   authrepo.FCMTokenRepository
	fcmClient *fcm.Client
	interval  time.Duration
	stopChan  chan struct{}
}

// NewInterviewReminderScheduler creates a new scheduler
func NewInterviewReminderScheduler(
	eventRepo repository.InterviewEventRepository,
	appRepo repository.ApplicationRepository,
	fcmRepo authrepo.FCMTokenRepository,
	fcmClient *fcm.Client,
) *InterviewReminderScheduler {
	return &InterviewReminderScheduler{
		eventRepo: eventRepo,
		appRepo:   appRepo,
		fcmRepo:   fcmRepo,
		fcmClient: fcmClient,
		interval:  1 * time.Minute, // Check every minute
		stopChan:  make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *InterviewReminderScheduler) Start() {
	if s.fcmClient == nil {
		log.Println("[InterviewScheduler] FCM client not available, scheduler disabled")
		return
	}

	log.Println("[InterviewScheduler] Starting interview reminder scheduler (interval: 1 minute)")

	go func() {
		// Run immediately on start
		s.checkAndSendReminders()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.checkAndSendReminders()
			case <-s.stopChan:
				log.Println("[InterviewScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *InterviewReminderScheduler) Stop() {
	close(s.stopChan)
}

// checkAndSendReminders finds due interview reminders and sends FCM notifications
func (s *InterviewReminderScheduler) checkAndSendReminders() {
	now := time.Now()

	events, err := s.eventRepo.FindPendingReminders(now)
	if err != nil {
		log.Printf("[InterviewScheduler] Error finding pending reminders: %v", err)
		return
	}

	if len(events) == 0 {
		return
	}

	log.Printf("[InterviewScheduler] Found %d interviews with pending reminders", len(events))

	for _, event := range events {
		tokens, err := s.fcmRepo.GetTokensByUserID(event.UserID)
		if err != nil {
			log.Printf("[InterviewScheduler] Error getting FCM tokens for user %s: %v", event.UserID, err)
			continue
		}

		if len(tokens) == 0 {
			log.Printf("[InterviewScheduler] No FCM tokens for user %s, marking reminder as sent", event.UserID)
			s.eventRepo.MarkReminderSent(event.ID)
			continue
		}

		title := "Upcoming interview: " + event.Title
		body := fmt.Sprintf("Starts at %s", event.StartsAt.Format("Jan 2, 2006 15:04"))
		if event.Location != "" {
			body = fmt.Sprintf("%s\nLocation: %s", body, event.Location)
		}
		if app, err := s.appRepo.FindByID(event.ApplicationID); err == nil && app != nil {
			title = fmt.Sprintf("Upcoming interview at %s", app.Company)
			body = fmt.Sprintf("%s (%s)\n%s", event.Title, app.Position, body)
		}

		var tokenStrings []string
		for _, t := range tokens {
			tokenStrings = append(tokenStrings, t.Token)
		}

		notification := fcm.NotificationData{
			Title: title,
			Body:  body,
			Link: "/applications/" + event.ApplicationID,
			Data: map[string]string{
				"type":           "interview_reminder",
				"event_id":       event.ID,
				"application_id": event.ApplicationID,
			},
		}

		failedTokens, err := s.fcmClient.SendToDevices(context.Background(), tokenStrings, notification)
		if err != nil {
			log.Printf("[InterviewScheduler] Error sending reminder for event %s: %v", event.ID, err)
		} else {
			log.Printf("[InterviewScheduler] Sent reminder for '%s' to %d devices", event.Title, len(tokenStrings)-len(failedTokens))
		}

		// Cleanup failed tokens
		for _, token := range failedTokens {
			s.fcmRepo.DeleteToken(token)
		}

		// Mark reminder as sent regardless of success (to avoid spamming)
		if err := s.eventRepo.MarkReminderSent(event.ID); err != nil {
			log.Printf("[InterviewScheduler] Error marking reminder as sent for event %s: %v", event.ID, err)
		}
	}
}
