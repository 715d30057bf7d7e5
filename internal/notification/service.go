package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"jobtrail-backend/internal/mailsync/repository"
	"jobtrail-backend/internal/mailsync/usecase"
	"jobtrail-backend/pkg/sse"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// GmailNotification is the payload gmail pushes to our Pub/Sub topic
// when a watched mailbox changes.
type GmailNotification struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    uint64 `json:"historyId"`
}

// Service listens for gmail push notifications and turns them into
// on-demand sync cycles, so a fresh recruiter email shows up without
// waiting for the periodic sync tick.
type Service struct {
	pubsubClient    *pubsub.Client
	sseManager      *sse.Manager
	integrationRepo repository.IntegrationRepository
	syncUsecase     usecase.SyncUsecase
	projectID       string
	topicName       string
	subName         string
	// Deduplication: track last historyId per user to avoid duplicate
	// syncs. Receive dispatches on several goroutines, so access goes
	// through historyAdvanced.
	mu            sync.Mutex
	lastHistoryID map[string]uint64
}

func NewService(projectID, topicName string, sseManager *sse.Manager, integrationRepo repository.IntegrationRepository, syncUsecase usecase.SyncUsecase, credentialsFile string) (*Service, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &Service{
		pubsubClient:    client,
		sseManager:      sseManager,
		integrationRepo: integrationRepo,
		syncUsecase:     syncUsecase,
		projectID:       projectID,
		topicName:       topicName,
		subName:         topicName + "-sub", // Convention: topic-sub
		lastHistoryID:   make(map[string]uint64),
	}, nil
}

func (s *Service) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting notification service with topic: %s, subscription: %s", s.topicName, s.subName)

	// Ensure subscription exists
	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := s.pubsubClient.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}

		if !topicExists {
			log.Printf("[PubSub] Topic %s does not exist, cannot create subscription", s.topicName)
			return
		}

		sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription: %s", s.subName)
	}

	log.Printf("[PubSub] Listening for messages on subscription: %s", s.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(ctx, msg)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

// historyAdvanced records the mailbox's history id and reports whether
// it moved past what was already handled for this user.
func (s *Service) historyAdvanced(userID string, historyID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, seen := s.lastHistoryID[userID]
	if seen && historyID <= last {
		return false
	}
	s.lastHistoryID[userID] = historyID
	return true
}

func (s *Service) handleMessage(ctx context.Context, msg *pubsub.Message) {
	var notification GmailNotification
	if err := json.Unmarshal(msg.Data, &notification); err != nil {
		log.Printf("[PubSub] Failed to unmarshal notification: %v", err)
		return
	}

	log.Printf("[PubSub] Mailbox change for %s (historyId: %d)", notification.EmailAddress, notification.HistoryID)

	integration, err := s.integrationRepo.FindActiveByEmail("gmail", notification.EmailAddress)
	if err != nil {
		log.Printf("[PubSub] Error looking up integration for %s: %v", notification.EmailAddress, err)
		return
	}
	if integration == nil {
		log.Printf("[PubSub] No active gmail integration for %s", notification.EmailAddress)
		return
	}

	// Gmail redelivers; skip historyIds we already handled
	if !s.historyAdvanced(integration.UserID, notification.HistoryID) {
		return
	}

	synced, err := s.syncUsecase.SyncUser(ctx, integration.UserID)
	if err != nil {
		log.Printf("[PubSub] Push-triggered sync failed for user %s: %v", integration.UserID, err)
		return
	}
	matched, err := s.syncUsecase.MatchAll(integration.UserID)
	if err != nil {
		log.Printf("[PubSub] Push-triggered match failed for user %s: %v", integration.UserID, err)
	}

	log.Printf("[PubSub] Push sync for user %s: %d stored, %d matched", integration.UserID, synced, matched)

	s.sseManager.SendToUser(integration.UserID, "mailbox_update", map[string]interface{}{
		"email":     notification.EmailAddress,
		"synced":    synced,
		"matched":   matched,
		"timestamp": time.Now(),
	})
}
