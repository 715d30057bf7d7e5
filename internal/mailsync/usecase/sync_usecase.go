package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	apprepo "jobtrail-backend/internal/application/repository"
	"jobtrail-backend/internal/mailsync/classifier"
	"jobtrail-backend/internal/mailsync/domain"
	"jobtrail-backend/internal/mailsync/repository"
	"jobtrail-backend/pkg/cache"
	"jobtrail-backend/pkg/mailbox"

	"github.com/google/uuid"
)

// Messages below this confidence with no status signal are not worth a row.
const ingestThreshold = 0.5

// syncUsecase implements SyncUsecase interface
type syncUsecase struct {
	integrationRepo repository.IntegrationRepository
	messageRepo     repository.TrackedMessageRepository
	appRepo         apprepo.ApplicationRepository
	registry        *mailbox.Registry
	stateCache      *cache.Cache
	notifier        StatusNotifier
	maxResults      int64
	pubsubTopic     string // gmail push topic, empty disables Watch registration
}

// NewSyncUsecase creates a new instance of syncUsecase
func NewSyncUsecase(
	integrationRepo repository.IntegrationRepository,
	messageRepo repository.TrackedMessageRepository,
	appRepo apprepo.ApplicationRepository,
	registry *mailbox.Registry,
	stateCache *cache.Cache,
	maxResults int64,
	pubsubTopic string,
) SyncUsecase {
	if maxResults <= 0 {
		maxResults = 25
	}
	return &syncUsecase{
		integrationRepo: integrationRepo,
		messageRepo:     messageRepo,
		appRepo:         appRepo,
		registry:        registry,
		stateCache:      stateCache,
		maxResults:      maxResults,
		pubsubTopic:     pubsubTopic,
	}
}

// SetNotifier wires the status-change observer. Optional; a nil notifier
// means reconciliation happens silently.
func (u *syncUsecase) SetNotifier(n StatusNotifier) {
	u.notifier = n
}

func (u *syncUsecase) GetIntegrations(userID string) ([]*domain.MailboxIntegration, error) {
	return u.integrationRepo.FindActiveByUserID(userID)
}

func (u *syncUsecase) BeginAuthorization(provider string) (string, string, error) {
	conn, err := u.registry.Get(mailbox.Provider(provider))
	if err != nil {
		return "", "", err
	}

	state := uuid.New().String()
	url := conn.AuthorizationURL(state)
	if url == "" {
		return "", "", fmt.Errorf("provider %s does not support oauth authorization", provider)
	}

	u.stateCache.Set(stateKey(state), provider)
	return url, state, nil
}

func (u *syncUsecase) CompleteAuthorization(ctx context.Context, userID, provider, state, code string) (*domain.MailboxIntegration, error) {
	if u.stateCache.Enabled() {
		cachedProvider, ok := u.stateCache.Take(stateKey(state))
		if !ok || cachedProvider != provider {
			return nil, errors.New("invalid or expired state")
		}
	}

	conn, err := u.registry.Get(mailbox.Provider(provider))
	if err != nil {
		return nil, err
	}

	tokens, err := conn.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	integration := &domain.MailboxIntegration{
		UserID:         userID,
		Provider:       provider,
		Email:          tokens.Email,
		AccessToken:    tokens.AccessToken,
		RefreshToken:   tokens.RefreshToken,
		TokenExpiresAt: time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second),
		Active:         true,
	}

	if err := u.integrationRepo.Upsert(integration); err != nil {
		return nil, fmt.Errorf("failed to save integration: %v", err)
	}

	// Register for push notifications when a gmail topic is configured
	if u.pubsubTopic != "" {
		if g, ok := conn.(*mailbox.GmailConnector); ok {
			if err := g.Watch(ctx, integration.AccessToken, u.pubsubTopic); err != nil {
				log.Printf("[MailSync] Warning: gmail watch registration failed for %s: %v", integration.Email, err)
			}
		}
	}

	return integration, nil
}

func (u *syncUsecase) ConnectIMAP(ctx context.Context, userID string, req IMAPConnectRequest) (*domain.MailboxIntegration, error) {
	conn, err := u.registry.Get(mailbox.ProviderIMAP)
	if err != nil {
		return nil, err
	}

	// Probe the credentials with a minimal fetch before saving anything
	creds := mailbox.Credentials{
		AccessToken: req.Password,
		Username:    req.Email,
		Host:        req.Host,
	}
	if _, err := conn.ListRecentMessages(ctx, creds, 1); err != nil {
		return nil, fmt.Errorf("imap connection check failed: %v", err)
	}

	integration := &domain.MailboxIntegration{
		UserID:         userID,
		Provider:       string(mailbox.ProviderIMAP),
		Email:          req.Email,
		AccessToken:    req.Password,
		TokenExpiresAt: time.Now().Add(365 * 24 * time.Hour), // app passwords do not expire
		IMAPHost:       req.Host,
		Active:         true,
	}

	if err := u.integrationRepo.Upsert(integration); err != nil {
		return nil, fmt.Errorf("failed to save integration: %v", err)
	}

	return integration, nil
}

func (u *syncUsecase) DisconnectIntegration(userID, integrationID string) error {
	integration, err := u.integrationRepo.FindByID(integrationID)
	if err != nil {
		return err
	}
	if integration == nil || integration.UserID != userID {
		return errors.New("integration not found")
	}
	return u.integrationRepo.Deactivate(userID, integrationID)
}

// SyncUser processes each active integration in turn. A failure on one
// integration is logged and skipped; the others still run. Only a
// failure to load the integration list itself is a hard error.
func (u *syncUsecase) SyncUser(ctx context.Context, userID string) (int, error) {
	integrations, err := u.integrationRepo.FindActiveByUserID(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load integrations: %v", err)
	}

	synced := 0
	for _, integration := range integrations {
		n, err := u.syncIntegration(ctx, integration)
		if err != nil {
			log.Printf("[MailSync] Skipping integration %s (%s) for user %s: %v",
				integration.ID, integration.Provider, userID, err)
			continue
		}
		synced += n
	}

	return synced, nil
}

func (u *syncUsecase) syncIntegration(ctx context.Context, integration *domain.MailboxIntegration) (int, error) {
	conn, err := u.registry.Get(mailbox.Provider(integration.Provider))
	if err != nil {
		return 0, err
	}

	// Refresh-then-use: an expired token is replaced and persisted
	// before the first fetch call, never after a failed one.
	if !time.Now().Before(integration.TokenExpiresAt) && integration.RefreshToken != "" {
		tokens, err := conn.RefreshAccessToken(ctx, integration.RefreshToken)
		if err != nil {
			return 0, err
		}
		integration.AccessToken = tokens.AccessToken
		if tokens.RefreshToken != "" {
			integration.RefreshToken = tokens.RefreshToken
		}
		integration.TokenExpiresAt = time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
		if err := u.integrationRepo.Update(integration); err != nil {
			return 0, fmt.Errorf("failed to persist refreshed token: %v", err)
		}
	}

	creds := mailbox.Credentials{
		AccessToken: integration.AccessToken,
		Username:    integration.Email,
		Host:        integration.IMAPHost,
	}

	messages, err := conn.ListRecentMessages(ctx, creds, u.maxResults)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, m := range messages {
		created, err := u.ingestMessage(integration, m)
		if err != nil {
			log.Printf("[MailSync] Warning: failed to ingest message %s: %v", m.ID, err)
			continue
		}
		if created {
			synced++
		}
	}

	// Last-sync bookkeeping happens regardless of per-message outcomes
	now := time.Now()
	integration.LastSyncTime = &now
	if err := u.integrationRepo.Update(integration); err != nil {
		log.Printf("[MailSync] Warning: failed to update last sync time for %s: %v", integration.ID, err)
	}

	return synced, nil
}

// ingestMessage classifies one fetched message and stores it when it
// clears the threshold: a confidence above 0.5, or any status signal at
// all. A duplicate (user, message id) insert reports created=false.
func (u *syncUsecase) ingestMessage(integration *domain.MailboxIntegration, m *mailbox.Message) (bool, error) {
	res := classifier.Classify(m.Subject, m.Body)
	if res.Confidence <= ingestThreshold && res.Status == "" {
		return false, nil
	}

	msg := &domain.TrackedMessage{
		UserID:            integration.UserID,
		IntegrationID:     integration.ID,
		MessageID:         m.ID,
		Subject:           m.Subject,
		Sender:            m.Sender,
		ReceivedAt:        m.ReceivedAt,
		Snippet:           m.Snippet,
		Body:              m.Body,
		InferredStatus:    res.Status,
		Confidence:        res.Confidence,
		ExtractedCompany:  res.Company,
		ExtractedPosition: res.Position,
	}

	return u.messageRepo.CreateIfAbsent(msg)
}

// SyncAllUsers runs sync+match for every user with an active
// integration. Errors stay inside each user's cycle.
func (u *syncUsecase) SyncAllUsers(ctx context.Context) {
	userIDs, err := u.integrationRepo.ListActiveUserIDs()
	if err != nil {
		log.Printf("[MailSync] Failed to list users for periodic sync: %v", err)
		return
	}

	for _, userID := range userIDs {
		synced, err := u.SyncUser(ctx, userID)
		if err != nil {
			log.Printf("[MailSync] Periodic sync failed for user %s: %v", userID, err)
			continue
		}
		matched, err := u.MatchAll(userID)
		if err != nil {
			log.Printf("[MailSync] Periodic match failed for user %s: %v", userID, err)
			continue
		}
		if synced > 0 || matched > 0 {
			log.Printf("[MailSync] User %s: %d messages stored, %d matched", userID, synced, matched)
		}
	}
}

func (u *syncUsecase) GetMessages(userID string, limit int) ([]*domain.TrackedMessage, error) {
	return u.messageRepo.FindByUserID(userID, limit)
}

func stateKey(state string) string {
	return "oauth_state:" + state
}
