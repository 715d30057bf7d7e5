package usecase

import (
	"context"

	appdomain "jobtrail-backend/internal/application/domain"
	"jobtrail-backend/internal/mailsync/domain"
)

// SyncUsecase defines the interface for mailbox sync business logic
type SyncUsecase interface {
	// GetIntegrations returns the user's active mailbox integrations
	GetIntegrations(userID string) ([]*domain.MailboxIntegration, error)

	// BeginAuthorization starts the OAuth flow for a provider and returns
	// the authorization URL together with the CSRF state nonce
	BeginAuthorization(provider string) (url, state string, err error)

	// CompleteAuthorization validates the state nonce, exchanges the code
	// for tokens and persists the integration
	CompleteAuthorization(ctx context.Context, userID, provider, state, code string) (*domain.MailboxIntegration, error)

	// ConnectIMAP validates app-password credentials against the server
	// and persists an IMAP integration
	ConnectIMAP(ctx context.Context, userID string, req IMAPConnectRequest) (*domain.MailboxIntegration, error)

	// DisconnectIntegration soft-disables an integration
	DisconnectIntegration(userID, integrationID string) error

	// SyncUser fetches and ingests recent messages from every active
	// integration the user has. Returns the number of newly stored
	// messages. Matching is not part of this call; run MatchAll after.
	SyncUser(ctx context.Context, userID string) (int, error)

	// MatchAll links unlinked tracked messages to the user's applications
	// and reconciles statuses. Returns the number of messages linked.
	MatchAll(userID string) (int, error)

	// SyncAllUsers runs a sync+match cycle for every user with at least
	// one active integration. Used by the periodic scheduler.
	SyncAllUsers(ctx context.Context)

	// GetMessages returns the user's tracked messages, most recent first
	GetMessages(userID string, limit int) ([]*domain.TrackedMessage, error)

	// SetNotifier wires the status-change observer
	SetNotifier(n StatusNotifier)
}

// IMAPConnectRequest carries app-password credentials for an IMAP mailbox
type IMAPConnectRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Host     string `json:"host" binding:"required"` // host:port, e.g. imap.example.com:993
}

// StatusNotifier observes application status changes made by the
// reconciler. Implementations dispatch user-facing alerts; the sync
// flow itself never depends on delivery succeeding.
type StatusNotifier interface {
	ApplicationStatusChanged(userID string, app *appdomain.JobApplication, msg *domain.TrackedMessage)
}
