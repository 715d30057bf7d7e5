package repository

import (
	"jobtrail-backend/internal/mailsync/domain"
)

// IntegrationRepository defines data access for mailbox integrations
type IntegrationRepository interface {
	// Upsert creates the (user, provider) integration or updates it in
	// place; a user never has two rows for the same provider
	Upsert(integration *domain.MailboxIntegration) error

	// FindByID finds an integration by its ID
	FindByID(id string) (*domain.MailboxIntegration, error)

	// FindActiveByUserID returns the user's active integrations
	FindActiveByUserID(userID string) ([]*domain.MailboxIntegration, error)

	// FindActiveByEmail finds an active integration by provider account address
	FindActiveByEmail(provider, email string) (*domain.MailboxIntegration, error)

	// Update persists token/sync bookkeeping changes
	Update(integration *domain.MailboxIntegration) error

	// Deactivate soft-disables an integration (active = false)
	Deactivate(userID, id string) error

	// ListActiveUserIDs returns the distinct users with at least one
	// active integration, for the periodic sync loop
	ListActiveUserIDs() ([]string, error)
}

// TrackedMessageRepository defines data access for ingested messages
type TrackedMessageRepository interface {
	// CreateIfAbsent inserts the message unless the (user, message id)
	// pair already exists. Returns whether a row was created; a losing
	// duplicate insert is a benign no-op, not an error.
	CreateIfAbsent(msg *domain.TrackedMessage) (bool, error)

	// FindUnlinked returns the user's messages with no application link
	FindUnlinked(userID string) ([]*domain.TrackedMessage, error)

	// FindByUserID returns the user's messages, most recent first
	FindByUserID(userID string, limit int) ([]*domain.TrackedMessage, error)

	// Link sets the application link exactly once and reports whether
	// this call performed it; a message that is already linked is left
	// untouched
	Link(id, applicationID string) (bool, error)
}
