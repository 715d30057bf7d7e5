package domain

import "time"

// MailboxIntegration is one connected (user, provider) mailbox. A user
// has at most one integration per provider; reconnecting updates the
// row in place. Revocation soft-disables it (Active=false).
type MailboxIntegration struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	UserID         string     `json:"user_id" gorm:"index:idx_user_provider,unique;not null"`
	Provider       string     `json:"provider" gorm:"index:idx_user_provider,unique;not null"` // gmail, outlook, imap
	Email          string     `json:"email"`                                                   // provider account address
	AccessToken    string     `json:"-" gorm:"not null"`
	RefreshToken   string     `json:"-"`
	TokenExpiresAt time.Time  `json:"token_expires_at"`
	IMAPHost       string     `json:"imap_host,omitempty"` // imap provider only
	Active         bool       `json:"active" gorm:"default:true"`
	LastSyncTime   *time.Time `json:"last_sync_time,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
