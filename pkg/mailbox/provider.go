package mailbox

import (
	"context"
	"fmt"
	"time"
)

// Provider identifies an external mailbox service.
type Provider string

const (
	ProviderGmail   Provider = "gmail"
	ProviderOutlook Provider = "outlook"
	ProviderIMAP    Provider = "imap"
)

// requestTimeout bounds every outbound call to a provider API.
const requestTimeout = 20 * time.Second

// Message is the provider-neutral shape of one mailbox message.
type Message struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	Sender     string    `json:"sender"`
	ReceivedAt time.Time `json:"received_at"`
	Snippet    string    `json:"snippet"`
	Body       string    `json:"body"`
}

// Tokens is the result of an OAuth code exchange or refresh.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds
	Email        string
}

// Credentials identifies the mailbox to read from. OAuth providers only
// use AccessToken; the IMAP variant additionally needs Username and Host.
type Credentials struct {
	AccessToken string
	Username    string
	Host        string
}

// Connector is the closed set of per-provider mailbox adapters. One
// implementation exists per provider; adding a provider means adding an
// implementation, not another string branch.
type Connector interface {
	Provider() Provider

	// AuthorizationURL builds the OAuth authorization redirect for the
	// given CSRF state nonce. Deterministic, no side effects.
	AuthorizationURL(state string) string

	// ExchangeCode trades an authorization code for tokens. Returns
	// *AuthExchangeError when the provider token endpoint refuses.
	ExchangeCode(ctx context.Context, code string) (*Tokens, error)

	// RefreshAccessToken obtains a fresh access token. Returns
	// *TokenRefreshError when the provider refuses.
	RefreshAccessToken(ctx context.Context, refreshToken string) (*Tokens, error)

	// ListRecentMessages fetches a bounded page of recent messages.
	// A failure fetching one message is skipped and logged, never
	// propagated as a hard failure of the listing.
	ListRecentMessages(ctx context.Context, creds Credentials, maxResults int64) ([]*Message, error)
}

// Registry holds the configured connectors, selected once at the boundary.
type Registry struct {
	connectors map[Provider]Connector
}

func NewRegistry(conns ...Connector) *Registry {
	r := &Registry{connectors: make(map[Provider]Connector)}
	for _, c := range conns {
		r.connectors[c.Provider()] = c
	}
	return r
}

func (r *Registry) Get(p Provider) (Connector, error) {
	c, ok := r.connectors[p]
	if !ok {
		return nil, fmt.Errorf("unsupported mailbox provider: %s", p)
	}
	return c, nil
}
