package mailbox

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailConnector reads a Gmail mailbox through the Gmail REST API.
type GmailConnector struct {
	config *oauth2.Config
}

func NewGmailConnector(clientID, clientSecret, redirectURI string) *GmailConnector {
	return &GmailConnector{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes: []string{
				gmail.GmailReadonlyScope,
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (c *GmailConnector) Provider() Provider { return ProviderGmail }

func (c *GmailConnector) AuthorizationURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (c *GmailConnector) ExchangeCode(ctx context.Context, code string) (*Tokens, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, authExchangeError(ProviderGmail, err)
	}
	if token.AccessToken == "" {
		return nil, &AuthExchangeError{Provider: ProviderGmail, Err: errors.New("token response missing access token")}
	}

	email, err := c.profileEmail(ctx, token.AccessToken)
	if err != nil {
		return nil, &AuthExchangeError{Provider: ProviderGmail, Err: err}
	}

	return &Tokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    expiresIn(token.Expiry),
		Email:        email,
	}, nil
}

func (c *GmailConnector) RefreshAccessToken(ctx context.Context, refreshToken string) (*Tokens, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	src := c.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, tokenRefreshError(ProviderGmail, err)
	}

	return &Tokens{
		AccessToken:  token.AccessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn(token.Expiry),
	}, nil
}

func (c *GmailConnector) ListRecentMessages(ctx context.Context, creds Credentials, maxResults int64) ([]*Message, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	srv, err := c.service(ctx, creds.AccessToken)
	if err != nil {
		return nil, &FetchError{Provider: ProviderGmail, Err: err}
	}

	if maxResults <= 0 {
		maxResults = 25
	}
	listResp, err := srv.Users.Messages.List("me").MaxResults(maxResults).Do()
	if err != nil {
		return nil, &FetchError{Provider: ProviderGmail, Err: err}
	}

	messages := make([]*Message, 0, len(listResp.Messages))
	for _, m := range listResp.Messages {
		full, err := srv.Users.Messages.Get("me", m.Id).Format("full").Do()
		if err != nil {
			// Per-message degradation: skip and keep going
			log.Printf("[Gmail] Warning: skipping message %s: %v", m.Id, err)
			continue
		}
		messages = append(messages, convertGmailMessage(full))
	}

	return messages, nil
}

// Watch subscribes the mailbox to Gmail push notifications on the given
// Pub/Sub topic. Any existing watch is stopped first; only one push client
// is allowed per user.
func (c *GmailConnector) Watch(ctx context.Context, accessToken, topicName string) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	srv, err := c.service(ctx, accessToken)
	if err != nil {
		return err
	}

	_ = srv.Users.Stop("me").Do()

	req := &gmail.WatchRequest{
		TopicName: topicName,
		LabelIds:  []string{"INBOX"},
	}
	resp, err := srv.Users.Watch("me", req).Do()
	if err != nil {
		return fmt.Errorf("unable to watch mailbox: %v", err)
	}
	log.Printf("[Gmail] Watch started, expiration: %d, historyId: %d", resp.Expiration, resp.HistoryId)
	return nil
}

func (c *GmailConnector) service(ctx context.Context, accessToken string) (*gmail.Service, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	srv, err := gmail.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}
	return srv, nil
}

func (c *GmailConnector) profileEmail(ctx context.Context, accessToken string) (string, error) {
	srv, err := c.service(ctx, accessToken)
	if err != nil {
		return "", err
	}
	profile, err := srv.Users.GetProfile("me").Do()
	if err != nil {
		return "", fmt.Errorf("unable to read Gmail profile: %v", err)
	}
	return profile.EmailAddress, nil
}

func convertGmailMessage(msg *gmail.Message) *Message {
	return &Message{
		ID:         msg.Id,
		Subject:    gmailHeader(msg.Payload, "Subject"),
		Sender:     gmailHeader(msg.Payload, "From"),
		ReceivedAt: time.Unix(msg.InternalDate/1000, 0),
		Snippet:    msg.Snippet,
		Body:       gmailBodyText(msg.Payload),
	}
}

func gmailHeader(payload *gmail.MessagePart, name string) string {
	if payload == nil {
		return ""
	}
	for _, h := range payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

// gmailBodyText extracts a plain-text body, preferring text/plain parts
// and falling back to tag-stripped HTML.
func gmailBodyText(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		if data, err := base64.URLEncoding.DecodeString(payload.Body.Data); err == nil {
			if payload.MimeType == "text/html" {
				return stripHTML(string(data))
			}
			return string(data)
		}
	}

	var plainBody, htmlBody string
	var findBody func(parts []*gmail.MessagePart)
	findBody = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.Body != nil && part.Body.Data != "" {
				data, err := base64.URLEncoding.DecodeString(part.Body.Data)
				if err == nil {
					switch part.MimeType {
					case "text/plain":
						if plainBody == "" {
							plainBody = string(data)
						}
					case "text/html":
						if htmlBody == "" {
							htmlBody = string(data)
						}
					}
				}
			}
			if len(part.Parts) > 0 {
				findBody(part.Parts)
			}
		}
	}
	findBody(payload.Parts)

	if plainBody != "" {
		return plainBody
	}
	return stripHTML(htmlBody)
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

func stripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&quot;", "\"")
	return strings.Join(strings.Fields(s), " ")
}

func expiresIn(expiry time.Time) int64 {
	if expiry.IsZero() {
		return 3600
	}
	secs := int64(time.Until(expiry).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}

// authExchangeError maps an oauth2 failure, surfacing the upstream
// status and body when the library captured them.
func authExchangeError(p Provider, err error) *AuthExchangeError {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) && rErr.Response != nil {
		return &AuthExchangeError{Provider: p, StatusCode: rErr.Response.StatusCode, Body: string(rErr.Body), Err: err}
	}
	return &AuthExchangeError{Provider: p, Err: err}
}

func tokenRefreshError(p Provider, err error) *TokenRefreshError {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) && rErr.Response != nil {
		return &TokenRefreshError{Provider: p, StatusCode: rErr.Response.StatusCode, Body: string(rErr.Body), Err: err}
	}
	return &TokenRefreshError{Provider: p, Err: err}
}
