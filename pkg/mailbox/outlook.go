package mailbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// OutlookConnector reads an Outlook mailbox through the Microsoft Graph API.
type OutlookConnector struct {
	config  *oauth2.Config
	client  *http.Client
	baseURL string
}

func NewOutlookConnector(clientID, clientSecret, redirectURI, tenantID string) *OutlookConnector {
	if tenantID == "" {
		tenantID = "common"
	}
	return &OutlookConnector{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes: []string{
				"https://graph.microsoft.com/Mail.Read",
				"https://graph.microsoft.com/User.Read",
				"offline_access",
			},
			Endpoint: microsoft.AzureADEndpoint(tenantID),
		},
		client:  &http.Client{Timeout: requestTimeout},
		baseURL: graphBaseURL,
	}
}

func (c *OutlookConnector) Provider() Provider { return ProviderOutlook }

func (c *OutlookConnector) AuthorizationURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (c *OutlookConnector) ExchangeCode(ctx context.Context, code string) (*Tokens, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, authExchangeError(ProviderOutlook, err)
	}
	if token.AccessToken == "" {
		return nil, &AuthExchangeError{Provider: ProviderOutlook, Err: errors.New("token response missing access token")}
	}

	email, err := c.profileEmail(ctx, token.AccessToken)
	if err != nil {
		return nil, &AuthExchangeError{Provider: ProviderOutlook, Err: err}
	}

	return &Tokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    expiresIn(token.Expiry),
		Email:        email,
	}, nil
}

func (c *OutlookConnector) RefreshAccessToken(ctx context.Context, refreshToken string) (*Tokens, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	src := c.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, tokenRefreshError(ProviderOutlook, err)
	}

	newRefresh := token.RefreshToken
	if newRefresh == "" {
		newRefresh = refreshToken
	}

	return &Tokens{
		AccessToken:  token.AccessToken,
		RefreshToken: newRefresh,
		ExpiresIn:    expiresIn(token.Expiry),
	}, nil
}

func (c *OutlookConnector) ListRecentMessages(ctx context.Context, creds Credentials, maxResults int64) ([]*Message, error) {
	if maxResults <= 0 {
		maxResults = 25
	}

	params := url.Values{}
	params.Set("$top", fmt.Sprintf("%d", maxResults))
	params.Set("$orderby", "receivedDateTime desc")
	params.Set("$select", "id,subject,from,receivedDateTime,bodyPreview,body")

	var resp struct {
		Value []graphMessage `json:"value"`
	}
	if err := c.get(ctx, creds.AccessToken, "/me/messages?"+params.Encode(), &resp); err != nil {
		return nil, &FetchError{Provider: ProviderOutlook, Err: err}
	}

	messages := make([]*Message, 0, len(resp.Value))
	for i := range resp.Value {
		msg, err := convertGraphMessage(&resp.Value[i])
		if err != nil {
			log.Printf("[Outlook] Warning: skipping message %s: %v", resp.Value[i].ID, err)
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

func (c *OutlookConnector) profileEmail(ctx context.Context, accessToken string) (string, error) {
	var profile struct {
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := c.get(ctx, accessToken, "/me", &profile); err != nil {
		return "", err
	}
	if profile.Mail != "" {
		return profile.Mail, nil
	}
	return profile.UserPrincipalName, nil
}

func (c *OutlookConnector) get(ctx context.Context, accessToken, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("graph API status %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

type graphMessage struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    struct {
		EmailAddress struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
	ReceivedDateTime string `json:"receivedDateTime"`
	BodyPreview      string `json:"bodyPreview"`
	Body             struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
}

func convertGraphMessage(m *graphMessage) (*Message, error) {
	if m.ID == "" {
		return nil, errors.New("message has no id")
	}

	receivedAt, err := time.Parse(time.RFC3339, m.ReceivedDateTime)
	if err != nil {
		return nil, fmt.Errorf("bad receivedDateTime %q: %v", m.ReceivedDateTime, err)
	}

	sender := m.From.EmailAddress.Address
	if m.From.EmailAddress.Name != "" {
		sender = fmt.Sprintf("%s <%s>", m.From.EmailAddress.Name, m.From.EmailAddress.Address)
	}

	body := m.Body.Content
	if m.Body.ContentType == "html" {
		body = stripHTML(body)
	}

	return &Message{
		ID:         m.ID,
		Subject:    m.Subject,
		Sender:     sender,
		ReceivedAt: receivedAt,
		Snippet:    m.BodyPreview,
		Body:       body,
	}, nil
}
