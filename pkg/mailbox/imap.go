package mailbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// IMAPConnector reads a generic mailbox over IMAP with an app password.
// It exists so that accounts without an OAuth API (self-hosted mail,
// smaller providers) can still feed the tracker; the OAuth methods of
// the Connector interface do not apply to it.
type IMAPConnector struct{}

func NewIMAPConnector() *IMAPConnector { return &IMAPConnector{} }

func (c *IMAPConnector) Provider() Provider { return ProviderIMAP }

func (c *IMAPConnector) AuthorizationURL(state string) string { return "" }

func (c *IMAPConnector) ExchangeCode(ctx context.Context, code string) (*Tokens, error) {
	return nil, &AuthExchangeError{Provider: ProviderIMAP, Err: errors.New("imap integrations use app passwords, not oauth")}
}

// RefreshAccessToken is a no-op: an app password does not expire.
func (c *IMAPConnector) RefreshAccessToken(ctx context.Context, refreshToken string) (*Tokens, error) {
	return &Tokens{
		AccessToken:  refreshToken,
		RefreshToken: refreshToken,
		ExpiresIn:    365 * 24 * 3600,
	}, nil
}

func (c *IMAPConnector) ListRecentMessages(ctx context.Context, creds Credentials, maxResults int64) ([]*Message, error) {
	if maxResults <= 0 {
		maxResults = 25
	}

	cl, err := client.DialTLS(creds.Host, nil)
	if err != nil {
		return nil, &FetchError{Provider: ProviderIMAP, Err: fmt.Errorf("dial %s: %v", creds.Host, err)}
	}
	defer cl.Logout()

	if err := cl.Login(creds.Username, creds.AccessToken); err != nil {
		return nil, &FetchError{Provider: ProviderIMAP, Err: fmt.Errorf("login: %v", err)}
	}

	mbox, err := cl.Select("INBOX", true)
	if err != nil {
		return nil, &FetchError{Provider: ProviderIMAP, Err: err}
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	from := uint32(1)
	if mbox.Messages > uint32(maxResults) {
		from = mbox.Messages - uint32(maxResults) + 1
	}
	seqset := new(imap.SeqSet)
	seqset.AddRange(from, mbox.Messages)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	ch := make(chan *imap.Message, maxResults)
	done := make(chan error, 1)
	go func() {
		done <- cl.Fetch(seqset, items, ch)
	}()

	var messages []*Message
	for msg := range ch {
		m, err := convertIMAPMessage(msg, section)
		if err != nil {
			log.Printf("[IMAP] Warning: skipping message %d: %v", msg.SeqNum, err)
			continue
		}
		messages = append(messages, m)
	}

	if err := <-done; err != nil {
		return nil, &FetchError{Provider: ProviderIMAP, Err: err}
	}

	return messages, nil
}

func convertIMAPMessage(msg *imap.Message, section *imap.BodySectionName) (*Message, error) {
	if msg.Envelope == nil {
		return nil, errors.New("message has no envelope")
	}

	sender := ""
	if len(msg.Envelope.From) > 0 {
		sender = msg.Envelope.From[0].Address()
		if name := msg.Envelope.From[0].PersonalName; name != "" {
			sender = fmt.Sprintf("%s <%s>", name, sender)
		}
	}

	body := ""
	if r := msg.GetBody(section); r != nil {
		body = imapBodyText(r)
	}

	snippet := strings.Join(strings.Fields(body), " ")
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}

	id := msg.Envelope.MessageId
	if id == "" {
		return nil, errors.New("message has no Message-Id")
	}

	return &Message{
		ID:         id,
		Subject:    msg.Envelope.Subject,
		Sender:     sender,
		ReceivedAt: msg.Envelope.Date,
		Snippet:    snippet,
		Body:       body,
	}, nil
}

// imapBodyText walks the MIME parts and returns the first text part,
// preferring text/plain over stripped text/html.
func imapBodyText(r io.Reader) string {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return ""
	}

	var plainBody, htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()
		data, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch contentType {
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

	if plainBody != "" {
		return plainBody
	}
	return stripHTML(htmlBody)
}
