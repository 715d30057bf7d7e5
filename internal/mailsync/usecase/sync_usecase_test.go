package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	appdomain "jobtrail-backend/internal/application/domain"
	"jobtrail-backend/internal/mailsync/domain"
	"jobtrail-backend/pkg/cache"
	"jobtrail-backend/pkg/mailbox"
)

// fakeIntegrationRepo is an in-memory IntegrationRepository
type fakeIntegrationRepo struct {
	integrations []*domain.MailboxIntegration
}

func (r *fakeIntegrationRepo) Upsert(integration *domain.MailboxIntegration) error {
	for i, existing := range r.integrations {
		if existing.UserID == integration.UserID && existing.Provider == integration.Provider {
			integration.ID = existing.ID
			r.integrations[i] = integration
			return nil
		}
	}
	if integration.ID == "" {
		integration.ID = fmt.Sprintf("integration-%d", len(r.integrations)+1)
	}
	r.integrations = append(r.integrations, integration)
	return nil
}

func (r *fakeIntegrationRepo) FindByID(id string) (*domain.MailboxIntegration, error) {
	for _, integration := range r.integrations {
		if integration.ID == id {
			return integration, nil
		}
	}
	return nil, nil
}

func (r *fakeIntegrationRepo) FindActiveByUserID(userID string) ([]*domain.MailboxIntegration, error) {
	var out []*domain.MailboxIntegration
	for _, integration := range r.integrations {
		if integration.UserID == userID && integration.Active {
			out = append(out, integration)
		}
	}
	return out, nil
}

func (r *fakeIntegrationRepo) FindActiveByEmail(provider, email string) (*domain.MailboxIntegration, error) {
	for _, integration := range r.integrations {
		if integration.Provider == provider && integration.Email == email && integration.Active {
			return integration, nil
		}
	}
	return nil, nil
}

func (r *fakeIntegrationRepo) Update(integration *domain.MailboxIntegration) error {
	for i, existing := range r.integrations {
		if existing.ID == integration.ID {
			r.integrations[i] = integration
			return nil
		}
	}
	return errors.New("integration not found")
}

func (r *fakeIntegrationRepo) Deactivate(userID, id string) error {
	for _, integration := range r.integrations {
		if integration.UserID == userID && integration.ID == id {
			integration.Active = false
			return nil
		}
	}
	return nil
}

func (r *fakeIntegrationRepo) ListActiveUserIDs() ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, integration := range r.integrations {
		if integration.Active && !seen[integration.UserID] {
			seen[integration.UserID] = true
			out = append(out, integration.UserID)
		}
	}
	return out, nil
}

// fakeMessageRepo enforces (user, message id) dedup like the unique index
// does. beforeLink, when set, runs ahead of each Link call so tests can
// interleave a competing writer.
type fakeMessageRepo struct {
	messages   []*domain.TrackedMessage
	beforeLink func()
}

func (r *fakeMessageRepo) CreateIfAbsent(msg *domain.TrackedMessage) (bool, error) {
	for _, existing := range r.messages {
		if existing.UserID == msg.UserID && existing.MessageID == msg.MessageID {
			return false, nil
		}
	}
	if msg.ID == "" {
		msg.ID = fmt.Sprintf("msg-%d", len(r.messages)+1)
	}
	r.messages = append(r.messages, msg)
	return true, nil
}

func (r *fakeMessageRepo) FindUnlinked(userID string) ([]*domain.TrackedMessage, error) {
	var out []*domain.TrackedMessage
	for _, msg := range r.messages {
		if msg.UserID == userID && msg.JobApplicationID == nil {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) FindByUserID(userID string, limit int) ([]*domain.TrackedMessage, error) {
	var out []*domain.TrackedMessage
	for _, msg := range r.messages {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) Link(id, applicationID string) (bool, error) {
	if r.beforeLink != nil {
		r.beforeLink()
	}
	for _, msg := range r.messages {
		if msg.ID == id && msg.JobApplicationID == nil {
			appID := applicationID
			msg.JobApplicationID = &appID
			return true, nil
		}
	}
	return false, nil
}

// fakeAppRepo records UpdateStatus calls for reconciliation assertions
type fakeAppRepo struct {
	apps        []*appdomain.JobApplication
	statusCalls int
}

func (r *fakeAppRepo) Create(app *appdomain.JobApplication) error {
	r.apps = append(r.apps, app)
	return nil
}

func (r *fakeAppRepo) FindByID(id string) (*appdomain.JobApplication, error) {
	for _, app := range r.apps {
		if app.ID == id {
			return app, nil
		}
	}
	return nil, nil
}

func (r *fakeAppRepo) FindByUserID(userID string, status *appdomain.ApplicationStatus) ([]*appdomain.JobApplication, error) {
	var out []*appdomain.JobApplication
	for _, app := range r.apps {
		if app.UserID != userID {
			continue
		}
		if status != nil && app.Status != *status {
			continue
		}
		out = append(out, app)
	}
	return out, nil
}

func (r *fakeAppRepo) Update(app *appdomain.JobApplication) error { return nil }

func (r *fakeAppRepo) UpdateStatus(id string, status appdomain.ApplicationStatus, at time.Time) error {
	r.statusCalls++
	for _, app := range r.apps {
		if app.ID == id {
			app.Status = status
			app.LastUpdated = at
		}
	}
	return nil
}

func (r *fakeAppRepo) Delete(userID, id string) error { return nil }

// fakeConnector is a scripted mailbox.Connector
type fakeConnector struct {
	provider     mailbox.Provider
	messages     []*mailbox.Message
	listErr      error
	listCalls    int
	lastCreds    mailbox.Credentials
	refreshCalls int
}

func (c *fakeConnector) Provider() mailbox.Provider { return c.provider }

func (c *fakeConnector) AuthorizationURL(state string) string {
	return "https://auth.example.com/authorize?state=" + state
}

func (c *fakeConnector) ExchangeCode(ctx context.Context, code string) (*mailbox.Tokens, error) {
	if code == "" {
		return nil, &mailbox.AuthExchangeError{Provider: c.provider, StatusCode: 400, Body: "missing code"}
	}
	return &mailbox.Tokens{
		AccessToken:  "access-" + code,
		RefreshToken: "refresh-" + code,
		ExpiresIn:    3600,
		Email:        "user@example.com",
	}, nil
}

func (c *fakeConnector) RefreshAccessToken(ctx context.Context, refreshToken string) (*mailbox.Tokens, error) {
	c.refreshCalls++
	return &mailbox.Tokens{
		AccessToken: "refreshed-token",
		ExpiresIn:   3600,
	}, nil
}

func (c *fakeConnector) ListRecentMessages(ctx context.Context, creds mailbox.Credentials, maxResults int64) ([]*mailbox.Message, error) {
	c.listCalls++
	c.lastCreds = creds
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.messages, nil
}

type testEnv struct {
	u               *syncUsecase
	integrationRepo *fakeIntegrationRepo
	messageRepo     *fakeMessageRepo
	appRepo         *fakeAppRepo
	stateCache      *cache.Cache
}

func newTestEnv(conns ...mailbox.Connector) *testEnv {
	integrationRepo := &fakeIntegrationRepo{}
	messageRepo := &fakeMessageRepo{}
	appRepo := &fakeAppRepo{}
	stateCache := cache.New(10*time.Minute, true)
	u := NewSyncUsecase(integrationRepo, messageRepo, appRepo,
		mailbox.NewRegistry(conns...), stateCache, 25, "").(*syncUsecase)
	return &testEnv{
		u:               u,
		integrationRepo: integrationRepo,
		messageRepo:     messageRepo,
		appRepo:         appRepo,
		stateCache:      stateCache,
	}
}

func gmailIntegration(userID string) *domain.MailboxIntegration {
	return &domain.MailboxIntegration{
		ID:             "int-gmail",
		UserID:         userID,
		Provider:       "gmail",
		Email:          "user@gmail.com",
		AccessToken:    "valid-token",
		TokenExpiresAt: time.Now().Add(time.Hour),
		Active:         true,
	}
}

func TestIngestThreshold(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		stored  bool
	}{
		{
			name:    "no signal at all",
			subject: "Weekly newsletter",
			body:    "Here is what happened this week.",
			stored:  false,
		},
		{
			name:    "status signal with low confidence",
			subject: "Interview invitation",
			body:    "We would like to talk to you.",
			stored:  true,
		},
		{
			name:    "extraction only stays below threshold",
			subject: "Greetings from acme",
			body:    "Nothing else here.",
			stored:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			integration := gmailIntegration("user-1")
			created, err := env.u.ingestMessage(integration, &mailbox.Message{
				ID:      "msg-a",
				Subject: tt.subject,
				Body:    tt.body,
			})
			if err != nil {
				t.Fatalf("ingestMessage: %v", err)
			}
			if created != tt.stored {
				t.Errorf("stored = %v, want %v", created, tt.stored)
			}
			if got := len(env.messageRepo.messages); (got == 1) != tt.stored {
				t.Errorf("row count = %d, want stored=%v", got, tt.stored)
			}
		})
	}
}

func TestIngestIdempotent(t *testing.T) {
	env := newTestEnv()
	integration := gmailIntegration("user-1")
	msg := &mailbox.Message{
		ID:      "msg-dup",
		Subject: "Interview invitation",
		Body:    "Please schedule a call with us.",
	}

	created, err := env.u.ingestMessage(integration, msg)
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if !created {
		t.Fatal("first ingest should create a row")
	}

	created, err = env.u.ingestMessage(integration, msg)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if created {
		t.Error("second ingest of the same message should be a no-op")
	}
	if len(env.messageRepo.messages) != 1 {
		t.Errorf("row count = %d, want 1", len(env.messageRepo.messages))
	}
}

func TestSyncUserPerIntegrationIsolation(t *testing.T) {
	gmail := &fakeConnector{
		provider: mailbox.ProviderGmail,
		listErr:  errors.New("token revoked"),
	}
	outlook := &fakeConnector{
		provider: mailbox.ProviderOutlook,
		messages: []*mailbox.Message{
			{ID: "m1", Subject: "Interview invitation", Body: "Let us schedule a call."},
		},
	}

	env := newTestEnv(gmail, outlook)
	env.integrationRepo.integrations = []*domain.MailboxIntegration{
		gmailIntegration("user-1"),
		{
			ID:             "int-outlook",
			UserID:         "user-1",
			Provider:       "outlook",
			AccessToken:    "valid-token",
			TokenExpiresAt: time.Now().Add(time.Hour),
			Active:         true,
		},
	}

	synced, err := env.u.SyncUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("SyncUser should not fail on a single integration error: %v", err)
	}
	if synced != 1 {
		t.Errorf("synced = %d, want 1", synced)
	}
	if outlook.listCalls != 1 {
		t.Errorf("outlook fetch attempts = %d, want 1", outlook.listCalls)
	}
}

func TestSyncRefreshesExpiredTokenBeforeUse(t *testing.T) {
	gmail := &fakeConnector{provider: mailbox.ProviderGmail}
	env := newTestEnv(gmail)

	integration := gmailIntegration("user-1")
	integration.AccessToken = "stale-token"
	integration.RefreshToken = "refresh-1"
	integration.TokenExpiresAt = time.Now().Add(-time.Minute)
	env.integrationRepo.integrations = []*domain.MailboxIntegration{integration}

	if _, err := env.u.SyncUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("SyncUser: %v", err)
	}

	if gmail.refreshCalls != 1 {
		t.Fatalf("refresh calls = %d, want 1", gmail.refreshCalls)
	}
	if gmail.lastCreds.AccessToken != "refreshed-token" {
		t.Errorf("fetch used token %q, want the refreshed one", gmail.lastCreds.AccessToken)
	}
	if integration.AccessToken != "refreshed-token" {
		t.Errorf("persisted token = %q, want refreshed-token", integration.AccessToken)
	}
}

func TestMatchAllFirstMatchWins(t *testing.T) {
	env := newTestEnv()
	env.appRepo.apps = []*appdomain.JobApplication{
		{ID: "app-1", UserID: "user-1", Company: "Acme", Position: "Engineer"},
		{ID: "app-2", UserID: "user-1", Company: "Acme", Position: "Engineer"},
	}
	env.messageRepo.messages = []*domain.TrackedMessage{
		{
			ID:             "msg-1",
			UserID:         "user-1",
			MessageID:      "m1",
			Subject:        "Interview with Acme",
			Body:           "We want to interview you for the Engineer opening at Acme.",
			InferredStatus: domain.EmailStatusInterview,
		},
	}

	matched, err := env.u.MatchAll("user-1")
	if err != nil {
		t.Fatalf("MatchAll: %v", err)
	}
	if matched != 1 {
		t.Fatalf("matched = %d, want 1", matched)
	}

	linked := env.messageRepo.messages[0].JobApplicationID
	if linked == nil || *linked != "app-1" {
		t.Errorf("linked to %v, want the earlier application app-1", linked)
	}
	if env.appRepo.apps[0].Status != appdomain.StatusInterview {
		t.Errorf("app-1 status = %s, want interview", env.appRepo.apps[0].Status)
	}
	if env.appRepo.apps[1].Status == appdomain.StatusInterview {
		t.Error("app-2 should not have been reconciled")
	}
}

func TestMatchAllSecondCallIsNoop(t *testing.T) {
	env := newTestEnv()
	env.appRepo.apps = []*appdomain.JobApplication{
		{ID: "app-1", UserID: "user-1", Company: "Acme", Position: "Engineer"},
	}
	env.messageRepo.messages = []*domain.TrackedMessage{
		{
			ID:             "msg-1",
			UserID:         "user-1",
			MessageID:      "m1",
			Subject:        "Acme Engineer interview",
			InferredStatus: domain.EmailStatusInterview,
		},
	}

	if matched, _ := env.u.MatchAll("user-1"); matched != 1 {
		t.Fatalf("first call matched = %d, want 1", matched)
	}
	callsAfterFirst := env.appRepo.statusCalls

	matched, err := env.u.MatchAll("user-1")
	if err != nil {
		t.Fatalf("second MatchAll: %v", err)
	}
	if matched != 0 {
		t.Errorf("second call matched = %d, want 0", matched)
	}
	if env.appRepo.statusCalls != callsAfterFirst {
		t.Error("second call should perform no reconciliation")
	}
}

func TestMatchAllSkipsConcurrentlyLinkedMessage(t *testing.T) {
	env := newTestEnv()
	env.appRepo.apps = []*appdomain.JobApplication{
		{ID: "app-1", UserID: "user-1", Company: "Acme", Position: "Engineer"},
	}
	env.messageRepo.messages = []*domain.TrackedMessage{
		{
			ID:             "msg-1",
			UserID:         "user-1",
			MessageID:      "m1",
			Subject:        "Acme Engineer interview",
			InferredStatus: domain.EmailStatusInterview,
		},
	}

	// Another pass claims the message between our unlinked read and the
	// link attempt
	env.messageRepo.beforeLink = func() {
		other := "app-other"
		env.messageRepo.messages[0].JobApplicationID = &other
	}

	matched, err := env.u.MatchAll("user-1")
	if err != nil {
		t.Fatalf("MatchAll: %v", err)
	}
	if matched != 0 {
		t.Errorf("matched = %d, want 0 when the link lost the race", matched)
	}
	if env.appRepo.statusCalls != 0 {
		t.Error("a lost link must not reconcile the application")
	}
	if got := env.messageRepo.messages[0].JobApplicationID; got == nil || *got != "app-other" {
		t.Errorf("link = %v, the winner's link must stand", got)
	}
}

func TestMatchAllRetroactiveMatch(t *testing.T) {
	env := newTestEnv()
	env.messageRepo.messages = []*domain.TrackedMessage{
		{
			ID:        "msg-1",
			UserID:    "user-1",
			MessageID: "m1",
			Subject:   "Globex Analyst interview",
		},
	}

	if matched, _ := env.u.MatchAll("user-1"); matched != 0 {
		t.Fatal("no applications yet, nothing should match")
	}

	env.appRepo.apps = []*appdomain.JobApplication{
		{ID: "app-1", UserID: "user-1", Company: "Globex", Position: "Analyst"},
	}

	matched, err := env.u.MatchAll("user-1")
	if err != nil {
		t.Fatalf("MatchAll: %v", err)
	}
	if matched != 1 {
		t.Errorf("matched = %d, want 1 after the application was created", matched)
	}
}

func TestReconcileAdvancesTimestampOnSameStatus(t *testing.T) {
	env := newTestEnv()
	before := time.Now().Add(-time.Hour)
	app := &appdomain.JobApplication{
		ID:          "app-1",
		UserID:      "user-1",
		Company:     "Acme",
		Position:    "Engineer",
		Status:      appdomain.StatusInterview,
		LastUpdated: before,
	}
	env.appRepo.apps = []*appdomain.JobApplication{app}

	msg := &domain.TrackedMessage{
		ID:             "msg-1",
		UserID:         "user-1",
		InferredStatus: domain.EmailStatusInterview,
	}

	if err := env.u.applyStatus(app, msg); err != nil {
		t.Fatalf("applyStatus: %v", err)
	}

	if app.Status != appdomain.StatusInterview {
		t.Errorf("status = %s, want interview", app.Status)
	}
	if !app.LastUpdated.After(before) {
		t.Error("last_updated should advance even when the status value is unchanged")
	}
}

func TestReconcileNotifiesObserver(t *testing.T) {
	env := newTestEnv()
	app := &appdomain.JobApplication{ID: "app-1", UserID: "user-1", Company: "Acme", Position: "Engineer"}
	env.appRepo.apps = []*appdomain.JobApplication{app}

	var gotUser string
	var gotStatus appdomain.ApplicationStatus
	env.u.SetNotifier(notifierFunc(func(userID string, app *appdomain.JobApplication, msg *domain.TrackedMessage) {
		gotUser = userID
		gotStatus = app.Status
	}))

	msg := &domain.TrackedMessage{ID: "msg-1", UserID: "user-1", InferredStatus: domain.EmailStatusOffer}
	if err := env.u.applyStatus(app, msg); err != nil {
		t.Fatalf("applyStatus: %v", err)
	}

	if gotUser != "user-1" {
		t.Errorf("notified user = %q, want user-1", gotUser)
	}
	if gotStatus != appdomain.StatusOffer {
		t.Errorf("notified status = %s, want offer", gotStatus)
	}
}

type notifierFunc func(userID string, app *appdomain.JobApplication, msg *domain.TrackedMessage)

func (f notifierFunc) ApplicationStatusChanged(userID string, app *appdomain.JobApplication, msg *domain.TrackedMessage) {
	f(userID, app, msg)
}

func TestCompleteAuthorizationValidatesState(t *testing.T) {
	gmail := &fakeConnector{provider: mailbox.ProviderGmail}
	env := newTestEnv(gmail)
	ctx := context.Background()

	_, state, err := env.u.BeginAuthorization("gmail")
	if err != nil {
		t.Fatalf("BeginAuthorization: %v", err)
	}

	if _, err := env.u.CompleteAuthorization(ctx, "user-1", "gmail", "forged-state", "code-1"); err == nil {
		t.Error("a state nonce we never issued should be rejected")
	}

	integration, err := env.u.CompleteAuthorization(ctx, "user-1", "gmail", state, "code-1")
	if err != nil {
		t.Fatalf("CompleteAuthorization: %v", err)
	}
	if integration.Email != "user@example.com" {
		t.Errorf("integration email = %q, want user@example.com", integration.Email)
	}
	if integration.AccessToken != "access-code-1" {
		t.Errorf("access token = %q, want access-code-1", integration.AccessToken)
	}

	// The nonce is one-shot
	if _, err := env.u.CompleteAuthorization(ctx, "user-1", "gmail", state, "code-2"); err == nil {
		t.Error("a replayed state nonce should be rejected")
	}
}

func TestCompleteAuthorizationUpsertsPerProvider(t *testing.T) {
	gmail := &fakeConnector{provider: mailbox.ProviderGmail}
	env := newTestEnv(gmail)
	ctx := context.Background()

	for _, code := range []string{"code-1", "code-2"} {
		_, state, err := env.u.BeginAuthorization("gmail")
		if err != nil {
			t.Fatalf("BeginAuthorization: %v", err)
		}
		if _, err := env.u.CompleteAuthorization(ctx, "user-1", "gmail", state, code); err != nil {
			t.Fatalf("CompleteAuthorization(%s): %v", code, err)
		}
	}

	if len(env.integrationRepo.integrations) != 1 {
		t.Fatalf("integration rows = %d, want 1 (reconnect updates in place)", len(env.integrationRepo.integrations))
	}
	if got := env.integrationRepo.integrations[0].AccessToken; got != "access-code-2" {
		t.Errorf("access token = %q, want the reconnect's token", got)
	}
}
