package usecase

import (
	"fmt"
	"testing"
	"time"

	authdomain "jobtrail-backend/internal/auth/domain"
	authdto "jobtrail-backend/internal/auth/dto"
	"jobtrail-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	users  []*authdomain.User
	tokens []*authdomain.RefreshToken
	nextID int
}

func (r *fakeUserRepo) Create(user *authdomain.User) error {
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*authdomain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(id string) (*authdomain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(user *authdomain.User) error { return nil }

func (r *fakeUserRepo) FindRefreshToken(token string) (*authdomain.RefreshToken, error) {
	for _, t := range r.tokens {
		if t.Token == token {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) DeleteRefreshToken(token string) error {
	for i, t := range r.tokens {
		if t.Token == token {
			r.tokens = append(r.tokens[:i], r.tokens[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeUserRepo) DeleteRefreshTokensByUser(userID string) error {
	var kept []*authdomain.RefreshToken
	for _, t := range r.tokens {
		if t.UserID != userID {
			kept = append(kept, t)
		}
	}
	r.tokens = kept
	return nil
}

func (r *fakeUserRepo) ReplaceRefreshToken(token *authdomain.RefreshToken) error {
	var kept []*authdomain.RefreshToken
	for _, t := range r.tokens {
		if t.UserID != token.UserID || t.ExpiresAt.After(time.Now()) {
			kept = append(kept, t)
		}
	}
	r.tokens = append(kept, token)
	return nil
}

func newAuthEnv() (*authUsecase, *fakeUserRepo) {
	repo := &fakeUserRepo{}
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 7 * 24 * time.Hour,
	}
	return NewAuthUsecase(repo, cfg).(*authUsecase), repo
}

func TestRegisterThenLogin(t *testing.T) {
	u, repo := newAuthEnv()

	tokens, err := u.Register(&authdto.RegisterRequest{
		Email:    "sam@example.com",
		Password: "hunter22",
		Name:     "Sam",
		Headline: "Backend Engineer",
		Location: "Berlin",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if tokens.User.Headline != "Backend Engineer" || tokens.User.Location != "Berlin" {
		t.Errorf("profile fields not stored: %+v", tokens.User)
	}
	if tokens.User.Password == "hunter22" {
		t.Error("password stored in plaintext")
	}

	if _, err := u.Register(&authdto.RegisterRequest{Email: "sam@example.com", Password: "hunter22", Name: "Sam"}); err == nil {
		t.Error("duplicate email should be rejected")
	}

	if _, err := u.Login(&authdto.LoginRequest{Email: "sam@example.com", Password: "wrong-pass"}); err == nil {
		t.Error("wrong password should be rejected")
	}

	session, err := u.Login(&authdto.LoginRequest{Email: "sam@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(repo.tokens) != 2 {
		t.Errorf("sessions on record = %d, want one per sign-in", len(repo.tokens))
	}

	user, err := u.ValidateToken(session.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if user.Email != "sam@example.com" {
		t.Errorf("validated user = %q", user.Email)
	}
}

func TestValidateTokenRejectsForeignIssuer(t *testing.T) {
	u, repo := newAuthEnv()
	repo.users = []*authdomain.User{{ID: "user-1", Email: "sam@example.com"}}

	// Signed with our secret but minted elsewhere
	claims := jwt.MapClaims{
		"user_id": "user-1",
		"iss":     "someone-else",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := u.ValidateToken(foreign); err == nil {
		t.Error("token without our issuer claim should be rejected")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	u, _ := newAuthEnv()

	session, err := u.Register(&authdto.RegisterRequest{Email: "sam@example.com", Password: "hunter22", Name: "Sam"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	renewed, err := u.RefreshToken(session.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if renewed.User.ID != session.User.ID {
		t.Errorf("refreshed session belongs to %q, want %q", renewed.User.ID, session.User.ID)
	}

	// A logged-out token no longer refreshes
	if err := u.Logout(session.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := u.RefreshToken(session.RefreshToken); err == nil {
		t.Error("refresh after logout should be rejected")
	}
}

func TestLogoutAllClearsEverySession(t *testing.T) {
	u, repo := newAuthEnv()

	session, err := u.Register(&authdto.RegisterRequest{Email: "sam@example.com", Password: "hunter22", Name: "Sam"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := u.Login(&authdto.LoginRequest{Email: "sam@example.com", Password: "hunter22"}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := u.LogoutAll(session.User.ID); err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}
	if len(repo.tokens) != 0 {
		t.Errorf("sessions on record = %d, want 0", len(repo.tokens))
	}
}

func TestUpdateProfilePartialEdit(t *testing.T) {
	u, _ := newAuthEnv()

	session, err := u.Register(&authdto.RegisterRequest{
		Email:    "sam@example.com",
		Password: "hunter22",
		Name:     "Sam",
		Headline: "Backend Engineer",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	location := "Amsterdam"
	user, err := u.UpdateProfile(session.User.ID, &authdto.UpdateProfileRequest{Location: &location})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if user.Location != "Amsterdam" {
		t.Errorf("location = %q, want Amsterdam", user.Location)
	}
	if user.Headline != "Backend Engineer" {
		t.Errorf("headline = %q, unset fields must be untouched", user.Headline)
	}

	if _, err := u.UpdateProfile("no-such-user", &authdto.UpdateProfileRequest{}); err == nil {
		t.Error("unknown user should be rejected")
	}
}
