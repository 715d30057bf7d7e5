package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	authdomain "jobtrail-backend/internal/auth/domain"
	authdto "jobtrail-backend/internal/auth/dto"
	"jobtrail-backend/internal/auth/repository"
	"jobtrail-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenIssuer marks tokens minted by this backend; tokens without the
// claim (or with someone else's) are rejected on validation.
const tokenIssuer = "jobtrail"

const googleTokeninfoURL = "https://oauth2.googleapis.com/tokeninfo?id_token=%s"

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo   repository.UserRepository
	config     *config.Config
	httpClient *http.Client
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo:   userRepo,
		config:     cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (u *authUsecase) Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("invalid email or password")
	}

	if user.Provider != "email" {
		return nil, errors.New("this account was created with Google Sign-In")
	}
	if !repository.CheckPasswordHash(req.Password, user.Password) {
		return nil, errors.New("invalid email or password")
	}

	return u.issueSession(user)
}

func (u *authUsecase) Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error) {
	existing, err := u.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("email already registered")
	}

	hashedPassword, err := repository.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &authdomain.User{
		Email:    req.Email,
		Password: hashedPassword,
		Name:     req.Name,
		Headline: req.Headline,
		Location: req.Location,
		Provider: "email",
	}
	if err := u.userRepo.Create(user); err != nil {
		return nil, err
	}

	return u.issueSession(user)
}

// googleTokenInfo is the subset of Google's tokeninfo response we read.
// EmailVerified comes back as the string "true" or "false".
type googleTokenInfo struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	EmailVerified string `json:"email_verified"`
	Sub           string `json:"sub"`
}

func (u *authUsecase) GoogleSignIn(idToken string) (*authdto.TokenResponse, error) {
	resp, err := u.httpClient.Get(fmt.Sprintf(googleTokeninfoURL, idToken))
	if err != nil {
		return nil, fmt.Errorf("failed to verify Google token: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to verify Google token: status %d, body: %s", resp.StatusCode, string(body))
	}

	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode Google token info: %v", err)
	}
	if info.EmailVerified != "true" {
		return nil, errors.New("google email is not verified")
	}

	user, err := u.userRepo.FindByEmail(info.Email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &authdomain.User{
			Email:     info.Email,
			Name:      info.Name,
			AvatarURL: info.Picture,
			Provider:  "google",
		}
		if err := u.userRepo.Create(user); err != nil {
			return nil, err
		}
	} else {
		// Profile fields the user set here win over Google's
		user.Name = info.Name
		user.AvatarURL = info.Picture
		if err := u.userRepo.Update(user); err != nil {
			return nil, err
		}
	}

	return u.issueSession(user)
}

func (u *authUsecase) RefreshToken(refreshToken string) (*authdto.TokenResponse, error) {
	claims, err := u.parseClaims(refreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	// The token must still be on record; logout removes it
	stored, err := u.userRepo.FindRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("refresh token expired")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	return u.issueSession(user)
}

func (u *authUsecase) Logout(refreshToken string) error {
	return u.userRepo.DeleteRefreshToken(refreshToken)
}

func (u *authUsecase) LogoutAll(userID string) error {
	return u.userRepo.DeleteRefreshTokensByUser(userID)
}

func (u *authUsecase) UpdateProfile(userID string, req *authdto.UpdateProfileRequest) (*authdomain.User, error) {
	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Headline != nil {
		user.Headline = *req.Headline
	}
	if req.Location != nil {
		user.Location = *req.Location
	}

	if err := u.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// issueSession mints an access/refresh pair and records the refresh
// token, sweeping the user's expired ones.
func (u *authUsecase) issueSession(user *authdomain.User) (*authdto.TokenResponse, error) {
	accessToken, err := u.signClaims(jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"iss":     tokenIssuer,
		"exp":     time.Now().Add(u.config.JWTAccessExpiry).Unix(),
		"iat":     time.Now().Unix(),
	})
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.signClaims(jwt.MapClaims{
		"user_id":  user.ID,
		"token_id": uuid.New().String(),
		"iss":      tokenIssuer,
		"exp":      time.Now().Add(u.config.JWTRefreshExpiry).Unix(),
		"iat":      time.Now().Unix(),
	})
	if err != nil {
		return nil, err
	}

	err = u.userRepo.ReplaceRefreshToken(&authdomain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(u.config.JWTRefreshExpiry),
	})
	if err != nil {
		return nil, err
	}

	return &authdto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (u *authUsecase) signClaims(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

// parseClaims verifies the signature and our issuer claim
func (u *authUsecase) parseClaims(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	if issuer, _ := claims["iss"].(string); issuer != tokenIssuer {
		return nil, errors.New("invalid token issuer")
	}
	return claims, nil
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.User, error) {
	claims, err := u.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	return user, nil
}
