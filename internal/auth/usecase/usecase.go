package usecase

import (
	authdomain "jobtrail-backend/internal/auth/domain"
	authdto "jobtrail-backend/internal/auth/dto"
)

// AuthUsecase defines the interface for authentication business logic
type AuthUsecase interface {
	// Login authenticates an email/password user
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)

	// Register creates a new email/password account
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)

	// GoogleSignIn verifies a Google ID token and signs the user in,
	// creating the account on first sign-in
	GoogleSignIn(idToken string) (*authdto.TokenResponse, error)

	// RefreshToken exchanges a valid refresh token for a new token pair
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)

	// Logout invalidates one device's refresh token
	Logout(refreshToken string) error

	// LogoutAll invalidates every device session of the user
	LogoutAll(userID string) error

	// UpdateProfile applies partial profile edits and returns the user
	UpdateProfile(userID string, req *authdto.UpdateProfileRequest) (*authdomain.User, error)

	// ValidateToken verifies an access token and loads its user
	ValidateToken(tokenString string) (*authdomain.User, error)
}
