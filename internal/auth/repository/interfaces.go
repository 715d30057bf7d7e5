package repository

import (
	authdomain "jobtrail-backend/internal/auth/domain"
)

// UserRepository defines data access for users and device sessions
type UserRepository interface {
	Create(user *authdomain.User) error
	FindByEmail(email string) (*authdomain.User, error)
	FindByID(id string) (*authdomain.User, error)
	Update(user *authdomain.User) error

	FindRefreshToken(token string) (*authdomain.RefreshToken, error)
	DeleteRefreshToken(token string) error
	DeleteRefreshTokensByUser(userID string) error
	ReplaceRefreshToken(token *authdomain.RefreshToken) error
}
