package domain

import "time"

// User is an account tracking a job search. Headline and Location are
// the searcher's profile ("Backend Engineer", "Berlin"), shown on the
// dashboard and editable via the profile endpoint.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Password  string    `json:"-"` // Never return password in JSON
	Name      string    `json:"name"`
	Headline  string    `json:"headline,omitempty"`
	Location  string    `json:"location,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Provider  string    `json:"provider"` // "email" or "google"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefreshToken is one device's long-lived session. A user holds one row
// per signed-in device; expired rows are swept on the next sign-in.
type RefreshToken struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index"`
	ExpiresAt time.Time `json:"expires_at"`
}
