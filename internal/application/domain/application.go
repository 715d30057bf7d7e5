package domain

import "time"

// ApplicationStatus represents where an application sits in the pipeline
type ApplicationStatus string

const (
	StatusSaved     ApplicationStatus = "saved"
	StatusApplied   ApplicationStatus = "applied"
	StatusInterview ApplicationStatus = "interview"
	StatusOffer     ApplicationStatus = "offer"
	StatusRejected  ApplicationStatus = "rejected"
)

// ValidStatus reports whether s is a known pipeline status
func ValidStatus(s ApplicationStatus) bool {
	switch s {
	case StatusSaved, StatusApplied, StatusInterview, StatusOffer, StatusRejected:
		return true
	}
	return false
}

// JobApplication is one tracked job posting. LastUpdated is bumped on
// every status reconciliation, including ones that leave the status
// value unchanged.
type JobApplication struct {
	ID          string            `json:"id" gorm:"primaryKey"`
	UserID      string            `json:"user_id" gorm:"index;not null"`
	Company     string            `json:"company" gorm:"not null"`
	Position    string            `json:"position" gorm:"not null"`
	Location    string            `json:"location,omitempty"`
	URL         string            `json:"url,omitempty"`
	SalaryNote  string            `json:"salary_note,omitempty"`
	Notes       string            `json:"notes,omitempty" gorm:"type:text"`
	Status      ApplicationStatus `json:"status" gorm:"default:saved"`
	LastUpdated time.Time         `json:"last_updated"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// DocumentKind classifies an attached document
type DocumentKind string

const (
	DocumentResume      DocumentKind = "resume"
	DocumentCoverLetter DocumentKind = "cover_letter"
	DocumentOther       DocumentKind = "other"
)

// Document is a file attached to an application. Only metadata lives
// here; the file itself sits behind the URL.
type Document struct {
	ID            string       `json:"id" gorm:"primaryKey"`
	UserID        string       `json:"user_id" gorm:"index;not null"`
	ApplicationID string       `json:"application_id" gorm:"index;not null"`
	Name          string       `json:"name" gorm:"not null"`
	Kind          DocumentKind `json:"kind" gorm:"default:other"`
	URL           string       `json:"url"`
	CreatedAt     time.Time    `json:"created_at"`
}

// InterviewEvent is a scheduled interview for an application
type InterviewEvent struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	UserID        string     `json:"user_id" gorm:"index;not null"`
	ApplicationID string     `json:"application_id" gorm:"index;not null"`
	Title         string     `json:"title" gorm:"not null"`
	Location      string     `json:"location,omitempty"` // place or meeting link
	StartsAt      time.Time  `json:"starts_at"`
	ReminderAt    *time.Time `json:"reminder_at,omitempty"`
	ReminderSent  bool       `json:"reminder_sent" gorm:"default:false"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
