package domain

import "time"

// EmailJobStatus is a job-application status inferred from an email.
// The empty string means the classifier found no status signal.
type EmailJobStatus string

const (
	EmailStatusApplied   EmailJobStatus = "applied"
	EmailStatusInterview EmailJobStatus = "interview"
	EmailStatusRejected  EmailJobStatus = "rejected"
	EmailStatusOffer     EmailJobStatus = "offer"
)

// TrackedMessage is one ingested mailbox message considered job-related.
// Rows are immutable after classification except for JobApplicationID,
// which transitions exactly once from empty to a value; unlinking is not
// supported. The (user_id, message_id) unique index makes re-ingestion
// of the same provider message a no-op.
type TrackedMessage struct {
	ID                string         `json:"id" gorm:"primaryKey"`
	UserID            string         `json:"user_id" gorm:"index:idx_user_message,unique;not null"`
	IntegrationID     string         `json:"integration_id" gorm:"index;not null"`
	MessageID         string         `json:"message_id" gorm:"index:idx_user_message,unique;not null"` // provider-native id
	Subject           string         `json:"subject"`
	Sender            string         `json:"sender"`
	ReceivedAt        time.Time      `json:"received_at" gorm:"index"`
	Snippet           string         `json:"snippet"`
	Body              string         `json:"-" gorm:"type:text"`
	InferredStatus    EmailJobStatus `json:"inferred_status,omitempty"`
	Confidence        float64        `json:"confidence"`
	ExtractedCompany  string         `json:"extracted_company,omitempty"`
	ExtractedPosition string         `json:"extracted_position,omitempty"`
	JobApplicationID  *string        `json:"job_application_id,omitempty" gorm:"index"`
	CreatedAt         time.Time      `json:"created_at"`
}
