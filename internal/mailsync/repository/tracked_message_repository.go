package repository

import (
	"time"

	"jobtrail-backend/internal/mailsync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// trackedMessageRepository implements TrackedMessageRepository interface
type trackedMessageRepository struct {
	db *gorm.DB
}

// NewTrackedMessageRepository creates a new instance of trackedMessageRepository
func NewTrackedMessageRepository(db *gorm.DB) TrackedMessageRepository {
	return &trackedMessageRepository{
		db: db,
	}
}

// CreateIfAbsent inserts the message, relying on the (user_id, message_id)
// unique index to resolve races between overlapping sync calls: the
// loser's insert affects zero rows and is reported as not created.
func (r *trackedMessageRepository) CreateIfAbsent(msg *domain.TrackedMessage) (bool, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.CreatedAt = time.Now()

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "message_id"}},
		DoNothing: true,
	}).Create(msg)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *trackedMessageRepository) FindUnlinked(userID string) ([]*domain.TrackedMessage, error) {
	var msgs []*domain.TrackedMessage
	err := r.db.Where("user_id = ? AND job_application_id IS NULL", userID).
		Order("received_at ASC").Find(&msgs).Error
	return msgs, err
}

func (r *trackedMessageRepository) FindByUserID(userID string, limit int) ([]*domain.TrackedMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	var msgs []*domain.TrackedMessage
	err := r.db.Where("user_id = ?", userID).
		Order("received_at DESC").Limit(limit).Find(&msgs).Error
	return msgs, err
}

// Link sets job_application_id exactly once. The IS NULL guard makes the
// transition one-way; when another pass already linked the message the
// update touches zero rows and that is reported back.
func (r *trackedMessageRepository) Link(id, applicationID string) (bool, error) {
	result := r.db.Model(&domain.TrackedMessage{}).
		Where("id = ? AND job_application_id IS NULL", id).
		Update("job_application_id", applicationID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
