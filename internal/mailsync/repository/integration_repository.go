package repository

import (
	"errors"
	"time"

	"jobtrail-backend/internal/mailsync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// integrationRepository implements IntegrationRepository interface
type integrationRepository struct {
	db *gorm.DB
}

// NewIntegrationRepository creates a new instance of integrationRepository
func NewIntegrationRepository(db *gorm.DB) IntegrationRepository {
	return &integrationRepository{
		db: db,
	}
}

// Upsert inserts the integration or, when the (user_id, provider) pair
// already exists, updates the existing row in place.
func (r *integrationRepository) Upsert(integration *domain.MailboxIntegration) error {
	if integration.ID == "" {
		integration.ID = uuid.New().String()
	}
	now := time.Now()
	integration.CreatedAt = now
	integration.UpdatedAt = now

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "access_token", "refresh_token", "token_expires_at",
			"imap_host", "active", "updated_at",
		}),
	}).Create(integration).Error
}

func (r *integrationRepository) FindByID(id string) (*domain.MailboxIntegration, error) {
	var integration domain.MailboxIntegration
	err := r.db.Where("id = ?", id).First(&integration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &integration, nil
}

func (r *integrationRepository) FindActiveByUserID(userID string) ([]*domain.MailboxIntegration, error) {
	var integrations []*domain.MailboxIntegration
	err := r.db.Where("user_id = ? AND active = ?", userID, true).
		Order("created_at ASC").Find(&integrations).Error
	return integrations, err
}

func (r *integrationRepository) FindActiveByEmail(provider, email string) (*domain.MailboxIntegration, error) {
	var integration domain.MailboxIntegration
	err := r.db.Where("provider = ? AND email = ? AND active = ?", provider, email, true).
		First(&integration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &integration, nil
}

func (r *integrationRepository) Update(integration *domain.MailboxIntegration) error {
	integration.UpdatedAt = time.Now()
	return r.db.Save(integration).Error
}

func (r *integrationRepository) Deactivate(userID, id string) error {
	return r.db.Model(&domain.MailboxIntegration{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_at": time.Now(),
		}).Error
}

func (r *integrationRepository) ListActiveUserIDs() ([]string, error) {
	var userIDs []string
	err := r.db.Model(&domain.MailboxIntegration{}).
		Where("active = ?", true).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}
