package repositories

import (
	"context"
	"errors"

	"github.com/causeconnect/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	// GetSettings returns stored settings, materialising the defaults on first read
	GetSettings(ctx context.Context, userID uint) (*models.UserSettings, error)
	// FindSettings returns stored settings or the defaults without writing
	FindSettings(ctx context.Context, userID uint) (*models.UserSettings, error)
	SaveSettings(ctx context.Context, settings *models.UserSettings) error
}

type postgresSettingsRepository struct {
	db *gorm.DB
}

func NewPostgresSettingsRepository(db *gorm.DB) SettingsRepository {
	return &postgresSettingsRepository{db: db}
}

func (r *postgresSettingsRepository) GetSettings(ctx context.Context, userID uint) (*models.UserSettings, error) {
	settings, err := r.load(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	settings = models.DefaultSettings(userID)
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(settings).Error; err != nil {
		return nil, err
	}
	return r.load(ctx, userID)
}

func (r *postgresSettingsRepository) FindSettings(ctx context.Context, userID uint) (*models.UserSettings, error) {
	settings, err := r.load(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return models.DefaultSettings(userID), nil
	}
	return settings, err
}

func (r *postgresSettingsRepository) SaveSettings(ctx context.Context, settings *models.UserSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

func (r *postgresSettingsRepository) load(ctx context.Context, userID uint) (*models.UserSettings, error) {
	var settings models.UserSettings
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, translate(err)
	}
	return &settings, nil
}
