package repositories

import (
	"context"

	"github.com/causeconnect/backend/internal/models"
	"gorm.io/gorm"
)

type DonationRepository interface {
	CreateDonation(ctx context.Context, donation *models.Donation) error
	GetDonationsByEventID(ctx context.Context, eventID uint, page, limit int) ([]models.Donation, int64, error)
	GetDonationsByDonorID(ctx context.Context, donorID uint, page, limit int) ([]models.Donation, int64, error)
	CountByEvent(ctx context.Context, eventID uint) (int64, error)
}

type postgresDonationRepository struct {
	db *gorm.DB
}

func NewPostgresDonationRepository(db *gorm.DB) DonationRepository {
	return &postgresDonationRepository{db: db}
}

// CreateDonation stores the donation and adds its amount to the event total in
// one transaction. A missing or closed event yields ErrConflict and nothing is written.
func (r *postgresDonationRepository) CreateDonation(ctx context.Context, donation *models.Donation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Event{}).
			Where("id = ? AND status = ?", donation.EventID, models.EventStatusActive).
			Update("raised_amount", gorm.Expr("raised_amount + ?", donation.Amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		if donation.Status == "" {
			donation.Status = models.DonationStatusSucceeded
		}
		return translate(tx.Create(donation).Error)
	})
}

func (r *postgresDonationRepository) GetDonationsByEventID(ctx context.Context, eventID uint, page, limit int) ([]models.Donation, int64, error) {
	return r.page(ctx, "event_id = ?", eventID, page, limit)
}

func (r *postgresDonationRepository) GetDonationsByDonorID(ctx context.Context, donorID uint, page, limit int) ([]models.Donation, int64, error) {
	return r.page(ctx, "donor_id = ?", donorID, page, limit)
}

func (r *postgresDonationRepository) CountByEvent(ctx context.Context, eventID uint) (int64, error) {
	return count(ctx, r.db, &models.Donation{}, map[string]interface{}{"event_id": eventID})
}

func (r *postgresDonationRepository) page(ctx context.Context, query string, id uint, page, limit int) ([]models.Donation, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Donation{}).Where(query, id).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var donations []models.Donation
	err := r.db.WithContext(ctx).Where(query, id).
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&donations).Error
	return donations, total, err
}
