package repositories

import (
	"context"
	"strings"

	"github.com/causeconnect/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository defines fundraising event operations, including support/pass signals
type EventRepository interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id uint) (*models.Event, error)
	ListEvents(ctx context.Context, filter models.EventFilter, page, limit int) ([]models.Event, int64, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id uint) error
	CountByOwner(ctx context.Context, ownerID uint) (int64, error)

	ToggleSupport(ctx context.Context, userID, eventID uint) (bool, error)
	PassEvent(ctx context.Context, userID, eventID uint) error
	IsSupported(ctx context.Context, userID, eventID uint) (bool, error)
	HasPassed(ctx context.Context, userID, eventID uint) (bool, error)
	SupportedEventIDs(ctx context.Context, userID uint, eventIDs []uint) (map[uint]bool, error)
	CountSupporters(ctx context.Context, eventID uint) (int64, error)
	SupportersCounts(ctx context.Context, eventIDs []uint) (map[uint]int64, error)
	GetSupporters(ctx context.Context, eventID uint) ([]models.User, error)
}

type postgresEventRepository struct {
	db *gorm.DB
}

func NewPostgresEventRepository(db *gorm.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.Status == "" {
		event.Status = models.EventStatusActive
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *postgresEventRepository) GetEventByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (r *postgresEventRepository) ListEvents(ctx context.Context, filter models.EventFilter, page, limit int) ([]models.Event, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Event{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.OwnerID != 0 {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.Event
	err := q.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&events).Error
	return events, total, err
}

// editableEventColumns excludes raised_amount, which only donations move
var editableEventColumns = []string{
	"title", "description", "category", "location", "image_url",
	"goal_amount", "starts_at", "ends_at", "status",
}

// UpdateEvent writes the editable columns and reloads the row into event
func (r *postgresEventRepository) UpdateEvent(ctx context.Context, event *models.Event) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&models.Event{ID: event.ID}).Select(editableEventColumns).Updates(event)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return translate(db.First(event, event.ID).Error)
}

// DeleteEvent removes the event and the rows that only make sense with it
func (r *postgresEventRepository) DeleteEvent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.Support{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.Pass{}).Error; err != nil {
			return err
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.BookmarkEvent, id).Delete(&models.Bookmark{}).Error; err != nil {
			return err
		}
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("event_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if _, err := purgeComments(tx, commentIDs); err != nil {
			return err
		}
		res := tx.Delete(&models.Event{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *postgresEventRepository) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	return count(ctx, r.db, &models.Event{}, map[string]interface{}{"owner_id": ownerID})
}

// ToggleSupport supports the event, clearing any pass, or withdraws support and
// records a pass. Both sequences run in one transaction.
func (r *postgresEventRepository) ToggleSupport(ctx context.Context, userID, eventID uint) (bool, error) {
	where := map[string]interface{}{"user_id": userID, "event_id": eventID}
	active := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(where).Delete(&models.Support{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.Pass{UserID: userID, EventID: eventID}).Error
		}
		if err := tx.Where(where).Delete(&models.Pass{}).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Support{UserID: userID, EventID: eventID}).Error; err != nil {
			return err
		}
		active = true
		return nil
	})
	return active, err
}

// PassEvent dismisses the event, withdrawing any support
func (r *postgresEventRepository) PassEvent(ctx context.Context, userID, eventID uint) error {
	where := map[string]interface{}{"user_id": userID, "event_id": eventID}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(where).Delete(&models.Support{}).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Pass{UserID: userID, EventID: eventID}).Error
	})
}

func (r *postgresEventRepository) IsSupported(ctx context.Context, userID, eventID uint) (bool, error) {
	return exists(ctx, r.db, &models.Support{}, map[string]interface{}{"user_id": userID, "event_id": eventID})
}

func (r *postgresEventRepository) HasPassed(ctx context.Context, userID, eventID uint) (bool, error) {
	return exists(ctx, r.db, &models.Pass{}, map[string]interface{}{"user_id": userID, "event_id": eventID})
}

func (r *postgresEventRepository) SupportedEventIDs(ctx context.Context, userID uint, eventIDs []uint) (map[uint]bool, error) {
	return idSet(ctx, r.db, &models.Support{}, "event_id", "user_id = ? AND event_id IN ?", userID, eventIDs)
}

func (r *postgresEventRepository) CountSupporters(ctx context.Context, eventID uint) (int64, error) {
	return count(ctx, r.db, &models.Support{}, map[string]interface{}{"event_id": eventID})
}

func (r *postgresEventRepository) SupportersCounts(ctx context.Context, eventIDs []uint) (map[uint]int64, error) {
	return countBy(ctx, r.db, &models.Support{}, "event_id", eventIDs)
}

func (r *postgresEventRepository) GetSupporters(ctx context.Context, eventID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("id IN (?)",
		r.db.Model(&models.Support{}).Select("user_id").Where("event_id = ?", eventID),
	).Order("name ASC").Find(&users).Error
	return users, err
}

// idSet plucks column from model rows matching the query into a set
func idSet(ctx context.Context, db *gorm.DB, model interface{}, column, query string, userID uint, ids []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(ids))
	if len(ids) == 0 || userID == 0 {
		return result, nil
	}
	var found []uint
	if err := db.WithContext(ctx).Model(model).Where(query, userID, ids).Pluck(column, &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		result[id] = true
	}
	return result, nil
}
