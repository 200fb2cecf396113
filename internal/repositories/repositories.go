package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when the requested row or document does not exist
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique key already holds the row
	ErrConflict = errors.New("record already exists")
)

// translate maps driver errors onto the package errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}

// toggle flips the existence of row, matched by where, inside one transaction.
// Deleting first and inserting with ON CONFLICT DO NOTHING keeps concurrent
// duplicate requests from creating two rows. It reports the new state.
func toggle(ctx context.Context, db *gorm.DB, row interface{}, where map[string]interface{}) (bool, error) {
	active := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		active, err = toggleTx(tx, row, where)
		return err
	})
	return active, err
}

func toggleTx(tx *gorm.DB, row interface{}, where map[string]interface{}) (bool, error) {
	res := tx.Where(where).Delete(row)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}

// exists reports whether any row of model matches where
func exists(ctx context.Context, db *gorm.DB, model interface{}, where map[string]interface{}) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(model).Where(where).Count(&n).Error
	return n > 0, err
}

func count(ctx context.Context, db *gorm.DB, model interface{}, where map[string]interface{}) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(model).Where(where).Count(&n).Error
	return n, err
}
