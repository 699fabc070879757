package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transaction runs fn inside one transaction, rolling back when fn fails or panics.
// Called with a db that is already a transaction it fails with gorm.ErrInvalidTransaction.
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) (err error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
