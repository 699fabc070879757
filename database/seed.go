package database

import (
	"time"

	"event_ticketing/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seed creates the default locations that are missing.
func Seed(db *gorm.DB, log *zap.Logger) {
	now := time.Now()
	locations := []*model.Location{
		model.NewLocation("Main Hall", "1 Central Square", now),
		model.NewLocation("Open Air Stage", "City Park", now),
		model.NewLocation("Small Club", "12 Harbour Street", now),
	}

	for _, location := range locations {
		if err := db.Where(model.Location{Name: location.Name}).FirstOrCreate(location).Error; err != nil {
			log.Error("failed to seed location", zap.String("name", location.Name), zap.Error(err))
		}
	}
}
