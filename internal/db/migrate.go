package db

import (
	"adbidder/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.BidLog{},
		&models.BidRun{},
		&models.WatchKeyword{},
		&models.ExpansionRun{},
		&models.SystemSetting{},
	)
}
