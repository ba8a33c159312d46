package postgresadapter

import "gorm.io/gorm"

// Migrate creates or updates the pois table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&poiModel{})
}
