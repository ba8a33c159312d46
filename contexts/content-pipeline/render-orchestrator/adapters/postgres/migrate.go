package postgresadapter

import "gorm.io/gorm"

// Migrate creates or updates the render job and scene tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&jobModel{}, &sceneModel{})
}
