package database

import (
	"github.com/dashmed/dashmed/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Doctor{},
		&model.PasswordReset{},
		&model.Patient{},
		&model.Follow{},
		&model.Measure{},
		&model.MeasureValue{},
	)
}
