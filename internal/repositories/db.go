package repositories

import (
	"fmt"
	"log"

	"github.com/vaultix/vaultix/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres database and runs migrations. TranslateError
// lets the repositories map unique-constraint violations onto the service
// error taxonomy.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.File{},
	); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.Println("Successfully connected to database")
	return db, nil
}
