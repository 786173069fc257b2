package db

import (
	"log"
	"os"

	"keepcooking/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to the Postgres instance named by DATABASE_URL. TranslateError
// is on so uniqueness violations surface as gorm.ErrDuplicatedKey, which the
// vote and signup paths rely on.
func Open() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=keepcooking port=5432 sslmode=disable"
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")

	return gdb, nil
}

// Migrate creates or updates the schema. Tests call this against an
// in-memory SQLite database.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.PostVote{},
		&models.PointLog{},
	)
}
