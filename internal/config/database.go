package config

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bus_booking/internal/models"
)

// InitDB opens the Postgres connection and migrates the schema.
func InitDB(s Settings) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		s.DBHost, s.DBUser, s.DBPassword, s.DBName, s.DBPort, s.DBSSLMode, s.DBTimezone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Route{},
		&models.Bus{},
		&models.BusRoute{},
		&models.Seat{},
		&models.Departure{},
	)
	if err != nil {
		log.Fatalf("auto-migration failed: %v", err)
	}

	return db
}
