package config

import (
	"errors"

	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bus_booking/internal/auth"
	"bus_booking/internal/domain"
	"bus_booking/internal/models"
)

// EnsureAdmin creates the bootstrap admin account from ADMIN_* env vars.
// It is a no-op when the vars are unset or the username already exists.
func EnsureAdmin(db *gorm.DB, s Settings) error {
	if s.AdminUsername == "" || s.AdminEmail == "" || s.AdminPassword == "" {
		return nil
	}

	var existing models.User
	err := db.Where("LOWER(username) = LOWER(?)", s.AdminUsername).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(s.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     s.AdminUsername,
		Email:        s.AdminEmail,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logrus.WithField("username", admin.Username).Info("bootstrap admin account created")
	return nil
}
