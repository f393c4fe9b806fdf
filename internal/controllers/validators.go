package controllers

import (
	"regexp"

	"bus_booking/internal/domain"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe    = regexp.MustCompile(`^\+?[\d\s\-\(\)]+$`)

	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

func validateUsername(username string) []domain.FieldError {
	var fields []domain.FieldError
	if len(username) < 5 {
		fields = append(fields, domain.FieldError{
			Field: "username", Msg: "username must be at least 5 characters long"})
	}
	if !usernameRe.MatchString(username) {
		fields = append(fields, domain.FieldError{
			Field: "username", Msg: "username can only contain letters, numbers, and underscores"})
	}
	return fields
}

func validateEmail(email string) []domain.FieldError {
	if !emailRe.MatchString(email) {
		return []domain.FieldError{{Field: "email", Msg: "invalid email address"}}
	}
	return nil
}

func validatePhoneNumber(phone string) []domain.FieldError {
	if phone != "" && !phoneRe.MatchString(phone) {
		return []domain.FieldError{{Field: "phone_number", Msg: "invalid phone number format"}}
	}
	return nil
}

// validatePassword enforces the customer password policy: at least 8
// characters with upper, lower and digit.
func validatePassword(field, password string) []domain.FieldError {
	var fields []domain.FieldError
	if len(password) < 8 {
		fields = append(fields, domain.FieldError{
			Field: field, Msg: "password must be at least 8 characters long"})
	}
	if !upperRe.MatchString(password) {
		fields = append(fields, domain.FieldError{
			Field: field, Msg: "password must contain at least one uppercase letter"})
	}
	if !lowerRe.MatchString(password) {
		fields = append(fields, domain.FieldError{
			Field: field, Msg: "password must contain at least one lowercase letter"})
	}
	if !digitRe.MatchString(password) {
		fields = append(fields, domain.FieldError{
			Field: field, Msg: "password must contain at least one digit"})
	}
	return fields
}

// validateAdminPassword is stricter: 12 characters minimum and a special
// character on top of the customer policy.
func validateAdminPassword(field, password string) []domain.FieldError {
	fields := validatePassword(field, password)
	if len(password) < 12 {
		fields = append(fields, domain.FieldError{
			Field: field, Msg: "password must be at least 12 characters long"})
	}
	if !specialRe.MatchString(password) {
		fields = append(fields, domain.FieldError{
			Field: field, Msg: "password must contain at least one special character"})
	}
	return fields
}
