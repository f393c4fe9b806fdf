package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bus_booking/internal/domain"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique-constraint
// failure, the storage-level signal for a uniqueness conflict.
func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// respondError translates a domain rejection into a status code and a
// {"detail": ...} body. Storage failures are reported generically; no
// internal detail reaches the client.
func respondError(c *gin.Context, err error) {
	var validation domain.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validation.Fields})
		return
	}

	var notFound domain.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": notFound.Error()})
		return
	}

	var conflict domain.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": conflict.Error()})
		return
	}

	var request domain.RequestError
	if errors.As(err, &request) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": request.Error()})
		return
	}

	var unauthorized domain.UnauthorizedError
	if errors.As(err, &unauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": unauthorized.Error()})
		return
	}

	var forbidden domain.ForbiddenError
	if errors.As(err, &forbidden) {
		c.JSON(http.StatusForbidden, gin.H{"detail": forbidden.Error()})
		return
	}

	var transition domain.InvalidTransitionError
	if errors.As(err, &transition) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": transition.Error()})
		return
	}

	if isUniqueViolation(err) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid data or constraint violation"})
		return
	}

	if errors.Is(err, gorm.ErrInvalidDB) || errors.Is(err, gorm.ErrInvalidTransaction) {
		logrus.WithError(err).Error("database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "database service unavailable, please try again later"})
		return
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("unexpected error")
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "an unexpected server error occurred"})
}

// respondBindError maps a gin binding failure (malformed JSON, missing
// required fields) to the validation shape.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
}
