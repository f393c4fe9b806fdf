package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bus_booking/internal/domain"
	"bus_booking/internal/middleware"
	"bus_booking/internal/models"
)

// DepartureController serves departure views and the status transition
// endpoint. Departures are created and edited through their route.
type DepartureController struct {
	DB *gorm.DB
}

func NewDepartureController(db *gorm.DB) *DepartureController {
	return &DepartureController{DB: db}
}

type statusUpdateInput struct {
	Status domain.DepartureStatus `json:"status" binding:"required"`
	Notes  *string                `json:"notes"`
}

func (dc *DepartureController) loadDeparture(c *gin.Context) (*models.Departure, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, domain.Invalid("id", "must be a positive integer")
	}
	var departure models.Departure
	if err := dc.DB.First(&departure, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Resource: "departure"}
		}
		return nil, err
	}
	return &departure, nil
}

// UpdateStatus moves a departure through its lifecycle. Only transitions
// allowed from the current status are accepted.
func (dc *DepartureController) UpdateStatus(c *gin.Context) {
	var input statusUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	if !input.Status.Valid() {
		respondError(c, domain.Invalid("status", "invalid departure status"))
		return
	}

	departure, err := dc.loadDeparture(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := domain.CheckTransition(departure.Status, input.Status); err != nil {
		respondError(c, err)
		return
	}

	departure.Status = input.Status
	if input.Status == domain.DepartureCancelled {
		departure.IsCancelled = true
	}
	if input.Notes != nil {
		departure.Notes = *input.Notes
	}
	if err := dc.DB.Save(departure).Error; err != nil {
		respondError(c, err)
		return
	}

	actor := middleware.CurrentUser(c)
	logrus.WithFields(logrus.Fields{
		"departure_id": departure.ID,
		"status":       departure.Status,
		"actor":        actor.Username,
	}).Info("departure status updated")
	c.JSON(http.StatusOK, departure)
}

// List returns all departures, newest first.
func (dc *DepartureController) List(c *gin.Context) {
	offset, limit := pagination(c)

	var departures []models.Departure
	if err := dc.DB.Preload("Route").Preload("Bus").
		Order("departure_time DESC").
		Offset(offset).Limit(limit).
		Find(&departures).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, departures)
}

func (dc *DepartureController) routeID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("route_id"), 10, 64)
	if err != nil {
		return 0, domain.Invalid("route_id", "must be a positive integer")
	}
	var count int64
	if err := dc.DB.Model(&models.Route{}).Where("id = ?", uint(id)).Count(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, domain.NotFoundError{Resource: "route"}
	}
	return uint(id), nil
}

// ByRoute lists every departure on a route.
func (dc *DepartureController) ByRoute(c *gin.Context) {
	routeID, err := dc.routeID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var departures []models.Departure
	if err := dc.DB.Preload("Bus").
		Where("route_id = ?", routeID).
		Order("departure_time ASC").
		Find(&departures).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, departures)
}

// Calendar returns the distinct dates in a month that have at least one
// non-cancelled departure on the route.
func (dc *DepartureController) Calendar(c *gin.Context) {
	routeID, err := dc.routeID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2100 {
		respondError(c, domain.Invalid("year", "must be a plausible year"))
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		respondError(c, domain.Invalid("month", "must be between 1 and 12"))
		return
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var departures []models.Departure
	if err := dc.DB.
		Where("route_id = ?", routeID).
		Where("status <> ?", domain.DepartureCancelled).
		Where("departure_time >= ? AND departure_time < ?", monthStart, monthEnd).
		Order("departure_time ASC").
		Find(&departures).Error; err != nil {
		respondError(c, err)
		return
	}

	seen := make(map[string]bool)
	dates := make([]string, 0)
	for _, departure := range departures {
		date := departure.DepartureTime.UTC().Format("2006-01-02")
		if !seen[date] {
			seen[date] = true
			dates = append(dates, date)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"route_id":        routeID,
		"year":            year,
		"month":           month,
		"departure_dates": dates,
	})
}

// Upcoming lists the route's non-cancelled departures leaving within
// the next days_ahead days (default 7).
func (dc *DepartureController) Upcoming(c *gin.Context) {
	routeID, err := dc.routeID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	daysAhead, err := strconv.Atoi(c.DefaultQuery("days_ahead", "7"))
	if err != nil || daysAhead < 1 || daysAhead > 90 {
		respondError(c, domain.Invalid("days_ahead", "must be between 1 and 90"))
		return
	}

	now := time.Now().UTC()
	horizon := now.AddDate(0, 0, daysAhead)

	var departures []models.Departure
	if err := dc.DB.Preload("Bus").
		Where("route_id = ?", routeID).
		Where("status <> ?", domain.DepartureCancelled).
		Where("departure_time >= ? AND departure_time < ?", now, horizon).
		Order("departure_time ASC").
		Find(&departures).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, departures)
}

// Daily lists the route's non-cancelled departures on one calendar day.
func (dc *DepartureController) Daily(c *gin.Context) {
	routeID, err := dc.routeID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2100 {
		respondError(c, domain.Invalid("year", "must be a plausible year"))
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		respondError(c, domain.Invalid("month", "must be between 1 and 12"))
		return
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil || day < 1 || day > 31 {
		respondError(c, domain.Invalid("day", "must be between 1 and 31"))
		return
	}

	dayStart := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var departures []models.Departure
	if err := dc.DB.Preload("Bus").
		Where("route_id = ?", routeID).
		Where("status <> ?", domain.DepartureCancelled).
		Where("departure_time >= ? AND departure_time < ?", dayStart, dayEnd).
		Order("departure_time ASC").
		Find(&departures).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, departures)
}
