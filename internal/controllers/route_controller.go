package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bus_booking/internal/domain"
	"bus_booking/internal/middleware"
	"bus_booking/internal/models"
)

var cityCaser = cases.Title(language.Und)

func normalizeCity(city string) string {
	return cityCaser.String(strings.TrimSpace(city))
}

func normalizeNumber(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}

// RouteController owns the route catalog and its inline departures.
type RouteController struct {
	DB *gorm.DB
}

func NewRouteController(db *gorm.DB) *RouteController {
	return &RouteController{DB: db}
}

type stopInput struct {
	City                 string `json:"city"`
	StopDurationMinutes  int    `json:"stop_duration_minutes"`
	DistanceFromOriginKM int    `json:"distance_from_origin_km"`
}

type routeDepartureInput struct {
	// OriginalIndex points into the route's current departure list on
	// update: present and in range means "update that departure",
	// absent or negative means "create a new one". Known to be fragile
	// under concurrent edits.
	OriginalIndex *int `json:"original_index"`

	BusID         *uint      `json:"bus_id"`
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
	IsFull        *bool      `json:"is_full"`
	Notes         *string    `json:"notes"`
}

type routeCreateInput struct {
	RouteNumber       string              `json:"route_number" binding:"required"`
	RouteName         string              `json:"route_name"`
	OriginCity        string              `json:"origin_city" binding:"required"`
	DestinationCity   string              `json:"destination_city" binding:"required"`
	DistanceKM        int                 `json:"distance_km"`
	DurationMinutes   int                 `json:"duration_minutes"`
	IntermediateStops []stopInput         `json:"intermediate_stops"`
	BasePrice         float64             `json:"base_price"`
	Status            *domain.RouteStatus `json:"status"`
	IsExpress         bool                `json:"is_express"`
	IsOvernight       bool                `json:"is_overnight"`
	OperatesDaily     bool                `json:"operates_daily"`
	OperatingDays     []string            `json:"operating_days"`
	Description       string              `json:"description"`
	Notes             string              `json:"notes"`

	Departures []routeDepartureInput `json:"departures"`
}

type routeUpdateInput struct {
	RouteNumber       *string             `json:"route_number"`
	RouteName         *string             `json:"route_name"`
	OriginCity        *string             `json:"origin_city"`
	DestinationCity   *string             `json:"destination_city"`
	DistanceKM        *int                `json:"distance_km"`
	DurationMinutes   *int                `json:"duration_minutes"`
	IntermediateStops []stopInput         `json:"intermediate_stops"`
	BasePrice         *float64            `json:"base_price"`
	Status            *domain.RouteStatus `json:"status"`
	IsExpress         *bool               `json:"is_express"`
	IsOvernight       *bool               `json:"is_overnight"`
	OperatesDaily     *bool               `json:"operates_daily"`
	OperatingDays     []string            `json:"operating_days"`
	Description       *string             `json:"description"`
	Notes             *string             `json:"notes"`

	Departures []routeDepartureInput `json:"departures"`
}

func validateStops(stops []stopInput) []domain.FieldError {
	var fields []domain.FieldError
	for i, stop := range stops {
		if strings.TrimSpace(stop.City) == "" {
			fields = append(fields, domain.FieldError{
				Field: fmt.Sprintf("intermediate_stops[%d].city", i),
				Msg:   "city cannot be empty"})
		}
		if stop.StopDurationMinutes < 0 || stop.StopDurationMinutes > 120 {
			fields = append(fields, domain.FieldError{
				Field: fmt.Sprintf("intermediate_stops[%d].stop_duration_minutes", i),
				Msg:   "stop duration must be between 0 and 120 minutes"})
		}
		if stop.DistanceFromOriginKM <= 0 {
			fields = append(fields, domain.FieldError{
				Field: fmt.Sprintf("intermediate_stops[%d].distance_from_origin_km", i),
				Msg:   "distance from origin must be positive"})
		}
	}
	return fields
}

func toStops(stops []stopInput) datatypes.JSONSlice[models.IntermediateStop] {
	converted := make([]models.IntermediateStop, 0, len(stops))
	for _, stop := range stops {
		converted = append(converted, models.IntermediateStop{
			City:                 normalizeCity(stop.City),
			StopDurationMinutes:  stop.StopDurationMinutes,
			DistanceFromOriginKM: stop.DistanceFromOriginKM,
		})
	}
	return datatypes.NewJSONSlice(converted)
}

func routeResponse(route models.Route) gin.H {
	resp := gin.H{
		"id":                       route.ID,
		"route_number":             route.RouteNumber,
		"route_name":               route.RouteName,
		"origin_city":              route.OriginCity,
		"destination_city":         route.DestinationCity,
		"distance_km":              route.DistanceKM,
		"duration_minutes":         route.DurationMinutes,
		"intermediate_stops":       route.IntermediateStops,
		"base_price":               route.BasePrice,
		"status":                   route.Status,
		"is_express":               route.IsExpress,
		"is_overnight":             route.IsOvernight,
		"operates_daily":           route.OperatesDaily,
		"operating_days":           route.OperatingDays,
		"description":              route.Description,
		"notes":                    route.Notes,
		"created_by_id":            route.CreatedByID,
		"created_at":               route.CreatedAt,
		"updated_at":               route.UpdatedAt,
		"is_operational":           route.IsOperational(),
		"estimated_duration_hours": route.EstimatedDurationHours(),
		"has_stops":                route.TotalStops() > 0,
		"total_stops":              route.TotalStops(),
	}
	if route.Departures != nil {
		resp["departures"] = route.Departures
	}
	return resp
}

func routeListItem(route models.Route) gin.H {
	return gin.H{
		"id":                       route.ID,
		"route_number":             route.RouteNumber,
		"route_name":               route.RouteName,
		"origin_city":              route.OriginCity,
		"destination_city":         route.DestinationCity,
		"distance_km":              route.DistanceKM,
		"estimated_duration_hours": route.EstimatedDurationHours(),
		"base_price":               route.BasePrice,
		"status":                   route.Status,
		"is_express":               route.IsExpress,
		"is_operational":           route.IsOperational(),
	}
}

func (rc *RouteController) routeNumberTaken(routeNumber string, excludeID uint) (bool, error) {
	query := rc.DB.Model(&models.Route{}).Where("LOWER(route_number) = LOWER(?)", routeNumber)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// buildDeparture materializes one inline departure, validating the time
// window and deriving arrival from the route duration when absent.
func buildDeparture(routeID uint, durationMinutes int, input routeDepartureInput, index int) (models.Departure, error) {
	if input.DepartureTime == nil {
		return models.Departure{}, domain.Invalid(
			fmt.Sprintf("departures[%d].departure_time", index), "departure time is required")
	}
	departureTime := input.DepartureTime.UTC()
	if !departureTime.After(time.Now().UTC()) {
		return models.Departure{}, domain.Invalid(
			fmt.Sprintf("departures[%d].departure_time", index), "departure time must be in the future")
	}

	arrivalTime := departureTime.Add(time.Duration(durationMinutes) * time.Minute)
	if input.ArrivalTime != nil {
		arrivalTime = input.ArrivalTime.UTC()
		if !arrivalTime.After(departureTime) {
			return models.Departure{}, domain.Invalid(
				fmt.Sprintf("departures[%d].arrival_time", index), "arrival time must be after departure time")
		}
	}

	departure := models.Departure{
		RouteID:       routeID,
		BusID:         input.BusID,
		DepartureTime: departureTime,
		ArrivalTime:   arrivalTime,
		Status:        domain.DepartureScheduled,
	}
	if input.IsFull != nil {
		departure.IsFull = *input.IsFull
	}
	if input.Notes != nil {
		departure.Notes = *input.Notes
	}
	return departure, nil
}

// Create registers a new route, optionally with inline departures.
func (rc *RouteController) Create(c *gin.Context) {
	var input routeCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	actor := middleware.CurrentUser(c)

	var fields []domain.FieldError
	routeNumber := normalizeNumber(input.RouteNumber)
	if routeNumber == "" {
		fields = append(fields, domain.FieldError{Field: "route_number", Msg: "route number cannot be empty"})
	}
	if strings.TrimSpace(input.OriginCity) == "" {
		fields = append(fields, domain.FieldError{Field: "origin_city", Msg: "origin city cannot be empty"})
	}
	if strings.TrimSpace(input.DestinationCity) == "" {
		fields = append(fields, domain.FieldError{Field: "destination_city", Msg: "destination city cannot be empty"})
	}
	if input.DistanceKM <= 0 {
		fields = append(fields, domain.FieldError{Field: "distance_km", Msg: "distance must be positive"})
	}
	if input.DurationMinutes <= 0 {
		fields = append(fields, domain.FieldError{Field: "duration_minutes", Msg: "duration must be positive"})
	}
	if input.BasePrice <= 0 {
		fields = append(fields, domain.FieldError{Field: "base_price", Msg: "base price must be positive"})
	}
	if input.Status != nil && !input.Status.Valid() {
		fields = append(fields, domain.FieldError{Field: "status", Msg: "invalid route status"})
	}
	fields = append(fields, validateStops(input.IntermediateStops)...)
	if len(fields) > 0 {
		respondError(c, domain.ValidationError{Fields: fields})
		return
	}

	if taken, err := rc.routeNumberTaken(routeNumber, 0); err != nil {
		respondError(c, err)
		return
	} else if taken {
		respondError(c, domain.ConflictError{
			Msg: fmt.Sprintf("route with route number %s already exists", routeNumber)})
		return
	}

	status := domain.RouteActive
	if input.Status != nil {
		status = *input.Status
	}

	route := models.Route{
		RouteNumber:       routeNumber,
		RouteName:         input.RouteName,
		OriginCity:        normalizeCity(input.OriginCity),
		DestinationCity:   normalizeCity(input.DestinationCity),
		DistanceKM:        input.DistanceKM,
		DurationMinutes:   input.DurationMinutes,
		IntermediateStops: toStops(input.IntermediateStops),
		BasePrice:         input.BasePrice,
		Status:            status,
		IsExpress:         input.IsExpress,
		IsOvernight:       input.IsOvernight,
		OperatesDaily:     input.OperatesDaily,
		OperatingDays:     datatypes.NewJSONSlice(input.OperatingDays),
		Description:       input.Description,
		Notes:             input.Notes,
		CreatedByID:       &actor.ID,
	}

	tx := rc.DB.Begin()
	if tx.Error != nil {
		respondError(c, tx.Error)
		return
	}

	if err := tx.Create(&route).Error; err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			respondError(c, domain.ConflictError{
				Msg: fmt.Sprintf("route with route number %s already exists", routeNumber)})
			return
		}
		respondError(c, err)
		return
	}

	for i, depInput := range input.Departures {
		departure, err := buildDeparture(route.ID, route.DurationMinutes, depInput, i)
		if err != nil {
			tx.Rollback()
			respondError(c, err)
			return
		}
		if err := tx.Create(&departure).Error; err != nil {
			tx.Rollback()
			respondError(c, err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		respondError(c, err)
		return
	}

	rc.DB.Preload("Departures").First(&route, route.ID)
	logrus.WithFields(logrus.Fields{
		"route_number": route.RouteNumber, "actor": actor.Username,
	}).Info("route created")
	c.JSON(http.StatusCreated, routeResponse(route))
}

// List returns a filtered, paginated route listing. DELETED routes are
// only visible to admin callers.
func (rc *RouteController) List(c *gin.Context) {
	offset, limit := pagination(c)

	query := rc.DB.Model(&models.Route{})
	if origin := c.Query("origin_city"); origin != "" {
		query = query.Where("origin_city = ?", origin)
	}
	if destination := c.Query("destination_city"); destination != "" {
		query = query.Where("destination_city = ?", destination)
	}
	if status := c.Query("status"); status != "" {
		if !domain.RouteStatus(status).Valid() {
			respondError(c, domain.Invalid("status", "invalid route status"))
			return
		}
		query = query.Where("status = ?", status)
	}

	caller := middleware.CurrentUser(c)
	if caller == nil || !caller.IsAdmin() {
		query = query.Where("status <> ?", domain.RouteDeleted)
	}

	var routes []models.Route
	if err := query.Offset(offset).Limit(limit).Find(&routes).Error; err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(routes))
	for _, route := range routes {
		items = append(items, routeListItem(route))
	}
	c.JSON(http.StatusOK, items)
}

func (rc *RouteController) loadRoute(c *gin.Context) (*models.Route, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, domain.Invalid("id", "must be a positive integer")
	}
	var route models.Route
	if err := rc.DB.First(&route, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Resource: "route"}
		}
		return nil, err
	}
	return &route, nil
}

// Get returns one route with its departures.
func (rc *RouteController) Get(c *gin.Context) {
	route, err := rc.loadRoute(c)
	if err != nil {
		respondError(c, err)
		return
	}

	caller := middleware.CurrentUser(c)
	if route.Status == domain.RouteDeleted && (caller == nil || !caller.IsAdmin()) {
		respondError(c, domain.NotFoundError{Resource: "route"})
		return
	}

	if err := rc.DB.Preload("Departures").First(route, route.ID).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routeResponse(*route))
}

// Update applies a partial update. A supplied intermediate_stops list
// fully replaces the prior one; a supplied departures list is reconciled
// positionally against the route's current departures.
func (rc *RouteController) Update(c *gin.Context) {
	var input routeUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	actor := middleware.CurrentUser(c)

	route, err := rc.loadRoute(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var fields []domain.FieldError
	if input.RouteNumber != nil && normalizeNumber(*input.RouteNumber) == "" {
		fields = append(fields, domain.FieldError{Field: "route_number", Msg: "route number cannot be empty"})
	}
	if input.OriginCity != nil && strings.TrimSpace(*input.OriginCity) == "" {
		fields = append(fields, domain.FieldError{Field: "origin_city", Msg: "origin city cannot be empty"})
	}
	if input.DestinationCity != nil && strings.TrimSpace(*input.DestinationCity) == "" {
		fields = append(fields, domain.FieldError{Field: "destination_city", Msg: "destination city cannot be empty"})
	}
	if input.DistanceKM != nil && *input.DistanceKM <= 0 {
		fields = append(fields, domain.FieldError{Field: "distance_km", Msg: "distance must be positive"})
	}
	if input.DurationMinutes != nil && *input.DurationMinutes <= 0 {
		fields = append(fields, domain.FieldError{Field: "duration_minutes", Msg: "duration must be positive"})
	}
	if input.BasePrice != nil && *input.BasePrice <= 0 {
		fields = append(fields, domain.FieldError{Field: "base_price", Msg: "base price must be positive"})
	}
	if input.Status != nil && !input.Status.Valid() {
		fields = append(fields, domain.FieldError{Field: "status", Msg: "invalid route status"})
	}
	if input.IntermediateStops != nil {
		fields = append(fields, validateStops(input.IntermediateStops)...)
	}
	if len(fields) > 0 {
		respondError(c, domain.ValidationError{Fields: fields})
		return
	}

	if input.RouteNumber != nil {
		routeNumber := normalizeNumber(*input.RouteNumber)
		if taken, err := rc.routeNumberTaken(routeNumber, route.ID); err != nil {
			respondError(c, err)
			return
		} else if taken {
			respondError(c, domain.ConflictError{
				Msg: fmt.Sprintf("route with route number %s already exists", routeNumber)})
			return
		}
		route.RouteNumber = routeNumber
	}
	if input.RouteName != nil {
		route.RouteName = *input.RouteName
	}
	if input.OriginCity != nil {
		route.OriginCity = normalizeCity(*input.OriginCity)
	}
	if input.DestinationCity != nil {
		route.DestinationCity = normalizeCity(*input.DestinationCity)
	}
	if input.DistanceKM != nil {
		route.DistanceKM = *input.DistanceKM
	}
	if input.DurationMinutes != nil {
		route.DurationMinutes = *input.DurationMinutes
	}
	if input.IntermediateStops != nil {
		route.IntermediateStops = toStops(input.IntermediateStops)
	}
	if input.BasePrice != nil {
		route.BasePrice = *input.BasePrice
	}
	if input.Status != nil {
		route.Status = *input.Status
	}
	if input.IsExpress != nil {
		route.IsExpress = *input.IsExpress
	}
	if input.IsOvernight != nil {
		route.IsOvernight = *input.IsOvernight
	}
	if input.OperatesDaily != nil {
		route.OperatesDaily = *input.OperatesDaily
	}
	if input.OperatingDays != nil {
		route.OperatingDays = datatypes.NewJSONSlice(input.OperatingDays)
	}
	if input.Description != nil {
		route.Description = *input.Description
	}
	if input.Notes != nil {
		route.Notes = *input.Notes
	}

	tx := rc.DB.Begin()
	if tx.Error != nil {
		respondError(c, tx.Error)
		return
	}

	if err := tx.Save(route).Error; err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			respondError(c, domain.ConflictError{Msg: "route number already exists"})
			return
		}
		respondError(c, err)
		return
	}

	if input.Departures != nil {
		if err := rc.reconcileDepartures(tx, route, input.Departures); err != nil {
			tx.Rollback()
			respondError(c, err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		respondError(c, err)
		return
	}

	rc.DB.Preload("Departures").First(route, route.ID)
	logrus.WithFields(logrus.Fields{
		"route_number": route.RouteNumber, "actor": actor.Username,
	}).Info("route updated")
	c.JSON(http.StatusOK, routeResponse(*route))
}

// reconcileDepartures matches patch entries to the route's current
// departure list by position. Entries with an in-range original_index
// update that departure; the rest create new ones; current departures
// not referenced by any index are deleted.
func (rc *RouteController) reconcileDepartures(tx *gorm.DB, route *models.Route, patches []routeDepartureInput) error {
	var existing []models.Departure
	if err := tx.Where("route_id = ?", route.ID).Order("id ASC").Find(&existing).Error; err != nil {
		return err
	}

	referenced := make(map[int]bool)
	for i, patch := range patches {
		if patch.OriginalIndex != nil && *patch.OriginalIndex >= 0 && *patch.OriginalIndex < len(existing) {
			idx := *patch.OriginalIndex
			referenced[idx] = true
			departure := &existing[idx]

			if patch.BusID != nil {
				departure.BusID = patch.BusID
			}
			if patch.DepartureTime != nil {
				departure.DepartureTime = patch.DepartureTime.UTC()
				if patch.ArrivalTime == nil {
					departure.ArrivalTime = departure.DepartureTime.Add(
						time.Duration(route.DurationMinutes) * time.Minute)
				}
			}
			if patch.ArrivalTime != nil {
				arrival := patch.ArrivalTime.UTC()
				if !arrival.After(departure.DepartureTime) {
					return domain.Invalid(
						fmt.Sprintf("departures[%d].arrival_time", i),
						"arrival time must be after departure time")
				}
				departure.ArrivalTime = arrival
			}
			if patch.IsFull != nil {
				departure.IsFull = *patch.IsFull
			}
			if patch.Notes != nil {
				departure.Notes = *patch.Notes
			}

			if err := tx.Save(departure).Error; err != nil {
				return err
			}
			continue
		}

		departure, err := buildDeparture(route.ID, route.DurationMinutes, patch, i)
		if err != nil {
			return err
		}
		if err := tx.Create(&departure).Error; err != nil {
			return err
		}
	}

	for idx, departure := range existing {
		if referenced[idx] {
			continue
		}
		if err := tx.Delete(&models.Departure{}, departure.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a route; its departures and bus links go with it.
func (rc *RouteController) Delete(c *gin.Context) {
	route, err := rc.loadRoute(c)
	if err != nil {
		respondError(c, err)
		return
	}
	actor := middleware.CurrentUser(c)

	tx := rc.DB.Begin()
	if tx.Error != nil {
		respondError(c, tx.Error)
		return
	}
	if err := tx.Where("route_id = ?", route.ID).Delete(&models.Departure{}).Error; err != nil {
		tx.Rollback()
		respondError(c, err)
		return
	}
	if err := tx.Where("route_id = ?", route.ID).Delete(&models.BusRoute{}).Error; err != nil {
		tx.Rollback()
		respondError(c, err)
		return
	}
	if err := tx.Delete(&models.Route{}, route.ID).Error; err != nil {
		tx.Rollback()
		respondError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"route_number": route.RouteNumber, "actor": actor.Username,
	}).Info("route deleted")
	c.Status(http.StatusNoContent)
}

// pagination reads offset/limit query params with the catalog defaults.
func pagination(c *gin.Context) (int, int) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "16"))
	if err != nil || limit < 1 {
		limit = 16
	}
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}
