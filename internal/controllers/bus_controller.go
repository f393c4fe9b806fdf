package controllers

import (
	"errors"
	"fmt"
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

// BusController manages the fleet: buses, their seat layouts and their
// route assignments.
type BusController struct {
	DB *gorm.DB
}

func NewBusController(db *gorm.DB) *BusController {
	return &BusController{DB: db}
}

type busCreateInput struct {
	BusNumber    string `json:"bus_number" binding:"required"`
	LicensePlate string `json:"license_plate" binding:"required"`
	BusName      string `json:"bus_name"`

	BusType          *domain.BusType `json:"bus_type"`
	Manufacturer     string          `json:"manufacturer"`
	Model            string          `json:"model"`
	YearManufactured int             `json:"year_manufactured"`

	HasWifi          bool `json:"has_wifi"`
	HasAC            bool `json:"has_ac"`
	HasTV            bool `json:"has_tv"`
	HasChargingPorts bool `json:"has_charging_ports"`
	HasRefreshments  bool `json:"has_refreshments"`
	HasRestroom      bool `json:"has_restroom"`

	Status       *domain.BusStatus `json:"status"`
	IsAccessible bool              `json:"is_accessible"`
	Description  string            `json:"description"`
	Notes        string            `json:"notes"`

	OperatorID *uint           `json:"operator_id"`
	Rows       []domain.BusRow `json:"rows" binding:"required"`
	RouteIDs   []uint          `json:"route_ids"`
}

type busUpdateInput struct {
	BusNumber    *string `json:"bus_number"`
	LicensePlate *string `json:"license_plate"`
	BusName      *string `json:"bus_name"`

	BusType          *domain.BusType `json:"bus_type"`
	Manufacturer     *string         `json:"manufacturer"`
	Model            *string         `json:"model"`
	YearManufactured *int            `json:"year_manufactured"`

	HasWifi          *bool `json:"has_wifi"`
	HasAC            *bool `json:"has_ac"`
	HasTV            *bool `json:"has_tv"`
	HasChargingPorts *bool `json:"has_charging_ports"`
	HasRefreshments  *bool `json:"has_refreshments"`
	HasRestroom      *bool `json:"has_restroom"`

	Status       *domain.BusStatus `json:"status"`
	IsAccessible *bool             `json:"is_accessible"`
	Description  *string           `json:"description"`
	Notes        *string           `json:"notes"`

	OperatorID *uint           `json:"operator_id"`
	Rows       []domain.BusRow `json:"rows"`
	RouteIDs   []uint          `json:"route_ids"`

	// DepartureIDs assigns this bus to existing departures. Each one
	// must belong to a route the bus is assigned to.
	DepartureIDs []uint `json:"departure_ids"`
}

func busResponse(bus models.Bus) gin.H {
	resp := gin.H{
		"id":                bus.ID,
		"bus_number":        bus.BusNumber,
		"license_plate":     bus.LicensePlate,
		"bus_name":          bus.BusName,
		"bus_type":          bus.BusType,
		"capacity":          bus.Capacity,
		"manufacturer":      bus.Manufacturer,
		"model":             bus.Model,
		"year_manufactured": bus.YearManufactured,
		"has_wifi":          bus.HasWifi,
		"has_ac":            bus.HasAC,
		"has_tv":            bus.HasTV,
		"has_charging_ports": bus.HasChargingPorts,
		"has_refreshments":  bus.HasRefreshments,
		"has_restroom":      bus.HasRestroom,
		"status":            bus.Status,
		"is_accessible":     bus.IsAccessible,
		"description":       bus.Description,
		"notes":             bus.Notes,
		"operator_id":       bus.OperatorID,
		"created_by_id":     bus.CreatedByID,
		"created_at":        bus.CreatedAt,
		"updated_at":        bus.UpdatedAt,
		"is_operational":    bus.IsOperational(),
		"amenities":         bus.AmenitiesList(),
	}
	if bus.Seats != nil {
		resp["seats"] = bus.Seats
	}
	if bus.BusRoutes != nil {
		routeIDs := make([]uint, 0, len(bus.BusRoutes))
		for _, link := range bus.BusRoutes {
			routeIDs = append(routeIDs, link.RouteID)
		}
		resp["route_ids"] = routeIDs
	}
	if bus.Departures != nil {
		resp["departures"] = bus.Departures
	}
	return resp
}

func busListItem(bus models.Bus) gin.H {
	return gin.H{
		"id":             bus.ID,
		"bus_number":     bus.BusNumber,
		"license_plate":  bus.LicensePlate,
		"bus_name":       bus.BusName,
		"bus_type":       bus.BusType,
		"capacity":       bus.Capacity,
		"manufacturer":   bus.Manufacturer,
		"model":          bus.Model,
		"status":         bus.Status,
		"is_operational": bus.IsOperational(),
		"amenities":      bus.AmenitiesList(),
	}
}

func (bc *BusController) busNumberTaken(busNumber string, excludeID uint) (bool, error) {
	query := bc.DB.Model(&models.Bus{}).Where("LOWER(bus_number) = LOWER(?)", busNumber)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// verifyRoutes checks that every referenced route exists.
func verifyRoutes(tx *gorm.DB, routeIDs []uint) error {
	if len(routeIDs) == 0 {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Route{}).Where("id IN ?", routeIDs).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(routeIDs)) {
		return domain.NotFoundError{Resource: "route"}
	}
	return nil
}

// buildSeats expands row specs into seat records. Reservation and
// window flags start false; they are set through later edits, not at
// generation.
func buildSeats(busID uint, rows []domain.BusRow) []models.Seat {
	var seats []models.Seat
	for _, row := range rows {
		for _, label := range domain.RowSeatLabels(row) {
			seats = append(seats, models.Seat{
				BusID:      busID,
				SeatNumber: label,
			})
		}
	}
	return seats
}

// CreateBus registers a bus, generating its seats from the row layout
// and linking it to the given routes.
func (bc *BusController) CreateBus(c *gin.Context) {
	var input busCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	actor := middleware.CurrentUser(c)

	busNumber := normalizeNumber(input.BusNumber)
	licensePlate := normalizeNumber(input.LicensePlate)

	var fields []domain.FieldError
	if busNumber == "" {
		fields = append(fields, domain.FieldError{Field: "bus_number", Msg: "bus number cannot be empty"})
	}
	if licensePlate == "" {
		fields = append(fields, domain.FieldError{Field: "license_plate", Msg: "license plate cannot be empty"})
	}
	if input.BusType != nil && !input.BusType.Valid() {
		fields = append(fields, domain.FieldError{Field: "bus_type", Msg: "invalid bus type"})
	}
	if input.Status != nil && !input.Status.Valid() {
		fields = append(fields, domain.FieldError{Field: "status", Msg: "invalid bus status"})
	}
	if input.YearManufactured != 0 {
		if input.YearManufactured < 1980 || input.YearManufactured > time.Now().Year()+1 {
			fields = append(fields, domain.FieldError{Field: "year_manufactured", Msg: "implausible manufacture year"})
		}
	}
	if len(input.Rows) == 0 {
		fields = append(fields, domain.FieldError{Field: "rows", Msg: "at least one row is required"})
	}
	var validationErr domain.ValidationError
	if err := domain.ValidateRows(input.Rows); errors.As(err, &validationErr) {
		fields = append(fields, validationErr.Fields...)
	}
	if len(fields) > 0 {
		respondError(c, domain.ValidationError{Fields: fields})
		return
	}

	if taken, err := bc.busNumberTaken(busNumber, 0); err != nil {
		respondError(c, err)
		return
	} else if taken {
		respondError(c, domain.ConflictError{
			Msg: fmt.Sprintf("bus with bus number %s already exists", busNumber)})
		return
	}

	busType := domain.BusStandard
	if input.BusType != nil {
		busType = *input.BusType
	}
	status := domain.BusActive
	if input.Status != nil {
		status = *input.Status
	}

	seatNumbers := domain.SeatNumbers(input.Rows)
	bus := models.Bus{
		BusNumber:        busNumber,
		LicensePlate:     licensePlate,
		BusName:          input.BusName,
		BusType:          busType,
		Capacity:         len(seatNumbers),
		Manufacturer:     input.Manufacturer,
		Model:            input.Model,
		YearManufactured: input.YearManufactured,
		HasWifi:          input.HasWifi,
		HasAC:            input.HasAC,
		HasTV:            input.HasTV,
		HasChargingPorts: input.HasChargingPorts,
		HasRefreshments:  input.HasRefreshments,
		HasRestroom:      input.HasRestroom,
		Status:           status,
		IsAccessible:     input.IsAccessible,
		Description:      input.Description,
		Notes:            input.Notes,
		CreatedByID:      &actor.ID,
		OperatorID:       input.OperatorID,
	}

	tx := bc.DB.Begin()
	if tx.Error != nil {
		respondError(c, tx.Error)
		return
	}

	if err := verifyRoutes(tx, input.RouteIDs); err != nil {
		tx.Rollback()
		respondError(c, err)
		return
	}

	if err := tx.Create(&bus).Error; err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			respondError(c, domain.ConflictError{
				Msg: fmt.Sprintf("bus with bus number %s already exists", busNumber)})
			return
		}
		respondError(c, err)
		return
	}

	seats := buildSeats(bus.ID, input.Rows)
	if len(seats) > 0 {
		if err := tx.Create(&seats).Error; err != nil {
			tx.Rollback()
			respondError(c, err)
			return
		}
	}

	for _, routeID := range input.RouteIDs {
		link := models.BusRoute{BusID: bus.ID, RouteID: routeID}
		if err := tx.Create(&link).Error; err != nil {
			tx.Rollback()
			respondError(c, err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		respondError(c, err)
		return
	}

	bc.DB.Preload("Seats").Preload("BusRoutes").First(&bus, bus.ID)
	logrus.WithFields(logrus.Fields{
		"bus_number": bus.BusNumber, "capacity": bus.Capacity, "actor": actor.Username,
	}).Info("bus created")
	c.JSON(http.StatusCreated, busResponse(bus))
}

// ListBuses returns a filtered, paginated fleet listing.
func (bc *BusController) ListBuses(c *gin.Context) {
	offset, limit := pagination(c)

	query := bc.DB.Model(&models.Bus{})
	if busNumber := c.Query("bus_number"); busNumber != "" {
		query = query.Where("bus_number = ?", normalizeNumber(busNumber))
	}
	if manufacturer := c.Query("manufacturer"); manufacturer != "" {
		query = query.Where("manufacturer = ?", manufacturer)
	}
	if model := c.Query("model"); model != "" {
		query = query.Where("model = ?", model)
	}
	if busType := c.Query("type"); busType != "" {
		if !domain.BusType(busType).Valid() {
			respondError(c, domain.Invalid("type", "invalid bus type"))
			return
		}
		query = query.Where("bus_type = ?", busType)
	}
	if status := c.Query("status"); status != "" {
		if !domain.BusStatus(status).Valid() {
			respondError(c, domain.Invalid("status", "invalid bus status"))
			return
		}
		query = query.Where("status = ?", status)
	}

	var buses []models.Bus
	if err := query.Offset(offset).Limit(limit).Find(&buses).Error; err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(buses))
	for _, bus := range buses {
		items = append(items, busListItem(bus))
	}
	c.JSON(http.StatusOK, items)
}

func (bc *BusController) loadBus(c *gin.Context) (*models.Bus, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, domain.Invalid("id", "must be a positive integer")
	}
	var bus models.Bus
	if err := bc.DB.First(&bus, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Resource: "bus"}
		}
		return nil, err
	}
	return &bus, nil
}

// GetBus returns one bus with its seats, route links and departures.
func (bc *BusController) GetBus(c *gin.Context) {
	bus, err := bc.loadBus(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := bc.DB.
		Preload("Seats").
		Preload("BusRoutes.Route").
		Preload("Departures.Route").
		First(bus, bus.ID).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, busResponse(*bus))
}

// UpdateBus applies a partial update. A supplied route_ids list fully
// replaces the bus's route assignments; a supplied rows list regenerates
// every seat; departure_ids assigns the bus to departures on its routes.
func (bc *BusController) UpdateBus(c *gin.Context) {
	var input busUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	actor := middleware.CurrentUser(c)

	bus, err := bc.loadBus(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var fields []domain.FieldError
	if input.BusNumber != nil && normalizeNumber(*input.BusNumber) == "" {
		fields = append(fields, domain.FieldError{Field: "bus_number", Msg: "bus number cannot be empty"})
	}
	if input.LicensePlate != nil && normalizeNumber(*input.LicensePlate) == "" {
		fields = append(fields, domain.FieldError{Field: "license_plate", Msg: "license plate cannot be empty"})
	}
	if input.BusType != nil && !input.BusType.Valid() {
		fields = append(fields, domain.FieldError{Field: "bus_type", Msg: "invalid bus type"})
	}
	if input.Status != nil && !input.Status.Valid() {
		fields = append(fields, domain.FieldError{Field: "status", Msg: "invalid bus status"})
	}
	if input.YearManufactured != nil && *input.YearManufactured != 0 {
		if *input.YearManufactured < 1980 || *input.YearManufactured > time.Now().Year()+1 {
			fields = append(fields, domain.FieldError{Field: "year_manufactured", Msg: "implausible manufacture year"})
		}
	}
	if input.Rows != nil {
		if len(input.Rows) == 0 {
			fields = append(fields, domain.FieldError{Field: "rows", Msg: "at least one row is required"})
		}
		var validationErr domain.ValidationError
		if err := domain.ValidateRows(input.Rows); errors.As(err, &validationErr) {
			fields = append(fields, validationErr.Fields...)
		}
	}
	if len(fields) > 0 {
		respondError(c, domain.ValidationError{Fields: fields})
		return
	}

	if input.BusNumber != nil {
		busNumber := normalizeNumber(*input.BusNumber)
		if taken, err := bc.busNumberTaken(busNumber, bus.ID); err != nil {
			respondError(c, err)
			return
		} else if taken {
			respondError(c, domain.ConflictError{
				Msg: fmt.Sprintf("bus with bus number %s already exists", busNumber)})
			return
		}
		bus.BusNumber = busNumber
	}
	if input.LicensePlate != nil {
		bus.LicensePlate = normalizeNumber(*input.LicensePlate)
	}
	if input.BusName != nil {
		bus.BusName = *input.BusName
	}
	if input.BusType != nil {
		bus.BusType = *input.BusType
	}
	if input.Manufacturer != nil {
		bus.Manufacturer = *input.Manufacturer
	}
	if input.Model != nil {
		bus.Model = *input.Model
	}
	if input.YearManufactured != nil {
		bus.YearManufactured = *input.YearManufactured
	}
	if input.HasWifi != nil {
		bus.HasWifi = *input.HasWifi
	}
	if input.HasAC != nil {
		bus.HasAC = *input.HasAC
	}
	if input.HasTV != nil {
		bus.HasTV = *input.HasTV
	}
	if input.HasChargingPorts != nil {
		bus.HasChargingPorts = *input.HasChargingPorts
	}
	if input.HasRefreshments != nil {
		bus.HasRefreshments = *input.HasRefreshments
	}
	if input.HasRestroom != nil {
		bus.HasRestroom = *input.HasRestroom
	}
	if input.Status != nil {
		bus.Status = *input.Status
	}
	if input.IsAccessible != nil {
		bus.IsAccessible = *input.IsAccessible
	}
	if input.Description != nil {
		bus.Description = *input.Description
	}
	if input.Notes != nil {
		bus.Notes = *input.Notes
	}
	if input.OperatorID != nil {
		bus.OperatorID = input.OperatorID
	}
	if input.Rows != nil {
		bus.Capacity = len(domain.SeatNumbers(input.Rows))
	}

	tx := bc.DB.Begin()
	if tx.Error != nil {
		respondError(c, tx.Error)
		return
	}

	if input.RouteIDs != nil {
		if err := verifyRoutes(tx, input.RouteIDs); err != nil {
			tx.Rollback()
			respondError(c, err)
			return
		}
		if err := tx.Where("bus_id = ?", bus.ID).Delete(&models.BusRoute{}).Error; err != nil {
			tx.Rollback()
			respondError(c, err)
			return
		}
		for _, routeID := range input.RouteIDs {
			link := models.BusRoute{BusID: bus.ID, RouteID: routeID}
			if err := tx.Create(&link).Error; err != nil {
				tx.Rollback()
				respondError(c, err)
				return
			}
		}
	}

	if err := tx.Save(bus).Error; err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			respondError(c, domain.ConflictError{Msg: "bus number or license plate already exists"})
			return
		}
		respondError(c, err)
		return
	}

	if input.Rows != nil {
		if err := tx.Where("bus_id = ?", bus.ID).Delete(&models.Seat{}).Error; err != nil {
			tx.Rollback()
			respondError(c, err)
			return
		}
		seats := buildSeats(bus.ID, input.Rows)
		if len(seats) > 0 {
			if err := tx.Create(&seats).Error; err != nil {
				tx.Rollback()
				respondError(c, err)
				return
			}
		}
	}

	if input.DepartureIDs != nil {
		if err := bc.assignDepartures(tx, bus.ID, input.DepartureIDs); err != nil {
			tx.Rollback()
			respondError(c, err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		respondError(c, err)
		return
	}

	bc.DB.Preload("Seats").Preload("BusRoutes").First(bus, bus.ID)
	logrus.WithFields(logrus.Fields{
		"bus_number": bus.BusNumber, "actor": actor.Username,
	}).Info("bus updated")
	c.JSON(http.StatusOK, busResponse(*bus))
}

// assignDepartures moves the bus onto the given departures. Every
// departure must exist and belong to one of the bus's assigned routes;
// the bus is released from any other departures first.
func (bc *BusController) assignDepartures(tx *gorm.DB, busID uint, departureIDs []uint) error {
	var assignedRouteIDs []uint
	if err := tx.Model(&models.BusRoute{}).Where("bus_id = ?", busID).
		Pluck("route_id", &assignedRouteIDs).Error; err != nil {
		return err
	}
	assigned := make(map[uint]bool, len(assignedRouteIDs))
	for _, routeID := range assignedRouteIDs {
		assigned[routeID] = true
	}

	var departures []models.Departure
	if len(departureIDs) > 0 {
		if err := tx.Where("id IN ?", departureIDs).Find(&departures).Error; err != nil {
			return err
		}
		if len(departures) != len(departureIDs) {
			return domain.NotFoundError{Resource: "departure"}
		}
		for _, departure := range departures {
			if !assigned[departure.RouteID] {
				return domain.RequestError{Msg: fmt.Sprintf(
					"departure %d belongs to route %d which is not assigned to this bus",
					departure.ID, departure.RouteID)}
			}
		}
	}

	if err := tx.Model(&models.Departure{}).Where("bus_id = ?", busID).
		Update("bus_id", nil).Error; err != nil {
		return err
	}
	if len(departureIDs) > 0 {
		if err := tx.Model(&models.Departure{}).Where("id IN ?", departureIDs).
			Update("bus_id", busID).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteBus removes a bus; its seats and route links go with it, and
// its departures are released.
func (bc *BusController) DeleteBus(c *gin.Context) {
	bus, err := bc.loadBus(c)
	if err != nil {
		respondError(c, err)
		return
	}
	actor := middleware.CurrentUser(c)

	tx := bc.DB.Begin()
	if tx.Error != nil {
		respondError(c, tx.Error)
		return
	}
	if err := tx.Model(&models.Departure{}).Where("bus_id = ?", bus.ID).
		Update("bus_id", nil).Error; err != nil {
		tx.Rollback()
		respondError(c, err)
		return
	}
	if err := tx.Where("bus_id = ?", bus.ID).Delete(&models.Seat{}).Error; err != nil {
		tx.Rollback()
		respondError(c, err)
		return
	}
	if err := tx.Where("bus_id = ?", bus.ID).Delete(&models.BusRoute{}).Error; err != nil {
		tx.Rollback()
		respondError(c, err)
		return
	}
	if err := tx.Delete(&models.Bus{}, bus.ID).Error; err != nil {
		tx.Rollback()
		respondError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"bus_number": bus.BusNumber, "actor": actor.Username,
	}).Info("bus deleted")
	c.Status(http.StatusNoContent)
}
