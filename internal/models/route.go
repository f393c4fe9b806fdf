package models

import (
	"time"

	"gorm.io/datatypes"

	"bus_booking/internal/domain"
)

// IntermediateStop is an ordered stop between the origin and destination
// cities, stored as part of the route's jsonb stop list.
type IntermediateStop struct {
	City                 string `json:"city"`
	StopDurationMinutes  int    `json:"stop_duration_minutes"`
	DistanceFromOriginKM int    `json:"distance_from_origin_km"`
}

// Route is a service path between two cities. It exclusively owns its
// departures and bus links; both cascade on route deletion.
type Route struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RouteNumber     string `gorm:"size:50;uniqueIndex;not null" json:"route_number"`
	RouteName       string `gorm:"size:100" json:"route_name"`
	OriginCity      string `gorm:"size:100;not null;index" json:"origin_city"`
	DestinationCity string `gorm:"size:100;not null;index" json:"destination_city"`
	DistanceKM      int    `gorm:"not null" json:"distance_km"`
	DurationMinutes int    `gorm:"not null" json:"duration_minutes"`

	IntermediateStops datatypes.JSONSlice[IntermediateStop] `json:"intermediate_stops"`

	BasePrice float64            `gorm:"not null" json:"base_price"`
	Status    domain.RouteStatus `gorm:"size:20;not null;default:ACTIVE" json:"status"`

	IsExpress     bool                        `gorm:"not null;default:false" json:"is_express"`
	IsOvernight   bool                        `gorm:"not null;default:false" json:"is_overnight"`
	OperatesDaily bool                        `gorm:"not null;default:false" json:"operates_daily"`
	OperatingDays datatypes.JSONSlice[string] `json:"operating_days"`

	Description string `gorm:"type:text" json:"description"`
	Notes       string `gorm:"type:text" json:"notes"`

	CreatedByID *uint `gorm:"index" json:"created_by_id"`
	CreatedBy   *User `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"created_by,omitempty"`

	Departures []Departure `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE" json:"departures,omitempty"`
	BusRoutes  []BusRoute  `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE" json:"bus_routes,omitempty"`
}

func (r Route) IsOperational() bool {
	return r.Status == domain.RouteActive
}

func (r Route) EstimatedDurationHours() float64 {
	return float64(r.DurationMinutes) / 60
}

func (r Route) TotalStops() int {
	return len(r.IntermediateStops)
}
