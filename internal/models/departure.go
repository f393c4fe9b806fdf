package models

import (
	"time"

	"bus_booking/internal/domain"
)

// Departure is one scheduled trip on a route. A nil BusID means no bus is
// assigned yet.
type Departure struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RouteID uint  `gorm:"not null;index" json:"route_id"`
	BusID   *uint `gorm:"index" json:"bus_id"`

	DepartureTime time.Time `gorm:"not null;index" json:"departure_time"`
	ArrivalTime   time.Time `gorm:"not null" json:"arrival_time"`

	Status      domain.DepartureStatus `gorm:"size:20;not null;default:SCHEDULED" json:"status"`
	IsCancelled bool                   `gorm:"not null;default:false" json:"is_cancelled"`
	IsFull      bool                   `gorm:"not null;default:false" json:"is_full"`
	Notes       string                 `gorm:"type:text" json:"notes"`

	Route *Route `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE" json:"route,omitempty"`
	Bus   *Bus   `gorm:"foreignKey:BusID;constraint:OnDelete:SET NULL" json:"bus,omitempty"`
}
