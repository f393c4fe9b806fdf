package models

import "time"

// BusRoute links one bus to one route. Deleting either endpoint cascades
// the link.
type BusRoute struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BusID      uint      `gorm:"not null;index" json:"bus_id"`
	RouteID    uint      `gorm:"not null;index" json:"route_id"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`

	Bus   *Bus   `gorm:"foreignKey:BusID;constraint:OnDelete:CASCADE" json:"bus,omitempty"`
	Route *Route `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE" json:"route,omitempty"`
}
