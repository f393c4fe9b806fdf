package models

import (
	"time"

	"bus_booking/internal/domain"
)

// Bus is a fleet vehicle. It exclusively owns its seats and route links
// (cascade on deletion); departures reference it weakly (set-null).
type Bus struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BusNumber    string `gorm:"size:50;uniqueIndex;not null" json:"bus_number"`
	LicensePlate string `gorm:"size:20;uniqueIndex;not null" json:"license_plate"`
	BusName      string `gorm:"size:100" json:"bus_name"`

	BusType          domain.BusType `gorm:"size:20;not null;default:STANDARD" json:"bus_type"`
	Capacity         int            `gorm:"not null" json:"capacity"`
	Manufacturer     string         `gorm:"size:50" json:"manufacturer"`
	Model            string         `gorm:"size:50" json:"model"`
	YearManufactured int            `json:"year_manufactured"`

	HasWifi          bool `gorm:"not null;default:false" json:"has_wifi"`
	HasAC            bool `gorm:"not null;default:false" json:"has_ac"`
	HasTV            bool `gorm:"not null;default:false" json:"has_tv"`
	HasChargingPorts bool `gorm:"not null;default:false" json:"has_charging_ports"`
	HasRefreshments  bool `gorm:"not null;default:false" json:"has_refreshments"`
	HasRestroom      bool `gorm:"not null;default:false" json:"has_restroom"`

	Status       domain.BusStatus `gorm:"size:20;not null;default:ACTIVE" json:"status"`
	IsAccessible bool             `gorm:"not null;default:false" json:"is_accessible"`

	Description string `gorm:"type:text" json:"description"`
	Notes       string `gorm:"type:text" json:"notes"`

	CreatedByID *uint `gorm:"index" json:"created_by_id"`
	CreatedBy   *User `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"created_by,omitempty"`
	OperatorID  *uint `gorm:"index" json:"operator_id"`
	Operator    *User `gorm:"foreignKey:OperatorID;constraint:OnDelete:SET NULL" json:"operator,omitempty"`

	Seats      []Seat      `gorm:"foreignKey:BusID;constraint:OnDelete:CASCADE" json:"seats,omitempty"`
	BusRoutes  []BusRoute  `gorm:"foreignKey:BusID;constraint:OnDelete:CASCADE" json:"bus_routes,omitempty"`
	Departures []Departure `gorm:"foreignKey:BusID;constraint:OnDelete:SET NULL" json:"departures,omitempty"`
}

func (b Bus) IsOperational() bool {
	return b.Status == domain.BusActive
}

// AmenitiesList names every amenity flag that is set, for display.
func (b Bus) AmenitiesList() []string {
	var amenities []string
	if b.HasWifi {
		amenities = append(amenities, "WiFi")
	}
	if b.HasAC {
		amenities = append(amenities, "AC")
	}
	if b.HasTV {
		amenities = append(amenities, "TV")
	}
	if b.HasChargingPorts {
		amenities = append(amenities, "Charging Ports")
	}
	if b.HasRestroom {
		amenities = append(amenities, "Restroom")
	}
	if b.HasRefreshments {
		amenities = append(amenities, "Refreshments")
	}
	if b.IsAccessible {
		amenities = append(amenities, "Wheelchair Accessible")
	}
	return amenities
}
