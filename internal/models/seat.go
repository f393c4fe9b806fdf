package models

// Seat belongs to exactly one bus. Seat numbers combine a row number with
// a column letter, e.g. 12C.
type Seat struct {
	ID    uint `gorm:"primaryKey" json:"id"`
	BusID uint `gorm:"not null;index" json:"bus_id"`

	SeatNumber   string `gorm:"size:10;not null" json:"seat_number"`
	IsReserved   bool   `gorm:"not null;default:false" json:"is_reserved"`
	IsWindowSeat bool   `gorm:"not null;default:false" json:"is_window_seat"`
}
