package controllers

import (
	"testing"

	"bus_booking/internal/domain"
)

func TestBuildSeats_LabelsAndDefaults(t *testing.T) {
	seats := buildSeats(4, []domain.BusRow{
		{RowNumber: 1, SeatCount: 3},
		{RowNumber: 2, SeatCount: 2},
	})

	wantLabels := []string{"1A", "1B", "1C", "2A", "2B"}
	if len(seats) != len(wantLabels) {
		t.Fatalf("expected %d seats, got %d", len(wantLabels), len(seats))
	}
	for i, seat := range seats {
		if seat.SeatNumber != wantLabels[i] {
			t.Fatalf("seat %d: got %q want %q", i, seat.SeatNumber, wantLabels[i])
		}
		if seat.BusID != 4 {
			t.Fatalf("seat %q: bus id got %d want 4", seat.SeatNumber, seat.BusID)
		}
		if seat.IsReserved || seat.IsWindowSeat {
			t.Fatalf("seat %q: flags should start false, got reserved=%v window=%v",
				seat.SeatNumber, seat.IsReserved, seat.IsWindowSeat)
		}
	}
}
