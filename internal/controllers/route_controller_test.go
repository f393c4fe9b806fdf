package controllers

import (
	"testing"
	"time"

	"bus_booking/internal/domain"
)

func TestBuildDeparture_DerivesArrivalFromDuration(t *testing.T) {
	departureTime := time.Now().UTC().Add(24 * time.Hour)

	departure, err := buildDeparture(9, 180, routeDepartureInput{DepartureTime: &departureTime}, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := departureTime.Add(3 * time.Hour)
	if !departure.ArrivalTime.Equal(want) {
		t.Fatalf("arrival time: got %v want %v", departure.ArrivalTime, want)
	}
	if departure.RouteID != 9 {
		t.Fatalf("route id: got %d want 9", departure.RouteID)
	}
	if departure.Status != domain.DepartureScheduled {
		t.Fatalf("new departures should start SCHEDULED, got %s", departure.Status)
	}
}

func TestBuildDeparture_KeepsExplicitArrival(t *testing.T) {
	departureTime := time.Now().UTC().Add(24 * time.Hour)
	arrivalTime := departureTime.Add(90 * time.Minute)

	departure, err := buildDeparture(9, 180, routeDepartureInput{
		DepartureTime: &departureTime,
		ArrivalTime:   &arrivalTime,
	}, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !departure.ArrivalTime.Equal(arrivalTime) {
		t.Fatalf("explicit arrival should be kept: got %v want %v", departure.ArrivalTime, arrivalTime)
	}
}

func TestBuildDeparture_RejectsArrivalNotAfterDeparture(t *testing.T) {
	departureTime := time.Now().UTC().Add(24 * time.Hour)

	for _, arrivalTime := range []time.Time{departureTime, departureTime.Add(-time.Hour)} {
		at := arrivalTime
		_, err := buildDeparture(9, 180, routeDepartureInput{
			DepartureTime: &departureTime,
			ArrivalTime:   &at,
		}, 0)
		if !domain.IsValidation(err) {
			t.Fatalf("arrival %v should be rejected, got %v", at, err)
		}
	}
}

func TestBuildDeparture_RejectsPastDeparture(t *testing.T) {
	departureTime := time.Now().UTC().Add(-time.Minute)

	_, err := buildDeparture(9, 180, routeDepartureInput{DepartureTime: &departureTime}, 0)
	if !domain.IsValidation(err) {
		t.Fatalf("past departure time should be rejected, got %v", err)
	}
}

func TestBuildDeparture_RequiresDepartureTime(t *testing.T) {
	_, err := buildDeparture(9, 180, routeDepartureInput{}, 0)
	if !domain.IsValidation(err) {
		t.Fatalf("missing departure time should be rejected, got %v", err)
	}
}
