package domain

import (
	"errors"
	"testing"
)

func TestCheckTransition_FullTable(t *testing.T) {
	allowed := map[DepartureStatus]map[DepartureStatus]bool{
		DepartureScheduled: {DepartureDeparted: true, DepartureDelayed: true, DepartureCancelled: true},
		DepartureDeparted:  {DepartureArrived: true},
		DepartureDelayed:   {DepartureDeparted: true, DepartureCancelled: true},
		DepartureArrived:   {},
		DepartureCancelled: {},
	}
	all := []DepartureStatus{
		DepartureScheduled, DepartureDeparted, DepartureArrived,
		DepartureCancelled, DepartureDelayed,
	}

	for _, from := range all {
		for _, to := range all {
			err := CheckTransition(from, to)
			if allowed[from][to] && err != nil {
				t.Fatalf("%s -> %s should be allowed, got %v", from, to, err)
			}
			if !allowed[from][to] && err == nil {
				t.Fatalf("%s -> %s should be rejected", from, to)
			}
		}
	}
}

func TestCheckTransition_TerminalStates(t *testing.T) {
	for _, terminal := range []DepartureStatus{DepartureArrived, DepartureCancelled} {
		if got := AllowedTransitions(terminal); len(got) != 0 {
			t.Fatalf("%s should admit no transitions, got %v", terminal, got)
		}
	}
}

func TestCheckTransition_ErrorDetails(t *testing.T) {
	err := CheckTransition(DepartureScheduled, DepartureArrived)
	var transitionErr InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError, got %T", err)
	}
	if transitionErr.From != DepartureScheduled || transitionErr.To != DepartureArrived {
		t.Fatalf("error carries wrong states: %+v", transitionErr)
	}
	if !IsInvalidTransition(err) {
		t.Fatalf("IsInvalidTransition should recognize the error")
	}
}

func TestDepartureStatus_Valid(t *testing.T) {
	if DepartureStatus("IN_TRANSIT").Valid() {
		t.Fatalf("unknown status should be invalid")
	}
	if !DepartureDelayed.Valid() {
		t.Fatalf("DELAYED should be valid")
	}
}
