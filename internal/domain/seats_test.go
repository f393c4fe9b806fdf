package domain

import (
	"errors"
	"testing"
)

func TestSeatNumbers_RowExpansion(t *testing.T) {
	rows := []BusRow{
		{RowNumber: 1, SeatCount: 4},
		{RowNumber: 2, SeatCount: 2},
	}
	got := SeatNumbers(rows)
	want := []string{"1A", "1B", "1C", "1D", "2A", "2B"}

	if len(got) != len(want) {
		t.Fatalf("expected %d seats, got %d", len(want), len(got))
	}
	for i, label := range want {
		if got[i] != label {
			t.Fatalf("seat %d: expected %s, got %s", i, label, got[i])
		}
	}
}

func TestSeatNumbers_NoDuplicates(t *testing.T) {
	rows := []BusRow{
		{RowNumber: 0, SeatCount: 6},
		{RowNumber: 15, SeatCount: 3},
		{RowNumber: 30, SeatCount: 6},
	}
	seen := make(map[string]bool)
	for _, label := range SeatNumbers(rows) {
		if seen[label] {
			t.Fatalf("duplicate seat label %s", label)
		}
		seen[label] = true
	}
}

func TestRowSeatLabels_MaxRow(t *testing.T) {
	got := RowSeatLabels(BusRow{RowNumber: 30, SeatCount: 6})
	if got[0] != "30A" || got[5] != "30F" {
		t.Fatalf("unexpected labels for row 30: %v", got)
	}
}

func TestValidateRows_Bounds(t *testing.T) {
	cases := []struct {
		name string
		rows []BusRow
		ok   bool
	}{
		{"valid", []BusRow{{RowNumber: 0, SeatCount: 1}, {RowNumber: 30, SeatCount: 6}}, true},
		{"row too high", []BusRow{{RowNumber: 31, SeatCount: 2}}, false},
		{"row negative", []BusRow{{RowNumber: -1, SeatCount: 2}}, false},
		{"seat count zero", []BusRow{{RowNumber: 5, SeatCount: 0}}, false},
		{"seat count too high", []BusRow{{RowNumber: 5, SeatCount: 7}}, false},
	}

	for _, tc := range cases {
		err := ValidateRows(tc.rows)
		if tc.ok && err != nil {
			t.Fatalf("%s: expected no error, got %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
	}
}

func TestValidateRows_CollectsAllFields(t *testing.T) {
	err := ValidateRows([]BusRow{
		{RowNumber: 40, SeatCount: 9},
		{RowNumber: 3, SeatCount: 2},
	})
	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(validationErr.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %d: %v", len(validationErr.Fields), validationErr.Fields)
	}
}
