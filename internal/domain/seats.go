package domain

import "fmt"

const (
	maxRowNumber = 30
	maxSeatCount = 6
)

// BusRow specifies one physical row of a bus: its number and how many
// seats it holds.
type BusRow struct {
	RowNumber int `json:"row_number"`
	SeatCount int `json:"seat_count"`
}

// ValidateRows checks every row spec and reports all out-of-range values.
func ValidateRows(rows []BusRow) error {
	var fields []FieldError
	for i, row := range rows {
		if row.RowNumber < 0 || row.RowNumber > maxRowNumber {
			fields = append(fields, FieldError{
				Field: fmt.Sprintf("rows[%d].row_number", i),
				Msg:   "row number must be between 0 and 30",
			})
		}
		if row.SeatCount < 1 || row.SeatCount > maxSeatCount {
			fields = append(fields, FieldError{
				Field: fmt.Sprintf("rows[%d].seat_count", i),
				Msg:   "seat count must be between 1 and 6",
			})
		}
	}
	if len(fields) > 0 {
		return ValidationError{Fields: fields}
	}
	return nil
}

// RowSeatLabels expands one row spec into its seat labels, formed from
// the row number and sequential uppercase letters starting at A, e.g.
// row 12 with 4 seats gives 12A..12D.
func RowSeatLabels(row BusRow) []string {
	labels := make([]string, 0, row.SeatCount)
	for i := 0; i < row.SeatCount; i++ {
		labels = append(labels, fmt.Sprintf("%d%c", row.RowNumber, 'A'+i))
	}
	return labels
}

// SeatNumbers expands row specs into the full seat label list.
func SeatNumbers(rows []BusRow) []string {
	var numbers []string
	for _, row := range rows {
		numbers = append(numbers, RowSeatLabels(row)...)
	}
	return numbers
}
