package controllers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening sqlmock failed: %v", err)
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening gorm over sqlmock failed: %v", err)
	}
	return db, mock
}

func TestCalendar_DistinctDatesUnderDepartureDatesKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock := newMockDB(t)
	dc := NewDepartureController(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "routes"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	day10Morning := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	day10Evening := time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)
	day12 := time.Date(2026, 9, 12, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "route_id", "departure_time", "arrival_time", "status"}).
		AddRow(1, 5, day10Morning, day10Morning.Add(3*time.Hour), "SCHEDULED").
		AddRow(2, 5, day10Evening, day10Evening.Add(3*time.Hour), "SCHEDULED").
		AddRow(3, 5, day12, day12.Add(3*time.Hour), "SCHEDULED")
	mock.ExpectQuery(`SELECT \* FROM "departures"`).WillReturnRows(rows)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/departures/by_route/5/calendar/2026/9", nil)
	c.Params = gin.Params{
		{Key: "route_id", Value: "5"},
		{Key: "year", Value: "2026"},
		{Key: "month", Value: "9"},
	}

	dc.Calendar(c)

	if w.Code != 200 {
		t.Fatalf("status: got %d want 200, body %s", w.Code, w.Body.String())
	}
	var body struct {
		RouteID        uint     `json:"route_id"`
		DepartureDates []string `json:"departure_dates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body failed: %v", err)
	}
	if body.RouteID != 5 {
		t.Fatalf("route id: got %d want 5", body.RouteID)
	}
	want := []string{"2026-09-10", "2026-09-12"}
	if len(body.DepartureDates) != len(want) {
		t.Fatalf("dates: got %v want %v", body.DepartureDates, want)
	}
	for i, date := range want {
		if body.DepartureDates[i] != date {
			t.Fatalf("date %d: got %q want %q", i, body.DepartureDates[i], date)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
