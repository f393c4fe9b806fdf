package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening sqlmock failed: %v", err)
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening gorm over sqlmock failed: %v", err)
	}
	return db, mock
}

func TestSweep_MarksOverdueDeparturesDelayed(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewSweeper(db, time.Minute, 10*time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "departures"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3).AddRow(8))
	mock.ExpectExec(`UPDATE "departures" SET`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	if err := s.sweep(time.Now().UTC()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSweep_NoOverdueDepartures(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewSweeper(db, time.Minute, 10*time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "departures"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	if err := s.sweep(time.Now().UTC()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSweep_SelectFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewSweeper(db, time.Minute, 10*time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "departures"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	if err := s.sweep(time.Now().UTC()); err == nil {
		t.Fatalf("expected sweep to surface the query error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSweep_UpdateFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewSweeper(db, time.Minute, 10*time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "departures"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec(`UPDATE "departures" SET`).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	if err := s.sweep(time.Now().UTC()); err == nil {
		t.Fatalf("expected sweep to surface the update error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSweeper_StartStop(t *testing.T) {
	db, _ := newMockDB(t)
	s := NewSweeper(db, time.Hour, 10*time.Minute)

	s.Start()
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Stop did not return")
	}
}
