package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bus_booking/internal/auth"
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

func authedRequest(t *testing.T, tokens *auth.TokenManager) *http.Request {
	t.Helper()
	token, err := tokens.IssueAccess(1, "alice1234", "a@x.com", "CUSTOMER")
	if err != nil {
		t.Fatalf("issuing token failed: %v", err)
	}
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRequireUser_StorageFailureIs503(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock := newMockDB(t)
	tokens := auth.NewTokenManager("test-secret", 30*time.Minute, 7*24*time.Hour)
	a := NewAuthenticator(db, tokens)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnError(errors.New("connection refused"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = authedRequest(t, tokens)

	a.RequireUser()(c)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("storage failure should be 503, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestRequireUser_UnknownUserIs401(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock := newMockDB(t)
	tokens := auth.NewTokenManager("test-secret", 30*time.Minute, 7*24*time.Hour)
	a := NewAuthenticator(db, tokens)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "is_active"}))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = authedRequest(t, tokens)

	a.RequireUser()(c)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing user should be 401, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestRequireUser_MissingHeaderIs401(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, _ := newMockDB(t)
	tokens := auth.NewTokenManager("test-secret", 30*time.Minute, 7*24*time.Hour)
	a := NewAuthenticator(db, tokens)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	a.RequireUser()(c)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header should be 401, got %d", w.Code)
	}
}
