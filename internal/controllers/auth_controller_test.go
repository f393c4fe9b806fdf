package controllers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"bus_booking/internal/auth"
	"bus_booking/internal/domain"
	"bus_booking/internal/models"
)

func TestSoftDelete_MarksAndPrefixes(t *testing.T) {
	user := models.User{ID: 7, Username: "alice1234", Email: "a@x.com", IsActive: true}

	softDelete(&user)

	if user.IsActive {
		t.Fatalf("soft-deleted user should be inactive")
	}
	if user.Username != "deleted_7_alice1234" {
		t.Fatalf("username marker wrong: %q", user.Username)
	}
	if user.Email != "deleted_7_a@x.com" {
		t.Fatalf("email marker wrong: %q", user.Email)
	}
}

func TestSoftDeleteReactivate_RoundTrip(t *testing.T) {
	user := models.User{ID: 42, Username: "bob_driver", Email: "bob@x.com", IsActive: true}

	softDelete(&user)
	reactivate(&user)

	if !user.IsActive {
		t.Fatalf("reactivated user should be active")
	}
	if user.Username != "bob_driver" {
		t.Fatalf("username not restored exactly: %q", user.Username)
	}
	if user.Email != "bob@x.com" {
		t.Fatalf("email not restored exactly: %q", user.Email)
	}

	// A second round trip behaves the same.
	softDelete(&user)
	reactivate(&user)
	if user.Username != "bob_driver" || user.Email != "bob@x.com" {
		t.Fatalf("second round trip diverged: %q / %q", user.Username, user.Email)
	}
}

func TestRespondTokenPair_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ac := &AuthController{
		Tokens: auth.NewTokenManager("test-secret", 30*time.Minute, 7*24*time.Hour),
	}
	user := models.User{ID: 1, Username: "alice1234", Email: "a@x.com", Role: domain.RoleCustomer}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	if !ac.respondTokenPair(c, user) {
		t.Fatalf("issuance should succeed")
	}
	if w.Code != 200 {
		t.Fatalf("status: got %d want 200", w.Code)
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body failed: %v", err)
	}
	if body.AccessToken == "" || body.RefreshToken == "" {
		t.Fatalf("token pair missing: %+v", body)
	}
	if body.TokenType != "bearer" {
		t.Fatalf("token type: got %q want bearer", body.TokenType)
	}
	if body.ExpiresIn != 1800 {
		t.Fatalf("expires_in: got %d want 1800", body.ExpiresIn)
	}
}
