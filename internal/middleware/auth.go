package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bus_booking/internal/auth"
	"bus_booking/internal/models"
)

const currentUserKey = "current_user"

// Authenticator resolves bearer tokens to stored user records.
type Authenticator struct {
	DB     *gorm.DB
	Tokens *auth.TokenManager
}

func NewAuthenticator(db *gorm.DB, tokens *auth.TokenManager) *Authenticator {
	return &Authenticator{DB: db, Tokens: tokens}
}

// resolve verifies the Authorization header, checks the access type claim
// and loads the active user behind it. On failure it returns the status
// code and detail message to reject with.
func (a *Authenticator) resolve(c *gin.Context) (*models.User, int, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, http.StatusUnauthorized, "missing or invalid Authorization header"
	}

	claims, err := a.Tokens.Verify(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return nil, http.StatusUnauthorized, "could not validate credentials"
	}
	if claims.TokenType != auth.TokenTypeAccess {
		return nil, http.StatusUnauthorized, "invalid token type"
	}
	if claims.UserID == 0 {
		return nil, http.StatusUnauthorized, "could not validate credentials"
	}

	var user models.User
	if err := a.DB.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusUnauthorized, "could not validate credentials"
		}
		logrus.WithError(err).Error("user lookup failed during authentication")
		return nil, http.StatusServiceUnavailable, "database service unavailable, please try again later"
	}
	if !user.IsActive {
		return nil, http.StatusUnauthorized, "account has been deactivated"
	}
	return &user, 0, ""
}

// RequireUser rejects the request unless a valid access token for an
// active user is presented.
func (a *Authenticator) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, status, reason := a.resolve(c)
		if user == nil {
			c.AbortWithStatusJSON(status, gin.H{"detail": reason})
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireAdmin is RequireUser plus an ADMIN role check.
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, status, reason := a.resolve(c)
		if user == nil {
			c.AbortWithStatusJSON(status, gin.H{"detail": reason})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "admin access required"})
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// OptionalUser resolves the caller when possible but never rejects; on
// any failure the request proceeds anonymously.
func (a *Authenticator) OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, _, _ := a.resolve(c); user != nil {
			c.Set(currentUserKey, user)
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated caller set by RequireUser or
// RequireAdmin, or nil when the request is anonymous.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
