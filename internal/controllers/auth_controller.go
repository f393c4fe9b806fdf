package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bus_booking/internal/auth"
	"bus_booking/internal/domain"
	"bus_booking/internal/middleware"
	"bus_booking/internal/models"
)

// AuthController owns user accounts and token endpoints.
type AuthController struct {
	DB     *gorm.DB
	Tokens *auth.TokenManager
}

func NewAuthController(db *gorm.DB, tokens *auth.TokenManager) *AuthController {
	return &AuthController{DB: db, Tokens: tokens}
}

type registerInput struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

type updateProfileInput struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
}

type passwordChangeInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type passwordConfirmationInput struct {
	Password string `json:"password" binding:"required"`
}

type loginInput struct {
	UsernameOrEmail string `json:"username_or_email" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

type refreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func userResponse(user models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"role":         user.Role,
		"first_name":   user.FirstName,
		"last_name":    user.LastName,
		"phone_number": user.PhoneNumber,
		"full_name":    user.FullName(),
		"is_active":    user.IsActive,
		"is_verified":  user.IsVerified,
		"created_at":   user.CreatedAt,
		"updated_at":   user.UpdatedAt,
	}
}

// usernameTaken checks case-insensitive username uniqueness, excluding
// excludeID when non-zero.
func (ac *AuthController) usernameTaken(username string, excludeID uint) (bool, error) {
	query := ac.DB.Model(&models.User{}).Where("LOWER(username) = LOWER(?)", username)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ac *AuthController) emailTaken(email string, excludeID uint) (bool, error) {
	query := ac.DB.Model(&models.User{}).Where("LOWER(email) = LOWER(?)", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ac *AuthController) createAccount(c *gin.Context, input registerInput, role domain.Role, verified bool) {
	var fields []domain.FieldError
	fields = append(fields, validateUsername(input.Username)...)
	fields = append(fields, validateEmail(input.Email)...)
	fields = append(fields, validatePhoneNumber(input.PhoneNumber)...)
	if role == domain.RoleAdmin {
		fields = append(fields, validateAdminPassword("password", input.Password)...)
	} else {
		fields = append(fields, validatePassword("password", input.Password)...)
	}
	if len(fields) > 0 {
		respondError(c, domain.ValidationError{Fields: fields})
		return
	}

	username := strings.ToLower(input.Username)
	email := strings.ToLower(input.Email)

	if taken, err := ac.usernameTaken(username, 0); err != nil {
		respondError(c, err)
		return
	} else if taken {
		respondError(c, domain.ConflictError{Msg: "username already exists"})
		return
	}
	if taken, err := ac.emailTaken(email, 0); err != nil {
		respondError(c, err)
		return
	} else if taken {
		respondError(c, domain.ConflictError{Msg: "email already exists"})
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		IsActive:     true,
		IsVerified:   verified,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(c, domain.ConflictError{Msg: "username or email already exists"})
			return
		}
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID, "username": user.Username, "role": user.Role,
	}).Info("user registered")

	c.JSON(http.StatusCreated, userResponse(user))
}

// Register creates a customer account.
func (ac *AuthController) Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	ac.createAccount(c, input, domain.RoleCustomer, false)
}

// RegisterAdmin creates an admin account. Admins are pre-verified; there
// is no email verification step anywhere in the system.
func (ac *AuthController) RegisterAdmin(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	actor := middleware.CurrentUser(c)
	logrus.WithField("actor", actor.Username).Info("admin registration requested")
	ac.createAccount(c, input, domain.RoleAdmin, true)
}

// UpdateProfile applies a partial update to the caller's profile. Absent
// fields are untouched; supplied identity fields are re-validated and
// checked for uniqueness excluding the caller's own row.
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var input updateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	user := middleware.CurrentUser(c)

	var fields []domain.FieldError
	if input.Username != nil {
		fields = append(fields, validateUsername(*input.Username)...)
	}
	if input.Email != nil {
		fields = append(fields, validateEmail(*input.Email)...)
	}
	if input.FirstName != nil && *input.FirstName == "" {
		fields = append(fields, domain.FieldError{Field: "first_name", Msg: "must not be empty"})
	}
	if input.LastName != nil && *input.LastName == "" {
		fields = append(fields, domain.FieldError{Field: "last_name", Msg: "must not be empty"})
	}
	if input.PhoneNumber != nil {
		fields = append(fields, validatePhoneNumber(*input.PhoneNumber)...)
	}
	if len(fields) > 0 {
		respondError(c, domain.ValidationError{Fields: fields})
		return
	}

	if input.Username != nil {
		username := strings.ToLower(*input.Username)
		if taken, err := ac.usernameTaken(username, user.ID); err != nil {
			respondError(c, err)
			return
		} else if taken {
			respondError(c, domain.ConflictError{Msg: "username already exists"})
			return
		}
		user.Username = username
	}
	if input.Email != nil {
		email := strings.ToLower(*input.Email)
		if taken, err := ac.emailTaken(email, user.ID); err != nil {
			respondError(c, err)
			return
		} else if taken {
			respondError(c, domain.ConflictError{Msg: "email already exists"})
			return
		}
		user.Email = email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = *input.PhoneNumber
	}

	if err := ac.DB.Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(c, domain.ConflictError{Msg: "username or email already exists"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userResponse(*user))
}

// ChangePassword replaces the caller's password after confirming the
// current one.
func (ac *AuthController) ChangePassword(c *gin.Context) {
	var input passwordChangeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	user := middleware.CurrentUser(c)

	if fields := validatePassword("new_password", input.NewPassword); len(fields) > 0 {
		respondError(c, domain.ValidationError{Fields: fields})
		return
	}
	if !auth.VerifyPassword(input.CurrentPassword, user.PasswordHash) {
		respondError(c, domain.RequestError{Msg: "current password is incorrect"})
		return
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	user.PasswordHash = hash
	if err := ac.DB.Save(user).Error; err != nil {
		respondError(c, err)
		return
	}

	logrus.WithField("user_id", user.ID).Info("user password changed")
	c.JSON(http.StatusOK, gin.H{"message": "password changed successfully"})
}

// deletionPrefix rewrites username/email with a marker that frees the
// original values for reuse while keeping the row.
func deletionPrefix(id uint) string {
	return fmt.Sprintf("deleted_%d_", id)
}

func softDelete(user *models.User) {
	prefix := deletionPrefix(user.ID)
	user.IsActive = false
	user.Username = prefix + user.Username
	user.Email = prefix + user.Email
}

// reactivate undoes softDelete, restoring the original username/email
// exactly.
func reactivate(user *models.User) {
	prefix := deletionPrefix(user.ID)
	user.IsActive = true
	user.Username = strings.TrimPrefix(user.Username, prefix)
	user.Email = strings.TrimPrefix(user.Email, prefix)
}

// DeleteMe soft-deletes the caller's own account after password
// confirmation.
func (ac *AuthController) DeleteMe(c *gin.Context) {
	var input passwordConfirmationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	user := middleware.CurrentUser(c)

	if !auth.VerifyPassword(input.Password, user.PasswordHash) {
		respondError(c, domain.RequestError{Msg: "invalid password confirmation"})
		return
	}

	softDelete(user)
	if err := ac.DB.Save(user).Error; err != nil {
		respondError(c, err)
		return
	}

	logrus.WithField("user_id", user.ID).Info("user account soft-deleted")
	c.JSON(http.StatusOK, gin.H{
		"message":         "user account successfully deleted (soft delete)",
		"deleted_user_id": user.ID,
		"username":        user.Username,
	})
}

func (ac *AuthController) targetUser(c *gin.Context) (*models.User, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, domain.Invalid("id", "must be a positive integer")
	}
	var user models.User
	if err := ac.DB.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Resource: "user"}
		}
		return nil, err
	}
	return &user, nil
}

// AdminDeleteUser soft-deletes another user's account. Admins must use
// the self-service endpoint for their own account.
func (ac *AuthController) AdminDeleteUser(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	target, err := ac.targetUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if target.ID == actor.ID {
		respondError(c, domain.RequestError{Msg: "use /users/me endpoint to delete your own account"})
		return
	}

	originalUsername := target.Username
	softDelete(target)
	if err := ac.DB.Save(target).Error; err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"target_id": target.ID, "actor_id": actor.ID,
	}).Info("user account soft-deleted by admin")
	c.JSON(http.StatusOK, gin.H{
		"message":         fmt.Sprintf("user account %s successfully deleted by admin (soft delete)", originalUsername),
		"deleted_user_id": target.ID,
		"username":        target.Username,
	})
}

// AdminHardDeleteUser permanently removes a user's row. Records created
// or operated by the user keep existing with their reference nulled.
func (ac *AuthController) AdminHardDeleteUser(c *gin.Context) {
	var input passwordConfirmationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	actor := middleware.CurrentUser(c)

	if !auth.VerifyPassword(input.Password, actor.PasswordHash) {
		respondError(c, domain.RequestError{Msg: "invalid admin password confirmation"})
		return
	}

	target, err := ac.targetUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if target.ID == actor.ID {
		respondError(c, domain.RequestError{Msg: "administrators cannot hard delete their own accounts"})
		return
	}

	deletedUsername := target.Username
	deletedID := target.ID
	if err := ac.DB.Delete(target).Error; err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"target_id": deletedID, "actor_id": actor.ID,
	}).Warn("user account permanently deleted by admin")
	c.JSON(http.StatusOK, gin.H{
		"message":          fmt.Sprintf("user account %s permanently deleted by admin", deletedUsername),
		"deleted_user_id":  deletedID,
		"deleted_username": deletedUsername,
		"warning":          "this action cannot be undone",
	})
}

// AdminReactivateUser restores a soft-deleted account, stripping the
// deletion marker so the original username/email come back exactly.
func (ac *AuthController) AdminReactivateUser(c *gin.Context) {
	target, err := ac.targetUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if target.IsActive {
		respondError(c, domain.RequestError{Msg: "user account is already active"})
		return
	}

	reactivate(target)

	if err := ac.DB.Save(target).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(c, domain.ConflictError{Msg: "original username or email has been claimed by another account"})
			return
		}
		respondError(c, err)
		return
	}

	logrus.WithField("user_id", target.ID).Info("user account reactivated")
	c.JSON(http.StatusOK, userResponse(*target))
}

// Login authenticates by username or email and returns a token pair.
func (ac *AuthController) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	identifier := strings.ToLower(input.UsernameOrEmail)
	var user models.User
	err := ac.DB.Where("LOWER(username) = ? OR LOWER(email) = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, domain.UnauthorizedError{Msg: "incorrect username/email or password"})
			return
		}
		respondError(c, err)
		return
	}

	if !auth.VerifyPassword(input.Password, user.PasswordHash) {
		respondError(c, domain.UnauthorizedError{Msg: "incorrect username/email or password"})
		return
	}
	if !user.IsActive {
		respondError(c, domain.UnauthorizedError{Msg: "user account is inactive"})
		return
	}

	if ac.respondTokenPair(c, user) {
		logrus.WithField("user_id", user.ID).Info("user logged in")
	}
}

// Refresh exchanges a valid refresh token for a fresh token pair. The
// old refresh token is not invalidated; there is no revocation store.
func (ac *AuthController) Refresh(c *gin.Context) {
	var input refreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	claims, err := ac.Tokens.Verify(input.RefreshToken)
	if err != nil || claims.TokenType != auth.TokenTypeRefresh || claims.UserID == 0 {
		respondError(c, domain.UnauthorizedError{})
		return
	}

	var user models.User
	if err := ac.DB.First(&user, claims.UserID).Error; err != nil {
		respondError(c, domain.UnauthorizedError{})
		return
	}
	if !user.IsActive {
		respondError(c, domain.UnauthorizedError{})
		return
	}

	if ac.respondTokenPair(c, user) {
		logrus.WithField("user_id", user.ID).Info("token refreshed")
	}
}

// respondTokenPair writes a fresh token pair and reports whether
// issuance succeeded.
func (ac *AuthController) respondTokenPair(c *gin.Context, user models.User) bool {
	access, err := ac.Tokens.IssueAccess(user.ID, user.Username, user.Email, string(user.Role))
	if err != nil {
		respondError(c, err)
		return false
	}
	refresh, err := ac.Tokens.IssueRefresh(user.ID)
	if err != nil {
		respondError(c, err)
		return false
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
		"expires_in":    int(ac.Tokens.AccessTTL().Seconds()),
	})
	return true
}

// Logout is advisory only: the server keeps no token state, so a leaked
// token remains valid until natural expiry.
func (ac *AuthController) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	logrus.WithField("user_id", user.ID).Info("user logged out")
	c.JSON(http.StatusOK, gin.H{
		"message":      "successfully logged out",
		"instructions": "please remove the token from client storage",
	})
}

// Me returns the caller's own profile.
func (ac *AuthController) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, userResponse(*user))
}
