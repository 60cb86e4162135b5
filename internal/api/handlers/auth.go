package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jarinsubahh/buet-exchange/internal/config"
	"github.com/jarinsubahh/buet-exchange/internal/db/models"
	"github.com/jarinsubahh/buet-exchange/internal/services"
	"github.com/jarinsubahh/buet-exchange/internal/utils"
)

type AuthHandler struct {
	sessions *services.SessionService
	db       *gorm.DB
	security config.SecurityConfig
	logger   *zap.Logger
}

func NewAuthHandler(sessions *services.SessionService, db *gorm.DB, security config.SecurityConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		db:       db,
		security: security,
		logger:   logger.With(zap.String("handler", "auth")),
	}
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Department      string `json:"department"`
	Level           int    `json:"level"`
	Term            int    `json:"term"`
	Phone           string `json:"phone"`
}

type userResponse struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
	Level      int    `json:"level,omitempty"`
	Term       int    `json:"term,omitempty"`
	Phone      string `json:"phone,omitempty"`
	IsAdmin    bool   `json:"is_admin"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Department: u.Department,
		Level:      u.Level,
		Term:       u.Term,
		Phone:      u.Phone,
		IsAdmin:    u.IsAdmin(),
	}
}

// validateSignup checks everything that can be rejected before touching
// the store.
func (ah *AuthHandler) validateSignup(req *signupRequest) string {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return "name, email and password are required"
	}
	if !utils.AllowedEmail(req.Email, ah.security.AllowedEmailDomains) {
		return "please use a valid institutional email address"
	}
	if len(req.Password) < ah.security.PasswordMinLength {
		return "password is too short"
	}
	if req.Password != req.ConfirmPassword {
		return "passwords do not match"
	}
	if req.Department == "" || !models.ValidDepartment(req.Department) {
		return "unknown department"
	}
	if req.Level < 0 || req.Level > models.MaxLevel(req.Department) {
		return "level is out of range for this department"
	}
	if req.Term < 0 || req.Term > models.MaxTerm(req.Department) {
		return "term is out of range for this department"
	}
	return ""
}

func (ah *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	if reason := ah.validateSignup(&req); reason != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return
	}

	var existing models.User
	if res := ah.db.Where("email = ?", req.Email).First(&existing); res.Error == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "an account with this email already exists"})
		return
	}

	hash, err := utils.EncryptPassword(req.Password)
	if err != nil {
		ah.logger.Error("Failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create account"})
		return
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Department:   req.Department,
		Level:        req.Level,
		Term:         req.Term,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         models.RoleStudent,
		ActiveStatus: true,
		LastLogin:    time.Now(),
	}
	if res := ah.db.Create(&user); res.Error != nil {
		ah.logger.Error("Failed to create user", zap.String("email", req.Email), zap.Error(res.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create account"})
		return
	}

	ah.logger.Info("User registered",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID))

	ah.startSession(c, &user)
	c.JSON(http.StatusCreated, toUserResponse(&user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	var user models.User
	if res := ah.db.Where("email = ?", req.Email).First(&user); res.Error != nil {
		ah.logger.Warn("Unknown email at login", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	if ok, err := utils.VerifyPassword(user.PasswordHash, req.Password); !ok || err != nil {
		ah.logger.Warn("Invalid password at login", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	if !user.ActiveStatus {
		ah.logger.Warn("Inactive account login", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account deactivated"})
		return
	}

	ah.db.Model(&user).Update("last_login", time.Now())
	ah.startSession(c, &user)

	c.JSON(http.StatusOK, toUserResponse(&user))
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if sessionToken, err := c.Cookie("session_token"); err == nil {
		ah.sessions.DeleteSession(sessionToken)
	}
	c.SetCookie("session_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

func (ah *AuthHandler) startSession(c *gin.Context, user *models.User) {
	token := ah.sessions.CreateSession(user, c.ClientIP(), c.Request.UserAgent())
	c.SetCookie("session_token", token, int(ah.security.SessionTimeout.Seconds()), "/", "", false, true)
}
