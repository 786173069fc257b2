package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"keepcooking/internal/models"
	"keepcooking/internal/services"
	"keepcooking/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db    *gorm.DB
	posts *services.PostService
}

func NewAuthHandler(gdb *gorm.DB, posts *services.PostService) *AuthHandler {
	return &AuthHandler{db: gdb, posts: posts}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates an account and logs the new user straight in via the
// access-token cookie.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if msg := validateSignup(username, email, req.Password); msg != "" {
		jsonError(c, http.StatusBadRequest, msg)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		// The reserved admin account gets the flag on signup.
		Admin: username == "admin",
	}
	if err := h.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			jsonError(c, http.StatusConflict, "Username already taken")
			return
		}
		jsonError(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	if err := h.setAuthCookie(c, user.ID); err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Account created"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials by username and refreshes the auth cookie. A
// hash made with an outdated cost is transparently rehashed on success.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		jsonError(c, http.StatusBadRequest, "Username and Password required")
		return
	}

	var user models.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		jsonError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		jsonError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if utils.PasswordNeedsRehash(user.Password) {
		if hash, err := utils.HashPassword(req.Password); err == nil {
			h.db.Model(&user).UpdateColumn("password", hash)
		}
	}

	if err := h.setAuthCookie(c, user.ID); err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully authenticated"})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearAuthCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// RemoveAccount deletes the account and everything it owns, then logs the
// session out.
func (h *AuthHandler) RemoveAccount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.posts.DeleteUser(user.ID); err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to delete account")
		return
	}

	h.clearAuthCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully deleted account"})
}

// Me reports the session state; always 200, authenticated or not.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user_id":       user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"admin":         user.Admin,
		"points":        user.Points,
		"level":         user.Level,
	})
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, userID uint) error {
	token, err := utils.GenToken(userID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(utils.CookieName, token, int(utils.AccessTTL.Seconds()), "/", "", secureCookies(), true)
	return nil
}

func (h *AuthHandler) clearAuthCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(utils.CookieName, "", -1, "/", "", secureCookies(), true)
}

func validateSignup(username, email, password string) string {
	if username == "" {
		return "Username required"
	}
	if email == "" {
		return "Email required"
	}
	if password == "" {
		return "Password required"
	}
	if len(username) > 64 {
		return "Username too long"
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "Please enter a valid email address"
	}
	return ""
}
