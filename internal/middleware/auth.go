package middleware

import (
	"net/http"

	"keepcooking/internal/models"
	"keepcooking/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CheckUserKey = "user"

// LoadUser parses the access-token cookie and, when valid, loads the user
// row into the request context. Missing or bad tokens are not an error here;
// public endpoints run anonymously.
func LoadUser(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(utils.CookieName)
		if err == nil && token != "" {
			if userID, err := utils.ParseToken(token); err == nil {
				var user models.User
				if gdb.First(&user, userID).Error == nil {
					c.Set(CheckUserKey, &user)
				}
			}
		}
		c.Next()
	}
}

// AuthRequired rejects requests that LoadUser left anonymous.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}
		c.Next()
	}
}
