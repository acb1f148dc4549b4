package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/selamgames/bingo-server/config"
	"github.com/selamgames/bingo-server/models"
	"github.com/selamgames/bingo-server/services"
)

// Authenticate exchanges a telegram id for a session token. Registration
// must have happened first via POST /api/users.
func Authenticate(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			TelegramID int64 `json:"telegram_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := config.DB.Where("telegram_id = ?", req.TelegramID).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		token, err := jwtService.GenerateToken(user.ID, user.TelegramID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
	}
}
