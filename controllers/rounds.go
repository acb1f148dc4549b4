package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/selamgames/bingo-server/config"
	"github.com/selamgames/bingo-server/models"
)

// ListRounds returns archived rounds, newest first, optionally filtered by
// stake.
func ListRounds(c *gin.Context) {
	q := config.DB.Order("created_at DESC").Limit(100)
	if stake := c.Query("stake"); stake != "" {
		q = q.Where("stake = ?", stake)
	}

	var rounds []models.Round
	if err := q.Find(&rounds).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, rounds)
}

// GetRound returns one archived round by its round id.
func GetRound(c *gin.Context) {
	var round models.Round
	if err := config.DB.Where("round_id = ?", c.Param("id")).First(&round).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Round not found"})
		return
	}
	c.JSON(http.StatusOK, round)
}
