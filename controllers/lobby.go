package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/selamgames/bingo-server/config"
	"github.com/selamgames/bingo-server/game"
	"github.com/selamgames/bingo-server/services"
)

// LobbyStatus returns the live round view for one stake lobby.
func LobbyStatus(c *gin.Context) {
	stake, err := strconv.Atoi(c.Param("stake"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stake"})
		return
	}

	services.LobbiesMu.Lock()
	lobby, ok := services.Lobbies[stake]
	services.LobbiesMu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "stake not supported"})
		return
	}

	c.JSON(http.StatusOK, lobby.Lifecycle().Status())
}

// LobbyGrid returns the ownership snapshot for one stake lobby.
func LobbyGrid(c *gin.Context) {
	stake, err := strconv.Atoi(c.Param("stake"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stake"})
		return
	}

	services.LobbiesMu.Lock()
	lobby, ok := services.Lobbies[stake]
	services.LobbiesMu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "stake not supported"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": lobby.Registry().Snapshot()})
}

// GetCard regenerates a card grid from its id. Clients use this to preview
// cards during selection; grids never need to be stored or transferred in
// bulk because generation is deterministic.
func GetCard(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
			return
		}

		card, err := game.GenerateCard(id, cfg.TotalCards)
		if err != nil {
			if errors.Is(err, game.ErrInvalidIdentifier) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate card"})
			return
		}
		c.JSON(http.StatusOK, card)
	}
}
