package services

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/selamgames/bingo-server/config"
	"github.com/selamgames/bingo-server/models"
	"github.com/selamgames/bingo-server/utils/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades a client into a stake lobby. The token query
// param carries the same JWT the REST API uses.
func HandleWebSocket(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stake, err := strconv.Atoi(c.Param("stake"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stake"})
			return
		}

		LobbiesMu.Lock()
		lobby, ok := Lobbies[stake]
		LobbiesMu.Unlock()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "stake not supported"})
			return
		}

		claims, err := jwtService.ValidateToken(c.Query("token"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		var user models.User
		if err := config.DB.Where("telegram_id = ?", claims.TelegramID).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("[WS] upgrade error: %v", err)
			return
		}

		client := &Client{
			playerID: user.TelegramID,
			name:     user.Name,
			conn:     conn,
			lobby:    lobby,
			send:     make(chan []byte, 32),
		}
		lobby.addClient(client)
	}
}
