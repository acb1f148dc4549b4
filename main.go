package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/selamgames/bingo-server/config"
	"github.com/selamgames/bingo-server/routes"
	"github.com/selamgames/bingo-server/services"
	"github.com/selamgames/bingo-server/utils/logger"
)

func setupRouter(cfg *config.Config, jwtService *services.JWTService) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, cfg, jwtService)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	r.GET("/ws/:stake", services.HandleWebSocket(jwtService))

	return r
}

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Infof("no .env file found, reading environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	if _, err := config.ConnectDB(cfg.DatabaseURL); err != nil {
		logger.Fatalf("database: %v", err)
	}

	snapshots, err := services.NewSnapshotStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SnapshotMaxAge)
	if err != nil {
		// Redis is recovery-only; the game runs without it.
		logger.Warnf("redis unavailable, round recovery disabled: %v", err)
		snapshots = nil
	} else {
		defer snapshots.Close()
	}

	jwtService := services.NewJWTService(cfg.JWTSecret)

	services.InitLobbyService(cfg, snapshots)

	router := setupRouter(cfg, jwtService)

	logger.Infof("bingo server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("server: %v", err)
	}
}
