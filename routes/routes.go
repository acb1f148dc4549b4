package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/selamgames/bingo-server/config"
	"github.com/selamgames/bingo-server/controllers"
	"github.com/selamgames/bingo-server/middleware"
	"github.com/selamgames/bingo-server/services"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config, jwtService *services.JWTService) {
	api := r.Group("/api")

	// ----------------------
	// Public routes
	// ----------------------
	api.POST("/users", controllers.RegisterUser)
	api.POST("/auth", controllers.Authenticate(jwtService))

	// ----------------------
	// Authenticated routes
	// ----------------------
	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware(jwtService))

	auth.GET("/users/:telegram_id", controllers.GetUser)
	auth.PATCH("/users/:telegram_id/phone", controllers.UpdatePhone)

	auth.GET("/rounds", controllers.ListRounds)
	auth.GET("/rounds/:id", controllers.GetRound)

	auth.GET("/lobby/:stake", controllers.LobbyStatus)
	auth.GET("/lobby/:stake/grid", controllers.LobbyGrid)
	auth.GET("/cards/:id", controllers.GetCard(cfg))

	auth.POST("/deposit", controllers.Deposit)
	auth.POST("/withdraw", controllers.Withdraw)
	auth.GET("/transactions/:telegram_id", controllers.ListTransactions)
}
