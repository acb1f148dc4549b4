package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/selamgames/bingo-server/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("[FATAL] DATABASE_URL is required")
	}

	if _, err := config.ConnectDB(dsn); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	log.Println("Database migration completed")
}
