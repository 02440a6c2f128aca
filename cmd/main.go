package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/xiaomaimax/mes-system-sub006/internal/cronjob"
	"github.com/xiaomaimax/mes-system-sub006/internal/routes"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}

	router := gin.Default()
	routes.RegisterRoutes(router)

	cronjob.Start()

	port := os.Getenv("port")
	log.Printf("Starting server on port: %s ,as time: %s\n", port, time.Now())
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Could not start server: %s\n", err)
	}
}
