package main

import (
	"log"
	"os"

	"keepcooking/internal/db"
	"keepcooking/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	gdb, err := db.Open()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	r := gin.Default()
	router.RegisterRoutes(r, gdb)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	if os.Getenv("SSL_ENABLE") == "true" {
		cert := os.Getenv("SSL_CERT_PATH")
		key := os.Getenv("SSL_KEY_PATH")
		if cert == "" || key == "" {
			log.Fatal("SSL_ENABLE=true but SSL_CERT_PATH/SSL_KEY_PATH not set")
		}
		log.Printf("keepcooking server starting on :%s (tls)", port)
		if err := r.RunTLS(":"+port, cert, key); err != nil {
			log.Fatal(err)
		}
		return
	}

	log.Printf("keepcooking server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
