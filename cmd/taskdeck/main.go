package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/taskdeck-dev/taskdeck/internal/auth"
	"github.com/taskdeck-dev/taskdeck/internal/router"
	"github.com/taskdeck-dev/taskdeck/internal/store"
	"github.com/taskdeck-dev/taskdeck/internal/store/gormstore"
	"github.com/taskdeck-dev/taskdeck/internal/store/memory"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		gs, err := gormstore.Connect(dsn)

		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		if err := gs.Migrate(); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		store.Use(gs)
	} else {
		log.Println("DATABASE_URL not set, using in-memory store")
		store.Use(memory.New())
	}

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
