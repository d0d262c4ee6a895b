package main

import (
	"database/sql"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"route-match-service/internal/adapters/repositories"
	"route-match-service/internal/config"
	"route-match-service/internal/platform/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	database, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	routeSeedPath := config.Get("ROUTE_SEED_PATH", "data/seeds/routes.json")
	announcementSeedPath := config.Get("ANNOUNCEMENT_SEED_PATH", "data/seeds/announcements.json")
	if err := initAndSeed(database, routeSeedPath, announcementSeedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(database *sql.DB, routeSeedPath, announcementSeedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(database); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding routes...")
	if err := repositories.SeedRoutesFromJSON(database, routeSeedPath); err != nil {
		log.Fatalf("route seeding failed: %v", err)
	}

	log.Println("Seeding announcements...")
	if err := repositories.SeedAnnouncementsFromJSON(database, announcementSeedPath); err != nil {
		log.Fatalf("announcement seeding failed: %v", err)
	}
	log.Println("Seeding complete.")

	return nil
}
