package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"route-match-service/internal/adapters/geoindex"
	"route-match-service/internal/adapters/notify"
	"route-match-service/internal/adapters/repositories"
	"route-match-service/internal/api"
	"route-match-service/internal/config"
	"route-match-service/internal/platform/db"
	"route-match-service/internal/ports"
	"route-match-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}
	port := config.Get("PORT", "8080")

	database, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	routes := repositories.NewPostgresRouteRepository(database)
	announcements := repositories.NewPostgresAnnouncementRepository(database)
	suggestions := repositories.NewPostgresSuggestionRepository(database)

	cfg := matchConfigFromEnv()

	// The geo index is optional: without REDIS_ADDR the matching run falls
	// back to scanning open announcements from the store. When enabled it is
	// primed from the store so Nearby covers the whole open pool.
	var index ports.CandidateIndex
	if addr := os.Getenv("REDIS_ADDR"); strings.TrimSpace(addr) != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		index = geoindex.NewRedisCandidateIndex(client)

		syncLimit := config.GetInt("INDEX_SYNC_LIMIT", 1000)
		indexed, err := services.SyncCandidateIndex(context.Background(), announcements, index, syncLimit)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("candidate index enabled redis_addr=%s indexed=%d", addr, indexed)
	} else {
		log.Println("REDIS_ADDR not set, candidate index disabled")
	}
	router := api.NewRouter(routes, announcements, index, suggestions, notify.NewLogNotifier(), cfg)

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// matchConfigFromEnv overlays env tunables on the engine defaults.
func matchConfigFromEnv() services.MatchConfig {
	cfg := services.DefaultMatchConfig()
	cfg.MaxDetourKm = config.GetFloat("MAX_DETOUR_KM", cfg.MaxDetourKm)
	cfg.PickupWindowBefore = config.GetDuration("PICKUP_WINDOW_BEFORE", cfg.PickupWindowBefore)
	cfg.PickupWindowAfter = config.GetDuration("PICKUP_WINDOW_AFTER", cfg.PickupWindowAfter)
	cfg.MaxSuggestions = config.GetInt("MAX_SUGGESTIONS", cfg.MaxSuggestions)
	cfg.NotifyFanout = config.GetInt("NOTIFY_FANOUT", cfg.NotifyFanout)
	cfg.MinScore = config.GetFloat("MIN_SCORE", cfg.MinScore)
	cfg.AverageSpeedKmh = config.GetFloat("AVERAGE_SPEED_KMH", cfg.AverageSpeedKmh)
	cfg.StopTimeMinutes = config.GetInt("STOP_TIME_MINUTES", cfg.StopTimeMinutes)
	cfg.FuelConsumptionPer100Km = config.GetFloat("FUEL_CONSUMPTION_PER_100KM", cfg.FuelConsumptionPer100Km)
	cfg.FuelPricePerLiter = config.GetFloat("FUEL_PRICE_PER_LITER", cfg.FuelPricePerLiter)
	cfg.CandidatePoolLimit = config.GetInt("CANDIDATE_POOL_LIMIT", cfg.CandidatePoolLimit)
	return cfg
}
