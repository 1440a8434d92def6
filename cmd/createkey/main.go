package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/arzfeed/pricegate-api/internal/config"
	"github.com/arzfeed/pricegate-api/internal/service"
	"github.com/arzfeed/pricegate-api/internal/storage/postgres"
	"github.com/arzfeed/pricegate-api/pkg/logger"
)

// createkey mints an API key directly against the store. The printed
// secret is shown exactly once; only the masked form is recoverable later.
func main() {
	configPath := flag.String("config", "./configs/config.dev.yaml", "Path to configuration file")
	email := flag.String("email", "", "Owner email for the new key")
	planSlug := flag.String("plan", "starter", "Plan slug to bind the key to")
	flag.Parse()

	if *email == "" {
		log.Fatal("-email is required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewZapLogger("warn")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbPool, err := postgres.NewPgxPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbPool.Close()

	planRepo := postgres.NewPlanRepository(dbPool, appLogger)
	keyRepo := postgres.NewAPIKeyRepository(dbPool, appLogger)

	catalog := service.NewCatalogService(planRepo, appLogger)
	provisioning := service.NewProvisioningService(catalog, keyRepo, cfg.Keys.Pepper, cfg.Server.PublicBaseURL, true, appLogger)

	minted, err := provisioning.Purchase(ctx, service.PurchaseParams{
		Email:    *email,
		PlanSlug: *planSlug,
	})
	if err != nil {
		log.Fatalf("Failed to mint key: %v", err)
	}

	fmt.Println("API key minted. Store the secret now; it will not be shown again.")
	fmt.Printf("  id:      %s\n", minted.Key.ID)
	fmt.Printf("  plan:    %s\n", minted.Plan.Slug)
	fmt.Printf("  masked:  %s\n", minted.Key.Masked())
	fmt.Printf("  secret:  %s\n", minted.FullKey)
	fmt.Printf("  api_url: %s\n", minted.APIBaseURL)
}
