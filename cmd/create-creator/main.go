package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/config"
	"github.com/craftlane/storefront/internal/domain"
	"github.com/craftlane/storefront/internal/repository/postgres"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: go run cmd/create-creator/main.go <name> <email> <api-key>")
		fmt.Println("Example: go run cmd/create-creator/main.go \"Mira Prints\" mira@example.com \"mira-api-key-12345\"")
		os.Exit(1)
	}

	creatorName := os.Args[1]
	creatorEmail := os.Args[2]
	apiKey := os.Args[3]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Hash the API key
	apiKeyHash, err := bcrypt.GenerateFromPassword([]byte(apiKey), 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash API key: %v\n", err)
		os.Exit(1)
	}

	// Create repositories
	repos := postgres.NewRepositories(db, logger)

	// Create creator
	creator := &domain.Creator{
		Name:       creatorName,
		Email:      creatorEmail,
		APIKeyHash: string(apiKeyHash),
		IsActive:   true,
	}

	err = repos.Creator.Create(context.Background(), creator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create creator: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Creator created successfully!\n\n")
	fmt.Printf("Creator ID: %s\n", creator.ID.String())
	fmt.Printf("Creator Name: %s\n", creator.Name)
	fmt.Printf("API Key: %s\n", apiKey)
	fmt.Printf("\n⚠️  IMPORTANT: Save this API key securely! You won't be able to see it again.\n")
	fmt.Printf("\nUse this API key in the Authorization header:\n")
	fmt.Printf("Authorization: Bearer %s\n", apiKey)
}
