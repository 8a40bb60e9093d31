package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/craftlane/storefront/internal/config"
	"github.com/craftlane/storefront/internal/repository/postgres"
	"github.com/craftlane/storefront/internal/webhook"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-listing/main.go <external-product-ref>")
		fmt.Println("Example: go run cmd/find-listing/main.go \"gid://shopify/Product/9001\"")
		os.Exit(1)
	}

	productRef := os.Args[1]

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

	repos := postgres.NewRepositories(db, logger)

	numericID := webhook.NumericProductID(productRef)
	if numericID == "" {
		fmt.Fprintf(os.Stderr, "❌ No numeric product id could be extracted from %q\n", productRef)
		os.Exit(1)
	}

	fmt.Printf("🔍 Resolving product reference: %s (numeric id %s)\n\n", productRef, numericID)

	// Try the same strategies the webhook matcher uses
	matcher := webhook.NewMatcher(repos.Listing, logger)
	matches := matcher.Match(context.Background(), "cli", []webhook.NormalizedLineItem{
		{ExternalProductID: productRef, Quantity: 1, Valid: true},
	})

	if len(matches) == 0 {
		fmt.Printf("❌ No live listing matches %q.\n", productRef)
		fmt.Printf("\nMake sure:\n")
		fmt.Printf("  1. The listing has been approved (status = live)\n")
		fmt.Printf("  2. The stored external_product_id embeds the numeric id %s\n", numericID)
		os.Exit(1)
	}

	listing := matches[0].Listing
	fmt.Printf("✅ Found listing!\n\n")
	fmt.Printf("Listing ID: %s\n", listing.ID.String())
	fmt.Printf("Creator ID: %s\n", listing.CreatorID.String())
	fmt.Printf("Title: %s\n", listing.Title)
	fmt.Printf("Stored external product ID: %s\n", listing.ExternalProductID)
	fmt.Printf("Price: %d %s (minor units)\n", listing.PriceMinor, listing.Currency)
	fmt.Printf("Status: %s\n", listing.Status)
}
