package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ChristoGH/url-miner/internal/config"
	"github.com/ChristoGH/url-miner/internal/newsapi"
)

func main() {
	// Create context that can be cancelled on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	// Load .env if present, same as the environments this runs in
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env file")
	}

	// The API credential is a startup precondition: without it the
	// process cannot proceed, so fail before any fetch is attempted.
	apiKey := os.Getenv("NEWS_API_KEY")
	if apiKey == "" {
		log.Fatalf("Error: NEWS_API_KEY environment variable not set. Please set your NewsAPI key.")
	}

	// Load configuration
	cfg, err := loadConfiguration()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Build the fetch request from configuration
	req := newsapi.NewFetchRequest(apiKey)
	req.Query = cfg.Query
	req.DaysBack = cfg.DaysBack
	req.SortBy = cfg.SortBy
	req.PageSize = cfg.PageSize

	log.Printf("--- Starting Article Fetch ---")
	log.Printf("Query: %q, DaysBack: %d, SortBy: %s", req.Query, req.DaysBack, req.SortBy)
	if cfg.PublishingEnabled() {
		log.Printf("Kafka Broker: '%s', Topic: '%s'", cfg.KafkaBroker, cfg.KafkaTopic)
	} else {
		log.Printf("Kafka publishing disabled (no broker configured)")
	}

	// Create the miner
	miner, err := newsapi.NewMinerWithDefaults(cfg)
	if err != nil {
		log.Fatalf("Failed to create miner: %v", err)
	}
	defer func() {
		if closeErr := miner.Close(); closeErr != nil {
			log.Printf("Error closing miner: %v", closeErr)
		}
	}()

	// Execute the fetch with context and timeout
	mineCtx, mineCancel := context.WithTimeout(ctx, 5*time.Minute)
	defer mineCancel()

	result, err := miner.Mine(mineCtx, req)
	if err != nil {
		log.Fatalf("Failed to fetch articles: %v", err)
	}

	// Print the article list
	printArticles(result.Articles)
	displayResult(result)

	// Check for any errors that occurred while publishing
	if len(result.Errors) > 0 {
		log.Printf("Run completed with %d errors:", len(result.Errors))
		for i, err := range result.Errors {
			log.Printf("  Error %d: %v", i+1, err)
		}
	}

	fmt.Println("\n--- Article Fetch Completed ---")
}

// loadConfiguration loads the application configuration from file or environment
func loadConfiguration() (*config.Config, error) {
	// Try to load from config file first
	configPath := os.Getenv("CONFIG_PATH")
	if configPath != "" {
		log.Printf("Loading configuration from file: %s", configPath)
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Printf("Failed to load config from file '%s': %v", configPath, err)
			log.Println("Falling back to environment variables...")
		} else {
			return cfg, nil
		}
	}

	// Fall back to environment variables
	log.Println("Loading configuration from environment variables...")
	cfg := config.LoadConfigFromEnv()

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// printArticles dumps the fetched article list as indented JSON
func printArticles(articles []newsapi.Article) {
	output, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal articles for display: %v", err)
		return
	}
	fmt.Println(string(output))
}

// displayResult shows a summary of the mining run
func displayResult(result *newsapi.MineResult) {
	fmt.Printf("\n=== Fetch Summary ===\n")
	fmt.Printf("Run ID: %s\n", result.RunID)
	fmt.Printf("Query: %q\n", result.Query)
	fmt.Printf("Window: %s to %s\n", result.From, result.To)
	fmt.Printf("Articles Fetched: %d\n", result.ArticleCount)
	fmt.Printf("Articles Published: %d\n", result.Published)
	fmt.Printf("Duration: %v\n", result.Duration.Round(time.Millisecond))

	if len(result.Errors) > 0 {
		fmt.Printf("Errors encountered: %d\n", len(result.Errors))
	}
}
