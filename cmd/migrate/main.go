package main

import (
	"log"

	"ai-recommendation-be/internal/config"
	"ai-recommendation-be/internal/model"
	"ai-recommendation-be/pkg/database"
)

const defaultVectorDimensions = 1536

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	log.Println("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.CatalogItem{},
		&model.SessionContext{},
		&model.Interaction{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// vector columns are declared vector(1536); a different embedder size
	// fails on insert rather than silently mixing dimensions
	if dims := cfg.Ai.EmbeddingDimensions; dims != defaultVectorDimensions {
		log.Printf("Warn: EMBEDDING_DIMENSIONS=%d but vector columns hold %d dimensions", dims, defaultVectorDimensions)
	}

	log.Println("Success: Database migration completed.")
}
