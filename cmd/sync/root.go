package main

import (
	"fmt"
	"os"

	"ai-recommendation-be/internal/config"
	"ai-recommendation-be/internal/pkg/logger"
	"ai-recommendation-be/internal/repository/unitofwork"
	"ai-recommendation-be/pkg/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Catalog maintenance for the recommendation service",
	Long:  `Pulls the WooCommerce product feed, embeds each product and stores it for similarity search.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every SQL statement")
	rootCmd.AddCommand(syncCmd, statsCmd)
}

type deps struct {
	cfg        *config.Config
	db         *gorm.DB
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func setup() (*deps, error) {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		return nil, fmt.Errorf("DB_CONNECTION_STRING is not set")
	}

	pool := database.DefaultPoolConfig()
	pool.Verbose = verbose
	db, err := database.NewGormDB(cfg.Database.Connection, pool)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return &deps{
		cfg:        cfg,
		db:         db,
		uowFactory: unitofwork.NewRepositoryFactory(db),
		logger:     logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production"),
	}, nil
}
