package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/flexprice/dunning/internal/config"
	"github.com/flexprice/dunning/internal/logger"
	"github.com/flexprice/dunning/internal/postgres"
	"github.com/flexprice/dunning/internal/postgres/migrations"
)

func main() {
	// Parse command line flags
	dryRun := flag.Bool("dry-run", false, "Print migration SQL without executing it")
	down := flag.Int("down", 0, "Roll back this many migrations instead of migrating up")
	flag.Parse()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if *dryRun {
		scripts, err := migrations.UpScripts()
		if err != nil {
			logger.Fatalw("Failed to read migrations", "error", err)
		}
		logger.Info("Dry run mode - printing migration SQL without executing")
		for _, s := range scripts {
			fmt.Printf("-- %s\n%s\n", s.Name, s.SQL)
		}
		return
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}

	m, err := migrations.New(db.DB.DB)
	if err != nil {
		logger.Fatalw("Failed to initialize migrator", "error", err)
	}
	defer m.Close()

	if *down > 0 {
		logger.Infow("Rolling back database migrations", "steps", *down)
		err = migrations.Down(m, *down)
	} else {
		logger.Info("Running database migrations...")
		err = migrations.Up(m)
	}
	if err != nil {
		logger.Fatalw("Migration failed", "error", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		logger.Warnw("Could not read schema version", "error", err)
	} else {
		logger.Infow("Schema version", "version", version, "dirty", dirty)
	}

	fmt.Println("Migration process completed")
}
