package main

import (
	"flag"
	"os"

	"github.com/josanv1n/DIZA-FOOD/internal/config"
	"github.com/josanv1n/DIZA-FOOD/internal/database"
	"github.com/josanv1n/DIZA-FOOD/internal/logging"
)

func main() {
	seed := flag.Bool("seed", true, "insert default users, menu and promo into empty tables")
	flag.Parse()

	// 1. Load env
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		logging.InitLogger("info").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logging.InitLogger(cfg.LogLevel)

	// 2. Connect Database
	db, err := database.Connect(cfg.DSN(), cfg.DBLogLevel)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// 3. Run migrations
	if err := database.Migrate(db); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	if *seed {
		if err := database.Seed(db); err != nil {
			log.Error("seed failed", "error", err)
			os.Exit(1)
		}
	}
	log.Info("migration complete", "seeded", *seed)
}
