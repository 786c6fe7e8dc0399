package main

import (
	"flag"
	"fmt"
	"os"

	"money-tracker/config"
	pgStorage "money-tracker/internal/adapter/storage/postgres"
	"money-tracker/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("MT_CONFIG_FILE"), "path to config file")
	direction := flag.String("direction", string(pgStorage.MigrateUp), "migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.WithComponent(logger.New(cfg.Log.Level, cfg.Log.Pretty), "migrate")

	dir := pgStorage.Direction(*direction)
	if dir != pgStorage.MigrateUp && dir != pgStorage.MigrateDown {
		log.Fatal().Str("direction", *direction).Msg("direction must be up or down")
	}

	if err := pgStorage.Migrate(cfg.Database.DSN(), cfg.Database.DBName, dir, log); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
	log.Info().Str("direction", string(dir)).Msg("Migration complete")
}
