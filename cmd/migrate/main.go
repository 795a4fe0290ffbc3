package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/unclebandit/quickreview-backend/internal/config"
	"github.com/unclebandit/quickreview-backend/internal/migration"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := migration.MigrateCommand(cfg.Database.GetDatabaseURL()).Execute(); err != nil {
		os.Exit(1)
	}
}
