package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"go-warehouse-ms/pkg/config"
	"go-warehouse-ms/pkg/database"
	"go-warehouse-ms/pkg/logger"
	"go-warehouse-ms/pkg/migrate"
)

func main() {
	command := flag.String("cmd", "up", "goose command: up, down, status, version, redo, reset")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logg := logger.New(logger.Options{
		ServiceName: cfg.App.Name + "-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithField(context.Background(), "command", *command)

	db, err := database.ConnectDB(cfg.DB, logger.ParseLevel(cfg.App.LogLevel))
	if err != nil {
		logg.Error(ctx, "database connection failed", err)
		os.Exit(1)
	}
	defer database.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		logg.Error(ctx, "extracting sql.DB failed", err)
		os.Exit(1)
	}
	if err := migrate.Run(ctx, sqlDB, *command, flag.Args()...); err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migration finished")
}
