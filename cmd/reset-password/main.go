package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"go-warehouse-ms/internal/service"
	"go-warehouse-ms/internal/store"
	"go-warehouse-ms/pkg/config"
	"go-warehouse-ms/pkg/database"
	"go-warehouse-ms/pkg/logger"
)

func main() {
	username := flag.String("username", "admin", "user whose password is reset")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found, relying on system env")
	}
	if *password == "" {
		fmt.Fprintln(os.Stderr, "usage: reset-password -username <name> -password <new password>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logg := logger.New(logger.Options{
		ServiceName: cfg.App.Name + "-reset-password",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	ctx := context.Background()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DB, logger.ParseLevel(cfg.App.LogLevel))
	if err != nil {
		logg.Error(ctx, "database connection failed", err)
		os.Exit(1)
	}
	defer database.Close(db)

	// 3. Hash and update
	users := service.NewUserService(store.NewAccessor(db), logg, cfg.Auth.BcryptCost)
	if err := users.SetPasswordByUsername(ctx, *username, *password); err != nil {
		logg.Error(logg.WithField(ctx, "username", *username), "password reset failed", err)
		os.Exit(1)
	}
	fmt.Printf("Password for %s has been reset\n", *username)
}
