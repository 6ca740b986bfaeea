package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/url"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/Dandev001/maxed-homes-sub003/pkg/config"
	"github.com/Dandev001/maxed-homes-sub003/pkg/logger"
)

func main() {
	var (
		action = flag.String("action", "up", "migration action: up, down, step-up, step-down")
		source = flag.String("source", "file://migrations", "migration source URL")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: "booking-migrate",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLog := logger.Get()

	mig, err := migrate.New(*source, connectionString(cfg))
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to create migrate instance: %v", err))
	}
	defer mig.Close()

	if err := run(mig, *action); err != nil {
		appLog.Fatal(fmt.Sprintf("Migration %s failed: %v", *action, err))
	}
	appLog.Info(fmt.Sprintf("Migration %s completed", *action))
}

func connectionString(cfg *config.Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(cfg.Database.User),
		url.QueryEscape(cfg.Database.Password),
		net.JoinHostPort(cfg.Database.Host, strconv.Itoa(cfg.Database.Port)),
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)
}

func run(mig *migrate.Migrate, action string) error {
	var err error
	switch action {
	case "up":
		err = mig.Up()
	case "down":
		err = mig.Down()
	case "step-up":
		err = mig.Steps(1)
	case "step-down":
		err = mig.Steps(-1)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
