// Команда migrate применяет и откатывает миграции схемы заказов.
//
// Использование:
//
//	migrate up     — применить все новые миграции
//	migrate down   — откатить последнюю миграцию
//	migrate status — показать примененные версии
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/antonrybakov/ordersaga/internal/storage/postgres"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate up|down|status")
		os.Exit(2)
	}
	command := os.Args[1]

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer func() { _ = store.Close() }()

	migrator := postgres.NewMigrator(store.DB(), nil)

	switch command {
	case "up":
		if err := migrator.MigrateUp(ctx); err != nil {
			log.WithError(err).Fatal("migrate up failed")
		}
		log.Info("migrations applied")
	case "down":
		if err := migrator.MigrateDown(ctx); err != nil {
			log.WithError(err).Fatal("migrate down failed")
		}
		log.Info("last migration rolled back")
	case "status":
		versions, err := migrator.Status(ctx)
		if err != nil {
			log.WithError(err).Fatal("migrate status failed")
		}
		if len(versions) == 0 {
			fmt.Println("no migrations applied")
			return
		}
		for _, v := range versions {
			fmt.Printf("applied: %d\n", v)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\nusage: migrate up|down|status\n", command)
		os.Exit(2)
	}
}
