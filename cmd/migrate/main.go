package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/samirrijal/saferoute/internal/adapters/postgres"
	"github.com/samirrijal/saferoute/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|status>")
	}

	_ = godotenv.Load()

	cfg, err := config.LoadWorker("saferoute-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		if err := db.EnsureSchema(ctx); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		log.Println("schema applied")
	case "status":
		n, err := postgres.NewReportRepo(db).Count(ctx)
		if err != nil {
			log.Fatalf("status: %v", err)
		}
		log.Printf("reports archived: %d", n)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
