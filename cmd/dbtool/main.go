package main

import (
	"context"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kcirtapfromspace/offleash-sub001/internal/adapters/repositories"
	"github.com/kcirtapfromspace/offleash-sub001/internal/config"
	"github.com/kcirtapfromspace/offleash-sub001/internal/platform/db"
	flag "github.com/spf13/pflag"
)

// dbtool creates the schema and loads a YAML seed into SQLite or Postgres.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	driver := flag.String("driver", config.Get("OFFLEASH_DATABASE_DRIVER", "sqlite"), "sql driver: sqlite or pgx")
	dsn := flag.String("dsn", config.Get("OFFLEASH_DATABASE_URL", "data/app.db"), "database url or sqlite path")
	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/schedule.yaml"), "YAML seed file; empty skips seeding")
	flag.Parse()

	if strings.TrimSpace(*dsn) == "" {
		log.Fatal("--dsn is required")
	}

	dialect, err := db.DialectFor(*driver)
	if err != nil {
		log.Fatal(err)
	}
	conn, err := db.Open(*driver, *dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx := context.Background()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if *seedPath == "" {
		return
	}
	log.Printf("Seeding database from %s...", *seedPath)
	if err := repositories.SeedFromYAML(ctx, conn, dialect, *seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
