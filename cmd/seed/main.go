package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hemanthreddykoduru/StudentNotes/internal/config"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	pg "github.com/hemanthreddykoduru/StudentNotes/internal/infra/db/postgres"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/logging"
)

// sampleNotes are inserted only when -demo is set. File references point at
// the default bucket so the asset issuer can presign them.
var sampleNotes = []struct {
	ID, Title, Subject, Price, File string
}{
	{"note-thermo-1", "Thermodynamics: Laws and Cycles", "Physics", "49.00", "physics/thermodynamics.pdf"},
	{"note-linalg-1", "Linear Algebra Crash Notes", "Mathematics", "79.00", "maths/linear-algebra.pdf"},
	{"note-os-1", "Operating Systems: Scheduling", "Computer Science", "99.00", "cs/os-scheduling.pdf"},
}

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	schema := flag.String("schema", "deploy/postgres/init.sql", "schema file to apply; empty skips")
	admin := flag.String("admin", "", "user id to grant the admin role")
	price := flag.Int("price", model.DefaultSubscriptionPriceRupees, "subscription price in rupees")
	demo := flag.Bool("demo", false, "insert sample notes")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	if *schema != "" {
		ddl, err := os.ReadFile(*schema)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *schema).Msg("read schema")
		}
		if _, err := pool.Exec(ctx, string(ddl)); err != nil {
			logger.Fatal().Err(err).Msg("apply schema")
		}
		logger.Info().Str("path", *schema).Msg("schema applied")
	}

	if *price <= 0 {
		logger.Fatal().Int("price", *price).Msg("price must be positive")
	}
	if err := pg.NewAppConfigRepo(pool).Set(ctx, nil, model.ConfigSubscriptionPrice, strconv.Itoa(*price)); err != nil {
		logger.Fatal().Err(err).Msg("seed subscription price")
	}
	logger.Info().Int("rupees", *price).Msg("subscription price set")

	if *admin != "" {
		if err := pg.NewProfileRepo(pool).Save(ctx, nil, &model.Profile{ID: *admin, Role: model.RoleAdmin}); err != nil {
			logger.Fatal().Err(err).Msg("seed admin profile")
		}
		logger.Info().Str("user_id", *admin).Msg("admin role granted")
	}

	if *demo {
		for _, n := range sampleNotes {
			_, err := pool.Exec(ctx, `
INSERT INTO notes (id, title, subject, description, price, file_url, is_active)
VALUES ($1, $2, $3, '', $4::numeric, $5, TRUE)
ON CONFLICT (id) DO NOTHING`, n.ID, n.Title, n.Subject, n.Price, n.File)
			if err != nil {
				logger.Fatal().Err(err).Str("note_id", n.ID).Msg("seed note")
			}
		}
		logger.Info().Int("count", len(sampleNotes)).Msg("sample notes present")
	}

	fmt.Println("seeding complete")
}
