// Command seed-db loads the product catalog into PostgreSQL and optionally
// creates a demo user. It is idempotent: products are upserted and an
// existing demo user is left untouched.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/adventureworks/storefront/db"
	"github.com/adventureworks/storefront/internal/domain/catalog"
	"github.com/adventureworks/storefront/internal/domain/identity"
	"github.com/adventureworks/storefront/internal/postgres"
)

func main() {
	var (
		databaseURL  string
		productsFile string
		demoEmail    string
		demoName     string
		demoPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "", "path to products JSON file (defaults to the embedded catalog)")
	flag.StringVar(&demoEmail, "demo-email", "", "email for a demo user to create (optional)")
	flag.StringVar(&demoName, "demo-name", "Demo User", "display name for the demo user")
	flag.StringVar(&demoPassword, "demo-password", "", "password for the demo user (or STORE_DEMO_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if demoPassword == "" {
		demoPassword = os.Getenv("STORE_DEMO_PASSWORD")
	}
	if demoEmail != "" && demoPassword == "" {
		slog.Error("demo user requested without a password: set --demo-password or STORE_DEMO_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, demoEmail, demoName, demoPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, demoEmail, demoName, demoPassword string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, postgres.NewCatalogRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if demoEmail != "" {
		if err := seedDemoUser(ctx, postgres.NewUserRepository(pool), demoEmail, demoName, demoPassword); err != nil {
			return errors.Wrap(err, "seed demo user")
		}
	}

	return nil
}

func seedProducts(ctx context.Context, repo *postgres.CatalogRepository, productsFile string) error {
	data := db.Products
	if productsFile != "" {
		slog.Info("reading products file", slog.String("path", productsFile))
		var err error
		data, err = os.ReadFile(productsFile)
		if err != nil {
			return errors.Wrap(err, "read products file")
		}
	}

	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if err := repo.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedDemoUser(ctx context.Context, repo *postgres.UserRepository, email, name, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	err = repo.Create(ctx, &identity.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, identity.ErrEmailTaken) {
		slog.Info("demo user already exists", slog.String("email", email))
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "create user")
	}

	slog.Info("created demo user", slog.String("email", email))
	return nil
}
