// Command seed-db loads the embedded catalog (categories, products, global
// pricing settings, about content) and an admin key into the database. It is
// safe to re-run: every write is an upsert.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ironkart/ironkart/db"
	"github.com/ironkart/ironkart/internal/domain/catalog"
	"github.com/ironkart/ironkart/internal/domain/content"
	"github.com/ironkart/ironkart/internal/domain/pricing"
	"github.com/ironkart/ironkart/internal/repository"
	"github.com/ironkart/ironkart/internal/session"
)

type seedFile struct {
	Categories []struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Description  string `json:"description"`
		Image        string `json:"image"`
		DisplayOrder int    `json:"displayOrder"`
	} `json:"categories"`
	Products []struct {
		ID             string            `json:"id"`
		Name           string            `json:"name"`
		Category       string            `json:"category"`
		Price          decimal.Decimal   `json:"price"`
		OriginalPrice  *decimal.Decimal  `json:"originalPrice"`
		Image          string            `json:"image"`
		Description    string            `json:"description"`
		Specifications map[string]string `json:"specifications"`
		InStock        bool              `json:"inStock"`
		Featured       bool              `json:"featured"`
	} `json:"products"`
	GlobalSettings []struct {
		Key         string `json:"key"`
		Value       string `json:"value"`
		Description string `json:"description"`
	} `json:"globalSettings"`
	About struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"about"`
}

func main() {
	var (
		databaseURL    string
		adminKey       string
		adminKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&adminKey, "admin-key", "", "admin key to seed (or IRONKART_SEED_ADMIN_KEY env)")
	flag.StringVar(&adminKeyPepper, "admin-key-pepper", "", "HMAC pepper for admin key hashing (or IRONKART_ADMIN_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminKey == "" {
		adminKey = os.Getenv("IRONKART_SEED_ADMIN_KEY")
	}
	if adminKey == "" {
		slog.Error("admin key is required: set --admin-key or IRONKART_SEED_ADMIN_KEY")
		os.Exit(1)
	}
	if adminKeyPepper == "" {
		adminKeyPepper = os.Getenv("IRONKART_ADMIN_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, adminKey, adminKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, adminKey, pepper string) error {
	var seed seedFile
	if err := json.Unmarshal(db.Seed, &seed); err != nil {
		return errors.Wrap(err, "parse embedded seed")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	categories := repository.NewCategoryRepository(pool)
	slog.Info("upserting categories", slog.Int("count", len(seed.Categories)))
	for _, c := range seed.Categories {
		err := categories.Upsert(ctx, &catalog.Category{
			ID:           c.ID,
			Name:         c.Name,
			Description:  c.Description,
			Image:        c.Image,
			DisplayOrder: c.DisplayOrder,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert category %s", c.ID)
		}
	}

	products := repository.NewProductRepository(pool)
	slog.Info("upserting products", slog.Int("count", len(seed.Products)))
	for _, p := range seed.Products {
		err := products.Upsert(ctx, &catalog.Product{
			ID:             p.ID,
			Name:           p.Name,
			Category:       p.Category,
			Price:          p.Price,
			OriginalPrice:  p.OriginalPrice,
			Image:          p.Image,
			Images:         []string{p.Image},
			Description:    p.Description,
			Specifications: p.Specifications,
			InStock:        p.InStock,
			Featured:       p.Featured,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	settings := repository.NewSettingsRepository(pool)
	slog.Info("upserting global settings", slog.Int("count", len(seed.GlobalSettings)))
	for _, g := range seed.GlobalSettings {
		err := settings.UpsertGlobal(ctx, &pricing.GlobalSetting{
			Key:         g.Key,
			Value:       g.Value,
			Description: g.Description,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert global setting %s", g.Key)
		}
	}

	if seed.About.Title != "" {
		about := repository.NewContentRepository(pool)
		err := about.Upsert(ctx, &content.About{
			ID:      "default",
			Title:   seed.About.Title,
			Content: seed.About.Content,
		})
		if err != nil {
			return errors.Wrap(err, "upsert about content")
		}
	}

	slog.Info("seeding admin key")
	hash := session.HashKey([]byte(pepper), adminKey)
	if err := repository.SeedAdminKey(ctx, pool, uuid.New().String(), hash, "seed admin"); err != nil {
		return errors.Wrap(err, "seed admin key")
	}

	return nil
}
