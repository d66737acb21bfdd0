// Command catalog-ingest imports supplier product feeds into the catalog.
// Feeds are gzip-compressed JSONL files (one product per line) that can run
// to tens of millions of lines, with heavy duplication between suppliers: the
// same SKU appears in every feed that carries the product. Files are streamed
// concurrently and deduplicated with a bloom filter so the full SKU set never
// has to fit in memory.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ironkart/ironkart/internal/domain/catalog"
	"github.com/ironkart/ironkart/internal/repository"
)

const (
	bloomCapacity = 50_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
	scanBufSize   = 1 << 20
)

// feedProduct is one line of a supplier feed.
type feedProduct struct {
	SKU            string            `json:"sku"`
	Name           string            `json:"name"`
	Category       string            `json:"category"`
	Price          decimal.Decimal   `json:"price"`
	OriginalPrice  *decimal.Decimal  `json:"originalPrice"`
	Image          string            `json:"image"`
	Description    string            `json:"description"`
	Specifications map[string]string `json:"specifications"`
	InStock        bool              `json:"inStock"`
}

func main() {
	var (
		dataDir     string
		pattern     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing supplier feed files")
	flag.StringVar(&pattern, "pattern", "feed*.jsonl.gz", "glob pattern for feed files inside data-dir")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, pattern, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, pattern, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, pattern))
	if err != nil {
		return errors.Wrap(err, "glob feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no feed files matching %s in %s", pattern, dataDir)
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	products := repository.NewProductRepository(pool)

	// Readers stream feed lines into one channel; a single writer goroutine
	// owns the bloom filter and the database, so neither needs locking.
	lines := make(chan feedProduct, 1024)

	g, ctx := errgroup.WithContext(ctx)
	readers, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		readers.Go(readFeed(ctx, f, lines))
	}
	g.Go(func() error {
		defer close(lines)
		return readers.Wait()
	})
	g.Go(writeProducts(ctx, products, lines))

	return g.Wait()
}

// readFeed streams one gzip-compressed JSONL feed into the lines channel.
// Malformed lines are counted and skipped, not fatal: a single bad record in
// a supplier dump must not abort the whole import.
func readFeed(ctx context.Context, path string, lines chan<- feedProduct) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var total, malformed uint64
		scanner := bufio.NewScanner(gz)
		scanner.Buffer(make([]byte, 0, scanBufSize), scanBufSize)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}

			total++
			if total%progressEvery == 0 {
				slog.Info("feed progress", slog.String("file", path), slog.Uint64("lines", total))
			}

			var p feedProduct
			if err := json.Unmarshal(scanner.Bytes(), &p); err != nil || p.SKU == "" {
				malformed++
				continue
			}

			select {
			case lines <- p:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("feed complete",
			slog.String("file", path),
			slog.Uint64("lines", total),
			slog.Uint64("malformed", malformed),
		)
		return nil
	}
}

// writeProducts upserts each first-seen SKU. The bloom filter drops repeat
// SKUs without storing them; its false positives mean a tiny fraction of
// products may be skipped entirely, which a re-run with fresh feeds corrects.
func writeProducts(ctx context.Context, products *repository.ProductRepository, lines <-chan feedProduct) func() error {
	return func() error {
		seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var written, duplicates, invalid uint64

		for p := range lines {
			if seen.TestAndAddString(p.SKU) {
				duplicates++
				continue
			}

			product := catalog.Product{
				ID:             p.SKU,
				Name:           p.Name,
				Category:       p.Category,
				Price:          p.Price,
				OriginalPrice:  p.OriginalPrice,
				Image:          p.Image,
				Images:         []string{p.Image},
				Description:    p.Description,
				Specifications: p.Specifications,
				InStock:        p.InStock,
			}
			if err := product.Validate(); err != nil {
				invalid++
				continue
			}

			if err := products.Upsert(ctx, &product); err != nil {
				return errors.Wrapf(err, "upsert product %s", p.SKU)
			}
			written++
			if written%100_000 == 0 {
				slog.Info("write progress", slog.Uint64("written", written))
			}
		}

		slog.Info("write complete",
			slog.Uint64("written", written),
			slog.Uint64("duplicates", duplicates),
			slog.Uint64("invalid", invalid),
		)
		return nil
	}
}
