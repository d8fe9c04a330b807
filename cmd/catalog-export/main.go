// Command catalog-export writes the whole catalog as gzip-compressed NDJSON
// feeds: one product or collection per line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/shopify"
)

const (
	productsFile    = "products.ndjson.gz"
	collectionsFile = "collections.ndjson.gz"
)

// source is the subset of the platform client the export reads.
type source interface {
	Products(ctx context.Context, q catalog.ProductQuery) (*catalog.ProductPage, error)
	Collections(ctx context.Context) ([]catalog.Collection, error)
}

func main() {
	var (
		outDir  string
		cfg     shopify.Config
		timeout time.Duration
	)
	flag.StringVar(&outDir, "out", ".", "directory to write the feeds to")
	flag.StringVar(&cfg.StoreDomain, "store-domain", os.Getenv("SHOPIFY_STORE_DOMAIN"), "store domain (or SHOPIFY_STORE_DOMAIN)")
	flag.StringVar(&cfg.AccessToken, "token", os.Getenv("SHOPIFY_STOREFRONT_ACCESS_TOKEN"), "Storefront API token (or SHOPIFY_STOREFRONT_ACCESS_TOKEN)")
	flag.StringVar(&cfg.APIVersion, "api-version", shopify.DefaultAPIVersion, "Storefront API version")
	flag.StringVar(&cfg.HiddenTag, "hidden-tag", shopify.DefaultHiddenTag, "tag of products left out of the feed")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout")
	flag.Parse()
	cfg.Timeout = timeout

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client, err := shopify.New(cfg, shopify.Options{Logger: lg})
	if err != nil {
		lg.Fatal("Create client", zap.Error(err))
	}
	if !client.Configured() {
		lg.Fatal("Store domain and token are required")
	}

	start := time.Now()
	stats, err := export(ctx, client, outDir)
	if err != nil {
		lg.Fatal("Catalog export failed", zap.Error(err))
	}
	lg.Info("Catalog exported",
		zap.Int("products", stats.products),
		zap.Int("collections", stats.collections),
		zap.Int("pages", stats.pages),
		zap.Duration("took", time.Since(start)),
	)
}

type exportStats struct {
	products, collections, pages int
}

// export writes both feeds concurrently. A failed feed removes its partial
// file.
func export(ctx context.Context, src source, dir string) (exportStats, error) {
	var stats exportStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writeFeed(filepath.Join(dir, productsFile), func(enc *json.Encoder) error {
			var err error
			stats.products, stats.pages, err = exportProducts(ctx, src, enc)
			return err
		})
	})
	g.Go(func() error {
		return writeFeed(filepath.Join(dir, collectionsFile), func(enc *json.Encoder) error {
			collections, err := src.Collections(ctx)
			if err != nil {
				return errors.Wrap(err, "fetch collections")
			}
			for _, c := range collections {
				if err := enc.Encode(c); err != nil {
					return errors.Wrap(err, "encode collection")
				}
			}
			stats.collections = len(collections)
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return exportStats{}, err
	}
	return stats, nil
}

// exportProducts follows the product cursor until the last page.
func exportProducts(ctx context.Context, src source, enc *json.Encoder) (products, pages int, err error) {
	var cursor string
	for {
		page, err := src.Products(ctx, catalog.ProductQuery{SortKey: "ID", Cursor: cursor})
		if err != nil {
			return products, pages, errors.Wrapf(err, "fetch products page %d", pages+1)
		}
		pages++
		for _, p := range page.Products {
			if err := enc.Encode(p); err != nil {
				return products, pages, errors.Wrap(err, "encode product")
			}
			products++
		}
		if !page.PageInfo.HasNextPage || page.PageInfo.EndCursor == "" {
			return products, pages, nil
		}
		cursor = page.PageInfo.EndCursor
	}
}

func writeFeed(path string, fill func(enc *json.Encoder) error) (rerr error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create feed")
	}
	defer func() {
		if rerr != nil {
			_ = f.Close()
			_ = os.Remove(path)
		}
	}()

	zw := pgzip.NewWriter(f)
	if err := fill(json.NewEncoder(zw)); err != nil {
		_ = zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "close gzip")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close feed")
	}
	return nil
}
