package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"ai-recommendation-be/internal/bootstrap"
	"ai-recommendation-be/internal/dto"
	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/service"
	"ai-recommendation-be/pkg/catalog/woocommerce"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var syncAll bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Embed and store every published product from the feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !syncAll {
			return errors.New("nothing to do, pass --all to sync the whole feed")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		d, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = d.logger.Sync() }()

		if d.cfg.Catalog.FeedURL == "" {
			return errors.New("WOOCOMMERCE_URL is not set")
		}

		embedder, err := bootstrap.NewEmbeddingProvider(ctx, d.cfg)
		if err != nil {
			return err
		}

		// jobs run inline here, so no queue is needed
		catalogService := service.NewCatalogService(d.uowFactory, embedder, nil, nil, d.logger, d.cfg.Recommendation.EmbeddingTimeout)
		feed := woocommerce.NewClient(d.cfg.Catalog.FeedURL, d.cfg.Catalog.ConsumerKey, d.cfg.Catalog.ConsumerSecret, d.cfg.Catalog.PageSize)

		start := time.Now()
		stored, unembedded, failed, err := syncFeed(ctx, feed, catalogService, d.cfg.Catalog.BatchSize)
		fmt.Printf("stored %d products (%d without vectors), %d failed in %s\n",
			stored, unembedded, failed, time.Since(start).Round(time.Millisecond))
		return err
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "sync all published products")
}

// syncFeed upserts each page with at most concurrency embeddings in flight.
// A failed product is counted and skipped; only feed errors abort the run.
func syncFeed(ctx context.Context, feed service.CatalogFeed, catalogService service.ICatalogService, concurrency int) (stored, unembedded, failed int64, err error) {
	if concurrency < 1 {
		concurrency = 1
	}

	_, err = feed.FetchAll(ctx, func(items []*entity.CatalogItem) error {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		for _, item := range items {
			req := dto.NewUpsertCatalogItemRequest(item)
			g.Go(func() error {
				res, err := catalogService.Upsert(gctx, &req)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					return nil
				}
				atomic.AddInt64(&stored, 1)
				if !res.Embedded {
					atomic.AddInt64(&unembedded, 1)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		return ctx.Err()
	})
	return stored, unembedded, failed, err
}
