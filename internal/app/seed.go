package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"qrate/internal/domain"
)

// SeedReport summarizes a catalog load.
type SeedReport struct {
	Upserted int64
	Skipped  int64
}

type SeedService struct {
	repo    domain.CatalogRepository
	catalog *CatalogService
	workers int64
}

func NewSeedService(r domain.CatalogRepository, c *CatalogService, workers int) *SeedService {
	if workers <= 0 {
		workers = 4
	}
	return &SeedService{repo: r, catalog: c, workers: int64(workers)}
}

// Seed upserts raw catalog records of kind. Records without a key are
// skipped and logged; any store error aborts the remaining work.
func (s *SeedService) Seed(ctx context.Context, kind domain.EntityKind, records []map[string]any) (SeedReport, error) {
	if !kind.Valid() {
		return SeedReport{}, fmt.Errorf("seed: unknown kind %q", kind)
	}

	var rep SeedReport
	sem := semaphore.NewWeighted(s.workers)
	g, gctx := errgroup.WithContext(ctx)

	for i, rec := range records {
		e, ok := MapEntity(kind, rec)
		if !ok {
			atomic.AddInt64(&rep.Skipped, 1)
			log.Warn().Str("kind", kind.String()).Int("index", i).Msg("skipping catalog record without key")
			continue
		}
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			if err := s.repo.UpsertEntity(gctx, e); err != nil {
				return fmt.Errorf("upsert %s %q: %w", kind, e.Key, err)
			}
			atomic.AddInt64(&rep.Upserted, 1)
			log.Debug().Str("kind", kind.String()).Str("key", e.Key).Msg("upserted")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}

	// Stale listings would hide new entries until the TTL lapses.
	if s.catalog != nil {
		if err := s.catalog.Invalidate(ctx, kind); err != nil {
			log.Warn().Err(err).Str("kind", kind.String()).Msg("catalog cache invalidation failed")
		}
	}
	return rep, nil
}
