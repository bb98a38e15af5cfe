package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"qrate/internal/adapters/observability"
	redisad "qrate/internal/adapters/redis"
	"qrate/internal/app"
	"qrate/internal/domain"
	"qrate/internal/shared"
	mysqlrepo "qrate/internal/storage/mysql"
)

func main() {
	courses := flag.String("courses", "", "path to a JSON or YAML course catalog")
	professors := flag.String("professors", "", "path to a JSON or YAML professor catalog")
	flag.Parse()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	if *courses == "" && *professors == "" {
		log.Fatal().Msg("nothing to seed: pass -courses and/or -professors")
	}
	if cfg.Store != shared.StoreMySQL {
		log.Fatal().Str("store", cfg.Store).Msg("seeder requires STORE=mysql")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Int("workers", cfg.SeedWorkers).Msg("seeder starting")

	db, err := mysqlrepo.Open(ctx, cfg.MySQL.DSN, mysqlrepo.Options{
		MaxOpenConns: cfg.MySQL.MaxOpenConns,
		WriteTimeout: cfg.MySQL.WriteTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mysql open failed")
	}
	defer db.Close()
	if err := mysqlrepo.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	rc := redisad.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer rc.Close()

	catalog := app.NewCatalogService(repo, repo, redisad.New(rc), cfg.CacheTTL())
	seeder := app.NewSeedService(repo, catalog, cfg.SeedWorkers)

	jobs := []struct {
		kind domain.EntityKind
		path string
		wrap string
	}{
		{domain.KindCourse, *courses, "courses"},
		{domain.KindProfessor, *professors, "professors"},
	}

	failed := false
	for _, j := range jobs {
		if j.path == "" {
			continue
		}
		start := time.Now()
		records, err := loadRecords(j.path, j.wrap)
		if err != nil {
			log.Error().Err(err).Str("kind", j.kind.String()).Msg("load failed")
			failed = true
			continue
		}
		rep, err := seeder.Seed(ctx, j.kind, records)
		if err != nil {
			log.Error().Err(err).Str("kind", j.kind.String()).Int64("upserted", rep.Upserted).Msg("seed failed")
			failed = true
			continue
		}
		log.Info().
			Str("kind", j.kind.String()).
			Int("records", len(records)).
			Int64("upserted", rep.Upserted).
			Int64("skipped", rep.Skipped).
			Dur("took", time.Since(start)).
			Msg("seed ok")
	}

	if failed {
		os.Exit(1)
	}
	log.Info().Msg("seeding completed")
}
