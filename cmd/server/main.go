// Command server runs the Honey chatbot backend: the scripted conversation
// flow, session store, transcript log, escalation queue, and the agent/admin
// API, all over a single SQLite database.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/config"
	"github.com/honeychat/honey-backend/internal/flow"
	httpapi "github.com/honeychat/honey-backend/internal/http"
	"github.com/honeychat/honey-backend/internal/observability"
	"github.com/honeychat/honey-backend/internal/repo"
	"github.com/honeychat/honey-backend/internal/search"
	"github.com/honeychat/honey-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	sysutil.SetLogLevel(cfg.LogLevel)

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath, cfg.OTEL.Enabled)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
	if err := repo.Seed(ctx, db, cfg.OverflowAgentMaxChats); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	states := search.NewStateIndex()
	lgas, err := search.LoadLGAIndex(cfg.LocationsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.LocationsPath).Msg("load LGA index failed")
	}
	var lgaMatcher flow.Matcher = lgas
	if lgas.Len() == 0 {
		log.Warn().Str("path", cfg.LocationsPath).Msg("no LGA data, LGA step accepts free text")
		lgaMatcher = flow.AcceptAny()
	}
	graph, err := flow.HoneyGraph(states, lgaMatcher)
	if err != nil {
		log.Fatal().Err(err).Msg("build conversation graph failed")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, graph, httpapi.Indexes{States: states, LGAs: lgas}, cfg)

	go janitor(ctx, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// janitor periodically evicts expired ingest receipts and flips SENT
// referrals past their follow-up window to EXPIRED. Session snapshots are
// never evicted; staleness only feeds the dashboard count. Each sweep is
// independent; a failed one is retried on the next tick.
func janitor(ctx context.Context, db *gorm.DB, cfg config.Config) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := time.Now().UTC()

		if n, err := repo.PurgeExpiredReceipts(ctx, db, now); err != nil {
			log.Warn().Err(err).Msg("janitor: purge receipts")
		} else if n > 0 {
			log.Debug().Int64("rows", n).Msg("janitor: purged ingest receipts")
		}

		if n, err := repo.ExpireReferrals(ctx, db, now.Add(-cfg.ReferralExpireAfter)); err != nil {
			log.Warn().Err(err).Msg("janitor: expire referrals")
		} else if n > 0 {
			log.Info().Int64("rows", n).Msg("janitor: expired referrals")
		}
	}
}
