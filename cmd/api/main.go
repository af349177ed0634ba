package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	server "globalhub/internal/adapters/http_server"
	"globalhub/internal/adapters/observability"
	"globalhub/internal/app"
	"globalhub/internal/backend"
	"globalhub/internal/shared"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	repo, closeRepo, err := backend.Open(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("backend init failed")
	}
	defer closeRepo()
	log.Info().Str("backend", cfg.Backend).Msg("backend ready")

	site := app.NewSite(cfg.SiteURL, cfg.SiteName)
	dir := app.NewDirectory(repo, site)
	rnd, err := server.NewRenderer(site)
	if err != nil {
		log.Fatal().Err(err).Msg("templates")
	}

	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Dir: dir, Render: rnd, SitemapWorkers: cfg.SitemapWorkers})

	log.Info().Str("addr", cfg.HTTPAddr).Str("site", site.BaseURL).Msg("web listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
