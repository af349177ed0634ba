package main

import (
	"context"
	"flag"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"globalhub/internal/adapters/observability"
	"globalhub/internal/app"
	"globalhub/internal/backend"
	"globalhub/internal/shared"
)

func main() {
	out := flag.String("o", "-", "output file, - for stdout")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	// stdout may carry the XML
	log.Logger = observability.NewLoggerTo(os.Stderr, cfg.AppEnv, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log.Info().
		Str("backend", cfg.Backend).
		Int("workers", cfg.SitemapWorkers).
		Msg("sitemap starting")

	repo, closeRepo, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("backend init failed")
	}
	defer closeRepo()

	dir := app.NewDirectory(repo, app.NewSite(cfg.SiteURL, cfg.SiteName))
	urls, err := dir.SitemapURLs(ctx, cfg.SitemapWorkers)
	if err != nil {
		log.Fatal().Err(err).Msg("sitemap build failed")
	}

	var w io.Writer = os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal().Err(err).Str("path", *out).Msg("create output")
		}
		defer f.Close()
		w = f
	}
	if err := app.WriteSitemap(w, urls); err != nil {
		log.Fatal().Err(err).Msg("write sitemap")
	}
	log.Info().Int("urls", len(urls)).Msg("sitemap completed")
}
