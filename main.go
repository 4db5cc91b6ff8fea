package main

import (
	"context"
	"log"

	"github.com/fluffyriot/birdseye/internal/api/handlers"
	"github.com/fluffyriot/birdseye/internal/browser"
	"github.com/fluffyriot/birdseye/internal/config"
	"github.com/fluffyriot/birdseye/internal/middleware"
	"github.com/fluffyriot/birdseye/internal/worker"
	"github.com/gin-gonic/gin"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}

	session := browser.NewSession(context.Background(), browser.Config{
		Headless:   cfg.Headless,
		UserAgent:  cfg.UserAgent,
		CookiesDir: cfg.CookiesDir,
	})
	defer session.Close()

	w := worker.NewWorker(session, cfg)
	if len(cfg.Watchlist) > 0 {
		w.Start(cfg.SyncInterval)
	}

	h := handlers.NewHandler(cfg, w)

	r := gin.Default()
	r.Use(middleware.SecurityHeadersMiddleware())

	r.GET("/health", h.HealthCheckHandler)
	r.GET("/scrape/:username", h.ScrapeProfileHandler)
	r.GET("/cached/:username", h.CachedProfileHandler)
	r.GET("/export/:username", h.ExportProfileHandler)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalln(err)
	}
}
