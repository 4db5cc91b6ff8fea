package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig carries every tunable the service needs. All values flow in
// from the environment at startup and are threaded down explicitly; no
// package mutates them afterwards.
type AppConfig struct {
	Port           string
	Headless       bool
	UserAgent      string
	CookiesDir     string
	ScreenshotsDir string
	ExportsDir     string

	MaxTweets         int
	MaxRetweets       int
	MaxFollowers      int
	MaxFollowing      int
	EnableScreenshots bool
	ScrollPause       time.Duration
	ScreenshotTimeout time.Duration
	FeedTimeBudget    time.Duration

	Watchlist    []string
	SyncInterval time.Duration
}

func Load() (*AppConfig, error) {
	// Optional .env for local runs; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:              envString("BW_PORT", "8080"),
		Headless:          envBool("BW_HEADLESS", true),
		UserAgent:         envString("BW_USER_AGENT", ""),
		CookiesDir:        envString("BW_COOKIES_DIR", "outputs/cookies"),
		ScreenshotsDir:    envString("BW_SCREENSHOTS_DIR", "outputs/screenshots"),
		ExportsDir:        envString("BW_EXPORTS_DIR", "outputs/exports"),
		MaxTweets:         envInt("BW_MAX_TWEETS", 30),
		MaxRetweets:       envInt("BW_MAX_RETWEETS", 30),
		MaxFollowers:      envInt("BW_MAX_FOLLOWERS", 50),
		MaxFollowing:      envInt("BW_MAX_FOLLOWING", 50),
		EnableScreenshots: envBool("BW_ENABLE_SCREENSHOTS", true),
		ScrollPause:       envDuration("BW_SCROLL_PAUSE", time.Second),
		ScreenshotTimeout: envDuration("BW_SCREENSHOT_TIMEOUT", 3*time.Second),
		FeedTimeBudget:    envDuration("BW_FEED_TIME_BUDGET", 2*time.Minute),
		Watchlist:         envList("BW_WATCHLIST"),
		SyncInterval:      envDuration("BW_SYNC_INTERVAL", time.Hour),
	}

	if cfg.ScrollPause < 500*time.Millisecond {
		return nil, fmt.Errorf("BW_SCROLL_PAUSE must be at least 500ms")
	}

	for _, dir := range []string{cfg.CookiesDir, cfg.ScreenshotsDir, cfg.ExportsDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
