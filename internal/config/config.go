package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth (serve mode). Empty disables bearer auth.
	APIKey string

	// Query defaults
	DefaultBudget       int
	DefaultContextLines int

	// Loading
	LoadTimeout        time.Duration
	MaxConcurrentLoads int
	MaxFileBytes       int64

	// Serve-mode document registry
	DocTTL time.Duration

	// Extraction
	PDFFallbackPdftotext bool
	StripMarkdown        bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("DOCVIEW_API_KEY"),

		DefaultBudget:       envInt("DOCVIEW_BUDGET", 15000),
		DefaultContextLines: envInt("DOCVIEW_CONTEXT_LINES", 2),

		LoadTimeout:        envDuration("DOCVIEW_LOAD_TIMEOUT", 30*time.Second),
		MaxConcurrentLoads: envInt("DOCVIEW_MAX_CONCURRENT_LOADS", 4),
		MaxFileBytes:       envInt64("DOCVIEW_MAX_FILE_BYTES", 104857600), // 100MB

		DocTTL: envDuration("DOCVIEW_DOC_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("DOCVIEW_PDF_FALLBACK_PDFTOTEXT", true),
		StripMarkdown:        envBool("DOCVIEW_STRIP_MARKDOWN", false),
	}

	if cfg.DefaultBudget <= 0 {
		cfg.DefaultBudget = 15000
	}
	if cfg.DefaultContextLines < 0 {
		cfg.DefaultContextLines = 2
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = 30 * time.Second
	}
	if cfg.MaxConcurrentLoads <= 0 {
		cfg.MaxConcurrentLoads = 4
	}
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = 104857600
	}
	if cfg.DocTTL <= 0 {
		cfg.DocTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
