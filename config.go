package spacetraveling

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// SiteConfig holds all configuration for a spacetraveling site.
type SiteConfig struct {
	Name        string `validate:"required"`     // Site name (default "spacetraveling")
	URL         string `validate:"required,url"` // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Publisher name for JSON-LD
	Env         string `validate:"oneof=development production"`

	Addr string `validate:"required"` // Listen address (default ":3000")

	PrismicEndpoint    string  `validate:"required,url"` // e.g. https://spacetraveling.cdn.prismic.io/api/v2
	PrismicAccessToken string
	PostType           string  `validate:"required"` // CMS custom type of posts (default "posts")
	PageSize           int     `validate:"min=1,max=100"`
	CMSRateLimit       float64 `validate:"gte=0"` // outbound requests per second, 0 disables

	Locale         string `validate:"oneof=pt-BR en"` // date formatting locale (default "pt-BR")
	WordsPerMinute int    `validate:"min=1"`

	Revalidate    time.Duration // cache TTL (default 30min)
	FallbackAfter time.Duration // wait before rendering the loading state (default 3s)
	FetchTimeout  time.Duration // upper bound on a single CMS call (default 10s)
	CacheSize     int           `validate:"min=1"`

	SnapshotPath      string        // SQLite path (default "data/snapshots.db")
	SnapshotRetention time.Duration // default 30 days

	SessionSecret string // enables previews when set
	CookieSecure  bool   // Set true for HTTPS
	WebhookSecret string // enables the publish webhook when set

	LoadMoreRate  float64 `validate:"gt=0"` // load-more requests per second per IP
	LoadMoreBurst int     `validate:"min=1"`

	MetricsEnabled bool
	SentryDSN      string
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "spacetraveling"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.PostType == "" {
		c.PostType = "posts"
	}
	if c.PageSize == 0 {
		c.PageSize = 1
	}
	if c.Locale == "" {
		c.Locale = "pt-BR"
	}
	if c.WordsPerMinute == 0 {
		c.WordsPerMinute = 200
	}
	if c.Revalidate == 0 {
		c.Revalidate = 30 * time.Minute
	}
	if c.FallbackAfter == 0 {
		c.FallbackAfter = 3 * time.Second
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.CacheSize == 0 {
		c.CacheSize = 256
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = "data/snapshots.db"
	}
	if c.SnapshotRetention == 0 {
		c.SnapshotRetention = 30 * 24 * time.Hour
	}
	if c.LoadMoreRate == 0 {
		c.LoadMoreRate = 2
	}
	if c.LoadMoreBurst == 0 {
		c.LoadMoreBurst = 5
	}
}

// Validate applies defaults and checks the struct tags.
func (c *SiteConfig) Validate() error {
	c.setDefaults()
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("spacetraveling: invalid config: %w", err)
	}
	return nil
}

// IsDevelopment reports whether the site runs in development mode.
func (c SiteConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// PreviewEnabled reports whether CMS previews can be started.
func (c SiteConfig) PreviewEnabled() bool {
	return c.SessionSecret != ""
}

func (c SiteConfig) site() Site {
	lang := "pt-BR"
	if c.Locale == "en" {
		lang = "en"
	}
	return Site{Name: c.Name, URL: c.URL, Description: c.Description, Lang: lang}
}

// ConfigFromEnv reads a SiteConfig from the environment. Missing values keep
// their defaults; malformed numbers and durations are logged and ignored.
func ConfigFromEnv() SiteConfig {
	cfg := SiteConfig{
		Name:               os.Getenv("SITE_NAME"),
		URL:                os.Getenv("SITE_URL"),
		Description:        os.Getenv("SITE_DESCRIPTION"),
		Author:             os.Getenv("SITE_AUTHOR"),
		Env:                os.Getenv("APP_ENV"),
		Addr:               os.Getenv("ADDR"),
		PrismicEndpoint:    os.Getenv("PRISMIC_API_ENDPOINT"),
		PrismicAccessToken: os.Getenv("PRISMIC_ACCESS_TOKEN"),
		PostType:           os.Getenv("PRISMIC_POST_TYPE"),
		PageSize:           envInt("PAGE_SIZE", 0),
		CMSRateLimit:       envFloat("PRISMIC_RATE_LIMIT", 0),
		Locale:             os.Getenv("SITE_LOCALE"),
		WordsPerMinute:     envInt("WORDS_PER_MINUTE", 0),
		Revalidate:         envDuration("REVALIDATE", 0),
		FallbackAfter:      envDuration("FALLBACK_AFTER", 0),
		FetchTimeout:       envDuration("FETCH_TIMEOUT", 0),
		CacheSize:          envInt("CACHE_SIZE", 0),
		SnapshotPath:       os.Getenv("SNAPSHOT_PATH"),
		SnapshotRetention:  envDuration("SNAPSHOT_RETENTION", 0),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		CookieSecure:       envBool("COOKIE_SECURE", false),
		WebhookSecret:      os.Getenv("PRISMIC_WEBHOOK_SECRET"),
		LoadMoreRate:       envFloat("LOAD_MORE_RATE", 0),
		LoadMoreBurst:      envInt("LOAD_MORE_BURST", 0),
		MetricsEnabled:     envBool("METRICS_ENABLED", true),
		SentryDSN:          os.Getenv("SENTRY_DSN"),
	}
	cfg.setDefaults()
	return cfg
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("config invalid float, using default", "key", key, "value", v, "default", def)
		return def
	}
	return f
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.log = l
	}
}

// WithSource replaces the CMS-backed content source, e.g. in tests.
func WithSource(src ContentSource) Option {
	return func(a *App) {
		a.source = src
	}
}
