// Package spacetraveling is a server-rendered blog front-end for a Prismic
// repository, built with Go, Echo, and templ. It renders a cursor-paginated
// post list with a load-more affordance and post pages with reading time,
// plus RSS, sitemap, and CMS previews.
//
// Users provide their own templates via the ViewFuncs struct, and the App
// handles fetching, caching, middleware, and routing.
package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/richtext"
)

// ViewFuncs holds user-provided templ components that the App calls when
// rendering pages.
type ViewFuncs struct {
	Home        func(page HomePage) templ.Component
	PostList    func(page HomePage) templ.Component // load-more fragment
	Post        func(page PostPage) templ.Component
	NotFound    func(site Site) templ.Component
	ServerError func(site Site) templ.Component
}

// App is the central application. It wires together the CMS source, the
// cache, the snapshot store, handlers, middleware, and templates.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Store     *Store
	Cache     *PostCache
	Views     ViewFuncs
	Sanitizer *richtext.Sanitizer

	source       ContentSource
	log          *slog.Logger
	moreLimiter  *IPLimiter
	customRoutes []func(*App)
	staticDir    string
	initialized  bool
	stop         chan struct{}
	stopPrune    func()
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		Sanitizer: richtext.NewSanitizer(),
		log:       slog.Default(),
		staticDir: "public",
		stop:      make(chan struct{}),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init validates the configuration, opens the snapshot store, connects the
// CMS client and registers middleware and routes. Start calls it when it
// has not run yet.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}

	if a.source == nil {
		opts := []prismic.Option{
			prismic.WithHTTPClient(&http.Client{Timeout: a.Config.FetchTimeout}),
		}
		if a.Config.PrismicAccessToken != "" {
			opts = append(opts, prismic.WithAccessToken(a.Config.PrismicAccessToken))
		}
		if a.Config.CMSRateLimit > 0 {
			opts = append(opts, prismic.WithRateLimit(rate.Limit(a.Config.CMSRateLimit), 1))
		}
		client, err := prismic.New(a.Config.PrismicEndpoint, opts...)
		if err != nil {
			return fmt.Errorf("spacetraveling: init cms client: %w", err)
		}
		a.source = NewCMSSource(client, a.Config.PostType)
	}

	store, err := NewStore(a.Config.SnapshotPath)
	if err != nil {
		return fmt.Errorf("spacetraveling: init store: %w", err)
	}
	a.Store = store
	a.stopPrune = store.StartPruneScheduler(a.log, a.Config.SnapshotRetention, 24*time.Hour)

	a.Cache = NewPostCache(a.source, CacheOptions{
		Size:     a.Config.CacheSize,
		TTL:      a.Config.Revalidate,
		PageSize: a.Config.PageSize,
		Timeout:  a.Config.FetchTimeout,
		Store:    store,
		Logger:   a.log,
	})

	a.moreLimiter = NewIPLimiter(rate.Limit(a.Config.LoadMoreRate), a.Config.LoadMoreBurst, 10*time.Minute)
	go a.moreLimiter.Run(3*time.Minute, a.stop)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.initialized = true
	return nil
}

// Start initializes the App and serves HTTP until ctx is cancelled, then
// shuts the server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		a.log.Info("server listening", "addr", a.Config.Addr, "url", a.Config.URL)
		errc <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.log.Info("shutting down")
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("spacetraveling: shutdown: %w", err)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded assets (loadmore.js, logo.svg, styles.css) fall through to the user's
	// static dir for everything else under /public/.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS))))
	e.GET("/public/loadmore.js", embeddedHandler)
	e.GET("/public/logo.svg", embeddedHandler)
	e.GET("/public/styles.css", embeddedHandler)
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", handleHealth)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/posts/more/", a.handleMore, a.moreLimiter.Middleware())
	e.GET("/post/:slug/", a.handlePost)
	e.GET("/posts/:slug/", handlePostRedirect)

	if a.Config.PreviewEnabled() {
		e.GET("/preview/", a.handlePreview)
		e.GET("/preview/exit/", a.handleExitPreview)
	}
	if a.Config.WebhookSecret != "" {
		e.POST(webhookPath, a.handleWebhook)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	select {
	case <-a.stop:
	default:
		close(a.stop)
	}
	if a.stopPrune != nil {
		a.stopPrune()
		a.stopPrune = nil
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
