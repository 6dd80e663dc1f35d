// Command server runs the storefront edge: locale negotiation, session
// refresh, admin guarding, and the gated download API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/soudigital/storefront/config"
	"github.com/soudigital/storefront/internal/database"
	"github.com/soudigital/storefront/internal/downloads"
	"github.com/soudigital/storefront/internal/email"
	"github.com/soudigital/storefront/internal/handlers"
	"github.com/soudigital/storefront/internal/identity"
	"github.com/soudigital/storefront/internal/locale"
	"github.com/soudigital/storefront/internal/logger"
	"github.com/soudigital/storefront/internal/middleware"
	"github.com/soudigital/storefront/internal/profile"
	"github.com/soudigital/storefront/internal/routes"
	"github.com/soudigital/storefront/internal/server"
	"github.com/soudigital/storefront/internal/storage"
)

type appConfig struct {
	AppName     string     `env:"APP_NAME" envDefault:"storefront"`
	Environment string     `env:"APP_ENV" envDefault:"development"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app appConfig
	config.MustLoad(&app)

	opts := []logger.Option{logger.WithLevel(app.LogLevel), logger.WithAppName(app.AppName)}
	if app.Environment == "development" {
		opts = append(opts, logger.WithDevelopment(app.AppName))
	}
	log := logger.New(opts...)

	if err := run(ctx, log); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	var dbCfg database.Config
	config.MustLoad(&dbCfg)

	pool, err := database.Connect(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	var localeCfg locale.Config
	config.MustLoad(&localeCfg)
	resolver, err := locale.NewResolver(localeCfg)
	if err != nil {
		return fmt.Errorf("locale resolver: %w", err)
	}

	var routeCfg routes.Config
	config.MustLoad(&routeCfg)
	classifier := routes.NewClassifier(routeCfg)

	var idCfg identity.Config
	config.MustLoad(&idCfg)
	idClient, err := identity.New(idCfg)
	if err != nil {
		return fmt.Errorf("identity client: %w", err)
	}

	var storeCfg storage.Config
	config.MustLoad(&storeCfg)
	store, err := storage.New(ctx, storeCfg)
	if err != nil {
		return fmt.Errorf("object storage: %w", err)
	}

	var mailCfg email.Config
	config.MustLoad(&mailCfg)
	sender, err := email.NewPostmark(mailCfg)
	if err != nil {
		return fmt.Errorf("email sender: %w", err)
	}

	var sessCfg middleware.SessionConfig
	config.MustLoad(&sessCfg)
	sessions := middleware.NewSessionRefresher(idClient, sessCfg, log)

	profiles := profile.NewStore(pool)
	service := downloads.NewService(
		downloads.NewValidator(pool),
		downloads.NewAuthorizer(store, log),
		sender,
		log,
	)

	pipeline := middleware.Pipeline(middleware.PipelineConfig{
		Locales:  resolver,
		Routes:   classifier,
		Sessions: sessions,
		Profiles: profiles,
		Logger:   log,
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)

	r.Get("/healthz", handlers.Health)
	r.Get("/readyz", handlers.Ready(pool))

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Authenticate(sessions))
		api.Use(middleware.EnsureProfile(profiles, log))
		handlers.NewDownloadHandler(service, log).Routes(api)
	})

	r.Group(func(site chi.Router) {
		site.Use(pipeline)
		site.Handle("/*", handlers.Storefront(resolver))
	})

	var srvCfg server.Config
	config.MustLoad(&srvCfg)
	return server.Run(ctx, srvCfg, r, log)
}
