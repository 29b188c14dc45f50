// Package app contains the application setup for the cart service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/gocart/internal/cart/persistence"
	"github.com/abgdnv/gocart/internal/cart/service"
	"github.com/abgdnv/gocart/internal/cart/transport/rest"
	"github.com/abgdnv/gocart/internal/config"
	"github.com/abgdnv/gocart/pkg/messaging"
	"github.com/abgdnv/gocart/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependencies struct {
	CartService service.CartService
	Logger      *slog.Logger
}

// SetupDependencies wires the persistence adapter and event publisher into the
// cart service. publisher may be nil when event publishing is disabled.
func SetupDependencies(dbPool *pgxpool.Pool, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	cService := service.NewService(persistence.NewPgAdapter(dbPool), publisher, logger)

	return &Dependencies{
		CartService: cService,
		Logger:      logger,
	}
}

// SetupHttpHandler initializes the HTTP server and routes for the cart service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the cart service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	cartHandler := rest.NewHandler(deps.CartService, deps.Logger)
	cartHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the cart service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
