// Package app contains the application setup for the product service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/productapi/internal/config"
	"github.com/abgdnv/productapi/internal/service"
	"github.com/abgdnv/productapi/internal/store"
	grpcImpl "github.com/abgdnv/productapi/internal/transport/grpc"
	"github.com/abgdnv/productapi/internal/transport/rest"
	"github.com/abgdnv/productapi/pkg/messaging"
	"github.com/abgdnv/productapi/pkg/server"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

const serviceName = "product"

type Dependencies struct {
	ProductService service.ProductService
	Readiness      rest.Pinger
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// SetupDependencies builds the service graph on top of db. db is usually a *pgxpool.Pool,
// which is both the query executor and the readiness probe.
func SetupDependencies(db store.DBTX, readiness rest.Pinger, publisher messaging.Publisher, metricsHandler http.Handler, logger *slog.Logger) *Dependencies {
	pService := service.NewService(store.NewPgStore(db), publisher)

	return &Dependencies{
		ProductService: pService,
		Readiness:      readiness,
		MetricsHandler: metricsHandler,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the router and routes for the product service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := server.NewChiRouter(deps.Logger, server.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		CORSMaxAge:     cfg.CORS.MaxAge,
	})
	wireRoutes(mux, deps, cfg.HTTPServer.MaxBodyBytes)
	return mux
}

// wireRoutes sets up the HTTP routes for the product service.
func wireRoutes(mux *chi.Mux, deps *Dependencies, maxBodyBytes int64) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Readiness, maxBodyBytes, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the product service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps, cfg)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, serviceName, mux)
}

// SetupGrpcServer initializes the gRPC server for the product service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) (*grpc.Server, *health.Server) {
	productRegisterFunc := func(s *grpc.Server) {
		grpcImpl.RegisterProductServiceServer(s, grpcImpl.NewServer(deps.ProductService))
	}
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, productRegisterFunc)
}
