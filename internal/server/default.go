package server

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/campuslabs/softreq/pkg/application"
	"github.com/campuslabs/softreq/pkg/configuration"
	"github.com/campuslabs/softreq/pkg/httpapi"
	"github.com/campuslabs/softreq/pkg/middleware"
	"github.com/campuslabs/softreq/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	// Pool is nil on the in-memory store.
	Pool *pgxpool.Pool
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	loggerOpts := middleware.DefaultLoggerOptions()
	loggerOpts.RequestIDHeader = conf.RequestIDHeader
	loggerOpts.RealIPHeader = conf.RealIPHeader

	// Core middleware stack with tracing capabilities
	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, loggerOpts), // creates the root span for each request

		middleware.TracedMiddleware("database"),
		middleware.ProvidePool(options.Pool),

		middleware.TracedMiddleware("cors"),
		middleware.Cors(conf.CORSAllowedOrigins...),

		middleware.TracedMiddleware("localizer"),
		middleware.ProvideLocalizer(app),
	}

	if conf.GoAppEnvironment == configuration.Production && conf.OpsGuard.Enabled {
		guarded := []string{HealthPath}
		if conf.Prometheus.Enabled {
			guarded = append(guarded, conf.Prometheus.Path)
		}
		middlewares = append(middlewares,
			middleware.TracedMiddleware("opsGuard"),
			middleware.OpsGuard(middleware.OpsGuardConfig{
				Enabled:      true,
				Paths:        guarded,
				CIDRs:        conf.OpsGuard.CIDRs,
				Token:        conf.OpsGuard.Token,
				RealIPHeader: conf.RealIPHeader,
			}),
		)
	}

	// Add rate limiting middleware if enabled
	if conf.RateLimit.Enabled {
		var store limiter.Store
		var err error

		switch conf.RateLimit.Storage {
		case "redis":
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}

		middlewares = append(middlewares,
			middleware.TracedMiddleware("rateLimit"),
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             store,
			}),
		)
	}

	app.RegisterMiddleware(middlewares...)

	var db Pinger
	if options.Pool != nil {
		db = options.Pool
	}
	app.RegisterControllers(NewHealthController(db))

	serverInstance := server.NewHTTPServer(
		app,
		httpapi.NotFound(),
		httpapi.MethodNotAllowed(),
	)
	return serverInstance, nil
}
