package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/campuslabs/softreq/internal/server"
	"github.com/campuslabs/softreq/modules"
	"github.com/campuslabs/softreq/pkg/application"
	"github.com/campuslabs/softreq/pkg/authz"
	"github.com/campuslabs/softreq/pkg/configuration"
	"github.com/campuslabs/softreq/pkg/logging"
	"github.com/campuslabs/softreq/pkg/metrics"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up OpenTelemetry if enabled
	if conf.OpenTelemetry.Enabled {
		tracingCleanup := logging.SetupTracing(ctx, conf.OpenTelemetry.ServiceName, conf.OpenTelemetry.TempoURL)
		defer tracingCleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to Tempo at " + conf.OpenTelemetry.TempoURL)
	}

	var pool *pgxpool.Pool
	var db *sql.DB
	if !conf.UsesMemoryStore() {
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		var err error
		pool, err = pgxpool.New(connectCtx, conf.Database.Opts)
		cancel()
		if err != nil {
			panic(err)
		}
		defer pool.Close()

		if conf.MigrationsAuto {
			db, err = sql.Open("postgres", conf.Database.Opts)
			if err != nil {
				panic(err)
			}
			defer db.Close()
		}
	}

	policy, err := server.NewPolicy(conf, logger)
	if err != nil {
		log.Fatalf("failed to load access policy: %v", err)
	}
	verifier, err := server.NewVerifier(conf)
	if err != nil {
		log.Fatalf("failed to configure authentication: %v", err)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:               pool,
		Logger:             logger,
		Migrations:         application.NewMigrationManager(db, logger),
		SupportedLanguages: conf.SupportedLanguages,
	})
	if err := modules.Load(app, modules.BuiltInModules(conf, policy, verifier)...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	if db != nil {
		if err := app.Migrations().Up(ctx); err != nil {
			log.Fatalf("failed to apply migrations: %v", err)
		}
	}

	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	go reloadPolicyOnHangup(ctx, policy, logger)

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"address": conf.SocketAddress,
		"store":   conf.StoreDriver,
		"authz":   policy.Mode(),
	}).Info("softreq listening")
	if err := serverInstance.Serve(ctx, conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// reloadPolicyOnHangup re-reads the policy file on SIGHUP.
func reloadPolicyOnHangup(ctx context.Context, policy *authz.Service, logger *logrus.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := policy.ReloadPolicy(ctx); err != nil {
				logger.WithError(err).Error("failed to reload access policy")
			}
		}
	}
}
