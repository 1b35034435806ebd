// Package server boots the HTTP API: config, stores, middleware stack,
// routes, the payment repair sweep, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/app/routes"
	"github.com/chefbazaar/backend/app/services"
	"github.com/chefbazaar/backend/config"
	"github.com/chefbazaar/backend/internal/payments/stripe"
	"github.com/chefbazaar/backend/internal/reconcile"
	"github.com/chefbazaar/backend/pkg/cache"
	"github.com/chefbazaar/backend/pkg/database"
	"github.com/chefbazaar/backend/pkg/logger"
	"github.com/chefbazaar/backend/pkg/metrics"
	"github.com/chefbazaar/backend/pkg/middleware"
	"github.com/chefbazaar/backend/pkg/reqid"
	"github.com/chefbazaar/backend/pkg/router"
)

// Start runs the API until SIGINT or SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer database.Disconnect(client)

	db := client.Database(config.MongoDatabase())
	store := repositories.NewStore(db)

	// Optional: ship logs to the logs collection alongside stdout.
	var mongoLogs *logger.MongoHandler
	if config.LogToMongo() {
		mongoLogs = logger.NewMongoHandler(db.Collection(repositories.ColLogs))
		base := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
		logger.SetHandler(logger.NewMultiHandler(base, mongoLogs))
	}

	redis := cache.Connect(ctx)
	defer redis.Close()
	if redis == nil {
		logger.Warn("redis unreachable, meal cache disabled")
	}

	checkout := stripe.New(config.StripeAPIBase(), config.StripeSecret())

	r := router.New()

	// Global middleware, outermost first. Metrics wrap everything so
	// latency includes the whole stack; recovery sits inside so a panic
	// is still counted.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))

	routes.RegisterAPI(r, routes.Deps{
		Store:    store,
		Cache:    redis,
		Checkout: checkout,
	})

	payments := services.NewPaymentService(checkout, store.Orders, store.Payments,
		config.CheckoutSuccessURL(), config.CheckoutCancelURL())
	sweeper := reconcile.New(payments, config.ReconcileInterval())
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("chefbazaar api listening", "addr", srv.Addr, "env", config.AppEnv())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", "error", err)
	}

	<-sweeper.Done()
	if mongoLogs != nil {
		mongoLogs.Close()
	}
	return nil
}
