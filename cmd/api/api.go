package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/javacachava/pizza-brava-sub000/docs"
	"github.com/javacachava/pizza-brava-sub000/internal/queue"
	"github.com/javacachava/pizza-brava-sub000/internal/ratelimiter"
	"github.com/javacachava/pizza-brava-sub000/internal/repo"
	"github.com/javacachava/pizza-brava-sub000/internal/service"
	"github.com/javacachava/pizza-brava-sub000/internal/store/mongo"
	"github.com/javacachava/pizza-brava-sub000/internal/worker"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config         config
	logger         *zap.SugaredLogger
	rateLimiter    ratelimiter.Limiter
	storage        *mongo.Storage
	redis          *redis.Client
	broker         queue.Broker
	catalogRepo    repo.CatalogRepository
	configService  *service.ConfigurationService
	cartService    *service.CartService
	orderService   *service.OrderService
	kitchenService *service.KitchenService
	auditService   *service.AuditService
	importService  *service.CatalogImportService
	metricsHandler http.Handler
	importWorker   *worker.CatalogImportWorker
	statusWorker   *worker.OrderStatusWorker
	boardWorker    *worker.BoardSyncWorker
}

type config struct {
	addr        string
	env         string
	apiURL      string
	logLevel    string
	rateLimiter ratelimiter.Config
	mongo       mongoConfig
	redis       redisConfig
	rabbitMQ    rabbitMQConfig
	googleCreds string
	orders      service.OrderConfig
	timezone    string
}

type mongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type redisConfig struct {
	Addr     string
	Password string
	DB       int
	CartTTL  time.Duration
}

type rabbitMQConfig struct {
	URL           string
	MaxRetries    int
	RetryDelay    time.Duration
	PrefetchCount int
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)
	r.Use(app.ActorMiddleware)

	if app.metricsHandler != nil {
		r.Handle("/metrics", app.metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)

		r.Get("/products/{product_id}", app.getProductHandler)
		r.Get("/combos/{combo_id}", app.getComboHandler)
		r.Get("/ingredients", app.listIngredientsHandler)
		r.Get("/flavors", app.listFlavorsHandler)

		r.Post("/quotes", app.createQuoteHandler)

		r.Route("/carts", func(r chi.Router) {
			r.Post("/", app.createCartHandler)
			r.Route("/{cart_id}", func(r chi.Router) {
				r.Get("/", app.getCartHandler)
				r.Delete("/", app.clearCartHandler)
				r.Post("/products", app.addProductHandler)
				r.Post("/configured", app.addConfiguredHandler)
				r.Patch("/items/{index}", app.updateCartItemHandler)
				r.Delete("/items/{index}", app.removeCartItemHandler)
				r.Post("/checkout", app.checkoutHandler)
			})
		})

		r.Get("/orders/{order_id}", app.getOrderHandler)
		r.Get("/orders/{order_id}/audit", app.getOrderAuditHandler)

		r.Route("/kitchen", func(r chi.Router) {
			r.Get("/board", app.getBoardHandler)
			r.Get("/board/stream", app.streamBoardHandler)
			r.Post("/orders/{order_id}/advance", app.advanceOrderHandler)
		})

		r.Post("/catalog/imports", app.createImportTaskHandler)
		r.Get("/catalog/imports/{task_id}", app.getImportTaskHandler)

		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	// docs
	docs.SwaggerInfo.Title = "Pizza Brava POS"
	docs.SwaggerInfo.Description = "Order composition and kitchen fulfillment API"
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/api/v1"

	// workers
	if app.boardWorker != nil {
		if err := app.boardWorker.Start(); err != nil {
			return fmt.Errorf("failed to start board worker: %w", err)
		}
	}
	if app.importWorker != nil {
		if err := app.importWorker.Start(); err != nil {
			return fmt.Errorf("failed to start import worker: %w", err)
		}
	}
	if app.statusWorker != nil {
		if err := app.statusWorker.Start(); err != nil {
			return fmt.Errorf("failed to start order status worker: %w", err)
		}
	}

	srv := &http.Server{
		Addr:        app.config.addr,
		Handler:     mux,
		ReadTimeout: time.Second * 10,
		IdleTimeout: time.Minute,
		// no WriteTimeout: the kitchen board stream is long-lived
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		if app.importWorker != nil {
			app.importWorker.Stop()
		}
		if app.statusWorker != nil {
			app.statusWorker.Stop()
		}
		if app.boardWorker != nil {
			app.boardWorker.Stop()
		}

		// board streams never go idle on their own
		if app.kitchenService != nil {
			srv.RegisterOnShutdown(app.kitchenService.CloseSubscribers)
		}
		err := srv.Shutdown(ctx)

		if app.storage != nil {
			if err := app.storage.Close(ctx); err != nil {
				app.logger.Errorw("error closing MongoDB", "error", err)
			} else {
				app.logger.Info("MongoDB connection closed gracefully")
			}
		}

		if app.redis != nil {
			if err := app.redis.Close(); err != nil {
				app.logger.Errorw("error closing Redis", "error", err)
			} else {
				app.logger.Info("Redis connection closed gracefully")
			}
		}

		if app.broker != nil {
			if err := app.broker.Close(); err != nil {
				app.logger.Errorw("error closing RabbitMQ", "error", err)
			} else {
				app.logger.Info("RabbitMQ connection closed gracefully")
			}
		}

		shutdown <- err
	}()

	app.logger.Infow("server have started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
