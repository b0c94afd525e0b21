// Package accountsservice собирает HTTP-приложение сервиса аккаунтов:
// хранилище, кеш, очередь писем, бизнес-сервисы и маршруты.
package accountsservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/speechtospeechai/accounts-service/internal/cache"
	"github.com/speechtospeechai/accounts-service/internal/config"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/pages"
	"github.com/speechtospeechai/accounts-service/internal/lib/jwt"
	"github.com/speechtospeechai/accounts-service/internal/migrations"
	"github.com/speechtospeechai/accounts-service/internal/paymentprovider"
	"github.com/speechtospeechai/accounts-service/internal/rabbitmq"
	accountservice "github.com/speechtospeechai/accounts-service/internal/services/account"
	paymentservice "github.com/speechtospeechai/accounts-service/internal/services/payment"
	ratelimitservice "github.com/speechtospeechai/accounts-service/internal/services/ratelimit"
	translationsservice "github.com/speechtospeechai/accounts-service/internal/services/translations"
	"github.com/speechtospeechai/accounts-service/internal/storage/repository"
)

// App — HTTP-приложение сервиса аккаунтов.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		if err := repository.CheckDatabaseReady(db); err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = waitForDB(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetEmailQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	emailPublisher := rabbitmq.NewEmailPublisher(ch)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	accounts := accountservice.New(db, emailPublisher, jwtMaker, logger)
	gate := ratelimitservice.New(cacheRedis, cfg.RateLimit, logger)
	payments := paymentservice.New(db, logger)
	translations := translationsservice.New(db, cacheRedis, cfg.DefaultLocale, logger)

	paypalClient := paymentprovider.NewPaypalClient(cfg.PaypalClientID,
		cfg.PaypalSecret, cfg.PaypalAPI)
	stripeClient := paymentprovider.NewStripeClient(cfg.StripeSecretKey)

	pagesHandler, err := pages.New(logger, translations, cfg.TemplatesDir, cfg.ScriptsVersion)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, jwtMaker, accounts, gate, payments,
		paypalClient, stripeClient, pagesHandler)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		closeResources(a.ch, a.conn, a.logger)
		if dbErr := a.db.DB.Close(); dbErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", dbErr))
		}
		return err
	}
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", slog.Any("err", err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", slog.Any("err", err))
		}
	}
}
