// Package scheduler содержит приложение фоновых задач: перевод истёкших
// тарифов на бесплатный и напоминания об окончании тарифа.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gridnode/internal/cache"
	"github.com/magabrotheeeer/gridnode/internal/config"
	"github.com/magabrotheeeer/gridnode/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	schedulerservice "github.com/magabrotheeeer/gridnode/internal/services/scheduler"
	"github.com/magabrotheeeer/gridnode/internal/storage/repository"
)

// Jobs задачи планировщика.
type Jobs interface {
	ExpirePlans(ctx context.Context) (int, error)
	NotifyExpiring(ctx context.Context) (int, error)
}

// App представляет приложение планировщика.
type App struct {
	jobs   Jobs
	cron   *cron.Cron
	specs  config.Scheduler
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(ctx, db)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{logger: logger, specs: cfg.Scheduler}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	a.conn = conn

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.Exchange, rabbitmq.EventQueues())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	a.ch = ch

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	a.db = db

	if err := waitForDB(ctx, db); err != nil {
		a.close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}
	a.cache = cacheRedis

	a.jobs = schedulerservice.New(db, cacheRedis, rabbitmq.NewPublisher(ch, rabbitmq.Exchange), logger)
	a.cron = newCron(logger)
	return a, nil
}

func newCron(logger *slog.Logger) *cron.Cron {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	return cron.New(cron.WithChain(cron.Recover(cronLogger)))
}

// schedule регистрирует задачи в cron.
func (a *App) schedule(ctx context.Context) error {
	if _, err := a.cron.AddFunc(a.specs.ExpireSpec, func() {
		n, err := a.jobs.ExpirePlans(ctx)
		if err != nil {
			a.logger.Error("expire plans job failed", sl.Err(err))
			return
		}
		a.logger.Info("expire plans job finished", slog.Int("downgraded", n))
	}); err != nil {
		return fmt.Errorf("failed to schedule expire plans job: %w", err)
	}
	a.logger.Info("scheduled expire plans job", slog.String("schedule", a.specs.ExpireSpec))

	if _, err := a.cron.AddFunc(a.specs.NoticeSpec, func() {
		n, err := a.jobs.NotifyExpiring(ctx)
		if err != nil {
			a.logger.Error("expiring notice job failed", sl.Err(err))
			return
		}
		a.logger.Info("expiring notice job finished", slog.Int("notified", n))
	}); err != nil {
		return fmt.Errorf("failed to schedule expiring notice job: %w", err)
	}
	a.logger.Info("scheduled expiring notice job", slog.String("schedule", a.specs.NoticeSpec))
	return nil
}

// Run запускает планировщик и ждёт отмены ctx.
func (a *App) Run(ctx context.Context) error {
	if err := a.schedule(ctx); err != nil {
		a.close()
		return err
	}
	a.cron.Start()

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")
	<-a.cron.Stop().Done()
	a.close()
	return nil
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", slog.Any("err", err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", slog.Any("err", err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", slog.Any("err", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close storage", slog.Any("err", err))
		}
	}
}
