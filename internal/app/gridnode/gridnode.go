package gridnode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"
	"google.golang.org/grpc"

	"github.com/magabrotheeeer/gridnode/internal/cache"
	"github.com/magabrotheeeer/gridnode/internal/config"
	"github.com/magabrotheeeer/gridnode/internal/grpc/client"
	"github.com/magabrotheeeer/gridnode/internal/grpc/server"
	"github.com/magabrotheeeer/gridnode/internal/grpc/sessionpb"
	"github.com/magabrotheeeer/gridnode/internal/http/handlers/health"
	"github.com/magabrotheeeer/gridnode/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gridnode/internal/i18n"
	"github.com/magabrotheeeer/gridnode/internal/lib/idgen"
	"github.com/magabrotheeeer/gridnode/internal/lib/jwt"
	"github.com/magabrotheeeer/gridnode/internal/lib/password"
	"github.com/magabrotheeeer/gridnode/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gridnode/internal/metrics"
	"github.com/magabrotheeeer/gridnode/internal/migrations"
	"github.com/magabrotheeeer/gridnode/internal/paymentprovider"
	adminservice "github.com/magabrotheeeer/gridnode/internal/services/admin"
	contactservice "github.com/magabrotheeeer/gridnode/internal/services/contact"
	dashboardservice "github.com/magabrotheeeer/gridnode/internal/services/dashboard"
	paymentservice "github.com/magabrotheeeer/gridnode/internal/services/payment"
	riskservice "github.com/magabrotheeeer/gridnode/internal/services/risk"
	sessionservice "github.com/magabrotheeeer/gridnode/internal/services/session"
	"github.com/magabrotheeeer/gridnode/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App основное приложение: HTTP API и gRPC сервис сессий.
type App struct {
	server     *http.Server
	probe      *client.SessionClient
	grpcServer *grpc.Server
	listener   net.Listener
	logger     *slog.Logger
	db         *repository.Storage
	cache      *cache.Cache
	conn       *amqp.Connection
	ch         *amqp.Channel
}

// New создаёт приложение и подключает его зависимости.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{logger: logger}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	a.db = db
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		a.close()
		return nil, err
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		a.close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}
	a.cache = cacheRedis

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	a.conn = conn
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.Exchange, rabbitmq.EventQueues())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	a.ch = ch
	publisher := rabbitmq.NewPublisher(ch, rabbitmq.Exchange)

	ids, err := idgen.New(cfg.NodeID)
	if err != nil {
		a.close()
		return nil, err
	}

	adminHash := cfg.Auth.AdminPasswordHash
	if adminHash == "" && cfg.Auth.AdminPassword != "" {
		if adminHash, err = password.GetHash(cfg.Auth.AdminPassword); err != nil {
			a.close()
			return nil, err
		}
	}
	if adminHash == "" {
		logger.Warn("admin password is not configured, admin login disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	sessions := sessionservice.New(logger, cacheRedis, db, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL), m, sessionservice.Config{
		AdminEmail:        cfg.Auth.AdminEmail,
		AdminPasswordHash: adminHash,
		StrictCredentials: cfg.Auth.StrictCredentials,
		TokenTTL:          cfg.TokenTTL,
	})
	provider := paymentprovider.NewClient(ids, cfg.Mock.PaymentDelay)
	contacts := contactservice.New(logger, db, ids, publisher, m, cfg.Mock.ContactDelay)

	svc := Services{
		Sessions:  sessions,
		Risk:      riskservice.New(logger, sessions, db, riskservice.RandomPicker{}, m, cfg.Mock.RiskDelay),
		Payment:   paymentservice.New(logger, provider, db, sessions, publisher, m),
		Contact:   contacts,
		Dashboard: dashboardservice.New(logger, db),
		Admin:     adminservice.New(logger, db, contacts),
		Catalog:   i18n.MustLoad(),
		Health: map[string]health.Check{
			"redis": cacheRedis.Ping,
			"postgres": func(ctx context.Context) error {
				return db.DB.PingContext(ctx)
			},
		},
	}

	lis, err := net.Listen("tcp", cfg.AddressGRPC)
	if err != nil {
		a.close()
		return nil, err
	}
	a.listener = lis
	a.grpcServer = grpc.NewServer(grpc.ConnectionTimeout(cfg.TimeoutGRPC))
	sessionpb.RegisterSessionServiceServer(a.grpcServer, server.NewSessionServer(sessions, logger))

	probe, err := client.NewSessionClient(lis.Addr().String())
	if err != nil {
		a.close()
		return nil, err
	}
	a.probe = probe
	svc.Health["grpc"] = probe.Ping

	router := chi.NewRouter()
	RegisterRoutes(router, logger, svc, RouteOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		WebhookSecret:  cfg.Payment.WebhookSecret,
		Limiter:        middlewarectx.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Metrics:        m,
		Gatherer:       reg,
	})

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return a, nil
}

// Run запускает серверы и останавливает их по отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()
	go func() {
		a.logger.Info("Session gRPC service listening on", slog.String("address", a.listener.Addr().String()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("shutting down servers gracefully")
	if err := a.server.Shutdown(timeoutCtx); err != nil && runErr == nil {
		runErr = err
	}
	a.grpcServer.GracefulStop()
	a.close()
	return runErr
}

func (a *App) close() {
	if a.probe != nil {
		if err := a.probe.Close(); err != nil {
			a.logger.Error("failed to close grpc probe", slog.Any("err", err))
		}
	}
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
