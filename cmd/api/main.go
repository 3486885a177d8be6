package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/agenda-api/config"
	"github.com/jwalitptl/agenda-api/internal/email"
	authhandler "github.com/jwalitptl/agenda-api/internal/handler/auth"
	citahandler "github.com/jwalitptl/agenda-api/internal/handler/cita"
	especialidadhandler "github.com/jwalitptl/agenda-api/internal/handler/especialidad"
	funcionariohandler "github.com/jwalitptl/agenda-api/internal/handler/funcionario"
	"github.com/jwalitptl/agenda-api/internal/handler/health"
	pacientehandler "github.com/jwalitptl/agenda-api/internal/handler/paciente"
	rbachandler "github.com/jwalitptl/agenda-api/internal/handler/rbac"
	segmentohandler "github.com/jwalitptl/agenda-api/internal/handler/segmento"
	"github.com/jwalitptl/agenda-api/internal/middleware"
	"github.com/jwalitptl/agenda-api/internal/repository"
	"github.com/jwalitptl/agenda-api/internal/repository/memory"
	"github.com/jwalitptl/agenda-api/internal/repository/postgres"
	"github.com/jwalitptl/agenda-api/internal/router"
	"github.com/jwalitptl/agenda-api/internal/seed"
	authService "github.com/jwalitptl/agenda-api/internal/service/auth"
	citaService "github.com/jwalitptl/agenda-api/internal/service/cita"
	especialidadService "github.com/jwalitptl/agenda-api/internal/service/especialidad"
	funcionarioService "github.com/jwalitptl/agenda-api/internal/service/funcionario"
	pacienteService "github.com/jwalitptl/agenda-api/internal/service/paciente"
	rbacService "github.com/jwalitptl/agenda-api/internal/service/rbac"
	recoveryService "github.com/jwalitptl/agenda-api/internal/service/recovery"
	segmentoService "github.com/jwalitptl/agenda-api/internal/service/segmento"
	"github.com/jwalitptl/agenda-api/internal/session"
	"github.com/jwalitptl/agenda-api/internal/worker"
	jwtauth "github.com/jwalitptl/agenda-api/pkg/auth"
	"github.com/jwalitptl/agenda-api/pkg/logger"
	"github.com/jwalitptl/agenda-api/pkg/messaging"
	"github.com/jwalitptl/agenda-api/pkg/messaging/rabbitmq"
	redisbroker "github.com/jwalitptl/agenda-api/pkg/messaging/redis"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
	"github.com/jwalitptl/agenda-api/pkg/security"
	retry "github.com/jwalitptl/agenda-api/pkg/worker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(cfg.Metrics.Namespace, reg)

	checks := map[string]health.Check{}

	// Storage
	repos, db, err := openStorage(ctx, cfg, m)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("failed to open storage")
	}
	if db != nil {
		defer db.Close()
		checks["database"] = db.PingContext
	}

	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	if cfg.Storage.Seed {
		if err := seed.Load(ctx, repos, hasher); err != nil {
			log.Fatal().Err(err).Msg("failed to load seed data")
		}
	}

	// Redis is shared by the session store and the broker
	var redisClient *goredis.Client
	if cfg.Session.Store == "redis" || cfg.Messaging.Broker == "redis" {
		redisClient, err = redisbroker.NewClient(ctx, redisbroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisClient.Close()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var sessions session.Store = session.NewCacheStore(cfg.JWT.Expiry())
	if cfg.Session.Store == "redis" {
		sessions = session.NewRedisStore(redisClient)
	}

	broker, err := openBroker(cfg, redisClient)
	if err != nil {
		log.Fatal().Err(err).Str("broker", cfg.Messaging.Broker).Msg("failed to open message broker")
	}
	defer broker.Close()
	publisher := messaging.NewEventPublisher(broker, cfg.Messaging.Channel, cfg.Messaging.Broker, m)

	mailer := email.NewService(cfg.SMTP, m)

	// Initialize services
	rbacSvc := rbacService.NewService(repos.Roles, repos.Funcionarios)
	segmentoSvc := segmentoService.NewService(repos.Segmentos, repos.Funcionarios, repos.Citas, m)
	funcionarioSvc := funcionarioService.NewService(repos.Funcionarios, repos.Especialidades, segmentoSvc, hasher, rbacSvc)
	tokens := jwtauth.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry())
	authSvc := authService.NewService(repos.Funcionarios, hasher, tokens, sessions, rbacSvc, m)
	recoverySvc := recoveryService.NewService(repos.Funcionarios, funcionarioSvc, mailer, cfg.Recovery.CodeTTL, m)
	citaSvc := citaService.NewService(repos.Citas, repos.Pacientes, repos.Segmentos, publisher, m)
	pacienteSvc := pacienteService.NewService(repos.Pacientes)
	especialidadSvc := especialidadService.NewService(repos.Especialidades)

	// Without an external broker the confirmation mail is sent in process
	if cfg.Messaging.Broker == "none" {
		notifier := worker.NewNotifier(mailer, retry.RetryConfig{Attempts: 3, Delay: time.Second})
		go func() {
			if err := notifier.Run(ctx, broker, cfg.Messaging.Channel); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("local notifier stopped")
			}
		}()
	}

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	routerConfig := router.RouterConfig{
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		CORSConfig:       middleware.DefaultCORSConfig(),
		RequestTimeout:   cfg.Server.RequestTimeout,
		Metrics:          m,
	}
	routerConfig.CORSConfig.AllowOrigins = cfg.Security.AllowedOrigins
	if cfg.Metrics.Enabled {
		routerConfig.Gatherer = reg
	}

	r, err := router.NewRouter(middleware.NewAuthMiddleware(authSvc), router.Handlers{
		Health:       health.NewHandler(checks),
		Auth:         authhandler.NewHandler(authSvc, recoverySvc),
		Especialidad: especialidadhandler.NewHandler(especialidadSvc),
		Funcionario:  funcionariohandler.NewHandler(funcionarioSvc),
		Rbac:         rbachandler.NewHandler(rbacSvc),
		Paciente:     pacientehandler.NewHandler(pacienteSvc),
		Segmento:     segmentohandler.NewHandler(segmentoSvc),
		Cita:         citahandler.NewHandler(citaSvc),
	}, routerConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}
	r.Setup()
	if limiter := r.Limiter(); limiter != nil {
		go limiter.Run(ctx.Done())
	}

	// Create server
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).
			Str("storage", cfg.Storage.Backend).
			Str("sessions", cfg.Session.Store).
			Str("broker", cfg.Messaging.Broker).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func openStorage(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (repository.Repositories, *sqlx.DB, error) {
	if cfg.Storage.Backend == "memory" {
		return memory.NewStore().Repositories(), nil, nil
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return repository.Repositories{}, nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return repository.Repositories{}, nil, err
	}
	return postgres.NewRepositories(db, m), db, nil
}

func openBroker(cfg *config.Config, client *goredis.Client) (messaging.Broker, error) {
	switch cfg.Messaging.Broker {
	case "redis":
		return redisbroker.NewRedisBroker(client, log.Logger), nil
	case "rabbitmq":
		b, err := rabbitmq.NewBroker(cfg.Messaging.AMQPURL)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return messaging.NewLocalBroker(), nil
	}
}
