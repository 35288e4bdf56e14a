package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	docs "github.com/tazhibayda/radiostation-service/docs"
	"github.com/tazhibayda/radiostation-service/internal/auth"
	"github.com/tazhibayda/radiostation-service/internal/config"
	httpapi "github.com/tazhibayda/radiostation-service/internal/http"
	"github.com/tazhibayda/radiostation-service/internal/log"
	"github.com/tazhibayda/radiostation-service/internal/metrics"
	"github.com/tazhibayda/radiostation-service/internal/queue"
	"github.com/tazhibayda/radiostation-service/internal/repo"
	"github.com/tazhibayda/radiostation-service/internal/security"
)

// @title Radio Station Directory API
// @version 1.0.0
// @description Accounts and radio station CRUD.
// @schemes http https
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	l, err := log.Init(cfg.LogProduction)
	if err != nil {
		panic(err)
	}
	defer func() { _ = l.Sync() }()

	if err := cfg.Validate(); err != nil {
		l.Fatal("invalid config", zap.Error(err))
	}
	gin.SetMode(cfg.GinMode)

	traceService := ""
	if cfg.DDEnabled {
		tracer.Start(tracer.WithService(cfg.ServiceName))
		defer tracer.Stop()
		traceService = cfg.ServiceName
	}
	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		l.Fatal("mongo connect", zap.Error(err))
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		l.Fatal("mongo indexes", zap.Error(err))
	}

	issuer, err := newIssuer(cfg)
	if err != nil {
		l.Fatal("session keys", zap.Error(err))
	}

	idp := security.NewFetcher(cfg.IDPJWKSURL, time.Duration(cfg.JWKSCacheSeconds)*time.Second, cfg.IDPIssuer, cfg.IDPAudience)
	verifier := security.NewTokenVerifier(idp, l.Named("bearer"))

	var pub queue.Publisher = queue.NewNoop()
	if cfg.RabbitURL != "" {
		rp, err := queue.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			l.Fatal("rabbit connect", zap.Error(err))
		}
		pub = rp
	}

	var (
		rds   *repo.Redis
		cache *repo.StationCache
	)
	if cfg.RedisAddr != "" {
		rds = repo.NewRedis(cfg.RedisAddr)
		if err := rds.Ping(ctx); err != nil {
			l.Warn("redis unreachable at startup; station cache will miss", zap.Error(err))
		}
		cache = repo.NewStationCache(rds, time.Duration(cfg.StationCacheSeconds)*time.Second)
	}

	svc := auth.NewService(store, security.NewHasher(cfg.BcryptCost), issuer)
	h := httpapi.NewHandler(svc, store, cache, pub, issuer, l.Named("http"))
	h.Health["mongo"] = store
	if rds != nil {
		h.Health["redis"] = rds
	}

	docs.SwaggerInfo.BasePath = "/"
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(h, verifier, traceService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()
	log.Infof("radiostation-service listening on :%s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		l.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		log.Errorf("server error: %v", err)
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Warn("http shutdown", zap.Error(err))
	}
	_ = pub.Close()
	if rds != nil {
		_ = rds.Close()
	}
	if err := store.Close(shutdownCtx); err != nil {
		l.Warn("mongo disconnect", zap.Error(err))
	}
}

func newIssuer(cfg config.Config) (*security.Issuer, error) {
	ttl := time.Duration(cfg.JWTTTLMinutes) * time.Minute
	if cfg.JWTKeyPath == "" {
		return security.NewHS256Issuer(cfg.JWTSecret, ttl), nil
	}
	km, err := security.NewKeyManager(cfg.JWTKid, cfg.JWTKeyPath, cfg.JWTNextKid, cfg.JWTNextPath)
	if err != nil {
		return nil, err
	}
	return security.NewRS256Issuer(km, ttl), nil
}
