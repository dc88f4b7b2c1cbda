package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	postgresRepo "github.com/taskflowhq/taskflow/internal/adapters/db/postgres"
	redisRepo "github.com/taskflowhq/taskflow/internal/adapters/db/redis"
	"github.com/taskflowhq/taskflow/internal/auth/hash"
	"github.com/taskflowhq/taskflow/internal/auth/jwt"
	authrepo "github.com/taskflowhq/taskflow/internal/auth/repo"
	authservice "github.com/taskflowhq/taskflow/internal/auth/service"
	"github.com/taskflowhq/taskflow/internal/config"
	lg "github.com/taskflowhq/taskflow/internal/log"
	"github.com/taskflowhq/taskflow/internal/migrate"
	"github.com/taskflowhq/taskflow/internal/tasks"
	httptransport "github.com/taskflowhq/taskflow/internal/transport/http"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	// The revocation list is opt-in; without redis, logout stays a pure
	// cookie reset and tokens live until natural expiry.
	var tokenRepo authrepo.TokenRepo
	if cfg.RedisAddress != "" {
		redisCli := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisCli.Close()
		tokenRepo = redisRepo.NewTokenRepo(redisCli)
		zapLog.Info("refresh-token revocation list enabled", zap.String("redis", cfg.RedisAddress))
	}

	validate := validator.New()
	issuer := jwt.NewTokenIssuer(cfg)
	hasher := hash.New(cfg.PasswordPepper)

	authSvc := authservice.New(
		postgresRepo.NewUserRepo(db),
		tokenRepo,
		issuer,
		hasher,
		validate,
	)
	taskSvc := tasks.NewService(postgresRepo.NewTaskRepo(db), validate)

	handler := httptransport.NewHandler(authSvc, taskSvc, issuer, cfg, zapLog)
	router := httptransport.NewRouter(handler, zapLog, cfg)

	srv := &http.Server{Addr: cfg.HTTPAddress, Handler: router}
	rootCtx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		zapLog.Info("http server listening", zap.String("addr", cfg.HTTPAddress))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		return srv.Shutdown(ctxShutdown)
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("shutdown signal received")
	cancel()

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
