package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ICTPass2002kgao/Tact-api-prod/internal/auth"
	"github.com/ICTPass2002kgao/Tact-api-prod/internal/config"
	"github.com/ICTPass2002kgao/Tact-api-prod/internal/grpcclient"
	"github.com/ICTPass2002kgao/Tact-api-prod/internal/handlers"
	"github.com/ICTPass2002kgao/Tact-api-prod/internal/logging"
	"github.com/ICTPass2002kgao/Tact-api-prod/internal/mediaconv"
	"github.com/ICTPass2002kgao/Tact-api-prod/internal/mediastore"
	"github.com/ICTPass2002kgao/Tact-api-prod/internal/repository"
	"github.com/ICTPass2002kgao/Tact-api-prod/internal/usecase"
	"github.com/ICTPass2002kgao/Tact-api-prod/internal/verifier"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	db := initDatabase(ctx, cfg, logger)
	repo := repository.NewVerificationRepository(db, logger)
	if err := repo.AutoMigrate(ctx); err != nil {
		logger.Fatal("auto migrate failed", zap.Error(err))
	}

	redisCtx, redisCancel := context.WithTimeout(ctx, 5*time.Second)
	defer redisCancel()
	redisClient := initRedis(redisCtx, cfg, logger)

	store, err := mediastore.New(cfg.WorkDir, cfg.MaxImageBytes, cfg.DownloadTimeout, logger)
	if err != nil {
		logger.Fatal("failed to prepare work directory", zap.Error(err))
	}

	faceVerifier, closeVerifier, err := initVerifier(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize verifier backend", zap.Error(err))
	}
	defer closeVerifier()

	cache := usecase.NewRedisCache(redisClient)
	verificationUC := usecase.NewVerificationUseCase(repo, cache, store, faceVerifier, logger)
	audioUC := usecase.NewAudioUseCase(store, store.Dir(), mediaconv.NewExtractor(cfg.FFmpegPath, logger), logger)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxVideoBytes

	opts := handlers.Options{
		MaxImageBytes: cfg.MaxImageBytes,
		MaxVideoBytes: cfg.MaxVideoBytes,
	}
	if cfg.JWTSecret != "" {
		opts.Auth = auth.JWTMiddleware(cfg.JWTSecret, cfg.JWTAudience)
	} else {
		logger.Warn("JWT_SECRET not set, API is unauthenticated")
	}
	handlers.RegisterRoutes(r, verificationUC, audioUC, opts)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	logger.Info("Tact API listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("verifier", faceVerifier.Name()),
	)
	if err := serveHTTPServer(server, cfg.ShutdownTimeout, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func initDatabase(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) *gorm.DB {
	gormLogMode := gormlogger.Warn
	if cfg.Debug {
		gormLogMode = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{Logger: gormlogger.Default.LogMode(gormLogMode)})
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		zapLogger.Fatal("failed to access db handle", zap.Error(err))
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		zapLogger.Fatal("database ping failed", zap.Error(err))
	}

	return db
}

func initRedis(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	return client
}

// initVerifier builds the configured face comparison backend. The returned
// close function releases backend resources on shutdown.
func initVerifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (verifier.Verifier, func(), error) {
	switch cfg.Verifier.Backend {
	case config.BackendDlib:
		dlib, err := verifier.NewDlib(cfg.Verifier.ModelDir, cfg.Verifier.Threshold, logger)
		if err != nil {
			return nil, nil, err
		}
		return dlib, dlib.Close, nil
	case config.BackendGRPC:
		v, conn, err := grpcclient.DialFaceProcessor(ctx, cfg.Verifier.ProcessorAddr, logger)
		if err != nil {
			return nil, nil, err
		}
		return v, func() { conn.Close() }, nil
	case config.BackendHTTP:
		v := verifier.NewHTTP(cfg.Verifier.Endpoint, cfg.Verifier.APIKey, cfg.Verifier.Timeout, logger)
		return v, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown verifier backend %q", cfg.Verifier.Backend)
	}
}

func serveHTTPServer(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	return serveHTTPServerWithOptions(server, shutdownTimeout, logger, nil, nil)
}

func serveHTTPServerWithOptions(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger, listener net.Listener, signalCh <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if listener != nil {
			err = server.Serve(listener)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	var (
		sigCh       <-chan os.Signal
		stopSignals func()
	)

	if signalCh != nil {
		sigCh = signalCh
		stopSignals = func() {}
	} else {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		sigCh = ch
		stopSignals = func() {
			signal.Stop(ch)
		}
	}
	defer stopSignals()

	select {
	case err := <-errCh:
		return err
	case sig, ok := <-sigCh:
		if !ok {
			return <-errCh
		}
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-errCh
	}
}
