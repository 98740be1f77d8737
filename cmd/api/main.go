package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/damoang/tourlog-backend/internal/app"
	"github.com/damoang/tourlog-backend/internal/config"
	"github.com/damoang/tourlog-backend/internal/middleware"
	"github.com/damoang/tourlog-backend/internal/migration"
	pkglogger "github.com/damoang/tourlog-backend/pkg/logger"
)

// @title           Tourlog Backend API
// @version         1.0
// @description     Blog / tour-review content lifecycle API
//
// @license.name    MIT
//
// @host            localhost:8082
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	// 로거 초기화
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	// 설정 로드
	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	// MySQL 연결
	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}
	db, err := app.OpenMySQL(cfg, logLevel)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Redis 연결 (선택)
	redisClient := app.OpenRedis(cfg, pkglogger.Component("redis"))
	if redisClient != nil {
		pkglogger.Info("Connected to Redis")
		defer redisClient.Close()
	}

	engine := app.New(app.Deps{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Logger: *pkglogger.GetLogger(),
	})

	router, err := engine.Router()
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Scheduler.Enabled {
		engine.Scheduler.Start(ctx)
		pkglogger.Info("Scheduler started: %v", engine.Sweeps.Intervals())
	}

	go reportDBConnections(ctx, engine)

	// 서버 시작
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		pkglogger.Info("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	pkglogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		pkglogger.Warn("Server shutdown: %v", err)
	}
	engine.Scheduler.Stop()
}

// reportDBConnections DB 커넥션 사용량을 주기적으로 메트릭에 반영
func reportDBConnections(ctx context.Context, engine *app.App) {
	sqlDB, err := engine.DB.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			middleware.SetDBConnectionsInUse(sqlDB.Stats().InUse)
		}
	}
}
