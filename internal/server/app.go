// Package server initializes and runs the GradeKeeper application server.
// It wires the database, cache, background workers, and the HTTP endpoint,
// and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/server/cache"
	"github.com/dmitrijs2005/gradekeeper/internal/server/config"
	gkhttp "github.com/dmitrijs2005/gradekeeper/internal/server/http"
	"github.com/dmitrijs2005/gradekeeper/internal/server/importer"
	"github.com/dmitrijs2005/gradekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gradekeeper/internal/server/services"
	"github.com/dmitrijs2005/gradekeeper/internal/server/workers"
)

const jobQueueSize = 64

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *gkhttp.Server
	pool       *workers.Pool
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	studentCache := cache.NewCache(redisClient, logger, "gradekeeper")

	authService := services.NewAuthService(db, m, cfg)
	studentService := services.NewStudentService(db, m, studentCache, logger, cfg)

	pool := workers.NewPool(cfg.ImportWorkers, jobQueueSize, logger)
	fetcher := importer.NewFetcher(cfg)

	httpServer := gkhttp.NewServer(cfg, authService, studentService, pool, fetcher, logger)

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		httpServer: httpServer,
		pool:       pool,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	app.pool.Start(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	// drain queued jobs before letting go of the database
	app.pool.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
