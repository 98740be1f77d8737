// Command sweep runs the lifecycle sweeps once and exits. It is meant for
// cron-driven deployments where the API runs with the scheduler disabled.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	gormlogger "gorm.io/gorm/logger"

	"github.com/damoang/tourlog-backend/internal/app"
	"github.com/damoang/tourlog-backend/internal/config"
	pkglogger "github.com/damoang/tourlog-backend/pkg/logger"
)

type options struct {
	Interval []string `long:"interval" short:"i" choice:"publish-due" choice:"trash-evict" description:"Interval to run (repeatable, default: all)"`
	Config   string   `long:"config" short:"c" env:"TOURLOG_CONFIG" default:"configs/config.local.yaml" description:"Config file path"`
	DryRun   bool     `long:"dry-run" description:"Only count the items each sweep would touch"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	config.LoadDotEnv()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	log := pkglogger.Component("sweep")

	if err := run(opts); err != nil {
		log.Error().Err(err).Msg("sweep failed")
		os.Exit(1)
	}
}

func run(opts options) error {
	log := pkglogger.Component("sweep")

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := app.OpenMySQL(cfg, gormlogger.Warn)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	redisClient := app.OpenRedis(cfg, pkglogger.Component("redis"))
	if redisClient != nil {
		defer redisClient.Close()
	}

	engine := app.New(app.Deps{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Logger: *pkglogger.GetLogger(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	intervals := opts.Interval
	if len(intervals) == 0 {
		intervals = engine.Sweeps.Intervals()
	}

	var failed []string
	for _, interval := range intervals {
		if opts.DryRun {
			n, err := engine.Sweeps.Pending(ctx, interval)
			if err != nil {
				return fmt.Errorf("%s: %w", interval, err)
			}
			log.Info().Str("interval", interval).Int64("pending", n).Msg("dry run")
			continue
		}

		if err := engine.Scheduler.Trigger(ctx, interval); err != nil {
			log.Error().Err(err).Str("interval", interval).Msg("sweep interval failed")
			failed = append(failed, interval)
			continue
		}
		log.Info().Str("interval", interval).Msg("sweep interval done")
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed intervals: %v", failed)
	}
	return nil
}
