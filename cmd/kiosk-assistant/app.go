// cmd/kiosk-assistant/app.go
package main

import (
	"context"
	"database/sql"
	"fmt"

	awsclient "kiosk-dialog/internal/common/aws"
	"kiosk-dialog/internal/common/camunda"
	"kiosk-dialog/internal/common/config"
	"kiosk-dialog/internal/common/database"
	"kiosk-dialog/internal/common/logger"
	"kiosk-dialog/internal/datasource"
	"kiosk-dialog/internal/dialog"
	"kiosk-dialog/internal/dialog/tracker"
	"kiosk-dialog/internal/interpreter"
	"kiosk-dialog/internal/output"
	"kiosk-dialog/internal/session"

	"github.com/redis/go-redis/v9"
)

// app holds the wired assistant and the connections it owns.
type app struct {
	cfg     *config.Config
	logger  logger.Logger
	tracker *tracker.Tracker
	pg      *database.PostgresClient
	redis   *database.RedisClient
}

// newApp connects to what the configuration asks for and wires the tracker.
// sinks receive every reply; an enabled SNS output is appended to them.
func newApp(ctx context.Context, cfg *config.Config, log logger.Logger, sinks ...output.NamedSink) (*app, error) {
	a := &app{cfg: cfg, logger: log}
	retry := &camunda.RetryConfig{MaxRetries: 5, BaseDelay: camunda.DefaultRetryConfig.BaseDelay, MaxDelay: camunda.DefaultRetryConfig.MaxDelay}

	if cfg.DataSource.Driver == "postgres" {
		err := camunda.Retry(ctx, retry, log, "PostgreSQL connection", func() error {
			pg, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			if err := pg.Ping(ctx); err != nil {
				pg.Close()
				return err
			}
			a.pg = pg
			return nil
		})
		if err != nil {
			return nil, err
		}
		log.Info("PostgreSQL connected successfully", nil)
	}

	if cfg.Session.Driver == "redis" || cfg.DataSource.CacheTTL > 0 {
		a.redis = database.NewRedis(cfg.Database.Redis)
		err := camunda.Retry(ctx, retry, log, "Redis connection", func() error {
			return a.redis.Ping(ctx)
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		log.Info("Redis connected successfully", nil)
	}

	var (
		db  *sql.DB
		rdb *redis.Client
	)
	if a.pg != nil {
		db = a.pg.GetDB()
	}
	if a.redis != nil {
		rdb = a.redis.GetClient()
	}

	sources, err := datasource.New(cfg.DataSource, db, rdb, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	dialogCfg, err := dialog.LoadConfig(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	dispatcher, err := dialog.NewDispatcher(dialogCfg, sources, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	store, err := session.New(cfg.Session, rdb, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Output.SNS.Enabled {
		client, err := awsclient.NewSNSClient(ctx, cfg.Output.SNS.Region)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("sns client: %w", err)
		}
		sinks = append(sinks, output.NamedSink{
			Name: "sns",
			Sink: output.NewSNSSink(client, cfg.Output.SNS.TopicARN, cfg.App.Name),
		})
	}

	interp := interpreter.NewHTTPInterpreter(interpreter.LoadConfig(cfg.Interpreter), log)
	a.tracker = tracker.New(interp, dispatcher, store, output.NewMulti(log, sinks...), log)
	return a, nil
}

// ping checks the connections the app owns.
func (a *app) ping(ctx context.Context) error {
	if a.pg != nil {
		if err := a.pg.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (a *app) Close() {
	if a.pg != nil {
		a.pg.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
