package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v3"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/bot"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/config"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/db"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/events"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/logger"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/repository"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/room"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/telemetry"
)

// app holds everything the subcommands share.
type app struct {
	cfg       *config.Config
	room      *room.Room
	results   repository.ResultRepository
	scores    repository.ScoreRepository
	snapshots repository.GameRepository
	rdb       *redis.Client
	sqlDB     *sqlx.DB

	closers []func(context.Context) error
}

// setup reads the configuration, starts logging and telemetry and opens the
// optional stores. Console logs go to consoleLog unless a log file is set.
func setup(ctx context.Context, cmd *cli.Command, consoleLog io.Writer) (*app, error) {
	cfg, err := config.FromCommand(cmd)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	logWriter := consoleLog
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return f.Close() })
		logWriter = f
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	shutdown, err := telemetry.InitOtel(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Endpoint:       cfg.OTLPEndpoint,
		StdoutTraces:   cfg.TraceStdout,
		TraceWriter:    logWriter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	a.closers = append(a.closers, shutdown)
	logger.Init(logWriter, level)

	opts := []room.Option{room.WithThinkingDelay(cfg.ThinkingDelay)}

	if cfg.DBPath != "" {
		a.sqlDB, err = db.OpenSQLite(ctx, cfg.DBPath)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return a.sqlDB.Close() })
		a.results = repository.NewResultRepository(a.sqlDB)
		opts = append(opts, room.WithResultRepository(a.results))
	}

	if cfg.RedisAddr != "" {
		a.rdb, err = db.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return a.rdb.Close() })
		a.scores = repository.NewScoreRepository(a.rdb)
		a.snapshots = repository.NewGameRepository(a.rdb)
		opts = append(opts,
			room.WithScoreRepository(a.scores),
			room.WithGameRepository(a.snapshots),
			room.WithPublisher(events.NewRedisPublisher(a.rdb)),
		)
	}

	a.room = room.New(cfg.StartingDifficulty(), bot.NewMoveCalculator(nil), opts...)
	slog.InfoContext(ctx, "Table ready",
		"game.id", a.room.GameID(),
		"game.difficulty", a.room.Difficulty(),
		"history", a.results != nil,
		"scoreboard", a.scores != nil)
	return a, nil
}

// seatSecret returns the configured secret, or a random one that lasts until
// the process exits.
func (a *app) seatSecret() ([]byte, error) {
	if a.cfg.SeatSecret != "" {
		return []byte(a.cfg.SeatSecret), nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate seat secret: %w", err)
	}
	slog.Warn("No seat secret configured; tokens will not survive a restart")
	return secret, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
