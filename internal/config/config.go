// Package config gathers settings from flags, the environment and an
// optional .env file.
package config

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/validator"
)

const envPrefix = "TICTACTOE_"

// Flag names
const (
	FlagAddr          = "addr"
	FlagDifficulty    = "difficulty"
	FlagThinkingDelay = "thinking-delay"
	FlagDBPath        = "db"
	FlagRedisAddr     = "redis"
	FlagSeatSecret    = "seat-secret"
	FlagSeatTTL       = "seat-ttl"
	FlagHistoryLimit  = "history-limit"
	FlagLogLevel      = "log-level"
	FlagLogFile       = "log-file"
	FlagOTLPEndpoint  = "otlp-endpoint"
	FlagTraceStdout   = "trace-stdout"
)

// Config is the resolved settings for every subcommand.
type Config struct {
	Addr          string        `json:"addr" validate:"required,hostname_port"`
	Difficulty    string        `json:"difficulty" validate:"required,difficulty"`
	ThinkingDelay time.Duration `json:"thinkingDelay" validate:"min=0"`
	// DBPath is the SQLite file for game history; empty disables history.
	DBPath string `json:"db"`
	// RedisAddr enables the scoreboard, snapshots and events; empty disables them.
	RedisAddr    string        `json:"redis"`
	SeatSecret   string        `json:"seatSecret" validate:"omitempty,min=16"`
	SeatTTL      time.Duration `json:"seatTtl" validate:"gt=0"`
	HistoryLimit int           `json:"historyLimit" validate:"min=1,max=500"`
	LogLevel     string        `json:"logLevel" validate:"oneof=debug info warn error"`
	// LogFile receives console logs instead of stdout when set.
	LogFile      string `json:"logFile"`
	OTLPEndpoint string `json:"otlpEndpoint" validate:"omitempty,hostname_port"`
	TraceStdout  bool   `json:"traceStdout"`
}

func env(name string) cli.ValueSourceChain {
	return cli.EnvVars(envPrefix + name)
}

// Flags returns the flags shared by all subcommands. Every flag can also be
// set through a TICTACTOE_* environment variable.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: FlagAddr, Value: "localhost:8080", Usage: "HTTP listen address", Sources: env("ADDR")},
		&cli.StringFlag{Name: FlagDifficulty, Value: string(game.Easy), Usage: "starting difficulty (easy or hard)", Sources: env("DIFFICULTY")},
		&cli.DurationFlag{Name: FlagThinkingDelay, Value: time.Second, Usage: "pause before the computer moves", Sources: env("THINKING_DELAY")},
		&cli.StringFlag{Name: FlagDBPath, Value: "tictactoe.db", Usage: "SQLite file for game history, empty to disable", Sources: env("DB")},
		&cli.StringFlag{Name: FlagRedisAddr, Usage: "Redis address or URL for scoreboard and events", Sources: env("REDIS")},
		&cli.StringFlag{Name: FlagSeatSecret, Usage: "HMAC secret for seat tokens, random when empty", Sources: env("SEAT_SECRET")},
		&cli.DurationFlag{Name: FlagSeatTTL, Value: 12 * time.Hour, Usage: "lifetime of a seat token", Sources: env("SEAT_TTL")},
		&cli.IntFlag{Name: FlagHistoryLimit, Value: 20, Usage: "default number of games returned by history", Sources: env("HISTORY_LIMIT")},
		&cli.StringFlag{Name: FlagLogLevel, Value: "info", Usage: "debug, info, warn or error", Sources: env("LOG_LEVEL")},
		&cli.StringFlag{Name: FlagLogFile, Usage: "write logs to this file instead of stdout", Sources: env("LOG_FILE")},
		&cli.StringFlag{Name: FlagOTLPEndpoint, Usage: "OTLP gRPC collector host:port", Sources: env("OTLP_ENDPOINT")},
		&cli.BoolFlag{Name: FlagTraceStdout, Usage: "pretty-print spans to stdout", Sources: env("TRACE_STDOUT")},
	}
}

// FromCommand reads the flags of cmd and validates the result.
func FromCommand(cmd *cli.Command) (*Config, error) {
	cfg := &Config{
		Addr:          cmd.String(FlagAddr),
		Difficulty:    cmd.String(FlagDifficulty),
		ThinkingDelay: cmd.Duration(FlagThinkingDelay),
		DBPath:        cmd.String(FlagDBPath),
		RedisAddr:     cmd.String(FlagRedisAddr),
		SeatSecret:    cmd.String(FlagSeatSecret),
		SeatTTL:       cmd.Duration(FlagSeatTTL),
		HistoryLimit:  cmd.Int(FlagHistoryLimit),
		LogLevel:      cmd.String(FlagLogLevel),
		LogFile:       cmd.String(FlagLogFile),
		OTLPEndpoint:  cmd.String(FlagOTLPEndpoint),
		TraceStdout:   cmd.Bool(FlagTraceStdout),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.GetValidator().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// StartingDifficulty is Difficulty parsed. Validate has already accepted it.
func (c *Config) StartingDifficulty() game.Difficulty {
	d, err := game.ParseDifficulty(c.Difficulty)
	if err != nil {
		return game.Easy
	}
	return d
}
