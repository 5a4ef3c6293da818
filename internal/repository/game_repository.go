package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
)

// Snapshot hash fields
const (
	FieldState         = "state"
	FieldDifficulty    = "difficulty"
	FieldComputerMoves = "computer_moves"
	FieldVersion       = "version"
)

// snapshotTTL bounds how long an abandoned game stays in Redis.
const snapshotTTL = 24 * time.Hour

// ErrStaleSnapshot is returned when a newer snapshot of the game is stored.
var ErrStaleSnapshot = errors.New("a newer snapshot is already stored")

// Snapshot is the live state of a game. Version increases with every change.
type Snapshot struct {
	GameID        string          `json:"gameId"`
	Difficulty    game.Difficulty `json:"difficulty"`
	State         game.State      `json:"state"`
	ComputerMoves int             `json:"computerMoves"`
	Version       int64           `json:"version"`
}

// GameRepository mirrors the live game into Redis so other processes can
// read it.
type GameRepository interface {
	Save(ctx context.Context, snap Snapshot) error
	FindByID(ctx context.Context, id string) (*Snapshot, error)
}

type redisGameRepository struct {
	rdb *redis.Client
}

// NewGameRepository creates a new Redis-based GameRepository.
func NewGameRepository(rdb *redis.Client) GameRepository {
	return &redisGameRepository{rdb: rdb}
}

func gameKey(id string) string {
	return fmt.Sprintf("game:%s", id)
}

// Save stores snap unless a snapshot with the same or a higher version is
// already there.
func (r *redisGameRepository) Save(ctx context.Context, snap Snapshot) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Save", trace.WithAttributes(
		attribute.String("game.id", snap.GameID),
		attribute.Int64("game.version", snap.Version),
	))
	defer span.End()

	stateJSON, err := json.Marshal(snap.State)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	key := gameKey(snap.GameID)
	txf := func(tx *redis.Tx) error {
		stored, err := tx.HGet(ctx, key, FieldVersion).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil && stored >= snap.Version {
			return ErrStaleSnapshot
		}

		pipe := tx.TxPipeline()
		pipe.HSet(ctx, key,
			FieldState, stateJSON,
			FieldDifficulty, string(snap.Difficulty),
			FieldComputerMoves, snap.ComputerMoves,
			FieldVersion, snap.Version,
		)
		pipe.Expire(ctx, key, snapshotTTL)
		_, err = pipe.Exec(ctx)
		return err
	}

	if err := r.rdb.Watch(ctx, txf, key); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save snapshot of %s: %w", snap.GameID, err)
	}
	return nil
}

// FindByID returns nil, nil when the game is unknown or has expired.
func (r *redisGameRepository) FindByID(ctx context.Context, id string) (*Snapshot, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.FindByID", trace.WithAttributes(
		attribute.String("game.id", id),
	))
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, gameKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot from redis: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	snap := Snapshot{GameID: id, Difficulty: game.Difficulty(data[FieldDifficulty])}
	if err := json.Unmarshal([]byte(data[FieldState]), &snap.State); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if snap.ComputerMoves, err = strconv.Atoi(data[FieldComputerMoves]); err != nil {
		return nil, fmt.Errorf("invalid %s field: %w", FieldComputerMoves, err)
	}
	if snap.Version, err = strconv.ParseInt(data[FieldVersion], 10, 64); err != nil {
		return nil, fmt.Errorf("invalid %s field: %w", FieldVersion, err)
	}
	return &snap, nil
}
