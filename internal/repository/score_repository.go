package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
)

// Scoreboard hash fields
const (
	FieldGames   = "games"
	FieldHuman   = "human_wins"
	FieldMachine = "computer_wins"
	FieldDraws   = "draws"
)

// Score is the running tally for one difficulty.
type Score struct {
	Difficulty   game.Difficulty `json:"difficulty"`
	Games        int64           `json:"games"`
	HumanWins    int64           `json:"humanWins"`
	ComputerWins int64           `json:"computerWins"`
	Draws        int64           `json:"draws"`
}

// ScoreRepository keeps win/draw counters per difficulty.
type ScoreRepository interface {
	Record(ctx context.Context, difficulty game.Difficulty, status game.Status, winner game.PlayerMark) error
	Totals(ctx context.Context, difficulty game.Difficulty) (Score, error)
	Reset(ctx context.Context, difficulty game.Difficulty) error
}

type redisScoreRepository struct {
	rdb *redis.Client
}

// NewScoreRepository creates a new Redis-based ScoreRepository.
func NewScoreRepository(rdb *redis.Client) ScoreRepository {
	return &redisScoreRepository{rdb: rdb}
}

func scoreKey(difficulty game.Difficulty) string {
	return fmt.Sprintf("scoreboard:%s", difficulty)
}

// Record counts one finished game. Games still in play are ignored.
func (r *redisScoreRepository) Record(ctx context.Context, difficulty game.Difficulty, status game.Status, winner game.PlayerMark) error {
	ctx, span := tracer.Start(ctx, "ScoreRepository.Record", trace.WithAttributes(
		attribute.String("game.difficulty", string(difficulty)),
		attribute.String("game.status", string(status)),
	))
	defer span.End()

	var field string
	switch {
	case status == game.StatusDraw:
		field = FieldDraws
	case status == game.StatusWon && winner == game.Human:
		field = FieldHuman
	case status == game.StatusWon && winner == game.Computer:
		field = FieldMachine
	default:
		return nil
	}

	key := scoreKey(difficulty)
	pipe := r.rdb.Pipeline()
	pipe.HIncrBy(ctx, key, FieldGames, 1)
	pipe.HIncrBy(ctx, key, field, 1)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to record score: %w", err)
	}
	return nil
}

// Totals returns the tally, all zero when nothing was recorded yet.
func (r *redisScoreRepository) Totals(ctx context.Context, difficulty game.Difficulty) (Score, error) {
	ctx, span := tracer.Start(ctx, "ScoreRepository.Totals", trace.WithAttributes(
		attribute.String("game.difficulty", string(difficulty)),
	))
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, scoreKey(difficulty)).Result()
	if err != nil {
		span.RecordError(err)
		return Score{}, fmt.Errorf("failed to get scoreboard: %w", err)
	}

	score := Score{Difficulty: difficulty}
	for field, dst := range map[string]*int64{
		FieldGames:   &score.Games,
		FieldHuman:   &score.HumanWins,
		FieldMachine: &score.ComputerWins,
		FieldDraws:   &score.Draws,
	} {
		raw, ok := data[field]
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Score{}, fmt.Errorf("invalid scoreboard field %s=%q: %w", field, raw, err)
		}
		*dst = n
	}
	return score, nil
}

// Reset clears the tally for difficulty.
func (r *redisScoreRepository) Reset(ctx context.Context, difficulty game.Difficulty) error {
	ctx, span := tracer.Start(ctx, "ScoreRepository.Reset", trace.WithAttributes(
		attribute.String("game.difficulty", string(difficulty)),
	))
	defer span.End()

	return r.rdb.Del(ctx, scoreKey(difficulty)).Err()
}
