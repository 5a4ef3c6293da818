package room

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/events"
	eventmocks "github.com/pmercer01gh/easy-tic-tac-toe/internal/events/mocks"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/repository"
	repomocks "github.com/pmercer01gh/easy-tic-tac-toe/internal/repository/mocks"
	"github.com/pmercer01gh/easy-tic-tac-toe/pkg/proto"
)

// scripted plays the listed cells in order, then NoMove.
type scripted struct {
	mu    sync.Mutex
	moves []int
}

func (s *scripted) CalculateNextMove(board game.Board, mark game.PlayerMark, difficulty game.Difficulty, computerMoves int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.moves) > 0 {
		next := s.moves[0]
		s.moves = s.moves[1:]
		if next < 0 || board[next] == game.None {
			return next
		}
	}
	return game.NoMove
}

// recorder is a Broadcaster that keeps every message.
type recorder struct {
	mu       sync.Mutex
	messages []*proto.ServerToClientMessage
}

func (r *recorder) Broadcast(_ context.Context, m *proto.ServerToClientMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
}

func (r *recorder) last() *proto.ServerToClientMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return nil
	}
	return r.messages[len(r.messages)-1]
}

func newRoom(difficulty game.Difficulty, moves []int, opts ...Option) *Room {
	opts = append([]Option{WithThinkingDelay(0)}, opts...)
	return New(difficulty, &scripted{moves: moves}, opts...)
}

func TestNewRoom(t *testing.T) {
	r := newRoom(game.Hard, nil)
	res := r.State(context.Background())

	assert.NotEmpty(t, res.GameID)
	assert.Equal(t, r.GameID(), res.GameID)
	assert.Equal(t, game.Hard, r.Difficulty())
	assert.Equal(t, game.Board{}, res.State.Board)
	assert.Equal(t, game.PlayerX, res.State.CurrentPlayer)
	assert.Equal(t, game.StatusPlaying, res.State.Status)
}

func TestMoveErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(r *Room)
		index   int
		wantErr error
	}{
		{name: "Off the board", index: 9, wantErr: ErrInvalidMove},
		{name: "Negative index", index: -1, wantErr: ErrInvalidMove},
		{
			name: "Occupied cell",
			setup: func(r *Room) {
				_, _ = r.PlayTurn(ctx, 0)
			},
			index:   4,
			wantErr: ErrInvalidMove,
		},
		{
			name: "Computer to move",
			setup: func(r *Room) {
				_, _ = r.Move(ctx, 0)
			},
			index:   1,
			wantErr: ErrNotYourTurn,
		},
		{
			name: "Game over",
			setup: func(r *Room) {
				for _, idx := range []int{0, 1, 2} {
					_, _ = r.PlayTurn(ctx, idx)
				}
			},
			index:   8,
			wantErr: ErrGameOver,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRoom(game.Hard, []int{4, 3})
			if tt.setup != nil {
				tt.setup(r)
			}
			before := r.State(ctx)

			res, err := r.Move(ctx, tt.index)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, res)
			assert.Equal(t, before, r.State(ctx))
		})
	}
}

func TestPlayTurnToHumanWin(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	results := repomocks.NewMockResultRepository(ctrl)
	scores := repomocks.NewMockScoreRepository(ctrl)
	snapshots := repomocks.NewMockGameRepository(ctrl)
	pub := eventmocks.NewMockPublisher(ctrl)
	rec := &recorder{}

	r := newRoom(game.Hard, []int{3, 4},
		WithResultRepository(results),
		WithScoreRepository(scores),
		WithGameRepository(snapshots),
		WithPublisher(pub),
		WithBroadcaster(rec),
	)
	gameID := r.GameID()

	var versions []int64
	snapshots.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, snap repository.Snapshot) error {
			assert.Equal(t, gameID, snap.GameID)
			versions = append(versions, snap.Version)
			return nil
		}).Times(5)
	pub.EXPECT().Publish(gomock.Any(), events.TypeMoveMade, gomock.Any()).Return(nil).Times(5)
	pub.EXPECT().Publish(gomock.Any(), events.TypeGameFinished, events.GameFinishedPayload{
		GameID:             gameID,
		Difficulty:         game.Hard,
		Status:             game.StatusWon,
		Winner:             game.PlayerX,
		WinningCombination: []int{0, 1, 2},
	}).Return(nil)

	var saved repository.GameResult
	results.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, res repository.GameResult) error {
			saved = res
			return nil
		})
	scores.EXPECT().Record(gomock.Any(), game.Hard, game.StatusWon, game.PlayerX).Return(nil)

	for _, idx := range []int{0, 1} {
		res, err := r.PlayTurn(ctx, idx)
		require.NoError(t, err)
		assert.Equal(t, game.PlayerX, res.State.CurrentPlayer)
		assert.False(t, res.Skipped)
	}
	res, err := r.PlayTurn(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, game.StatusWon, res.State.Status)
	assert.Equal(t, []int{0, 1, 2}, res.State.WinningCombination)
	assert.Equal(t, game.PlayerX, res.State.Winner())
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, versions)

	assert.Equal(t, gameID, saved.ID)
	assert.Equal(t, game.PlayerX, saved.Winner)
	assert.Equal(t, res.State.Board, saved.Board)
	assert.False(t, saved.FinishedAt.IsZero())

	last := rec.last()
	require.NotNil(t, last)
	assert.Equal(t, proto.TypeUpdate, last.Type)
	assert.Equal(t, game.PlayerX, last.Winner)

	// A finished game is never recorded twice.
	_, err = r.ComputerMove(ctx)
	assert.ErrorIs(t, err, ErrGameOver)
	_, err = r.PlayTurn(ctx, 8)
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestPersistenceFailuresDoNotUndoMoves(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	results := repomocks.NewMockResultRepository(ctrl)
	scores := repomocks.NewMockScoreRepository(ctrl)
	pub := eventmocks.NewMockPublisher(ctrl)

	boom := errors.New("boom")
	pub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(boom).AnyTimes()
	results.EXPECT().Save(gomock.Any(), gomock.Any()).Return(boom)
	scores.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(boom)

	r := newRoom(game.Hard, []int{3, 4},
		WithResultRepository(results),
		WithScoreRepository(scores),
		WithPublisher(pub),
	)
	for _, idx := range []int{0, 1, 2} {
		_, err := r.PlayTurn(ctx, idx)
		require.NoError(t, err)
	}
	assert.Equal(t, game.StatusWon, r.State(ctx).State.Status)
}

func TestComputerMoveSkips(t *testing.T) {
	ctx := context.Background()

	t.Run("Easy lockout", func(t *testing.T) {
		rec := &recorder{}
		r := newRoom(game.Easy, []int{1, 2, 3, 5}, WithBroadcaster(rec))
		// Four marks from the computer fill the board in normal play, so the
		// engine is driven for both sides to spend the counter early.
		require.True(t, r.game.MakeMove(0))
		for range 4 {
			require.True(t, r.game.MakeComputerMove())
		}
		require.Equal(t, 4, r.computerMoveCount())
		before := r.State(ctx).State
		require.Equal(t, game.PlayerO, before.CurrentPlayer)
		require.Equal(t, game.StatusPlaying, before.Status)

		res, err := r.ComputerMove(ctx)
		require.NoError(t, err)
		assert.True(t, res.Skipped)
		assert.Equal(t, before.Board, res.State.Board)
		assert.Equal(t, game.PlayerX, res.State.CurrentPlayer)
		assert.Equal(t, 4, r.computerMoveCount())
		assert.True(t, rec.last().Skipped)
	})

	t.Run("Easy computer line ends the game for the human", func(t *testing.T) {
		r := newRoom(game.Easy, []int{0, 4, 6, 2})
		for _, idx := range []int{1, 3, 5, 7} {
			_, err := r.Move(ctx, idx)
			require.NoError(t, err)
			res, err := r.ComputerMove(ctx)
			require.NoError(t, err)
			assert.False(t, res.Skipped)
		}

		res := r.State(ctx)
		assert.Equal(t, game.PlayerO, res.State.Board[2])
		assert.Equal(t, game.StatusWon, res.State.Status)
		assert.Equal(t, []int{3, 4, 5}, res.State.WinningCombination)
		assert.Equal(t, game.PlayerX, res.State.Winner())
	})

	t.Run("Not the computer's turn", func(t *testing.T) {
		r := newRoom(game.Hard, nil)
		_, err := r.ComputerMove(ctx)
		assert.ErrorIs(t, err, ErrNotYourTurn)
	})

	t.Run("No move", func(t *testing.T) {
		r := newRoom(game.Hard, nil)
		_, err := r.Move(ctx, 0)
		require.NoError(t, err)
		_, err = r.ComputerMove(ctx)
		assert.ErrorIs(t, err, ErrNoMove)
	})
}

func TestThinkingDelayHonoursContext(t *testing.T) {
	r := New(game.Hard, &scripted{moves: []int{4}}, WithThinkingDelay(time.Hour))
	_, err := r.Move(context.Background(), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = r.ComputerMove(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	state := r.State(context.Background()).State
	assert.Equal(t, game.PlayerO, state.CurrentPlayer)
	assert.Equal(t, game.None, state.Board[4])
}

func TestStateDoesNotWaitForThinking(t *testing.T) {
	r := New(game.Hard, &scripted{moves: []int{4}}, WithThinkingDelay(200*time.Millisecond))
	_, err := r.Move(context.Background(), 0)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.ComputerMove(context.Background())
	}()

	start := time.Now()
	time.Sleep(20 * time.Millisecond)
	_ = r.State(context.Background())
	assert.Less(t, time.Since(start), 150*time.Millisecond)
	<-done
	assert.Equal(t, game.PlayerO, r.State(context.Background()).State.Board[4])
}

func TestResetAndDifficulty(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	pub := eventmocks.NewMockPublisher(ctrl)

	r := newRoom(game.Easy, []int{4}, WithPublisher(pub))
	firstID := r.GameID()

	pub.EXPECT().Publish(gomock.Any(), events.TypeMoveMade, gomock.Any()).Return(nil).Times(2)
	_, err := r.PlayTurn(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 1, r.computerMoveCount())

	pub.EXPECT().Publish(gomock.Any(), events.TypeDifficultyChanged, events.DifficultyChangedPayload{
		GameID:     firstID,
		Difficulty: game.Hard,
	}).Return(nil)
	res := r.SetDifficulty(ctx, game.Hard)
	assert.Equal(t, game.Hard, res.Difficulty)
	assert.Equal(t, game.PlayerO, res.State.Board[4])
	assert.Zero(t, r.computerMoveCount())

	pub.EXPECT().Publish(gomock.Any(), events.TypeGameStarted, gomock.Any()).Return(nil)
	res = r.Reset(ctx)
	assert.NotEqual(t, firstID, res.GameID)
	assert.Equal(t, game.Board{}, res.State.Board)
	assert.Equal(t, game.Hard, res.Difficulty)
	assert.Equal(t, game.StatusPlaying, res.State.Status)
}
