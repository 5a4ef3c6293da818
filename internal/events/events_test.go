package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/db/dbtest"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
)

func TestNewEvent(t *testing.T) {
	event, err := NewEvent(TypeMoveMade, MoveMadePayload{
		GameID: "g1",
		Mark:   game.PlayerO,
		Index:  game.NoMove,
		Status: game.StatusPlaying,
	})
	require.NoError(t, err)
	assert.Equal(t, TypeMoveMade, event.Type)
	assert.JSONEq(t, `{"game_id":"g1","mark":"O","index":-1,"status":"playing"}`, string(event.Payload))

	_, err = NewEvent(TypeMoveMade, make(chan int))
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), TypeGameStarted, nil))
}

func TestRedisPublishSubscribe(t *testing.T) {
	rdb := dbtest.Redis(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	received := make(chan Event, 1)
	subscribed := make(chan error, 1)
	go func() {
		subscribed <- Subscribe(ctx, rdb, func(hctx context.Context, e Event) {
			select {
			case received <- e:
			case <-hctx.Done():
			}
		})
	}()

	publisher := NewRedisPublisher(rdb)
	payload := GameFinishedPayload{
		GameID:             "g1",
		Difficulty:         game.Easy,
		Status:             game.StatusWon,
		Winner:             game.PlayerX,
		WinningCombination: []int{0, 4, 8},
	}

	// The subscription is confirmed asynchronously; publish until it lands.
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		require.NoError(t, publisher.Publish(ctx, TypeGameFinished, payload))
		select {
		case e := <-received:
			assert.Equal(t, TypeGameFinished, e.Type)
			var got GameFinishedPayload
			require.NoError(t, json.Unmarshal(e.Payload, &got))
			assert.Equal(t, payload, got)
			cancel()
			assert.ErrorIs(t, <-subscribed, context.Canceled)
			return
		case err := <-subscribed:
			t.Fatalf("subscriber stopped early: %v", err)
		case <-ticker.C:
		case <-ctx.Done():
			t.Fatal("no event received")
		}
	}
}
