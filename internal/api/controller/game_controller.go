package controller

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/api/models"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/api/response"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/api/service"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/repository"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/room"
)

// SeatIDKey is the gin context key RequireSeat stores the seat id under.
const SeatIDKey = "seat.id"

var (
	errHistoryDisabled    = errors.New("game history is not configured")
	errScoreboardDisabled = errors.New("the scoreboard is not configured")
	errSnapshotsDisabled  = errors.New("game snapshots are not configured")
	errResultNotFound     = errors.New("no finished game with that id")
)

// GameController handles the REST endpoints of the table.
type GameController struct {
	room         *room.Room
	seats        service.SeatService
	results      repository.ResultRepository
	scores       repository.ScoreRepository
	snapshots    repository.GameRepository
	historyLimit int
}

// NewGameController creates a new GameController. results, scores and
// snapshots may be nil; their endpoints then answer 503.
func NewGameController(
	r *room.Room,
	seats service.SeatService,
	results repository.ResultRepository,
	scores repository.ScoreRepository,
	snapshots repository.GameRepository,
	historyLimit int,
) *GameController {
	return &GameController{
		room:         r,
		seats:        seats,
		results:      results,
		scores:       scores,
		snapshots:    snapshots,
		historyLimit: historyLimit,
	}
}

// RegisterRoutes mounts the endpoints on api.
func (gc *GameController) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/state", gc.GetState)
	api.GET("/difficulty", gc.GetDifficulty)
	api.GET("/history", gc.History)
	api.GET("/history/:id", gc.GetResult)
	api.GET("/games/:id", gc.GetSnapshot)
	api.GET("/scoreboard", gc.Scoreboard)
	api.POST("/seat", gc.ClaimSeat)

	seated := api.Group("", gc.RequireSeat)
	seated.DELETE("/seat", gc.ReleaseSeat)
	seated.POST("/move", gc.Move)
	seated.POST("/computer-move", gc.ComputerMove)
	seated.POST("/play", gc.Play)
	seated.POST("/reset", gc.Reset)
	seated.PUT("/difficulty", gc.SetDifficulty)
	seated.DELETE("/scoreboard", gc.ResetScoreboard)
}

// RequireSeat rejects requests without a current seat token.
func (gc *GameController) RequireSeat(c *gin.Context) {
	token, ok := BearerToken(c.GetHeader("Authorization"))
	if !ok {
		response.AbortWithError(c, http.StatusUnauthorized, "missing bearer seat token")
		return
	}
	seatID, err := gc.seats.Verify(token)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, service.ErrSeatRevoked) {
			status = http.StatusForbidden
		}
		response.AbortWithError(c, status, err.Error())
		return
	}
	c.Set(SeatIDKey, seatID)
	c.Next()
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// GetState returns the current game.
func (gc *GameController) GetState(c *gin.Context) {
	response.SuccessResponse(c, models.NewStateResponse(gc.room.State(c.Request.Context())))
}

// Move places the human's mark without a computer reply.
func (gc *GameController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	gc.respond(c, func(ctx context.Context) (room.Result, error) {
		return gc.room.Move(ctx, *req.Index)
	})
}

// ComputerMove lets the computer take its turn.
func (gc *GameController) ComputerMove(c *gin.Context) {
	gc.respond(c, gc.room.ComputerMove)
}

// Play places the human's mark and waits for the computer's reply.
func (gc *GameController) Play(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	gc.respond(c, func(ctx context.Context) (room.Result, error) {
		return gc.room.PlayTurn(ctx, *req.Index)
	})
}

// Reset starts a new game.
func (gc *GameController) Reset(c *gin.Context) {
	response.SuccessResponse(c, models.NewStateResponse(gc.room.Reset(c.Request.Context())))
}

// GetDifficulty returns the active difficulty.
func (gc *GameController) GetDifficulty(c *gin.Context) {
	response.SuccessResponse(c, gin.H{"difficulty": gc.room.Difficulty()})
}

// SetDifficulty switches strategy; the board is kept.
func (gc *GameController) SetDifficulty(c *gin.Context) {
	var req models.DifficultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	difficulty, err := game.ParseDifficulty(req.Difficulty)
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	response.SuccessResponse(c, models.NewStateResponse(gc.room.SetDifficulty(c.Request.Context(), difficulty)))
}

// ClaimSeat hands out the controller seat.
func (gc *GameController) ClaimSeat(c *gin.Context) {
	var req models.SeatRequest
	// An empty body means no force.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	seat, err := gc.seats.Claim(c.Request.Context(), req.Force)
	if err != nil {
		if errors.Is(err, service.ErrSeatTaken) {
			response.ErrorResponse(c, http.StatusConflict, err.Error())
			return
		}
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.SuccessResponse(c, models.SeatResponse{
		SeatID:    seat.ID,
		Token:     seat.Token,
		ExpiresAt: seat.ExpiresAt,
	})
}

// ReleaseSeat gives the seat up.
func (gc *GameController) ReleaseSeat(c *gin.Context) {
	if err := gc.seats.Release(c.Request.Context(), c.GetString(SeatIDKey)); err != nil {
		response.ErrorResponse(c, http.StatusForbidden, err.Error())
		return
	}
	response.SuccessResponse(c, gin.H{"message": "seat released"})
}

// History lists finished games, newest first.
func (gc *GameController) History(c *gin.Context) {
	if gc.results == nil {
		response.ErrorFrom(c, response.NewError(http.StatusServiceUnavailable, errHistoryDisabled))
		return
	}
	var q models.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	limit := q.Limit
	if limit == 0 {
		limit = gc.historyLimit
	}
	results, err := gc.results.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.ErrorFrom(c, err)
		return
	}
	response.SuccessResponseList(c, results)
}

// GetResult returns one finished game.
func (gc *GameController) GetResult(c *gin.Context) {
	if gc.results == nil {
		response.ErrorFrom(c, response.NewError(http.StatusServiceUnavailable, errHistoryDisabled))
		return
	}
	result, err := gc.results.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ErrorFrom(c, err)
		return
	}
	if result == nil {
		response.ErrorFrom(c, response.NewError(http.StatusNotFound, errResultNotFound))
		return
	}
	response.SuccessResponse(c, result)
}

// GetSnapshot returns the last mirrored state of a game.
func (gc *GameController) GetSnapshot(c *gin.Context) {
	if gc.snapshots == nil {
		response.ErrorFrom(c, response.NewError(http.StatusServiceUnavailable, errSnapshotsDisabled))
		return
	}
	snap, err := gc.snapshots.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ErrorFrom(c, err)
		return
	}
	if snap == nil {
		response.ErrorResponse(c, http.StatusNotFound, "unknown game")
		return
	}
	response.SuccessResponse(c, snap)
}

// Scoreboard returns the tallies for both difficulties.
func (gc *GameController) Scoreboard(c *gin.Context) {
	if gc.scores == nil {
		response.ErrorFrom(c, response.NewError(http.StatusServiceUnavailable, errScoreboardDisabled))
		return
	}
	var board []repository.Score
	for _, d := range []game.Difficulty{game.Easy, game.Hard} {
		score, err := gc.scores.Totals(c.Request.Context(), d)
		if err != nil {
			response.ErrorFrom(c, err)
			return
		}
		board = append(board, score)
	}
	response.SuccessResponseList(c, board)
}

// ResetScoreboard clears both tallies.
func (gc *GameController) ResetScoreboard(c *gin.Context) {
	if gc.scores == nil {
		response.ErrorFrom(c, response.NewError(http.StatusServiceUnavailable, errScoreboardDisabled))
		return
	}
	for _, d := range []game.Difficulty{game.Easy, game.Hard} {
		if err := gc.scores.Reset(c.Request.Context(), d); err != nil {
			response.ErrorFrom(c, err)
			return
		}
	}
	response.SuccessResponse(c, gin.H{"message": "scoreboard cleared"})
}

// respond runs a game operation and maps room errors to statuses.
func (gc *GameController) respond(c *gin.Context, op func(context.Context) (room.Result, error)) {
	res, err := op(c.Request.Context())
	if err != nil {
		response.ErrorFrom(c, roomError(err))
		return
	}
	response.SuccessResponse(c, models.NewStateResponse(res))
}

func roomError(err error) error {
	switch {
	case errors.Is(err, room.ErrInvalidMove),
		errors.Is(err, room.ErrGameOver),
		errors.Is(err, room.ErrNotYourTurn),
		errors.Is(err, room.ErrNoMove):
		return response.NewError(http.StatusConflict, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return response.NewError(http.StatusServiceUnavailable, err)
	}
	return err
}
