// Package mcp exposes the table as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/room"
)

const instructions = `Tic-Tac-Toe - MCP Interface

You play X against the computer (O). Cells are numbered 0-8, left to right,
top to bottom. X always moves first.

AVAILABLE TOOLS:
- get_state: Show the board and whose turn it is
- make_move: Place X on a cell without letting the computer answer
- computer_move: Let the computer take its turn
- play_turn: Place X and wait for the computer's reply
- reset_game: Start a new game
- get_difficulty / set_difficulty: Read or switch between easy and hard`

// Tools serves the room over MCP.
type Tools struct {
	room      *room.Room
	mcpServer *server.MCPServer
}

// New creates the MCP server with every tool registered.
func New(r *room.Room, version string) *Tools {
	t := &Tools{room: r}
	t.mcpServer = server.NewMCPServer(
		"Tic-Tac-Toe",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)
	t.registerTools()
	return t
}

// Server returns the underlying MCP server, for stdio or HTTP transports.
func (t *Tools) Server() *server.MCPServer {
	return t.mcpServer
}

func (t *Tools) registerTools() {
	noArgs := mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}}
	indexArg := mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]any{
			"index": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     game.BoardSize - 1,
				"description": "Cell to mark, 0-8 left to right, top to bottom",
			},
		},
		Required: []string{"index"},
	}

	t.mcpServer.AddTool(mcp.Tool{
		Name:        "get_state",
		Description: "Get the current board, turn and status",
		InputSchema: noArgs,
	}, t.handleGetState)

	t.mcpServer.AddTool(mcp.Tool{
		Name:        "make_move",
		Description: "Place X on a cell. The computer does not answer; call computer_move for that",
		InputSchema: indexArg,
	}, t.handleMakeMove)

	t.mcpServer.AddTool(mcp.Tool{
		Name:        "computer_move",
		Description: "Let the computer take its turn. On easy it may skip",
		InputSchema: noArgs,
	}, t.handleComputerMove)

	t.mcpServer.AddTool(mcp.Tool{
		Name:        "play_turn",
		Description: "Place X on a cell and wait for the computer's reply",
		InputSchema: indexArg,
	}, t.handlePlayTurn)

	t.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Clear the board and start a new game",
		InputSchema: noArgs,
	}, t.handleReset)

	t.mcpServer.AddTool(mcp.Tool{
		Name:        "get_difficulty",
		Description: "Get the active difficulty",
		InputSchema: noArgs,
	}, t.handleGetDifficulty)

	t.mcpServer.AddTool(mcp.Tool{
		Name:        "set_difficulty",
		Description: "Switch the computer's strategy. The board is kept",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"difficulty": map[string]any{
					"type":        "string",
					"enum":        []string{string(game.Easy), string(game.Hard)},
					"description": "easy or hard",
				},
			},
			Required: []string{"difficulty"},
		},
	}, t.handleSetDifficulty)
}

func (t *Tools) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatResult(t.room.State(ctx))), nil
}

func (t *Tools) handleMakeMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := indexArgument(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := t.room.Move(ctx, index)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatResult(res)), nil
}

func (t *Tools) handleComputerMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := t.room.ComputerMove(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatResult(res)), nil
}

func (t *Tools) handlePlayTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := indexArgument(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := t.room.PlayTurn(ctx, index)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatResult(res)), nil
}

func (t *Tools) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatResult(t.room.Reset(ctx))), nil
}

func (t *Tools) handleGetDifficulty(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(fmt.Sprintf("Difficulty: %s", t.room.Difficulty())), nil
}

func (t *Tools) handleSetDifficulty(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]any)
	raw, _ := args["difficulty"].(string)
	difficulty, err := game.ParseDifficulty(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatResult(t.room.SetDifficulty(ctx, difficulty))), nil
}

// indexArgument reads the cell index. JSON numbers arrive as float64.
func indexArgument(request mcp.CallToolRequest) (int, error) {
	args, _ := request.Params.Arguments.(map[string]any)
	switch v := args["index"].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("index must be a whole number, got %v", v)
		}
		return int(v), nil
	case int:
		return v, nil
	case nil:
		return 0, fmt.Errorf("index is required")
	default:
		return 0, fmt.Errorf("index must be a number, got %T", v)
	}
}

func formatResult(res room.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Game: %s\nDifficulty: %s\n\n", res.GameID, res.Difficulty)
	sb.WriteString(res.State.Board.String())
	sb.WriteString("\n\n")

	if res.Skipped {
		sb.WriteString("The computer skipped its turn.\n")
	}
	switch res.State.Status {
	case game.StatusWon:
		if res.State.Winner() == game.Human {
			sb.WriteString("Result: Player wins!")
		} else {
			sb.WriteString("Result: Computer wins!")
		}
		fmt.Fprintf(&sb, " Winning line: %v", res.State.WinningCombination)
	case game.StatusDraw:
		sb.WriteString("Result: It's a draw!")
	default:
		fmt.Fprintf(&sb, "Turn: %s", res.State.CurrentPlayer)
	}
	return sb.String()
}
