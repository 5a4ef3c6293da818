// Command tictactoe runs the game as an HTTP/WebSocket server, a terminal
// client, an MCP stdio server or an event tail.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/api/controller"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/api/service"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/config"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/events"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/hub"
	mcptools "github.com/pmercer01gh/easy-tic-tac-toe/internal/mcp"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/server"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/terminal"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/validator"
)

const (
	serviceName = "tictactoe"
	version     = "1.0.0"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:    serviceName,
		Usage:   "play tic-tac-toe against the computer",
		Version: version,
		Flags:   config.Flags(),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API, WebSocket table and /mcp endpoint",
				Action: runServe,
			},
			{
				Name:   "play",
				Usage:  "play in the terminal",
				Action: runPlay,
			},
			{
				Name:   "mcp",
				Usage:  "serve the MCP tools over stdio",
				Action: runMCP,
			},
			{
				Name:   "watch",
				Usage:  "print game events published to Redis",
				Action: runWatch,
			},
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, os.Stdout)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if err := validator.RegisterGinBinding(); err != nil {
		return err
	}
	secret, err := a.seatSecret()
	if err != nil {
		return err
	}
	seats := service.NewSeatService(secret, a.cfg.SeatTTL)

	h := hub.NewHub(a.room, seats)
	a.room.SetBroadcaster(h)
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go h.Run(hubCtx)

	gc := controller.NewGameController(a.room, seats, a.results, a.scores, a.snapshots, a.cfg.HistoryLimit)
	srv := server.NewServer(h, seats, gc, mcptools.New(a.room, version))

	httpServer := &http.Server{
		Addr:    a.cfg.Addr,
		Handler: srv.Engine(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server started", "addr", a.cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ListenAndServe: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exiting")
	return nil
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	// The board owns stdout; logs only reach a file.
	a, err := setup(ctx, cmd, io.Discard)
	if err != nil {
		return err
	}
	defer closeApp(a)

	p := tea.NewProgram(terminal.NewModel(ctx, a.room), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	// stdout carries the protocol.
	a, err := setup(ctx, cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer closeApp(a)

	tools := mcptools.New(a.room, version)
	slog.Info("MCP stdio server started")
	return mcpserver.ServeStdio(tools.Server())
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if a.rdb == nil {
		return fmt.Errorf("watch needs --%s", config.FlagRedisAddr)
	}
	out := json.NewEncoder(os.Stdout)
	err = events.Subscribe(ctx, a.rdb, func(ctx context.Context, event events.Event) {
		if err := out.Encode(event); err != nil {
			slog.ErrorContext(ctx, "Could not print event", "error", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func closeApp(a *app) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		log.Printf("Error shutting down: %v", err)
	}
}
