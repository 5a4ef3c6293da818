package server

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/api/controller"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/api/response"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/api/service"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/hub"
	mcptools "github.com/pmercer01gh/easy-tic-tac-toe/internal/mcp"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/player"
)

var tracer = otel.Tracer("server")

type Server struct {
	engine     *gin.Engine
	hub        *hub.Hub
	seats      service.SeatService
	controller *controller.GameController
	tools      *mcptools.Tools
	upgrader   websocket.Upgrader
}

// NewServer wires the REST API, the websocket table and the MCP endpoint onto
// one gin engine. tools may be nil, which leaves /mcp unmounted.
func NewServer(h *hub.Hub, seats service.SeatService, gc *controller.GameController, tools *mcptools.Tools) *Server {
	s := &Server{
		engine:     gin.New(),
		hub:        h,
		seats:      seats,
		controller: gc,
		tools:      tools,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.registerRoutes()
	return s
}

// Engine returns the http.Handler for the server.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok", "clients": s.hub.ClientCount()})
	})
	s.engine.GET("/ws", s.handleWebSocket)
	if s.tools != nil {
		s.engine.POST("/mcp", s.controller.RequireSeat, s.handleMCP)
	}
	s.controller.RegisterRoutes(s.engine.Group("/api"))
}

// handleWebSocket upgrades the connection and hands it to the hub. A valid
// token query parameter seats the client; without one it spectates.
func (s *Server) handleWebSocket(c *gin.Context) {
	r := c.Request
	ctx, span := tracer.Start(r.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", r.URL.String()),
		attribute.String("http.method", r.Method),
	))
	defer span.End()

	var seatID string
	if token := c.Query("token"); token != "" {
		id, err := s.seats.Verify(token)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Invalid seat token")
			response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
			return
		}
		seatID = id
	}

	conn, err := s.upgrader.Upgrade(c.Writer, r, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	playerID := uuid.NewString()
	span.SetAttributes(
		attribute.String("player.id", playerID),
		attribute.Bool("player.spectator", seatID == ""),
	)
	s.hub.Serve(ctx, player.NewPlayer(playerID, conn, seatID))
}

// handleMCP answers one JSON-RPC message.
func (s *Server) handleMCP(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "failed to read request")
		return
	}
	c.JSON(http.StatusOK, s.tools.Server().HandleMessage(c.Request.Context(), body))
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "Request handled",
			"http.method", c.Request.Method,
			"http.path", c.FullPath(),
			"http.status", c.Writer.Status(),
			"http.duration", time.Since(start))
	}
}
