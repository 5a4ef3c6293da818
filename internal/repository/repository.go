// Package repository persists finished games, the scoreboard and live game
// snapshots.
package repository

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("repository")

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks . ResultRepository,ScoreRepository,GameRepository
